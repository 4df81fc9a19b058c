package grading

import "errors"

var (
	ErrNoOptions            = errors.New("question has no options")
	ErrAmbiguousItems       = errors.New("drag-drop items must have unique content")
	ErrMalformedSubQuestion = errors.New("sub-question is not an object")
	ErrMalformedJSON        = errors.New("malformed grading input")
	ErrUnexpected           = errors.New("grading failed unexpectedly")
)
