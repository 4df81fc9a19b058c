package grading

// Short-answer partial-credit bands. These are grading policy, shared by every
// question; they are not configurable per question.
const (
	// FullCreditRatio is the keyword ratio at or above which full marks are awarded.
	FullCreditRatio = 0.8
	// HalfCreditRatio is the keyword ratio at or above which HalfCreditFactor applies.
	HalfCreditRatio = 0.5
	// HalfCreditFactor is the share of marks awarded in the half-credit band.
	HalfCreditFactor = 0.5
)

type verdict struct {
	correct bool
	points  float64
}

func allOrNothing(correct bool, marks float64) verdict {
	if correct {
		return verdict{correct: true, points: marks}
	}
	return verdict{}
}
