package models

// GradedAnswer is the immutable outcome of grading one answer.
type GradedAnswer struct {
	IsCorrect       bool            `json:"isCorrect"`
	PointsEarned    float64         `json:"pointsEarned"`
	FormattedAnswer FormattedAnswer `json:"formattedAnswer"`
}

// FormattedAnswer is the display and audit view of a graded answer. It carries
// everything needed to re-render the question without the original definition.
type FormattedAnswer struct {
	QuestionType    QuestionType `json:"question_type"`
	QuestionContent string       `json:"question_content"`

	// Choice questions
	Options         []Option `json:"options,omitempty"`
	SelectedOptions []string `json:"selected_options,omitempty"`
	CorrectOptions  []string `json:"correct_options,omitempty"`

	// Drag-drop questions
	DragDropType    DragDropFormat  `json:"drag_drop_type,omitempty"`
	DragItems       []Item          `json:"drag_items,omitempty"`
	DropTargets     []Item          `json:"drop_targets,omitempty"`
	StudentPairs    []Pair          `json:"student_pairs,omitempty"`
	CorrectPairs    []Pair          `json:"correct_pairs,omitempty"`
	Items           []Item          `json:"items,omitempty"`
	StudentOrder    []string        `json:"student_order,omitempty"`
	CorrectOrder    []string        `json:"correct_order,omitempty"`
	StudentMappings []MappingResult `json:"student_mappings,omitempty"`
	CorrectMappings []Mapping       `json:"correct_mappings,omitempty"`
	CorrectCount    *int            `json:"correct_count,omitempty"`
	TotalCount      *int            `json:"total_count,omitempty"`

	// Case-study questions
	SubQuestions  []SubQuestionResult `json:"sub_questions,omitempty"`
	TotalPossible *float64            `json:"total_possible,omitempty"`

	// Short-answer questions; StudentAnswer also holds the raw answer on failures.
	StudentAnswer        any      `json:"student_answer,omitempty"`
	ReferenceAnswer      string   `json:"reference_answer,omitempty"`
	Keywords             []string `json:"keywords,omitempty"`
	MatchedKeywords      []string `json:"matched_keywords,omitempty"`
	KeywordRatio         *float64 `json:"keyword_ratio,omitempty"`
	RequiresManualReview bool     `json:"requires_manual_review,omitempty"`

	Error string `json:"error,omitempty"`

	IsCorrect         bool    `json:"is_correct"`
	QuestionMarks     float64 `json:"question_marks"`
	MarksEarned       float64 `json:"marks_earned"`
	TimeTakenToAnswer any     `json:"time_taken_to_answer"`
}

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Item is a drag item, drop target or ordering item with a positional id.
type Item struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type Pair struct {
	DragID string `json:"drag_id"`
	DropID string `json:"drop_id"`
}

type Mapping struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type MappingResult struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	IsCorrect bool   `json:"is_correct"`
}

// SubQuestionResult is one graded case-study sub-question.
type SubQuestionResult struct {
	ID                   string       `json:"id,omitempty"`
	Index                int          `json:"index"`
	QuestionType         QuestionType `json:"question_type"`
	QuestionContent      string       `json:"question_content"`
	Options              []Option     `json:"options,omitempty"`
	StudentAnswer        any          `json:"student_answer"`
	SelectedOptions      []string     `json:"selected_options,omitempty"`
	CorrectOptions       []string     `json:"correct_options,omitempty"`
	IsCorrect            bool         `json:"is_correct"`
	Marks                float64      `json:"marks"`
	MarksEarned          float64      `json:"marks_earned"`
	RequiresManualReview bool         `json:"requires_manual_review,omitempty"`
	Error                string       `json:"error,omitempty"`
}
