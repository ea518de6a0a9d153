package testbank

// Question types understood by the scoring engine. Short-answer questions are
// stored and delivered but never auto-graded; they wait for manual review.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Correct  bool   `json:"correct,omitempty"`
	Position int    `json:"position"`
}

type Question struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"` // multiple_choice | true_false | short_answer
	Text     string   `json:"text"`
	Points   float64  `json:"points"`
	Active   bool     `json:"active"`
	Position int      `json:"position"`
	Options  []Option `json:"options,omitempty"`
}

// Gradable reports whether the question can be auto-scored from its options.
func (q Question) Gradable() bool {
	return q.Type == TypeMultipleChoice || q.Type == TypeTrueFalse
}

type Test struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"course_id"`
	Title        string     `json:"title"`
	PassingScore float64    `json:"passing_score"` // percentage, 0..100
	TimeLimitMin int        `json:"time_limit_min"` // 0 = no limit
	MaxAttempts  int        `json:"max_attempts"`   // 0 = unlimited
	Active       bool       `json:"active"`
	Position     int        `json:"position"`
	Questions    []Question `json:"questions,omitempty"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

// ActiveQuestions returns the active questions in delivery order.
func (t Test) ActiveQuestions() []Question {
	out := make([]Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		if q.Active {
			out = append(out, q)
		}
	}
	return out
}
