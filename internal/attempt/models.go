package attempt

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned" // terminal, set by admin/timeout only
)

type Attempt struct {
	ID           string   `json:"id"`
	TestID       string   `json:"test_id"`
	LearnerID    string   `json:"learner_id"`
	Number       int      `json:"attempt_number"` // 1-based, monotonic per learner+test
	Status       string   `json:"status"`
	StartedAt    int64    `json:"started_at"`
	CompletedAt  *int64   `json:"completed_at,omitempty"`
	TotalPoints  float64  `json:"total_points"`
	EarnedPoints float64  `json:"earned_points"`
	Score        *float64 `json:"score,omitempty"` // percent; nil until completed
	TimeTakenMin int      `json:"time_taken_min"`
}

// Answer is one learner response within an attempt. Rows written while the
// attempt is open are advisory; finalize recomputes every field from the
// authoritative option data before the attempt closes.
type Answer struct {
	AttemptID    string  `json:"attempt_id"`
	QuestionID   string  `json:"question_id"`
	OptionID     string  `json:"option_id,omitempty"`
	AnswerText   string  `json:"answer_text,omitempty"`
	Correct      bool    `json:"correct"`
	PointsEarned float64 `json:"points_earned"`
	NeedsManual  bool    `json:"needs_manual,omitempty"`
	UpdatedAt    int64   `json:"updated_at"`
}

// FinalizeOutcome is what the learner gets back from a submit.
type FinalizeOutcome struct {
	Attempt            Attempt  `json:"attempt"`
	Score              float64  `json:"score"`
	Passed             bool     `json:"passed"`
	CertificateID      string   `json:"certificate_id,omitempty"`
	VerificationCode   string   `json:"verification_code,omitempty"`
	NeedsManualGrading bool     `json:"needs_manual_grading,omitempty"`
}
