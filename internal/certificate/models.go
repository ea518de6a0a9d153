package certificate

// Certificate is issued at most once per (learner, course). Course and
// learner names plus the scores are snapshotted at issuance time so later
// course edits never alter an issued certificate.
type Certificate struct {
	ID               string  `json:"id"`
	LearnerID        string  `json:"learner_id"`
	CourseID         string  `json:"course_id"`
	AttemptID        string  `json:"attempt_id,omitempty"`
	Number           string  `json:"number"`
	VerificationCode string  `json:"verification_code"`
	IssuedAt         int64   `json:"issued_at"`
	ExpiresAt        *int64  `json:"expires_at,omitempty"`
	Valid            bool    `json:"valid"`
	CourseName       string  `json:"course_name"`
	LearnerName      string  `json:"learner_name"`
	Score            float64 `json:"score"`
	PassingScore     float64 `json:"passing_score"`
}

// Verification is the public view served to third parties. It deliberately
// omits the certificate number.
type Verification struct {
	LearnerName string `json:"learner_name"`
	CourseName  string `json:"course_name"`
	IssuedAt    int64  `json:"issued_at"`
	Valid       bool   `json:"valid"`
}
