// Package enrollment exposes the narrow slice of the enrollment/progress
// subsystem the attempt core depends on. Course content and progress tracking
// are owned elsewhere; this package only reads progress. The completed marker
// is flipped inside the attempt store's finalize transaction so a passing
// submit commits atomically.
package enrollment

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotEnrolled = errors.New("learner not enrolled in course")

type Enrollment struct {
	LearnerID       string  `json:"learner_id"`
	CourseID        string  `json:"course_id"`
	Status          string  `json:"status"`
	ProgressPercent float64 `json:"progress_percent"`
	CompletedAt     *int64  `json:"completed_at,omitempty"`
}

type Source interface {
	Get(ctx context.Context, learnerID, courseID string) (Enrollment, error)
}

type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(db *sql.DB) *SQLSource { return &SQLSource{db: db} }

func (s *SQLSource) Get(ctx context.Context, learnerID, courseID string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT learner_id,course_id,status,progress_percent,completed_at
		FROM enrollments WHERE learner_id=$1 AND course_id=$2`, learnerID, courseID)
	var e Enrollment
	if err := row.Scan(&e.LearnerID, &e.CourseID, &e.Status, &e.ProgressPercent, &e.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, ErrNotEnrolled
		}
		return Enrollment{}, err
	}
	return e, nil
}

// Enroll exists for seeding and tests; the real write path lives in the
// enrollment subsystem.
func (s *SQLSource) Enroll(ctx context.Context, learnerID, courseID string, progress float64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (learner_id,course_id,status,progress_percent)
		VALUES ($1,$2,'active',$3)
		ON CONFLICT (learner_id,course_id) DO UPDATE SET progress_percent=EXCLUDED.progress_percent`,
		learnerID, courseID, progress)
	return err
}
