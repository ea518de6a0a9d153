package attempt

import (
	"context"

	"github.com/coursekit/coursekit-lms/internal/scoring"
)

// Completion marks the learner's course enrollment completed alongside a
// passing finalize.
type Completion struct {
	LearnerID string
	CourseID  string
}

type ListOpts struct {
	TestID    string
	LearnerID string
	Status    string
	Limit     int
	Offset    int
}

// Store owns attempt and answer rows. Finalize is a single transaction: the
// status transition and every answer row commit together or not at all.
type Store interface {
	// StartOrResume returns the open attempt for (learner, test) if one
	// exists, otherwise creates attempt number max+1. resumed reports which.
	StartOrResume(ctx context.Context, learnerID, testID string) (a Attempt, resumed bool, err error)
	Get(ctx context.Context, id string) (Attempt, error)
	// SaveAnswer upserts a buffered answer while the attempt is open.
	SaveAnswer(ctx context.Context, ans Answer) error
	// BufferedChoices returns the saved selections keyed by question ID.
	BufferedChoices(ctx context.Context, attemptID string) (map[string]string, error)
	// Finalize transitions in_progress -> completed and writes the
	// recomputed answers atomically; when completion is non-nil the
	// enrollment's completed marker commits in the same transaction.
	// ErrInvalidState if not in progress.
	Finalize(ctx context.Context, attemptID string, res scoring.Result, completion *Completion) (Attempt, error)
	// Abandon transitions in_progress -> abandoned.
	Abandon(ctx context.Context, attemptID string) (Attempt, error)
	// HasPassed reports whether any completed attempt for (learner, test)
	// scored at or above the threshold.
	HasPassed(ctx context.Context, learnerID, testID string, passingScore float64) (bool, error)
	// CountFinished counts completed and abandoned attempts for the limit check.
	CountFinished(ctx context.Context, learnerID, testID string) (int, error)
	List(ctx context.Context, opts ListOpts) ([]Attempt, error)
}
