package testbank

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("test not found")
	ErrCourseNotFound = errors.New("course not found")
)

// Course is the minimal view of a course this core needs: a display name to
// snapshot into certificates. Course content lives in the authoring subsystem.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store is the read-mostly question bank. Tests are authored elsewhere; the
// attempt core only ever reads them.
type Store interface {
	PutTest(ctx context.Context, t Test) error
	// GetTest returns the full test, including option correctness flags.
	GetTest(ctx context.Context, id string) (Test, error)
	// GetTestForLearner returns the test with correctness flags stripped.
	GetTestForLearner(ctx context.Context, id string) (Test, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	PutCourse(ctx context.Context, c Course) error
}

// StripAnswers removes correctness flags from every option, for learner-facing
// delivery.
func StripAnswers(t Test) Test {
	qs := make([]Question, len(t.Questions))
	copy(qs, t.Questions)
	for i := range qs {
		if len(qs[i].Options) == 0 {
			continue
		}
		opts := make([]Option, len(qs[i].Options))
		copy(opts, qs[i].Options)
		for j := range opts {
			opts[j].Correct = false
		}
		qs[i].Options = opts
	}
	t.Questions = qs
	return t
}
