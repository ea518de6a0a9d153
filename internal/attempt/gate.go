package attempt

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursekit/coursekit-lms/internal/enrollment"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

// CertChecker is the slice of the certificate store the gate needs.
type CertChecker interface {
	HasValid(ctx context.Context, learnerID, courseID string) (bool, error)
}

// Gate decides whether a learner may start (or resume) a test attempt. It is
// read-only and re-evaluated on every start call: a certificate issued out of
// band must block a resume too.
type Gate struct {
	Tests       testbank.Store
	Enrollments enrollment.Source
	Attempts    Store
	Certs       CertChecker
}

// CanStart checks the eligibility rules in a fixed order. The returned
// Decision carries the first rule that failed; the error is only for storage
// faults.
func (g *Gate) CanStart(ctx context.Context, learnerID, testID string) (Decision, error) {
	t, err := g.Tests.GetTest(ctx, testID)
	if err != nil {
		return Decision{}, err
	}
	if !t.Active {
		return deny(DenyTestInactive, "this test is not currently available"), nil
	}

	enr, err := g.Enrollments.Get(ctx, learnerID, t.CourseID)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotEnrolled) {
			return deny(DenyNotEnrolled, "you are not enrolled in this course"), nil
		}
		return Decision{}, err
	}
	if enr.ProgressPercent < 100 {
		return deny(DenyPrerequisitesIncomplete,
			fmt.Sprintf("complete the course content first (%.0f%% done)", enr.ProgressPercent)), nil
	}

	certified, err := g.Certs.HasValid(ctx, learnerID, t.CourseID)
	if err != nil {
		return Decision{}, err
	}
	if certified {
		return deny(DenyAlreadyCertified,
			"you have already received a certificate for this course; no retakes allowed"), nil
	}

	// Already-passed covers the window where certification is still pending.
	// Checked before the attempt limit: once passed, the limit is moot.
	passed, err := g.Attempts.HasPassed(ctx, learnerID, testID, t.PassingScore)
	if err != nil {
		return Decision{}, err
	}
	if passed {
		return deny(DenyAlreadyPassed, "you have already passed this test"), nil
	}

	if t.MaxAttempts > 0 {
		n, err := g.Attempts.CountFinished(ctx, learnerID, testID)
		if err != nil {
			return Decision{}, err
		}
		if n >= t.MaxAttempts {
			return deny(DenyAttemptLimitReached,
				fmt.Sprintf("you have used all %d attempts for this test", t.MaxAttempts)), nil
		}
	}

	return allow(), nil
}
