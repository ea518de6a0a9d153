package attempt_test

import (
	"context"
	"testing"

	"github.com/coursekit/coursekit-lms/internal/attempt"
	"github.com/coursekit/coursekit-lms/internal/certificate"
	"github.com/coursekit/coursekit-lms/internal/scoring"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

func gateEnv(t *testing.T) (*attempt.Gate, *fakeTests, *fakeEnrollments, *memStore, *fakeCertBox) {
	t.Helper()
	tests := newFakeTests()
	enr := newFakeEnrollments()
	store := newMemStore()
	certs := newFakeCertBox()

	tb := testbank.Test{
		ID: "t1", CourseID: "c1", Title: "Final Exam", PassingScore: 70,
		MaxAttempts: 2, Active: true,
		Questions: []testbank.Question{{
			ID: "q1", Type: testbank.TypeMultipleChoice, Points: 10, Active: true,
			Options: []testbank.Option{{ID: "a", Text: "A", Correct: true}, {ID: "b", Text: "B"}},
		}},
	}
	if err := tests.PutTest(context.Background(), tb); err != nil {
		t.Fatalf("seed test: %v", err)
	}
	_ = tests.PutCourse(context.Background(), testbank.Course{ID: "c1", Name: "Go Basics"})

	return &attempt.Gate{Tests: tests, Enrollments: enr, Attempts: store, Certs: certs}, tests, enr, store, certs
}

// finish records a terminal attempt directly in the store.
func finish(t *testing.T, store *memStore, learnerID, testID string, percent float64, abandon bool) {
	t.Helper()
	ctx := context.Background()
	a, _, err := store.StartOrResume(ctx, learnerID, testID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if abandon {
		if _, err := store.Abandon(ctx, a.ID); err != nil {
			t.Fatalf("abandon: %v", err)
		}
		return
	}
	res := scoring.Result{TotalPoints: 100, EarnedPoints: percent, Percent: percent}
	if _, err := store.Finalize(ctx, a.ID, res, nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

func TestGateDenyReasons(t *testing.T) {
	ctx := context.Background()

	t.Run("test inactive", func(t *testing.T) {
		gate, tests, enr, _, _ := gateEnv(t)
		tb, _ := tests.GetTest(ctx, "t1")
		tb.Active = false
		_ = tests.PutTest(ctx, tb)
		enr.enroll("l1", "c1", 100)

		d, err := gate.CanStart(ctx, "l1", "t1")
		if err != nil {
			t.Fatal(err)
		}
		if d.Allowed || d.Reason != attempt.DenyTestInactive {
			t.Fatalf("got %+v, want TestInactive denial", d)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		gate, _, _, _, _ := gateEnv(t)
		d, _ := gate.CanStart(ctx, "l1", "t1")
		if d.Allowed || d.Reason != attempt.DenyNotEnrolled {
			t.Fatalf("got %+v, want NotEnrolled denial", d)
		}
	})

	t.Run("prerequisites incomplete", func(t *testing.T) {
		gate, _, enr, _, _ := gateEnv(t)
		enr.enroll("l1", "c1", 60)
		d, _ := gate.CanStart(ctx, "l1", "t1")
		if d.Allowed || d.Reason != attempt.DenyPrerequisitesIncomplete {
			t.Fatalf("got %+v, want PrerequisitesIncomplete denial", d)
		}
	})

	t.Run("attempt limit reached", func(t *testing.T) {
		gate, _, enr, store, _ := gateEnv(t)
		enr.enroll("l1", "c1", 100)
		finish(t, store, "l1", "t1", 50, false)
		finish(t, store, "l1", "t1", 40, true) // abandoned attempts count too
		d, _ := gate.CanStart(ctx, "l1", "t1")
		if d.Allowed || d.Reason != attempt.DenyAttemptLimitReached {
			t.Fatalf("got %+v, want AttemptLimitReached denial", d)
		}
	})

	t.Run("allowed", func(t *testing.T) {
		gate, _, enr, _, _ := gateEnv(t)
		enr.enroll("l1", "c1", 100)
		d, err := gate.CanStart(ctx, "l1", "t1")
		if err != nil {
			t.Fatal(err)
		}
		if !d.Allowed {
			t.Fatalf("expected allow, got %+v", d)
		}
	})
}

// A valid certificate blocks starts even with attempt quota remaining, and
// even when the attempt limit is also exhausted the certificate reason wins.
func TestGateCertificatePrecedence(t *testing.T) {
	ctx := context.Background()
	gate, _, enr, store, certs := gateEnv(t)
	enr.enroll("l1", "c1", 100)
	certs.certs[ekey("l1", "c1")] = certificate.Certificate{ID: "c", Valid: true}

	d, _ := gate.CanStart(ctx, "l1", "t1")
	if d.Allowed || d.Reason != attempt.DenyAlreadyCertified {
		t.Fatalf("got %+v, want AlreadyCertified with quota remaining", d)
	}

	// Exhaust the limit as well: AlreadyCertified must still be the reason.
	finish(t, store, "l1", "t1", 10, false)
	finish(t, store, "l1", "t1", 20, false)
	d, _ = gate.CanStart(ctx, "l1", "t1")
	if d.Reason != attempt.DenyAlreadyCertified {
		t.Fatalf("got %+v, want AlreadyCertified over AttemptLimitReached", d)
	}
}

// A passing completed attempt with no certificate yet (issuance pending) is
// denied AlreadyPassed, and that reason outranks the attempt limit.
func TestGateAlreadyPassedPrecedesLimit(t *testing.T) {
	ctx := context.Background()
	gate, _, enr, store, _ := gateEnv(t)
	enr.enroll("l1", "c1", 100)
	finish(t, store, "l1", "t1", 30, false)
	finish(t, store, "l1", "t1", 85, false) // limit now also exhausted

	d, _ := gate.CanStart(ctx, "l1", "t1")
	if d.Allowed || d.Reason != attempt.DenyAlreadyPassed {
		t.Fatalf("got %+v, want AlreadyPassed over AttemptLimitReached", d)
	}
}

// An exact-threshold score counts as passed at the gate too.
func TestGatePassBoundary(t *testing.T) {
	ctx := context.Background()
	gate, _, enr, store, _ := gateEnv(t)
	enr.enroll("l1", "c1", 100)
	finish(t, store, "l1", "t1", 70, false)

	d, _ := gate.CanStart(ctx, "l1", "t1")
	if d.Reason != attempt.DenyAlreadyPassed {
		t.Fatalf("got %+v, want AlreadyPassed for exact-threshold score", d)
	}
}
