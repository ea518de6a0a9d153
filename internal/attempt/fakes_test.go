package attempt_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/coursekit/coursekit-lms/internal/activity"
	"github.com/coursekit/coursekit-lms/internal/attempt"
	"github.com/coursekit/coursekit-lms/internal/certificate"
	"github.com/coursekit/coursekit-lms/internal/enrollment"
	"github.com/coursekit/coursekit-lms/internal/scoring"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

/* ---- in-memory fakes satisfying the collaborator interfaces ---- */

type fakeTests struct {
	tests   map[string]testbank.Test
	courses map[string]testbank.Course
}

func newFakeTests() *fakeTests {
	return &fakeTests{tests: map[string]testbank.Test{}, courses: map[string]testbank.Course{}}
}

func (f *fakeTests) PutTest(_ context.Context, t testbank.Test) error {
	if err := testbank.Validate(t); err != nil {
		return err
	}
	f.tests[t.ID] = t
	return nil
}

func (f *fakeTests) GetTest(_ context.Context, id string) (testbank.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return testbank.Test{}, testbank.ErrNotFound
	}
	return t, nil
}

func (f *fakeTests) GetTestForLearner(ctx context.Context, id string) (testbank.Test, error) {
	t, err := f.GetTest(ctx, id)
	if err != nil {
		return testbank.Test{}, err
	}
	return testbank.StripAnswers(t), nil
}

func (f *fakeTests) GetCourse(_ context.Context, id string) (testbank.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return testbank.Course{}, testbank.ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeTests) PutCourse(_ context.Context, c testbank.Course) error {
	f.courses[c.ID] = c
	return nil
}

type fakeEnrollments struct {
	m map[string]enrollment.Enrollment // learner|course
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{m: map[string]enrollment.Enrollment{}}
}

func ekey(learnerID, courseID string) string { return learnerID + "|" + courseID }

func (f *fakeEnrollments) enroll(learnerID, courseID string, progress float64) {
	f.m[ekey(learnerID, courseID)] = enrollment.Enrollment{
		LearnerID: learnerID, CourseID: courseID, Status: "active", ProgressPercent: progress,
	}
}

func (f *fakeEnrollments) Get(_ context.Context, learnerID, courseID string) (enrollment.Enrollment, error) {
	e, ok := f.m[ekey(learnerID, courseID)]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotEnrolled
	}
	return e, nil
}

// fakeCertBox plays both the gate's CertChecker and the service's Issuer, so
// a certificate issued through the service immediately blocks new starts.
type fakeCertBox struct {
	mu     sync.Mutex
	certs  map[string]certificate.Certificate // learner|course
	issued int
}

func newFakeCertBox() *fakeCertBox {
	return &fakeCertBox{certs: map[string]certificate.Certificate{}}
}

func (f *fakeCertBox) HasValid(_ context.Context, learnerID, courseID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.certs[ekey(learnerID, courseID)]
	return ok && c.Valid, nil
}

func (f *fakeCertBox) Issue(_ context.Context, in certificate.IssueInput) (certificate.Certificate, error) {
	if in.CourseName == "" || in.LearnerName == "" {
		return certificate.Certificate{}, certificate.ErrMissingCourseData
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := ekey(in.LearnerID, in.CourseID)
	if c, ok := f.certs[k]; ok {
		return c, nil
	}
	f.issued++
	c := certificate.Certificate{
		ID:               fmt.Sprintf("cert-%d", f.issued),
		LearnerID:        in.LearnerID,
		CourseID:         in.CourseID,
		AttemptID:        in.AttemptID,
		Number:           fmt.Sprintf("CERT-%s-%s-%d", in.CourseID, in.LearnerID, f.issued),
		VerificationCode: fmt.Sprintf("CODE%06d", f.issued),
		Valid:            true,
		CourseName:       in.CourseName,
		LearnerName:      in.LearnerName,
		Score:            in.Score,
		PassingScore:     in.PassingScore,
	}
	f.certs[k] = c
	return c, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e activity.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

// memStore is an in-memory attempt.Store with the same observable semantics
// as the SQL store.
type memStore struct {
	mu          sync.Mutex
	seq         int
	clock       int64
	attempts    map[string]attempt.Attempt
	answers     map[string]map[string]attempt.Answer // attemptID -> questionID
	completions []attempt.Completion
}

func newMemStore() *memStore {
	return &memStore{
		attempts: map[string]attempt.Attempt{},
		answers:  map[string]map[string]attempt.Answer{},
		clock:    1_000_000,
	}
}

func (m *memStore) tick() int64 {
	m.clock += 60 // one minute per event keeps time_taken stable
	return m.clock
}

func (m *memStore) StartOrResume(_ context.Context, learnerID, testID string) (attempt.Attempt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxN := 0
	for _, a := range m.attempts {
		if a.LearnerID != learnerID || a.TestID != testID {
			continue
		}
		if a.Status == attempt.StatusInProgress {
			return a, true, nil
		}
		if a.Number > maxN {
			maxN = a.Number
		}
	}
	m.seq++
	a := attempt.Attempt{
		ID:        fmt.Sprintf("att-%d", m.seq),
		TestID:    testID,
		LearnerID: learnerID,
		Number:    maxN + 1,
		Status:    attempt.StatusInProgress,
		StartedAt: m.tick(),
	}
	m.attempts[a.ID] = a
	return a, false, nil
}

func (m *memStore) Get(_ context.Context, id string) (attempt.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return attempt.Attempt{}, attempt.ErrNotFound
	}
	return a, nil
}

func (m *memStore) SaveAnswer(_ context.Context, ans attempt.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[ans.AttemptID]
	if !ok {
		return attempt.ErrNotFound
	}
	if a.Status != attempt.StatusInProgress {
		return attempt.ErrInvalidState
	}
	if m.answers[ans.AttemptID] == nil {
		m.answers[ans.AttemptID] = map[string]attempt.Answer{}
	}
	ans.UpdatedAt = m.tick()
	m.answers[ans.AttemptID][ans.QuestionID] = ans
	return nil
}

func (m *memStore) BufferedChoices(_ context.Context, attemptID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for qid, ans := range m.answers[attemptID] {
		if ans.OptionID != "" {
			out[qid] = ans.OptionID
		} else {
			out[qid] = ans.AnswerText
		}
	}
	return out, nil
}

func (m *memStore) Finalize(_ context.Context, attemptID string, res scoring.Result, completion *attempt.Completion) (attempt.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return attempt.Attempt{}, attempt.ErrNotFound
	}
	if a.Status != attempt.StatusInProgress {
		return attempt.Attempt{}, attempt.ErrInvalidState
	}
	now := m.tick()
	a.Status = attempt.StatusCompleted
	a.CompletedAt = &now
	a.TotalPoints = res.TotalPoints
	a.EarnedPoints = res.EarnedPoints
	score := res.Percent
	a.Score = &score
	a.TimeTakenMin = int((now - a.StartedAt) / 60)
	m.attempts[attemptID] = a
	if m.answers[attemptID] == nil {
		m.answers[attemptID] = map[string]attempt.Answer{}
	}
	for _, qr := range res.PerQuestion {
		m.answers[attemptID][qr.QuestionID] = attempt.Answer{
			AttemptID: attemptID, QuestionID: qr.QuestionID, OptionID: qr.OptionID,
			AnswerText: qr.AnswerText, Correct: qr.Correct, PointsEarned: qr.PointsEarned,
			NeedsManual: qr.NeedsManual, UpdatedAt: now,
		}
	}
	if completion != nil {
		m.completions = append(m.completions, *completion)
	}
	return a, nil
}

func (m *memStore) Abandon(_ context.Context, attemptID string) (attempt.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return attempt.Attempt{}, attempt.ErrNotFound
	}
	if a.Status != attempt.StatusInProgress {
		return attempt.Attempt{}, attempt.ErrInvalidState
	}
	now := m.tick()
	a.Status = attempt.StatusAbandoned
	a.CompletedAt = &now
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memStore) HasPassed(_ context.Context, learnerID, testID string, passingScore float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.TestID == testID &&
			a.Status == attempt.StatusCompleted && a.Score != nil && *a.Score >= passingScore {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CountFinished(_ context.Context, learnerID, testID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.TestID == testID && a.Status != attempt.StatusInProgress {
			n++
		}
	}
	return n, nil
}

func (m *memStore) List(_ context.Context, opts attempt.ListOpts) ([]attempt.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attempt.Attempt
	for _, a := range m.attempts {
		if opts.LearnerID != "" && a.LearnerID != opts.LearnerID {
			continue
		}
		if opts.TestID != "" && a.TestID != opts.TestID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
