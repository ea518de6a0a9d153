package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coursekit/coursekit-lms/internal/activity"
	"github.com/coursekit/coursekit-lms/internal/certificate"
	"github.com/coursekit/coursekit-lms/internal/scoring"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

// Issuer is the slice of the certificate issuer the service needs.
type Issuer interface {
	Issue(ctx context.Context, in certificate.IssueInput) (certificate.Certificate, error)
}

// Recorder appends history entries; implementations must swallow their own
// errors.
type Recorder interface {
	Record(ctx context.Context, e activity.Entry)
}

// Service drives the attempt lifecycle end to end: gate, start/resume, answer
// buffering, finalize with scoring, and certificate issuance on a pass.
// Enrollment completion is not a direct collaborator: it commits inside the
// store's finalize transaction.
type Service struct {
	Tests    testbank.Store
	Attempts Store
	Gate     *Gate
	Issuer   Issuer
	Activity Recorder
	Log      zerolog.Logger
}

// Start runs the eligibility gate and then creates or resumes the attempt.
// A denied Decision is a normal outcome, not an error.
func (s *Service) Start(ctx context.Context, learnerID, testID string) (Attempt, Decision, error) {
	d, err := s.Gate.CanStart(ctx, learnerID, testID)
	if err != nil {
		return Attempt{}, Decision{}, err
	}
	if !d.Allowed {
		return Attempt{}, d, nil
	}
	a, resumed, err := s.Attempts.StartOrResume(ctx, learnerID, testID)
	if err != nil {
		return Attempt{}, Decision{}, err
	}
	if resumed {
		s.Log.Debug().Str("attempt_id", a.ID).Msg("resumed open attempt")
	}
	return a, d, nil
}

// Questions returns the learner-facing question set (correctness withheld).
// Access runs through the same gate as starting an attempt.
func (s *Service) Questions(ctx context.Context, learnerID, testID string) ([]testbank.Question, Decision, error) {
	d, err := s.Gate.CanStart(ctx, learnerID, testID)
	if err != nil {
		return nil, Decision{}, err
	}
	if !d.Allowed {
		return nil, d, nil
	}
	t, err := s.Tests.GetTestForLearner(ctx, testID)
	if err != nil {
		return nil, Decision{}, err
	}
	return t.ActiveQuestions(), d, nil
}

// SaveAnswer buffers one selection. The stored correctness is advisory
// display state only; finalize recomputes it from option data.
func (s *Service) SaveAnswer(ctx context.Context, learnerID, attemptID, questionID, selection string) (Answer, error) {
	a, err := s.Attempts.Get(ctx, attemptID)
	if err != nil {
		return Answer{}, err
	}
	if a.LearnerID != learnerID {
		return Answer{}, ErrNotOwner
	}
	if a.Status != StatusInProgress {
		return Answer{}, ErrInvalidState
	}

	t, err := s.Tests.GetTest(ctx, a.TestID)
	if err != nil {
		return Answer{}, err
	}
	ans := Answer{AttemptID: attemptID, QuestionID: questionID}
	found := false
	for _, q := range t.ActiveQuestions() {
		if q.ID != questionID {
			continue
		}
		found = true
		if q.Gradable() {
			for _, o := range q.Options {
				if o.ID == selection {
					ans.OptionID = o.ID
					ans.AnswerText = o.Text
					ans.Correct = o.Correct
					if o.Correct {
						ans.PointsEarned = q.Points
					}
				}
			}
		} else {
			ans.AnswerText = selection
			ans.NeedsManual = true
		}
	}
	if !found {
		return Answer{}, fmt.Errorf("question %s not part of test %s", questionID, a.TestID)
	}
	if err := s.Attempts.SaveAnswer(ctx, ans); err != nil {
		return Answer{}, err
	}
	return ans, nil
}

// Finalize submits the attempt: recompute everything from authoritative
// option data, close the attempt atomically, then run the pass side effects.
// Submitted choices override buffered ones per question.
func (s *Service) Finalize(ctx context.Context, learnerID, learnerName, attemptID string, submitted map[string]string) (FinalizeOutcome, error) {
	a, err := s.Attempts.Get(ctx, attemptID)
	if err != nil {
		return FinalizeOutcome{}, err
	}
	if a.LearnerID != learnerID {
		return FinalizeOutcome{}, ErrNotOwner
	}
	if a.Status != StatusInProgress {
		return FinalizeOutcome{}, ErrInvalidState
	}

	t, err := s.Tests.GetTest(ctx, a.TestID)
	if err != nil {
		return FinalizeOutcome{}, err
	}

	choices, err := s.Attempts.BufferedChoices(ctx, attemptID)
	if err != nil {
		return FinalizeOutcome{}, err
	}
	for qid, sel := range submitted {
		choices[qid] = sel
	}

	res := scoring.Score(t.ActiveQuestions(), choices)
	passed := scoring.Passed(res.Percent, t.PassingScore)

	var completion *Completion
	if passed {
		completion = &Completion{LearnerID: learnerID, CourseID: t.CourseID}
	}
	closed, err := s.Attempts.Finalize(ctx, attemptID, res, completion)
	if err != nil {
		return FinalizeOutcome{}, err
	}

	out := FinalizeOutcome{Attempt: closed, Score: res.Percent, Passed: passed}
	for _, qr := range res.PerQuestion {
		if qr.NeedsManual {
			out.NeedsManualGrading = true
			break
		}
	}

	meta, _ := json.Marshal(map[string]any{"test_id": t.ID, "attempt_number": closed.Number, "score": res.Percent})
	s.Activity.Record(ctx, activity.Entry{
		LearnerID:    learnerID,
		Type:         activity.TypeTestCompleted,
		Title:        "Completed test: " + t.Title,
		PointsEarned: res.EarnedPoints,
		MetadataJSON: string(meta),
	})

	if !passed {
		return out, nil
	}

	s.Activity.Record(ctx, activity.Entry{
		LearnerID:    learnerID,
		Type:         activity.TypeTestPassed,
		Title:        "Passed test: " + t.Title,
		MetadataJSON: string(meta),
	})

	course, err := s.Tests.GetCourse(ctx, t.CourseID)
	if err != nil {
		if errors.Is(err, testbank.ErrCourseNotFound) {
			return out, certificate.ErrMissingCourseData
		}
		return out, err
	}
	cert, err := s.Issuer.Issue(ctx, certificate.IssueInput{
		LearnerID:    learnerID,
		LearnerName:  learnerName,
		CourseID:     t.CourseID,
		CourseName:   course.Name,
		AttemptID:    attemptID,
		Score:        res.Percent,
		PassingScore: t.PassingScore,
	})
	if err != nil {
		return out, err
	}
	out.CertificateID = cert.ID
	out.VerificationCode = cert.VerificationCode

	s.Activity.Record(ctx, activity.Entry{
		LearnerID:    learnerID,
		Type:         activity.TypeCertificateIssued,
		Title:        "Certificate earned: " + course.Name,
		MetadataJSON: fmt.Sprintf(`{"certificate_id":%q}`, cert.ID),
	})
	return out, nil
}

// Get enforces ownership unless the caller may view any attempt.
func (s *Service) Get(ctx context.Context, callerID string, canViewAll bool, attemptID string) (Attempt, error) {
	a, err := s.Attempts.Get(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if !canViewAll && a.LearnerID != callerID {
		return Attempt{}, ErrNotOwner
	}
	return a, nil
}

// Abandon is the admin/timeout path out of in_progress.
func (s *Service) Abandon(ctx context.Context, attemptID string) (Attempt, error) {
	return s.Attempts.Abandon(ctx, attemptID)
}
