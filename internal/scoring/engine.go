// Package scoring computes attempt results. Everything here is a pure
// function of the question set and the submitted choices, so re-scoring a
// finished attempt reproduces the stored result exactly.
package scoring

import "github.com/coursekit/coursekit-lms/internal/testbank"

// QuestionResult is the graded outcome for a single question.
type QuestionResult struct {
	QuestionID   string  `json:"question_id"`
	OptionID     string  `json:"option_id,omitempty"`
	AnswerText   string  `json:"answer_text,omitempty"`
	Correct      bool    `json:"correct"`
	PointsEarned float64 `json:"points_earned"`
	MaxPoints    float64 `json:"max_points"`
	NeedsManual  bool    `json:"needs_manual,omitempty"`
}

type Result struct {
	PerQuestion  []QuestionResult `json:"per_question"`
	TotalPoints  float64          `json:"total_points"`
	EarnedPoints float64          `json:"earned_points"`
	Percent      float64          `json:"percent"`
}

// Strategy grades one question against the learner's submission. For choice
// questions the submission is an option ID; for short answers it is the raw
// text.
type Strategy interface {
	Grade(q testbank.Question, submitted string) QuestionResult
}

var strategies = map[string]Strategy{
	testbank.TypeMultipleChoice: choiceStrategy{},
	testbank.TypeTrueFalse:      choiceStrategy{},
	testbank.TypeShortAnswer:    manualStrategy{},
}

// Score grades every question against the submitted choices, keyed by
// question ID. A missing or unknown option ID counts as unanswered: zero
// points, no error.
func Score(questions []testbank.Question, choices map[string]string) Result {
	res := Result{PerQuestion: make([]QuestionResult, 0, len(questions))}
	for _, q := range questions {
		s, ok := strategies[q.Type]
		if !ok {
			s = manualStrategy{}
		}
		qr := s.Grade(q, choices[q.ID])
		res.PerQuestion = append(res.PerQuestion, qr)
		res.TotalPoints += q.Points
		res.EarnedPoints += qr.PointsEarned
	}
	if res.TotalPoints > 0 {
		res.Percent = res.EarnedPoints / res.TotalPoints * 100
	}
	return res
}

// Passed applies the inclusive pass boundary: a score exactly at the
// threshold passes.
func Passed(percent, passingScore float64) bool {
	return percent >= passingScore
}

type choiceStrategy struct{}

func (choiceStrategy) Grade(q testbank.Question, optionID string) QuestionResult {
	qr := QuestionResult{QuestionID: q.ID, MaxPoints: q.Points}
	if optionID == "" {
		return qr
	}
	for _, o := range q.Options {
		if o.ID != optionID {
			continue
		}
		qr.OptionID = o.ID
		qr.AnswerText = o.Text
		if o.Correct {
			qr.Correct = true
			qr.PointsEarned = q.Points
		}
		return qr
	}
	// option ID does not belong to this question: treat as unanswered
	return QuestionResult{QuestionID: q.ID, MaxPoints: q.Points}
}

// manualStrategy covers short-answer questions: zero auto points, flagged for
// a manual-grading pass that this core does not perform. The submitted text
// is kept so a reviewer can see it.
type manualStrategy struct{}

func (manualStrategy) Grade(q testbank.Question, submitted string) QuestionResult {
	return QuestionResult{QuestionID: q.ID, MaxPoints: q.Points, AnswerText: submitted, NeedsManual: true}
}
