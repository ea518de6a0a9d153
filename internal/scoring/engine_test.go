package scoring

import (
	"testing"

	"github.com/coursekit/coursekit-lms/internal/testbank"
)

func mcq(id string, points float64, correctOpt string, opts ...string) testbank.Question {
	q := testbank.Question{ID: id, Type: testbank.TypeMultipleChoice, Points: points, Active: true}
	for i, o := range opts {
		q.Options = append(q.Options, testbank.Option{ID: o, Text: "option " + o, Correct: o == correctOpt, Position: i})
	}
	return q
}

func TestScoreSingleQuestion(t *testing.T) {
	qs := []testbank.Question{mcq("q1", 10, "a", "a", "b", "c", "d")}

	cases := []struct {
		name    string
		choices map[string]string
		earned  float64
		percent float64
	}{
		{"correct", map[string]string{"q1": "a"}, 10, 100},
		{"wrong", map[string]string{"q1": "b"}, 0, 0},
		{"unanswered", map[string]string{}, 0, 0},
		{"foreign option id", map[string]string{"q1": "zzz"}, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Score(qs, tc.choices)
			if res.EarnedPoints != tc.earned {
				t.Errorf("earned = %v, want %v", res.EarnedPoints, tc.earned)
			}
			if res.Percent != tc.percent {
				t.Errorf("percent = %v, want %v", res.Percent, tc.percent)
			}
			if res.TotalPoints != 10 {
				t.Errorf("total = %v, want 10", res.TotalPoints)
			}
		})
	}
}

func TestScoreTrueFalse(t *testing.T) {
	q := testbank.Question{ID: "q1", Type: testbank.TypeTrueFalse, Points: 5, Active: true,
		Options: []testbank.Option{
			{ID: "t", Text: "True", Correct: true},
			{ID: "f", Text: "False"},
		}}
	res := Score([]testbank.Question{q}, map[string]string{"q1": "t"})
	if res.EarnedPoints != 5 || !res.PerQuestion[0].Correct {
		t.Fatalf("true/false not graded as a 2-option choice: %+v", res.PerQuestion[0])
	}
}

func TestScoreShortAnswerNeedsManual(t *testing.T) {
	q := testbank.Question{ID: "q1", Type: testbank.TypeShortAnswer, Points: 5, Active: true}
	res := Score([]testbank.Question{q}, map[string]string{"q1": "free text"})
	qr := res.PerQuestion[0]
	if qr.PointsEarned != 0 || !qr.NeedsManual {
		t.Fatalf("short answer must earn 0 auto points and flag manual, got %+v", qr)
	}
	if qr.AnswerText != "free text" {
		t.Fatalf("submitted text not preserved: %q", qr.AnswerText)
	}
	if res.TotalPoints != 5 {
		t.Fatalf("short answer still counts toward total, got %v", res.TotalPoints)
	}
}

func TestScoreMixedAggregate(t *testing.T) {
	qs := []testbank.Question{
		mcq("q1", 10, "a", "a", "b"),
		mcq("q2", 10, "a", "a", "b"),
		mcq("q3", 20, "a", "a", "b"),
	}
	res := Score(qs, map[string]string{"q1": "a", "q2": "b", "q3": "a"})
	if res.TotalPoints != 40 || res.EarnedPoints != 30 {
		t.Fatalf("points = %v/%v, want 30/40", res.EarnedPoints, res.TotalPoints)
	}
	if res.Percent != 75 {
		t.Fatalf("percent = %v, want 75", res.Percent)
	}
}

func TestScoreZeroQuestions(t *testing.T) {
	res := Score(nil, map[string]string{"ghost": "a"})
	if res.Percent != 0 || res.TotalPoints != 0 || res.EarnedPoints != 0 {
		t.Fatalf("zero-question test must score 0, got %+v", res)
	}
}

func TestScoreDeterminism(t *testing.T) {
	qs := []testbank.Question{
		mcq("q1", 3, "a", "a", "b", "c"),
		mcq("q2", 7, "b", "a", "b", "c"),
		{ID: "q3", Type: testbank.TypeShortAnswer, Points: 5, Active: true},
	}
	choices := map[string]string{"q1": "a", "q2": "c", "q3": "essay"}
	first := Score(qs, choices)
	for i := 0; i < 50; i++ {
		again := Score(qs, choices)
		if again.Percent != first.Percent || again.EarnedPoints != first.EarnedPoints {
			t.Fatalf("re-scoring diverged on run %d: %+v vs %+v", i, again, first)
		}
	}
}

func TestPassedBoundaryInclusive(t *testing.T) {
	if !Passed(70, 70) {
		t.Error("score equal to threshold must pass")
	}
	if Passed(69.999, 70) {
		t.Error("score below threshold must not pass")
	}
	if !Passed(0, 0) {
		t.Error("zero threshold passes a zero score")
	}
}
