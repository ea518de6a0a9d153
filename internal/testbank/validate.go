package testbank

import "fmt"

// Validate checks authoring-time invariants before a test is stored.
// Grading trusts these; it never re-checks option shape.
func Validate(t Test) error {
	if t.ID == "" || t.CourseID == "" {
		return fmt.Errorf("test id and course_id required")
	}
	if t.PassingScore < 0 || t.PassingScore > 100 {
		return fmt.Errorf("passing_score must be within [0,100], got %v", t.PassingScore)
	}
	for _, q := range t.Questions {
		if q.ID == "" {
			return fmt.Errorf("question without id")
		}
		if q.Points < 1 {
			return fmt.Errorf("question %s: points must be >= 1", q.ID)
		}
		switch q.Type {
		case TypeMultipleChoice, TypeTrueFalse:
			if len(q.Options) < 2 {
				return fmt.Errorf("question %s: gradable question needs at least 2 options", q.ID)
			}
			correct := 0
			for _, o := range q.Options {
				if o.ID == "" {
					return fmt.Errorf("question %s: option without id", q.ID)
				}
				if o.Correct {
					correct++
				}
			}
			if correct == 0 {
				return fmt.Errorf("question %s: no correct option", q.ID)
			}
			if q.Type == TypeTrueFalse && len(q.Options) != 2 {
				return fmt.Errorf("question %s: true/false question needs exactly 2 options", q.ID)
			}
		case TypeShortAnswer:
			// no options to validate
		default:
			return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
		}
	}
	return nil
}
