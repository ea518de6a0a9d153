package testbank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	if err := Validate(t); err != nil {
		return err
	}
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,course_id,title,passing_score,time_limit_min,max_attempts,active,position,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET course_id=EXCLUDED.course_id, title=EXCLUDED.title,
			passing_score=EXCLUDED.passing_score, time_limit_min=EXCLUDED.time_limit_min,
			max_attempts=EXCLUDED.max_attempts, active=EXCLUDED.active,
			position=EXCLUDED.position, questions_json=EXCLUDED.questions_json`,
		t.ID, t.CourseID, t.Title, t.PassingScore, t.TimeLimitMin, t.MaxAttempts, t.Active, t.Position, string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,title,passing_score,time_limit_min,max_attempts,active,position,questions_json,created_at
		FROM tests WHERE id=$1`, id)
	var t Test
	var qjson string
	if err := row.Scan(&t.ID, &t.CourseID, &t.Title, &t.PassingScore, &t.TimeLimitMin, &t.MaxAttempts, &t.Active, &t.Position, &qjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrNotFound
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) GetTestForLearner(ctx context.Context, id string) (Test, error) {
	t, err := s.GetTest(ctx, id)
	if err != nil {
		return Test{}, err
	}
	return StripAnswers(t), nil
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `SELECT id,name FROM courses WHERE id=$1`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrCourseNotFound
	}
	return c, err
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,name) VALUES ($1,$2)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`, c.ID, c.Name)
	return err
}
