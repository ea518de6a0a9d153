package attempt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-lms/internal/db"
	"github.com/coursekit/coursekit-lms/internal/scoring"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(d *sql.DB) *SQLStore {
	return &SQLStore{db: d, now: time.Now}
}

const attemptCols = `id,test_id,learner_id,attempt_number,status,started_at,completed_at,total_points,earned_points,score,time_taken_min`

func scanAttempt(row interface{ Scan(...any) error }) (Attempt, error) {
	var a Attempt
	var completedAt sql.NullInt64
	var score sql.NullFloat64
	err := row.Scan(&a.ID, &a.TestID, &a.LearnerID, &a.Number, &a.Status, &a.StartedAt,
		&completedAt, &a.TotalPoints, &a.EarnedPoints, &score, &a.TimeTakenMin)
	if err != nil {
		return Attempt{}, err
	}
	if completedAt.Valid {
		v := completedAt.Int64
		a.CompletedAt = &v
	}
	if score.Valid {
		v := score.Float64
		a.Score = &v
	}
	return a, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) open(ctx context.Context, learnerID, testID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM attempts
		WHERE learner_id=$1 AND test_id=$2 AND status='in_progress'`, learnerID, testID)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) StartOrResume(ctx context.Context, learnerID, testID string) (Attempt, bool, error) {
	if a, err := s.open(ctx, learnerID, testID); err == nil {
		return a, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Attempt{}, false, err
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,test_id,learner_id,attempt_number,status,started_at)
		VALUES ($1,$2,$3,
			(SELECT COALESCE(MAX(attempt_number),0)+1 FROM attempts WHERE learner_id=$4 AND test_id=$5),
			'in_progress',$6)`,
		id, testID, learnerID, learnerID, testID, s.now().Unix())
	if err != nil {
		// Another request won the partial unique index race: resume its row.
		if db.IsUniqueViolation(err) {
			a, err2 := s.open(ctx, learnerID, testID)
			if err2 == nil {
				return a, true, nil
			}
		}
		return Attempt{}, false, err
	}
	a, err := s.Get(ctx, id)
	return a, false, err
}

// SaveAnswer upserts a buffered answer. The status guard lives inside the
// statement itself: a save racing a finalize must not land after the attempt
// closes and overwrite the recomputed answer of record.
func (s *SQLStore) SaveAnswer(ctx context.Context, ans Answer) error {
	r, err := s.db.ExecContext(ctx, `INSERT INTO answers (attempt_id,question_id,option_id,answer_text,is_correct,points_earned,needs_manual,updated_at)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8
		WHERE EXISTS (SELECT 1 FROM attempts WHERE id=$9 AND status='in_progress')
		ON CONFLICT (attempt_id,question_id) DO UPDATE SET
			option_id=EXCLUDED.option_id, answer_text=EXCLUDED.answer_text,
			is_correct=EXCLUDED.is_correct, points_earned=EXCLUDED.points_earned,
			needs_manual=EXCLUDED.needs_manual, updated_at=EXCLUDED.updated_at`,
		ans.AttemptID, ans.QuestionID, ans.OptionID, ans.AnswerText,
		ans.Correct, ans.PointsEarned, ans.NeedsManual, s.now().Unix(), ans.AttemptID)
	if err != nil {
		return err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, ans.AttemptID); err != nil {
			return err
		}
		return ErrInvalidState
	}
	return nil
}

func (s *SQLStore) BufferedChoices(ctx context.Context, attemptID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question_id,option_id,answer_text FROM answers WHERE attempt_id=$1`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var qid, oid, text string
		if err := rows.Scan(&qid, &oid, &text); err != nil {
			return nil, err
		}
		if oid != "" {
			out[qid] = oid
		} else {
			out[qid] = text
		}
	}
	return out, rows.Err()
}

// Finalize closes the attempt and writes the recomputed answers in one
// transaction. Buffered answer rows are overwritten wholesale; their
// is_correct flags are never read.
func (s *SQLStore) Finalize(ctx context.Context, attemptID string, res scoring.Result, completion *Completion) (Attempt, error) {
	a, err := s.Get(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	now := s.now().Unix()
	taken := int(math.Round(float64(now-a.StartedAt) / 60))
	r, err := tx.ExecContext(ctx, `UPDATE attempts
		SET status='completed', completed_at=$1, total_points=$2, earned_points=$3, score=$4, time_taken_min=$5
		WHERE id=$6 AND status='in_progress'`,
		now, res.TotalPoints, res.EarnedPoints, res.Percent, taken, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return Attempt{}, ErrInvalidState
	}

	for _, qr := range res.PerQuestion {
		_, err = tx.ExecContext(ctx, `INSERT INTO answers (attempt_id,question_id,option_id,answer_text,is_correct,points_earned,needs_manual,updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (attempt_id,question_id) DO UPDATE SET
				option_id=EXCLUDED.option_id, answer_text=EXCLUDED.answer_text,
				is_correct=EXCLUDED.is_correct, points_earned=EXCLUDED.points_earned,
				needs_manual=EXCLUDED.needs_manual, updated_at=EXCLUDED.updated_at`,
			attemptID, qr.QuestionID, qr.OptionID, qr.AnswerText, qr.Correct, qr.PointsEarned, qr.NeedsManual, now)
		if err != nil {
			return Attempt{}, err
		}
	}

	if completion != nil {
		_, err = tx.ExecContext(ctx, `UPDATE enrollments SET status='completed', completed_at=$1
			WHERE learner_id=$2 AND course_id=$3 AND completed_at IS NULL`,
			now, completion.LearnerID, completion.CourseID)
		if err != nil {
			return Attempt{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return s.Get(ctx, attemptID)
}

func (s *SQLStore) Abandon(ctx context.Context, attemptID string) (Attempt, error) {
	r, err := s.db.ExecContext(ctx, `UPDATE attempts SET status='abandoned', completed_at=$1
		WHERE id=$2 AND status='in_progress'`, s.now().Unix(), attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, attemptID); err != nil {
			return Attempt{}, err
		}
		return Attempt{}, ErrInvalidState
	}
	return s.Get(ctx, attemptID)
}

func (s *SQLStore) HasPassed(ctx context.Context, learnerID, testID string, passingScore float64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT 1 FROM attempts
			WHERE learner_id=$1 AND test_id=$2 AND status='completed' AND score >= $3
		)`, learnerID, testID, passingScore).Scan(&exists)
	return exists, err
}

func (s *SQLStore) CountFinished(ctx context.Context, learnerID, testID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts
		WHERE learner_id=$1 AND test_id=$2 AND status IN ('completed','abandoned')`, learnerID, testID).Scan(&n)
	return n, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Attempt, error) {
	where := []string{}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.TestID != "" {
		add("test_id=$%d", opts.TestID)
	}
	if opts.LearnerID != "" {
		add("learner_id=$%d", opts.LearnerID)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	q := `SELECT ` + attemptCols + ` FROM attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at DESC"
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
