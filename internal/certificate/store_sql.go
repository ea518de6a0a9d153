package certificate

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const certCols = `id,learner_id,course_id,attempt_id,cert_number,verification_code,issued_at,expires_at,valid,course_name,learner_name,score,passing_score`

func scanCert(row interface{ Scan(...any) error }) (Certificate, error) {
	var c Certificate
	var attemptID sql.NullString
	var expiresAt sql.NullInt64
	err := row.Scan(&c.ID, &c.LearnerID, &c.CourseID, &attemptID, &c.Number, &c.VerificationCode,
		&c.IssuedAt, &expiresAt, &c.Valid, &c.CourseName, &c.LearnerName, &c.Score, &c.PassingScore)
	if err != nil {
		return Certificate{}, err
	}
	c.AttemptID = attemptID.String
	if expiresAt.Valid {
		v := expiresAt.Int64
		c.ExpiresAt = &v
	}
	return c, nil
}

func (s *SQLStore) Insert(ctx context.Context, c Certificate) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO certificates (`+certCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID, c.LearnerID, c.CourseID, nullStr(c.AttemptID), c.Number, c.VerificationCode,
		c.IssuedAt, nullInt(c.ExpiresAt), c.Valid, c.CourseName, c.LearnerName, c.Score, c.PassingScore)
	return err
}

func (s *SQLStore) GetByOwner(ctx context.Context, learnerID, courseID string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+certCols+` FROM certificates WHERE learner_id=$1 AND course_id=$2`, learnerID, courseID)
	c, err := scanCert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Certificate{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+certCols+` FROM certificates WHERE id=$1`, id)
	c, err := scanCert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Certificate{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) GetByCode(ctx context.Context, code string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+certCols+` FROM certificates WHERE verification_code=$1`, code)
	c, err := scanCert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Certificate{}, ErrNotFound
	}
	return c, err
}

func (s *SQLStore) SetValid(ctx context.Context, id string, valid bool) (Certificate, error) {
	r, err := s.db.ExecContext(ctx, `UPDATE certificates SET valid=$1 WHERE id=$2`, valid, id)
	if err != nil {
		return Certificate{}, err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return Certificate{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *SQLStore) ListByLearner(ctx context.Context, learnerID string) ([]Certificate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+certCols+` FROM certificates WHERE learner_id=$1 ORDER BY issued_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Certificate
	for rows.Next() {
		c, err := scanCert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) HasValid(ctx context.Context, learnerID, courseID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT 1 FROM certificates WHERE learner_id=$1 AND course_id=$2 AND valid
		)`, learnerID, courseID).Scan(&exists)
	return exists, err
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
