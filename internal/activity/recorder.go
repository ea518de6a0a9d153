// Package activity keeps an append-only history of learner milestones.
// It is advisory telemetry: nothing in the attempt or certificate flow may
// fail because a history write failed.
package activity

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	TypeTestCompleted     = "test_completed"
	TypeTestPassed        = "test_passed"
	TypeCertificateIssued = "certificate_issued"
)

type Entry struct {
	ID           string  `json:"id"`
	LearnerID    string  `json:"learner_id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	PointsEarned float64 `json:"points_earned,omitempty"`
	MetadataJSON string  `json:"metadata,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

type Recorder struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRecorder(db *sql.DB, log zerolog.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// Record appends an entry. Errors are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.MetadataJSON == "" {
		e.MetadataJSON = "{}"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (id,learner_id,activity_type,title,description,points_earned,metadata,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.LearnerID, e.Type, e.Title, e.Description, e.PointsEarned, e.MetadataJSON, time.Now().Unix())
	if err != nil {
		r.log.Warn().Err(err).
			Str("learner_id", e.LearnerID).
			Str("type", e.Type).
			Msg("activity write dropped")
	}
}

// ListByLearner returns recent entries, newest first.
func (r *Recorder) ListByLearner(ctx context.Context, learnerID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id,learner_id,activity_type,title,description,points_earned,metadata,created_at
		 FROM activity_log WHERE learner_id=$1 ORDER BY created_at DESC LIMIT $2`, learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.Type, &e.Title, &e.Description, &e.PointsEarned, &e.MetadataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
