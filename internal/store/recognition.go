package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Sources of a recognition.
const (
	SourceCamera = "camera"
	SourceAPI    = "api"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Recognition is one journal row.
type Recognition struct {
	ID         string    `db:"id" json:"id"`
	Label      string    `db:"label" json:"label"`
	Step       string    `db:"step" json:"step"`
	Requests   int       `db:"requests" json:"requests"`
	Handedness string    `db:"handedness" json:"handedness,omitempty"`
	Source     string    `db:"source" json:"source"`
	Pressed    bool      `db:"pressed" json:"pressed"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

const (
	queryCreateRecognition = `
INSERT INTO recognitions (id, label, step, requests, handedness, source, pressed, created_at)
VALUES (:id, :label, :step, :requests, :handedness, :source, :pressed, :created_at)`

	queryGetRecognition = `
SELECT id, label, step, requests, handedness, source, pressed, created_at
FROM recognitions WHERE id = ?`

	queryListRecognitions = `
SELECT id, label, step, requests, handedness, source, pressed, created_at
FROM recognitions ORDER BY id DESC LIMIT ?`

	queryCountByLabel = `
SELECT label, COUNT(*) AS n FROM recognitions GROUP BY label`
)

// RecognitionRepository reads and writes the journal.
type RecognitionRepository struct {
	db *sqlx.DB
}

// Recognitions returns the journal repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create inserts r. A zero CreatedAt is set to now and an empty Source to
// SourceCamera.
func (r *RecognitionRepository) Create(ctx context.Context, rec *Recognition) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Source == "" {
		rec.Source = SourceCamera
	}
	_, err := r.db.NamedExecContext(ctx, queryCreateRecognition, rec)
	return err
}

// Get returns one row or ErrNotFound.
func (r *RecognitionRepository) Get(ctx context.Context, id string) (*Recognition, error) {
	var rec Recognition
	if err := r.db.GetContext(ctx, &rec, queryGetRecognition, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns the newest rows first. A non-positive limit means
// DefaultListLimit.
func (r *RecognitionRepository) List(ctx context.Context, limit int) ([]Recognition, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	recs := []Recognition{}
	if err := r.db.SelectContext(ctx, &recs, queryListRecognitions, limit); err != nil {
		return nil, err
	}
	return recs, nil
}

// CountByLabel returns how many rows exist per label.
func (r *RecognitionRepository) CountByLabel(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Label string `db:"label"`
		N     int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, queryCountByLabel); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.N
	}
	return counts, nil
}
