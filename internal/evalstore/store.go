// Package evalstore persists per-recording stop detection scores in SQLite.
package evalstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/stopwindow/internal/stops"
	"github.com/banshee-data/stopwindow/internal/timeutil"
)

// ErrNotFound is returned when an evaluation ID has no row.
var ErrNotFound = errors.New("evaluation not found")

// Evaluation is one stored scoring of predicted stops against a recording's
// annotated stops.
type Evaluation struct {
	EvaluationID      string          `json:"evaluation_id"`
	RecordingID       string          `json:"recording_id"`
	TP                int             `json:"tp"`
	FN                int             `json:"fn"`
	FP                int             `json:"fp"`
	Precision         float64         `json:"precision"`
	Recall            float64         `json:"recall"`
	F1                float64         `json:"f1"`
	MinAllowedOverlap float64         `json:"min_allowed_overlap"`
	ParamsJSON        json.RawMessage `json:"params_json,omitempty"`
	CreatedAt         int64           `json:"created_at"` // unix nanoseconds
}

// FromMetric builds an unsaved Evaluation from a classification metric.
func FromMetric(recordingID string, m stops.ClassificationMetric, minAllowedOverlap float64) *Evaluation {
	return &Evaluation{
		RecordingID:       recordingID,
		TP:                m.TP,
		FN:                m.FN,
		FP:                m.FP,
		Precision:         m.Precision(),
		Recall:            m.Recall(),
		F1:                m.F1(),
		MinAllowedOverlap: minAllowedOverlap,
	}
}

// Metric returns the stored counts.
func (e *Evaluation) Metric() stops.ClassificationMetric {
	return stops.ClassificationMetric{TP: e.TP, FN: e.FN, FP: e.FP}
}

// Store reads and writes evaluations.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// Open opens (creating if needed) the SQLite database at path. Call
// MigrateUp before first use.
func Open(path string, clock timeutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return NewStore(db, clock), nil
}

// NewStore wraps an already open database. A nil clock uses wall time.
func NewStore(db *sql.DB, clock timeutil.Clock) *Store {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Store{db: db, clock: clock}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert persists eval. An empty EvaluationID is filled with a UUID and a
// zero CreatedAt with the store clock.
func (s *Store) Insert(eval *Evaluation) error {
	if eval.EvaluationID == "" {
		eval.EvaluationID = uuid.New().String()
	}
	if eval.CreatedAt == 0 {
		eval.CreatedAt = s.clock.Now().UnixNano()
	}

	var params interface{}
	if len(eval.ParamsJSON) > 0 {
		params = string(eval.ParamsJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO stop_evaluations (
				evaluation_id, recording_id,
				true_positives, false_negatives, false_positives,
				precision_score, recall_score, f1_score,
				min_allowed_overlap, params_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			eval.EvaluationID, eval.RecordingID,
			eval.TP, eval.FN, eval.FP,
			eval.Precision, eval.Recall, eval.F1,
			eval.MinAllowedOverlap, params, eval.CreatedAt,
		)
		return err
	})
}

const selectColumns = `
	SELECT evaluation_id, recording_id,
	       true_positives, false_negatives, false_positives,
	       precision_score, recall_score, f1_score,
	       min_allowed_overlap, params_json, created_at
	FROM stop_evaluations`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (*Evaluation, error) {
	var e Evaluation
	var params sql.NullString
	err := row.Scan(
		&e.EvaluationID, &e.RecordingID,
		&e.TP, &e.FN, &e.FP,
		&e.Precision, &e.Recall, &e.F1,
		&e.MinAllowedOverlap, &params, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if params.Valid {
		e.ParamsJSON = json.RawMessage(params.String)
	}
	return &e, nil
}

// Get returns the evaluation with the given ID.
func (s *Store) Get(evaluationID string) (*Evaluation, error) {
	e, err := scanEvaluation(s.db.QueryRow(selectColumns+` WHERE evaluation_id = ?`, evaluationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, evaluationID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan evaluation: %w", err)
	}
	return e, nil
}

// ListByRecording returns a recording's evaluations, newest first.
func (s *Store) ListByRecording(recordingID string) ([]*Evaluation, error) {
	rows, err := s.db.Query(selectColumns+`
		WHERE recording_id = ?
		ORDER BY created_at DESC`, recordingID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// Delete removes an evaluation by ID.
func (s *Store) Delete(evaluationID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM stop_evaluations WHERE evaluation_id = ?`, evaluationID)
		if err != nil {
			return fmt.Errorf("delete evaluation: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, evaluationID)
		}
		return nil
	})
}

const (
	maxBusyAttempts  = 5
	initialBusyDelay = 10 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn until it succeeds, fails with a non-busy error, or
// maxBusyAttempts is reached. The delay doubles after each busy failure.
func retryOnBusy(fn func() error) error {
	delay := initialBusyDelay
	var err error
	for attempt := 1; attempt <= maxBusyAttempts; attempt++ {
		err = fn()
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("database busy after %d attempts: %w", maxBusyAttempts, err)
}
