package filtration

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/database"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrRunNotFound signals that no stored run matches the requested ID.
var ErrRunNotFound = errors.New("filtration run not found")

// Repository persists computed filtration sequences. Matrices are stored as
// msgpack blobs, one row per frame.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates the repository and ensures its tables exist.
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	repo := &Repository{
		db:  db,
		log: log.With().Str("component", "filtration_repository").Logger(),
	}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS filtration_runs (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			qubits     INTEGER NOT NULL,
			moments    INTEGER NOT NULL,
			strategy   TEXT NOT NULL,
			log_base   TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS filtration_frames (
			run_id    TEXT NOT NULL REFERENCES filtration_runs(id) ON DELETE CASCADE,
			moment    INTEGER NOT NULL,
			weights   BLOB NOT NULL,
			distances BLOB,
			PRIMARY KEY (run_id, moment)
		);
		CREATE INDEX IF NOT EXISTS idx_filtration_runs_created_at
			ON filtration_runs(created_at);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create filtration tables: %w", err)
	}
	return nil
}

// Save stores a sequence and all of its frames in one transaction.
func (r *Repository) Save(seq *Sequence) error {
	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO filtration_runs (id, created_at, qubits, moments, strategy, log_base)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			seq.ID, seq.CreatedAt.Format(time.RFC3339Nano), seq.Qubits, seq.Moments, seq.Strategy, seq.LogBase,
		)
		if err != nil {
			return fmt.Errorf("inserting run %s: %w", seq.ID, err)
		}

		stmt, err := tx.Prepare(
			`INSERT INTO filtration_frames (run_id, moment, weights, distances) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing frame insert: %w", err)
		}
		defer stmt.Close()

		for _, frame := range seq.Frames {
			weights, err := msgpack.Marshal(frame.Weights)
			if err != nil {
				return fmt.Errorf("encoding weights for moment %d: %w", frame.Moment, err)
			}
			var distances []byte
			if frame.Distances != nil {
				distances, err = msgpack.Marshal(frame.Distances)
				if err != nil {
					return fmt.Errorf("encoding distances for moment %d: %w", frame.Moment, err)
				}
			}
			if _, err := stmt.Exec(seq.ID, frame.Moment, weights, distances); err != nil {
				return fmt.Errorf("inserting frame %d: %w", frame.Moment, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().
		Str("run_id", seq.ID).
		Int("frames", len(seq.Frames)).
		Msg("Stored filtration run")
	return nil
}

// Get loads a full sequence including frames.
func (r *Repository) Get(id string) (*Sequence, error) {
	seq := &Sequence{ID: id}
	var createdAt string
	err := r.db.QueryRow(
		`SELECT created_at, qubits, moments, strategy, log_base FROM filtration_runs WHERE id = ?`, id,
	).Scan(&createdAt, &seq.Qubits, &seq.Moments, &seq.Strategy, &seq.LogBase)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", id, err)
	}
	seq.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for run %s: %w", id, err)
	}

	rows, err := r.db.Query(
		`SELECT moment, weights, distances FROM filtration_frames WHERE run_id = ? ORDER BY moment`, id)
	if err != nil {
		return nil, fmt.Errorf("querying frames for run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var frame Frame
		var weights, distances []byte
		if err := rows.Scan(&frame.Moment, &weights, &distances); err != nil {
			return nil, fmt.Errorf("scanning frame for run %s: %w", id, err)
		}
		if err := msgpack.Unmarshal(weights, &frame.Weights); err != nil {
			return nil, fmt.Errorf("decoding weights for moment %d: %w", frame.Moment, err)
		}
		if len(distances) > 0 {
			if err := msgpack.Unmarshal(distances, &frame.Distances); err != nil {
				return nil, fmt.Errorf("decoding distances for moment %d: %w", frame.Moment, err)
			}
		}
		frame.MeanWeight, frame.MaxWeight = summarize(frame.Weights)
		seq.Frames = append(seq.Frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating frames for run %s: %w", id, err)
	}
	return seq, nil
}

// List returns run summaries, most recent first.
func (r *Repository) List(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, created_at, qubits, moments, strategy
		 FROM filtration_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0)
	for rows.Next() {
		var s RunSummary
		var createdAt string
		if err := rows.Scan(&s.ID, &createdAt, &s.Qubits, &s.Moments, &s.Strategy); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return summaries, nil
}

// Delete removes a run and its frames.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM filtration_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result for run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	// Frames cascade, but older stores may have foreign keys disabled.
	if _, err := r.db.Exec(`DELETE FROM filtration_frames WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("deleting frames for run %s: %w", id, err)
	}
	return nil
}

// PurgeOlderThan removes runs created before the cutoff and returns the count.
func (r *Repository) PurgeOlderThan(cutoff time.Time) (int64, error) {
	cutoffStr := cutoff.UTC().Format(time.RFC3339Nano)
	if _, err := r.db.Exec(
		`DELETE FROM filtration_frames WHERE run_id IN
			(SELECT id FROM filtration_runs WHERE created_at < ?)`, cutoffStr); err != nil {
		return 0, fmt.Errorf("purging frames: %w", err)
	}
	res, err := r.db.Exec(`DELETE FROM filtration_runs WHERE created_at < ?`, cutoffStr)
	if err != nil {
		return 0, fmt.Errorf("purging runs: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking purge result: %w", err)
	}
	if purged > 0 {
		r.log.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("Purged old filtration runs")
	}
	return purged, nil
}
