package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// SequenceRepository persists the report-id sequence counter. The
// counter is a single explicitly saved row, never derived by scanning
// existing reports, so identifiers are not reused after external
// pruning of the report list.
type SequenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sql.DB, logger *zap.Logger) *SequenceRepository {
	return &SequenceRepository{db: db, logger: logger}
}

// Get reads the persisted counter
func (r *SequenceRepository) Get() (int64, error) {
	var counter int64
	err := r.db.QueryRow("SELECT counter FROM report_sequence WHERE id = 1").Scan(&counter)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		r.logger.Error("Failed to read sequence counter", zap.Error(err))
		return 0, fmt.Errorf("read sequence counter: %w", err)
	}
	return counter, nil
}

// Save stores the counter, inside the caller's transaction when given
func (r *SequenceRepository) Save(tx *sql.Tx, counter int64) error {
	query := `
		INSERT INTO report_sequence (id, counter) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET counter = excluded.counter`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, counter)
	} else {
		_, err = r.db.Exec(query, counter)
	}
	if err != nil {
		r.logger.Error("Failed to save sequence counter", zap.Int64("counter", counter), zap.Error(err))
		return fmt.Errorf("save sequence counter: %w", err)
	}
	return nil
}
