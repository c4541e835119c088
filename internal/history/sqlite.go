// Package history persists the append-only batch log backing undo.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nameforge/internal/core"
	"nameforge/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements core.HistoryStore on a SQLite database.
// Batches get a monotonically increasing seq from the rowid; operations
// are stored with their execution position so reverse-order undo is exact.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ core.HistoryStore = (*SQLiteStore)(nil)

// Open opens (or creates) the history database at path and migrates it to
// the latest schema. path may be ":memory:" for tests.
func Open(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the store relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite defaults foreign keys to OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}

// Record appends a finalized batch and its operations in one transaction,
// assigning batch.Seq.
func (s *SQLiteStore) Record(batch *core.RenameBatch) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, created_at, status) VALUES (?, ?, ?)`,
		batch.ID, batch.CreatedAt, string(batch.Status))
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading batch seq: %w", err)
	}

	for i, op := range batch.Operations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operations (batch_seq, position, source_path, destination_path) VALUES (?, ?, ?, ?)`,
			seq, i, op.SourcePath, op.DestinationPath); err != nil {
			return fmt.Errorf("inserting operation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch record: %w", err)
	}
	batch.Seq = seq
	return nil
}

// MostRecentUndoable returns the newest batch whose status is not undone,
// with operations in execution order, or nil if none exists.
func (s *SQLiteStore) MostRecentUndoable() (*core.RenameBatch, error) {
	row := s.db.QueryRow(
		`SELECT seq, id, created_at, status FROM batches WHERE status != ? ORDER BY seq DESC LIMIT 1`,
		string(core.BatchUndone))

	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.loadOperations(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// MarkUndone transitions a batch to undone status.
func (s *SQLiteStore) MarkUndone(batchID string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE batches SET status = ?, undone_at = ? WHERE id = ?`,
		string(core.BatchUndone), at, batchID)
	if err != nil {
		return fmt.Errorf("marking batch undone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("batch not found: %s", batchID)
	}
	return nil
}

// ListBatches returns the most recent batches, newest first.
func (s *SQLiteStore) ListBatches(limit int) ([]*core.RenameBatch, error) {
	rows, err := s.db.Query(
		`SELECT seq, id, created_at, status FROM batches ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var batches []*core.RenameBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}

	for _, b := range batches {
		if err := s.loadOperations(b); err != nil {
			return nil, err
		}
	}
	return batches, nil
}

// Prune removes all but the newest keep batches. Operations cascade.
func (s *SQLiteStore) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.Exec(
		`DELETE FROM batches WHERE seq NOT IN (SELECT seq FROM batches ORDER BY seq DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("pruning batches: %w", err)
	}
	return nil
}

// MaxSeq returns the highest batch sequence, 0 if the log is empty.
func (s *SQLiteStore) MaxSeq() (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(seq) FROM batches`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("reading max seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

// BackupTo writes a consistent snapshot of the database to destPath.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec(`VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("snapshotting history database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*core.RenameBatch, error) {
	var b core.RenameBatch
	var status string
	if err := row.Scan(&b.Seq, &b.ID, &b.CreatedAt, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning batch: %w", err)
	}
	b.Status = core.BatchStatus(status)
	return &b, nil
}

func (s *SQLiteStore) loadOperations(batch *core.RenameBatch) error {
	rows, err := s.db.Query(
		`SELECT source_path, destination_path FROM operations WHERE batch_seq = ? ORDER BY position`,
		batch.Seq)
	if err != nil {
		return fmt.Errorf("loading operations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op core.BatchOperation
		if err := rows.Scan(&op.SourcePath, &op.DestinationPath); err != nil {
			return fmt.Errorf("scanning operation: %w", err)
		}
		batch.Operations = append(batch.Operations, op)
	}
	return rows.Err()
}
