package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lox/weatherdash/internal/models"
)

// DefaultSession holds the dataset loaded at startup, shown to sessions that
// have not uploaded their own.
const DefaultSession = "default"

type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path. ":memory:" keeps every dataset in
// process memory and pins the pool to a single connection so all requests see
// the same database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")
	}
	return db, nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveDataset stores the upload for a session, replacing any earlier one.
func (s *Store) SaveDataset(ds models.Dataset) (int64, error) {
	if ds.UploadedAt.IsZero() {
		ds.UploadedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO datasets (session_id, filename, size, content, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			filename = excluded.filename,
			size = excluded.size,
			content = excluded.content,
			uploaded_at = excluded.uploaded_at
	`, ds.SessionID, ds.Filename, int64(len(ds.Content)), ds.Content, ds.UploadedAt)
	if err != nil {
		return 0, fmt.Errorf("save dataset: %w", err)
	}
	return res.LastInsertId()
}

// GetDataset returns the session's upload, or nil when there is none.
func (s *Store) GetDataset(sessionID string) (*models.Dataset, error) {
	row := s.db.QueryRow(`
		SELECT id, session_id, filename, size, content, uploaded_at
		FROM datasets
		WHERE session_id = ?
	`, sessionID)

	var ds models.Dataset
	err := row.Scan(&ds.ID, &ds.SessionID, &ds.Filename, &ds.Size, &ds.Content, &ds.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return &ds, nil
}

// ResolveDataset returns the session's upload, falling back to the startup
// dataset.
func (s *Store) ResolveDataset(sessionID string) (*models.Dataset, error) {
	if sessionID != "" {
		ds, err := s.GetDataset(sessionID)
		if err != nil || ds != nil {
			return ds, err
		}
	}
	return s.GetDataset(DefaultSession)
}

// DeleteDataset forgets the session's upload.
func (s *Store) DeleteDataset(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM datasets WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	return nil
}

// PruneDatasets removes session uploads older than cutoff. The startup
// dataset is kept.
func (s *Store) PruneDatasets(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM datasets WHERE session_id != ? AND uploaded_at < ?`, DefaultSession, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune datasets: %w", err)
	}
	return res.RowsAffected()
}

// CountDatasets returns how many uploads are retained.
func (s *Store) CountDatasets() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM datasets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count datasets: %w", err)
	}
	return n, nil
}
