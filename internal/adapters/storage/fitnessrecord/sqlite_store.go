package fitnessrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pefitness/internal/adapters/storage"
	domain "pefitness/internal/domain/fitness"
)

// SQLiteStore keeps records as JSON bodies in the document table.
type SQLiteStore struct {
	db   storage.SQLDB
	path string
}

// NewSQLiteStore creates a store writing under CollectionPath(appID).
func NewSQLiteStore(db storage.SQLDB, appID string) *SQLiteStore {
	return &SQLiteStore{db: db, path: CollectionPath(appID)}
}

// Append writes one record.
// PRE: rec was produced by fitness.NewRecord
// POST: one document row inserted, or an error wrapping ErrStore
func (s *SQLiteStore) Append(ctx context.Context, rec domain.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO document (id, collection, owner_id, body, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID, s.path, rec.OwnerID, string(body), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert document: %w", ErrStore, err)
	}
	return nil
}
