package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// ImportedKey is the blob key holding the imported entry set.
const ImportedKey = "entries/imported"

// LoadImported returns the stored imported set. ok is false when none is
// stored.
func (s *Store) LoadImported(ctx context.Context) ([]lexicon.Entry, bool, error) {
	data, err := s.Get(ctx, ImportedKey)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []lexicon.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("decode imported entries: %w", err)
	}
	return entries, true, nil
}

// SaveImported stores entries as the imported set and records the import in
// the ledger, in one transaction.
func (s *Store) SaveImported(ctx context.Context, entries []lexicon.Entry, source string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode imported entries: %w", err)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := s.now().Unix()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			ImportedKey, data, now); err != nil {
			return fmt.Errorf("put %s: %w", ImportedKey, err)
		}
		// A new import supersedes the previous one.
		if err := s.markCleared(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO imports (source, entries, imported_at) VALUES (?, ?, ?)`,
			source, len(entries), now); err != nil {
			return fmt.Errorf("record import %s: %w", source, err)
		}
		return nil
	})
}

// ClearImported removes the imported set and closes its ledger row.
func (s *Store) ClearImported(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, ImportedKey); err != nil {
			return fmt.Errorf("delete %s: %w", ImportedKey, err)
		}
		return s.markCleared(ctx, tx)
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
