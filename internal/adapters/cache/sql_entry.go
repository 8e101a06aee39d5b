package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-classifier/internal/core"
)

// entryRow is the table layout shared by the SQL caches. The model output is
// stored as a JSON document and timestamps as Unix seconds.
type entryRow struct {
	Key       string `db:"cache_key"`
	Output    string `db:"output"`
	ModelUsed string `db:"model_used"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

const selectEntry = `
	SELECT cache_key, output, model_used, created_at, expires_at
	FROM classification_cache
	WHERE cache_key = ? AND expires_at > ?
`

func newEntryRow(entry *core.CacheEntry) (entryRow, error) {
	output, err := json.Marshal(entry.Output)
	if err != nil {
		return entryRow{}, fmt.Errorf("failed to encode output: %w", err)
	}
	return entryRow{
		Key:       entry.Key,
		Output:    string(output),
		ModelUsed: entry.ModelUsed,
		CreatedAt: entry.CreatedAt.Unix(),
		ExpiresAt: entry.ExpiresAt.Unix(),
	}, nil
}

func (r entryRow) toEntry() (*core.CacheEntry, error) {
	entry := &core.CacheEntry{
		Key:       r.Key,
		ModelUsed: r.ModelUsed,
		CreatedAt: time.Unix(r.CreatedAt, 0),
		ExpiresAt: time.Unix(r.ExpiresAt, 0),
	}
	if err := json.Unmarshal([]byte(r.Output), &entry.Output); err != nil {
		return nil, fmt.Errorf("failed to decode cached output: %w", err)
	}
	return entry, nil
}

func queryError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to query cache: %w", err)
}
