package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract over the PocketBase collections. All
// writes go through it so derived quotation fields and snapshots are
// handled in one place.
type Store struct {
	app core.App
	now func() time.Time
}

func NewStore(app core.App) *Store {
	return &Store{app: app, now: time.Now}
}

func lookupErr(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return fmt.Errorf("find %s %s: %w", what, id, err)
}

// unmarshalJSONField decodes a JSON field, treating an empty or null value
// as "nothing stored".
func unmarshalJSONField(r *core.Record, key string, dst any) error {
	raw := r.GetString(key)
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s.%s: %w", r.Collection().Name, key, err)
	}
	return nil
}

func recordTime(r *core.Record, field string) time.Time {
	return r.GetDateTime(field).Time()
}
