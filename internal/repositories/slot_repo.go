package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	intconfig "providerdash/internal/config"
	"providerdash/internal/domain"
	"providerdash/internal/utils"
)

// Fixed slot names. Payloads are JSON with no schema version; a slot whose
// payload no longer decodes is cleared, not migrated.
const (
	SlotSession      = "provider_auth"
	SlotBookings     = "cached_bookings"
	SlotEnquiries    = "cached_enquiries"
	SlotPushState    = "push_state"
	SlotSubscription = "push_subscription"
	SlotUAKeys       = "push_ua_keys"
)

// SlotRepo is the durable named-slot store backing sessions, the
// stale-while-revalidate record caches and push subscription state.
type SlotRepo struct {
	DB *sql.DB
}

func (r SlotRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r SlotRepo) ensureSlotTable(ctx context.Context) error {
	_, err := r.db().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS storage_slots (
			name VARCHAR(64) NOT NULL PRIMARY KEY,
			payload LONGTEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`)
	return err
}

// Load reads a slot into dst. Returns false when the slot is empty. A
// payload that fails to decode clears the slot and reports empty.
func (r SlotRepo) Load(ctx context.Context, name string, dst any) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "store not initialized"}
	}

	var payload string
	err := db.QueryRowContext(ctx, `SELECT payload FROM storage_slots WHERE name=?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domain.InternalError{Err: err}
	}

	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		utils.LogEvent("", "store", "clear_slot", "undecodable payload in "+name)
		_ = r.Delete(ctx, name)
		return false, nil
	}
	return true, nil
}

// Save upserts a slot with the JSON encoding of v.
func (r SlotRepo) Save(ctx context.Context, name string, v any) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "store not initialized"}
	}
	if err := r.ensureSlotTable(ctx); err != nil {
		return domain.InternalError{Err: err}
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return domain.InternalError{Err: err}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO storage_slots (name, payload) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE payload=VALUES(payload)`,
		name, string(payload))
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

func (r SlotRepo) Delete(ctx context.Context, name string) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "store not initialized"}
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM storage_slots WHERE name=?`, name); err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}
