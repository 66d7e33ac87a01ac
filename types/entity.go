// Package types provides common types used across EquityLedger.
package types

import "time"

// Entity is the base type for persisted EquityLedger records.
// Embed this in your domain types to get automatic timestamp handling.
// Domain-level ledger timestamps (deadlines, investment times) are
// separate uint64 fields set from the ledger Clock, not from Entity.
type Entity struct {
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" bun:"updated_at,notnull,default:current_timestamp"`
}

// NewEntity creates a new Entity with current timestamps.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp to now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// Age returns how long ago the record was created.
func (e Entity) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// LastModified returns how long ago the record was last updated.
func (e Entity) LastModified() time.Duration {
	return time.Since(e.UpdatedAt)
}
