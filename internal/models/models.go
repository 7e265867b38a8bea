// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go
// values. The struct field tags (the backtick strings like `gorm:"..."`) tell GORM
// how to handle each field: its column type, constraints, defaults, and indexes.
//
// The data model is deliberately small. The match engine (internal/match) owns all
// scoring rules and keeps its state as a plain serializable value, so the remote
// store only needs:
//   - Users        — identities synced lazily from the auth token
//   - SavedMatches — one serialized match state per owner (the remote store)
//   - ShareCodes   — 4-digit spectator codes mapping to an owner
//
// There is no per-hole or per-score table: a match is always read and written
// whole. Edits to past holes rewrite every player's totals anyway (full-history
// replay), and keeping one record per owner is what makes "resume on another
// device" a single SELECT.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	// UUIDs are safe to generate anywhere and don't leak record counts.
	"github.com/google/uuid"
)

// UserRole represents a user's permission level.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin" // Can inspect any saved match
	UserRoleUser  UserRole = "user"  // Regular player: owns at most one live match
)

// User represents a registered person in the system.
// Users are created automatically the first time an authenticated request
// arrives — the ClerkID links our internal record to the identity provider.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClerkID     *string   `gorm:"uniqueIndex:idx_users_clerk_id"` // Identity provider's user ID; pointer = nullable for legacy rows
	DisplayName string    `gorm:"not null"`
	Email       string    `gorm:"uniqueIndex;not null"`
	Role        UserRole  `gorm:"type:user_role;not null;default:'user'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SavedMatch is the remote store: the full serialized match state for one
// owner, plus the update timestamp spectators display as "last updated".
//
// The unique index on UserID enforces the single-match-per-owner rule at the
// database level — saves are upserts, not inserts.
type SavedMatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_matches_user"`
	User      User      `gorm:"foreignKey:UserID"`
	State     []byte    `gorm:"type:jsonb;not null"` // JSON-encoded match.State document
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ShareCode maps a public 4-digit code to the owner whose match it exposes.
// Codes are never reused while active: issuing a new code deactivates the
// owner's previous one instead of deleting it, so a stale code fails with
// "expired" rather than silently resolving to someone else's match.
//
// The partial unique index on (code) WHERE active (created in the migration —
// not expressible as a GORM tag) guarantees a code belongs to at most one
// owner at a time.
type ShareCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"type:char(4);not null;index:idx_share_codes_code"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
