// Package sharecode issues and resolves the 4-digit spectator codes.
//
// A share code is a public, low-friction token: short enough to read out loud
// on the tee box, numeric so it types quickly on a phone. It grants read-only
// access to one owner's live match snapshot — nothing else — so the small
// keyspace is acceptable: a guessed code shows a stranger a scorecard.
//
// One active code per owner at a time. Issuing a new code deactivates the old
// one rather than deleting it, so the old code stops resolving ("expired")
// instead of being silently recycled to another owner while still printed on
// someone's QR sticker.
package sharecode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/golf-matchplay/internal/models"
)

var (
	ErrInvalidFormat = errors.New("share code must be exactly 4 digits")
	ErrNotFound      = errors.New("share code not found or expired")
	// ErrCodeExhausted is returned when every generated candidate collided
	// with an active code. With 10000 candidates and a handful of attempts
	// this only happens when the active-code table is pathologically full.
	ErrCodeExhausted = errors.New("could not allocate a unique share code")
)

// maxAttempts bounds collision retries during code generation.
const maxAttempts = 5

// Service manages share codes in the database.
type Service struct {
	db *gorm.DB
}

// NewService returns a share-code service over the given database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GenerateCode produces a random 4-digit numeric code, zero-padded, using
// crypto/rand — spectator codes are public tokens, so they must not come from
// a predictable sequence.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate share code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// ValidFormat reports whether a candidate code is exactly 4 ASCII digits.
func ValidFormat(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Create issues a fresh active code for the owner, deactivating any code the
// owner already had. On a collision with another owner's active code it
// retries with a new random code up to maxAttempts times.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var code string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Supersede whatever the owner had. Old codes stay in the table,
		// inactive, so resolving one fails with "expired" rather than 404ing
		// ambiguously or resolving to a later holder.
		err := tx.Model(&models.ShareCode{}).
			Where("user_id = ? AND active", ownerID).
			Update("active", false).Error
		if err != nil {
			return err
		}

		for attempt := 0; attempt < maxAttempts; attempt++ {
			candidate, err := GenerateCode()
			if err != nil {
				return err
			}

			// Check-then-insert inside the transaction; the partial unique
			// index on (code) WHERE active backstops a concurrent issuer.
			var clashes int64
			err = tx.Model(&models.ShareCode{}).
				Where("code = ? AND active", candidate).
				Count(&clashes).Error
			if err != nil {
				return err
			}
			if clashes > 0 {
				continue
			}

			record := models.ShareCode{Code: candidate, UserID: ownerID, Active: true}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			code = candidate
			return nil
		}
		return ErrCodeExhausted
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Resolve maps an active code to its owner. Fails fast on malformed codes
// before touching the database.
func (s *Service) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	if !ValidFormat(code) {
		return uuid.Nil, ErrInvalidFormat
	}

	var record models.ShareCode
	err := s.db.WithContext(ctx).
		Where("code = ? AND active", code).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve share code: %w", err)
	}
	return record.UserID, nil
}

// ActiveCode returns the owner's current active code, or "" when none exists.
func (s *Service) ActiveCode(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var record models.ShareCode
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active", ownerID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("look up share code: %w", err)
	}
	return record.Code, nil
}
