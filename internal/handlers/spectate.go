package handlers

// spectate.go — the read-only spectator surface and share-code issuing.
//
// Spectator routes are public: the 4-digit share code is the only
// credential, and all it unlocks is a snapshot of one match's scorecard.
// Spectators read the owner's *persisted* state straight from the remote
// store — they never touch the owner's live session, so a spectator request
// can't contend with the owner's scoring.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/trentd187/golf-matchplay/internal/match"
	"github.com/trentd187/golf-matchplay/internal/models"
	"github.com/trentd187/golf-matchplay/internal/sharecode"
	"github.com/trentd187/golf-matchplay/internal/spectator"
	"github.com/trentd187/golf-matchplay/internal/storage"
)

// SpectateResponse is the read-only view a share code unlocks.
type SpectateResponse struct {
	Phase         string         `json:"phase"`
	CurrentHole   int            `json:"current_hole"`
	HolesRecorded int            `json:"holes_recorded,omitempty"`
	Standings     []match.Player `json:"standings"`
	ShareCode     string         `json:"share_code"`
	UpdatedAt     string         `json:"updated_at,omitempty"` // when the owner last saved, RFC 3339
}

// Spectate returns a handler for GET /spectate/:code — resolve the code and
// return the owner's latest persisted snapshot.
func Spectate(db *gorm.DB, codes *sharecode.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")

		ownerID, err := codes.Resolve(c.Context(), code)
		if errors.Is(err, sharecode.ErrInvalidFormat) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, sharecode.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve share code"})
		}

		// Read the saved_matches row directly rather than through the
		// owner's session: spectators see what is durable, which may trail
		// the owner's screen by the debounce window.
		var record models.SavedMatch
		err = db.WithContext(c.Context()).Where("user_id = ?", ownerID).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no match in progress for this code"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load match"})
		}

		var state match.State
		if err := json.Unmarshal(record.State, &state); err != nil || state.Validate() != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no match in progress for this code"})
		}

		return c.JSON(SpectateResponse{
			Phase:         string(state.Phase),
			CurrentHole:   state.CurrentHole,
			HolesRecorded: len(state.HoleResults),
			Standings:     match.Rank(state.Players),
			ShareCode:     code,
			UpdatedAt:     record.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// SpectateQR returns a handler for GET /spectate/:code/qr — the spectate URL
// as a QR PNG, for pinning to the clubhouse notice board.
func SpectateQR(codes *sharecode.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")

		// Validate the code actually resolves before minting a QR for it.
		if _, err := codes.Resolve(c.Context(), code); err != nil {
			status := fiber.StatusNotFound
			if errors.Is(err, sharecode.ErrInvalidFormat) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{"error": "share code not found"})
		}

		url := c.BaseURL() + "/spectate/" + code
		png, err := qrcode.Encode(url, qrcode.Medium, 256)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render QR code"})
		}

		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}
}

// SnapshotFetcher adapts the spectate lookup into a spectator.FetchFunc, for
// poll loops that live inside the server — the cross-instance relay in
// cmd/server uses it to keep websocket watchers fresh when the owner is
// saving through a different instance.
func SnapshotFetcher(db *gorm.DB, codes *sharecode.Service) spectator.FetchFunc {
	return func(ctx context.Context, code string) (spectator.Snapshot, error) {
		ownerID, err := codes.Resolve(ctx, code)
		if err != nil {
			return spectator.Snapshot{}, err
		}

		var record models.SavedMatch
		if err := db.WithContext(ctx).Where("user_id = ?", ownerID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return spectator.Snapshot{}, sharecode.ErrNotFound
			}
			return spectator.Snapshot{}, err
		}

		var state match.State
		if err := json.Unmarshal(record.State, &state); err != nil {
			return spectator.Snapshot{}, err
		}
		if err := state.Validate(); err != nil {
			return spectator.Snapshot{}, err
		}

		return spectator.Snapshot{
			State:     state,
			Standings: match.Rank(state.Players),
			UpdatedAt: record.UpdatedAt,
		}, nil
	}
}

// CreateShareCode returns a handler for POST /api/v1/match/share — issue a
// fresh code for the owner's match, superseding any previous one. The code
// is stamped onto the match state so spectators and persisted snapshots
// carry it.
func CreateShareCode(sessions *Sessions, codes *sharecode.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		code, err := codes.Create(c.Context(), ownerID)
		if errors.Is(err, sharecode.ErrCodeExhausted) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create share code"})
		}

		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			m.SetShareCode(code)
			sync.Save(m.Snapshot())
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"share_code": code,
			"url":        c.BaseURL() + "/spectate/" + code,
		})
	}
}
