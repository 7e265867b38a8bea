package handlers

// match.go — the owner-facing match endpoints.
//
// Every mutating handler follows the same shape: resolve the owner's session,
// apply the transition on the locked machine, hand the fresh snapshot to the
// synchronizer (fire-and-forget durability), broadcast to any push
// spectators, and return the updated view. Validation failures come back as
// specific 4xx errors; persistence trouble only ever shows up as a non-fatal
// "warning" field on the response.

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/golf-matchplay/internal/match"
	"github.com/trentd187/golf-matchplay/internal/storage"
	"github.com/trentd187/golf-matchplay/internal/websocket"
)

// MatchResponse is the owner's view of their match. A dedicated response
// struct (not the raw engine state) so the wire shape is deliberate and can
// carry derived fields like standings and the persistence warning.
type MatchResponse struct {
	Phase           string          `json:"phase"`
	CurrentHole     int             `json:"current_hole"`
	MaxHoleReached  int             `json:"max_hole_reached"`
	Players         []match.Player  `json:"players"`
	CurrentMatchups []match.Matchup `json:"current_matchups"` // null outside the scoring phase
	Standings       []match.Player  `json:"standings"`
	HolesRecorded   int             `json:"holes_recorded"`
	ShareCode       string          `json:"share_code,omitempty"`
	Warning         string          `json:"warning,omitempty"` // non-fatal persistence degradation
}

// StartMatchRequest is the JSON body for POST /api/v1/match/start.
type StartMatchRequest struct {
	Players []string `json:"players"`
}

// HoleResultRequest is the JSON body for recording or editing a hole:
// exactly two matchups, both resolved.
type HoleResultRequest struct {
	Results []match.Matchup `json:"results"`
}

// currentOwnerID reads the authenticated user's UUID that the Auth
// middleware stored in the request context.
func currentOwnerID(c *fiber.Ctx) (uuid.UUID, error) {
	idStr, _ := c.Locals("userID").(string)
	return uuid.Parse(idStr)
}

// statusForMatchError maps engine sentinels onto HTTP statuses: state
// conflicts are 409, everything else the engine rejects is a plain 400.
func statusForMatchError(err error) int {
	if errors.Is(err, match.ErrNotScoring) || errors.Is(err, match.ErrBeyondFrontier) {
		return fiber.StatusConflict
	}
	return fiber.StatusBadRequest
}

func buildMatchResponse(m *match.Machine, warning string) MatchResponse {
	state := m.Snapshot()
	resp := MatchResponse{
		Phase:          string(state.Phase),
		CurrentHole:    state.CurrentHole,
		MaxHoleReached: state.MaxHoleReached,
		Players:        state.Players,
		Standings:      m.Stats(),
		HolesRecorded:  len(state.HoleResults),
		ShareCode:      state.ShareCode,
		Warning:        warning,
	}
	if matchups, ok := m.CurrentMatchups(); ok {
		resp.CurrentMatchups = matchups[:]
	}
	return resp
}

// broadcastSnapshot pushes the owner's fresh state to any websocket
// spectators watching their share code. Best-effort: encode errors are
// impossible for these types and a codeless match simply has no watchers.
func broadcastSnapshot(hub *websocket.Hub, state match.State) {
	if hub == nil || state.ShareCode == "" {
		return
	}
	data, err := json.Marshal(SpectateResponse{
		Phase:       string(state.Phase),
		CurrentHole: state.CurrentHole,
		Standings:   match.Rank(state.Players),
		ShareCode:   state.ShareCode,
	})
	if err != nil {
		return
	}
	hub.Broadcast(state.ShareCode, data)
}

// GetMatch returns a handler for GET /api/v1/match — the owner's current
// state, creating (and loading) the session on first touch.
func GetMatch(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var resp MatchResponse
		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			resp = buildMatchResponse(m, sync.LastWarning())
		})
		return c.JSON(resp)
	}
}

// StartMatch returns a handler for POST /api/v1/match/start.
func StartMatch(sessions *Sessions, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var req StartMatchRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		var (
			resp     MatchResponse
			startErr error
		)
		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			if startErr = m.StartMatch(req.Players); startErr != nil {
				return
			}
			snapshot := m.Snapshot()
			sync.Save(snapshot)
			broadcastSnapshot(hub, snapshot)
			resp = buildMatchResponse(m, sync.LastWarning())
		})
		if startErr != nil {
			return c.Status(statusForMatchError(startErr)).JSON(fiber.Map{"error": startErr.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// RecordHole returns a handler for POST /api/v1/match/holes — record the
// current hole's two matchup results and advance.
func RecordHole(sessions *Sessions, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var req HoleResultRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		var (
			resp      MatchResponse
			recordErr error
		)
		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			if recordErr = m.RecordHoleResult(req.Results); recordErr != nil {
				return
			}
			snapshot := m.Snapshot()
			sync.Save(snapshot)
			broadcastSnapshot(hub, snapshot)
			resp = buildMatchResponse(m, sync.LastWarning())
		})
		if recordErr != nil {
			return c.Status(statusForMatchError(recordErr)).JSON(fiber.Map{"error": recordErr.Error()})
		}
		return c.JSON(resp)
	}
}

// UpdateHole returns a handler for PUT /api/v1/match/holes/:n — edit a
// previously recorded hole; standings are rebuilt by replaying the hole log.
func UpdateHole(sessions *Sessions, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		hole, err := strconv.Atoi(c.Params("n"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hole number must be an integer"})
		}

		var req HoleResultRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		var (
			resp      MatchResponse
			updateErr error
		)
		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			if updateErr = m.UpdateHoleResult(hole, req.Results); updateErr != nil {
				return
			}
			snapshot := m.Snapshot()
			sync.Save(snapshot)
			broadcastSnapshot(hub, snapshot)
			resp = buildMatchResponse(m, sync.LastWarning())
		})
		if updateErr != nil {
			return c.Status(statusForMatchError(updateErr)).JSON(fiber.Map{"error": updateErr.Error()})
		}
		return c.JSON(resp)
	}
}

// NavigateToHole returns a handler for POST /api/v1/match/navigate/:n —
// move the current hole pointer within the frontier.
func NavigateToHole(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		hole, err := strconv.Atoi(c.Params("n"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hole number must be an integer"})
		}

		var (
			resp    MatchResponse
			navErr  error
			session = sessions.ForOwner(c.Context(), ownerID)
		)
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			if navErr = m.NavigateToHole(hole); navErr != nil {
				return
			}
			// Navigation changes the current hole, which is part of the
			// persisted state — a resumed session should reopen on the same
			// hole the owner was looking at.
			sync.Save(m.Snapshot())
			resp = buildMatchResponse(m, sync.LastWarning())
		})
		if navErr != nil {
			return c.Status(statusForMatchError(navErr)).JSON(fiber.Map{"error": navErr.Error()})
		}
		return c.JSON(resp)
	}
}

// GetHoleMatchups returns a handler for GET /api/v1/match/holes/:n — the
// stored result for a played hole, or fresh pending pairings for an unplayed
// one.
func GetHoleMatchups(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		hole, err := strconv.Atoi(c.Params("n"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hole number must be an integer"})
		}

		var (
			matchups [match.MatchupsPerHole]match.Matchup
			ok       bool
			lookErr  error
		)
		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, _ *storage.Synchronizer) {
			matchups, ok, lookErr = m.MatchupsForHole(hole)
		})
		if lookErr != nil {
			return c.Status(statusForMatchError(lookErr)).JSON(fiber.Map{"error": lookErr.Error()})
		}
		if !ok {
			return c.JSON(fiber.Map{"hole": hole, "matchups": nil})
		}
		return c.JSON(fiber.Map{"hole": hole, "matchups": matchups[:]})
	}
}

// GetStandings returns a handler for GET /api/v1/match/standings.
func GetStandings(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var standings []match.Player
		session := sessions.ForOwner(c.Context(), ownerID)
		session.Do(func(m *match.Machine, _ *storage.Synchronizer) {
			standings = m.Stats()
		})
		return c.JSON(fiber.Map{"standings": standings})
	}
}

// CanResume returns a handler for GET /api/v1/match/resume — whether a
// persisted match exists to offer a "resume" choice before starting fresh.
func CanResume(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		var can bool
		session := sessions.ForOwner(c.Context(), ownerID)
		ctx := c.Context()
		session.Do(func(_ *match.Machine, sync *storage.Synchronizer) {
			can = sync.CanResume(ctx)
		})
		return c.JSON(fiber.Map{"can_resume": can})
	}
}

// ResetMatch returns a handler for DELETE /api/v1/match — back to setup, and
// both persisted copies cleared.
func ResetMatch(sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := currentOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		}

		session := sessions.ForOwner(c.Context(), ownerID)
		ctx := c.Context()
		session.Do(func(m *match.Machine, sync *storage.Synchronizer) {
			m.Reset()
			sync.Clear(ctx)
		})
		return c.JSON(fiber.Map{"status": "reset"})
	}
}
