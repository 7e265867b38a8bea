// cmd/server/main.go
// Entry point for the Matchplay API server — a backend for tracking a
// 4-player round-robin golf match over 18 holes, with durable resume across
// devices and read-only spectating via 4-digit share codes.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/trentd187/golf-matchplay/internal/config"
	"github.com/trentd187/golf-matchplay/internal/database"
	"github.com/trentd187/golf-matchplay/internal/handlers"
	"github.com/trentd187/golf-matchplay/internal/middleware"
	"github.com/trentd187/golf-matchplay/internal/sharecode"
	"github.com/trentd187/golf-matchplay/internal/spectator"
	"github.com/trentd187/golf-matchplay/internal/websocket"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// The hub fans fresh snapshots out to push-capable spectator clients,
	// grouped by share code.
	hub := websocket.NewHub()
	go hub.Run()

	codes := sharecode.NewService(db)
	sessions := handlers.NewSessions(db, cfg.LocalCacheDir, cfg.SaveDebounce)

	// Cross-instance spectator relay: when this instance is asked to follow
	// specific share codes (SPECTATE_FOLLOW), poll their persisted snapshots
	// and rebroadcast through the hub. Owners scoring through a different
	// instance still reach watchers connected here, one poll interval behind
	// at worst.
	relayCtx, stopRelays := context.WithCancel(context.Background())
	fetch := handlers.SnapshotFetcher(db, codes)
	for _, code := range cfg.FollowCodes {
		relay := func(ctx context.Context, c string) (spectator.Snapshot, error) {
			snap, err := fetch(ctx, c)
			if err != nil {
				return snap, err
			}
			if data, merr := json.Marshal(snap.Standings); merr == nil {
				hub.Broadcast(c, data)
			}
			return snap, nil
		}
		poller := spectator.NewPoller(code, relay, cfg.SpectatePoll)
		poller.Start(relayCtx)
		log.Printf("relaying spectator snapshots for share code %s", code)
	}

	app := fiber.New(fiber.Config{
		AppName: "Matchplay API",
	})

	app.Use(logger.New())
	// Allow any origin in development; lock down to the app's domain in prod.
	app.Use(cors.New())

	// --- Public routes ---
	app.Get("/health", handlers.HealthCheck)
	app.Get("/spectate/:code", handlers.Spectate(db, codes))
	app.Get("/spectate/:code/qr", handlers.SpectateQR(codes))

	// --- Authenticated API routes ---
	// Everything under /api/v1 requires a valid JWT; Auth also lazily syncs
	// the user into our database and sets the owner identity on the request.
	api := app.Group("/api/v1", middleware.Auth(cfg, db))

	api.Get("/match", handlers.GetMatch(sessions))
	api.Post("/match/start", handlers.StartMatch(sessions, hub))
	api.Post("/match/holes", handlers.RecordHole(sessions, hub))
	api.Get("/match/holes/:n", handlers.GetHoleMatchups(sessions))
	api.Put("/match/holes/:n", handlers.UpdateHole(sessions, hub))
	api.Post("/match/navigate/:n", handlers.NavigateToHole(sessions))
	api.Get("/match/standings", handlers.GetStandings(sessions))
	api.Get("/match/resume", handlers.CanResume(sessions))
	api.Delete("/match", handlers.ResetMatch(sessions))
	api.Post("/match/share", handlers.CreateShareCode(sessions, codes))

	// Flush pending debounced writes on shutdown so the last state change of
	// a session doesn't die in the debounce window.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("shutting down, flushing pending saves")
		stopRelays()
		sessions.FlushAll()
		_ = app.Shutdown()
	}()

	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
