// Package config handles loading runtime configuration for the Matchplay API.
// Configuration values are read from environment variables rather than being
// hardcoded, so the same binary runs in dev, staging, and production — just
// swap the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	// godotenv reads a .env file and loads its key=value pairs into the
	// process environment — convenient in development, a no-op in production
	// where real env vars are set by the platform.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port           string        // TCP port the HTTP server listens on (e.g., "8080")
	DatabaseURL    string        // PostgreSQL connection string — required
	ClerkSecretKey string        // Secret for verifying auth tokens server-side
	Env            string        // "development", "staging", or "production"
	LocalCacheDir  string        // Directory for the per-owner local match cache files
	SaveDebounce   time.Duration // Delay between a state change and the remote write
	SpectatePoll   time.Duration // Cadence for server-side spectator poll loops
	FollowCodes    []string      // Share codes this instance relays to its websocket hub
}

// Load reads configuration from environment variables and returns a populated
// Config. A missing .env file is fine — production sets real env vars.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	cacheDir := os.Getenv("LOCAL_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = ".matchcache"
	}

	return &Config{
		Port:           port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ClerkSecretKey: os.Getenv("CLERK_SECRET_KEY"),
		Env:            env,
		LocalCacheDir:  cacheDir,
		SaveDebounce:   durationFromMillis("SAVE_DEBOUNCE_MS", 800*time.Millisecond),
		SpectatePoll:   durationFromSeconds("SPECTATE_POLL_SEC", 15*time.Second),
		FollowCodes:    splitList(os.Getenv("SPECTATE_FOLLOW")),
	}
}

// durationFromMillis reads an integer-millisecond env var, falling back to
// def when unset or unparsable.
func durationFromMillis(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func durationFromSeconds(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	sec, err := strconv.Atoi(raw)
	if err != nil || sec <= 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
