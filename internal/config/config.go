// apps/go-server/internal/config/config.go
//
// Runtime configuration for the go-server.
// Every setting is a flag; ff fills unset flags from the environment using
// the upper-snake-case name (jwt-secret → JWT_SECRET). Precedence is
// flag > env > default. A .env file, when present, is loaded first by main.

package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/game"
)

// Config holds all settings needed to run the server.
type Config struct {
	Port           string
	LogLevel       string
	DBPath         string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	NodeEnv        string
	DailySalt      string
	DailySetting   game.Setting
	AllowSeed      bool // accept a fixed seed on POST /game/new (testing only)
	MaxCells       int  // largest custom board accepted over HTTP
	SessionTTL     time.Duration
}

// Production reports whether secure cookie attributes should be used.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// JWTTTL is the lifetime of issued tokens.
func (c Config) JWTTTL() time.Duration { return time.Duration(c.JWTExpiresDays) * 24 * time.Hour }

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		DBPath:         "./data/app.db",
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "mines_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "local_dev_salt",
		DailySetting:   game.Medium,
		MaxCells:       10000,
		SessionTTL:     24 * time.Hour,
	}
}

// Load parses args (normally os.Args[1:]) with environment fallback.
func Load(args []string) (Config, error) {
	c := Default()
	var daily string

	fs := flag.NewFlagSet("go-server", flag.ContinueOnError)
	fs.StringVar(&c.Port, "port", c.Port, "HTTP listen port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "zerolog level (debug, info, warn, error)")
	fs.StringVar(&c.DBPath, "db-path", c.DBPath, "SQLite database file")
	fs.StringVar(&c.JWTSecret, "jwt-secret", c.JWTSecret, "HMAC secret for auth tokens")
	fs.IntVar(&c.JWTExpiresDays, "jwt-expires-days", c.JWTExpiresDays, "auth token lifetime in days")
	fs.StringVar(&c.CookieName, "cookie-name", c.CookieName, "auth cookie name")
	fs.StringVar(&c.ClientOrigin, "client-origin", c.ClientOrigin, "allowed CORS origin")
	fs.StringVar(&c.NodeEnv, "node-env", c.NodeEnv, "\"production\" enables secure cookies")
	fs.StringVar(&c.DailySalt, "daily-salt", c.DailySalt, "salt for the daily board seed")
	fs.StringVar(&daily, "daily-difficulty", string(game.DifficultyMedium), "preset for the daily board (easy, medium, hard)")
	fs.BoolVar(&c.AllowSeed, "allow-seed", c.AllowSeed, "accept fixed seeds on POST /game/new")
	fs.IntVar(&c.MaxCells, "max-cells", c.MaxCells, "largest custom board (width*height) a client may request")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "drop in-memory games idle for longer than this")

	if err := ff.Parse(fs, args, ff.WithEnvVars()); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	s, err := game.ParseSetting(daily, 0, 0, 0)
	if err != nil || s.Difficulty() == game.DifficultyCustom {
		return Config{}, fmt.Errorf("daily-difficulty %q: must be a preset", daily)
	}
	c.DailySetting = s

	if c.JWTExpiresDays <= 0 {
		return Config{}, fmt.Errorf("jwt-expires-days must be positive, got %d", c.JWTExpiresDays)
	}
	if c.MaxCells < game.Hard.Cells() {
		return Config{}, fmt.Errorf("max-cells must be at least %d, got %d", game.Hard.Cells(), c.MaxCells)
	}
	if c.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("session-ttl must be positive, got %s", c.SessionTTL)
	}
	return c, nil
}
