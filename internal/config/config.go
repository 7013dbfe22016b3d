package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/starchess-backend/internal/ai"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the server settings. Each flag falls back to an environment
// variable and then to a built-in default.
type Config struct {
	Addr          string
	AllowOrigins  string
	AIDepth       int
	AIMoveCutoff  int
	AICheckBonus  bool
	LogLevel      string
	MatchInterval time.Duration
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  "http://localhost:5173",
		AIDepth:       ai.DefaultMaxDepth,
		LogLevel:      "info",
		MatchInterval: time.Second,
	}
}

// Load parses args over the environment over the defaults.
func Load(args []string) (Config, error) {
	cfg := Default()
	var err error

	cfg.Addr = envString("STARCHESS_ADDR", cfg.Addr)
	cfg.AllowOrigins = envString("STARCHESS_ALLOW_ORIGINS", cfg.AllowOrigins)
	cfg.LogLevel = envString("STARCHESS_LOG_LEVEL", cfg.LogLevel)
	if cfg.AIDepth, err = envInt("STARCHESS_AI_DEPTH", cfg.AIDepth); err != nil {
		return cfg, err
	}
	if cfg.AIMoveCutoff, err = envInt("STARCHESS_AI_MOVE_CUTOFF", cfg.AIMoveCutoff); err != nil {
		return cfg, err
	}
	if cfg.AICheckBonus, err = envBool("STARCHESS_AI_CHECK_BONUS", cfg.AICheckBonus); err != nil {
		return cfg, err
	}
	if cfg.MatchInterval, err = envDuration("STARCHESS_MATCH_INTERVAL", cfg.MatchInterval); err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("starchess", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", cfg.AllowOrigins, "comma separated CORS and websocket origins")
	fs.IntVar(&cfg.AIDepth, "ai-depth", cfg.AIDepth, "AI search depth in plies")
	fs.IntVar(&cfg.AIMoveCutoff, "ai-move-cutoff", cfg.AIMoveCutoff, "candidate moves kept per ply, 0 keeps all")
	fs.BoolVar(&cfg.AICheckBonus, "ai-check-bonus", cfg.AICheckBonus, "score checks and checkmates")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", cfg.MatchInterval, "how often the matchmaking queue is paired")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case c.AIDepth < 1:
		return fmt.Errorf("%w: ai depth %d must be at least 1", ErrInvalidConfig, c.AIDepth)
	case c.AIMoveCutoff < 0:
		return fmt.Errorf("%w: negative move cutoff %d", ErrInvalidConfig, c.AIMoveCutoff)
	case c.MatchInterval <= 0:
		return fmt.Errorf("%w: match interval %s must be positive", ErrInvalidConfig, c.MatchInterval)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel to the fiber logger's level.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
}

func (c Config) SearchOptions() ai.Options {
	return ai.Options{
		MaxDepth:        c.AIDepth,
		MoveCountCutoff: c.AIMoveCutoff,
		CheckBonuses:    c.AICheckBonus,
	}
}

// Origins splits AllowOrigins for the websocket upgrader. "*" allows all.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			out = append(out, o)
		}
	}
	return out
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return d, nil
}
