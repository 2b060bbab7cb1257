// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tectoast/wizard/internal/cache"
	"github.com/tectoast/wizard/internal/database"
)

// Username providers.
const (
	ProviderSession = "session"
	ProviderDev     = "dev"
)

// Config is the process configuration read from the environment.
type Config struct {
	Env            string
	Port           string
	AllowedOrigins []string
	LogLevel       logrus.Level

	DatabaseURL string

	RedisAddr  string
	RedisDB    int
	EventQueue string

	TokenTTL         time.Duration
	RegisterKey      string
	UsernameProvider string

	TrickClearDelay time.Duration
	NextRoundDelay  time.Duration
}

// Production reports whether WIZARD_ENV selects the production profile.
func (c Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Env:              get("WIZARD_ENV", "dev"),
		Port:             get("PORT", "8080"),
		RedisAddr:        get("REDIS_ADDR", ""),
		EventQueue:       get("WIZARD_EVENT_QUEUE", cache.DefaultQueueName),
		RegisterKey:      getenv("REGISTER_KEY"),
		UsernameProvider: get("USERNAME_PROVIDER", ProviderSession),
	}

	for _, o := range strings.Split(get("ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	defaultLevel := "debug"
	if cfg.Production() {
		defaultLevel = "info"
	}
	level, err := logrus.ParseLevel(get("LOG_LEVEL", defaultLevel))
	if err != nil {
		return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	cfg.DatabaseURL = get("DATABASE_URL", database.DSNFromParts(
		getenv("POSTGRES_USER"), getenv("POSTGRES_PASSWORD"),
		getenv("PG_HOST"), getenv("PG_PORT"), getenv("PG_DATABASE"),
	))

	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return cfg, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	switch ttl := get("TOKEN_EXPIRE_TIME", "72h"); ttl {
	case "never", "0":
		cfg.TokenTTL = 0
	default:
		if cfg.TokenTTL, err = time.ParseDuration(ttl); err != nil {
			return cfg, fmt.Errorf("invalid TOKEN_EXPIRE_TIME: %w", err)
		}
	}

	switch cfg.UsernameProvider {
	case ProviderSession, ProviderDev:
	default:
		return cfg, fmt.Errorf("invalid USERNAME_PROVIDER %q", cfg.UsernameProvider)
	}

	if cfg.TrickClearDelay, err = duration(get("TRICK_CLEAR_DELAY", "3s")); err != nil {
		return cfg, fmt.Errorf("invalid TRICK_CLEAR_DELAY: %w", err)
	}
	if cfg.NextRoundDelay, err = duration(get("NEXT_ROUND_DELAY", "5s")); err != nil {
		return cfg, fmt.Errorf("invalid NEXT_ROUND_DELAY: %w", err)
	}
	return cfg, nil
}

func duration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
