package config

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const defaultJWTSecret = "dev-only-change-me"

type Config struct {
	// Discord Bot
	DiscordToken string `envconfig:"DISCORD_TOKEN" required:"true"`

	// Store
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	// Web Server
	WebBind string `envconfig:"WEB_BIND" default:"0.0.0.0:8080"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Kolkata"`

	// Status message
	StatusChannelID string        `envconfig:"STATUS_CHANNEL_ID"`
	StatusMessageID string        `envconfig:"STATUS_MESSAGE_ID"`
	StatusInterval  time.Duration `envconfig:"STATUS_INTERVAL" default:"55s"`

	// Minigames
	QuizChannelID string        `envconfig:"QUIZ_CHANNEL_ID"`
	QuizInterval  time.Duration `envconfig:"QUIZ_INTERVAL" default:"10m"`
	QuizTimeout   time.Duration `envconfig:"QUIZ_TIMEOUT" default:"60s"`
	QuizReward    int64         `envconfig:"QUIZ_REWARD" default:"10"`
	DuelChannelID string        `envconfig:"DUEL_CHANNEL_ID"`
	DuelTimeout   time.Duration `envconfig:"DUEL_TIMEOUT" default:"20s"`
	DuelReward    int64         `envconfig:"DUEL_REWARD" default:"5"`

	TriviaURL     string        `envconfig:"TRIVIA_URL" default:"https://opentdb.com/api.php?amount=1&type=multiple"`
	TriviaTimeout time.Duration `envconfig:"TRIVIA_TIMEOUT" default:"5s"`

	// Gates
	AdminRoleID string   `envconfig:"ADMIN_ROLE_ID"`
	OperatorIDs []string `envconfig:"OPERATOR_IDS"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`
	RateLimitBurst     int `envconfig:"RATE_LIMIT_BURST" default:"5"`

	// Discord OAuth2 for the operator console, disabled when the client ID is empty
	DiscordClientID     string `envconfig:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `envconfig:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURI  string `envconfig:"DISCORD_REDIRECT_URI" default:"http://localhost:8080/api/auth/callback"`
	JWTSecret           string `envconfig:"JWT_SECRET" default:"dev-only-change-me"`

	location *time.Location
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}

	if c.QuizTimeout <= 0 || c.DuelTimeout <= 0 || c.StatusInterval <= 0 || c.QuizInterval <= 0 {
		return fmt.Errorf("timeouts and intervals must be positive")
	}
	if c.QuizReward <= 0 || c.DuelReward <= 0 {
		return fmt.Errorf("QUIZ_REWARD and DUEL_REWARD must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	if c.TriviaURL != "" {
		if u, err := url.Parse(c.TriviaURL); err != nil || u.Host == "" {
			return fmt.Errorf("TRIVIA_URL is not a valid URL")
		}
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	c.location = loc

	if c.DiscordClientID != "" {
		if c.DiscordClientSecret == "" {
			return fmt.Errorf("DISCORD_CLIENT_SECRET is required when DISCORD_CLIENT_ID is set")
		}
		if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set when DISCORD_CLIENT_ID is set")
		}
	}
	return nil
}

// Location returns the zone used for spin days, schedules and the status embed.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) ConsoleEnabled() bool {
	return c.DiscordClientID != ""
}

func (c *Config) IsOperator(userID string) bool {
	for _, id := range c.OperatorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SetupLogging configures the process-wide logrus logger.
func (c *Config) SetupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
