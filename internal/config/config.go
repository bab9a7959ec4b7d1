package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Database
	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PG_HOST" envDefault:"localhost"`
	PGPort      int    `env:"PG_PORT" envDefault:"5432"`
	PGUser      string `env:"PG_USER" envDefault:"werewolf"`
	PGPassword  string `env:"PG_PASSWORD" envDefault:"werewolf"`
	PGDatabase  string `env:"PG_DB" envDefault:"werewolf"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/werewolf.db"`

	// Redis
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Chat platform
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordBaseURL string `env:"DISCORD_API_BASE_URL" envDefault:"https://discord.com"`

	// Gateway auth
	GatewayJWTSecret string `env:"GATEWAY_JWT_SECRET"`

	// Inbound rate limit per guild
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"5"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	Game GameConfig
}

// GameConfig holds the naming conventions and knobs the orchestrator uses.
type GameConfig struct {
	AnnouncementChannel string        `env:"ANNOUNCEMENT_CHANNEL" envDefault:"game-announcements"`
	ModeratorChannel    string        `env:"MODERATOR_CHANNEL" envDefault:"moderator"`
	PlayerChannel       string        `env:"PLAYER_CHANNEL" envDefault:"player"`
	WorkshopChannel     string        `env:"WORKSHOP_CHANNEL" envDefault:"testing"`
	ReactionEmoji       string        `env:"REACTION_EMOJI" envDefault:"🐺"`
	DefaultGameName     string        `env:"DEFAULT_GAME_NAME" envDefault:"WOLF"`
	DefaultScenario     string        `env:"DEFAULT_SCENARIO" envDefault:"primary"`
	MaxStartDaysAhead   int           `env:"MAX_START_DAYS_AHEAD" envDefault:"60"`
	ReconcileOnDeath    bool          `env:"RECONCILE_ON_DEATH" envDefault:"false"`
	CatalogCacheTTL     time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`
}

// DefaultGameConfig returns the game settings with every default applied.
func DefaultGameConfig() GameConfig {
	var cfg GameConfig
	// envDefault tags are the single source of defaults
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load parses environment variables into a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.Game.MaxStartDaysAhead < 0 {
		return fmt.Errorf("MAX_START_DAYS_AHEAD must not be negative")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// RedisAddr returns host:port for the redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
