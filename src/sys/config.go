package sys

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Token    string   `env:"DISCORD_TOKEN"`
	GuildID  string   `env:"GUILD_ID"`
	OwnerIDs []string `env:"OWNER_IDS" envSeparator:","`
	Silent   bool     `env:"SILENT"`
	LogFile  bool     `env:"LOG_TO_FILE"`

	MySQLDSN string `env:"MYSQL_DSN" envDefault:"ember:ember@tcp(127.0.0.1:3306)/ember?parseTime=true"`

	DashboardAddr    string `env:"DASHBOARD_ADDR" envDefault:"127.0.0.1:8080"`
	DashboardEnabled bool   `env:"DASHBOARD_ENABLED" envDefault:"true"`

	// AI relay. Provider is "openai", "google" or empty (relay disabled).
	AIProvider     string        `env:"AI_PROVIDER"`
	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIModel    string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	GoogleAIKey    string        `env:"GOOGLE_API_KEY"`
	GoogleAIModel  string        `env:"GOOGLE_MODEL" envDefault:"gemini-1.5-flash"`
	AISystemPrompt string        `env:"AI_SYSTEM_PROMPT" envDefault:"You are Ember, a friendly Discord community bot. Keep answers short."`
	AITemperature  float64       `env:"AI_TEMPERATURE" envDefault:"0.7"`
	AIMaxTokens    int           `env:"AI_MAX_TOKENS" envDefault:"1024"`
	AIHistorySize  int           `env:"AI_HISTORY_SIZE" envDefault:"20"`
	AIRatePerMin   int           `env:"AI_RATE_PER_MINUTE" envDefault:"6"`
	AICacheTTL     time.Duration `env:"AI_CACHE_TTL" envDefault:"10m"`

	// Economy tuning.
	DailyBase   int64 `env:"DAILY_BASE" envDefault:"200"`
	DailyStreak int64 `env:"DAILY_STREAK_BONUS" envDefault:"25"`
	StartCoins  int64 `env:"START_COINS" envDefault:"500"`

	// Leveling tuning.
	XPPerMessage int           `env:"XP_PER_MESSAGE" envDefault:"15"`
	XPCooldown   time.Duration `env:"XP_COOLDOWN" envDefault:"60s"`

	// Stock market tuning.
	StockTick time.Duration `env:"STOCK_TICK" envDefault:"5m"`
}

var GlobalConfig *Config

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	for i := range cfg.OwnerIDs {
		cfg.OwnerIDs[i] = strings.TrimSpace(cfg.OwnerIDs[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf("invalid GUILD_ID: must be a valid Snowflake")
	}
	switch c.AIProvider {
	case "":
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("AI_PROVIDER=openai requires OPENAI_API_KEY")
		}
	case "google":
		if c.GoogleAIKey == "" {
			return fmt.Errorf("AI_PROVIDER=google requires GOOGLE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q (want openai or google)", c.AIProvider)
	}
	return nil
}

// IsOwner reports whether the user may run owner-only commands.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
