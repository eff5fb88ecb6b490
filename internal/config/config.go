package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeetlabs/jeetbot/internal/models"
)

// Config aggregates runtime configuration for the bot and supporting services.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	BotToken         string
	GuildID          string
	AllowedChannelID string
	LogChannelID     string

	PanelURL       string
	PanelKey       string
	RequestTimeout time.Duration

	OpsListenAddr string
	OpsUsername   string
	OpsPassword   string

	// TierRoles binds each tier to the guild role name that grants it.
	TierRoles map[models.Tier]string
	// ServiceIDs maps each service to the panel's numeric service identifier.
	ServiceIDs map[models.Service]string
	// Cooldowns holds the per-command cooldown durations.
	Cooldowns map[string]time.Duration
	// Quotas holds the order quantity for every (tier, service) pair.
	Quotas map[models.Tier]map[models.Service]int
}

// defaultQuotas is the reference quota table; any cell can be overridden with
// QUOTA_<TIER>_<SERVICE> environment variables.
var defaultQuotas = map[models.Tier]map[models.Service]int{
	models.TierFree:   {models.ServiceViews: 100, models.ServiceLikes: 10, models.ServiceShares: 10, models.ServiceFollows: 0},
	models.TierBronze: {models.ServiceViews: 3000, models.ServiceLikes: 200, models.ServiceShares: 200, models.ServiceFollows: 0},
	models.TierSilver: {models.ServiceViews: 7000, models.ServiceLikes: 500, models.ServiceShares: 500, models.ServiceFollows: 0},
}

var defaultCooldownSeconds = map[string]int{
	"jviews":  300,
	"jlikes":  300,
	"jshares": 3600,
	"jfollow": 86400,
}

// Load reads configuration from environment variables, applying sane defaults.
// Missing or malformed required values are a startup error; nothing here is
// recoverable at request time.
func Load() (Config, error) {
	loadEnvFile()

	cfg := Config{
		RequestTimeout: time.Second * time.Duration(getInt("SMM_TIMEOUT_SECONDS", 20)),
		OpsListenAddr:  getEnv("OPS_LISTEN_ADDR", ":8080"),
		OpsUsername:    getEnv("OPS_USERNAME", "admin"),
		OpsPassword:    getEnv("OPS_PASSWORD", "change-me"),
		TierRoles: map[models.Tier]string{
			models.TierFree:   getEnv("ROLE_FREE", "Free"),
			models.TierBronze: getEnv("ROLE_BRONZE", "Bronze"),
			models.TierSilver: getEnv("ROLE_SILVER", "Silver"),
		},
	}

	cfg.BotToken = os.Getenv("DISCORD_BOT_TOKEN")
	cfg.GuildID = os.Getenv("DISCORD_GUILD_ID")
	cfg.AllowedChannelID = os.Getenv("DISCORD_ALLOWED_CHANNEL_ID")
	cfg.LogChannelID = os.Getenv("DISCORD_LOG_CHANNEL_ID")
	cfg.PanelURL = os.Getenv("SMM_API_URL")
	cfg.PanelKey = os.Getenv("SMM_API_KEY")

	cfg.ServiceIDs = map[models.Service]string{
		models.ServiceViews:   os.Getenv("SMM_SERVICE_VIEWS"),
		models.ServiceLikes:   os.Getenv("SMM_SERVICE_LIKES"),
		models.ServiceShares:  os.Getenv("SMM_SERVICE_SHARES"),
		models.ServiceFollows: os.Getenv("SMM_SERVICE_FOLLOWS"),
	}

	cfg.Cooldowns = make(map[string]time.Duration, len(defaultCooldownSeconds))
	for command, seconds := range defaultCooldownSeconds {
		key := fmt.Sprintf("COOLDOWN_%s_SECONDS", strings.ToUpper(command))
		cfg.Cooldowns[command] = time.Second * time.Duration(getInt(key, seconds))
	}

	cfg.Quotas = make(map[models.Tier]map[models.Service]int, len(defaultQuotas))
	for tier, row := range defaultQuotas {
		cfg.Quotas[tier] = make(map[models.Service]int, len(row))
		for service, quantity := range row {
			key := fmt.Sprintf("QUOTA_%s_%s", strings.ToUpper(string(tier)), strings.ToUpper(string(service)))
			cfg.Quotas[tier][service] = getInt(key, quantity)
		}
	}

	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "DISCORD_BOT_TOKEN")
	}
	if cfg.GuildID == "" {
		missing = append(missing, "DISCORD_GUILD_ID")
	}
	if cfg.AllowedChannelID == "" {
		missing = append(missing, "DISCORD_ALLOWED_CHANNEL_ID")
	}
	if cfg.LogChannelID == "" {
		missing = append(missing, "DISCORD_LOG_CHANNEL_ID")
	}
	if cfg.PanelURL == "" {
		missing = append(missing, "SMM_API_URL")
	}
	if cfg.PanelKey == "" {
		missing = append(missing, "SMM_API_KEY")
	}
	for _, service := range models.Services {
		if cfg.ServiceIDs[service] == "" {
			missing = append(missing, fmt.Sprintf("SMM_SERVICE_%s", strings.ToUpper(string(service))))
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate enforces the invariants the request path relies on: every
// (tier, service) pair has a quota row and every order command has a cooldown.
func (c Config) validate() error {
	for _, tier := range models.TiersByPrecedence {
		row, ok := c.Quotas[tier]
		if !ok {
			return fmt.Errorf("quota table: missing tier %q", tier)
		}
		for _, service := range models.Services {
			if quantity, ok := row[service]; !ok {
				return fmt.Errorf("quota table: missing quota for tier %q service %q", tier, service)
			} else if quantity < 0 {
				return fmt.Errorf("quota table: negative quota for tier %q service %q", tier, service)
			}
		}
	}
	for _, command := range models.OrderCommandNames {
		duration, ok := c.Cooldowns[command]
		if !ok {
			return fmt.Errorf("cooldowns: missing duration for command %q", command)
		}
		if duration < 0 {
			return fmt.Errorf("cooldowns: negative duration for command %q", command)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("SMM_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

// loadEnvFile overlays the first .env file it finds. A missing file is fine;
// production deployments inject the environment directly.
func loadEnvFile() {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			continue
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Overload(path); err == nil {
			return
		}
	}
}
