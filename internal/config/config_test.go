package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeetlabs/jeetbot/internal/models"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_ID", "guild-1")
	t.Setenv("DISCORD_ALLOWED_CHANNEL_ID", "channel-1")
	t.Setenv("DISCORD_LOG_CHANNEL_ID", "channel-2")
	t.Setenv("SMM_API_URL", "https://panel.example.com/api/v2")
	t.Setenv("SMM_API_KEY", "key")
	t.Setenv("SMM_SERVICE_VIEWS", "101")
	t.Setenv("SMM_SERVICE_LIKES", "102")
	t.Setenv("SMM_SERVICE_SHARES", "103")
	t.Setenv("SMM_SERVICE_FOLLOWS", "104")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, ":8080", cfg.OpsListenAddr)

	assert.Equal(t, "Silver", cfg.TierRoles[models.TierSilver])
	assert.Equal(t, "102", cfg.ServiceIDs[models.ServiceLikes])

	assert.Equal(t, 5*time.Minute, cfg.Cooldowns["jviews"])
	assert.Equal(t, 5*time.Minute, cfg.Cooldowns["jlikes"])
	assert.Equal(t, time.Hour, cfg.Cooldowns["jshares"])
	assert.Equal(t, 24*time.Hour, cfg.Cooldowns["jfollow"])

	assert.Equal(t, 3000, cfg.Quotas[models.TierBronze][models.ServiceViews])
	assert.Equal(t, 0, cfg.Quotas[models.TierSilver][models.ServiceFollows])
}

func TestLoad_MissingRequiredVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("SMM_SERVICE_FOLLOWS", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")
	assert.Contains(t, err.Error(), "SMM_SERVICE_FOLLOWS")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COOLDOWN_JVIEWS_SECONDS", "60")
	t.Setenv("QUOTA_BRONZE_LIKES", "250")
	t.Setenv("ROLE_SILVER", "VIP")
	t.Setenv("SMM_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Cooldowns["jviews"])
	assert.Equal(t, 250, cfg.Quotas[models.TierBronze][models.ServiceLikes])
	assert.Equal(t, "VIP", cfg.TierRoles[models.TierSilver])
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoad_NegativeQuotaOverrideRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUOTA_FREE_VIEWS", "-10")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative quota")
}

func TestLoad_NonPositiveTimeoutRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMM_TIMEOUT_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMM_TIMEOUT_SECONDS")
}
