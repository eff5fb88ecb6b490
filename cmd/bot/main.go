package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jeetlabs/jeetbot/internal/config"
	"github.com/jeetlabs/jeetbot/internal/discord"
	"github.com/jeetlabs/jeetbot/internal/ops"
	"github.com/jeetlabs/jeetbot/internal/service"
	"github.com/jeetlabs/jeetbot/internal/smm"
	"github.com/jeetlabs/jeetbot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatalf("discord session: %v", err)
	}

	panelClient := smm.NewClient(cfg, logr)

	tierResolver := service.NewTierResolver(cfg.TierRoles)
	cooldownTracker := service.NewCooldownTracker(cfg.Cooldowns)
	cooldownTracker.StartPruning(ctx, time.Hour)

	quotaTable, err := service.NewQuotaTable(cfg.Quotas)
	if err != nil {
		log.Fatalf("quota table: %v", err)
	}

	auditLogger := discord.NewAuditLogger(session, cfg.LogChannelID, logr)
	orderService := service.NewOrderService(cfg, logr, tierResolver, cooldownTracker, quotaTable, panelClient, auditLogger)

	opsServer := ops.NewServer(cfg.OpsListenAddr, cfg.OpsUsername, cfg.OpsPassword, logr, cooldownTracker, quotaTable)
	go func() {
		if err := opsServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("ops server stopped", "err", err)
		}
	}()

	bot := discord.NewBot(cfg, session, logr, orderService, cooldownTracker)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("bot stopped", "err", err)
	}
}
