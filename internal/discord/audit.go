package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jeetlabs/jeetbot/internal/models"
)

// AuditLogger posts an embed to the configured log channel for every placed
// order. It satisfies service.AuditSink; callers treat delivery as best
// effort, so errors only matter for logging.
type AuditLogger struct {
	session   *discordgo.Session
	channelID string
	log       *slog.Logger
}

func NewAuditLogger(session *discordgo.Session, channelID string, log *slog.Logger) *AuditLogger {
	return &AuditLogger{
		session:   session,
		channelID: channelID,
		log:       log,
	}
}

func (a *AuditLogger) OrderPlaced(ctx context.Context, order models.Order, orderID string) error {
	embed := &discordgo.MessageEmbed{
		Title: "📦 JEET Order Logged",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (`%s`)", order.DisplayName, order.UserID)},
			{Name: "Role", Value: titleCase(string(order.Tier)), Inline: true},
			{Name: "Service", Value: titleCase(string(order.Service)), Inline: true},
			{Name: "Quantity", Value: fmt.Sprintf("%d", order.Quantity), Inline: true},
			{Name: "Link", Value: order.Link},
			{Name: "Order ID", Value: orderID},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "JEET · " + order.RequestID},
	}

	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		return fmt.Errorf("send audit embed: %w", err)
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
