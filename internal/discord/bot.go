package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jeetlabs/jeetbot/internal/config"
	"github.com/jeetlabs/jeetbot/internal/models"
	"github.com/jeetlabs/jeetbot/internal/service"
)

const embedColor = 0x9B59B6

// Bot is the Discord-facing adapter: it registers the slash commands, turns
// interactions into pipeline requests, and renders outcomes back as messages.
// All policy lives in the service layer; this type only moves data across the
// gateway boundary.
type Bot struct {
	cfg       config.Config
	session   *discordgo.Session
	log       *slog.Logger
	orders    *service.OrderService
	cooldowns *service.CooldownTracker

	ctx context.Context
}

func NewBot(cfg config.Config, session *discordgo.Session, log *slog.Logger, orders *service.OrderService, cooldowns *service.CooldownTracker) *Bot {
	return &Bot{
		cfg:       cfg,
		session:   session,
		log:       log,
		orders:    orders,
		cooldowns: cooldowns,
	}
}

// Run opens the gateway session, registers the guild commands, and serves
// interactions until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	b.session.Identify.Intents = discordgo.IntentsGuilds

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer b.session.Close()

	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.cfg.GuildID, commandDefinitions()); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.log.Info("commands registered", "guild", b.cfg.GuildID)

	<-ctx.Done()
	return ctx.Err()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("bot online", "user", r.User.Username)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	if i.Member == nil || i.Member.User == nil {
		// Guild-only bot; commands from DMs carry no member and no roles.
		b.respond(s, i, "❌ Commands can only be used in the server.", true)
		return
	}

	switch data.Name {
	case "jviews", "jlikes", "jshares", "jfollow":
		b.handleOrder(s, i, data)
	case "jhelp":
		b.handleHelp(s, i)
	case "jstatus":
		b.handleStatus(s, i)
	default:
		b.respond(s, i, "Unknown command.", true)
	}
}

func (b *Bot) handleOrder(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	link := ""
	for _, opt := range data.Options {
		if opt.Name == "link" {
			link = opt.StringValue()
		}
	}

	req := service.Request{
		Command:     data.Name,
		UserID:      i.Member.User.ID,
		DisplayName: displayName(i.Member),
		Roles:       b.roleNames(s, i.Member.Roles),
		ChannelID:   i.ChannelID,
		Link:        link,
	}

	order, denial := b.orders.Admit(req)
	if denial != nil {
		b.respond(s, i, b.denialMessage(data.Name, denial), true)
		return
	}

	// Public acknowledgement goes out before the panel call; the final result
	// replaces it via an edit.
	b.respond(s, i, fmt.Sprintf("⏳ **Placing Order...**\nService: `%s`\nQuantity: `%d`", order.Service, order.Quantity), false)

	report := b.orders.Submit(b.ctx, order)

	switch {
	case report.OrderID != "":
		b.editResponse(s, i, fmt.Sprintf(
			"✅ **Order Placed Successfully**\n👤 User: <@%s>\n📌 Service: `%s`\n📦 Quantity: `%d`\n🆔 Order ID: `%s`",
			order.UserID, order.Service, order.Quantity, report.OrderID,
		))
	default:
		b.editResponse(s, i, fmt.Sprintf("❌ **Order Failed**\n```%s```", report.Failure))
	}
}

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.ChannelID != b.cfg.AllowedChannelID {
		b.respond(s, i, fmt.Sprintf("❌ Commands can only be used in <#%s>", b.cfg.AllowedChannelID), true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "📖 JEET Bot Commands",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/jviews <link>", Value: "Send TikTok views"},
			{Name: "/jlikes <link>", Value: "Send TikTok likes"},
			{Name: "/jshares <link>", Value: "Send TikTok shares"},
			{Name: "/jfollow <link>", Value: "Send TikTok followers"},
			{Name: "/jstatus", Value: "Shows cooldown left for each command for you"},
		},
	}
	b.respondEmbed(s, i, embed, false)
}

func (b *Bot) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.ChannelID != b.cfg.AllowedChannelID {
		b.respond(s, i, fmt.Sprintf("❌ Commands can only be used in <#%s>", b.cfg.AllowedChannelID), true)
		return
	}

	lines := make([]string, 0, 4)
	for _, row := range b.cooldowns.Status(i.Member.User.ID) {
		if row.Ready {
			lines = append(lines, fmt.Sprintf("`%s`: Ready", row.Command))
		} else {
			lines = append(lines, fmt.Sprintf("`%s`: %s", row.Command, service.FormatDuration(row.Remaining)))
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⏱ %s Cooldowns", displayName(i.Member)),
		Color:       embedColor,
		Description: strings.Join(lines, "\n"),
	}
	b.respondEmbed(s, i, embed, true)
}

func (b *Bot) denialMessage(command string, denial *service.Denial) string {
	switch denial.Reason {
	case models.DenyWrongChannel:
		return fmt.Sprintf("❌ Commands can only be used in <#%s>", b.cfg.AllowedChannelID)
	case models.DenyNoAccess:
		return "❌ You do not have access to JEET services."
	case models.DenyServiceUnavailable:
		return "❌ This service is not available for your tier."
	case models.DenyCooldownActive:
		return fmt.Sprintf("⏳ Cooldown Active for `%s` — try again in %s", command, service.FormatDuration(denial.Remaining))
	default:
		return "❌ Request denied."
	}
}

// roleNames maps the member's role IDs to role names, preferring the gateway
// state cache and falling back to one REST fetch when the cache misses.
func (b *Bot) roleNames(s *discordgo.Session, roleIDs []string) []string {
	names := make([]string, 0, len(roleIDs))
	var fetched map[string]string

	for _, id := range roleIDs {
		if role, err := s.State.Role(b.cfg.GuildID, id); err == nil {
			names = append(names, role.Name)
			continue
		}
		if fetched == nil {
			fetched = make(map[string]string)
			roles, err := s.GuildRoles(b.cfg.GuildID)
			if err != nil {
				b.log.Error("fetch guild roles", "err", err)
				continue
			}
			for _, role := range roles {
				fetched[role.ID] = role.Name
			}
		}
		if name, ok := fetched[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.Error("interaction respond", "err", err)
	}
}

func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.Error("interaction respond", "err", err)
	}
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.log.Error("interaction edit", "err", err)
	}
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	linkOption := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "link",
			Description: "Link to the target post or profile",
			Required:    true,
		},
	}

	return []*discordgo.ApplicationCommand{
		{Name: "jviews", Description: "Send TikTok views", Options: linkOption},
		{Name: "jlikes", Description: "Send TikTok likes", Options: linkOption},
		{Name: "jshares", Description: "Send TikTok shares", Options: linkOption},
		{Name: "jfollow", Description: "Send TikTok followers", Options: linkOption},
		{Name: "jhelp", Description: "Shows all JEET commands and usage"},
		{Name: "jstatus", Description: "Shows your cooldowns for JEET commands"},
	}
}
