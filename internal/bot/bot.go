// Package bot is the Discord command-dispatch layer: it installs the slash
// commands, routes interactions to the court operations, gates them on
// MANAGE_GUILD, and renders every outcome as an ephemeral reply.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/ops"
)

// Intents are the gateway intents the bot needs: guild events and member joins.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

// Replies rendered by the dispatcher itself.
const (
	MsgNoPermission   = "You have no permission for this!"
	MsgInternalError  = "An internal error occurred"
	MsgNotImplemented = "Not implemented :("
)

// handlerTimeout bounds the synchronous part of a command. Background work
// started by a command is not bound by it.
const handlerTimeout = 30 * time.Second

// Court is the set of operations the dispatcher drives. *ops.Service implements it.
type Court interface {
	Initialize(ctx context.Context, input ops.InitializeInput) (*ops.InitializeOutput, error)
	SetCourtCategory(ctx context.Context, guildID, categoryID court.Snowflake) (court.Response, error)
	Close(ctx context.Context, input ops.CloseInput) (court.Response, error)
	ClearGuild(ctx context.Context, guildID court.Snowflake) (court.Response, error)
	Arrest(ctx context.Context, input ops.PrisonInput) (court.Response, error)
	Release(ctx context.Context, input ops.PrisonInput) (court.Response, error)
	SetPrisonRole(ctx context.Context, guildID, roleID court.Snowflake) (court.Response, error)
	HandleMemberJoin(ctx context.Context, guildID, userID court.Snowflake) error
}

// API is the subset of *discordgo.Session the handler calls.
type API interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Options configures a Handler.
type Options struct {
	// DevGuildID, when set, receives the commands on Ready; guild commands apply immediately.
	DevGuildID string

	// SetGlobalCommands installs the commands globally on Ready.
	SetGlobalCommands bool

	Logger *slog.Logger
}

// Handler routes gateway events to the court operations.
type Handler struct {
	court  Court
	opts   Options
	logger *slog.Logger
}

// New creates a Handler. If opts.Logger is nil, slog.Default() is used.
func New(c Court, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{court: c, opts: opts, logger: logger}
}

// Register adds the handler's event callbacks to a session.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.onReady(context.Background(), s, r)
	})
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h.onInteraction(context.Background(), s, i.Interaction)
	})
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		h.onMemberJoin(context.Background(), m.Member)
	})
}

func (h *Handler) onReady(ctx context.Context, api API, r *discordgo.Ready) {
	// A bot's application id equals its user id.
	appID := r.User.ID
	h.logger.Info("bot is connected", "name", r.User.Username)

	commands := Commands()
	if h.opts.DevGuildID != "" {
		if _, err := api.ApplicationCommandBulkOverwrite(appID, h.opts.DevGuildID, commands, discordgo.WithContext(ctx)); err != nil {
			h.logger.Error("failed to install guild slash commands", "guild_id", h.opts.DevGuildID, "error", err)
		} else {
			h.logger.Info("installed guild slash commands", "guild_id", h.opts.DevGuildID)
		}
	}
	if h.opts.SetGlobalCommands {
		if _, err := api.ApplicationCommandBulkOverwrite(appID, "", commands, discordgo.WithContext(ctx)); err != nil {
			h.logger.Error("failed to install global slash commands", "error", err)
		} else {
			h.logger.Info("installed global slash commands")
		}
	}
}

func (h *Handler) onInteraction(ctx context.Context, api API, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	text := h.handle(ctx, i)
	err := api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		h.logger.Error("failed to send interaction response", "interaction_id", i.ID, "error", err)
	}
}

// handle runs the command and returns the reply text. Hard errors are logged
// here and never shown to the user.
func (h *Handler) handle(ctx context.Context, i *discordgo.Interaction) string {
	req, err := parseRequest(i)
	if err != nil {
		h.logger.Error("malformed command interaction", "interaction_id", i.ID, "error", err)
		return MsgInternalError
	}
	h.logger.Debug("received command", "command", req.Command, "subcommand", req.Subcommand, "guild_id", req.GuildID)

	resp, err := h.dispatch(ctx, req)
	if err != nil {
		h.logger.Error("command failed",
			"command", req.Command,
			"subcommand", req.Subcommand,
			"guild_id", req.GuildID,
			"user_id", req.UserID,
			"error", err,
		)
		return MsgInternalError
	}
	return render(resp)
}

func (h *Handler) onMemberJoin(ctx context.Context, m *discordgo.Member) {
	if m == nil || m.User == nil {
		return
	}
	guildID, err := court.ParseSnowflake(m.GuildID)
	if err != nil {
		h.logger.Error("member join with invalid guild id", "guild_id", m.GuildID, "error", err)
		return
	}
	userID, err := court.ParseSnowflake(m.User.ID)
	if err != nil {
		h.logger.Error("member join with invalid user id", "user_id", m.User.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	h.logger.Debug("member joined", "guild_id", guildID, "user_id", userID)
	if err := h.court.HandleMemberJoin(ctx, guildID, userID); err != nil {
		h.logger.Error("member join handler failed", "guild_id", guildID, "user_id", userID, "error", err)
	}
}

// render turns a response into reply text.
func render(resp court.Response) string {
	if resp.Kind == court.KindNoPermission {
		return MsgNoPermission
	}
	return resp.Text
}

var (
	_ API   = (*discordgo.Session)(nil)
	_ Court = (*ops.Service)(nil)
)
