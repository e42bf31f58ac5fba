package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
)

// request is a slash command invocation flattened to the fields dispatch needs.
type request struct {
	Command    string
	Subcommand string

	GuildID     court.Snowflake
	ChannelID   court.Snowflake
	UserID      court.Snowflake
	Permissions int64

	options map[string]*discordgo.ApplicationCommandInteractionDataOption
}

// parseRequest extracts a request from a guild slash command interaction.
func parseRequest(i *discordgo.Interaction) (*request, error) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil, errors.NewInvalidRequest("not a slash command")
	}
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return nil, errors.NewInvalidRequest("command must be used by a guild member")
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return nil, errors.NewInvalidRequest("needs subcommand")
	}
	sub := data.Options[0]

	req := &request{
		Command:     data.Name,
		Subcommand:  sub.Name,
		Permissions: i.Member.Permissions,
		options:     make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options)),
	}
	for _, opt := range sub.Options {
		req.options[opt.Name] = opt
	}

	var err error
	if req.GuildID, err = court.ParseSnowflake(i.GuildID); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if req.ChannelID, err = court.ParseSnowflake(i.ChannelID); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if req.UserID, err = court.ParseSnowflake(i.Member.User.ID); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return req, nil
}

// canManageGuild reports whether the requester holds MANAGE_GUILD.
func (r *request) canManageGuild() bool {
	return r.Permissions&discordgo.PermissionManageServer != 0
}

// id returns the snowflake of a user, channel, or role option.
func (r *request) id(name string) (*court.Snowflake, error) {
	opt, ok := r.options[name]
	if !ok {
		return nil, nil
	}
	switch opt.Type {
	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionMentionable:
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("option %s: expected an id, got type %v", name, opt.Type))
	}
	raw, ok := opt.Value.(string)
	if !ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("option %s: expected an id", name))
	}
	id, err := court.ParseSnowflake(raw)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("option %s: %v", name, err))
	}
	return &id, nil
}

// requiredID is id for options the schema marks required.
func (r *request) requiredID(name string) (court.Snowflake, error) {
	id, err := r.id(name)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, errors.NewInvalidRequest("missing option " + name)
	}
	return *id, nil
}

// str returns a required string option.
func (r *request) str(name string) (string, error) {
	opt, ok := r.options[name]
	if !ok {
		return "", errors.NewInvalidRequest("missing option " + name)
	}
	if opt.Type != discordgo.ApplicationCommandOptionString {
		return "", errors.NewInvalidRequest(fmt.Sprintf("option %s: expected a string", name))
	}
	return opt.StringValue(), nil
}
