// Package discord implements platform.Platform on top of a discordgo session.
package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/platform"
)

// Session is the subset of *discordgo.Session the adapter calls.
type Session interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Platform adapts a discordgo session to platform.Platform.
type Platform struct {
	session Session
	logger  *slog.Logger
}

// New creates a Platform. If logger is nil, slog.Default() is used.
func New(session Session, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{session: session, logger: logger}
}

// Roles implements platform.Platform.
func (p *Platform) Roles(ctx context.Context, guildID court.Snowflake) ([]platform.Role, error) {
	raw, err := p.session.GuildRoles(guildID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, errors.NewPlatform("fetch roles", err)
	}
	roles := make([]platform.Role, 0, len(raw))
	for _, r := range raw {
		id, err := court.ParseSnowflake(r.ID)
		if err != nil {
			return nil, errors.NewPlatform("fetch roles", err)
		}
		roles = append(roles, platform.Role{ID: id, Name: r.Name})
	}
	return roles, nil
}

// CreateRole implements platform.Platform. The role carries no permissions.
func (p *Platform) CreateRole(ctx context.Context, guildID court.Snowflake, name string) (platform.Role, error) {
	var noPermissions int64
	created, err := p.session.GuildRoleCreate(guildID.String(), &discordgo.RoleParams{
		Name:        name,
		Permissions: &noPermissions,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return platform.Role{}, errors.NewPlatform("create role", err)
	}
	id, err := court.ParseSnowflake(created.ID)
	if err != nil {
		return platform.Role{}, errors.NewPlatform("create role", err)
	}
	p.logger.Debug("created role", "guild_id", guildID, "role_id", id, "name", name)
	return platform.Role{ID: id, Name: created.Name}, nil
}

// Channels implements platform.Platform.
func (p *Platform) Channels(ctx context.Context, guildID court.Snowflake) ([]platform.Channel, error) {
	raw, err := p.session.GuildChannels(guildID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, errors.NewPlatform("fetch channels", err)
	}
	channels := make([]platform.Channel, 0, len(raw))
	for _, c := range raw {
		channel, err := toChannel(c)
		if err != nil {
			return nil, errors.NewPlatform("fetch channels", err)
		}
		channels = append(channels, channel)
	}
	return channels, nil
}

// CreateChannel implements platform.Platform.
func (p *Platform) CreateChannel(ctx context.Context, guildID court.Snowflake, params platform.CreateChannelParams) (platform.Channel, error) {
	created, err := p.session.GuildChannelCreateComplex(guildID.String(), discordgo.GuildChannelCreateData{
		Name:     params.Name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: params.CategoryID.String(),
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:    params.PostingRole.String(),
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionSendMessages,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return platform.Channel{}, errors.NewPlatform("create channel", err)
	}
	channel, err := toChannel(created)
	if err != nil {
		return platform.Channel{}, errors.NewPlatform("create channel", err)
	}
	return channel, nil
}

// Member implements platform.Platform.
func (p *Platform) Member(ctx context.Context, guildID, userID court.Snowflake) (platform.Member, error) {
	raw, err := p.session.GuildMember(guildID.String(), userID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return platform.Member{}, errors.NewPlatform("fetch member", err)
	}
	member := platform.Member{UserID: userID}
	for _, r := range raw.Roles {
		id, err := court.ParseSnowflake(r)
		if err != nil {
			return platform.Member{}, errors.NewPlatform("fetch member", err)
		}
		member.Roles = append(member.Roles, id)
	}
	return member, nil
}

// AddMemberRole implements platform.Platform.
func (p *Platform) AddMemberRole(ctx context.Context, guildID, userID, roleID court.Snowflake) error {
	err := p.session.GuildMemberRoleAdd(guildID.String(), userID.String(), roleID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return errors.NewPlatform("add role to member", err)
	}
	return nil
}

// RemoveMemberRole implements platform.Platform.
func (p *Platform) RemoveMemberRole(ctx context.Context, guildID, userID, roleID court.Snowflake) error {
	err := p.session.GuildMemberRoleRemove(guildID.String(), userID.String(), roleID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return errors.NewPlatform("remove role from member", err)
	}
	return nil
}

// SendEmbed implements platform.Platform.
func (p *Platform) SendEmbed(ctx context.Context, channelID court.Snowflake, embed platform.Embed) error {
	_, err := p.session.ChannelMessageSendEmbed(channelID.String(), toMessageEmbed(embed), discordgo.WithContext(ctx))
	if err != nil {
		return errors.NewPlatform("send message", err)
	}
	return nil
}

func toChannel(c *discordgo.Channel) (platform.Channel, error) {
	id, err := court.ParseSnowflake(c.ID)
	if err != nil {
		return platform.Channel{}, err
	}
	channel := platform.Channel{
		ID:         id,
		Name:       c.Name,
		IsCategory: c.Type == discordgo.ChannelTypeGuildCategory,
	}
	if c.ParentID != "" {
		parent, err := court.ParseSnowflake(c.ParentID)
		if err != nil {
			return platform.Channel{}, err
		}
		channel.ParentID = &parent
	}
	return channel, nil
}

func toMessageEmbed(embed platform.Embed) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}
	return &discordgo.MessageEmbed{
		Title:  embed.Title,
		Fields: fields,
	}
}

var (
	_ platform.Platform = (*Platform)(nil)
	_ Session           = (*discordgo.Session)(nil)
)
