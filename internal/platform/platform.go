// Package platform defines the narrow view of the chat platform that the
// court operations drive: roles, channels, member role grants, and messages.
package platform

import (
	"context"

	"github.com/hpungsan/courtbot/internal/court"
)

// Role is a guild role.
type Role struct {
	ID   court.Snowflake
	Name string
}

// Channel is a guild channel or category.
type Channel struct {
	ID         court.Snowflake
	Name       string
	IsCategory bool

	// ParentID is the enclosing category, nil for top-level channels.
	ParentID *court.Snowflake
}

// InCategory reports whether the channel sits directly under categoryID.
func (c Channel) InCategory(categoryID court.Snowflake) bool {
	return c.ParentID != nil && *c.ParentID == categoryID
}

// Member is a guild member.
type Member struct {
	UserID court.Snowflake
	Roles  []court.Snowflake
}

// Field is one titled entry of an Embed.
type Field struct {
	Name  string
	Value string
}

// Embed is a structured message: a title and an ordered field list.
type Embed struct {
	Title  string
	Fields []Field
}

// CreateChannelParams describes a text channel to create.
type CreateChannelParams struct {
	Name       string
	CategoryID court.Snowflake

	// PostingRole is granted permission to send messages in the channel.
	PostingRole court.Snowflake
}

// Platform is the chat platform client. Implementations wrap every failure;
// callers treat any returned error as a hard error.
type Platform interface {
	// Roles lists the guild's roles.
	Roles(ctx context.Context, guildID court.Snowflake) ([]Role, error)

	// CreateRole creates a role without permissions.
	CreateRole(ctx context.Context, guildID court.Snowflake, name string) (Role, error)

	// Channels lists the guild's channels, categories included.
	Channels(ctx context.Context, guildID court.Snowflake) ([]Channel, error)

	// CreateChannel creates a text channel under a category.
	CreateChannel(ctx context.Context, guildID court.Snowflake, params CreateChannelParams) (Channel, error)

	// Member looks up a guild member by user id.
	Member(ctx context.Context, guildID, userID court.Snowflake) (Member, error)

	// AddMemberRole grants a role to a guild member.
	AddMemberRole(ctx context.Context, guildID, userID, roleID court.Snowflake) error

	// RemoveMemberRole revokes a role from a guild member.
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID court.Snowflake) error

	// SendEmbed posts a structured message into a channel.
	SendEmbed(ctx context.Context, channelID court.Snowflake, embed Embed) error
}

// FindRole returns the role with the given name.
func FindRole(roles []Role, name string) (Role, bool) {
	for _, r := range roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// FindChannel returns the channel with the given id.
func FindChannel(channels []Channel, id court.Snowflake) (Channel, bool) {
	for _, c := range channels {
		if c.ID == id {
			return c, true
		}
	}
	return Channel{}, false
}

// FindChannelByName returns the first non-category channel with the given name.
func FindChannelByName(channels []Channel, name string) (Channel, bool) {
	for _, c := range channels {
		if !c.IsCategory && c.Name == name {
			return c, true
		}
	}
	return Channel{}, false
}
