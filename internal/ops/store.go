package ops

import (
	"context"

	"github.com/hpungsan/courtbot/internal/court"
)

// Store is the guild state store the operations depend on.
// Implementations scope every call by guild id and never cache state.
type Store interface {
	// GetOrCreateState returns the guild's state, creating an empty record first if none exists.
	GetOrCreateState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error)

	// GetState returns the guild's state without writing; an unknown guild yields an empty state.
	GetState(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error)

	SetCourtCategory(ctx context.Context, guildID, categoryID court.Snowflake) error
	SetPrisonRole(ctx context.Context, guildID, roleID court.Snowflake) error

	AppendCourtRoom(ctx context.Context, guildID court.Snowflake, room court.CourtRoom) error
	AppendLawsuit(ctx context.Context, guildID court.Snowflake, lawsuit court.Lawsuit) error

	// SetCourtRoomOngoing updates the room matching channelID.
	// Returns NOT_FOUND if the guild has no such room.
	SetCourtRoomOngoing(ctx context.Context, guildID, channelID court.Snowflake, ongoing bool) error

	// SetLawsuitVerdict updates the lawsuit matching lawsuitID.
	// Returns NOT_FOUND if the guild has no such lawsuit.
	SetLawsuitVerdict(ctx context.Context, guildID court.Snowflake, lawsuitID, verdict string) error

	// DeleteGuild erases the guild's state record. Prison entries are kept.
	DeleteGuild(ctx context.Context, guildID court.Snowflake) error

	UpsertPrisonEntry(ctx context.Context, guildID, userID court.Snowflake) error
	DeletePrisonEntry(ctx context.Context, guildID, userID court.Snowflake) error

	// FindPrisonEntry returns nil without error when the member is not imprisoned.
	FindPrisonEntry(ctx context.Context, guildID, userID court.Snowflake) (*court.PrisonEntry, error)
}
