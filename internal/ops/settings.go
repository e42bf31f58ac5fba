package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/platform"
)

// SetCourtCategory makes categoryID the category new court rooms are created
// under. A channel that is not a category is a soft denial.
func (s *Service) SetCourtCategory(ctx context.Context, guildID, categoryID court.Snowflake) (court.Response, error) {
	channels, err := s.platform.Channels(ctx, guildID)
	if err != nil {
		return court.Response{}, fmt.Errorf("set court category: %w", err)
	}
	channel, ok := platform.FindChannel(channels, categoryID)
	if !ok || !channel.IsCategory {
		return court.Deny(MsgNotACategory), nil
	}

	if err := s.store.SetCourtCategory(ctx, guildID, categoryID); err != nil {
		return court.Response{}, fmt.Errorf("set court category: %w", err)
	}
	return court.OK(MsgSettingSaved), nil
}

// SetPrisonRole makes roleID the prison role.
func (s *Service) SetPrisonRole(ctx context.Context, guildID, roleID court.Snowflake) (court.Response, error) {
	if err := s.store.SetPrisonRole(ctx, guildID, roleID); err != nil {
		return court.Response{}, fmt.Errorf("set prison role: %w", err)
	}
	return court.OK(MsgSettingSaved), nil
}

// ClearGuild erases the guild's lawsuits, court rooms and settings.
// Prison entries survive. Platform channels and roles are not touched.
func (s *Service) ClearGuild(ctx context.Context, guildID court.Snowflake) (court.Response, error) {
	if err := s.store.DeleteGuild(ctx, guildID); err != nil {
		return court.Response{}, fmt.Errorf("clear guild: %w", err)
	}
	s.logger.Info("cleared guild data", "guild_id", guildID)
	return court.OK(MsgGuildCleared), nil
}

// State returns the guild's current state. It never creates a guild record.
func (s *Service) State(ctx context.Context, guildID court.Snowflake) (*court.GuildState, error) {
	return s.store.GetState(ctx, guildID)
}

// ListLawsuitsInput contains parameters for the ListLawsuits operation.
type ListLawsuitsInput struct {
	GuildID  court.Snowflake
	OpenOnly bool
}

// ListLawsuits returns the guild's lawsuits in creation order.
func (s *Service) ListLawsuits(ctx context.Context, input ListLawsuitsInput) ([]court.Lawsuit, error) {
	state, err := s.store.GetState(ctx, input.GuildID)
	if err != nil {
		return nil, err
	}
	if !input.OpenOnly {
		return state.Lawsuits, nil
	}
	open := []court.Lawsuit{}
	for _, l := range state.Lawsuits {
		if l.Open() {
			open = append(open, l)
		}
	}
	return open, nil
}
