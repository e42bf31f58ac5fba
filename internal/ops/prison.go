package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/courtbot/internal/court"
)

// PrisonInput identifies a guild member for Arrest and Release.
type PrisonInput struct {
	GuildID court.Snowflake
	UserID  court.Snowflake
}

// Arrest records the member as imprisoned and grants the prison role.
// Arresting an imprisoned member again leaves the store unchanged.
func (s *Service) Arrest(ctx context.Context, input PrisonInput) (court.Response, error) {
	roleID, resp, err := s.prisonRole(ctx, input.GuildID)
	if err != nil || resp.Denied() {
		return resp, err
	}

	if err := s.store.UpsertPrisonEntry(ctx, input.GuildID, input.UserID); err != nil {
		return court.Response{}, fmt.Errorf("arrest: %w", err)
	}
	if err := s.grantRole(ctx, input.GuildID, input.UserID, roleID); err != nil {
		return court.Response{}, fmt.Errorf("arrest: %w", err)
	}

	s.logger.Info("arrested member", "guild_id", input.GuildID, "user_id", input.UserID)
	return court.OK(MsgArrested), nil
}

// Release deletes the member's prison entry, if any, and revokes the prison role.
func (s *Service) Release(ctx context.Context, input PrisonInput) (court.Response, error) {
	roleID, resp, err := s.prisonRole(ctx, input.GuildID)
	if err != nil || resp.Denied() {
		return resp, err
	}

	if err := s.store.DeletePrisonEntry(ctx, input.GuildID, input.UserID); err != nil {
		return court.Response{}, fmt.Errorf("release: %w", err)
	}
	if err := s.revokeRole(ctx, input.GuildID, input.UserID, roleID); err != nil {
		return court.Response{}, fmt.Errorf("release: %w", err)
	}

	s.logger.Info("released member", "guild_id", input.GuildID, "user_id", input.UserID)
	return court.OK(MsgReleased), nil
}

// HandleMemberJoin re-grants the prison role to a joining member who is still
// imprisoned. Members without a prison entry, or guilds without a prison role,
// are left alone.
func (s *Service) HandleMemberJoin(ctx context.Context, guildID, userID court.Snowflake) error {
	state, err := s.store.GetState(ctx, guildID)
	if err != nil {
		return fmt.Errorf("member join: load state: %w", err)
	}
	if state.PrisonRole == nil {
		return nil
	}

	entry, err := s.store.FindPrisonEntry(ctx, guildID, userID)
	if err != nil {
		return fmt.Errorf("member join: %w", err)
	}
	if entry == nil {
		return nil
	}

	s.logger.Info("imprisoned member rejoined, restoring prison role", "guild_id", guildID, "user_id", userID)
	if err := s.platform.AddMemberRole(ctx, guildID, userID, *state.PrisonRole); err != nil {
		return fmt.Errorf("member join: %w", err)
	}
	return nil
}

// IsImprisoned reports whether the member has a prison entry.
func (s *Service) IsImprisoned(ctx context.Context, guildID, userID court.Snowflake) (bool, error) {
	entry, err := s.store.FindPrisonEntry(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// prisonRole returns the configured prison role, or a denial when none is set.
func (s *Service) prisonRole(ctx context.Context, guildID court.Snowflake) (court.Snowflake, court.Response, error) {
	state, err := s.store.GetState(ctx, guildID)
	if err != nil {
		return 0, court.Response{}, fmt.Errorf("load state: %w", err)
	}
	if state.PrisonRole == nil {
		return 0, court.Deny(MsgConfigurePrison), nil
	}
	return *state.PrisonRole, court.OK(""), nil
}
