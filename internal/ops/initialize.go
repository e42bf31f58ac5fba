package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/platform"
)

// InitializeInput contains parameters for the Initialize operation.
type InitializeInput struct {
	GuildID court.Snowflake

	Plaintiff court.Snowflake // required
	Accused   court.Snowflake // required
	Judge     court.Snowflake // required

	PlaintiffLawyer *court.Snowflake
	AccusedLawyer   *court.Snowflake

	Reason string // required
}

// InitializeOutput contains the result of the Initialize operation.
type InitializeOutput struct {
	Response court.Response

	// Lawsuit and Task are nil when Response is a denial.
	Lawsuit *court.Lawsuit

	// Task persists the lawsuit, marks its room ongoing, and grants the room
	// role to the participants. Its failures are logged only.
	Task *Task
}

// Initialize opens a lawsuit: it allocates a room, announces the case in the
// room's channel, and acknowledges. Persistence and role grants finish in the
// background after Initialize returns.
func (s *Service) Initialize(ctx context.Context, input InitializeInput) (*InitializeOutput, error) {
	if input.Plaintiff == 0 || input.Accused == 0 || input.Judge == 0 {
		return &InitializeOutput{Response: court.Deny(MsgMissingParticipants)}, nil
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return &InitializeOutput{Response: court.Deny(MsgMissingReason)}, nil
	}

	state, err := s.store.GetOrCreateState(ctx, input.GuildID)
	if err != nil {
		return nil, fmt.Errorf("initialize lawsuit: load state: %w", err)
	}

	alloc, err := s.AllocateRoom(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("initialize lawsuit: %w", err)
	}
	if alloc.Response.Denied() {
		return &InitializeOutput{Response: alloc.Response}, nil
	}
	room := alloc.Room

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	lawsuit := court.Lawsuit{
		ID:              id,
		Plaintiff:       input.Plaintiff,
		Accused:         input.Accused,
		Judge:           input.Judge,
		PlaintiffLawyer: input.PlaintiffLawyer,
		AccusedLawyer:   input.AccusedLawyer,
		Reason:          reason,
		CourtRoom:       room.ChannelID,
	}

	channels, err := s.platform.Channels(ctx, input.GuildID)
	if err != nil {
		return nil, fmt.Errorf("initialize lawsuit: %w", err)
	}
	if _, ok := platform.FindChannel(channels, room.ChannelID); !ok {
		return &InitializeOutput{Response: court.Deny(MsgRoomChannelGone)}, nil
	}
	if err := s.platform.SendEmbed(ctx, room.ChannelID, openingEmbed(lawsuit)); err != nil {
		return nil, fmt.Errorf("initialize lawsuit: announce: %w", err)
	}

	task := runDetached(ctx, func(ctx context.Context) error {
		err := s.finishInitialize(ctx, input.GuildID, lawsuit, room)
		if err != nil {
			s.logger.Error("lawsuit setup failed after acknowledgement",
				"guild_id", input.GuildID,
				"lawsuit_id", lawsuit.ID,
				"channel_id", room.ChannelID,
				"error", err,
			)
		}
		return err
	})

	return &InitializeOutput{
		Response: court.OK(msgLawsuitOpened(room.ChannelID)),
		Lawsuit:  &lawsuit,
		Task:     task,
	}, nil
}

// finishInitialize is the background tail of Initialize. It stops at the first failure.
func (s *Service) finishInitialize(ctx context.Context, guildID court.Snowflake, lawsuit court.Lawsuit, room court.CourtRoom) error {
	if err := s.store.AppendLawsuit(ctx, guildID, lawsuit); err != nil {
		return fmt.Errorf("store lawsuit: %w", err)
	}
	if err := s.store.SetCourtRoomOngoing(ctx, guildID, room.ChannelID, true); err != nil {
		return fmt.Errorf("mark room ongoing: %w", err)
	}

	for _, userID := range lawsuit.RoleHolders() {
		if err := s.grantRole(ctx, guildID, userID, room.RoleID); err != nil {
			return err
		}
	}

	s.logger.Info("opened lawsuit",
		"guild_id", guildID,
		"lawsuit_id", lawsuit.ID,
		"channel_id", room.ChannelID,
	)
	return nil
}

// grantRole resolves the member and grants them the role.
func (s *Service) grantRole(ctx context.Context, guildID, userID, roleID court.Snowflake) error {
	if _, err := s.platform.Member(ctx, guildID, userID); err != nil {
		return fmt.Errorf("grant role %s to %s: %w", roleID, userID, err)
	}
	if err := s.platform.AddMemberRole(ctx, guildID, userID, roleID); err != nil {
		return fmt.Errorf("grant role %s to %s: %w", roleID, userID, err)
	}
	return nil
}

// revokeRole resolves the member and revokes the role.
func (s *Service) revokeRole(ctx context.Context, guildID, userID, roleID court.Snowflake) error {
	if _, err := s.platform.Member(ctx, guildID, userID); err != nil {
		return fmt.Errorf("revoke role %s from %s: %w", roleID, userID, err)
	}
	if err := s.platform.RemoveMemberRole(ctx, guildID, userID, roleID); err != nil {
		return fmt.Errorf("revoke role %s from %s: %w", roleID, userID, err)
	}
	return nil
}
