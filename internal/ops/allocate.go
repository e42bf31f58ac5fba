package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/platform"
)

// AllocateOutput is either a room or a soft denial (Response.Denied()).
type AllocateOutput struct {
	Room     court.CourtRoom
	Response court.Response
}

// AllocateRoom returns an idle court room of the guild, provisioning a new one
// in the configured category when every room is in use.
//
// Reusing a room makes no platform calls. Provisioning is idempotent under
// retries: an existing role or channel with the derived name is adopted instead
// of duplicated. A channel with the derived name outside the category is a
// soft denial.
func (s *Service) AllocateRoom(ctx context.Context, state *court.GuildState) (*AllocateOutput, error) {
	if room, ok := state.FreeRoom(); ok {
		return &AllocateOutput{Room: room}, nil
	}

	if state.CourtCategory == nil {
		return &AllocateOutput{Response: court.Deny(MsgConfigureCategory)}, nil
	}
	categoryID := *state.CourtCategory

	// Names derive from the room count, so a retry after a partial failure
	// lands on the same role and channel.
	n := len(state.CourtRooms) + 1
	roomName := court.RoomName(n)
	roleName := court.RoleName(n)

	roles, err := s.platform.Roles(ctx, state.GuildID)
	if err != nil {
		return nil, fmt.Errorf("allocate room: %w", err)
	}
	role, ok := platform.FindRole(roles, roleName)
	if !ok {
		role, err = s.platform.CreateRole(ctx, state.GuildID, roleName)
		if err != nil {
			return nil, fmt.Errorf("allocate room: %w", err)
		}
	}

	channels, err := s.platform.Channels(ctx, state.GuildID)
	if err != nil {
		return nil, fmt.Errorf("allocate room: %w", err)
	}
	channel, ok := platform.FindChannelByName(channels, roomName)
	switch {
	case ok && !channel.InCategory(categoryID):
		return &AllocateOutput{Response: court.Deny(msgWrongCategory(roomName))}, nil
	case !ok:
		channel, err = s.platform.CreateChannel(ctx, state.GuildID, platform.CreateChannelParams{
			Name:        roomName,
			CategoryID:  categoryID,
			PostingRole: role.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("allocate room: %w", err)
		}
	}

	room := court.CourtRoom{
		ChannelID: channel.ID,
		RoleID:    role.ID,
		Ongoing:   false,
	}
	if err := s.store.AppendCourtRoom(ctx, state.GuildID, room); err != nil {
		return nil, fmt.Errorf("allocate room: store room: %w", err)
	}

	s.logger.Info("created court room",
		"guild_id", state.GuildID,
		"channel_id", room.ChannelID,
		"role_id", room.RoleID,
	)

	return &AllocateOutput{Room: room}, nil
}
