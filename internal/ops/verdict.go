package ops

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/platform"
)

// RuleVerdictInput contains parameters for the RuleVerdict operation.
type RuleVerdictInput struct {
	GuildID court.Snowflake
	Lawsuit court.Lawsuit
	Room    court.CourtRoom

	Requester court.Snowflake

	// PermissionOverride lets a requester other than the judge close the lawsuit.
	PermissionOverride bool

	Verdict string // required
}

// RuleVerdict closes a lawsuit. Only the judge may close it unless
// PermissionOverride is set; anyone else gets court.NoPermission() and
// nothing changes. A blank verdict is denied.
//
// The room is freed, the verdict stored, and the room role revoked from the
// accused, plaintiff and judge concurrently. Lawyers lose the role afterwards.
// If that batch fails, the error is returned and the lawyers keep the role.
// The closing announcement comes last; when the channel is gone the teardown
// stands and a denial is returned.
func (s *Service) RuleVerdict(ctx context.Context, input RuleVerdictInput) (court.Response, error) {
	lawsuit := input.Lawsuit
	if input.Requester != lawsuit.Judge && !input.PermissionOverride {
		return court.NoPermission(), nil
	}

	verdict := strings.TrimSpace(input.Verdict)
	if verdict == "" {
		return court.Deny(MsgMissingVerdict), nil
	}
	lawsuit.Verdict = &verdict

	guildID := input.GuildID
	room := input.Room

	var g errgroup.Group
	g.Go(func() error {
		return s.store.SetCourtRoomOngoing(ctx, guildID, room.ChannelID, false)
	})
	g.Go(func() error {
		return s.store.SetLawsuitVerdict(ctx, guildID, lawsuit.ID, verdict)
	})
	for _, userID := range []court.Snowflake{lawsuit.Accused, lawsuit.Plaintiff, lawsuit.Judge} {
		g.Go(func() error {
			return s.revokeRole(ctx, guildID, userID, room.RoleID)
		})
	}
	if err := g.Wait(); err != nil {
		return court.Response{}, fmt.Errorf("rule verdict on %s: %w", lawsuit.ID, err)
	}

	for _, lawyer := range lawsuit.Lawyers() {
		if err := s.revokeRole(ctx, guildID, lawyer, room.RoleID); err != nil {
			return court.Response{}, fmt.Errorf("rule verdict on %s: %w", lawsuit.ID, err)
		}
	}

	channels, err := s.platform.Channels(ctx, guildID)
	if err != nil {
		return court.Response{}, fmt.Errorf("rule verdict on %s: %w", lawsuit.ID, err)
	}
	if _, ok := platform.FindChannel(channels, room.ChannelID); !ok {
		return court.Deny(MsgClosingChannelGone), nil
	}
	if err := s.platform.SendEmbed(ctx, room.ChannelID, closingEmbed(lawsuit, verdict)); err != nil {
		return court.Response{}, fmt.Errorf("rule verdict on %s: announce: %w", lawsuit.ID, err)
	}

	s.logger.Info("closed lawsuit",
		"guild_id", guildID,
		"lawsuit_id", lawsuit.ID,
		"channel_id", room.ChannelID,
		"requester", input.Requester,
	)
	return court.OK(""), nil
}
