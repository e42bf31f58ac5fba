package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/courtbot/internal/court"
)

// CloseInput contains parameters for the Close operation.
type CloseInput struct {
	GuildID   court.Snowflake
	ChannelID court.Snowflake // the court room the command was issued in

	Requester          court.Snowflake
	PermissionOverride bool
	Verdict            string
}

// Close rules the verdict on the open lawsuit of the court room ChannelID.
// A channel that is not a court room with an open lawsuit is a soft denial.
func (s *Service) Close(ctx context.Context, input CloseInput) (court.Response, error) {
	state, err := s.store.GetState(ctx, input.GuildID)
	if err != nil {
		return court.Response{}, fmt.Errorf("close lawsuit: load state: %w", err)
	}

	lawsuit, ok := state.OpenLawsuitIn(input.ChannelID)
	if !ok {
		return court.Deny(MsgNoActiveLawsuit), nil
	}
	room, ok := state.Room(input.ChannelID)
	if !ok {
		return court.Deny(MsgNoActiveLawsuit), nil
	}

	resp, err := s.RuleVerdict(ctx, RuleVerdictInput{
		GuildID:            input.GuildID,
		Lawsuit:            lawsuit,
		Room:               room,
		Requester:          input.Requester,
		PermissionOverride: input.PermissionOverride,
		Verdict:            input.Verdict,
	})
	if err != nil || resp.Denied() {
		return resp, err
	}
	return court.OK(MsgLawsuitClosed), nil
}
