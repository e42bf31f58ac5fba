package bot

import (
	"context"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/ops"
)

// dispatch routes a request to its operation. Every subcommand except
// /lawsuit close requires MANAGE_GUILD; close passes it as the verdict override.
func (h *Handler) dispatch(ctx context.Context, req *request) (court.Response, error) {
	switch req.Command {
	case cmdLawsuit:
		return h.lawsuit(ctx, req)
	case cmdPrison:
		return h.prison(ctx, req)
	}
	return court.Deny(MsgNotImplemented), nil
}

func (h *Handler) lawsuit(ctx context.Context, req *request) (court.Response, error) {
	if req.Subcommand == subClose {
		verdict, err := req.str(optVerdict)
		if err != nil {
			return court.Response{}, err
		}
		return h.court.Close(ctx, ops.CloseInput{
			GuildID:            req.GuildID,
			ChannelID:          req.ChannelID,
			Requester:          req.UserID,
			PermissionOverride: req.canManageGuild(),
			Verdict:            verdict,
		})
	}

	if !req.canManageGuild() {
		return court.NoPermission(), nil
	}

	switch req.Subcommand {
	case subCreate:
		input, err := createInput(req)
		if err != nil {
			return court.Response{}, err
		}
		out, err := h.court.Initialize(ctx, input)
		if err != nil {
			return court.Response{}, err
		}
		// out.Task finishes on its own and logs its failures.
		return out.Response, nil

	case subSetCategory:
		category, err := req.requiredID(optCategory)
		if err != nil {
			return court.Response{}, err
		}
		return h.court.SetCourtCategory(ctx, req.GuildID, category)

	case subClear:
		return h.court.ClearGuild(ctx, req.GuildID)
	}
	return court.Deny(MsgNotImplemented), nil
}

func (h *Handler) prison(ctx context.Context, req *request) (court.Response, error) {
	if !req.canManageGuild() {
		return court.NoPermission(), nil
	}

	switch req.Subcommand {
	case subSetRole:
		role, err := req.requiredID(optRole)
		if err != nil {
			return court.Response{}, err
		}
		return h.court.SetPrisonRole(ctx, req.GuildID, role)

	case subArrest, subRelease:
		user, err := req.requiredID(optUser)
		if err != nil {
			return court.Response{}, err
		}
		input := ops.PrisonInput{GuildID: req.GuildID, UserID: user}
		if req.Subcommand == subArrest {
			return h.court.Arrest(ctx, input)
		}
		return h.court.Release(ctx, input)
	}
	return court.Deny(MsgNotImplemented), nil
}

func createInput(req *request) (ops.InitializeInput, error) {
	input := ops.InitializeInput{GuildID: req.GuildID}
	var err error
	if input.Plaintiff, err = req.requiredID(optPlaintiff); err != nil {
		return input, err
	}
	if input.Accused, err = req.requiredID(optAccused); err != nil {
		return input, err
	}
	if input.Judge, err = req.requiredID(optJudge); err != nil {
		return input, err
	}
	if input.Reason, err = req.str(optReason); err != nil {
		return input, err
	}
	if input.PlaintiffLawyer, err = req.id(optPlaintiffLawyer); err != nil {
		return input, err
	}
	if input.AccusedLawyer, err = req.id(optAccusedLawyer); err != nil {
		return input, err
	}
	return input, nil
}
