package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc}
}

// GuildStateRequest represents the arguments for guild_state.
type GuildStateRequest struct {
	GuildID string `json:"guild_id"`
}

// LawsuitListRequest represents the arguments for lawsuit_list.
type LawsuitListRequest struct {
	GuildID  string `json:"guild_id"`
	OpenOnly bool   `json:"open_only,omitempty"`
}

// PrisonStatusRequest represents the arguments for prison_status.
type PrisonStatusRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

// LawsuitListResult is the lawsuit_list payload.
type LawsuitListResult struct {
	Lawsuits []court.Lawsuit `json:"lawsuits"`
	Count    int             `json:"count"`
}

// PrisonStatusResult is the prison_status payload.
type PrisonStatusResult struct {
	GuildID    court.Snowflake `json:"guild_id"`
	UserID     court.Snowflake `json:"user_id"`
	Imprisoned bool            `json:"imprisoned"`
}

// HandleGuildState handles the guild_state tool.
func (h *Handlers) HandleGuildState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[GuildStateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	guildID, err := parseID("guild_id", args.GuildID)
	if err != nil {
		return errorResult(err), nil
	}

	state, err := h.svc.State(ctx, guildID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(state)
}

// HandleLawsuitList handles the lawsuit_list tool.
func (h *Handlers) HandleLawsuitList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[LawsuitListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	guildID, err := parseID("guild_id", args.GuildID)
	if err != nil {
		return errorResult(err), nil
	}

	lawsuits, err := h.svc.ListLawsuits(ctx, ops.ListLawsuitsInput{GuildID: guildID, OpenOnly: args.OpenOnly})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(LawsuitListResult{Lawsuits: lawsuits, Count: len(lawsuits)})
}

// HandlePrisonStatus handles the prison_status tool.
func (h *Handlers) HandlePrisonStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[PrisonStatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	guildID, err := parseID("guild_id", args.GuildID)
	if err != nil {
		return errorResult(err), nil
	}
	userID, err := parseID("user_id", args.UserID)
	if err != nil {
		return errorResult(err), nil
	}

	imprisoned, err := h.svc.IsImprisoned(ctx, guildID, userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(PrisonStatusResult{GuildID: guildID, UserID: userID, Imprisoned: imprisoned})
}

func parseID(field, value string) (court.Snowflake, error) {
	id, err := court.ParseSnowflake(value)
	if err != nil {
		return 0, errors.NewInvalidRequest(field + ": " + err.Error())
	}
	return id, nil
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var courtErr *errors.CourtError
	if stderrors.As(err, &courtErr) {
		errorObj := map[string]any{
			"code":    courtErr.Code,
			"message": courtErr.Message,
		}
		// Internal and platform messages may carry driver or API detail
		switch courtErr.Code {
		case errors.ErrInternal, errors.ErrPlatform:
			errorObj["message"] = "an internal error occurred"
		default:
			if courtErr.Details != nil {
				errorObj["details"] = courtErr.Details
			}
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
