package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/courtbot/internal/config"
	"github.com/hpungsan/courtbot/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var guildIDParam = mcp.WithString("guild_id",
	mcp.Required(),
	mcp.Description("Guild (server) id, decimal"),
)

var guildStateToolDef = mcp.NewTool("guild_state",
	mcp.WithDescription("Show a guild's court state: settings, court rooms, and lawsuits."),
	mcp.WithReadOnlyHintAnnotation(true),
	guildIDParam,
)

var lawsuitListToolDef = mcp.NewTool("lawsuit_list",
	mcp.WithDescription("List a guild's lawsuits in creation order."),
	mcp.WithReadOnlyHintAnnotation(true),
	guildIDParam,
	mcp.WithBoolean("open_only", mcp.Description("Only lawsuits without a verdict")),
)

var prisonStatusToolDef = mcp.NewTool("prison_status",
	mcp.WithDescription("Report whether a member is imprisoned in a guild."),
	mcp.WithReadOnlyHintAnnotation(true),
	guildIDParam,
	mcp.WithString("user_id", mcp.Required(), mcp.Description("Member user id, decimal")),
)

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"guild_state": {
		def:     guildStateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGuildState },
	},
	"lawsuit_list": {
		def:     lawsuitListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLawsuitList },
	},
	"prison_status": {
		def:     prisonStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePrisonStatus },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server exposing read-only court inspection tools.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(svc *ops.Service, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"courtbot",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(svc)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(svc *ops.Service, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(svc, cfg, version))
}
