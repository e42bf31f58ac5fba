package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/courtbot/internal/config"
	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/db"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/ops"
	"github.com/hpungsan/courtbot/internal/platform/platformtest"
)

const testGuild court.Snowflake = 1

// testSetup creates a temporary database, a service over a fake platform, and a default config.
func testSetup(t *testing.T) (*ops.Service, *db.Store, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := db.NewStore(database)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ops.New(store, platformtest.New(), logger), store, config.DefaultConfig()
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) []byte {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want mcp.TextContent", result.Content[0])
	}
	return []byte(text.Text)
}

func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected error result")
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resultText(t, result), &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	return payload.Error.Code
}

func seedLawsuits(t *testing.T, store *db.Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.GetOrCreateState(ctx, testGuild); err != nil {
		t.Fatalf("GetOrCreateState: %v", err)
	}
	verdict := "guilty"
	for _, l := range []court.Lawsuit{
		{ID: "L1", Plaintiff: 11, Accused: 12, Judge: 13, Reason: "first", Verdict: &verdict, CourtRoom: 900},
		{ID: "L2", Plaintiff: 11, Accused: 12, Judge: 13, Reason: "second", CourtRoom: 900},
	} {
		if err := store.AppendLawsuit(ctx, testGuild, l); err != nil {
			t.Fatalf("AppendLawsuit: %v", err)
		}
	}
}

func TestHandleGuildState(t *testing.T) {
	svc, store, _ := testSetup(t)
	seedLawsuits(t, store)
	h := NewHandlers(svc)

	result, err := h.HandleGuildState(context.Background(), makeRequest(map[string]any{"guild_id": "1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var state court.GuildState
	if err := json.Unmarshal(resultText(t, result), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.GuildID != testGuild {
		t.Errorf("guild_id = %d, want %d", state.GuildID, testGuild)
	}
	if len(state.Lawsuits) != 2 {
		t.Errorf("lawsuits = %d, want 2", len(state.Lawsuits))
	}
}

func TestHandleGuildState_InvalidArgs(t *testing.T) {
	svc, _, _ := testSetup(t)
	h := NewHandlers(svc)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing guild", args: map[string]any{}},
		{name: "non-numeric guild", args: map[string]any{"guild_id": "abc"}},
		{name: "wrong type", args: map[string]any{"guild_id": 1}},
		{name: "unknown argument", args: map[string]any{"guild_id": "1", "guild": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleGuildState(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if code := errorCode(t, result); code != string(errors.ErrInvalidRequest) {
				t.Errorf("code = %s, want %s", code, errors.ErrInvalidRequest)
			}
		})
	}
}

func TestHandleLawsuitList(t *testing.T) {
	svc, store, _ := testSetup(t)
	seedLawsuits(t, store)
	h := NewHandlers(svc)

	tests := []struct {
		name    string
		args    map[string]any
		wantIDs []string
	}{
		{name: "all", args: map[string]any{"guild_id": "1"}, wantIDs: []string{"L1", "L2"}},
		{name: "open only", args: map[string]any{"guild_id": "1", "open_only": true}, wantIDs: []string{"L2"}},
		{name: "empty guild", args: map[string]any{"guild_id": "2"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleLawsuitList(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsError {
				t.Fatalf("unexpected error result: %s", resultText(t, result))
			}

			var out LawsuitListResult
			if err := json.Unmarshal(resultText(t, result), &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.Count != len(tt.wantIDs) || len(out.Lawsuits) != len(tt.wantIDs) {
				t.Fatalf("count = %d, lawsuits = %d, want %d", out.Count, len(out.Lawsuits), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if out.Lawsuits[i].ID != id {
					t.Errorf("lawsuits[%d] = %s, want %s", i, out.Lawsuits[i].ID, id)
				}
			}
		})
	}
}

func TestHandlePrisonStatus(t *testing.T) {
	svc, store, _ := testSetup(t)
	if err := store.UpsertPrisonEntry(context.Background(), testGuild, 42); err != nil {
		t.Fatalf("UpsertPrisonEntry: %v", err)
	}
	h := NewHandlers(svc)

	for _, tt := range []struct {
		user string
		want bool
	}{
		{user: "42", want: true},
		{user: "43", want: false},
	} {
		result, err := h.HandlePrisonStatus(context.Background(), makeRequest(map[string]any{
			"guild_id": "1",
			"user_id":  tt.user,
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected error result: %s", resultText(t, result))
		}
		var out PrisonStatusResult
		if err := json.Unmarshal(resultText(t, result), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out.Imprisoned != tt.want {
			t.Errorf("user %s imprisoned = %v, want %v", tt.user, out.Imprisoned, tt.want)
		}
	}

	result, err := h.HandlePrisonStatus(context.Background(), makeRequest(map[string]any{"guild_id": "1"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code := errorCode(t, result); code != string(errors.ErrInvalidRequest) {
		t.Errorf("missing user_id code = %s, want INVALID_REQUEST", code)
	}
}

func TestErrorResult_HidesInternalDetail(t *testing.T) {
	result := errorResult(errors.NewPlatform("create role", io.ErrUnexpectedEOF))
	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resultText(t, result), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Error.Code != string(errors.ErrPlatform) {
		t.Errorf("code = %s, want PLATFORM", payload.Error.Code)
	}
	if payload.Error.Message != "an internal error occurred" || payload.Error.Details != nil {
		t.Errorf("platform detail leaked: %+v", payload.Error)
	}

	plain := errorResult(io.EOF)
	if code := errorCode(t, plain); code != string(errors.ErrInternal) {
		t.Errorf("plain error code = %s, want INTERNAL", code)
	}

	notFound := errorResult(errors.NewNotFound("lawsuit", "L9"))
	if code := errorCode(t, notFound); code != string(errors.ErrNotFound) {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestServerRegistration(t *testing.T) {
	svc, _, cfg := testSetup(t)

	s := NewServer(svc, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{"guild_state", "lawsuit_list", "prison_status"}
	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	svc, _, cfg := testSetup(t)

	cfg.DisabledTools = []string{"prison_status"}
	tools := NewServer(svc, cfg, "test").ListTools()

	if len(tools) != 2 {
		t.Errorf("registered tool count = %d, want 2", len(tools))
	}
	if _, ok := tools["prison_status"]; ok {
		t.Error("disabled tool prison_status should not be registered")
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	sort.Strings(names)
	want := []string{"guild_state", "lawsuit_list", "prison_status"}
	if len(names) != len(want) {
		t.Fatalf("AllToolNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"guild_state", "store", "bogus"})
	if len(unknown) != 2 || unknown[0] != "store" || unknown[1] != "bogus" {
		t.Errorf("ValidateDisabledTools() = %v, want [store bogus]", unknown)
	}
	if got := ValidateDisabledTools(nil); len(got) != 0 {
		t.Errorf("ValidateDisabledTools(nil) = %v, want empty", got)
	}
}
