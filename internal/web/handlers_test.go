package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/db"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/ops"
	"github.com/hpungsan/courtbot/internal/platform/platformtest"
)

const testGuild court.Snowflake = 1

type testEnv struct {
	handler  http.Handler
	database *sql.DB
	store    *db.Store
	svc      *ops.Service
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := db.NewStore(database)
	svc := ops.New(store, platformtest.New(), logger)

	srv, err := NewServer(svc, logger, "test", "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEnv{handler: srv.Handler, database: database, store: store, svc: svc}
}

func (e *testEnv) seedLawsuit(t *testing.T, id, reason string, verdict *string) {
	t.Helper()
	ctx := context.Background()
	room := court.Snowflake(900)
	if _, err := e.store.GetOrCreateState(ctx, testGuild); err != nil {
		t.Fatalf("GetOrCreateState: %v", err)
	}
	err := e.store.AppendLawsuit(ctx, testGuild, court.Lawsuit{
		ID:        id,
		Plaintiff: 11,
		Accused:   12,
		Judge:     13,
		Reason:    reason,
		Verdict:   verdict,
		CourtRoom: room,
	})
	if err != nil {
		t.Fatalf("AppendLawsuit: %v", err)
	}
}

func (e *testEnv) get(t *testing.T, path string, jsonAccept bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if jsonAccept {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := setupTest(t)
	rec := env.get(t, "/healthz", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := setupTest(t)
	rec := env.get(t, "/healthz", false)
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options = %q", rec.Header().Get("X-Frame-Options"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", rec.Header().Get("X-Content-Type-Options"))
	}
}

func TestHandleGuild_HTMLRendersMarkdown(t *testing.T) {
	env := setupTest(t)
	verdict := "guilty, *one week* in prison"
	env.seedLawsuit(t, "L1", "**stole** the last cookie", &verdict)
	env.seedLawsuit(t, "L2", "still open", nil)

	rec := env.get(t, "/guilds/1", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<strong>stole</strong>", "<em>one week</em>", `id="L2"`, "Open"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestHandleGuild_RawHTMLOmitted(t *testing.T) {
	env := setupTest(t)
	env.seedLawsuit(t, "L1", "<script>alert(1)</script>", nil)

	rec := env.get(t, "/guilds/1", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Error("raw HTML from a lawsuit reason reached the page")
	}
}

func TestHandleGuild_OpenOnly(t *testing.T) {
	env := setupTest(t)
	verdict := "acquitted"
	env.seedLawsuit(t, "CLOSED1", "old", &verdict)
	env.seedLawsuit(t, "OPEN1", "new", nil)

	body := env.get(t, "/guilds/1?open=true", false).Body.String()
	if strings.Contains(body, `id="CLOSED1"`) {
		t.Error("closed lawsuit shown with open=true")
	}
	if !strings.Contains(body, `id="OPEN1"`) {
		t.Error("open lawsuit missing")
	}
}

func TestHandleGuild_JSON(t *testing.T) {
	env := setupTest(t)
	env.seedLawsuit(t, "L1", "reason", nil)

	rec := env.get(t, "/guilds/1", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var state court.GuildState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.GuildID != testGuild || len(state.Lawsuits) != 1 {
		t.Errorf("state = %+v", state)
	}
}

func TestHandleGuild_InvalidID(t *testing.T) {
	env := setupTest(t)

	rec := env.get(t, "/guilds/abc", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Error.Code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", payload.Error.Code)
	}

	html := env.get(t, "/guilds/abc", false)
	if html.Code != http.StatusBadRequest || !strings.Contains(html.Body.String(), "INVALID_REQUEST") {
		t.Errorf("error page status = %d", html.Code)
	}
}

func TestHandleLawsuits(t *testing.T) {
	env := setupTest(t)
	verdict := "guilty"
	env.seedLawsuit(t, "L1", "a", &verdict)
	env.seedLawsuit(t, "L2", "b", nil)

	var all struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(env.get(t, "/guilds/1/lawsuits", false).Body.Bytes(), &all); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if all.Count != 2 {
		t.Errorf("count = %d, want 2", all.Count)
	}

	var open struct {
		Lawsuits []court.Lawsuit `json:"lawsuits"`
	}
	if err := json.Unmarshal(env.get(t, "/guilds/1/lawsuits?open=1", false).Body.Bytes(), &open); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(open.Lawsuits) != 1 || open.Lawsuits[0].ID != "L2" {
		t.Errorf("open lawsuits = %+v", open.Lawsuits)
	}
}

func TestHandleGuild_UnknownGuildIsReadOnly(t *testing.T) {
	env := setupTest(t)

	rec := env.get(t, "/guilds/777", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("guild status = %d, want 200", rec.Code)
	}
	var state court.GuildState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.GuildID != 777 || len(state.Lawsuits) != 0 || len(state.CourtRooms) != 0 {
		t.Errorf("state = %+v, want empty guild 777", state)
	}

	html := env.get(t, "/guilds/777?open=true", false)
	if html.Code != http.StatusOK {
		t.Fatalf("guild page status = %d, want 200", html.Code)
	}

	list := env.get(t, "/guilds/778/lawsuits", false)
	if list.Code != http.StatusOK {
		t.Fatalf("lawsuits status = %d, want 200", list.Code)
	}
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Count != 0 {
		t.Errorf("count = %d, want 0", payload.Count)
	}

	var rows int
	if err := env.database.QueryRow(`SELECT COUNT(*) FROM guild_states`).Scan(&rows); err != nil {
		t.Fatalf("count guild_states: %v", err)
	}
	if rows != 0 {
		t.Errorf("guild_states rows = %d after dashboard reads, want 0", rows)
	}
}

func TestHandlePrisonStatus(t *testing.T) {
	env := setupTest(t)
	if err := env.store.UpsertPrisonEntry(context.Background(), testGuild, 42); err != nil {
		t.Fatalf("UpsertPrisonEntry: %v", err)
	}

	for _, tt := range []struct {
		path string
		want bool
	}{
		{"/guilds/1/prison/42", true},
		{"/guilds/1/prison/43", false},
	} {
		rec := env.get(t, tt.path, false)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.path, rec.Code)
		}
		var payload struct {
			Imprisoned bool `json:"imprisoned"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if payload.Imprisoned != tt.want {
			t.Errorf("%s: imprisoned = %v, want %v", tt.path, payload.Imprisoned, tt.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[string]int{
		"INVALID_REQUEST": http.StatusBadRequest,
		"NOT_FOUND":       http.StatusNotFound,
		"CONFLICT":        http.StatusConflict,
		"PLATFORM":        http.StatusBadGateway,
		"INTERNAL":        http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := httpStatus(errors.ErrorCode(code)); got != want {
			t.Errorf("httpStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
