package web

import (
	"net/http"
	"strconv"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
	"github.com/hpungsan/courtbot/internal/ops"
)

// Handlers contains HTTP route handlers for the dashboard.
type Handlers struct {
	svc      *ops.Service
	renderer *Renderer
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.renderer.version})
}

// HandleGuild handles GET /guilds/{guild}: settings, court rooms and lawsuits.
func (h *Handlers) HandleGuild(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathID(r, "guild")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	state, err := h.svc.State(r.Context(), guildID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, state)
		return
	}

	openOnly := parseBoolParam(r, "open")
	lawsuits := state.Lawsuits
	if openOnly {
		lawsuits, err = h.svc.ListLawsuits(r.Context(), ops.ListLawsuitsInput{GuildID: guildID, OpenOnly: true})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	}

	h.renderer.renderPage(w, http.StatusOK, "guild", GuildPageData{
		PageData: PageData{Title: "Guild " + guildID.String(), Version: h.renderer.version},
		State:    state,
		Lawsuits: lawsuitViews(lawsuits),
		OpenOnly: openOnly,
	})
}

// HandleLawsuits handles GET /guilds/{guild}/lawsuits as JSON.
func (h *Handlers) HandleLawsuits(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathID(r, "guild")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	lawsuits, err := h.svc.ListLawsuits(r.Context(), ops.ListLawsuitsInput{
		GuildID:  guildID,
		OpenOnly: parseBoolParam(r, "open"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"lawsuits": lawsuits, "count": len(lawsuits)})
}

// HandlePrisonStatus handles GET /guilds/{guild}/prison/{user} as JSON.
func (h *Handlers) HandlePrisonStatus(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathID(r, "guild")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	userID, err := pathID(r, "user")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	imprisoned, err := h.svc.IsImprisoned(r.Context(), guildID, userID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"guild_id":   guildID,
		"user_id":    userID,
		"imprisoned": imprisoned,
	})
}

func pathID(r *http.Request, name string) (court.Snowflake, error) {
	id, err := court.ParseSnowflake(r.PathValue(name))
	if err != nil {
		return 0, errors.NewInvalidRequest(name + ": " + err.Error())
	}
	return id, nil
}

// parseBoolParam parses a query parameter as a boolean. Returns false if missing or invalid.
func parseBoolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
