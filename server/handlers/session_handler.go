package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"discover-server/coordinator"
	"discover-server/models"
	services "discover-server/service"
	"discover-server/util"
)

const (
	SINCE_QUERY_ARG = "since"
	WAIT_QUERY_ARG  = "wait"
	SESSION_ID_VAR  = "id"
)

// SessionManager is the part of the session service the handler uses.
type SessionManager interface {
	Create(ctx context.Context, o services.SessionOptions) (*coordinator.Coordinator, error)
	Get(id string) (*coordinator.Coordinator, error)
	Close(id string) error
}

// FilterPatch is a partial filter edit; absent fields are left alone.
type FilterPatch struct {
	SearchText  *string  `json:"search_text"`
	Amenity     *string  `json:"amenity"`
	MinRating   *float64 `json:"min_rating"`
	PopularOnly *bool    `json:"popular_only"`
	OpenNowOnly *bool    `json:"open_now_only"`
}

type SessionHandler struct {
	sessions    SessionManager
	status      StatusEvaluator
	maxWait     time.Duration
	defaultWait time.Duration
}

func NewSessionHandler(sessions SessionManager, status StatusEvaluator, maxWait time.Duration) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		status:      status,
		maxWait:     maxWait,
		defaultWait: maxWait,
	}
}

// CreateSession handles POST /v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var opts services.SessionOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.sessions.Create(r.Context(), opts)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, newSessionResponse(c.Snapshot(), h.status))
}

// GetSession handles GET /v1/sessions/{id}. With ?since=V it waits until a
// snapshot newer than V is published or the wait elapses.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	vals := r.URL.Query()
	if vals.Get(SINCE_QUERY_ARG) == "" {
		writeSuccess(w, http.StatusOK, newSessionResponse(c.Snapshot(), h.status))
		return
	}

	since, err := strconv.ParseUint(vals.Get(SINCE_QUERY_ARG), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument "+SINCE_QUERY_ARG)
		return
	}
	wait, err := h.parseWait(vals.Get(WAIT_QUERY_ARG))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument "+WAIT_QUERY_ARG)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()
	snap, err := c.Wait(ctx, since)
	switch {
	case errors.Is(err, coordinator.ErrClosed):
		writeError(w, http.StatusGone, "Session closed")
		return
	case err != nil && r.Context().Err() != nil:
		return
	}
	// A timed-out wait still answers with the current snapshot.
	writeSuccess(w, http.StatusOK, newSessionResponse(snap, h.status))
}

// UpdateFilters handles PATCH /v1/sessions/{id}/filters
func (h *SessionHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var patch FilterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := applyPatch(c, patch); err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeSuccess(w, http.StatusAccepted, newSessionResponse(c.Snapshot(), h.status))
}

// applyPatch validates the whole patch before applying any of it.
func applyPatch(c *coordinator.Coordinator, p FilterPatch) error {
	var amenity models.Amenity
	if p.Amenity != nil {
		a, err := models.ParseAmenity(*p.Amenity)
		if err != nil {
			return err
		}
		amenity = a
	}
	if p.MinRating != nil {
		if err := models.ValidateMinRating(*p.MinRating); err != nil {
			return err
		}
	}

	var edits []func() error
	if p.SearchText != nil {
		edits = append(edits, func() error { return c.SetSearchText(*p.SearchText) })
	}
	if p.Amenity != nil {
		edits = append(edits, func() error { return c.SetAmenity(amenity) })
	}
	if p.MinRating != nil {
		edits = append(edits, func() error { return c.SetMinRating(*p.MinRating) })
	}
	if p.PopularOnly != nil {
		edits = append(edits, func() error { return c.SetPopularOnly(*p.PopularOnly) })
	}
	if p.OpenNowOnly != nil {
		edits = append(edits, func() error { return c.SetOpenNowOnly(*p.OpenNowOnly) })
	}
	for _, edit := range edits {
		if err := edit(); err != nil {
			return err
		}
	}
	return nil
}

// RetrySession handles POST /v1/sessions/{id}/retry
func (h *SessionHandler) RetrySession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := c.Retry(); err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeSuccess(w, http.StatusAccepted, newSessionResponse(c.Snapshot(), h.status))
}

// DeleteSession handles DELETE /v1/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(mux.Vars(r)[SESSION_ID_VAR]); err != nil {
		h.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSessionChart handles GET /v1/sessions/{id}/chart
func (h *SessionHandler) GetSessionChart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap := c.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Session %s (v%d)", snap.SessionID, snap.Version)
	if err := util.RenderViewChart(w, title, snap.View); err != nil {
		log.Println("Error rendering chart:", err)
	}
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*coordinator.Coordinator, bool) {
	c, err := h.sessions.Get(mux.Vars(r)[SESSION_ID_VAR])
	if err != nil {
		h.writeSessionError(w, err)
		return nil, false
	}
	return c, true
}

func (h *SessionHandler) parseWait(s string) (time.Duration, error) {
	if s == "" {
		return h.defaultWait, nil
	}
	wait, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, err
		}
		wait = time.Duration(secs) * time.Second
	}
	if wait < 0 {
		return 0, fmt.Errorf("negative wait %s", s)
	}
	if wait > h.maxWait {
		wait = h.maxWait
	}
	return wait, nil
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, coordinator.ErrClosed):
		writeError(w, http.StatusGone, "Session closed")
	case errors.Is(err, services.ErrInvalidSession),
		errors.Is(err, models.ErrInvalidAmenity),
		errors.Is(err, models.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("Error handling session request:", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
