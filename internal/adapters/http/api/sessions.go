// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/types"
)

// SessionDependencies defines the interface for session lifecycle
// operations.
type SessionDependencies interface {
	StartSession(ctx context.Context, profile model.UserProfile) (string, error)
	RecordFrame(ctx context.Context, sessionID, poseName string, angles model.JointAngles, landmarks map[string][]float64) (types.EvaluationResult, types.SessionStats, error)
	SessionStats(ctx context.Context, sessionID string) (types.SessionStats, error)
	StopSession(ctx context.Context, sessionID string) (types.SessionSummary, error)
}

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// startSessionRequest mirrors the schema for POST /sessions. The body
// is optional; an absent profile evaluates as intermediate with no
// conditions.
type startSessionRequest struct {
	Profile *userProfileRequest `json:"user_profile"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
}

// frameRequest mirrors the schema for POST /sessions/frames.
type frameRequest struct {
	SessionID string               `json:"session_id" validate:"required"`
	PoseName  string               `json:"pose_name" validate:"required"`
	Angles    map[string]float64   `json:"angles" validate:"required,dive,gte=0,lte=180"`
	Landmarks map[string][]float64 `json:"landmarks" validate:"omitempty,dive,len=3"`
}

type frameResponse struct {
	Evaluation   types.EvaluationResult `json:"evaluation"`
	SessionStats types.SessionStats     `json:"session_stats"`
}

// stopSessionRequest mirrors the schema for DELETE /sessions.
type stopSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// HandleSessions dispatches POST (create) and DELETE (stop) on
// /sessions.
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleStart(w, r)
	case http.MethodDelete:
		h.handleStop(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_session"
	var req startSessionRequest
	if err := decodeAndValidate(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id, err := h.deps.StartSession(r.Context(), req.Profile.toProfile())
	if err != nil {
		if isUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{SessionID: id})
}

func (h *SessionsHandler) handleStop(w http.ResponseWriter, r *http.Request) {
	const op = "api.stop_session"
	var req stopSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	summary, err := h.deps.StopSession(r.Context(), req.SessionID)
	if err != nil {
		h.writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandlePostFrame handles POST /sessions/frames requests.
func (h *SessionsHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req frameRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, stats, err := h.deps.RecordFrame(r.Context(), req.SessionID, req.PoseName, req.Angles, req.Landmarks)
	if err != nil {
		h.writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse{Evaluation: result, SessionStats: stats})
}

// HandleGetStats handles GET /sessions/stats?session_id= requests.
func (h *SessionsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	stats, err := h.deps.SessionStats(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeSessionError maps upstream session errors onto HTTP statuses.
func (h *SessionsHandler) writeSessionError(w http.ResponseWriter, op string, err error) {
	switch {
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "session_not_found", Wrap(op, err))
	case isUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
