// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/asanakit/surya/internal/domain/correction"
)

// CorrectionsDependencies defines the interface for phrase lookup.
type CorrectionsDependencies interface {
	Corrections(ctx context.Context, poseName string, issues []string) (correction.Result, error)
}

// CorrectionsHandler resolves issue codes to correction phrases
// without re-running an evaluation.
type CorrectionsHandler struct {
	deps CorrectionsDependencies
}

// NewCorrectionsHandler creates a new corrections handler.
func NewCorrectionsHandler(deps CorrectionsDependencies) *CorrectionsHandler {
	return &CorrectionsHandler{deps: deps}
}

// correctionsRequest mirrors the schema for POST /corrections.
type correctionsRequest struct {
	PoseName string   `json:"pose_name" validate:"required"`
	Issues   []string `json:"issues" validate:"omitempty,dive,min=1"`
}

// HandlePostCorrections handles POST /corrections requests.
func (h *CorrectionsHandler) HandlePostCorrections(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_corrections"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req correctionsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.Corrections(r.Context(), req.PoseName, req.Issues)
	if err != nil {
		if isUnavailable(err) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
