// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/types"
)

// EvaluateDependencies defines the interface for frame evaluation.
type EvaluateDependencies interface {
	Evaluate(ctx context.Context, poseName string, angles model.JointAngles, landmarks map[string][]float64, profile model.UserProfile) (types.EvaluationResult, error)
}

// EvaluateHandler handles single-frame evaluation requests.
type EvaluateHandler struct {
	deps EvaluateDependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps EvaluateDependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// HandlePostEvaluate handles POST /evaluate requests. Biomechanical
// failure modes (unknown pose, contraindication) are part of the
// structured result and still answer 200.
func (h *EvaluateHandler) HandlePostEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.Evaluate(r.Context(), req.PoseName, req.Angles, req.Landmarks, req.Profile.toProfile())
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
