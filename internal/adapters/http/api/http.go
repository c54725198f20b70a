// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/asanakit/surya/internal/domain/correction"
	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluate scores a single frame outside any session.
	Evaluate(ctx context.Context, poseName string, angles model.JointAngles, landmarks map[string][]float64, profile model.UserProfile) (types.EvaluationResult, error)

	// Corrections resolves issue codes against the pose's phrase library.
	Corrections(ctx context.Context, poseName string, issues []string) (correction.Result, error)

	// Session lifecycle operations.
	StartSession(ctx context.Context, profile model.UserProfile) (string, error)
	RecordFrame(ctx context.Context, sessionID, poseName string, angles model.JointAngles, landmarks map[string][]float64) (types.EvaluationResult, types.SessionStats, error)
	SessionStats(ctx context.Context, sessionID string) (types.SessionStats, error)
	StopSession(ctx context.Context, sessionID string) (types.SessionSummary, error)

	// History lists completed session summaries.
	History(ctx context.Context, n int, order string) ([]types.SessionSummary, error)
}

// validate is the shared request validator.
var validate = validator.New() //nolint:gochecknoglobals // validator instances are designed to be shared

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluateHandler    *EvaluateHandler
	correctionsHandler *CorrectionsHandler
	sessionsHandler    *SessionsHandler
	historyHandler     *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxHistoryLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		evaluateHandler:    NewEvaluateHandler(deps),
		correctionsHandler: NewCorrectionsHandler(deps),
		sessionsHandler:    NewSessionsHandler(deps),
		historyHandler:     NewHistoryHandler(deps, maxHistoryLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluate", MetricsMiddleware(s.evaluateHandler.HandlePostEvaluate, "evaluate"))
	mux.HandleFunc("/corrections", MetricsMiddleware(s.correctionsHandler.HandlePostCorrections, "corrections"))
	mux.HandleFunc("/sessions/frames", MetricsMiddleware(s.sessionsHandler.HandlePostFrame, "sessions_frames"))
	mux.HandleFunc("/sessions/stats", MetricsMiddleware(s.sessionsHandler.HandleGetStats, "sessions_stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
}

// userProfileRequest mirrors the user_profile schema shared by
// evaluate and session bodies.
type userProfileRequest struct {
	Level      string   `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Conditions []string `json:"conditions" validate:"omitempty,dive,min=1"`
	Age        int      `json:"age" validate:"omitempty,gte=10,lte=100"`
}

// toProfile converts a request profile, nil-safe, into the normalized
// domain profile.
func (p *userProfileRequest) toProfile() model.UserProfile {
	if p == nil {
		return model.NewUserProfile("", nil, 0)
	}
	return model.NewUserProfile(p.Level, p.Conditions, p.Age)
}

// evaluateRequest mirrors the schema for POST /evaluate.
type evaluateRequest struct {
	PoseName  string               `json:"pose_name" validate:"required"`
	Angles    map[string]float64   `json:"angles" validate:"required,dive,gte=0,lte=180"`
	Landmarks map[string][]float64 `json:"landmarks" validate:"omitempty,dive,len=3"`
	Profile   *userProfileRequest  `json:"user_profile"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeAndValidate decodes a JSON body into v and runs struct
// validation. The two failure modes share one 400 mapping at call
// sites.
func decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
