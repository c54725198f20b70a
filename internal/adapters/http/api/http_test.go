package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/asanakit/surya/internal/app"
	"github.com/asanakit/surya/internal/domain/correction"
	"github.com/asanakit/surya/internal/domain/model"
	"github.com/asanakit/surya/internal/domain/types"
)

// Wrapped with extra context so the tests prove status mapping follows
// the sentinel, not the message text.
var (
	errSessionNotFound = fmt.Errorf("lookup session: %w", service.ErrSessionNotFound)
	errNotStarted      = fmt.Errorf("evaluate frame: %w", service.ErrNotStarted)
)

// fakeService implements Dependencies and StatsProvider for handler
// tests.
type fakeService struct {
	evaluateResult types.EvaluationResult
	sessionID      string
	stats          types.SessionStats
	summary        types.SessionSummary
	summaries      []types.SessionSummary
	err            error
}

func (f *fakeService) Evaluate(_ context.Context, poseName string, _ model.JointAngles, _ map[string][]float64, _ model.UserProfile) (types.EvaluationResult, error) {
	if f.err != nil {
		return types.EvaluationResult{}, f.err
	}
	result := f.evaluateResult
	result.PoseName = poseName
	return result, nil
}

func (f *fakeService) Corrections(_ context.Context, poseName string, issues []string) (correction.Result, error) {
	if f.err != nil {
		return correction.Result{}, f.err
	}
	return correction.Result{PoseName: poseName, Issues: issues, Phrases: []string{"phrase"}, Priority: "low"}, nil
}

func (f *fakeService) StartSession(_ context.Context, _ model.UserProfile) (string, error) {
	return f.sessionID, f.err
}

func (f *fakeService) RecordFrame(_ context.Context, _, _ string, _ model.JointAngles, _ map[string][]float64) (types.EvaluationResult, types.SessionStats, error) {
	if f.err != nil {
		return types.EvaluationResult{}, types.SessionStats{}, f.err
	}
	return f.evaluateResult, f.stats, nil
}

func (f *fakeService) SessionStats(_ context.Context, _ string) (types.SessionStats, error) {
	return f.stats, f.err
}

func (f *fakeService) StopSession(_ context.Context, _ string) (types.SessionSummary, error) {
	return f.summary, f.err
}

func (f *fakeService) History(_ context.Context, _ int, _ string) ([]types.SessionSummary, error) {
	return f.summaries, f.err
}

func (f *fakeService) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(f *fakeService) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(f, f, 100).Register(context.Background(), mux)
	return mux
}

func postJSON(mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func validEvaluateBody() map[string]any {
	return map[string]any{
		"pose_name": "parvatasana",
		"angles": map[string]float64{
			"left_knee_angle":  175,
			"right_knee_angle": 176,
		},
		"landmarks": map[string][]float64{
			"left_hip": {0.45, 0.30, 0},
		},
		"user_profile": map[string]any{
			"level":      "beginner",
			"conditions": []string{"back_pain"},
			"age":        30,
		},
	}
}

func TestHandlePostEvaluate(t *testing.T) {
	Convey("Given the evaluate endpoint", t, func() {
		fake := &fakeService{
			evaluateResult: types.EvaluationResult{PoseDetected: true, AlignmentScore: 100},
		}
		mux := newTestMux(fake)

		Convey("When the body is valid", func() {
			rec := postJSON(mux, "/evaluate", validEvaluateBody())

			So(rec.Code, ShouldEqual, http.StatusOK)
			var result types.EvaluationResult
			So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
			So(result.PoseName, ShouldEqual, "parvatasana")
			So(result.AlignmentScore, ShouldEqual, 100.0)
		})

		Convey("When the pose name is missing", func() {
			body := validEvaluateBody()
			delete(body, "pose_name")
			rec := postJSON(mux, "/evaluate", body)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When an angle is out of range", func() {
			body := validEvaluateBody()
			body["angles"] = map[string]float64{"left_knee_angle": 181}
			rec := postJSON(mux, "/evaluate", body)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a landmark has the wrong arity", func() {
			body := validEvaluateBody()
			body["landmarks"] = map[string][]float64{"left_hip": {0.45, 0.30}}
			rec := postJSON(mux, "/evaluate", body)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the profile level is unknown", func() {
			body := validEvaluateBody()
			body["user_profile"] = map[string]any{"level": "expert"}
			rec := postJSON(mux, "/evaluate", body)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewReader([]byte("not-json")))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/evaluate", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the service is not started", func() {
			fake.err = errNotStarted
			rec := postJSON(mux, "/evaluate", validEvaluateBody())

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestHandleSessions(t *testing.T) {
	Convey("Given the sessions endpoints", t, func() {
		fake := &fakeService{
			sessionID: "abc-123",
			stats:     types.SessionStats{SessionID: "abc-123", Frames: 2},
			summary:   types.SessionSummary{SessionID: "abc-123", Frames: 2},
		}
		mux := newTestMux(fake)

		Convey("When creating a session with a profile", func() {
			rec := postJSON(mux, "/sessions", map[string]any{
				"user_profile": map[string]any{"level": "beginner"},
			})

			So(rec.Code, ShouldEqual, http.StatusCreated)
			var resp startSessionResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.SessionID, ShouldEqual, "abc-123")
		})

		Convey("When creating a session with an empty body", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusCreated)
		})

		Convey("When recording a frame", func() {
			body := validEvaluateBody()
			body["session_id"] = "abc-123"
			rec := postJSON(mux, "/sessions/frames", body)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp frameResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.SessionStats.Frames, ShouldEqual, 2)
		})

		Convey("When recording a frame without a session id", func() {
			rec := postJSON(mux, "/sessions/frames", validEvaluateBody())

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the session is unknown", func() {
			fake.err = errSessionNotFound
			body := validEvaluateBody()
			body["session_id"] = "nope"
			rec := postJSON(mux, "/sessions/frames", body)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When fetching session stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/sessions/stats?session_id=abc-123", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats types.SessionStats
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.SessionID, ShouldEqual, "abc-123")
		})

		Convey("When fetching session stats without an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/sessions/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When stopping a session", func() {
			raw, _ := json.Marshal(stopSessionRequest{SessionID: "abc-123"})
			req := httptest.NewRequest(http.MethodDelete, "/sessions", bytes.NewReader(raw))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var summary types.SessionSummary
			So(json.Unmarshal(rec.Body.Bytes(), &summary), ShouldBeNil)
			So(summary.SessionID, ShouldEqual, "abc-123")
		})

		Convey("When stopping an unknown session", func() {
			fake.err = errSessionNotFound
			raw, _ := json.Marshal(stopSessionRequest{SessionID: "nope"})
			req := httptest.NewRequest(http.MethodDelete, "/sessions", bytes.NewReader(raw))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandleGetHistory(t *testing.T) {
	Convey("Given the history endpoint", t, func() {
		fake := &fakeService{
			summaries: []types.SessionSummary{{SessionID: "s1"}, {SessionID: "s2"}},
		}
		mux := newTestMux(fake)

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When requesting recent history", func() {
			rec := get("/history?limit=10&order=recent")

			So(rec.Code, ShouldEqual, http.StatusOK)
			var summaries []types.SessionSummary
			So(json.Unmarshal(rec.Body.Bytes(), &summaries), ShouldBeNil)
			So(summaries, ShouldHaveLength, 2)
		})

		Convey("When the order is omitted", func() {
			So(get("/history?limit=10").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the limit is missing", func() {
			So(get("/history").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			So(get("/history?limit=101").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the order is unknown", func() {
			So(get("/history?limit=10&order=alphabetical").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHandlePostCorrections(t *testing.T) {
	Convey("Given the corrections endpoint", t, func() {
		fake := &fakeService{}
		mux := newTestMux(fake)

		Convey("When the body is valid", func() {
			rec := postJSON(mux, "/corrections", map[string]any{
				"pose_name": "parvatasana",
				"issues":    []string{"knees_bent"},
			})

			So(rec.Code, ShouldEqual, http.StatusOK)
			var result correction.Result
			So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
			So(result.PoseName, ShouldEqual, "parvatasana")
		})

		Convey("When the pose name is missing", func() {
			rec := postJSON(mux, "/corrections", map[string]any{
				"issues": []string{"knees_bent"},
			})

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestHandleStats(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		mux := newTestMux(&fakeService{})

		Convey("When fetching service stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})
	})
}

func TestHandleHealth(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux := newTestMux(&fakeService{})

		Convey("When probing liveness", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
