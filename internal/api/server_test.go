package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitpixi2/lemonomics/internal/auth"
	"github.com/bitpixi2/lemonomics/internal/config"
	"github.com/bitpixi2/lemonomics/internal/cycle"
	"github.com/bitpixi2/lemonomics/internal/profile"
	"github.com/bitpixi2/lemonomics/internal/receipt"
	"github.com/bitpixi2/lemonomics/internal/sim"
)

type stubTokens struct {
	users map[string]auth.User
}

func (s *stubTokens) VerifyAccessToken(_ context.Context, token string) (auth.User, error) {
	user, ok := s.users[token]
	if !ok {
		return auth.User{}, fmt.Errorf("unknown token")
	}
	return user, nil
}

type stubSessions struct{}

func (stubSessions) SignUp(_ context.Context, email, _ string) (auth.Session, error) {
	return auth.Session{AccessToken: "tok-" + email, User: auth.User{ID: "id-" + email, Email: email}}, nil
}

func (stubSessions) Login(_ context.Context, email, _ string) (auth.Session, error) {
	return auth.Session{AccessToken: "tok-" + email, User: auth.User{ID: "id-" + email, Email: email}}, nil
}

func newTestServer(t *testing.T) (*Server, *profile.Memory) {
	t.Helper()
	cfg := sim.DefaultConfig()
	engine, err := sim.NewEngine(cfg, receipt.NewStatic(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	validator, err := sim.NewValidator(engine)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	now := func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	store := profile.NewMemory()
	tokens := &stubTokens{users: map[string]auth.User{
		"good-token": {ID: "user-1", Email: "lemon@example.com"},
	}}
	srv := New(config.APIConfig{Addr: ":0"}, slog.New(slog.NewTextHandler(io.Discard, nil)), tokens, stubSessions{}, engine, validator, cycle.NewService(cfg, now), store)
	return srv, store
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/v1/profile", "/v1/cycles/today", "/v1/leaderboard"} {
		rec := doJSON(t, srv.Handler(), http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: status = %d, want 401", path, rec.Code)
		}
	}
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/profile", "bogus", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestPlayRunPersistsProgress(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs", "good-token", map[string]any{
		"price":    1.50,
		"ad_spend": 10.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("play status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out struct {
		RunID    string         `json:"run_id"`
		Result   sim.GameResult `json:"result"`
		Progress sim.Progress   `json:"progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if out.Result.Seed == "" || out.Result.CupsSold < 0 {
		t.Fatalf("implausible result: %+v", out.Result)
	}
	if out.Progress.TotalRuns != 1 {
		t.Fatalf("TotalRuns = %d, want 1", out.Progress.TotalRuns)
	}

	prof, err := store.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if prof.Progress.TotalRuns != 1 {
		t.Fatalf("stored TotalRuns = %d, want 1", prof.Progress.TotalRuns)
	}
}

func TestPlayRunRejectsBadPrice(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs", "good-token", map[string]any{
		"price":    9.99,
		"ad_spend": 0.0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCyclesAreStableForTheDay(t *testing.T) {
	srv, _ := newTestServer(t)
	first := doJSON(t, srv.Handler(), http.MethodGet, "/v1/cycles/today", "good-token", nil)
	second := doJSON(t, srv.Handler(), http.MethodGet, "/v1/cycles/today", "good-token", nil)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("cycle status = %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("daily cycle changed between requests")
	}
	week := doJSON(t, srv.Handler(), http.MethodGet, "/v1/cycles/week", "good-token", nil)
	if week.Code != http.StatusOK {
		t.Fatalf("week status = %d", week.Code)
	}
}

func TestValidateEndpointFlagsTamperedProfit(t *testing.T) {
	srv, _ := newTestServer(t)

	play := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs", "good-token", map[string]any{
		"price":    1.50,
		"ad_spend": 10.0,
	})
	if play.Code != http.StatusOK {
		t.Fatalf("play status = %d", play.Code)
	}
	var played struct {
		Result sim.GameResult `json:"result"`
	}
	if err := json.Unmarshal(play.Body.Bytes(), &played); err != nil {
		t.Fatalf("decode play: %v", err)
	}

	honest := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs/validate", "good-token", map[string]any{
		"price":    1.50,
		"ad_spend": 10.0,
		"result":   played.Result,
	})
	if honest.Code != http.StatusOK {
		t.Fatalf("validate status = %d, body = %s", honest.Code, honest.Body.String())
	}
	var honestReport sim.ValidationReport
	if err := json.Unmarshal(honest.Body.Bytes(), &honestReport); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !honestReport.OverallValid {
		t.Fatalf("honest replay flagged invalid: %+v", honestReport)
	}

	tampered := played.Result
	tampered.Profit += 500
	bad := doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs/validate", "good-token", map[string]any{
		"price":    1.50,
		"ad_spend": 10.0,
		"result":   tampered,
	})
	var badReport sim.ValidationReport
	if err := json.Unmarshal(bad.Body.Bytes(), &badReport); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if badReport.OverallValid {
		t.Fatalf("tampered profit passed validation")
	}
	if badReport.RiskScore <= honestReport.RiskScore {
		t.Fatalf("risk score %v not above honest %v", badReport.RiskScore, honestReport.RiskScore)
	}
}

func TestLeaderboardPureQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, srv.Handler(), http.MethodPost, "/v1/runs", "good-token", map[string]any{
		"price":    1.25,
		"ad_spend": 5.0,
	})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/leaderboard?pure=1&limit=5", "good-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d", rec.Code)
	}
	var out struct {
		Leaderboard []profile.LeaderboardRow `json:"leaderboard"`
		Pure        bool                     `json:"pure"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if !out.Pure {
		t.Fatalf("pure flag not echoed")
	}
	if len(out.Leaderboard) != 1 || out.Leaderboard[0].UserID != "user-1" {
		t.Fatalf("unexpected leaderboard: %+v", out.Leaderboard)
	}
}

func TestSignupCreatesProfile(t *testing.T) {
	srv, store := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":    "new@example.com",
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if _, err := store.Get(context.Background(), "id-new@example.com"); err != nil {
		t.Fatalf("profile not created on signup: %v", err)
	}
}
