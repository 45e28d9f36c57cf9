package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bitpixi2/lemonomics/internal/auth"
	"github.com/bitpixi2/lemonomics/internal/config"
	"github.com/bitpixi2/lemonomics/internal/cycle"
	"github.com/bitpixi2/lemonomics/internal/profile"
	"github.com/bitpixi2/lemonomics/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenVerifier resolves a bearer token to the user it belongs to.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, accessToken string) (auth.User, error)
}

// SessionIssuer signs users up and in against the identity service.
type SessionIssuer interface {
	SignUp(ctx context.Context, email, password string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
}

type Server struct {
	cfg       config.APIConfig
	log       *slog.Logger
	tokens    TokenVerifier
	sessions  SessionIssuer
	engine    *sim.Engine
	validator *sim.Validator
	cycles    *cycle.Service
	profiles  profile.Store
	mux       *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, tokens TokenVerifier, sessions SessionIssuer, engine *sim.Engine, validator *sim.Validator, cycles *cycle.Service, profiles profile.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		log:       logger,
		tokens:    tokens,
		sessions:  sessions,
		engine:    engine,
		validator: validator,
		cycles:    cycles,
		profiles:  profiles,
		mux:       chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/runs", s.handleRun)
			r.Post("/runs/validate", s.handleValidate)
			r.Get("/cycles/today", s.handleCycleToday)
			r.Get("/cycles/week", s.handleCycleWeek)
			r.Get("/profile", s.handleProfile)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := s.tokens.VerifyAccessToken(r.Context(), token)
		if err != nil || user.ID == "" {
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.sessions.SignUp(r.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if session.User.ID != "" {
		if err := s.profiles.Ensure(r.Context(), session.User.ID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.sessions.Login(r.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Price           float64  `json:"price"`
		AdSpend         float64  `json:"ad_spend"`
		PowerupReceipts []string `json:"powerup_receipts"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.profiles.Ensure(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	prof, err := s.profiles.Get(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	daily := s.cycles.Today()
	weekly := s.cycles.ThisWeek()
	run := sim.GameRun{
		UserID:          user.ID,
		Price:           in.Price,
		AdSpend:         in.AdSpend,
		PowerupReceipts: in.PowerupReceipts,
	}
	result, err := s.engine.RunGame(r.Context(), run, prof, daily, weekly)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := s.profiles.ApplyResult(r.Context(), user.ID, result, daily.Date, prof.Progress.TotalRuns+1)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	runID := idempotencyKey(r)
	s.log.Info("run persisted",
		"request_id", middleware.GetReqID(r.Context()),
		"run_id", runID,
		"user_id", user.ID,
		"seed", result.Seed,
		"profit", result.Profit,
		"cups", result.CupsSold,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":   runID,
		"result":   result,
		"progress": updated.Progress,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var in struct {
		Price           float64        `json:"price"`
		AdSpend         float64        `json:"ad_spend"`
		PowerupReceipts []string       `json:"powerup_receipts"`
		Result          sim.GameResult `json:"result"`
		Date            string         `json:"date"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prof, err := s.profiles.Get(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// A result submitted right after playing has already been persisted:
	// rewind the run count so the recomputation hits the same seed.
	if in.Result.Seed != "" && prof.Progress.TotalRuns > 0 &&
		in.Result.Seed == sim.GenerateSeed(user.ID, prof.Progress.TotalRuns) {
		prof.Progress.TotalRuns--
	}

	daily := s.cycles.Today()
	weekly := s.cycles.ThisWeek()
	if in.Date != "" && in.Date != daily.Date {
		daily = s.cycles.ForDate(in.Date)
		if t, perr := time.Parse("2006-01-02", in.Date); perr == nil {
			year, week := sim.ISOWeekOf(t)
			weekly = s.cycles.ForWeek(year, week)
		}
	}

	run := sim.GameRun{
		UserID:          user.ID,
		Price:           in.Price,
		AdSpend:         in.AdSpend,
		PowerupReceipts: in.PowerupReceipts,
	}
	report, err := s.validator.ValidateRun(r.Context(), run, prof, daily, weekly, in.Result)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !report.OverallValid {
		s.log.Warn("suspicious run submission",
			"user_id", user.ID,
			"risk_score", report.RiskScore,
			"patterns", report.SuspiciousPatterns,
		)
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCycleToday(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cycles.Today())
}

func (s *Server) handleCycleWeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cycles.ThisWeek())
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err := s.profiles.Ensure(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	prof, err := s.profiles.Get(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	pure := r.URL.Query().Get("pure") == "1"
	rows, err := s.profiles.Leaderboard(r.Context(), limit, pure)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows, "pure": pure})
}

func userFromContext(ctx context.Context) (auth.User, error) {
	user, ok := ctx.Value(userContextKey).(auth.User)
	if !ok || user.ID == "" {
		return auth.User{}, fmt.Errorf("no authenticated user in context")
	}
	return user, nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func idempotencyKey(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("Idempotency-Key")); v != "" {
		return v
	}
	return uuid.NewString()
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sim.ErrPriceOutOfRange),
		errors.Is(err, sim.ErrAdSpendOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sim.ErrUnknownPowerupSKU):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, profile.ErrRunConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
