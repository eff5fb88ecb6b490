// Package ops exposes a small operational HTTP surface next to the bot:
// liveness, prometheus metrics, and read-only inspection of the cooldown and
// quota state.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeetlabs/jeetbot/internal/service"
)

type Server struct {
	addr      string
	username  string
	password  string
	log       *slog.Logger
	cooldowns *service.CooldownTracker
	quotas    *service.QuotaTable
	router    *chi.Mux
}

func NewServer(addr, username, password string, log *slog.Logger, cooldowns *service.CooldownTracker, quotas *service.QuotaTable) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:      addr,
		username:  username,
		password:  password,
		log:       log,
		cooldowns: cooldowns,
		quotas:    quotas,
		router:    r,
	}
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Group(func(protected chi.Router) {
		protected.Use(s.basicAuthMiddleware())
		protected.Get("/cooldowns/{userID}", s.handleCooldowns)
		protected.Get("/quotas", s.handleQuotas)
	})
	return s
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("ops shutdown error", "err", err)
		}
	}()

	s.log.Info("ops server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops listen: %w", err)
	}
	return nil
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCooldowns(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "user id required", http.StatusBadRequest)
		return
	}

	rows := s.cooldowns.Status(userID)
	type row struct {
		Command   string `json:"command"`
		Ready     bool   `json:"ready"`
		Remaining string `json:"remaining"`
	}
	out := make([]row, 0, len(rows))
	for _, c := range rows {
		out = append(out, row{
			Command:   c.Command,
			Ready:     c.Ready,
			Remaining: service.FormatDuration(c.Remaining),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"user":      userID,
		"cooldowns": out,
	})
}

func (s *Server) handleQuotas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.quotas.Rows())
}

func (s *Server) basicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.username || pass != s.password {
				w.Header().Set("WWW-Authenticate", `Basic realm="jeetbot"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
