// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/distopia/bootstrap/internal/metrics"
	"github.com/distopia/bootstrap/internal/transport/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Status  StatusSource
	Trigger RunTrigger
	History HistoryLister
	Logger  *slog.Logger

	// RunCtx bounds admin-triggered runs; the request context dies with
	// the response, so re-runs inherit the process lifetime instead.
	RunCtx context.Context

	AdminToken string
	Version    string
	Commit     string
	BuildDate  string
}

type statusResponse struct {
	InProgress bool              `json:"in_progress"`
	LastRun    *domain.RunReport `json:"last_run,omitempty"`
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics.Init()

	runCtx := deps.RunCtx
	if runCtx == nil {
		runCtx = context.Background()
	}

	version := valueOrDefault(deps.Version, "dev")
	commit := valueOrDefault(deps.Commit, "none")
	buildDate := valueOrDefault(deps.BuildDate, "unknown")

	r := chi.NewRouter()
	r.Use(requestIDMiddleware())
	r.Use(requestLoggingMiddleware(logger))

	// ---------------- HEALTH ----------------

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("health check hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Status == nil || !deps.Status.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"ready": "false",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"ready": "true",
		})
	})

	// ---------------- METRICS ----------------

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// ---------------- VERSION ----------------

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    version,
			"commit":     commit,
			"build_date": buildDate,
		})
	})

	// ---------------- STATUS ----------------

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		if deps.Status == nil {
			http.Error(w, "status not available", http.StatusNotFound)
			return
		}

		resp := statusResponse{InProgress: deps.Status.InProgress()}
		if report, ok := deps.Status.LastReport(); ok {
			resp.LastRun = report
		}

		writeJSON(w, http.StatusOK, resp)
	})

	// ---------------- HISTORY ----------------

	if deps.History != nil {
		r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
			limit := 20
			if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 || n > 200 {
					http.Error(w, "invalid limit", http.StatusBadRequest)
					return
				}
				limit = n
			}

			runs, err := deps.History.ListRecentRuns(r.Context(), limit)
			if err != nil {
				logger.Error("list run history failed", "error", err)
				http.Error(w, "failed to list run history", http.StatusInternalServerError)
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"runs": runs,
			})
		})
	}

	// ---------------- RE-RUN (ADMIN) ----------------

	if deps.Trigger != nil {
		r.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminTokenAuth(deps.AdminToken, logger))

			admin.Post("/run", func(w http.ResponseWriter, r *http.Request) {
				if deps.Status != nil && deps.Status.InProgress() {
					http.Error(w, "bootstrap run already in progress", http.StatusConflict)
					return
				}

				go func() {
					if _, err := deps.Trigger.Execute(runCtx); err != nil {
						if errors.Is(err, domain.ErrRunInProgress) {
							logger.Warn("admin-triggered run rejected", "error", err)
							return
						}
						logger.Error("admin-triggered run failed", "error", err)
					}
				}()

				logger.Info("bootstrap run triggered via API")
				writeJSON(w, http.StatusAccepted, map[string]string{
					"status": "accepted",
				})
			})
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func valueOrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
