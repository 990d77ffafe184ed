// Package transport wires the nurse roster core to the outside world: one
// HTTP endpoint, CORS, request/response logging, and the external
// hard-request store lookup the core itself never touches.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nurseward/rosterd/internal/roster"
	"github.com/nurseward/rosterd/internal/store"
)

// Handler serves the generate-schedule endpoint.
type Handler struct {
	store       store.HardRequestStore
	log         *zap.Logger
	corsOrigins []string
}

// NewHandler builds a Handler. store may be store.NullStore() when no
// Postgres DSN is configured.
func NewHandler(hardRequestStore store.HardRequestStore, log *zap.Logger, corsOrigins []string) *Handler {
	return &Handler{store: hardRequestStore, log: log, corsOrigins: corsOrigins}
}

// Routes returns a ServeMux with every route this service exposes,
// following the Go 1.22 method-tagged pattern style.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate-schedule", h.generateSchedule)
	return h.withCORS(mux)
}

// withCORS wraps mux with the same origin-allowlist behavior as the
// original's `CORS(app, origins=...)` setup: allowed origins are checked
// against the Origin header, and preflight OPTIONS requests are answered
// without reaching the handler.
func (h *Handler) withCORS(next http.Handler) *http.ServeMux {
	wrapped := http.NewServeMux()
	wrapped.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if h.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
	return wrapped
}

func (h *Handler) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range h.corsOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) generateSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var raw roster.RawRequest
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	in, err := roster.Normalize(raw)
	if err != nil {
		h.log.Warn("request failed normalization", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in.HardRequests = h.fetchHardRequests(ctx, in)

	out, err := roster.Generate(ctx, in)
	if err != nil {
		h.handleGenerateError(w, err)
		return
	}

	h.log.Info("schedule generated",
		zap.String("runID", out.RunID),
		zap.String("status", string(out.SolverStatus)),
		zap.Duration("requestDuration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, out)
}

// fetchHardRequests looks up approved hard requests for every non
// government nurse. A store failure is logged and treated as "no hard
// requests available" rather than surfaced to the client, matching §7's
// soft-degrade policy.
func (h *Handler) fetchHardRequests(ctx context.Context, in roster.Input) []roster.HardRequest {
	var nonGovIDs []string
	for _, n := range in.Nurses {
		if !n.IsGovernmentOfficial {
			nonGovIDs = append(nonGovIDs, n.ID)
		}
	}
	if len(nonGovIDs) == 0 {
		return nil
	}

	requests, err := h.store.ApprovedHardRequests(ctx, in.StartDate, in.EndDate, nonGovIDs)
	if err != nil {
		h.log.Warn("failed to fetch approved hard requests; continuing without them", zap.Error(err))
		return nil
	}
	return requests
}

func (h *Handler) handleGenerateError(w http.ResponseWriter, err error) {
	var rerr *roster.Error
	status := http.StatusInternalServerError
	if errors.As(err, &rerr) && rerr.Kind == roster.InvalidInput {
		status = http.StatusBadRequest
	}
	h.log.Error("schedule generation failed", zap.Error(err))
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
