package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"idlerig/internal/config"
	"idlerig/internal/database"
	"idlerig/internal/models"
	"idlerig/internal/reporter"
	"idlerig/pkg/utils"
)

const (
	defaultTransitionLimit = 100
	maxTransitionLimit     = 1000
)

// Handler serves read-only views of the transition journal
type Handler struct {
	config   *config.Config
	repo     *database.Repository
	reporter *reporter.Reporter
}

func NewHandler(cfg *config.Config, repo *database.Repository) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		reporter: reporter.New(repo),
	}
}

// Routes returns the chi router with all routes mounted
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Get("/transitions", h.handleTransitions)
		r.Get("/report", h.handleReport)
	})

	return r
}

type statusResponse struct {
	State         string             `json:"state"`
	Since         *time.Time         `json:"since,omitempty"`
	SinceHuman    string             `json:"since_human,omitempty"`
	SessionID     string             `json:"session_id,omitempty"`
	LastError     *models.ErrorLog   `json:"last_error,omitempty"`
	Latest        *models.Transition `json:"latest_transition,omitempty"`
	MinerURL      string             `json:"miner_url"`
	IdleThreshold string             `json:"idle_threshold"`
	PollInterval  string             `json:"poll_interval"`
	Source        string             `json:"source"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	latest, err := h.repo.GetLatestTransition()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch latest transition", err)
		return
	}

	lastErr, err := h.repo.GetLatestErrorLog()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch latest error", err)
		return
	}

	status := statusResponse{
		State:         "UNKNOWN",
		MinerURL:      h.config.RPC.URL,
		IdleThreshold: h.config.IdleThreshold().String(),
		PollInterval:  h.config.PollInterval().String(),
		Source:        h.config.Watch.Source,
		LastError:     lastErr,
		Latest:        latest,
	}

	if latest != nil {
		status.State = latest.ToState
		status.Since = &latest.Timestamp
		status.SinceHuman = utils.FormatRoundedUnit(int64(time.Since(latest.Timestamp).Seconds()))
		status.SessionID = latest.SessionID
	}

	respondJSON(w, http.StatusOK, status)
}

func (h *Handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultTransitionLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(l, maxTransitionLimit)
	}

	var (
		transitions []*models.Transition
		err         error
	)

	if periodType := query.Get("period"); periodType != "" {
		period, perr := reporter.GetPeriod(periodType, time.Now())
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		transitions, err = h.repo.GetTransitionsSince(period.Start)
		if len(transitions) > limit {
			transitions = transitions[len(transitions)-limit:]
		}
		// newest first, like the unbounded listing
		slices.Reverse(transitions)
	} else {
		transitions, err = h.repo.GetRecentTransitions(limit)
	}

	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch transitions", err)
		return
	}

	if transitions == nil {
		transitions = []*models.Transition{}
	}
	respondJSON(w, http.StatusOK, transitions)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondError(w http.ResponseWriter, status int, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, msg, status)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding JSON", "error", err)
	}
}
