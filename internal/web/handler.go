package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wasteday/wasteday/internal/command"
	"github.com/wasteday/wasteday/internal/database"
	"github.com/wasteday/wasteday/internal/models"
)

type Handler struct {
	surface *command.Surface
	logger  zerolog.Logger
}

func NewHandler(surface *command.Surface, logger zerolog.Logger) *Handler {
	return &Handler{
		surface: surface,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestIDMiddleware)
	r.Use(h.loggingMiddleware)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/foreground", h.handleForeground)
		r.Get("/idle", h.handleIdle)
		r.Get("/launch", h.handleLaunch)
		r.Get("/report", h.handleReport)

		r.Get("/settings", h.handleSettingsList)
		r.Get("/settings/{key}", h.handleSettingGet)
		r.Put("/settings/{key}", h.handleSettingPut)

		r.Get("/sessions", h.handleSessionsQuery)
		r.Put("/sessions", h.handleSessionUpsert)
		r.Delete("/sessions/{id}", h.handleSessionDelete)

		r.Get("/rules", h.handleRulesList)
		r.Put("/rules", h.handleRuleUpsert)
		r.Delete("/rules/{id}", h.handleRuleDelete)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleForeground(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.surface.SampleForeground())
}

func (h *Handler) handleIdle(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]uint64{"idle_seconds": h.surface.IdleSeconds()})
}

func (h *Handler) handleLaunch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.surface.Launch())
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.surface.Report(periodType)
	if err != nil {
		if !validPeriod(periodType) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleSettingsList(w http.ResponseWriter, r *http.Request) {
	settings, err := h.surface.ListSettings()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleSettingGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, found, err := h.surface.GetSetting(key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "setting not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

type settingRequest struct {
	Value *string `json:"value"`
}

func (h *Handler) handleSettingPut(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeJSON(r, &req); err != nil || req.Value == nil {
		respondError(w, http.StatusBadRequest, "body must be {\"value\": string}")
		return
	}

	if err := h.surface.SetSetting(chi.URLParam(r, "key"), *req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSessionsQuery(w http.ResponseWriter, r *http.Request) {
	since, err := parseTimeParam(r, "since")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	until, err := parseTimeParam(r, "until")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessions, err := h.surface.QuerySessions(since, until)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleSessionUpsert(w http.ResponseWriter, r *http.Request) {
	var session models.Session
	if err := decodeJSON(r, &session); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.surface.UpsertSession(session); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.surface.DeleteSession(chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRulesList(w http.ResponseWriter, r *http.Request) {
	rules, err := h.surface.ListClassificationRules()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

func (h *Handler) handleRuleUpsert(w http.ResponseWriter, r *http.Request) {
	var rule models.ClassificationRule
	if err := decodeJSON(r, &rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.surface.UpsertClassificationRule(rule); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRuleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "rule id must be an integer")
		return
	}

	if err := h.surface.DeleteClassificationRule(id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a store error to a status: invalid input is 400, a busy store
// is 503, anything else is 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrInvalid):
		status = http.StatusBadRequest
	case database.KindOf(err) == database.LockUnavailable:
		status = http.StatusServiceUnavailable
	}

	event := h.logger.Error()
	if status < http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		event = h.logger.Warn()
	}
	event.Err(err).
		Str("request_id", requestID(r)).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	respondError(w, status, err.Error())
}

func (h *Handler) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug().
			Str("request_id", requestID(r)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func requestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, errors.New(name + " must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func validPeriod(periodType string) bool {
	switch periodType {
	case "day", "today", "week", "month":
		return true
	}
	return false
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
