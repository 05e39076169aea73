package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/registry"
)

// Registry is the alarm collection surface the API exposes over HTTP.
type Registry interface {
	List(ctx context.Context) []*alarm.Alarm
	Get(ctx context.Context, id string) (*alarm.Alarm, error)
	Add(ctx context.Context, params registry.AddParams) (*alarm.Alarm, error)
	Update(ctx context.Context, id string, params registry.UpdateParams) (*alarm.Alarm, error)
	Delete(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string, enabled bool) (*alarm.Alarm, error)
	ClearAll(ctx context.Context) error
	Snooze(ctx context.Context, label string, d time.Duration) (*alarm.Alarm, error)
}

// Handler serves the alarm REST API and the server-sent event stream.
type Handler struct {
	registry Registry
	bus      *events.Bus
}

// NewHandler creates an API handler over the given registry and event bus.
func NewHandler(reg Registry, bus *events.Bus) *Handler {
	return &Handler{
		registry: reg,
		bus:      bus,
	}
}

// Register mounts the API routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Delete("/", h.clearAll)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.get)
				r.Patch("/", h.update)
				r.Delete("/", h.remove)
				r.Put("/enabled", h.setEnabled)
			})
		})

		r.Post("/snooze", h.snooze)
		r.Get("/events", h.streamEvents)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResponse{Alarms: h.registry.List(r.Context())})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	found, err := h.registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err)

		return
	}

	writeJSON(w, http.StatusOK, found)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)

		return
	}

	created, err := h.registry.Add(r.Context(), registry.AddParams{
		Label:      req.Label,
		Hour:       req.Hour,
		Minute:     req.Minute,
		Enabled:    req.Enabled,
		Recurrence: req.Recurrence,
	})
	if err != nil {
		writeError(r.Context(), w, err)

		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)

		return
	}

	updated, err := h.registry.Update(r.Context(), chi.URLParam(r, "id"), registry.UpdateParams{
		Label:      req.Label,
		Hour:       req.Hour,
		Minute:     req.Minute,
		Enabled:    req.Enabled,
		Recurrence: req.Recurrence,
	})
	if err != nil {
		writeError(r.Context(), w, err)

		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setEnabled(w http.ResponseWriter, r *http.Request) {
	var req setEnabledRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)

		return
	}

	if req.Enabled == nil {
		writeError(r.Context(), w, &alarm.ValidationError{Field: "enabled", Reason: "is required"})

		return
	}

	updated, err := h.registry.SetEnabled(r.Context(), chi.URLParam(r, "id"), *req.Enabled)
	if err != nil {
		writeError(r.Context(), w, err)

		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.ClearAll(r.Context()); err != nil {
		writeError(r.Context(), w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snooze(w http.ResponseWriter, r *http.Request) {
	var req snoozeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)

		return
	}

	created, err := h.registry.Snooze(r.Context(), req.Label, time.Duration(req.Minutes)*time.Minute)
	if err != nil {
		writeError(r.Context(), w, err)

		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// decodeJSON parses the request body, rejecting unknown fields so typos
// surface as 400s instead of silently ignored settings.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return &alarm.ValidationError{Field: "body", Reason: err.Error()}
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP statuses.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		validationErr  *alarm.ValidationError
		persistenceErr *alarm.PersistenceError
	)

	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		code = "validation"
	case errors.Is(err, alarm.ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
	case errors.As(err, &persistenceErr):
		status = http.StatusServiceUnavailable
		code = "persistence"
	}

	if status == http.StatusInternalServerError {
		logger.ErrorKV(ctx, "Request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
