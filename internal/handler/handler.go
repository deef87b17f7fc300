// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/lib/logger/sl"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/service"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/timeline"
	"github.com/go-chi/chi/v5"
)

// Handler holds all HTTP handlers for the booking API.
type Handler struct {
	log          *slog.Logger
	orgs         *service.OrganizationService
	resources    *service.ResourceService
	reservations *service.ReservationService
	style        timeline.Style
}

// New constructs a Handler. SVG schedules use the default style.
func New(
	log *slog.Logger,
	orgs *service.OrganizationService,
	resources *service.ResourceService,
	reservations *service.ReservationService,
) *Handler {
	return &Handler{
		log:          log,
		orgs:         orgs,
		resources:    resources,
		reservations: reservations,
		style:        timeline.DefaultStyle(),
	}
}

// WithStyle replaces the style used for SVG schedules.
func (h *Handler) WithStyle(s timeline.Style) *Handler {
	h.style = s
	return h
}

// Routes registers every API route on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", HealthCheck)

	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", h.ListOrganizations)
		r.Post("/", h.CreateOrganization)
		r.Get("/{id}", h.GetOrganization)
		r.Patch("/{id}", h.UpdateOrganization)
		r.Delete("/{id}", h.DeleteOrganization)
	})

	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.ListResources)
		r.Post("/", h.CreateResource)
		r.Get("/{id}", h.GetResource)
		r.Patch("/{id}", h.UpdateResource)
		r.Delete("/{id}", h.DeleteResource)
		r.Get("/{id}/schedule", h.DaySchedule)
		r.Get("/{id}/schedule.svg", h.DayScheduleSVG)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Get("/", h.ListReservations)
		r.Post("/", h.CreateReservation)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}", h.UpdateReservation)
		r.Delete("/{id}", h.DeleteReservation)
		r.Post("/{id}/cancel", h.CancelReservation)
	})
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(r *http.Request, name string) (int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

// writeServiceError maps service and repository errors onto status codes.
// what names the entity in 404 and 409 messages.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, repository.ErrOverlap):
		writeError(w, http.StatusConflict, "reservation overlaps an existing reservation for this resource")
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, repository.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "referenced organization or resource does not exist")
	default:
		h.log.Error("request failed",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), sl.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
