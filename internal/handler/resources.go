package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/schedule"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/timeline"
)

// ListResources handles GET /resources/[?organization_id=]
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	orgID, err := queryInt(r, "organization_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resources, err := h.resources.List(r.Context(), orgID)
	if err != nil {
		h.writeServiceError(w, r, err, "resource")
		return
	}
	if resources == nil {
		resources = []model.Resource{}
	}
	writeJSON(w, http.StatusOK, resources)
}

// CreateResource handles POST /resources/
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req model.CreateResourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.resources.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetResource handles GET /resources/{id}
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	res, err := h.resources.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateResource handles PATCH /resources/{id}
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	var req model.UpdateResourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.resources.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err, "resource")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteResource handles DELETE /resources/{id}
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	if err := h.resources.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "resource")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// daySchedule resolves the resource and date of a schedule request and
// builds the schedule. It writes the error response itself and returns
// false when the request cannot be served.
func (h *Handler) daySchedule(w http.ResponseWriter, r *http.Request) (schedule.Schedule, bool) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return schedule.Schedule{}, false
	}
	if _, err := h.resources.Get(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "resource")
		return schedule.Schedule{}, false
	}

	loc := h.reservations.Location()
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().In(loc).Format(model.DateLayout)
	}
	if _, err := model.ParseDate(date, loc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return schedule.Schedule{}, false
	}

	s := h.reservations.DaySchedule(r.Context(), id, date)
	if s.Unavailable {
		writeError(w, http.StatusServiceUnavailable, "schedule unavailable")
		return schedule.Schedule{}, false
	}
	return s, true
}

// DaySchedule handles GET /resources/{id}/schedule?date=YYYY-MM-DD
// Returns the day's reservations in start order with their timeline blocks.
func (h *Handler) DaySchedule(w http.ResponseWriter, r *http.Request) {
	s, ok := h.daySchedule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DayScheduleSVG handles GET /resources/{id}/schedule.svg?date=YYYY-MM-DD
func (h *Handler) DayScheduleSVG(w http.ResponseWriter, r *http.Request) {
	s, ok := h.daySchedule(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := timeline.RenderSVG(&buf, s.Timeline, h.style); err != nil {
		h.writeServiceError(w, r, err, "schedule")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
