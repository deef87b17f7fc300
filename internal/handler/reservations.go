package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

// reservationFilter reads the list filters from the query string.
// Timestamps are naive and read in the server's zone.
func (h *Handler) reservationFilter(r *http.Request) (model.ReservationFilter, error) {
	var (
		f   model.ReservationFilter
		err error
		q   = r.URL.Query()
		loc = h.reservations.Location()
	)

	if f.ResourceID, err = queryInt(r, "resource_id"); err != nil {
		return f, err
	}
	if f.UserID, err = queryInt(r, "user_id"); err != nil {
		return f, err
	}
	f.GuestLastName = q.Get("guest_last_name")
	if s := q.Get("status"); s != "" {
		st, ok := model.ParseStatus(s)
		if !ok {
			return f, errInvalidQuery("status must be one of pending, confirmed, cancelled")
		}
		f.Status = st
	}
	if s := q.Get("start"); s != "" {
		if f.Start, err = model.ParseTimestamp(s, loc); err != nil {
			return f, errInvalidQuery("start: " + err.Error())
		}
	}
	if s := q.Get("end"); s != "" {
		if f.End, err = model.ParseTimestamp(s, loc); err != nil {
			return f, errInvalidQuery("end: " + err.Error())
		}
	}
	return f, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }

// ListReservations handles GET /reservations/
// Optional filters: resource_id, user_id, guest_last_name (substring,
// case-insensitive), status, start and end (window intersection).
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	f, err := h.reservationFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.reservations.ListReservations(r.Context(), f)
	if err != nil {
		h.writeServiceError(w, r, err, "reservation")
		return
	}
	if list == nil {
		list = []model.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateReservation handles POST /reservations/
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.reservations.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetReservation handles GET /reservations/{id}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}

	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateReservation handles PATCH /reservations/{id}
func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}

	var req model.UpdateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.reservations.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CancelReservation handles POST /reservations/{id}/cancel
// The reservation keeps existing with status cancelled.
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}

	res, err := h.reservations.Cancel(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "reservation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteReservation handles DELETE /reservations/{id}
func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}

	if err := h.reservations.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
