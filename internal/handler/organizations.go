package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

// ListOrganizations handles GET /organizations/
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgs.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "organization")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if orgs == nil {
		orgs = []model.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

// CreateOrganization handles POST /organizations/
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	org, err := h.orgs.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "organization")
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// GetOrganization handles GET /organizations/{id}
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	org, err := h.orgs.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "organization")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// UpdateOrganization handles PATCH /organizations/{id}
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	var req model.UpdateOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	org, err := h.orgs.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err, "organization")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// DeleteOrganization handles DELETE /organizations/{id}
// Resources and reservations of the organization go with it.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}

	if err := h.orgs.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "organization")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
