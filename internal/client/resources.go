package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

func (c *Client) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var out []model.Organization
	if err := c.get(ctx, c.buildURL(nil, "organizations/"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrganization(ctx context.Context, name string) (*model.Organization, error) {
	var out model.Organization
	err := c.send(ctx, http.MethodPost, c.buildURL(nil, "organizations/"),
		model.CreateOrganizationRequest{Name: name}, []int{http.StatusOK, http.StatusCreated}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrganization(ctx context.Context, orgID int64) error {
	return c.send(ctx, http.MethodDelete, c.buildURL(nil, "organizations", id(orgID)), nil,
		[]int{http.StatusOK, http.StatusNoContent}, nil)
}

// ListResources lists resources, optionally of one organization.
func (c *Client) ListResources(ctx context.Context, organizationID int64) ([]model.Resource, error) {
	q := url.Values{}
	if organizationID != 0 {
		q.Set("organization_id", id(organizationID))
	}
	var out []model.Resource
	if err := c.get(ctx, c.buildURL(q, "resources/"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateResource(ctx context.Context, req model.CreateResourceRequest) (*model.Resource, error) {
	var out model.Resource
	err := c.send(ctx, http.MethodPost, c.buildURL(nil, "resources/"), req,
		[]int{http.StatusOK, http.StatusCreated}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResource(ctx context.Context, resourceID int64) error {
	return c.send(ctx, http.MethodDelete, c.buildURL(nil, "resources", id(resourceID)), nil,
		[]int{http.StatusOK, http.StatusNoContent}, nil)
}

// ListReservations lists reservations matching f. An entry whose timestamps
// cannot be read is kept with zero times so a single bad row does not hide
// the rest of the day.
func (c *Client) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	q := url.Values{}
	if f.ResourceID != 0 {
		q.Set("resource_id", id(f.ResourceID))
	}
	if f.UserID != 0 {
		q.Set("user_id", id(f.UserID))
	}
	if f.GuestLastName != "" {
		q.Set("guest_last_name", f.GuestLastName)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if !f.Start.IsZero() {
		q.Set("start", f.Start.In(c.loc).Format(model.LocalLayout))
	}
	if !f.End.IsZero() {
		q.Set("end", f.End.In(c.loc).Format(model.LocalLayout))
	}

	var raw []json.RawMessage
	if err := c.get(ctx, c.buildURL(q, "reservations/"), &raw); err != nil {
		return nil, err
	}

	out := make([]model.Reservation, 0, len(raw))
	for _, item := range raw {
		r, err := decodeReservation(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r.InZone(c.loc))
	}
	return out, nil
}

// wireReservation shadows the timestamps so they decode separately.
type wireReservation struct {
	model.Reservation
	StartTime json.RawMessage `json:"start_time"`
	EndTime   json.RawMessage `json:"end_time"`
}

func decodeReservation(b []byte) (model.Reservation, error) {
	var w wireReservation
	if err := json.Unmarshal(b, &w); err != nil {
		return model.Reservation{}, err
	}
	r := w.Reservation
	r.StartTime = lenientTime(w.StartTime)
	r.EndTime = lenientTime(w.EndTime)
	return r, nil
}

func lenientTime(b json.RawMessage) model.LocalTime {
	var t model.LocalTime
	if len(b) == 0 || json.Unmarshal(b, &t) != nil {
		return model.LocalTime{}
	}
	return t
}

func (c *Client) GetReservation(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.get(ctx, c.buildURL(nil, "reservations", id(reservationID)), &out); err != nil {
		return nil, err
	}
	out = out.InZone(c.loc)
	return &out, nil
}

func (c *Client) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	var out model.Reservation
	err := c.send(ctx, http.MethodPost, c.buildURL(nil, "reservations/"), req,
		[]int{http.StatusOK, http.StatusCreated}, &out)
	if err != nil {
		return nil, err
	}
	out = out.InZone(c.loc)
	return &out, nil
}

func (c *Client) UpdateReservation(ctx context.Context, reservationID int64, req model.UpdateReservationRequest) (*model.Reservation, error) {
	var out model.Reservation
	err := c.send(ctx, http.MethodPatch, c.buildURL(nil, "reservations", id(reservationID)), req,
		[]int{http.StatusOK}, &out)
	if err != nil {
		return nil, err
	}
	out = out.InZone(c.loc)
	return &out, nil
}

// CancelReservation marks a reservation cancelled; it stays listable.
func (c *Client) CancelReservation(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	var out model.Reservation
	err := c.send(ctx, http.MethodPost, c.buildURL(nil, "reservations", id(reservationID), "cancel"), nil,
		[]int{http.StatusOK}, &out)
	if err != nil {
		return nil, err
	}
	out = out.InZone(c.loc)
	return &out, nil
}

// DeleteReservation removes a reservation permanently.
func (c *Client) DeleteReservation(ctx context.Context, reservationID int64) error {
	return c.send(ctx, http.MethodDelete, c.buildURL(nil, "reservations", id(reservationID)), nil,
		[]int{http.StatusOK, http.StatusNoContent}, nil)
}
