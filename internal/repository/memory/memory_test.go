package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository"
)

var base = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

func booking(resourceID int64, fromHour, toHour int, lastName string) model.Reservation {
	return model.Reservation{
		ResourceID:    resourceID,
		StartTime:     model.NewLocalTime(base.Add(time.Duration(fromHour) * time.Hour)),
		EndTime:       model.NewLocalTime(base.Add(time.Duration(toHour) * time.Hour)),
		Status:        model.StatusConfirmed,
		GuestLastName: lastName,
	}
}

func seed(t *testing.T) (*Store, *model.Organization, *model.Resource) {
	t.Helper()
	ctx := context.Background()
	s := New()

	org, err := s.CreateOrganization(ctx, gofakeit.Company())
	require.NoError(t, err)
	res, err := s.CreateResource(ctx, model.CreateResourceRequest{OrganizationID: org.ID, Name: "Table 1"})
	require.NoError(t, err)
	return s, org, res
}

func TestStore_Organizations(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateOrganization(ctx, "Alpha")
	require.NoError(t, err)
	b, err := s.CreateOrganization(ctx, "Beta")
	require.NoError(t, err)
	assert.Less(t, a.ID, b.ID)

	_, err = s.CreateOrganization(ctx, "Alpha")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.RenameOrganization(ctx, b.ID, "Alpha")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	renamed, err := s.RenameOrganization(ctx, b.ID, "Gamma")
	require.NoError(t, err)
	assert.Equal(t, "Gamma", renamed.Name)

	list, err := s.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	_, err = s.GetOrganization(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ResourceNeedsOrganization(t *testing.T) {
	s := New()
	_, err := s.CreateResource(context.Background(), model.CreateResourceRequest{OrganizationID: 5, Name: "Room"})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestStore_DeleteOrganizationCascades(t *testing.T) {
	ctx := context.Background()
	s, org, res := seed(t)

	_, err := s.CreateReservation(ctx, booking(res.ID, 18, 20, "Smith"), true)
	require.NoError(t, err)

	require.NoError(t, s.DeleteOrganization(ctx, org.ID))

	_, err = s.GetResource(ctx, res.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	list, err := s.ListReservations(ctx, model.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_OverlapPolicy(t *testing.T) {
	ctx := context.Background()
	s, _, res := seed(t)

	first, err := s.CreateReservation(ctx, booking(res.ID, 18, 20, "Smith"), true)
	require.NoError(t, err)

	_, err = s.CreateReservation(ctx, booking(res.ID, 19, 21, "Jones"), true)
	assert.ErrorIs(t, err, repository.ErrOverlap)

	_, err = s.CreateReservation(ctx, booking(res.ID, 20, 22, "Jones"), true)
	assert.NoError(t, err, "back-to-back bookings are fine")

	_, err = s.CreateReservation(ctx, booking(res.ID, 19, 21, "Double"), false)
	assert.NoError(t, err, "overlaps are stored when the policy is off")

	_, err = s.SetReservationStatus(ctx, first.ID, model.StatusCancelled)
	require.NoError(t, err)
	other, err := s.CreateResource(ctx, model.CreateResourceRequest{OrganizationID: res.OrganizationID, Name: "Table 2"})
	require.NoError(t, err)
	_, err = s.CreateReservation(ctx, booking(other.ID, 18, 20, "Elsewhere"), true)
	assert.NoError(t, err, "other resources never conflict")
}

func TestStore_CancelledDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	s, _, res := seed(t)

	first, err := s.CreateReservation(ctx, booking(res.ID, 18, 20, "Smith"), true)
	require.NoError(t, err)
	_, err = s.SetReservationStatus(ctx, first.ID, model.StatusCancelled)
	require.NoError(t, err)

	_, err = s.CreateReservation(ctx, booking(res.ID, 18, 20, "Jones"), true)
	assert.NoError(t, err)
}

func TestStore_UpdateIgnoresItself(t *testing.T) {
	ctx := context.Background()
	s, _, res := seed(t)

	r, err := s.CreateReservation(ctx, booking(res.ID, 18, 20, "Smith"), true)
	require.NoError(t, err)

	updated, err := s.UpdateReservation(ctx, r.ID, func(cur *model.Reservation) error {
		cur.EndTime = model.NewLocalTime(base.Add(21 * time.Hour))
		return nil
	}, true)
	require.NoError(t, err)
	assert.Equal(t, base.Add(21*time.Hour), updated.EndTime.Time)
}

func TestStore_UpdatePatchesCurrentRow(t *testing.T) {
	ctx := context.Background()
	s, _, res := seed(t)

	r, err := s.CreateReservation(ctx, booking(res.ID, 18, 20, "Smith"), true)
	require.NoError(t, err)
	_, err = s.SetReservationStatus(ctx, r.ID, model.StatusCancelled)
	require.NoError(t, err)

	// r is now outdated; the patch must see the cancelled row.
	notes := "window seat"
	updated, err := s.UpdateReservation(ctx, r.ID, func(cur *model.Reservation) error {
		assert.Equal(t, model.StatusCancelled, cur.Status)
		cur.Notes = &notes
		cur.ResourceID = 999
		return nil
	}, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)
	assert.Equal(t, "window seat", *updated.Notes)
	assert.Equal(t, res.ID, updated.ResourceID, "resource cannot be changed")

	errRejected := errors.New("rejected")
	_, err = s.UpdateReservation(ctx, r.ID, func(cur *model.Reservation) error {
		cur.GuestLastName = "Jones"
		return errRejected
	}, true)
	assert.ErrorIs(t, err, errRejected)

	stored, err := s.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smith", stored.GuestLastName, "a failed patch changes nothing")

	_, err = s.UpdateReservation(ctx, 12345, func(*model.Reservation) error { return nil }, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s, _, res := seed(t)

	for _, b := range []model.Reservation{
		booking(res.ID, 20, 21, "Smithson"),
		booking(res.ID, 9, 10, "Smith"),
		booking(res.ID, 12, 13, "Jones"),
		booking(res.ID, 30, 31, "Smith"), // next day
	} {
		_, err := s.CreateReservation(ctx, b, true)
		require.NoError(t, err)
	}

	list, err := s.ListReservations(ctx, model.ReservationFilter{GuestLastName: "smith"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, r := range list {
		assert.Contains(t, r.GuestLastName, "Smith")
	}
	assert.True(t, list[0].StartTime.Before(list[1].StartTime.Time), "ordered by start")

	list, err = s.ListReservations(ctx, model.ReservationFilter{
		ResourceID: res.ID,
		Start:      base,
		End:        base.Add(24*time.Hour - time.Second),
	})
	require.NoError(t, err)
	assert.Len(t, list, 3, "the next day is outside the window")

	list, err = s.ListReservations(ctx, model.ReservationFilter{GuestLastName: "Nobody"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_CancelVersusDelete(t *testing.T) {
	ctx := context.Background()
	s, _, res := seed(t)

	a, err := s.CreateReservation(ctx, booking(res.ID, 9, 10, "Smith"), true)
	require.NoError(t, err)
	b, err := s.CreateReservation(ctx, booking(res.ID, 11, 12, "Jones"), true)
	require.NoError(t, err)

	cancelled, err := s.SetReservationStatus(ctx, a.ID, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	require.NoError(t, s.DeleteReservation(ctx, b.ID))
	assert.ErrorIs(t, s.DeleteReservation(ctx, b.ID), repository.ErrNotFound)

	list, err := s.ListReservations(ctx, model.ReservationFilter{ResourceID: res.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, model.StatusCancelled, list[0].Status)
}
