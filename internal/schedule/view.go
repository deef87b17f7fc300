package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
)

// Backend is everything the view asks of the booking service.
type Backend interface {
	Querier
	ListResources(ctx context.Context, organizationID int64) ([]model.Resource, error)
	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error)
	CancelReservation(ctx context.Context, id int64) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// State is the view's whole mutable state. Callers get copies.
type State struct {
	OrganizationID int64
	Resources      []model.Resource
	ResourceID     int64
	Date           string
	Loading        bool
	Banner         string
	Schedule       Schedule
	Filter         model.ReservationFilter
	Results        []model.Reservation
}

// View drives the booking screens through discrete actions. Every schedule
// refresh and every search is numbered; a response that is not the latest
// one issued is dropped, so a slow answer to an old request never overwrites
// a newer one.
type View struct {
	backend Backend
	facade  *Facade
	confirm Confirmer

	mu        sync.Mutex
	seq       uint64
	searchSeq uint64
	state     State
}

// NewView creates a view showing today's date in loc.
func NewView(backend Backend, confirm Confirmer, loc *time.Location) *View {
	f := NewFacade(backend, loc)
	return &View{
		backend: backend,
		facade:  f,
		confirm: confirm,
		state: State{
			Date: time.Now().In(f.Location()).Format(model.DateLayout),
		},
	}
}

// State returns a snapshot of the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) fail(err error) error {
	v.mu.Lock()
	v.state.Loading = false
	v.state.Banner = err.Error()
	v.mu.Unlock()
	return err
}

// LoadResources fetches the resources of an organization, or all of them
// when organizationID is zero.
func (v *View) LoadResources(ctx context.Context, organizationID int64) error {
	resources, err := v.backend.ListResources(ctx, organizationID)
	if err != nil {
		return v.fail(fmt.Errorf("load resources: %w", err))
	}

	v.mu.Lock()
	v.state.OrganizationID = organizationID
	v.state.Resources = resources
	v.state.Banner = ""
	v.mu.Unlock()
	return nil
}

// SelectResource switches the schedule to another resource.
func (v *View) SelectResource(ctx context.Context, resourceID int64) bool {
	v.mu.Lock()
	v.state.ResourceID = resourceID
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SelectDate switches the schedule to another day.
func (v *View) SelectDate(ctx context.Context, date string) bool {
	v.mu.Lock()
	v.state.Date = date
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Select switches resource and day at once.
func (v *View) Select(ctx context.Context, resourceID int64, date string) bool {
	v.mu.Lock()
	v.state.ResourceID = resourceID
	v.state.Date = date
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Refresh reloads the schedule for the selected resource and date. It
// reports whether the response was applied; false means a newer refresh was
// issued while this one was in flight.
func (v *View) Refresh(ctx context.Context) bool {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	resourceID, date := v.state.ResourceID, v.state.Date
	v.state.Loading = true
	v.mu.Unlock()

	s := v.facade.DaySchedule(ctx, resourceID, date)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return false
	}
	v.state.Loading = false
	v.state.Schedule = s
	v.state.Banner = ""
	if s.Unavailable {
		v.state.Banner = "schedule unavailable: " + s.Err.Error()
	}
	return true
}

// Search runs a filtered reservation listing. The caller always gets its own
// results; the view state only takes them if no newer search was issued.
func (v *View) Search(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	v.mu.Lock()
	v.searchSeq++
	seq := v.searchSeq
	v.state.Filter = f
	v.mu.Unlock()

	results, err := v.backend.ListReservations(ctx, f)
	if err != nil {
		err = fmt.Errorf("search reservations: %w", err)
		if v.latestSearch(seq) {
			return nil, v.fail(err)
		}
		return nil, err
	}
	results = Sort(results, v.facade.Location())

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq == v.searchSeq {
		v.state.Results = results
		v.state.Banner = ""
	}
	return results, nil
}

func (v *View) latestSearch(seq uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return seq == v.searchSeq
}

// Book creates a reservation and refreshes the schedule on success.
func (v *View) Book(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	res, err := v.backend.CreateReservation(ctx, req)
	if err != nil {
		return nil, v.fail(fmt.Errorf("book: %w", err))
	}
	v.Refresh(ctx)
	return res, nil
}

// Cancel marks a reservation cancelled after confirmation. It returns
// false without touching the backend when the user declines.
func (v *View) Cancel(ctx context.Context, id int64) (bool, error) {
	if !v.confirm.Confirm(fmt.Sprintf("Cancel reservation %d?", id)) {
		return false, nil
	}
	if _, err := v.backend.CancelReservation(ctx, id); err != nil {
		return false, v.fail(fmt.Errorf("cancel reservation %d: %w", id, err))
	}
	v.Refresh(ctx)
	return true, nil
}

// Delete removes a reservation after confirmation.
func (v *View) Delete(ctx context.Context, id int64) (bool, error) {
	if !v.confirm.Confirm(fmt.Sprintf("Permanently delete reservation %d?", id)) {
		return false, nil
	}
	if err := v.backend.DeleteReservation(ctx, id); err != nil {
		return false, v.fail(fmt.Errorf("delete reservation %d: %w", id, err))
	}
	v.Refresh(ctx)
	return true, nil
}
