package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/cache"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/events"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/lib/logger/sl"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/metrics"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/schedule"
)

// ReservationStore persists reservations.
type ReservationStore interface {
	CreateReservation(ctx context.Context, res model.Reservation, rejectOverlaps bool) (*model.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, patch repository.ReservationPatch, rejectOverlaps bool) (*model.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	SetReservationStatus(ctx context.Context, id int64, status model.Status) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// ReservationOptions holds the booking policy.
type ReservationOptions struct {
	// Location gives naive timestamps their meaning.
	Location *time.Location
	// RejectOverlaps refuses bookings that overlap a live reservation.
	RejectOverlaps bool
}

// ReservationService orchestrates reservation operations and day schedules.
type ReservationService struct {
	log       *slog.Logger
	store     ReservationStore
	opts      ReservationOptions
	cache     cache.ScheduleCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	facade    *schedule.Facade
}

// NewReservationService constructs a ReservationService.
func NewReservationService(
	log *slog.Logger,
	store ReservationStore,
	opts ReservationOptions,
	sc cache.ScheduleCache,
	publisher events.Publisher,
	m *metrics.Metrics,
) *ReservationService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	s := &ReservationService{
		log:       log,
		store:     store,
		opts:      opts,
		cache:     sc,
		publisher: publisher,
		metrics:   m,
	}
	s.facade = schedule.NewFacade(&cachedQuerier{svc: s}, opts.Location)
	return s
}

// Location is the zone naive timestamps are read in.
func (s *ReservationService) Location() *time.Location {
	return s.opts.Location
}

// Create validates and books a reservation.
func (s *ReservationService) Create(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	const op = "service.ReservationService.Create"
	log := s.log.With(slog.String("op", op), slog.Int64("resource_id", req.ResourceID))

	if req.ResourceID <= 0 {
		return nil, s.record("create", invalid("resource_id", "is required"))
	}
	res := model.Reservation{
		ResourceID:     req.ResourceID,
		UserID:         req.UserID,
		StartTime:      req.StartTime.In(s.opts.Location),
		EndTime:        req.EndTime.In(s.opts.Location),
		Status:         model.DefaultStatus,
		Notes:          blankToNil(req.Notes),
		GuestLastName:  strings.TrimSpace(req.GuestLastName),
		GuestFirstName: blankToNil(req.GuestFirstName),
		GuestContact:   blankToNil(req.GuestContact),
	}
	if err := validateReservation(res); err != nil {
		return nil, s.record("create", err)
	}

	created, err := s.store.CreateReservation(ctx, res, s.opts.RejectOverlaps)
	if err != nil {
		return nil, s.record("create", fmt.Errorf("%s: %w", op, err))
	}
	s.record("create", nil)

	out := created.InZone(s.opts.Location)
	log.Info("reservation created", slog.Int64("reservation_id", out.ID))
	s.afterWrite(ctx, events.TypeCreated, out.ID, out.ResourceID, &out)
	return &out, nil
}

// Get returns a single reservation by ID.
func (s *ReservationService) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	if id <= 0 {
		return nil, repository.ErrNotFound
	}
	res, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	out := res.InZone(s.opts.Location)
	return &out, nil
}

// ListReservations returns reservations matching f, anchored in the
// configured zone and ordered by start time.
func (s *ReservationService) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	f.GuestLastName = strings.TrimSpace(f.GuestLastName)
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status", "must be one of pending, confirmed, cancelled")
	}

	list, err := s.store.ListReservations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListReservations: %w", err)
	}
	out := make([]model.Reservation, len(list))
	for i, r := range list {
		out[i] = r.InZone(s.opts.Location)
	}
	return out, nil
}

// Update applies a partial update to the stored reservation and re-validates
// the result. The patch runs against the row the store holds locked, so a
// concurrent cancel is never overwritten with an older status.
func (s *ReservationService) Update(ctx context.Context, id int64, req model.UpdateReservationRequest) (*model.Reservation, error) {
	const op = "service.ReservationService.Update"

	if id <= 0 {
		return nil, s.record("update", fmt.Errorf("%s: %w", op, repository.ErrNotFound))
	}
	var status model.Status
	if req.Status != nil {
		st, ok := model.ParseStatus(string(*req.Status))
		if !ok {
			return nil, s.record("update", invalid("status", "must be one of pending, confirmed, cancelled"))
		}
		status = st
	}

	var before model.Status
	updated, err := s.store.UpdateReservation(ctx, id, func(res *model.Reservation) error {
		before = res.Status
		*res = res.InZone(s.opts.Location)
		if req.StartTime != nil {
			res.StartTime = req.StartTime.In(s.opts.Location)
		}
		if req.EndTime != nil {
			res.EndTime = req.EndTime.In(s.opts.Location)
		}
		if status != "" {
			res.Status = status
		}
		if req.Notes != nil {
			res.Notes = blankToNil(req.Notes)
		}
		if req.GuestLastName != nil {
			res.GuestLastName = strings.TrimSpace(*req.GuestLastName)
		}
		if req.GuestFirstName != nil {
			res.GuestFirstName = blankToNil(req.GuestFirstName)
		}
		if req.GuestContact != nil {
			res.GuestContact = blankToNil(req.GuestContact)
		}
		return validateReservation(*res)
	}, s.opts.RejectOverlaps)
	if err != nil {
		return nil, s.record("update", fmt.Errorf("%s: %w", op, err))
	}
	s.record("update", nil)

	out := updated.InZone(s.opts.Location)
	typ := events.TypeUpdated
	if out.Status == model.StatusCancelled && before != model.StatusCancelled {
		typ = events.TypeCancelled
	}
	s.afterWrite(ctx, typ, out.ID, out.ResourceID, &out)
	return &out, nil
}

// Cancel moves a reservation to cancelled. The record stays listable.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (*model.Reservation, error) {
	const op = "service.ReservationService.Cancel"

	res, err := s.store.SetReservationStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return nil, s.record("cancel", fmt.Errorf("%s: %w", op, err))
	}
	s.record("cancel", nil)

	out := res.InZone(s.opts.Location)
	s.log.Info("reservation cancelled", slog.String("op", op), slog.Int64("reservation_id", id))
	s.afterWrite(ctx, events.TypeCancelled, out.ID, out.ResourceID, &out)
	return &out, nil
}

// Delete permanently removes a reservation.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	const op = "service.ReservationService.Delete"

	res, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return s.record("delete", fmt.Errorf("%s: %w", op, err))
	}
	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return s.record("delete", fmt.Errorf("%s: %w", op, err))
	}
	s.record("delete", nil)

	s.log.Info("reservation deleted", slog.String("op", op), slog.Int64("reservation_id", id))
	s.afterWrite(ctx, events.TypeDeleted, id, res.ResourceID, nil)
	return nil
}

// DaySchedule returns the laid-out day of one resource.
func (s *ReservationService) DaySchedule(ctx context.Context, resourceID int64, date string) schedule.Schedule {
	sch := s.facade.DaySchedule(ctx, resourceID, date)
	if sch.Unavailable {
		s.log.Warn("day schedule unavailable",
			slog.Int64("resource_id", resourceID), slog.String("date", date), sl.Err(sch.Err))
	}
	return sch
}

func validateReservation(r model.Reservation) error {
	switch {
	case r.GuestLastName == "":
		return invalid("guest_last_name", "is required")
	case r.StartTime.IsZero():
		return invalid("start_time", "is required")
	case r.EndTime.IsZero():
		return invalid("end_time", "is required")
	case !r.EndTime.After(r.StartTime.Time):
		return invalid("end_time", "must be after start_time")
	case !r.Status.Valid():
		return invalid("status", "must be one of pending, confirmed, cancelled")
	}
	return nil
}

// record counts the outcome of a write and hands err back.
func (s *ReservationService) record(operation string, err error) error {
	if s.metrics == nil {
		return err
	}
	s.metrics.ReservationOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, repository.ErrOverlap), errors.Is(err, repository.ErrDuplicate):
		return metrics.OutcomeConflict
	case errors.As(err, &verr), errors.Is(err, repository.ErrInvalidReference):
		return metrics.OutcomeInvalid
	case errors.Is(err, repository.ErrNotFound):
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}

// afterWrite drops cached schedules of the resource and publishes the event.
// Neither failure affects the caller.
func (s *ReservationService) afterWrite(ctx context.Context, typ string, reservationID, resourceID int64, res *model.Reservation) {
	log := s.log.With(slog.String("event_type", typ), slog.Int64("resource_id", resourceID))

	if err := s.cache.Invalidate(ctx, resourceID); err != nil {
		log.Warn("failed to invalidate schedule cache", sl.Err(err))
	}

	result := metrics.OutcomeOK
	if err := s.publisher.Publish(ctx, events.NewEvent(typ, reservationID, resourceID, res)); err != nil {
		result = metrics.OutcomeError
		log.Error("failed to publish reservation event", sl.Err(err))
	}
	if s.metrics != nil {
		s.metrics.EventsPublishedTotal.WithLabelValues(typ, result).Inc()
	}
}

// cachedQuerier serves day-window listings from the schedule cache. The
// facade only asks for whole days, so the window start names the cache field.
// Fills are versioned, see cache.ScheduleCache.
type cachedQuerier struct {
	svc *ReservationService
}

func (q *cachedQuerier) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s := q.svc
	date := f.Start.In(s.opts.Location).Format(model.DateLayout)
	log := s.log.With(slog.Int64("resource_id", f.ResourceID), slog.String("date", date))

	cached, err := s.cache.Get(ctx, f.ResourceID, date)
	switch {
	case err == nil:
		s.lookup("hit")
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		s.lookup("miss")
	default:
		s.lookup("error")
		log.Warn("schedule cache read failed", sl.Err(err))
	}

	// The version is read before the store so a write committed in between
	// makes the fill stale.
	version, verr := s.cache.Version(ctx, f.ResourceID)

	list, err := s.ListReservations(ctx, f)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		log.Warn("schedule cache version read failed", sl.Err(verr))
		return list, nil
	}

	switch err := s.cache.Set(ctx, f.ResourceID, date, version, list); {
	case err == nil:
	case errors.Is(err, cache.ErrStale):
		log.Debug("schedule changed while loading, not cached")
	default:
		log.Warn("schedule cache write failed", sl.Err(err))
	}
	return list, nil
}

func (s *ReservationService) lookup(result string) {
	if s.metrics != nil {
		s.metrics.ScheduleCacheLookupsTotal.WithLabelValues(result).Inc()
	}
}
