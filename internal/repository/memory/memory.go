// Package memory is an in-process store with the same contract as the
// Postgres repositories. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository"
)

// Store keeps organizations, resources and reservations in maps guarded by a
// single mutex.
type Store struct {
	mu sync.Mutex

	now func() time.Time

	nextOrgID         int64
	nextResourceID    int64
	nextReservationID int64

	orgs         map[int64]model.Organization
	resources    map[int64]model.Resource
	reservations map[int64]model.Reservation
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:          time.Now,
		orgs:         make(map[int64]model.Organization),
		resources:    make(map[int64]model.Resource),
		reservations: make(map[int64]model.Reservation),
	}
}

func (s *Store) CreateOrganization(_ context.Context, name string) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orgs {
		if o.Name == name {
			return nil, fmt.Errorf("memory.CreateOrganization: %w", repository.ErrDuplicate)
		}
	}

	s.nextOrgID++
	now := s.now().UTC()
	org := model.Organization{ID: s.nextOrgID, Name: name, CreatedAt: now, UpdatedAt: now}
	s.orgs[org.ID] = org
	return &org, nil
}

func (s *Store) ListOrganizations(_ context.Context) ([]model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orgs := make([]model.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		orgs = append(orgs, o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

func (s *Store) GetOrganization(_ context.Context, id int64) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &org, nil
}

func (s *Store) RenameOrganization(_ context.Context, id int64, name string) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, o := range s.orgs {
		if o.ID != id && o.Name == name {
			return nil, repository.ErrDuplicate
		}
	}
	org.Name = name
	org.UpdatedAt = s.now().UTC()
	s.orgs[id] = org
	return &org, nil
}

// DeleteOrganization cascades to resources and their reservations.
func (s *Store) DeleteOrganization(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.orgs, id)
	for rid, res := range s.resources {
		if res.OrganizationID == id {
			s.deleteResourceLocked(rid)
		}
	}
	return nil
}

func (s *Store) CreateResource(_ context.Context, req model.CreateResourceRequest) (*model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[req.OrganizationID]; !ok {
		return nil, fmt.Errorf("memory.CreateResource: %w", repository.ErrInvalidReference)
	}

	s.nextResourceID++
	now := s.now().UTC()
	res := model.Resource{
		ID:             s.nextResourceID,
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Type:           req.Type,
		Capacity:       req.Capacity,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.resources[res.ID] = res
	return &res, nil
}

func (s *Store) ListResources(_ context.Context, organizationID int64) ([]model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Resource
	for _, r := range s.resources {
		if organizationID > 0 && r.OrganizationID != organizationID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetResource(_ context.Context, id int64) (*model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.resources[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &res, nil
}

func (s *Store) UpdateResource(_ context.Context, res model.Resource) (*model.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.resources[res.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cur.Name = res.Name
	cur.Type = res.Type
	cur.Capacity = res.Capacity
	cur.UpdatedAt = s.now().UTC()
	s.resources[res.ID] = cur
	return &cur, nil
}

func (s *Store) DeleteResource(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteResourceLocked(id)
	return nil
}

func (s *Store) deleteResourceLocked(id int64) {
	delete(s.resources, id)
	for rid, r := range s.reservations {
		if r.ResourceID == id {
			delete(s.reservations, rid)
		}
	}
}

func (s *Store) CreateReservation(_ context.Context, res model.Reservation, rejectOverlaps bool) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[res.ResourceID]; !ok {
		return nil, fmt.Errorf("memory.CreateReservation: %w", repository.ErrInvalidReference)
	}
	if rejectOverlaps && s.overlapsLocked(res, 0) {
		return nil, fmt.Errorf("memory.CreateReservation: %w", repository.ErrOverlap)
	}

	s.nextReservationID++
	now := s.now().UTC()
	res.ID = s.nextReservationID
	res.CreatedAt = now
	res.UpdatedAt = now
	s.reservations[res.ID] = res
	return &res, nil
}

func (s *Store) UpdateReservation(_ context.Context, id int64, patch repository.ReservationPatch, rejectOverlaps bool) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res := cur
	if err := patch(&res); err != nil {
		return nil, err
	}
	res.ID = cur.ID
	res.ResourceID = cur.ResourceID
	res.CreatedAt = cur.CreatedAt

	if rejectOverlaps && s.overlapsLocked(res, res.ID) {
		return nil, fmt.Errorf("memory.UpdateReservation: %w", repository.ErrOverlap)
	}

	res.UpdatedAt = s.now().UTC()
	s.reservations[res.ID] = res
	return &res, nil
}

func (s *Store) overlapsLocked(res model.Reservation, excludeID int64) bool {
	if res.Status == model.StatusCancelled {
		return false
	}
	for _, other := range s.reservations {
		if other.ID == excludeID || other.ResourceID != res.ResourceID || other.Status == model.StatusCancelled {
			continue
		}
		if res.Overlaps(other) {
			return true
		}
	}
	return false
}

func (s *Store) GetReservation(_ context.Context, id int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &res, nil
}

func (s *Store) ListReservations(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(f.GuestLastName)
	var out []model.Reservation
	for _, r := range s.reservations {
		switch {
		case f.ResourceID > 0 && r.ResourceID != f.ResourceID:
			continue
		case f.UserID > 0 && (r.UserID == nil || *r.UserID != f.UserID):
			continue
		case needle != "" && !strings.Contains(strings.ToLower(r.GuestLastName), needle):
			continue
		case f.Status != "" && r.Status != f.Status:
			continue
		case !f.Start.IsZero() && !r.EndTime.After(f.Start):
			continue
		case !f.End.IsZero() && !r.StartTime.Before(f.End):
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime.Time) {
			return out[i].StartTime.Before(out[j].StartTime.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SetReservationStatus(_ context.Context, id int64, status model.Status) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res.Status = status
	res.UpdatedAt = s.now().UTC()
	s.reservations[id] = res
	return &res, nil
}

func (s *Store) DeleteReservation(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}
