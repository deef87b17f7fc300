// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/lib/logger/sl"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository"
)

// ValidationError reports a request the service refuses to store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// OrganizationStore persists organizations.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, name string) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	GetOrganization(ctx context.Context, id int64) (*model.Organization, error)
	RenameOrganization(ctx context.Context, id int64, name string) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, id int64) error
}

// OrganizationService orchestrates organization operations.
type OrganizationService struct {
	log   *slog.Logger
	store OrganizationStore
}

// NewOrganizationService constructs an OrganizationService.
func NewOrganizationService(log *slog.Logger, store OrganizationStore) *OrganizationService {
	return &OrganizationService{log: log, store: store}
}

// Create validates the name and stores a new organization.
func (s *OrganizationService) Create(ctx context.Context, req model.CreateOrganizationRequest) (*model.Organization, error) {
	const op = "service.OrganizationService.Create"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	org, err := s.store.CreateOrganization(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("organization created", slog.String("op", op), slog.Int64("organization_id", org.ID))
	return org, nil
}

// List returns all organizations.
func (s *OrganizationService) List(ctx context.Context) ([]model.Organization, error) {
	return s.store.ListOrganizations(ctx)
}

// Get returns a single organization by ID.
func (s *OrganizationService) Get(ctx context.Context, id int64) (*model.Organization, error) {
	if id <= 0 {
		return nil, repository.ErrNotFound
	}
	return s.store.GetOrganization(ctx, id)
}

// Update applies a partial update.
func (s *OrganizationService) Update(ctx context.Context, id int64, req model.UpdateOrganizationRequest) (*model.Organization, error) {
	const op = "service.OrganizationService.Update"

	if req.Name == nil {
		return s.Get(ctx, id)
	}
	name := strings.TrimSpace(*req.Name)
	if name == "" {
		return nil, invalid("name", "must not be blank")
	}

	org, err := s.store.RenameOrganization(ctx, id, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return org, nil
}

// Delete removes an organization together with its resources and reservations.
func (s *OrganizationService) Delete(ctx context.Context, id int64) error {
	const op = "service.OrganizationService.Delete"

	if err := s.store.DeleteOrganization(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("organization deleted", slog.String("op", op), slog.Int64("organization_id", id))
	return nil
}

// ResourceStore persists resources.
type ResourceStore interface {
	CreateResource(ctx context.Context, req model.CreateResourceRequest) (*model.Resource, error)
	ListResources(ctx context.Context, organizationID int64) ([]model.Resource, error)
	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	UpdateResource(ctx context.Context, res model.Resource) (*model.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
}

// ResourceService orchestrates resource operations.
type ResourceService struct {
	log   *slog.Logger
	store ResourceStore
	cache Invalidator
}

// Invalidator drops cached day schedules of a resource.
type Invalidator interface {
	Invalidate(ctx context.Context, resourceID int64) error
}

// NewResourceService constructs a ResourceService.
func NewResourceService(log *slog.Logger, store ResourceStore, cache Invalidator) *ResourceService {
	return &ResourceService{log: log, store: store, cache: cache}
}

// Create validates the request and stores a new resource.
func (s *ResourceService) Create(ctx context.Context, req model.CreateResourceRequest) (*model.Resource, error) {
	const op = "service.ResourceService.Create"

	req.Name = strings.TrimSpace(req.Name)
	if req.OrganizationID <= 0 {
		return nil, invalid("organization_id", "is required")
	}
	if req.Name == "" {
		return nil, invalid("name", "is required")
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return nil, invalid("capacity", "must be a positive integer")
	}
	req.Type = blankToNil(req.Type)

	res, err := s.store.CreateResource(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("resource created", slog.String("op", op),
		slog.Int64("resource_id", res.ID), slog.Int64("organization_id", res.OrganizationID))
	return res, nil
}

// List returns resources, optionally of one organization.
func (s *ResourceService) List(ctx context.Context, organizationID int64) ([]model.Resource, error) {
	return s.store.ListResources(ctx, organizationID)
}

// Get returns a single resource by ID.
func (s *ResourceService) Get(ctx context.Context, id int64) (*model.Resource, error) {
	if id <= 0 {
		return nil, repository.ErrNotFound
	}
	return s.store.GetResource(ctx, id)
}

// Update applies a partial update.
func (s *ResourceService) Update(ctx context.Context, id int64, req model.UpdateResourceRequest) (*model.Resource, error) {
	const op = "service.ResourceService.Update"

	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "must not be blank")
		}
		res.Name = name
	}
	if req.Type != nil {
		res.Type = blankToNil(req.Type)
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, invalid("capacity", "must be a positive integer")
		}
		res.Capacity = req.Capacity
	}

	updated, err := s.store.UpdateResource(ctx, *res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete removes a resource and its reservations.
func (s *ResourceService) Delete(ctx context.Context, id int64) error {
	const op = "service.ResourceService.Delete"

	if err := s.store.DeleteResource(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("failed to invalidate schedule cache", slog.String("op", op), slog.Int64("resource_id", id), sl.Err(err))
	}

	s.log.Info("resource deleted", slog.String("op", op), slog.Int64("resource_id", id))
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
