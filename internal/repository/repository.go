// Package repository implements all database queries for the reservation system.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint would be violated.
var ErrDuplicate = errors.New("already exists")

// ErrInvalidReference is returned when a referenced parent record does not exist.
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrOverlap is returned when a reservation collides with an active one on the same resource.
var ErrOverlap = errors.New("reservation time conflicts with an existing reservation")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError converts constraint violations into sentinel errors.
func mapPgError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrInvalidReference)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// OrganizationRepository handles persistence for organizations.
type OrganizationRepository struct {
	db *pgxpool.Pool
}

// NewOrganizationRepository constructs an OrganizationRepository.
func NewOrganizationRepository(db *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, name, created_at, updated_at`

func scanOrganization(row pgx.Row) (*model.Organization, error) {
	var o model.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrganization inserts a new organization.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, name string) (*model.Organization, error) {
	const op = "repository.CreateOrganization"

	org, err := scanOrganization(r.db.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1)
		 RETURNING `+organizationColumns,
		name,
	))
	if err != nil {
		return nil, mapPgError(op, err)
	}
	return org, nil
}

// ListOrganizations returns all organizations ordered by id.
func (r *OrganizationRepository) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	rows, err := r.db.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}

// GetOrganization returns a single organization or ErrNotFound.
func (r *OrganizationRepository) GetOrganization(ctx context.Context, id int64) (*model.Organization, error) {
	org, err := scanOrganization(r.db.QueryRow(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
	if err != nil {
		return nil, mapPgError("repository.GetOrganization", err)
	}
	return org, nil
}

// RenameOrganization changes an organization's name.
func (r *OrganizationRepository) RenameOrganization(ctx context.Context, id int64, name string) (*model.Organization, error) {
	org, err := scanOrganization(r.db.QueryRow(ctx,
		`UPDATE organizations SET name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+organizationColumns,
		id, name,
	))
	if err != nil {
		return nil, mapPgError("repository.RenameOrganization", err)
	}
	return org, nil
}

// DeleteOrganization removes an organization; its resources and their
// reservations go with it (ON DELETE CASCADE).
func (r *OrganizationRepository) DeleteOrganization(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResourceRepository handles persistence for resources.
type ResourceRepository struct {
	db *pgxpool.Pool
}

// NewResourceRepository constructs a ResourceRepository.
func NewResourceRepository(db *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, organization_id, name, type, capacity, created_at, updated_at`

func scanResource(row pgx.Row) (*model.Resource, error) {
	var res model.Resource
	if err := row.Scan(&res.ID, &res.OrganizationID, &res.Name, &res.Type, &res.Capacity, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateResource inserts a resource under an existing organization.
func (r *ResourceRepository) CreateResource(ctx context.Context, req model.CreateResourceRequest) (*model.Resource, error) {
	res, err := scanResource(r.db.QueryRow(ctx,
		`INSERT INTO resources (organization_id, name, type, capacity)
		 VALUES (@organizationID, @name, @type, @capacity)
		 RETURNING `+resourceColumns,
		pgx.NamedArgs{
			"organizationID": req.OrganizationID,
			"name":           req.Name,
			"type":           req.Type,
			"capacity":       req.Capacity,
		},
	))
	if err != nil {
		return nil, mapPgError("repository.CreateResource", err)
	}
	return res, nil
}

// ListResources returns resources, optionally restricted to one organization.
func (r *ResourceRepository) ListResources(ctx context.Context, organizationID int64) ([]model.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources`
	var args []any
	if organizationID > 0 {
		query += ` WHERE organization_id = $1`
		args = append(args, organizationID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, *res)
	}
	return resources, rows.Err()
}

// GetResource returns a single resource or ErrNotFound.
func (r *ResourceRepository) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	res, err := scanResource(r.db.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id))
	if err != nil {
		return nil, mapPgError("repository.GetResource", err)
	}
	return res, nil
}

// UpdateResource stores the mutable fields of res.
func (r *ResourceRepository) UpdateResource(ctx context.Context, res model.Resource) (*model.Resource, error) {
	updated, err := scanResource(r.db.QueryRow(ctx,
		`UPDATE resources SET name = @name, type = @type, capacity = @capacity, updated_at = now()
		 WHERE id = @id
		 RETURNING `+resourceColumns,
		pgx.NamedArgs{
			"id":       res.ID,
			"name":     res.Name,
			"type":     res.Type,
			"capacity": res.Capacity,
		},
	))
	if err != nil {
		return nil, mapPgError("repository.UpdateResource", err)
	}
	return updated, nil
}

// DeleteResource removes a resource and its reservations.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
