package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReservationRepository handles persistence for reservations.
//
// start_time and end_time are stored as timestamp without time zone: the
// database keeps the wall clock and the service decides which zone it means.
type ReservationRepository struct {
	db *pgxpool.Pool
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, resource_id, user_id, start_time, end_time, status, notes,
	guest_last_name, guest_first_name, guest_contact, created_at, updated_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		res        model.Reservation
		start, end time.Time
		status     string
	)
	err := row.Scan(&res.ID, &res.ResourceID, &res.UserID, &start, &end, &status, &res.Notes,
		&res.GuestLastName, &res.GuestFirstName, &res.GuestContact, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.StartTime = model.WallClock(start)
	res.EndTime = model.WallClock(end)
	res.Status = model.Status(status)
	return &res, nil
}

// wallClock drops the zone so the column stores exactly the clock reading.
func wallClock(t model.LocalTime) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// CreateReservation inserts a reservation inside a transaction that holds the
// resource row lock, so two bookings for the same resource cannot both pass
// the overlap check.
//
//	tx A: SELECT … FROM resources WHERE id = X FOR UPDATE   → lock acquired
//	tx B: SELECT … FROM resources WHERE id = X FOR UPDATE   → blocks
//	tx A: no overlap → INSERT → COMMIT                      → lock released
//	tx B: overlap check now sees A's row                    → ErrOverlap
func (r *ReservationRepository) CreateReservation(ctx context.Context, res model.Reservation, rejectOverlaps bool) (*model.Reservation, error) {
	const op = "repository.CreateReservation"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockResource(ctx, tx, res.ResourceID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rejectOverlaps && res.Status != model.StatusCancelled {
		if err := checkOverlap(ctx, tx, res, 0); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	created, err := scanReservation(tx.QueryRow(ctx,
		`INSERT INTO reservations (resource_id, user_id, start_time, end_time, status, notes,
		                           guest_last_name, guest_first_name, guest_contact)
		 VALUES (@resourceID, @userID, @start, @end, @status, @notes, @lastName, @firstName, @contact)
		 RETURNING `+reservationColumns,
		pgx.NamedArgs{
			"resourceID": res.ResourceID,
			"userID":     res.UserID,
			"start":      wallClock(res.StartTime),
			"end":        wallClock(res.EndTime),
			"status":     string(res.Status),
			"notes":      res.Notes,
			"lastName":   res.GuestLastName,
			"firstName":  res.GuestFirstName,
			"contact":    res.GuestContact,
		},
	))
	if err != nil {
		return nil, mapPgError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return created, nil
}

// ReservationPatch edits the current version of a reservation in place. The
// store calls it while holding the row, so concurrent writes are never lost.
// A non-nil error aborts the update and is returned unchanged.
type ReservationPatch func(res *model.Reservation) error

// UpdateReservation reads reservation id under a row lock, applies patch and
// stores every mutable field under the same locking as CreateReservation.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, id int64, patch ReservationPatch, rejectOverlaps bool) (*model.Reservation, error) {
	const op = "repository.UpdateReservation"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The resource is locked before the reservation row, in the same order
	// CreateReservation takes its locks.
	var resourceID int64
	if err := tx.QueryRow(ctx, `SELECT resource_id FROM reservations WHERE id = $1`, id).Scan(&resourceID); err != nil {
		return nil, mapPgError(op, err)
	}
	if err := lockResource(ctx, tx, resourceID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cur, err := scanReservation(tx.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapPgError(op, err)
	}

	res := *cur
	if err := patch(&res); err != nil {
		return nil, err
	}
	res.ID = cur.ID
	res.ResourceID = cur.ResourceID

	if rejectOverlaps && res.Status != model.StatusCancelled {
		if err := checkOverlap(ctx, tx, res, cur.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	updated, err := scanReservation(tx.QueryRow(ctx,
		`UPDATE reservations
		 SET start_time = @start, end_time = @end, status = @status, notes = @notes,
		     guest_last_name = @lastName, guest_first_name = @firstName, guest_contact = @contact,
		     updated_at = now()
		 WHERE id = @id
		 RETURNING `+reservationColumns,
		pgx.NamedArgs{
			"id":        cur.ID,
			"start":     wallClock(res.StartTime),
			"end":       wallClock(res.EndTime),
			"status":    string(res.Status),
			"notes":     res.Notes,
			"lastName":  res.GuestLastName,
			"firstName": res.GuestFirstName,
			"contact":   res.GuestContact,
		},
	))
	if err != nil {
		return nil, mapPgError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}
	return updated, nil
}

func lockResource(ctx context.Context, tx pgx.Tx, resourceID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM resources WHERE id = $1 FOR UPDATE`, resourceID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidReference
		}
		return fmt.Errorf("lock resource row: %w", err)
	}
	return nil
}

// checkOverlap looks for an active reservation sharing any instant with res.
// Intervals overlap unless one ends before (or exactly when) the other starts.
func checkOverlap(ctx context.Context, tx pgx.Tx, res model.Reservation, excludeID int64) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM reservations
		     WHERE resource_id = @resourceID
		       AND status <> 'cancelled'
		       AND start_time < @end
		       AND end_time > @start
		       AND id <> @excludeID
		 )`,
		pgx.NamedArgs{
			"resourceID": res.ResourceID,
			"start":      wallClock(res.StartTime),
			"end":        wallClock(res.EndTime),
			"excludeID":  excludeID,
		},
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if exists {
		return ErrOverlap
	}
	return nil
}

// GetReservation returns a single reservation or ErrNotFound.
func (r *ReservationRepository) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return nil, mapPgError("repository.GetReservation", err)
	}
	return res, nil
}

// ListReservations returns reservations matching f ordered by start time.
func (r *ReservationRepository) ListReservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		conds []string
		args  = pgx.NamedArgs{}
	)
	if f.ResourceID > 0 {
		conds = append(conds, "resource_id = @resourceID")
		args["resourceID"] = f.ResourceID
	}
	if f.UserID > 0 {
		conds = append(conds, "user_id = @userID")
		args["userID"] = f.UserID
	}
	if f.GuestLastName != "" {
		conds = append(conds, "guest_last_name ILIKE '%' || @lastName || '%'")
		args["lastName"] = escapeLike(f.GuestLastName)
	}
	if f.Status != "" {
		conds = append(conds, "status = @status")
		args["status"] = string(f.Status)
	}
	if !f.Start.IsZero() {
		conds = append(conds, "end_time > @start")
		args["start"] = wallClock(model.NewLocalTime(f.Start))
	}
	if !f.End.IsZero() {
		conds = append(conds, "start_time < @end")
		args["end"] = wallClock(model.NewLocalTime(f.End))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SetReservationStatus changes only the status, keeping the record.
func (r *ReservationRepository) SetReservationStatus(ctx context.Context, id int64, status model.Status) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx,
		`UPDATE reservations SET status = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+reservationColumns,
		id, string(status),
	))
	if err != nil {
		return nil, mapPgError("repository.SetReservationStatus", err)
	}
	return res, nil
}

// DeleteReservation permanently removes a reservation.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
