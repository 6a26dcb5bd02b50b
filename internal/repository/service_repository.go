package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/booking-platform/internal/model"
)

// ErrServiceNotFound indicates that a service was not located in the DB.
var ErrServiceNotFound = errors.New("service not found")

// ServiceRepo manages persistence for catalog services.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo constructs a ServiceRepo with the given DB handle.
func NewServiceRepo(db *sql.DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

const serviceColumns = "id, title, description, price, duration_minutes, is_active, created_at, updated_at"

func scanService(row interface{ Scan(...interface{}) error }) (*model.Service, error) {
	var s model.Service
	var desc sql.NullString
	err := row.Scan(&s.ID, &s.Title, &desc, &s.Price, &s.DurationMinutes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Description = desc.String
	return &s, nil
}

// Create inserts a new service and populates the generated UUID and
// DB-default fields on the given model.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	s.ID = uuid.NewString()
	const q = `INSERT INTO services (id, title, description, price, duration_minutes, is_active) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.Title, s.Description, s.Price, s.DurationMinutes, s.IsActive); err != nil {
		return err
	}
	const sel = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	got, err := scanService(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a service by its ID regardless of the active flag.
// It returns ErrServiceNotFound if there is no matching row.
func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	s, err := scanService(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	return s, err
}

// GetActive retrieves a service that is currently accepting bookings.
// Inactive and missing services are both reported as ErrServiceNotFound:
// the admission engine treats them identically.
func (r *ServiceRepo) GetActive(ctx context.Context, id string) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ? AND is_active = 1`
	s, err := scanService(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	return s, err
}

// ServiceFilter narrows List results.  Zero values leave the
// corresponding predicate out of the query.
type ServiceFilter struct {
	Query    string   // substring match on title or description
	PriceMin *float64 // inclusive lower price bound
	PriceMax *float64 // inclusive upper price bound
	Active   *bool    // filter on is_active
	Skip     int      // offset into the result set
	Limit    int      // page size (defaults to 100)
}

// List returns services matching the filter ordered by creation time.
func (r *ServiceRepo) List(ctx context.Context, f ServiceFilter) ([]model.Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services`
	var conds []string
	var args []interface{}
	if s := strings.TrimSpace(f.Query); s != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if f.PriceMin != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.PriceMin)
	}
	if f.PriceMax != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.PriceMax)
	}
	if f.Active != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *f.Active)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " ORDER BY created_at LIMIT ? OFFSET ?"
	args = append(args, limit, f.Skip)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies a partial update.  Nil pointers leave the column
// untouched.  It returns ErrServiceNotFound when the id matches no row.
func (r *ServiceRepo) Update(ctx context.Context, id string, title, description *string, price *float64, duration *int) (*model.Service, error) {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if title != nil {
		sets = append(sets, "title=?")
		args = append(args, strings.TrimSpace(*title))
	}
	if description != nil {
		sets = append(sets, "description=?")
		args = append(args, *description)
	}
	if price != nil {
		sets = append(sets, "price=?")
		args = append(args, *price)
	}
	if duration != nil {
		sets = append(sets, "duration_minutes=?")
		args = append(args, *duration)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := "UPDATE services SET " + strings.Join(sets, ", ") + ", updated_at=NOW() WHERE id=?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes a service.  The active-booking count and the
// flag flip run in one transaction so a booking admitted concurrently
// cannot slip past the guard.  Returns ErrConflict while PENDING or
// CONFIRMED bookings exist and ErrServiceNotFound for unknown ids.
// A lock error from a racing admission reruns the transaction once so
// the freshly admitted booking surfaces as ErrConflict.
func (r *ServiceRepo) Deactivate(ctx context.Context, id string) error {
	err := r.deactivate(ctx, id)
	if isLockConflict(err) {
		err = r.deactivate(ctx, id)
	}
	return err
}

func (r *ServiceRepo) deactivate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT is_active FROM services WHERE id=? FOR UPDATE", id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrServiceNotFound
		}
		return err
	}

	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE service_id=? AND status IN ('PENDING','CONFIRMED') FOR UPDATE",
		id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE services SET is_active=0, updated_at=NOW() WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
