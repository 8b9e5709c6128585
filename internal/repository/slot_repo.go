package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"kpark/internal/apperr"
	"kpark/internal/db"
	"kpark/internal/entities"
)

type SlotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(database *sql.DB) *SlotRepository {
	return &SlotRepository{DB: database}
}

const slotColumns = "id, code, slot_type, category, floor, is_active, created_at, updated_at"

func scanSlot(row interface{ Scan(...interface{}) error }) (*db.Slot, error) {
	var s db.Slot
	err := row.Scan(&s.ID, &s.Code, &s.SlotType, &s.Category, &s.Floor, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SlotRepository) Create(ctx context.Context, s *db.Slot) error {
	query := `
		INSERT INTO slots (code, slot_type, category, floor, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, is_active, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, s.Code, s.SlotType, s.Category, s.Floor).
		Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Newf(apperr.KindConflict, "Slot %s already exists.", s.Code)
		}
		return fmt.Errorf("error creating slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int) (*db.Slot, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+slotColumns+" FROM slots WHERE id = $1", id)
	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Slot not found.")
		}
		return nil, fmt.Errorf("error querying slot %d: %w", id, err)
	}
	return s, nil
}

func (r *SlotRepository) List(ctx context.Context, f entities.SlotFilter) ([]db.Slot, error) {
	query := "SELECT " + slotColumns + " FROM slots WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if f.ActiveOnly {
		query += " AND is_active"
	}
	if f.SlotType != "" {
		query += " AND slot_type = $" + strconv.Itoa(idx)
		args = append(args, f.SlotType)
		idx++
	}
	if len(f.Categories) > 0 {
		query += " AND category = ANY($" + strconv.Itoa(idx) + ")"
		args = append(args, pq.Array(f.Categories))
		idx++
	}
	query += " ORDER BY code"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing slots: %w", err)
	}
	defer rows.Close()

	var slots []db.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning slot: %w", err)
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// ListWithAvailability lists slots with a per-slot flag telling whether the
// requested window is free of active bookings on that date.
func (r *SlotRepository) ListWithAvailability(ctx context.Context, f entities.SlotFilter, date, start, end string) ([]entities.SlotAvailability, error) {
	query := `
		SELECT s.id, s.code, s.slot_type, s.category, s.floor, s.is_active, s.created_at, s.updated_at,
			NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.slot_id = s.id
				  AND b.booking_date = $1
				  AND b.status = 'active'
				  AND b.start_time < $3
				  AND b.end_time > $2
			) AS is_available
		FROM slots s
		WHERE s.is_active`
	args := []interface{}{date, start, end}
	idx := 4

	if f.SlotType != "" {
		query += " AND s.slot_type = $" + strconv.Itoa(idx)
		args = append(args, f.SlotType)
		idx++
	}
	if len(f.Categories) > 0 {
		query += " AND s.category = ANY($" + strconv.Itoa(idx) + ")"
		args = append(args, pq.Array(f.Categories))
		idx++
	}
	query += " ORDER BY s.code"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing slot availability: %w", err)
	}
	defer rows.Close()

	var result []entities.SlotAvailability
	for rows.Next() {
		var sa entities.SlotAvailability
		err := rows.Scan(&sa.ID, &sa.Code, &sa.SlotType, &sa.Category, &sa.Floor, &sa.IsActive,
			&sa.CreatedAt, new(sql.NullTime), &sa.IsAvailableForWindow)
		if err != nil {
			return nil, fmt.Errorf("error scanning slot availability: %w", err)
		}
		result = append(result, sa)
	}
	return result, rows.Err()
}

// FirstFit returns the first active slot of the given type and categories with
// no active booking overlapping [start,end) on the date. Ordered by code so
// the choice is stable.
func (r *SlotRepository) FirstFit(ctx context.Context, slotType string, categories []string, date, start, end string) (*db.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots s
		WHERE s.slot_type = $1
		  AND s.category = ANY($2)
		  AND s.is_active
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.slot_id = s.id
			  AND b.booking_date = $3
			  AND b.status = 'active'
			  AND b.start_time < $5
			  AND b.end_time > $4
		  )
		ORDER BY s.code
		LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, slotType, pq.Array(categories), date, start, end)
	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding first fitting slot: %w", err)
	}
	return s, nil
}

// AnyActiveOfType returns some active slot of the type, used when a chained
// waitlist promotion needs a slot to advertise.
func (r *SlotRepository) AnyActiveOfType(ctx context.Context, slotType string) (*db.Slot, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE slot_type = $1 AND is_active ORDER BY code LIMIT 1", slotType)
	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying active slot of type %s: %w", slotType, err)
	}
	return s, nil
}

func (r *SlotRepository) Update(ctx context.Context, id int, req entities.SlotUpdate) (*db.Slot, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	idx := 1

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = $"+strconv.Itoa(idx))
		args = append(args, value)
		idx++
	}
	if req.Code != nil {
		add("code", strings.ToUpper(*req.Code))
	}
	if req.SlotType != nil {
		add("slot_type", *req.SlotType)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Floor != nil {
		add("floor", *req.Floor)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	query := "UPDATE slots SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(idx) + " RETURNING " + slotColumns
	args = append(args, id)

	row := r.DB.QueryRowContext(ctx, query, args...)
	s, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Slot not found.")
		}
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("A slot with that code already exists.")
		}
		return nil, fmt.Errorf("error updating slot %d: %w", id, err)
	}
	return s, nil
}

// Deactivate soft-deletes a slot. Historical bookings keep referencing it.
func (r *SlotRepository) Deactivate(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE slots SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deactivating slot %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("Slot not found.")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
