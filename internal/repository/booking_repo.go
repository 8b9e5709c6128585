package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kpark/internal/apperr"
	"kpark/internal/db"
	"kpark/internal/entities"
)

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

const bookingColumns = `id, code, user_id, slot_id, booking_date, start_time, end_time, status,
	arrived_at, is_extended, extension_count, grace_deadline, cancellation_reason, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(&b.ID, &b.Code, &b.UserID, &b.SlotID, &b.BookingDate, &b.StartTime, &b.EndTime,
		&b.Status, &b.ArrivedAt, &b.IsExtended, &b.ExtensionCount, &b.GraceDeadline,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateIfAvailable inserts a booking only if neither the slot nor the owner
// has an overlapping active booking. The slot row is locked for the duration
// of the transaction, so concurrent creates and extends on the same slot are
// serialized and the no-overlap invariant cannot be broken by a race.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, b *db.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	var slotID int
	err = tx.QueryRowContext(ctx, "SELECT id FROM slots WHERE id = $1 FOR UPDATE", b.SlotID).Scan(&slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Slot not found.")
		}
		return fmt.Errorf("error locking slot %d: %w", b.SlotID, err)
	}

	var userConflict bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND booking_date = $2 AND status = 'active'
			  AND start_time < $4 AND end_time > $3
		)`, b.UserID, b.BookingDate, b.StartTime, b.EndTime).Scan(&userConflict)
	if err != nil {
		return fmt.Errorf("error checking user conflict: %w", err)
	}
	if userConflict {
		return apperr.Conflict("You already have a booking that overlaps with this time.")
	}

	var slotConflict bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE slot_id = $1 AND booking_date = $2 AND status = 'active'
			  AND start_time < $4 AND end_time > $3
		)`, b.SlotID, b.BookingDate, b.StartTime, b.EndTime).Scan(&slotConflict)
	if err != nil {
		return fmt.Errorf("error checking slot conflict: %w", err)
	}
	if slotConflict {
		return apperr.Conflict("Slot is already booked for the selected time. Consider joining the waitlist.").
			WithHint(apperr.HintJoinWaitlist)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (code, user_id, slot_id, booking_date, start_time, end_time, status, grace_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
		RETURNING id, status, created_at, updated_at`,
		b.Code, b.UserID, b.SlotID, b.BookingDate, b.StartTime, b.EndTime, b.GraceDeadline,
	).Scan(&b.ID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing booking: %w", err)
	}
	return nil
}

// IsAvailable reports whether the slot is free of overlapping active bookings
// for the window, optionally ignoring one booking id.
func (r *BookingRepository) IsAvailable(ctx context.Context, slotID int, date, start, end string, excludeID int) (bool, error) {
	var conflict bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE slot_id = $1 AND booking_date = $2 AND status = 'active'
			  AND id <> $5
			  AND start_time < $4 AND end_time > $3
		)`, slotID, date, start, end, excludeID).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("error checking availability: %w", err)
	}
	return !conflict, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int) (*db.Booking, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Booking not found.")
		}
		return nil, fmt.Errorf("error querying booking %d: %w", id, err)
	}
	return b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int, status, upcomingFrom string) ([]db.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE user_id = $1"
	args := []interface{}{userID}
	idx := 2

	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	if upcomingFrom != "" {
		query += " AND booking_date >= $" + strconv.Itoa(idx) + " AND status = 'active'"
		args = append(args, upcomingFrom)
		idx++
	}
	query += " ORDER BY booking_date DESC, start_time DESC"

	return r.queryBookings(ctx, query, args...)
}

func (r *BookingRepository) ListAll(ctx context.Context, f entities.BookingFilter) ([]db.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if f.Status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Date != "" {
		query += " AND booking_date = $" + strconv.Itoa(idx)
		args = append(args, f.Date)
		idx++
	}
	if f.UserID != 0 {
		query += " AND user_id = $" + strconv.Itoa(idx)
		args = append(args, f.UserID)
		idx++
	}
	query += " ORDER BY booking_date DESC, start_time DESC"

	return r.queryBookings(ctx, query, args...)
}

// MarkArrival sets the arrival timestamp. Conditional on the booking still
// being active and unarrived so it cannot race the grace sweep.
func (r *BookingRepository) MarkArrival(ctx context.Context, id int, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET arrived_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND arrived_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("error marking arrival for booking %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Conflict("Booking is not active or arrival is already marked.")
	}
	return nil
}

// ExtendIfAvailable pushes the end time out to newEnd after verifying, under
// the slot lock, that the delta window [current end, newEnd) is free. The
// update itself re-checks status and the extension cap.
func (r *BookingRepository) ExtendIfAvailable(ctx context.Context, id int, newEnd string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting extend transaction: %w", err)
	}
	defer tx.Rollback()

	var slotID int
	var date, currentEnd string
	err = tx.QueryRowContext(ctx, `
		SELECT s.id, b.booking_date, b.end_time
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.id = $1
		FOR UPDATE OF s`, id).Scan(&slotID, &date, &currentEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Booking not found.")
		}
		return fmt.Errorf("error locking slot for extension: %w", err)
	}

	var conflict bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE slot_id = $1 AND booking_date = $2 AND status = 'active'
			  AND id <> $3
			  AND start_time < $5 AND end_time > $4
		)`, slotID, date, id, currentEnd, newEnd).Scan(&conflict)
	if err != nil {
		return fmt.Errorf("error checking extension window: %w", err)
	}
	if conflict {
		return apperr.Conflict("Cannot extend: slot is booked right after your current end time.")
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET end_time = $2, is_extended = TRUE, extension_count = extension_count + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND extension_count < $3`, id, newEnd, db.MaxExtensions)
	if err != nil {
		return fmt.Errorf("error extending booking %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Conflict("Booking is not active or has used all extensions.")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing extension: %w", err)
	}
	return nil
}

// CancelIfActive transitions active → cancelled. Conditional so a user cancel
// and a sweeper cancel cannot both win.
func (r *BookingRepository) CancelIfActive(ctx context.Context, id int, reason string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = 'cancelled', cancellation_reason = $2, updated_at = $3
		WHERE id = $1 AND status = 'active'`, id, reason, at)
	if err != nil {
		return fmt.Errorf("error cancelling booking %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Conflict("Booking is not active.")
	}
	return nil
}

// ListGraceExpired returns active, unarrived bookings whose grace deadline has
// passed.
func (r *BookingRepository) ListGraceExpired(ctx context.Context, now time.Time) ([]db.Booking, error) {
	return r.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'active' AND arrived_at IS NULL AND grace_deadline <= $1
		ORDER BY grace_deadline`, now)
}

// ListStartingBetween returns active, unarrived bookings on the date whose
// start time falls in [from, to), for the reminder sweep.
func (r *BookingRepository) ListStartingBetween(ctx context.Context, date, from, to string) ([]db.Booking, error) {
	return r.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE booking_date = $1 AND status = 'active' AND arrived_at IS NULL
		  AND start_time >= $2 AND start_time < $3
		ORDER BY start_time`, date, from, to)
}

// ExpireBefore marks active bookings with a date before cutoff as expired.
func (r *BookingRepository) ExpireBefore(ctx context.Context, cutoff string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND booking_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error expiring stale bookings: %w", err)
	}
	return result.RowsAffected()
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
