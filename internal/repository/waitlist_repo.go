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
)

type WaitlistRepository struct {
	DB *sql.DB
}

func NewWaitlistRepository(database *sql.DB) *WaitlistRepository {
	return &WaitlistRepository{DB: database}
}

const waitlistColumns = `id, user_id, booking_date, preferred_start_time, preferred_end_time,
	slot_type, status, notified_at, confirmation_deadline, position, created_at, updated_at`

func scanWaitlistEntry(row interface{ Scan(...interface{}) error }) (*db.WaitlistEntry, error) {
	var e db.WaitlistEntry
	err := row.Scan(&e.ID, &e.UserID, &e.BookingDate, &e.PreferredStartTime, &e.PreferredEndTime,
		&e.SlotType, &e.Status, &e.NotifiedAt, &e.ConfirmationDeadline, &e.Position,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create appends a waiting entry. Position is the waiting-queue length for
// (date, type) plus one, computed in the same transaction; it is advisory
// only; FIFO ordering is always by created_at.
func (r *WaitlistRepository) Create(ctx context.Context, e *db.WaitlistEntry) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting waitlist transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) + 1 FROM waitlist_entries
		WHERE booking_date = $1 AND slot_type = $2 AND status = 'waiting'`,
		e.BookingDate, e.SlotType).Scan(&e.Position)
	if err != nil {
		return fmt.Errorf("error computing waitlist position: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO waitlist_entries
			(user_id, booking_date, preferred_start_time, preferred_end_time, slot_type, status, position)
		VALUES ($1, $2, $3, $4, $5, 'waiting', $6)
		RETURNING id, status, created_at, updated_at`,
		e.UserID, e.BookingDate, e.PreferredStartTime, e.PreferredEndTime, e.SlotType, e.Position,
	).Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting waitlist entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing waitlist entry: %w", err)
	}
	return nil
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id int) (*db.WaitlistEntry, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+waitlistColumns+" FROM waitlist_entries WHERE id = $1", id)
	e, err := scanWaitlistEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Waitlist entry not found.")
		}
		return nil, fmt.Errorf("error querying waitlist entry %d: %w", id, err)
	}
	return e, nil
}

func (r *WaitlistRepository) HasOverlappingWaiting(ctx context.Context, userID int, date, start, end string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM waitlist_entries
			WHERE user_id = $1 AND booking_date = $2 AND status = 'waiting'
			  AND preferred_start_time < $4 AND preferred_end_time > $3
		)`, userID, date, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking waitlist duplicate: %w", err)
	}
	return exists, nil
}

func (r *WaitlistRepository) ListByUser(ctx context.Context, userID int) ([]db.WaitlistEntry, error) {
	return r.queryEntries(ctx,
		"SELECT "+waitlistColumns+" FROM waitlist_entries WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (r *WaitlistRepository) ListAll(ctx context.Context, date, status string) ([]db.WaitlistEntry, error) {
	query := "SELECT " + waitlistColumns + " FROM waitlist_entries WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND booking_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY created_at"

	return r.queryEntries(ctx, query, args...)
}

// ClaimOldestFitting atomically notifies the oldest waiting entry for
// (date, type) whose preferred window overlaps the freed window. The claim is
// a single conditional UPDATE over a locked sub-select, so two concurrent
// freeing events cannot claim the same entry and a lone candidate is never
// skipped.
func (r *WaitlistRepository) ClaimOldestFitting(ctx context.Context, date, slotType, freedStart, freedEnd string, now, deadline time.Time) (*db.WaitlistEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE waitlist_entries
		SET status = 'notified', notified_at = $5, confirmation_deadline = $6, updated_at = $5
		WHERE id = (
			SELECT id FROM waitlist_entries
			WHERE booking_date = $1 AND slot_type = $2 AND status = 'waiting'
			  AND preferred_start_time < $4 AND preferred_end_time > $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND status = 'waiting'
		RETURNING `+waitlistColumns,
		date, slotType, freedStart, freedEnd, now, deadline)

	e, err := scanWaitlistEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error claiming waitlist entry: %w", err)
	}
	return e, nil
}

// ClaimNextAfter notifies the oldest waiting entry for (date, type) created
// strictly after the given instant, the chained promotion the confirmation
// sweep runs when a notified entry lapses.
func (r *WaitlistRepository) ClaimNextAfter(ctx context.Context, date, slotType string, after, now, deadline time.Time) (*db.WaitlistEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE waitlist_entries
		SET status = 'notified', notified_at = $4, confirmation_deadline = $5, updated_at = $4
		WHERE id = (
			SELECT id FROM waitlist_entries
			WHERE booking_date = $1 AND slot_type = $2 AND status = 'waiting'
			  AND created_at > $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND status = 'waiting'
		RETURNING `+waitlistColumns,
		date, slotType, after, now, deadline)

	e, err := scanWaitlistEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error claiming next waitlist entry: %w", err)
	}
	return e, nil
}

// MarkBooked transitions notified → booked. Conditional so confirmation and
// the expiry sweep cannot both win on the same entry.
func (r *WaitlistRepository) MarkBooked(ctx context.Context, id int) error {
	return r.conditionalTransition(ctx, id, db.WaitlistStatusNotified, db.WaitlistStatusBooked,
		"Waitlist entry is no longer awaiting confirmation.")
}

// ReopenIfBooked transitions booked → notified, the rollback for a claim
// that produced no booking.
func (r *WaitlistRepository) ReopenIfBooked(ctx context.Context, id int) error {
	return r.conditionalTransition(ctx, id, db.WaitlistStatusBooked, db.WaitlistStatusNotified,
		"Waitlist entry is not booked.")
}

// ExpireIfNotified transitions notified → expired.
func (r *WaitlistRepository) ExpireIfNotified(ctx context.Context, id int) error {
	return r.conditionalTransition(ctx, id, db.WaitlistStatusNotified, db.WaitlistStatusExpired,
		"Waitlist entry is not in notified state.")
}

// Withdraw expires a live (waiting or notified) entry. No hard delete, the
// row stays for audit history.
func (r *WaitlistRepository) Withdraw(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE waitlist_entries SET status = 'expired', updated_at = NOW()
		WHERE id = $1 AND status IN ('waiting', 'notified')`, id)
	if err != nil {
		return fmt.Errorf("error withdrawing waitlist entry %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Conflict("Waitlist entry is already closed.")
	}
	return nil
}

// ListExpiredConfirmations returns notified entries whose confirmation
// deadline has passed.
func (r *WaitlistRepository) ListExpiredConfirmations(ctx context.Context, now time.Time) ([]db.WaitlistEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+waitlistColumns+` FROM waitlist_entries
		WHERE status = 'notified' AND confirmation_deadline <= $1
		ORDER BY confirmation_deadline`, now)
}

// ExpireBefore expires waiting entries whose date is before cutoff.
func (r *WaitlistRepository) ExpireBefore(ctx context.Context, cutoff string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE waitlist_entries SET status = 'expired', updated_at = NOW()
		WHERE status = 'waiting' AND booking_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error expiring stale waitlist entries: %w", err)
	}
	return result.RowsAffected()
}

func (r *WaitlistRepository) conditionalTransition(ctx context.Context, id int, from, to, conflictMsg string) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE waitlist_entries SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2",
		id, from, to)
	if err != nil {
		return fmt.Errorf("error transitioning waitlist entry %d to %s: %w", id, to, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Conflict(conflictMsg)
	}
	return nil
}

func (r *WaitlistRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]db.WaitlistEntry, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying waitlist entries: %w", err)
	}
	defer rows.Close()

	var entries []db.WaitlistEntry
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning waitlist entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
