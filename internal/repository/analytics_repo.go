package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kpark/internal/entities"
)

// AnalyticsRepository serves the admin dashboard and occupancy reports.
type AnalyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepository(database *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: database}
}

func (r *AnalyticsRepository) Dashboard(ctx context.Context, today string) (*entities.DashboardSummary, error) {
	summary := &entities.DashboardSummary{}

	err := r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM slots WHERE is_active),
			(SELECT COUNT(*) FROM bookings WHERE booking_date = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM waitlist_entries WHERE booking_date = $1 AND status = 'waiting')`,
		today,
	).Scan(&summary.TotalUsers, &summary.TotalSlots, &summary.ActiveBookingsToday,
		&summary.TotalBookings, &summary.WaitlistToday)
	if err != nil {
		return nil, fmt.Errorf("error querying dashboard counts: %w", err)
	}
	summary.AvailableSlotsToday = summary.TotalSlots - summary.ActiveBookingsToday

	rows, err := r.DB.QueryContext(ctx, `
		SELECT category, slot_type, COUNT(*)
		FROM slots
		WHERE is_active
		GROUP BY category, slot_type
		ORDER BY category, slot_type`)
	if err != nil {
		return nil, fmt.Errorf("error querying slot breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b entities.SlotBreakdown
		if err := rows.Scan(&b.Category, &b.SlotType, &b.Count); err != nil {
			return nil, fmt.Errorf("error scanning slot breakdown: %w", err)
		}
		summary.SlotBreakdown = append(summary.SlotBreakdown, b)
	}
	return summary, rows.Err()
}

// Occupancy returns per-date booking counts and unique users over active and
// completed bookings in [from, to].
func (r *AnalyticsRepository) Occupancy(ctx context.Context, from, to string) ([]entities.OccupancyPoint, error) {
	query := `
		SELECT booking_date, COUNT(*), COUNT(DISTINCT user_id)
		FROM bookings
		WHERE status IN ('active', 'completed')`
	args := []interface{}{}
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND booking_date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND booking_date <= $%d", len(args))
	}
	query += " GROUP BY booking_date ORDER BY booking_date"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying occupancy: %w", err)
	}
	defer rows.Close()

	var points []entities.OccupancyPoint
	for rows.Next() {
		var p entities.OccupancyPoint
		if err := rows.Scan(&p.Date, &p.BookingCount, &p.UniqueUsers); err != nil {
			return nil, fmt.Errorf("error scanning occupancy point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
