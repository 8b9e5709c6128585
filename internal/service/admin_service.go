package service

import (
	"context"
	"time"

	"kpark/internal/apperr"
	"kpark/internal/auth"
	"kpark/internal/db"
	"kpark/internal/entities"
	"kpark/internal/timeutil"
)

// AnalyticsStore serves the admin reporting queries.
type AnalyticsStore interface {
	Dashboard(ctx context.Context, today string) (*entities.DashboardSummary, error)
	Occupancy(ctx context.Context, from, to string) ([]entities.OccupancyPoint, error)
}

// AdminService bundles the admin-only surface: analytics, user management
// and booking overrides.
type AdminService struct {
	analytics AnalyticsStore
	users     UserStore
	bookings  *BookingService
	now       Clock
}

func NewAdminService(analytics AnalyticsStore, users UserStore, bookings *BookingService) *AdminService {
	return &AdminService{analytics: analytics, users: users, bookings: bookings, now: time.Now}
}

func (s *AdminService) Dashboard(ctx context.Context) (*entities.DashboardSummary, error) {
	return s.analytics.Dashboard(ctx, timeutil.Today(s.now()))
}

func (s *AdminService) Occupancy(ctx context.Context, from, to string) ([]entities.OccupancyPoint, error) {
	if from != "" {
		if _, err := timeutil.ParseDate(from); err != nil {
			return nil, apperr.InvalidInput(err.Error())
		}
	}
	if to != "" {
		if _, err := timeutil.ParseDate(to); err != nil {
			return nil, apperr.InvalidInput(err.Error())
		}
	}
	return s.analytics.Occupancy(ctx, from, to)
}

func (s *AdminService) ListUsers(ctx context.Context, role string) ([]db.User, error) {
	if role != "" && !auth.ValidRole(role) {
		return nil, apperr.InvalidInput("role must be employee, manager or admin.")
	}
	return s.users.List(ctx, role)
}

func (s *AdminService) UpdateUser(ctx context.Context, id int, req entities.UserUpdate) (*db.User, error) {
	if req.Role != nil && !auth.ValidRole(*req.Role) {
		return nil, apperr.InvalidInput("role must be employee, manager or admin.")
	}
	return s.users.Update(ctx, id, req)
}

// OverrideBooking force-cancels any booking on behalf of an admin; the freed
// window goes through the usual reallocation.
func (s *AdminService) OverrideBooking(ctx context.Context, p *auth.Principal, id int, req entities.OverrideBookingRequest) (*db.Booking, error) {
	if req.Action != "cancel" {
		return nil, apperr.InvalidInput("Unknown action.")
	}
	reason := req.Reason
	if reason == "" {
		reason = "Admin override"
	}
	return s.bookings.CancelBooking(ctx, p, id, reason)
}
