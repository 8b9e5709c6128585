package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"kpark/internal/apperr"
	"kpark/internal/auth"
	"kpark/internal/db"
	"kpark/internal/entities"
	"kpark/internal/notification"
	"kpark/internal/timeutil"
)

// Reallocator matches a freed window to the oldest fitting waitlist entry.
type Reallocator interface {
	TriggerReallocation(ctx context.Context, slot *db.Slot, date, freedStart, freedEnd string)
}

// BookingService owns the reservation side of the allocation engine. All
// booking mutation goes through here so the no-overlap invariant is enforced
// in one place.
type BookingService struct {
	slots    SlotStore
	bookings BookingStore
	notifier Notifier
	realloc  Reallocator

	graceMinutes int
	now          Clock
}

func NewBookingService(slots SlotStore, bookings BookingStore, notifier Notifier, realloc Reallocator, graceMinutes int) *BookingService {
	return &BookingService{
		slots:        slots,
		bookings:     bookings,
		notifier:     notifier,
		realloc:      realloc,
		graceMinutes: graceMinutes,
		now:          time.Now,
	}
}

// WithClock pins the service clock; tests only.
func (s *BookingService) WithClock(c Clock) *BookingService {
	s.now = c
	return s
}

func (s *BookingService) CreateBooking(ctx context.Context, p *auth.Principal, req entities.CreateBookingRequest) (*db.Booking, error) {
	if req.SlotID == 0 || req.BookingDate == "" || req.StartTime == "" || req.EndTime == "" {
		return nil, apperr.InvalidInput("slot_id, booking_date, start_time and end_time are required.")
	}
	if err := validateWindow(req.BookingDate, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.IsActive {
		return nil, apperr.NotFound("Slot not found or inactive.")
	}
	if !auth.CanAccessCategory(p.Role, slot.Category) {
		return nil, apperr.Forbidden("You are not allowed to book this slot category.")
	}

	deadline, err := timeutil.GraceDeadline(req.BookingDate, req.StartTime, s.graceMinutes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "Invalid booking window.", err)
	}

	booking := &db.Booking{
		Code:          uuid.NewString(),
		UserID:        p.ID,
		SlotID:        slot.ID,
		BookingDate:   req.BookingDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		GraceDeadline: deadline,
	}
	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		return nil, err
	}

	s.notify(notification.BookingConfirmed(principalRecipient(p), booking, slot))
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, p *auth.Principal, id int) (*db.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != p.ID && !p.IsAdmin() {
		return nil, apperr.Forbidden("Access denied.")
	}
	return booking, nil
}

// GetMyBookings lists the caller's bookings; with upcoming set, only active
// bookings from today onwards.
func (s *BookingService) GetMyBookings(ctx context.Context, p *auth.Principal, status string, upcoming bool) ([]db.Booking, error) {
	upcomingFrom := ""
	if upcoming {
		upcomingFrom = timeutil.Today(s.now())
	}
	return s.bookings.ListByUser(ctx, p.ID, status, upcomingFrom)
}

func (s *BookingService) ListAllBookings(ctx context.Context, f entities.BookingFilter) ([]db.Booking, error) {
	return s.bookings.ListAll(ctx, f)
}

// MarkArrival records the owner's arrival, which disables grace expiry.
func (s *BookingService) MarkArrival(ctx context.Context, p *auth.Principal, id int) (*db.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != p.ID {
		return nil, apperr.Forbidden("Access denied.")
	}
	if booking.Status != db.BookingStatusActive {
		return nil, apperr.Conflict("Booking is not active.")
	}
	if booking.ArrivedAt != nil {
		return nil, apperr.Conflict("Arrival already marked.")
	}

	if err := s.bookings.MarkArrival(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, id)
}

// ExtendBooking pushes the end time out by extraMinutes, at most twice per
// booking, and only when the delta window is free.
func (s *BookingService) ExtendBooking(ctx context.Context, p *auth.Principal, id, extraMinutes int) (*db.Booking, error) {
	if extraMinutes <= 0 {
		return nil, apperr.InvalidInput("extra_minutes must be a positive number.")
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != p.ID {
		return nil, apperr.Forbidden("Access denied.")
	}
	if booking.Status != db.BookingStatusActive {
		return nil, apperr.Conflict("Cannot extend an inactive booking.")
	}
	if booking.ExtensionCount >= db.MaxExtensions {
		return nil, apperr.Newf(apperr.KindConflict, "Maximum %d extensions allowed per booking.", db.MaxExtensions)
	}

	newEnd := timeutil.AddMinutes(booking.EndTime, extraMinutes)
	if newEnd <= booking.EndTime {
		// Wrapped past midnight; bookings are same-day only.
		return nil, apperr.InvalidInput("Extension cannot cross midnight.")
	}

	if err := s.bookings.ExtendIfAvailable(ctx, id, newEnd); err != nil {
		return nil, err
	}

	booking, err = s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slot, slotErr := s.slots.GetByID(ctx, booking.SlotID)
	if slotErr == nil {
		s.notify(notification.BookingExtended(principalRecipient(p), booking, slot))
	}
	return booking, nil
}

// CancelBooking cancels an active booking (owner or admin) and hands the
// freed window to the waitlist.
func (s *BookingService) CancelBooking(ctx context.Context, p *auth.Principal, id int, reason string) (*db.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != p.ID && !p.IsAdmin() {
		return nil, apperr.Forbidden("Access denied.")
	}
	if booking.Status != db.BookingStatusActive {
		return nil, apperr.Conflict("Booking is not active.")
	}
	if reason == "" {
		reason = "User cancelled"
		if p.IsAdmin() && booking.UserID != p.ID {
			reason = "Admin override"
		}
	}

	if err := s.bookings.CancelIfActive(ctx, id, reason, s.now().UTC()); err != nil {
		return nil, err
	}
	booking, err = s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slot, slotErr := s.slots.GetByID(ctx, booking.SlotID)
	if slotErr != nil {
		log.Printf("Cancelled booking %s but could not load slot %d: %v", booking.Code, booking.SlotID, slotErr)
		return booking, nil
	}

	s.notify(notification.BookingCancelled(principalRecipient(p), booking, slot, reason))
	s.realloc.TriggerReallocation(ctx, slot, booking.BookingDate, booking.StartTime, booking.EndTime)
	return booking, nil
}

func (s *BookingService) notify(m notification.Message) {
	if s.notifier != nil {
		s.notifier.Enqueue(m)
	}
}

func principalRecipient(p *auth.Principal) notification.Recipient {
	return notification.Recipient{
		UserID:        p.ID,
		Name:          p.Name,
		Phone:         p.Phone,
		Email:         p.Email,
		VehicleNumber: p.VehicleNumber,
	}
}

func validateWindow(date, start, end string) error {
	if _, err := timeutil.ParseDate(date); err != nil {
		return apperr.InvalidInput(err.Error())
	}
	if _, err := timeutil.ParseTime(start); err != nil {
		return apperr.InvalidInput(err.Error())
	}
	if _, err := timeutil.ParseTime(end); err != nil {
		return apperr.InvalidInput(err.Error())
	}
	if start >= end {
		return apperr.InvalidInput("start_time must be before end_time.")
	}
	return nil
}
