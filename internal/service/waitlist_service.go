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

// WaitlistService owns the waitlist side of the allocation engine, including
// reallocation of freed windows.
type WaitlistService struct {
	waitlist WaitlistStore
	slots    SlotStore
	bookings BookingStore
	users    UserStore
	notifier Notifier

	graceMinutes   int
	confirmMinutes int
	now            Clock
}

func NewWaitlistService(waitlist WaitlistStore, slots SlotStore, bookings BookingStore, users UserStore, notifier Notifier, graceMinutes, confirmMinutes int) *WaitlistService {
	return &WaitlistService{
		waitlist:       waitlist,
		slots:          slots,
		bookings:       bookings,
		users:          users,
		notifier:       notifier,
		graceMinutes:   graceMinutes,
		confirmMinutes: confirmMinutes,
		now:            time.Now,
	}
}

// WithClock pins the service clock; tests only.
func (s *WaitlistService) WithClock(c Clock) *WaitlistService {
	s.now = c
	return s
}

// Join appends the caller to the waitlist for (date, type) unless they
// already wait on an overlapping window that day.
func (s *WaitlistService) Join(ctx context.Context, p *auth.Principal, req entities.JoinWaitlistRequest) (*db.WaitlistEntry, error) {
	if req.BookingDate == "" || req.PreferredStartTime == "" || req.PreferredEndTime == "" || req.SlotType == "" {
		return nil, apperr.InvalidInput("booking_date, preferred_start_time, preferred_end_time and slot_type are required.")
	}
	if err := validateWindow(req.BookingDate, req.PreferredStartTime, req.PreferredEndTime); err != nil {
		return nil, err
	}
	if !db.ValidSlotType(req.SlotType) {
		return nil, apperr.InvalidInput("slot_type must be two-wheeler or four-wheeler.")
	}

	duplicate, err := s.waitlist.HasOverlappingWaiting(ctx, p.ID, req.BookingDate, req.PreferredStartTime, req.PreferredEndTime)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, apperr.Conflict("You are already on the waitlist for this time.")
	}

	entry := &db.WaitlistEntry{
		UserID:             p.ID,
		BookingDate:        req.BookingDate,
		PreferredStartTime: req.PreferredStartTime,
		PreferredEndTime:   req.PreferredEndTime,
		SlotType:           req.SlotType,
	}
	if err := s.waitlist.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.notify(notification.WaitlistJoined(principalRecipient(p), entry))
	return entry, nil
}

func (s *WaitlistService) GetMyWaitlist(ctx context.Context, p *auth.Principal) ([]db.WaitlistEntry, error) {
	return s.waitlist.ListByUser(ctx, p.ID)
}

func (s *WaitlistService) ListAll(ctx context.Context, date, status string) ([]db.WaitlistEntry, error) {
	return s.waitlist.ListAll(ctx, date, status)
}

// Leave withdraws a live entry (owner or admin).
func (s *WaitlistService) Leave(ctx context.Context, p *auth.Principal, id int) error {
	entry, err := s.waitlist.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.UserID != p.ID && !p.IsAdmin() {
		return apperr.Forbidden("Access denied.")
	}
	return s.waitlist.Withdraw(ctx, id)
}

// Confirm turns a notified entry into a booking. Past the confirmation
// deadline the entry expires and the call fails. When no fitting slot is left
// the entry stays notified and the caller may retry inside the window.
func (s *WaitlistService) Confirm(ctx context.Context, p *auth.Principal, id int) (*db.Booking, error) {
	entry, err := s.waitlist.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != p.ID {
		return nil, apperr.Forbidden("Access denied.")
	}
	if entry.Status != db.WaitlistStatusNotified {
		return nil, apperr.Conflict("This entry is not awaiting confirmation.")
	}

	now := s.now().UTC()
	if entry.ConfirmationDeadline != nil && now.After(*entry.ConfirmationDeadline) {
		if err := s.waitlist.ExpireIfNotified(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperr.Expired("Confirmation window expired.")
	}

	deadline, err := timeutil.GraceDeadline(entry.BookingDate, entry.PreferredStartTime, s.graceMinutes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "Invalid waitlist window.", err)
	}

	// Win the notified → booked transition before creating anything; if the
	// expiry sweep got there first, no booking must exist. The claim is rolled
	// back when no booking comes out of it.
	if err := s.waitlist.MarkBooked(ctx, id); err != nil {
		return nil, err
	}

	slot, err := s.slots.FirstFit(ctx, entry.SlotType, auth.AccessibleCategories(p.Role),
		entry.BookingDate, entry.PreferredStartTime, entry.PreferredEndTime)
	if err != nil {
		s.releaseClaim(ctx, id)
		return nil, err
	}
	if slot == nil {
		s.releaseClaim(ctx, id)
		return nil, apperr.Conflict("No slots available anymore for your preferred window.")
	}

	booking := &db.Booking{
		Code:          uuid.NewString(),
		UserID:        p.ID,
		SlotID:        slot.ID,
		BookingDate:   entry.BookingDate,
		StartTime:     entry.PreferredStartTime,
		EndTime:       entry.PreferredEndTime,
		GraceDeadline: deadline,
	}
	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		s.releaseClaim(ctx, id)
		return nil, err
	}

	s.notify(notification.BookingConfirmed(principalRecipient(p), booking, slot))
	return booking, nil
}

// releaseClaim puts a claimed entry back to notified after a confirmation
// that produced no booking. The entry keeps its original deadline, so a
// lapsed one is picked up by the next confirmation sweep.
func (s *WaitlistService) releaseClaim(ctx context.Context, id int) {
	if err := s.waitlist.ReopenIfBooked(ctx, id); err != nil {
		log.Printf("Releasing waitlist claim %d failed: %v", id, err)
	}
}

// TriggerReallocation matches a freed window to the oldest fitting waiting
// entry for (date, slot type) and notifies it. At most one entry is notified
// per freeing event; the claim is atomic in the store.
func (s *WaitlistService) TriggerReallocation(ctx context.Context, slot *db.Slot, date, freedStart, freedEnd string) {
	now := s.now().UTC()
	deadline := now.Add(time.Duration(s.confirmMinutes) * time.Minute)

	entry, err := s.waitlist.ClaimOldestFitting(ctx, date, slot.SlotType, freedStart, freedEnd, now, deadline)
	if err != nil {
		log.Printf("Waitlist reallocation for slot %s on %s failed: %v", slot.Code, date, err)
		return
	}
	if entry == nil {
		return
	}

	s.notifyEntryUser(ctx, entry, slot)
}

// PromoteAfter notifies the oldest waiting entry created strictly after the
// given instant, the chained promotion used when a notified entry lapses.
// The next entry is matched by (date, type) only; the fit against a concrete
// slot is re-checked at confirmation time.
func (s *WaitlistService) PromoteAfter(ctx context.Context, date, slotType string, after time.Time) (*db.WaitlistEntry, error) {
	now := s.now().UTC()
	deadline := now.Add(time.Duration(s.confirmMinutes) * time.Minute)

	entry, err := s.waitlist.ClaimNextAfter(ctx, date, slotType, after, now, deadline)
	if err != nil || entry == nil {
		return nil, err
	}

	slot, err := s.slots.AnyActiveOfType(ctx, slotType)
	if err != nil {
		log.Printf("Promoted waitlist entry %d but slot lookup failed: %v", entry.ID, err)
		return entry, nil
	}
	if slot != nil {
		s.notifyEntryUser(ctx, entry, slot)
	}
	return entry, nil
}

func (s *WaitlistService) notifyEntryUser(ctx context.Context, entry *db.WaitlistEntry, slot *db.Slot) {
	user, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		log.Printf("Waitlist entry %d notified but user %d lookup failed: %v", entry.ID, entry.UserID, err)
		return
	}
	s.notify(notification.SlotAvailable(recipientFor(user), entry, slot))
}

func (s *WaitlistService) notify(m notification.Message) {
	if s.notifier != nil {
		s.notifier.Enqueue(m)
	}
}
