package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"kpark/internal/notification"
	"kpark/internal/timeutil"
)

const graceExpiredReason = "Grace period expired — no-show"

// SweeperService drives the deadline-based state transitions: grace expiry,
// waitlist confirmation expiry with chained promotion, pre-start reminders
// and the daily stale-date cleanup. Deadlines live on the records, so the
// sweeper is the single source of truth for expiry and survives restarts.
type SweeperService struct {
	bookings BookingStore
	waitlist WaitlistStore
	slots    SlotStore
	users    UserStore
	notifier Notifier
	log      NotificationLog

	waitlistSvc *WaitlistService
	now         Clock
}

func NewSweeperService(bookings BookingStore, waitlist WaitlistStore, slots SlotStore, users UserStore, notifier Notifier, notificationLog NotificationLog, waitlistSvc *WaitlistService) *SweeperService {
	return &SweeperService{
		bookings:    bookings,
		waitlist:    waitlist,
		slots:       slots,
		users:       users,
		notifier:    notifier,
		log:         notificationLog,
		waitlistSvc: waitlistSvc,
		now:         time.Now,
	}
}

// WithClock pins the sweeper clock; tests only.
func (s *SweeperService) WithClock(c Clock) *SweeperService {
	s.now = c
	return s
}

// Register installs the sweep schedules on the cron runner.
func (s *SweeperService) Register(c *cron.Cron) error {
	schedules := []struct {
		spec string
		run  func(context.Context)
	}{
		{"* * * * *", s.GraceSweep},
		{"* * * * *", s.ConfirmationSweep},
		{"*/5 * * * *", s.ReminderSweep},
		{"@midnight", s.DailyCleanup},
	}
	for _, sched := range schedules {
		run := sched.run
		if _, err := c.AddFunc(sched.spec, func() { run(context.Background()) }); err != nil {
			return err
		}
	}
	return nil
}

// GraceSweep cancels active, unarrived bookings whose grace deadline has
// passed and reallocates each freed window. One bad record never stops the
// rest of the tick.
func (s *SweeperService) GraceSweep(ctx context.Context) {
	now := s.now().UTC()
	expired, err := s.bookings.ListGraceExpired(ctx, now)
	if err != nil {
		log.Printf("[Grace Sweep] listing expired bookings: %v", err)
		return
	}

	for i := range expired {
		booking := &expired[i]
		if err := s.bookings.CancelIfActive(ctx, booking.ID, graceExpiredReason, now); err != nil {
			// Lost the race against an arrival or a user cancel; skip.
			log.Printf("[Grace Sweep] booking %s: %v", booking.Code, err)
			continue
		}

		slot, err := s.slots.GetByID(ctx, booking.SlotID)
		if err != nil {
			log.Printf("[Grace Sweep] booking %s cancelled but slot %d lookup failed: %v", booking.Code, booking.SlotID, err)
			continue
		}

		if user, err := s.users.GetByID(ctx, booking.UserID); err == nil {
			s.notify(notification.GraceExpired(recipientFor(user), booking, slot))
		}

		s.waitlistSvc.TriggerReallocation(ctx, slot, booking.BookingDate, booking.StartTime, booking.EndTime)
		log.Printf("[Grace Sweep] auto-cancelled booking %s (slot %s)", booking.Code, slot.Code)
	}
}

// ConfirmationSweep expires notified waitlist entries whose confirmation
// deadline has passed and promotes, for each, the next strictly later-created
// waiting entry of the same (date, type).
func (s *SweeperService) ConfirmationSweep(ctx context.Context) {
	now := s.now().UTC()
	lapsed, err := s.waitlist.ListExpiredConfirmations(ctx, now)
	if err != nil {
		log.Printf("[Waitlist Sweep] listing expired confirmations: %v", err)
		return
	}

	for i := range lapsed {
		entry := &lapsed[i]
		if err := s.waitlist.ExpireIfNotified(ctx, entry.ID); err != nil {
			// The user confirmed at the last instant; the conditional
			// transition lets exactly one side win.
			log.Printf("[Waitlist Sweep] entry %d: %v", entry.ID, err)
			continue
		}

		next, err := s.waitlistSvc.PromoteAfter(ctx, entry.BookingDate, entry.SlotType, entry.CreatedAt)
		if err != nil {
			log.Printf("[Waitlist Sweep] promoting after entry %d: %v", entry.ID, err)
			continue
		}
		if next != nil {
			log.Printf("[Waitlist Sweep] expired entry %d, promoted entry %d", entry.ID, next.ID)
		} else {
			log.Printf("[Waitlist Sweep] expired entry %d, queue empty", entry.ID)
		}
	}
}

// ReminderSweep notifies owners of bookings starting about 30 minutes out.
// The delivery log keyed by booking code dedupes re-sends across ticks.
func (s *SweeperService) ReminderSweep(ctx context.Context) {
	now := s.now().UTC()
	from := timeutil.Clock(now.Add(25 * time.Minute))
	to := timeutil.Clock(now.Add(35 * time.Minute))
	if to < from {
		// Window crosses midnight; tomorrow's bookings are out of scope for
		// a same-day reminder.
		return
	}

	upcoming, err := s.bookings.ListStartingBetween(ctx, timeutil.Today(now), from, to)
	if err != nil {
		log.Printf("[Reminder Sweep] listing upcoming bookings: %v", err)
		return
	}

	for i := range upcoming {
		booking := &upcoming[i]
		sent, err := s.log.Exists(ctx, booking.Code, notification.TypeBookingReminder)
		if err != nil {
			log.Printf("[Reminder Sweep] dedupe lookup for %s: %v", booking.Code, err)
			continue
		}
		if sent {
			continue
		}

		slot, err := s.slots.GetByID(ctx, booking.SlotID)
		if err != nil {
			log.Printf("[Reminder Sweep] slot %d lookup for %s: %v", booking.SlotID, booking.Code, err)
			continue
		}
		user, err := s.users.GetByID(ctx, booking.UserID)
		if err != nil {
			log.Printf("[Reminder Sweep] user %d lookup for %s: %v", booking.UserID, booking.Code, err)
			continue
		}
		s.notify(notification.BookingReminder(recipientFor(user), booking, slot))
	}
}

// DailyCleanup expires stale rows: active bookings and waiting entries whose
// date has passed.
func (s *SweeperService) DailyCleanup(ctx context.Context) {
	today := timeutil.Today(s.now())

	expiredBookings, err := s.bookings.ExpireBefore(ctx, today)
	if err != nil {
		log.Printf("[Daily Cleanup] expiring bookings: %v", err)
	} else if expiredBookings > 0 {
		log.Printf("[Daily Cleanup] expired %d stale bookings", expiredBookings)
	}

	expiredEntries, err := s.waitlist.ExpireBefore(ctx, today)
	if err != nil {
		log.Printf("[Daily Cleanup] expiring waitlist entries: %v", err)
	} else if expiredEntries > 0 {
		log.Printf("[Daily Cleanup] expired %d stale waitlist entries", expiredEntries)
	}
}

func (s *SweeperService) notify(m notification.Message) {
	if s.notifier != nil {
		s.notifier.Enqueue(m)
	}
}
