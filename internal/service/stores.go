package service

import (
	"context"
	"time"

	"kpark/internal/db"
	"kpark/internal/entities"
	"kpark/internal/notification"
)

// Storage interfaces the services depend on. The Postgres repositories
// implement them; tests substitute in-memory fakes.

type SlotStore interface {
	Create(ctx context.Context, s *db.Slot) error
	GetByID(ctx context.Context, id int) (*db.Slot, error)
	List(ctx context.Context, f entities.SlotFilter) ([]db.Slot, error)
	ListWithAvailability(ctx context.Context, f entities.SlotFilter, date, start, end string) ([]entities.SlotAvailability, error)
	FirstFit(ctx context.Context, slotType string, categories []string, date, start, end string) (*db.Slot, error)
	AnyActiveOfType(ctx context.Context, slotType string) (*db.Slot, error)
	Update(ctx context.Context, id int, req entities.SlotUpdate) (*db.Slot, error)
	Deactivate(ctx context.Context, id int) error
}

type BookingStore interface {
	CreateIfAvailable(ctx context.Context, b *db.Booking) error
	GetByID(ctx context.Context, id int) (*db.Booking, error)
	ListByUser(ctx context.Context, userID int, status, upcomingFrom string) ([]db.Booking, error)
	ListAll(ctx context.Context, f entities.BookingFilter) ([]db.Booking, error)
	MarkArrival(ctx context.Context, id int, at time.Time) error
	ExtendIfAvailable(ctx context.Context, id int, newEnd string) error
	CancelIfActive(ctx context.Context, id int, reason string, at time.Time) error
	ListGraceExpired(ctx context.Context, now time.Time) ([]db.Booking, error)
	ListStartingBetween(ctx context.Context, date, from, to string) ([]db.Booking, error)
	ExpireBefore(ctx context.Context, cutoff string) (int64, error)
}

type WaitlistStore interface {
	Create(ctx context.Context, e *db.WaitlistEntry) error
	GetByID(ctx context.Context, id int) (*db.WaitlistEntry, error)
	HasOverlappingWaiting(ctx context.Context, userID int, date, start, end string) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]db.WaitlistEntry, error)
	ListAll(ctx context.Context, date, status string) ([]db.WaitlistEntry, error)
	ClaimOldestFitting(ctx context.Context, date, slotType, freedStart, freedEnd string, now, deadline time.Time) (*db.WaitlistEntry, error)
	ClaimNextAfter(ctx context.Context, date, slotType string, after, now, deadline time.Time) (*db.WaitlistEntry, error)
	MarkBooked(ctx context.Context, id int) error
	ReopenIfBooked(ctx context.Context, id int) error
	ExpireIfNotified(ctx context.Context, id int) error
	Withdraw(ctx context.Context, id int) error
	ListExpiredConfirmations(ctx context.Context, now time.Time) ([]db.WaitlistEntry, error)
	ExpireBefore(ctx context.Context, cutoff string) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, u *db.User, password string) error
	GetByID(ctx context.Context, id int) (*db.User, error)
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	List(ctx context.Context, role string) ([]db.User, error)
	Update(ctx context.Context, id int, req entities.UserUpdate) (*db.User, error)
}

type NotificationLog interface {
	Exists(ctx context.Context, reference, notificationType string) (bool, error)
}

// Notifier is the async, best-effort notification queue.
type Notifier interface {
	Enqueue(m notification.Message) bool
}

// Clock lets the sweeper tests pin time.
type Clock func() time.Time

func recipientFor(u *db.User) notification.Recipient {
	return notification.Recipient{
		UserID:        u.ID,
		Name:          u.Name,
		Phone:         u.Phone,
		Email:         u.Email,
		VehicleNumber: u.VehicleNumber,
	}
}
