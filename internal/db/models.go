package db

import (
	"database/sql"
	"time"
)

// Slot types and categories.
const (
	SlotTypeTwoWheeler  = "two-wheeler"
	SlotTypeFourWheeler = "four-wheeler"

	CategoryGeneral = "general"
	CategoryManager = "manager"
)

// Booking lifecycle. Active is the only non-terminal state.
const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
	BookingStatusExpired   = "expired"
	BookingStatusCompleted = "completed"
)

// Waitlist lifecycle. Booked and expired are terminal.
const (
	WaitlistStatusWaiting  = "waiting"
	WaitlistStatusNotified = "notified"
	WaitlistStatusBooked   = "booked"
	WaitlistStatusExpired  = "expired"
)

// MaxExtensions caps how many times a booking's end time may be pushed out.
const MaxExtensions = 2

type User struct {
	ID            int
	Name          string
	Email         string
	PasswordHash  string
	Phone         string
	Role          string
	VehicleNumber string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Slot struct {
	ID        int
	Code      string
	SlotType  string
	Category  string
	Floor     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Booking struct {
	ID                 int
	Code               string
	UserID             int
	SlotID             int
	BookingDate        string // YYYY-MM-DD
	StartTime          string // HH:MM, 24h
	EndTime            string
	Status             string
	ArrivedAt          *time.Time
	IsExtended         bool
	ExtensionCount     int
	GraceDeadline      time.Time
	CancellationReason sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type WaitlistEntry struct {
	ID                   int
	UserID               int
	BookingDate          string
	PreferredStartTime   string
	PreferredEndTime     string
	SlotType             string
	Status               string
	NotifiedAt           *time.Time
	ConfirmationDeadline *time.Time
	Position             int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Notification struct {
	ID        int
	UserID    int
	Phone     string
	Type      string
	Message   string
	Status    string
	Reference string
	TwilioSID sql.NullString
	CreatedAt time.Time
}

// ValidSlotType reports whether t is a known slot type.
func ValidSlotType(t string) bool {
	return t == SlotTypeTwoWheeler || t == SlotTypeFourWheeler
}

// ValidCategory reports whether c is a known slot category.
func ValidCategory(c string) bool {
	return c == CategoryGeneral || c == CategoryManager
}
