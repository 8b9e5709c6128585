package entities

import "time"

type SlotResponse struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	SlotType  string    `json:"slot_type"`
	Category  string    `json:"category"`
	Floor     string    `json:"floor"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotAvailability is a slot plus its availability for a requested window.
type SlotAvailability struct {
	SlotResponse
	IsAvailableForWindow bool `json:"is_available_for_window"`
}

type BookingResponse struct {
	ID                 int        `json:"id"`
	Code               string     `json:"code"`
	UserID             int        `json:"user_id"`
	SlotID             int        `json:"slot_id"`
	SlotCode           string     `json:"slot_code,omitempty"`
	BookingDate        string     `json:"booking_date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	Status             string     `json:"status"`
	ArrivedAt          *time.Time `json:"arrived_at"`
	IsExtended         bool       `json:"is_extended"`
	ExtensionCount     int        `json:"extension_count"`
	GraceDeadline      time.Time  `json:"grace_deadline"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type WaitlistEntryResponse struct {
	ID                   int        `json:"id"`
	UserID               int        `json:"user_id"`
	BookingDate          string     `json:"booking_date"`
	PreferredStartTime   string     `json:"preferred_start_time"`
	PreferredEndTime     string     `json:"preferred_end_time"`
	SlotType             string     `json:"slot_type"`
	Status               string     `json:"status"`
	NotifiedAt           *time.Time `json:"notified_at"`
	ConfirmationDeadline *time.Time `json:"confirmation_deadline"`
	Position             int        `json:"position"`
	CreatedAt            time.Time  `json:"created_at"`
}

type UserResponse struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	VehicleNumber string    `json:"vehicle_number"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SlotBreakdown counts active slots per (category, slot type).
type SlotBreakdown struct {
	Category string `json:"category"`
	SlotType string `json:"slot_type"`
	Count    int    `json:"count"`
}

type DashboardSummary struct {
	TotalUsers          int             `json:"total_users"`
	TotalSlots          int             `json:"total_slots"`
	ActiveBookingsToday int             `json:"active_bookings_today"`
	AvailableSlotsToday int             `json:"available_slots_today"`
	TotalBookings       int             `json:"total_bookings"`
	WaitlistToday       int             `json:"waitlist_today"`
	SlotBreakdown       []SlotBreakdown `json:"slot_breakdown"`
}

// OccupancyPoint is one date's share of the occupancy analytics range.
type OccupancyPoint struct {
	Date         string `json:"date"`
	BookingCount int    `json:"booking_count"`
	UniqueUsers  int    `json:"unique_users"`
}
