package entities

// CreateBookingRequest is the payload for POST /api/bookings.
type CreateBookingRequest struct {
	SlotID      int    `json:"slot_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type ExtendBookingRequest struct {
	ExtraMinutes int `json:"extra_minutes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type JoinWaitlistRequest struct {
	BookingDate        string `json:"booking_date"`
	PreferredStartTime string `json:"preferred_start_time"`
	PreferredEndTime   string `json:"preferred_end_time"`
	SlotType           string `json:"slot_type"`
}

type CreateSlotRequest struct {
	Code     string `json:"code"`
	SlotType string `json:"slot_type"`
	Category string `json:"category"`
	Floor    string `json:"floor"`
}

// SlotUpdate carries a partial slot edit; nil fields are left unchanged.
type SlotUpdate struct {
	Code     *string `json:"code"`
	SlotType *string `json:"slot_type"`
	Category *string `json:"category"`
	Floor    *string `json:"floor"`
	IsActive *bool   `json:"is_active"`
}

// UserUpdate carries a partial admin edit of a user; nil fields are left
// unchanged.
type UserUpdate struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Role          *string `json:"role"`
	VehicleNumber *string `json:"vehicle_number"`
	IsActive      *bool   `json:"is_active"`
}

type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	VehicleNumber string `json:"vehicle_number"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OverrideBookingRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// SlotFilter narrows slot listings.
type SlotFilter struct {
	SlotType   string
	Categories []string
	ActiveOnly bool
}

// BookingFilter narrows the admin booking listing.
type BookingFilter struct {
	Status string
	Date   string
	UserID int
}
