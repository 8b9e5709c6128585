package notification

import (
	"fmt"

	"kpark/internal/db"
)

// Template types, mirrored in the notifications log.
const (
	TypeBookingConfirmed = "booking_confirmed"
	TypeBookingCancelled = "booking_cancelled"
	TypeBookingExtended  = "booking_extended"
	TypeGraceExpired     = "grace_expired"
	TypeWaitlistJoined   = "waitlist_joined"
	TypeSlotAvailable    = "waitlist_slot_available"
	TypeBookingReminder  = "booking_reminder"
)

// Recipient is the snapshot of a user the notifier needs. The notifier never
// reads domain state itself.
type Recipient struct {
	UserID        int
	Name          string
	Phone         string
	Email         string
	VehicleNumber string
}

// Message is one queued notification job.
type Message struct {
	Recipient Recipient
	Type      string
	Body      string
	// Reference ties the message to a domain record (booking code or
	// waitlist entry id) for dedupe lookups in the delivery log.
	Reference string
}

func BookingConfirmed(to Recipient, b *db.Booking, slot *db.Slot) Message {
	return Message{
		Recipient: to,
		Type:      TypeBookingConfirmed,
		Reference: b.Code,
		Body: fmt.Sprintf("K-Park: Booking Confirmed!\nSlot: %s (%s)\nDate: %s\nTime: %s - %s\nVehicle: %s",
			slot.Code, slot.Category, b.BookingDate, b.StartTime, b.EndTime, to.VehicleNumber),
	}
}

func BookingCancelled(to Recipient, b *db.Booking, slot *db.Slot, reason string) Message {
	detail := "You cancelled this booking."
	if reason != "" {
		detail = "Reason: " + reason
	}
	return Message{
		Recipient: to,
		Type:      TypeBookingCancelled,
		Reference: b.Code,
		Body: fmt.Sprintf("K-Park: Booking Cancelled\nSlot: %s | Date: %s\n%s",
			slot.Code, b.BookingDate, detail),
	}
}

func BookingExtended(to Recipient, b *db.Booking, slot *db.Slot) Message {
	return Message{
		Recipient: to,
		Type:      TypeBookingExtended,
		Reference: b.Code,
		Body: fmt.Sprintf("K-Park: Booking Extended\nSlot: %s\nNew end time: %s\nExtension %d/%d used",
			slot.Code, b.EndTime, b.ExtensionCount, db.MaxExtensions),
	}
}

func GraceExpired(to Recipient, b *db.Booking, slot *db.Slot) Message {
	return Message{
		Recipient: to,
		Type:      TypeGraceExpired,
		Reference: b.Code,
		Body: fmt.Sprintf("K-Park: Booking Auto-Cancelled\nSlot %s was released. No arrival confirmed within grace period.",
			slot.Code),
	}
}

func WaitlistJoined(to Recipient, entry *db.WaitlistEntry) Message {
	return Message{
		Recipient: to,
		Type:      TypeWaitlistJoined,
		Reference: fmt.Sprintf("waitlist-%d", entry.ID),
		Body: fmt.Sprintf("K-Park: You're on the Waitlist\nPosition: #%d\nWe'll notify you the moment a slot opens up.",
			entry.Position),
	}
}

func SlotAvailable(to Recipient, entry *db.WaitlistEntry, slot *db.Slot) Message {
	deadline := ""
	if entry.ConfirmationDeadline != nil {
		deadline = entry.ConfirmationDeadline.UTC().Format("15:04")
	}
	return Message{
		Recipient: to,
		Type:      TypeSlotAvailable,
		Reference: fmt.Sprintf("waitlist-%d", entry.ID),
		Body: fmt.Sprintf("K-Park: Slot Available!\nSlot %s is now free!\nConfirm within 10 minutes (by %s) or it goes to the next person.",
			slot.Code, deadline),
	}
}

func BookingReminder(to Recipient, b *db.Booking, slot *db.Slot) Message {
	return Message{
		Recipient: to,
		Type:      TypeBookingReminder,
		Reference: b.Code,
		Body: fmt.Sprintf("K-Park: Booking in 30 Minutes\nSlot: %s | Starts at: %s\nDon't forget to mark arrival after parking!",
			slot.Code, b.StartTime),
	}
}
