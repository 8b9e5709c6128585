package api

import (
	"kpark/internal/db"
	"kpark/internal/entities"
)

func slotResponse(s *db.Slot) entities.SlotResponse {
	return entities.SlotResponse{
		ID:        s.ID,
		Code:      s.Code,
		SlotType:  s.SlotType,
		Category:  s.Category,
		Floor:     s.Floor,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}

func bookingResponse(b *db.Booking) entities.BookingResponse {
	return entities.BookingResponse{
		ID:                 b.ID,
		Code:               b.Code,
		UserID:             b.UserID,
		SlotID:             b.SlotID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             b.Status,
		ArrivedAt:          b.ArrivedAt,
		IsExtended:         b.IsExtended,
		ExtensionCount:     b.ExtensionCount,
		GraceDeadline:      b.GraceDeadline,
		CancellationReason: b.CancellationReason.String,
		CreatedAt:          b.CreatedAt,
	}
}

func bookingResponses(bookings []db.Booking) []entities.BookingResponse {
	out := make([]entities.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookingResponse(&bookings[i]))
	}
	return out
}

func waitlistResponse(e *db.WaitlistEntry) entities.WaitlistEntryResponse {
	return entities.WaitlistEntryResponse{
		ID:                   e.ID,
		UserID:               e.UserID,
		BookingDate:          e.BookingDate,
		PreferredStartTime:   e.PreferredStartTime,
		PreferredEndTime:     e.PreferredEndTime,
		SlotType:             e.SlotType,
		Status:               e.Status,
		NotifiedAt:           e.NotifiedAt,
		ConfirmationDeadline: e.ConfirmationDeadline,
		Position:             e.Position,
		CreatedAt:            e.CreatedAt,
	}
}

func waitlistResponses(entries []db.WaitlistEntry) []entities.WaitlistEntryResponse {
	out := make([]entities.WaitlistEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, waitlistResponse(&entries[i]))
	}
	return out
}

func userResponse(u *db.User) entities.UserResponse {
	return entities.UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		VehicleNumber: u.VehicleNumber,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
	}
}

func userResponses(users []db.User) []entities.UserResponse {
	out := make([]entities.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return out
}
