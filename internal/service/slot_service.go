package service

import (
	"context"
	"strings"

	"kpark/internal/apperr"
	"kpark/internal/auth"
	"kpark/internal/db"
	"kpark/internal/entities"
)

// SlotService is the slot registry: the catalog of allocatable spaces.
type SlotService struct {
	slots SlotStore
}

func NewSlotService(slots SlotStore) *SlotService {
	return &SlotService{slots: slots}
}

// List returns the active slots visible to the caller's role. When a date and
// window are given, each slot carries a real-time availability flag computed
// against active bookings.
func (s *SlotService) List(ctx context.Context, p *auth.Principal, slotType, date, start, end string) ([]entities.SlotAvailability, error) {
	if slotType != "" && !db.ValidSlotType(slotType) {
		return nil, apperr.InvalidInput("slot_type must be two-wheeler or four-wheeler.")
	}
	filter := entities.SlotFilter{
		SlotType:   slotType,
		Categories: auth.AccessibleCategories(p.Role),
		ActiveOnly: true,
	}

	if date != "" && start != "" && end != "" {
		if err := validateWindow(date, start, end); err != nil {
			return nil, err
		}
		return s.slots.ListWithAvailability(ctx, filter, date, start, end)
	}

	slots, err := s.slots.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]entities.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		result = append(result, entities.SlotAvailability{
			SlotResponse: entities.SlotResponse{
				ID:        slot.ID,
				Code:      slot.Code,
				SlotType:  slot.SlotType,
				Category:  slot.Category,
				Floor:     slot.Floor,
				IsActive:  slot.IsActive,
				CreatedAt: slot.CreatedAt,
			},
			IsAvailableForWindow: true,
		})
	}
	return result, nil
}

func (s *SlotService) Get(ctx context.Context, id int) (*db.Slot, error) {
	return s.slots.GetByID(ctx, id)
}

func (s *SlotService) Create(ctx context.Context, req entities.CreateSlotRequest) (*db.Slot, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperr.InvalidInput("code is required.")
	}
	if !db.ValidSlotType(req.SlotType) {
		return nil, apperr.InvalidInput("slot_type must be two-wheeler or four-wheeler.")
	}
	category := req.Category
	if category == "" {
		category = db.CategoryGeneral
	}
	if !db.ValidCategory(category) {
		return nil, apperr.InvalidInput("category must be general or manager.")
	}
	floor := req.Floor
	if floor == "" {
		floor = "G"
	}

	slot := &db.Slot{Code: code, SlotType: req.SlotType, Category: category, Floor: floor}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *SlotService) Update(ctx context.Context, id int, req entities.SlotUpdate) (*db.Slot, error) {
	if req.SlotType != nil && !db.ValidSlotType(*req.SlotType) {
		return nil, apperr.InvalidInput("slot_type must be two-wheeler or four-wheeler.")
	}
	if req.Category != nil && !db.ValidCategory(*req.Category) {
		return nil, apperr.InvalidInput("category must be general or manager.")
	}
	return s.slots.Update(ctx, id, req)
}

// Deactivate soft-deletes a slot; historical bookings stay intact.
func (s *SlotService) Deactivate(ctx context.Context, id int) error {
	return s.slots.Deactivate(ctx, id)
}
