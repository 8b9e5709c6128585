package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"kpark/internal/apperr"
	"kpark/internal/auth"
	"kpark/internal/entities"
	"kpark/internal/service"
)

type SlotHandler struct {
	Service *service.SlotService
}

func NewSlotHandler(svc *service.SlotService) *SlotHandler {
	return &SlotHandler{Service: svc}
}

// List returns slots visible to the caller's role. When date, start_time and
// end_time are all given, each slot carries its availability for that window.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	q := r.URL.Query()
	slots, err := h.Service.List(r.Context(), p, q.Get("slot_type"), q.Get("date"), q.Get("start_time"), q.Get("end_time"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(slots), slots)
}

func (h *SlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	slot, err := h.Service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, slotResponse(slot))
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	slot, err := h.Service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Slot created.", slotResponse(slot))
}

func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req entities.SlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	slot, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Slot updated.", slotResponse(slot))
}

func (h *SlotHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Service.Deactivate(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Slot deactivated.", nil)
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("Invalid id.")
	}
	return id, nil
}
