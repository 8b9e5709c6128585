package api

import (
	"encoding/json"
	"net/http"

	"kpark/internal/auth"
	"kpark/internal/entities"
	"kpark/internal/service"
)

type WaitlistHandler struct {
	Service *service.WaitlistService
}

func NewWaitlistHandler(svc *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{Service: svc}
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req entities.JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	entry, err := h.Service.Join(r.Context(), p, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Added to waitlist.", waitlistResponse(entry))
}

func (h *WaitlistHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	entries, err := h.Service.GetMyWaitlist(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(entries), waitlistResponses(entries))
}

func (h *WaitlistHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.Service.ListAll(r.Context(), q.Get("date"), q.Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(entries), waitlistResponses(entries))
}

// Confirm converts a notified waitlist entry into a booking.
func (h *WaitlistHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	booking, err := h.Service.Confirm(r.Context(), p, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Waitlist confirmed. Booking created.", bookingResponse(booking))
}

func (h *WaitlistHandler) Leave(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Service.Leave(r.Context(), p, id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Removed from waitlist.", nil)
}
