package api

import (
	"encoding/json"
	"net/http"

	"kpark/internal/auth"
	"kpark/internal/entities"
	"kpark/internal/service"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Dashboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, summary)
}

func (h *AdminHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	points, err := h.Service.Occupancy(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(points), points)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(users), userResponses(users))
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req entities.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	user, err := h.Service.UpdateUser(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "User updated.", userResponse(user))
}

func (h *AdminHandler) OverrideBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req entities.OverrideBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	booking, err := h.Service.OverrideBooking(r.Context(), p, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Booking overridden.", bookingResponse(booking))
}
