package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kpark/internal/auth"
	"kpark/internal/entities"
	"kpark/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req entities.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	booking, err := h.Service.CreateBooking(r.Context(), p, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "Booking confirmed.", bookingResponse(booking))
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	q := r.URL.Query()
	bookings, err := h.Service.GetMyBookings(r.Context(), p, q.Get("status"), q.Get("upcoming") == "true")
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(bookings), bookingResponses(bookings))
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, _ := strconv.Atoi(q.Get("user_id"))
	bookings, err := h.Service.ListAllBookings(r.Context(), entities.BookingFilter{
		Status: q.Get("status"),
		Date:   q.Get("date"),
		UserID: userID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(bookings), bookingResponses(bookings))
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	booking, err := h.Service.GetBooking(r.Context(), p, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, bookingResponse(booking))
}

func (h *BookingHandler) MarkArrival(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	booking, err := h.Service.MarkArrival(r.Context(), p, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Arrival recorded.", bookingResponse(booking))
}

func (h *BookingHandler) Extend(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req entities.ExtendBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	booking, err := h.Service.ExtendBooking(r.Context(), p, id, req.ExtraMinutes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Booking extended.", bookingResponse(booking))
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req entities.CancelBookingRequest
	if r.Body != nil {
		// Reason is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	booking, err := h.Service.CancelBooking(r.Context(), p, id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Booking cancelled.", bookingResponse(booking))
}
