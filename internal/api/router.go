package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"kpark/internal/auth"
	"kpark/internal/mw"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Auth     *AuthHandler
	Slots    *SlotHandler
	Bookings *BookingHandler
	Waitlist *WaitlistHandler
	Admin    *AdminHandler
	Guard    *auth.Middleware
}

// NewRouter binds all routes under /api.
func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public auth endpoints, rate limited per client IP.
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.Use(mw.RateLimit(rate.Limit(1), 10))
	authRoutes.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(h.Guard.Protect)

	protected.HandleFunc("/slots", h.Slots.List).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{id:[0-9]+}", h.Slots.Get).Methods(http.MethodGet)

	bookingCreate := protected.NewRoute().Subrouter()
	bookingCreate.Use(mw.RateLimit(rate.Limit(2), 5))
	bookingCreate.HandleFunc("/bookings", h.Bookings.Create).Methods(http.MethodPost)

	protected.HandleFunc("/bookings", h.Bookings.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id:[0-9]+}", h.Bookings.Get).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id:[0-9]+}/arrival", h.Bookings.MarkArrival).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{id:[0-9]+}/extend", h.Bookings.Extend).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{id:[0-9]+}/cancel", h.Bookings.Cancel).Methods(http.MethodPatch)

	protected.HandleFunc("/waitlist", h.Waitlist.Join).Methods(http.MethodPost)
	protected.HandleFunc("/waitlist/my", h.Waitlist.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/waitlist/{id:[0-9]+}/confirm", h.Waitlist.Confirm).Methods(http.MethodPost)
	protected.HandleFunc("/waitlist/{id:[0-9]+}", h.Waitlist.Leave).Methods(http.MethodDelete)

	admin := protected.NewRoute().Subrouter()
	admin.Use(auth.RequireRoles(auth.RoleAdmin))
	admin.HandleFunc("/slots", h.Slots.Create).Methods(http.MethodPost)
	admin.HandleFunc("/slots/{id:[0-9]+}", h.Slots.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/slots/{id:[0-9]+}", h.Slots.Deactivate).Methods(http.MethodDelete)
	admin.HandleFunc("/bookings/all", h.Bookings.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/waitlist", h.Waitlist.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/admin/dashboard", h.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/admin/analytics/occupancy", h.Admin.Occupancy).Methods(http.MethodGet)
	admin.HandleFunc("/admin/users", h.Admin.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/admin/users/{id:[0-9]+}", h.Admin.UpdateUser).Methods(http.MethodPatch)
	admin.HandleFunc("/admin/bookings/{id:[0-9]+}/override", h.Admin.OverrideBooking).Methods(http.MethodPatch)

	return r
}
