package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kpark/internal/apperr"
	"kpark/internal/db"
	"kpark/internal/entities"
	"kpark/internal/notification"
	"kpark/internal/timeutil"
)

// memStore is an in-memory stand-in for the Postgres repositories. It keeps
// the same conditional-transition semantics so the race-sensitive service
// paths behave the way they do against the real store.
type memStore struct {
	mu sync.Mutex

	slots    map[int]*db.Slot
	bookings map[int]*db.Booking
	entries  map[int]*db.WaitlistEntry
	users    map[int]*db.User

	nextSlotID    int
	nextBookingID int
	nextEntryID   int
	nextUserID    int

	// created_at ordering for FIFO claims; strictly monotonic.
	seq time.Time
}

func newMemStore() *memStore {
	return &memStore{
		slots:    make(map[int]*db.Slot),
		bookings: make(map[int]*db.Booking),
		entries:  make(map[int]*db.WaitlistEntry),
		users:    make(map[int]*db.User),
		seq:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.seq = m.seq.Add(time.Second)
	return m.seq
}

func (m *memStore) addSlot(code, slotType, category string) *db.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSlotID++
	s := &db.Slot{
		ID:       m.nextSlotID,
		Code:     code,
		SlotType: slotType,
		Category: category,
		Floor:    "G",
		IsActive: true,
	}
	m.slots[s.ID] = s
	return s
}

func (m *memStore) addUser(name, role string) *db.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := &db.User{
		ID:       m.nextUserID,
		Name:     name,
		Email:    name + "@kpark.test",
		Phone:    "+919000000000",
		Role:     role,
		IsActive: true,
	}
	m.users[u.ID] = u
	return u
}

// SlotStore

func (m *memStore) Create(ctx context.Context, s *db.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.slots {
		if existing.Code == s.Code {
			return apperr.Conflict("A slot with this code already exists.")
		}
	}
	m.nextSlotID++
	s.ID = m.nextSlotID
	cp := *s
	m.slots[s.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id int) (*db.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, apperr.NotFound("Slot not found.")
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) List(ctx context.Context, f entities.SlotFilter) ([]db.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Slot
	for _, s := range m.sortedSlots() {
		if m.slotMatches(s, f) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) ListWithAvailability(ctx context.Context, f entities.SlotFilter, date, start, end string) ([]entities.SlotAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.SlotAvailability
	for _, s := range m.sortedSlots() {
		if !m.slotMatches(s, f) {
			continue
		}
		out = append(out, entities.SlotAvailability{
			SlotResponse: entities.SlotResponse{
				ID: s.ID, Code: s.Code, SlotType: s.SlotType,
				Category: s.Category, Floor: s.Floor, IsActive: s.IsActive,
			},
			IsAvailableForWindow: m.slotFree(s.ID, date, start, end, 0),
		})
	}
	return out, nil
}

func (m *memStore) FirstFit(ctx context.Context, slotType string, categories []string, date, start, end string) (*db.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sortedSlots() {
		if !s.IsActive || s.SlotType != slotType || !containsStr(categories, s.Category) {
			continue
		}
		if m.slotFree(s.ID, date, start, end, 0) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) AnyActiveOfType(ctx context.Context, slotType string) (*db.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sortedSlots() {
		if s.IsActive && s.SlotType == slotType {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) Update(ctx context.Context, id int, req entities.SlotUpdate) (*db.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, apperr.NotFound("Slot not found.")
	}
	if req.Code != nil {
		s.Code = *req.Code
	}
	if req.SlotType != nil {
		s.SlotType = *req.SlotType
	}
	if req.Category != nil {
		s.Category = *req.Category
	}
	if req.Floor != nil {
		s.Floor = *req.Floor
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) Deactivate(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return apperr.NotFound("Slot not found.")
	}
	s.IsActive = false
	return nil
}

// BookingStore

func (m *memStore) CreateIfAvailable(ctx context.Context, b *db.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[b.SlotID]; !ok {
		return apperr.NotFound("Slot not found.")
	}
	for _, other := range m.bookings {
		if other.Status != db.BookingStatusActive || other.BookingDate != b.BookingDate {
			continue
		}
		if other.UserID == b.UserID && timeutil.Overlaps(other.StartTime, other.EndTime, b.StartTime, b.EndTime) {
			return apperr.Conflict("You already have a booking that overlaps with this time.")
		}
	}
	if !m.slotFree(b.SlotID, b.BookingDate, b.StartTime, b.EndTime, 0) {
		return apperr.Conflict("Slot is already booked for the selected time. Consider joining the waitlist.").
			WithHint(apperr.HintJoinWaitlist)
	}
	m.nextBookingID++
	b.ID = m.nextBookingID
	b.Status = db.BookingStatusActive
	b.CreatedAt = m.tick()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memStore) GetBookingByID(ctx context.Context, id int) (*db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperr.NotFound("Booking not found.")
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID int, status, upcomingFrom string) ([]db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Booking
	for _, b := range m.bookings {
		if b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		if upcomingFrom != "" && (b.BookingDate < upcomingFrom || b.Status != db.BookingStatusActive) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context, f entities.BookingFilter) ([]db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Booking
	for _, b := range m.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Date != "" && b.BookingDate != f.Date {
			continue
		}
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) MarkArrival(ctx context.Context, id int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != db.BookingStatusActive || b.ArrivedAt != nil {
		return apperr.Conflict("Booking is not active or arrival is already marked.")
	}
	t := at
	b.ArrivedAt = &t
	return nil
}

func (m *memStore) ExtendIfAvailable(ctx context.Context, id int, newEnd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return apperr.NotFound("Booking not found.")
	}
	if !m.slotFree(b.SlotID, b.BookingDate, b.EndTime, newEnd, b.ID) {
		return apperr.Conflict("Cannot extend: slot is booked right after your current end time.")
	}
	if b.Status != db.BookingStatusActive || b.ExtensionCount >= db.MaxExtensions {
		return apperr.Conflict("Booking is not active or has used all extensions.")
	}
	b.EndTime = newEnd
	b.IsExtended = true
	b.ExtensionCount++
	return nil
}

func (m *memStore) CancelIfActive(ctx context.Context, id int, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != db.BookingStatusActive {
		return apperr.Conflict("Booking is not active.")
	}
	b.Status = db.BookingStatusCancelled
	b.CancellationReason.String = reason
	b.CancellationReason.Valid = true
	b.UpdatedAt = at
	return nil
}

func (m *memStore) ListGraceExpired(ctx context.Context, now time.Time) ([]db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Booking
	for _, b := range m.bookings {
		if b.Status == db.BookingStatusActive && b.ArrivedAt == nil && !b.GraceDeadline.After(now) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GraceDeadline.Before(out[j].GraceDeadline) })
	return out, nil
}

func (m *memStore) ListStartingBetween(ctx context.Context, date, from, to string) ([]db.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Booking
	for _, b := range m.bookings {
		if b.BookingDate == date && b.Status == db.BookingStatusActive && b.ArrivedAt == nil &&
			b.StartTime >= from && b.StartTime < to {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *memStore) ExpireBookingsBefore(ctx context.Context, cutoff string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.Status == db.BookingStatusActive && b.BookingDate < cutoff {
			b.Status = db.BookingStatusExpired
			n++
		}
	}
	return n, nil
}

// WaitlistStore

func (m *memStore) CreateEntry(ctx context.Context, e *db.WaitlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	position := 1
	for _, other := range m.entries {
		if other.BookingDate == e.BookingDate && other.SlotType == e.SlotType && other.Status == db.WaitlistStatusWaiting {
			position++
		}
	}
	m.nextEntryID++
	e.ID = m.nextEntryID
	e.Status = db.WaitlistStatusWaiting
	e.Position = position
	e.CreatedAt = m.tick()
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

func (m *memStore) GetEntryByID(ctx context.Context, id int) (*db.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, apperr.NotFound("Waitlist entry not found.")
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) HasOverlappingWaiting(ctx context.Context, userID int, date, start, end string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID == userID && e.BookingDate == date && e.Status == db.WaitlistStatusWaiting &&
			timeutil.Overlaps(e.PreferredStartTime, e.PreferredEndTime, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListEntriesByUser(ctx context.Context, userID int) ([]db.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.WaitlistEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListAllEntries(ctx context.Context, date, status string) ([]db.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.WaitlistEntry
	for _, e := range m.entries {
		if date != "" && e.BookingDate != date {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ClaimOldestFitting(ctx context.Context, date, slotType, freedStart, freedEnd string, now, deadline time.Time) (*db.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *db.WaitlistEntry
	for _, e := range m.entries {
		if e.BookingDate != date || e.SlotType != slotType || e.Status != db.WaitlistStatusWaiting {
			continue
		}
		if !timeutil.Overlaps(e.PreferredStartTime, e.PreferredEndTime, freedStart, freedEnd) {
			continue
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, nil
	}
	m.markNotified(oldest, now, deadline)
	cp := *oldest
	return &cp, nil
}

func (m *memStore) ClaimNextAfter(ctx context.Context, date, slotType string, after, now, deadline time.Time) (*db.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *db.WaitlistEntry
	for _, e := range m.entries {
		if e.BookingDate != date || e.SlotType != slotType || e.Status != db.WaitlistStatusWaiting {
			continue
		}
		if !e.CreatedAt.After(after) {
			continue
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, nil
	}
	m.markNotified(oldest, now, deadline)
	cp := *oldest
	return &cp, nil
}

func (m *memStore) markNotified(e *db.WaitlistEntry, now, deadline time.Time) {
	e.Status = db.WaitlistStatusNotified
	n, d := now, deadline
	e.NotifiedAt = &n
	e.ConfirmationDeadline = &d
}

func (m *memStore) MarkBooked(ctx context.Context, id int) error {
	return m.transition(id, db.WaitlistStatusNotified, db.WaitlistStatusBooked,
		"Waitlist entry is no longer awaiting confirmation.")
}

func (m *memStore) ReopenIfBooked(ctx context.Context, id int) error {
	return m.transition(id, db.WaitlistStatusBooked, db.WaitlistStatusNotified,
		"Waitlist entry is not booked.")
}

func (m *memStore) ExpireIfNotified(ctx context.Context, id int) error {
	return m.transition(id, db.WaitlistStatusNotified, db.WaitlistStatusExpired,
		"Waitlist entry is not in notified state.")
}

func (m *memStore) Withdraw(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || (e.Status != db.WaitlistStatusWaiting && e.Status != db.WaitlistStatusNotified) {
		return apperr.Conflict("Waitlist entry is already closed.")
	}
	e.Status = db.WaitlistStatusExpired
	return nil
}

func (m *memStore) ListExpiredConfirmations(ctx context.Context, now time.Time) ([]db.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.WaitlistEntry
	for _, e := range m.entries {
		if e.Status == db.WaitlistStatusNotified && e.ConfirmationDeadline != nil && !e.ConfirmationDeadline.After(now) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ExpireEntriesBefore(ctx context.Context, cutoff string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.entries {
		if e.Status == db.WaitlistStatusWaiting && e.BookingDate < cutoff {
			e.Status = db.WaitlistStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *memStore) transition(id int, from, to, conflictMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.Status != from {
		return apperr.Conflict(conflictMsg)
	}
	e.Status = to
	return nil
}

// UserStore

func (m *memStore) CreateUser(ctx context.Context, u *db.User, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.Conflict("An account with that email already exists.")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	m.nextUserID++
	u.ID = m.nextUserID
	u.IsActive = true
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found.")
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListUsers(ctx context.Context, role string) ([]db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateUser(ctx context.Context, id int, req entities.UserUpdate) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found.")
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.VehicleNumber != nil {
		u.VehicleNumber = *req.VehicleNumber
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	cp := *u
	return &cp, nil
}

// helpers

func (m *memStore) sortedSlots() []*db.Slot {
	out := make([]*db.Slot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (m *memStore) slotMatches(s *db.Slot, f entities.SlotFilter) bool {
	if f.ActiveOnly && !s.IsActive {
		return false
	}
	if f.SlotType != "" && s.SlotType != f.SlotType {
		return false
	}
	if len(f.Categories) > 0 && !containsStr(f.Categories, s.Category) {
		return false
	}
	return true
}

// slotFree must be called with the mutex held.
func (m *memStore) slotFree(slotID int, date, start, end string, excludeID int) bool {
	for _, b := range m.bookings {
		if b.SlotID != slotID || b.BookingDate != date || b.Status != db.BookingStatusActive || b.ID == excludeID {
			continue
		}
		if timeutil.Overlaps(b.StartTime, b.EndTime, start, end) {
			return false
		}
	}
	return true
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Interface adapters: the store interfaces overload a few method names that a
// single struct cannot carry twice, so thin views route each interface to the
// right memStore methods.

type memSlots struct{ *memStore }

type memBookings struct{ *memStore }

func (v memBookings) GetByID(ctx context.Context, id int) (*db.Booking, error) {
	return v.GetBookingByID(ctx, id)
}

func (v memBookings) ExpireBefore(ctx context.Context, cutoff string) (int64, error) {
	return v.ExpireBookingsBefore(ctx, cutoff)
}

type memWaitlist struct{ *memStore }

func (v memWaitlist) Create(ctx context.Context, e *db.WaitlistEntry) error {
	return v.CreateEntry(ctx, e)
}

func (v memWaitlist) GetByID(ctx context.Context, id int) (*db.WaitlistEntry, error) {
	return v.GetEntryByID(ctx, id)
}

func (v memWaitlist) ListByUser(ctx context.Context, userID int) ([]db.WaitlistEntry, error) {
	return v.ListEntriesByUser(ctx, userID)
}

func (v memWaitlist) ListAll(ctx context.Context, date, status string) ([]db.WaitlistEntry, error) {
	return v.ListAllEntries(ctx, date, status)
}

func (v memWaitlist) ExpireBefore(ctx context.Context, cutoff string) (int64, error) {
	return v.ExpireEntriesBefore(ctx, cutoff)
}

type memUsers struct{ *memStore }

func (v memUsers) Create(ctx context.Context, u *db.User, password string) error {
	return v.CreateUser(ctx, u, password)
}

func (v memUsers) GetByID(ctx context.Context, id int) (*db.User, error) {
	return v.GetUserByID(ctx, id)
}

func (v memUsers) List(ctx context.Context, role string) ([]db.User, error) {
	return v.ListUsers(ctx, role)
}

func (v memUsers) Update(ctx context.Context, id int, req entities.UserUpdate) (*db.User, error) {
	return v.UpdateUser(ctx, id, req)
}

// fakeNotifier records enqueued messages and doubles as the notification log
// for reminder dedupe.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (f *fakeNotifier) Enqueue(m notification.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return true
}

func (f *fakeNotifier) Exists(ctx context.Context, reference, notificationType string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.Reference == reference && m.Type == notificationType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifier) byType(notificationType string) []notification.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification.Message
	for _, m := range f.messages {
		if m.Type == notificationType {
			out = append(out, m)
		}
	}
	return out
}

// testEnv wires the services over one memStore the way main does over the
// real repositories.
type testEnv struct {
	store    *memStore
	notifier *fakeNotifier
	slots    *SlotService
	bookings *BookingService
	waitlist *WaitlistService
	sweeper  *SweeperService
}

func newTestEnv(now time.Time) *testEnv {
	store := newMemStore()
	notifier := &fakeNotifier{}
	clock := func() time.Time { return now }

	slotView := memSlots{store}
	bookingView := memBookings{store}
	waitlistView := memWaitlist{store}
	userView := memUsers{store}

	waitlistSvc := NewWaitlistService(waitlistView, slotView, bookingView, userView, notifier, 15, 10).WithClock(clock)
	bookingSvc := NewBookingService(slotView, bookingView, notifier, waitlistSvc, 15).WithClock(clock)
	sweeper := NewSweeperService(bookingView, waitlistView, slotView, userView, notifier, notifier, waitlistSvc).WithClock(clock)

	return &testEnv{
		store:    store,
		notifier: notifier,
		slots:    NewSlotService(slotView),
		bookings: bookingSvc,
		waitlist: waitlistSvc,
		sweeper:  sweeper,
	}
}

func (e *testEnv) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.bookings.WithClock(clock)
	e.waitlist.WithClock(clock)
	e.sweeper.WithClock(clock)
}
