package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/realtime"
)

var (
	testLoc = time.FixedZone("AST", 3*60*60)
	// 2025-03-01 09:00 in Riyadh.
	testNow = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

func int64p(v int64) *int64 { return &v }

type memBookings struct {
	mu       sync.Mutex
	rows     map[int64]models.Booking
	nextID   int64
	conflict int
}

func newMemBookings() *memBookings {
	return &memBookings{rows: map[int64]models.Booking{}}
}

func (m *memBookings) Create(_ context.Context, b models.Booking) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflict > 0 {
		m.conflict--
		return 0, domain.ConflictError{Resource: "booking", Msg: "reference already used"}
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt, b.UpdatedAt = testNow, testNow
	m.rows[b.ID] = b
	return b.ID, nil
}

func (m *memBookings) GetByID(_ context.Context, id int64) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return b, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (m *memBookings) find(fn func(models.Booking) bool) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if fn(b) {
			return b, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

func (m *memBookings) GetByReference(_ context.Context, ref string) (models.Booking, error) {
	return m.find(func(b models.Booking) bool { return b.Reference == ref })
}

func (m *memBookings) GetByPaymentSession(_ context.Context, sid string) (models.Booking, error) {
	return m.find(func(b models.Booking) bool { return sid != "" && b.PaymentSessionID == sid })
}

func (m *memBookings) sorted(f models.BookingFilter) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.rows {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Query != "" && !strings.Contains(b.Reference+b.CustomerName, f.Query) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memBookings) List(_ context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	all := m.sorted(f)
	p = p.Normalize()
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memBookings) Each(_ context.Context, f models.BookingFilter, fn func(models.Booking) error) error {
	for _, b := range m.sorted(f) {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

func (m *memBookings) update(id int64, fn func(*models.Booking) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	if err := fn(&b); err != nil {
		return err
	}
	m.rows[id] = b
	return nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id int64, from, to models.BookingStatus) error {
	return m.update(id, func(b *models.Booking) error {
		if b.Status != from {
			return domain.ConflictError{Resource: "booking", Msg: "status is no longer " + string(from)}
		}
		b.Status = to
		return nil
	})
}

func (m *memBookings) UpdatePrice(_ context.Context, id int64, subtotal, discount, total int64) error {
	return m.update(id, func(b *models.Booking) error {
		b.Subtotal, b.Discount, b.Total = subtotal, discount, total
		return nil
	})
}

func (m *memBookings) SetPaymentSession(_ context.Context, id int64, sid string) error {
	return m.update(id, func(b *models.Booking) error {
		b.PaymentSessionID = sid
		return nil
	})
}

func (m *memBookings) SetPaymentStatus(_ context.Context, id int64, st models.PaymentStatus) error {
	return m.update(id, func(b *models.Booking) error {
		b.PaymentStatus = st
		return nil
	})
}

func (m *memBookings) ListFinishedBefore(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range m.sorted(models.BookingFilter{Status: models.StatusConfirmed}) {
		last := b.PickupAt
		if b.ReturnAt != nil {
			last = *b.ReturnAt
		}
		if last.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) Stats(_ context.Context, dayStart, dayEnd time.Time) (models.BookingStats, error) {
	st := models.BookingStats{ByStatus: map[models.BookingStatus]int{}}
	for _, b := range m.sorted(models.BookingFilter{}) {
		st.ByStatus[b.Status]++
		if b.Status == models.StatusConfirmed || b.Status == models.StatusCompleted {
			st.Revenue += b.Total
		}
		if !b.PickupAt.Before(dayStart) && b.PickupAt.Before(dayEnd) {
			st.PickupsToday++
		}
	}
	return st, nil
}

type memCatalog struct {
	vehicles   map[int64]models.Vehicle
	routes     map[int64]models.Route
	promotions map[int64]models.Promotion
	settings   models.Settings
	nextID     int64
}

func newMemCatalog() *memCatalog {
	c := &memCatalog{
		vehicles:   map[int64]models.Vehicle{},
		routes:     map[int64]models.Route{},
		promotions: map[int64]models.Promotion{},
		settings:   models.DefaultSettings(),
		nextID:     100,
	}
	c.vehicles[1] = models.Vehicle{ID: 1, Name: "Toyota Camry", Category: models.CategorySedan, Capacity: 4, Luggage: 3,
		BasePrice: 150, PriceMultiplier: 100, Active: true, SortOrder: 1}
	c.vehicles[2] = models.Vehicle{ID: 2, Name: "GMC Yukon", Category: models.CategorySUV, Capacity: 7, Luggage: 6,
		BasePrice: 250, PriceMultiplier: 160, Active: true, SortOrder: 2}
	c.routes[10] = models.Route{ID: 10, Slug: "jed-airport-makkah", Origin: "King Abdulaziz Airport", Destination: "Makkah Hotels",
		DistanceKm: 100, DurationMin: 75, BasePrice: 300, Active: true,
		Fares: []models.RouteFare{{RouteID: 10, VehicleID: 2, Price: 520}}}
	return c
}

type vehicleStore struct{ c *memCatalog }

func (s vehicleStore) List(_ context.Context, activeOnly bool) ([]models.Vehicle, error) {
	out := []models.Vehicle{}
	for _, v := range s.c.vehicles {
		if activeOnly && !v.Active {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s vehicleStore) Get(_ context.Context, id int64) (models.Vehicle, error) {
	v, ok := s.c.vehicles[id]
	if !ok {
		return v, domain.NotFoundError{Resource: "vehicle"}
	}
	return v, nil
}

func (s vehicleStore) Create(_ context.Context, v models.Vehicle) (int64, error) {
	for _, other := range s.c.vehicles {
		if strings.EqualFold(other.Name, v.Name) {
			return 0, domain.ConflictError{Resource: "vehicle", Msg: "already exists"}
		}
	}
	s.c.nextID++
	v.ID = s.c.nextID
	s.c.vehicles[v.ID] = v
	return v.ID, nil
}

func (s vehicleStore) Update(_ context.Context, v models.Vehicle) error {
	if _, ok := s.c.vehicles[v.ID]; !ok {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	s.c.vehicles[v.ID] = v
	return nil
}

func (s vehicleStore) Delete(_ context.Context, id int64) (bool, error) {
	v, ok := s.c.vehicles[id]
	if !ok {
		return false, domain.NotFoundError{Resource: "vehicle"}
	}
	v.Active = false
	s.c.vehicles[id] = v
	return true, nil
}

func (s vehicleStore) UpsertByName(ctx context.Context, v models.Vehicle) (int64, error) {
	for id, other := range s.c.vehicles {
		if strings.EqualFold(other.Name, v.Name) {
			v.ID = id
			s.c.vehicles[id] = v
			return id, nil
		}
	}
	return s.Create(ctx, v)
}

type routeStore struct{ c *memCatalog }

func (s routeStore) List(_ context.Context, activeOnly bool) ([]models.Route, error) {
	out := []models.Route{}
	for _, r := range s.c.routes {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s routeStore) Get(_ context.Context, id int64) (models.Route, error) {
	r, ok := s.c.routes[id]
	if !ok {
		return r, domain.NotFoundError{Resource: "route"}
	}
	return r, nil
}

func (s routeStore) Create(_ context.Context, r models.Route) (int64, error) {
	s.c.nextID++
	r.ID = s.c.nextID
	s.c.routes[r.ID] = r
	return r.ID, nil
}

func (s routeStore) Update(_ context.Context, r models.Route) error {
	old, ok := s.c.routes[r.ID]
	if !ok {
		return domain.NotFoundError{Resource: "route"}
	}
	r.Fares = old.Fares
	s.c.routes[r.ID] = r
	return nil
}

func (s routeStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.c.routes[id]; !ok {
		return false, domain.NotFoundError{Resource: "route"}
	}
	delete(s.c.routes, id)
	return false, nil
}

func (s routeStore) ReplaceFares(_ context.Context, id int64, fares []models.RouteFare) error {
	r := s.c.routes[id]
	r.Fares = fares
	s.c.routes[id] = r
	return nil
}

func (s routeStore) UpsertBySlug(ctx context.Context, r models.Route) (int64, error) {
	for id, other := range s.c.routes {
		if other.Slug == r.Slug {
			r.ID = id
			r.Fares = other.Fares
			s.c.routes[id] = r
			return id, nil
		}
	}
	return s.Create(ctx, r)
}

type promotionStore struct{ c *memCatalog }

func (s promotionStore) List(_ context.Context) ([]models.Promotion, error) {
	out := []models.Promotion{}
	for _, p := range s.c.promotions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s promotionStore) ListValidOn(ctx context.Context, day time.Time) ([]models.Promotion, error) {
	all, _ := s.List(ctx)
	d := day.Format("2006-01-02")
	out := []models.Promotion{}
	for _, p := range all {
		if p.Active && p.ValidFrom.Format("2006-01-02") <= d && p.ValidTo.Format("2006-01-02") >= d {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s promotionStore) FindByCode(_ context.Context, code string) (models.Promotion, error) {
	for _, p := range s.c.promotions {
		if p.Code == code {
			return p, nil
		}
	}
	return models.Promotion{}, domain.NotFoundError{Resource: "promotion"}
}

func (s promotionStore) Get(_ context.Context, id int64) (models.Promotion, error) {
	p, ok := s.c.promotions[id]
	if !ok {
		return p, domain.NotFoundError{Resource: "promotion"}
	}
	return p, nil
}

func (s promotionStore) Create(_ context.Context, p models.Promotion) (int64, error) {
	s.c.nextID++
	p.ID = s.c.nextID
	s.c.promotions[p.ID] = p
	return p.ID, nil
}

func (s promotionStore) Update(_ context.Context, p models.Promotion) error {
	if _, ok := s.c.promotions[p.ID]; !ok {
		return domain.NotFoundError{Resource: "promotion"}
	}
	s.c.promotions[p.ID] = p
	return nil
}

func (s promotionStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.c.promotions[id]; !ok {
		return domain.NotFoundError{Resource: "promotion"}
	}
	delete(s.c.promotions, id)
	return nil
}

type settingsStore struct{ c *memCatalog }

func (s settingsStore) Get(context.Context) (models.Settings, error) { return s.c.settings, nil }

func (s settingsStore) Save(_ context.Context, st models.Settings) error {
	s.c.settings = st
	return nil
}

type memDrafts struct {
	mu   sync.Mutex
	rows map[string]models.Draft
}

func newMemDrafts() *memDrafts { return &memDrafts{rows: map[string]models.Draft{}} }

func (m *memDrafts) Save(_ context.Context, d models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.rows[d.ID]; ok {
		d.CreatedAt = old.CreatedAt
	}
	m.rows[d.ID] = d
	return nil
}

func (m *memDrafts) Get(_ context.Context, id string) (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return d, domain.NotFoundError{Resource: "draft"}
	}
	return d, nil
}

func (m *memDrafts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.NotFoundError{Resource: "draft"}
	}
	delete(m.rows, id)
	return nil
}

func (m *memDrafts) ListActive(_ context.Context, now time.Time, limit, offset int) ([]models.Draft, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Draft{}
	for _, d := range m.rows {
		if !d.Expired(now) {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (m *memDrafts) CountActive(ctx context.Context, now time.Time) (int, error) {
	_, n, err := m.ListActive(ctx, now, 0, 0)
	return n, err
}

func (m *memDrafts) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, d := range m.rows {
		if d.Expired(now) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type notification struct {
	created bool
	booking models.Booking
}

type chanNotifier chan notification

func (n chanNotifier) BookingCreated(_ context.Context, b models.Booking, _ models.Settings) error {
	n <- notification{created: true, booking: b}
	return nil
}

func (n chanNotifier) StatusChanged(_ context.Context, b models.Booking, _ models.Settings) error {
	n <- notification{booking: b}
	return nil
}

type fixture struct {
	catalog  *memCatalog
	bookings *memBookings
	drafts   *memDrafts
	pub      *recordingPublisher
	notes    chanNotifier
}

func newFixture() *fixture {
	return &fixture{
		catalog:  newMemCatalog(),
		bookings: newMemBookings(),
		drafts:   newMemDrafts(),
		pub:      &recordingPublisher{},
		notes:    make(chanNotifier, 16),
	}
}

func (f *fixture) pricing() PricingService {
	return PricingService{
		Routes:     routeStore{f.catalog},
		Vehicles:   vehicleStore{f.catalog},
		Promotions: promotionStore{f.catalog},
		Settings:   settingsStore{f.catalog},
		Location:   testLoc,
	}
}

func (f *fixture) bookingService() BookingService {
	return BookingService{
		Bookings:  f.bookings,
		Drafts:    f.drafts,
		Settings:  settingsStore{f.catalog},
		Pricing:   f.pricing(),
		Publisher: f.pub,
		Notifier:  f.notes,
		Location:  testLoc,
		Now:       fixedNow,
	}
}
