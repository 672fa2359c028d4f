package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/metrics"
	"umrahtransfer/internal/notify"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/utils"
	"umrahtransfer/internal/wizard"
)

const (
	notifyTimeout   = 30 * time.Second
	completionGrace = 6 * time.Hour
	referenceTries  = 3
)

// BookingService owns the booking lifecycle: submission from the wizard,
// customer self-service and the admin workflow.
type BookingService struct {
	Bookings  BookingStore
	Drafts    DraftStore
	Settings  SettingsStore
	Pricing   PricingService
	Publisher realtime.Publisher
	Notifier  BookingNotifier
	Location  *time.Location
	Now       func() time.Time
	RequestID string
}

func (s BookingService) loc() *time.Location {
	if s.Location == nil {
		return utils.ServiceLocation("")
	}
	return s.Location
}

// NewReference returns UMR-YYMMDD-XXXXXX with the date of now in loc.
func NewReference(now time.Time, loc *time.Location) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "UMR-" + now.In(loc).Format("060102") + "-" + id[:6]
}

// CheckStep validates one wizard step with the live settings and returns
// the step the customer may move to.
func (s BookingService) CheckStep(ctx context.Context, step int, f wizard.Form) (int, error) {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return step, domain.InternalError{Err: err}
	}
	rules := wizard.Rules{Now: clock(s.Now).now(), Location: s.loc(), Settings: settings}
	f = f.Normalize()
	next, fe := wizard.Advance(step, f, rules)
	if step == wizard.StepVehicle && f.VehicleID > 0 {
		fleet, err := s.vehicleFits(ctx, f)
		if err != nil {
			return step, err
		}
		fe = append(fe, fleet...)
	}
	if len(fe) > 0 {
		return step, fe
	}
	return next, nil
}

// vehicleFits checks the chosen vehicle against the fleet: it must exist,
// be bookable and seat the party with its luggage.
func (s BookingService) vehicleFits(ctx context.Context, f wizard.Form) (domain.FieldErrors, error) {
	v, err := s.Pricing.Vehicles.Get(ctx, f.VehicleID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.FieldErrors{{Field: "vehicleId", Msg: "unknown vehicle"}}, nil
		}
		return nil, domain.InternalError{Err: err}
	}
	if !v.Active {
		return domain.FieldErrors{{Field: "vehicleId", Msg: "vehicle is not available"}}, nil
	}
	var fe domain.FieldErrors
	if err := domain.CheckCapacity(v, f.Passengers, f.Luggage); err != nil {
		if !errors.As(err, &fe) {
			return nil, err
		}
	}
	// passengers and luggage may already be reported by the static checks
	seen := map[string]bool{}
	if f.Passengers < 1 {
		seen["passengers"] = true
	}
	if f.Luggage < 0 {
		seen["luggage"] = true
	}
	out := fe[:0]
	for _, e := range fe {
		if !seen[e.Field] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Submit validates every wizard step, prices the trip server-side and
// stores it as a pending booking. Totals sent by the client are never
// trusted.
func (s BookingService) Submit(ctx context.Context, f wizard.Form) (models.Booking, error) {
	f = f.Normalize()
	now := clock(s.Now).now()

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	rules := wizard.Rules{Now: now, Location: s.loc(), Settings: settings}
	if fe := wizard.ValidateAll(f, rules); len(fe) > 0 {
		return models.Booking{}, fe
	}

	pricing := s.Pricing
	pricing.RequestID = s.RequestID
	if pricing.Location == nil {
		pricing.Location = s.loc()
	}
	q, err := pricing.Quote(ctx, f)
	if err != nil {
		return models.Booking{}, err
	}

	pickupAt, _ := f.PickupAt(s.loc())
	returnAt, _ := f.ReturnAt(s.loc())
	b := models.Booking{
		Status:        models.StatusPending,
		TripType:      f.TripType,
		VehicleID:     f.VehicleID,
		Pickup:        f.Pickup,
		Dropoff:       f.Dropoff,
		PickupAt:      pickupAt,
		ReturnAt:      returnAt,
		Passengers:    f.Passengers,
		Luggage:       f.Luggage,
		FlightNumber:  f.FlightNumber,
		CustomerName:  f.CustomerName,
		CustomerPhone: f.CustomerPhone,
		CustomerEmail: f.CustomerEmail,
		Notes:         f.Notes,
		Language:      f.Language,
		Subtotal:      q.Subtotal,
		Discount:      q.Discount,
		Total:         q.Total,
		Currency:      utils.FirstNonEmpty(q.Currency, settings.Currency),
		PaymentStatus: models.PaymentUnpaid,
		DraftID:       f.DraftID,
	}
	if q.Promotion != nil {
		b.PromoCode = utils.FirstNonEmpty(q.Promotion.Code, f.PromoCode)
	}
	if !q.OnRequest {
		b.RouteID = f.RouteID
		if err := s.fillRouteEnds(ctx, &b); err != nil {
			return models.Booking{}, err
		}
	}

	id, err := s.create(ctx, &b, now)
	if err != nil {
		return models.Booking{}, err
	}
	if stored, err := s.Bookings.GetByID(ctx, id); err == nil {
		b = stored
	} else {
		b.ID, b.CreatedAt, b.UpdatedAt = id, now, now
	}

	if f.DraftID != "" {
		if err := s.Drafts.Delete(ctx, f.DraftID); err != nil && !domain.IsNotFound(err) {
			utils.LogError(s.RequestID, "booking", "delete_draft", err)
		}
	}

	metrics.BookingCreated(string(b.TripType))
	utils.LogEvent(s.RequestID, "booking", "submit",
		fmt.Sprintf("reference=%s total=%d priced=%t", b.Reference, b.Total, !q.OnRequest))
	s.publish(ctx, realtime.EventBookingCreated, b)
	s.notify(ctx, "booking_created", b, settings, true)
	return b, nil
}

// fillRouteEnds uses the route's origin and destination when the customer
// picked a listed route without typing addresses.
func (s BookingService) fillRouteEnds(ctx context.Context, b *models.Booking) error {
	if b.Pickup != "" && b.Dropoff != "" {
		return nil
	}
	rt, err := s.Pricing.Routes.Get(ctx, *b.RouteID)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	b.Pickup = utils.FirstNonEmpty(b.Pickup, rt.Origin)
	b.Dropoff = utils.FirstNonEmpty(b.Dropoff, rt.Destination)
	return nil
}

func (s BookingService) create(ctx context.Context, b *models.Booking, now time.Time) (int64, error) {
	var lastErr error
	for i := 0; i < referenceTries; i++ {
		b.Reference = NewReference(now, s.loc())
		id, err := s.Bookings.Create(ctx, *b)
		if err == nil {
			return id, nil
		}
		if !domain.IsConflict(err) {
			return 0, domain.InternalError{Err: err}
		}
		lastErr = err
	}
	return 0, domain.InternalError{Msg: "could not allocate a booking reference", Err: lastErr}
}

// Lookup finds a booking by reference for its customer. contact is the
// booking email or phone; a mismatch looks exactly like a missing booking.
func (s BookingService) Lookup(ctx context.Context, ref, contact string) (models.Booking, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return models.Booking{}, domain.ValidationError{Field: "reference", Msg: "reference is required"}
	}
	if strings.TrimSpace(contact) == "" {
		return models.Booking{}, domain.ValidationError{Field: "email", Msg: "email or phone is required"}
	}
	b, err := s.Bookings.GetByReference(ctx, ref)
	if err != nil {
		if domain.IsNotFound(err) {
			return b, err
		}
		return b, domain.InternalError{Err: err}
	}
	if !contactMatches(b, contact) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func contactMatches(b models.Booking, contact string) bool {
	contact = strings.TrimSpace(contact)
	if strings.EqualFold(contact, b.CustomerEmail) {
		return true
	}
	phone, ok := utils.NormalizeSaudiPhone(contact)
	return ok && phone == b.CustomerPhone
}

// Cancel is the customer's own cancellation. Trips that already started
// cannot be cancelled online.
func (s BookingService) Cancel(ctx context.Context, ref, contact string) (models.Booking, error) {
	b, err := s.Lookup(ctx, ref, contact)
	if err != nil {
		return b, err
	}
	if !b.PickupAt.After(clock(s.Now).now()) {
		return b, domain.ConflictError{Resource: "booking", Msg: "pickup time has passed, contact support"}
	}
	return s.transition(ctx, b, models.StatusCancelled)
}

func (s BookingService) AdminList(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, domain.Pagination, error) {
	p = p.Normalize()
	if f.Status != "" && !f.Status.Valid() {
		return nil, p, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", f.Status)}
	}
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, p, domain.ValidationError{Field: "to", Msg: "must be after from"}
	}
	list, total, err := s.Bookings.List(ctx, f, p)
	if err != nil {
		return nil, p, domain.InternalError{Err: err}
	}
	p.Total = total
	return list, p, nil
}

func (s BookingService) AdminGet(ctx context.Context, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		return b, domain.InternalError{Err: err}
	}
	return b, err
}

// UpdateStatus applies an admin/dispatcher status change.
func (s BookingService) UpdateStatus(ctx context.Context, id int64, to models.BookingStatus) (models.Booking, error) {
	b, err := s.AdminGet(ctx, id)
	if err != nil {
		return b, err
	}
	return s.transition(ctx, b, to)
}

func (s BookingService) transition(ctx context.Context, b models.Booking, to models.BookingStatus) (models.Booking, error) {
	if err := domain.CheckTransition(b.Status, to); err != nil {
		return b, err
	}
	if to == models.StatusConfirmed && !b.PriceConfirmed() {
		return b, domain.ConflictError{Resource: "booking", Msg: "set a price before confirming a custom trip"}
	}
	if err := s.Bookings.UpdateStatus(ctx, b.ID, b.Status, to); err != nil {
		if domain.IsConflict(err) {
			return b, err
		}
		return b, domain.InternalError{Err: err}
	}
	from := b.Status
	b.Status = to
	b.UpdatedAt = clock(s.Now).now()

	metrics.BookingTransition(string(to))
	utils.LogEvent(s.RequestID, "booking", "status", fmt.Sprintf("reference=%s %s->%s", b.Reference, from, to))
	s.publish(ctx, realtime.EventBookingUpdated, b)
	if settings, err := s.Settings.Get(ctx); err == nil {
		s.notify(ctx, "booking_status", b, settings, false)
	} else {
		utils.LogError(s.RequestID, "booking", "notify_settings", err)
	}
	return b, nil
}

// PriceOverride is the admin's price for a custom trip, or a manual
// correction of a listed one.
type PriceOverride struct {
	Subtotal int64 `json:"subtotal" binding:"required,min=1"`
	Discount int64 `json:"discount" binding:"min=0"`
}

func (s BookingService) OverridePrice(ctx context.Context, id int64, in PriceOverride) (models.Booking, error) {
	if in.Subtotal <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "subtotal", Msg: "must be positive"}
	}
	if in.Discount < 0 || in.Discount > in.Subtotal {
		return models.Booking{}, domain.ValidationError{Field: "discount", Msg: "must be between 0 and subtotal"}
	}
	b, err := s.AdminGet(ctx, id)
	if err != nil {
		return b, err
	}
	if b.Status == models.StatusCancelled || b.Status == models.StatusCompleted {
		return b, domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("cannot reprice a %s booking", b.Status)}
	}
	if b.PaymentStatus == models.PaymentPaid {
		return b, domain.ConflictError{Resource: "booking", Msg: "booking is already paid"}
	}
	total := in.Subtotal - in.Discount
	if err := s.Bookings.UpdatePrice(ctx, b.ID, in.Subtotal, in.Discount, total); err != nil {
		return b, domain.InternalError{Err: err}
	}
	b.Subtotal, b.Discount, b.Total = in.Subtotal, in.Discount, total
	utils.LogEvent(s.RequestID, "booking", "price", fmt.Sprintf("reference=%s total=%d", b.Reference, total))
	s.publish(ctx, realtime.EventBookingUpdated, b)
	return b, nil
}

// CompletePast marks confirmed trips completed once their last leg started
// more than six hours ago. It returns how many bookings moved.
func (s BookingService) CompletePast(ctx context.Context) (int, error) {
	cutoff := clock(s.Now).now().Add(-completionGrace)
	list, err := s.Bookings.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, b := range list {
		err := s.Bookings.UpdateStatus(ctx, b.ID, models.StatusConfirmed, models.StatusCompleted)
		if domain.IsConflict(err) {
			continue
		}
		if err != nil {
			return done, err
		}
		b.Status = models.StatusCompleted
		metrics.BookingTransition(string(b.Status))
		s.publish(ctx, realtime.EventBookingUpdated, b)
		done++
	}
	return done, nil
}

// Stats feeds the dashboard header. "Today" is the calendar day in the
// service timezone.
func (s BookingService) Stats(ctx context.Context) (models.BookingStats, error) {
	now := clock(s.Now).now()
	start := utils.StartOfDay(now, s.loc())
	st, err := s.Bookings.Stats(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return st, domain.InternalError{Err: err}
	}
	if s.Drafts != nil {
		if n, err := s.Drafts.CountActive(ctx, now); err == nil {
			st.OpenDrafts = n
		}
	}
	return st, nil
}

var csvHeader = []string{
	"reference", "status", "trip_type", "pickup_at", "return_at", "pickup", "dropoff", "vehicle",
	"passengers", "luggage", "customer_name", "customer_phone", "customer_email", "flight_number",
	"promo_code", "subtotal", "discount", "total", "currency", "payment_status", "created_at",
}

// ExportCSV streams every booking matching f. Times are in the service
// timezone.
func (s BookingService) ExportCSV(ctx context.Context, w io.Writer, f models.BookingFilter) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	loc := s.loc()
	n := 0
	err := s.Bookings.Each(ctx, f, func(b models.Booking) error {
		ret := ""
		if b.ReturnAt != nil {
			ret = utils.FormatDateTime(*b.ReturnAt, loc)
		}
		n++
		return cw.Write([]string{
			b.Reference, string(b.Status), string(b.TripType),
			utils.FormatDateTime(b.PickupAt, loc), ret, b.Pickup, b.Dropoff, b.VehicleName,
			strconv.Itoa(b.Passengers), strconv.Itoa(b.Luggage),
			b.CustomerName, b.CustomerPhone, b.CustomerEmail, b.FlightNumber, b.PromoCode,
			strconv.FormatInt(b.Subtotal, 10), strconv.FormatInt(b.Discount, 10), strconv.FormatInt(b.Total, 10),
			b.Currency, string(b.PaymentStatus), utils.FormatDateTime(b.CreatedAt, loc),
		})
	})
	if err != nil {
		return n, err
	}
	cw.Flush()
	utils.LogEvent(s.RequestID, "booking", "export", fmt.Sprintf("rows=%d", n))
	return n, cw.Error()
}

func (s BookingService) publish(ctx context.Context, typ string, b models.Booking) {
	if err := realtime.PublishEvent(ctx, s.Publisher, typ, b); err != nil {
		utils.LogError(s.RequestID, "booking", "publish", err)
	}
}

func (s BookingService) notify(ctx context.Context, action string, b models.Booking, settings models.Settings, created bool) {
	if s.Notifier == nil {
		return
	}
	n := s.Notifier
	notify.Async(ctx, s.RequestID, action, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if created {
			return n.BookingCreated(ctx, b, settings)
		}
		return n.StatusChanged(ctx, b, settings)
	})
}
