package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/metrics"
	"umrahtransfer/internal/utils"
	"umrahtransfer/internal/wizard"
)

// PricingService loads the route, vehicle and candidate promotions for a
// trip and runs domain.ComputeQuote over them.
type PricingService struct {
	Routes     RouteStore
	Vehicles   VehicleStore
	Promotions PromotionStore
	Settings   SettingsStore
	Location   *time.Location
	RequestID  string
}

func (s PricingService) loc() *time.Location {
	if s.Location == nil {
		return utils.ServiceLocation("")
	}
	return s.Location
}

// Quote prices the trip described by the wizard form. Only the trip and
// vehicle fields are read; contact details may still be empty. A pickup
// time is optional for previews and defaults to midnight.
func (s PricingService) Quote(ctx context.Context, f wizard.Form) (domain.Quote, error) {
	f = f.Normalize()
	q, err := s.quote(ctx, f)
	metrics.QuoteComputed(err == nil)
	return q, err
}

func (s PricingService) quote(ctx context.Context, f wizard.Form) (domain.Quote, error) {
	if f.TripType != models.OneWay && f.TripType != models.RoundTrip {
		return domain.Quote{}, domain.ValidationError{Field: "tripType", Msg: "must be one_way or round_trip"}
	}
	if f.VehicleID <= 0 {
		return domain.Quote{}, domain.ValidationError{Field: "vehicleId", Msg: "choose a vehicle"}
	}
	pickupAt, err := s.previewPickup(f)
	if err != nil {
		return domain.Quote{}, err
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return domain.Quote{}, domain.InternalError{Err: err}
	}
	vehicle, err := s.Vehicles.Get(ctx, f.VehicleID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Quote{}, domain.ValidationError{Field: "vehicleId", Msg: "unknown vehicle"}
		}
		return domain.Quote{}, domain.InternalError{Err: err}
	}

	if f.RouteID == nil {
		return s.onRequest(vehicle, f, settings)
	}

	route, err := s.Routes.Get(ctx, *f.RouteID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Quote{}, domain.ValidationError{Field: "routeId", Msg: "unknown route"}
		}
		return domain.Quote{}, domain.InternalError{Err: err}
	}
	promos, err := s.candidates(ctx, pickupAt, f.PromoCode)
	if err != nil {
		return domain.Quote{}, err
	}

	q, err := domain.ComputeQuote(domain.QuoteInput{
		Route:      route,
		Vehicle:    vehicle,
		TripType:   f.TripType,
		Passengers: f.Passengers,
		Luggage:    f.Luggage,
		PickupAt:   pickupAt,
		PromoCode:  f.PromoCode,
		Promotions: promos,
	})
	if err != nil {
		return q, err
	}
	q.Currency = settings.Currency
	utils.LogEvent(s.RequestID, "pricing", "quote",
		fmt.Sprintf("route_id=%d vehicle_id=%d total=%d", route.ID, vehicle.ID, q.Total))
	return q, nil
}

// onRequest covers custom pickup/dropoff trips: the vehicle must still fit
// the party, but the price is set later by an admin.
func (s PricingService) onRequest(v models.Vehicle, f wizard.Form, settings models.Settings) (domain.Quote, error) {
	if !v.Active {
		return domain.Quote{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle is not available"}
	}
	if err := domain.CheckCapacity(v, f.Passengers, f.Luggage); err != nil {
		return domain.Quote{}, err
	}
	if f.PromoCode != "" {
		return domain.Quote{}, domain.ValidationError{Field: "promoCode", Msg: "promo codes apply to listed routes only"}
	}
	return domain.Quote{
		VehicleID: v.ID,
		Legs:      f.TripType.Legs(),
		Currency:  settings.Currency,
		OnRequest: true,
	}, nil
}

func (s PricingService) previewPickup(f wizard.Form) (time.Time, error) {
	if f.PickupDate == "" {
		return time.Time{}, domain.ValidationError{Field: "pickupDate", Msg: "pickup date is required"}
	}
	if f.PickupTime == "" {
		t, err := utils.ParseDate(f.PickupDate, s.loc())
		if err != nil {
			return t, domain.ValidationError{Field: "pickupDate", Msg: "use YYYY-MM-DD"}
		}
		return t, nil
	}
	t, err := f.PickupAt(s.loc())
	if err != nil {
		return t, domain.ValidationError{Field: "pickupTime", Msg: "use HH:MM"}
	}
	return t, nil
}

// candidates returns the promotions valid on the pickup day plus the one
// named by code, so an expired or inactive code can be explained instead
// of reported as unknown.
func (s PricingService) candidates(ctx context.Context, pickupAt time.Time, code string) ([]models.Promotion, error) {
	day := utils.StartOfDay(pickupAt, s.loc())
	promos, err := s.Promotions.ListValidOn(ctx, day)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return promos, nil
	}
	for _, p := range promos {
		if strings.EqualFold(p.Code, code) {
			return promos, nil
		}
	}
	p, err := s.Promotions.FindByCode(ctx, code)
	switch {
	case domain.IsNotFound(err):
		return promos, nil
	case err != nil:
		return nil, domain.InternalError{Err: err}
	}
	return append(promos, p), nil
}
