package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"umrahtransfer/internal/domain/models"
)

const dateLayout = "2006-01-02"

// QuoteInput is everything the price of one trip depends on. Promotions
// holds the candidate rules; the matching code (if any) is picked here.
type QuoteInput struct {
	Route      models.Route
	Vehicle    models.Vehicle
	TripType   models.TripType
	Passengers int
	Luggage    int
	PickupAt   time.Time
	PromoCode  string
	Promotions []models.Promotion
}

type AppliedPromotion struct {
	ID   int64  `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

// Quote is the price breakdown returned to the wizard and stored on bookings.
// OnRequest marks custom trips without a route; their amounts stay zero
// until an admin sets the price.
type Quote struct {
	RouteID   int64             `json:"routeId"`
	VehicleID int64             `json:"vehicleId"`
	Fare      int64             `json:"fare"`
	Legs      int               `json:"legs"`
	Subtotal  int64             `json:"subtotal"`
	Discount  int64             `json:"discount"`
	Total     int64             `json:"total"`
	Currency  string            `json:"currency"`
	Promotion *AppliedPromotion `json:"promotion,omitempty"`
	OnRequest bool              `json:"onRequest,omitempty"`
}

func roundMoney(x float64) int64 {
	return int64(math.Round(x))
}

// VehicleFare returns the one-leg fare of vehicle on route: the explicit
// route fare when configured, otherwise the route base price scaled by the
// vehicle multiplier. The vehicle base price is a floor either way.
func VehicleFare(route models.Route, vehicle models.Vehicle) int64 {
	var fare int64 = -1
	for _, f := range route.Fares {
		if f.VehicleID == vehicle.ID && f.Price > 0 {
			fare = f.Price
			break
		}
	}
	if fare < 0 {
		mult := vehicle.PriceMultiplier
		if mult <= 0 {
			mult = 100
		}
		fare = roundMoney(float64(route.BasePrice) * float64(mult) / 100.0)
	}
	if fare < vehicle.BasePrice {
		fare = vehicle.BasePrice
	}
	return fare
}

// ComputeQuote prices a trip and applies at most one promotion.
func ComputeQuote(in QuoteInput) (Quote, error) {
	if !in.Route.Active {
		return Quote{}, ValidationError{Field: "routeId", Msg: "route is not available"}
	}
	if !in.Vehicle.Active {
		return Quote{}, ValidationError{Field: "vehicleId", Msg: "vehicle is not available"}
	}
	if err := CheckCapacity(in.Vehicle, in.Passengers, in.Luggage); err != nil {
		return Quote{}, err
	}

	tripType := in.TripType
	if tripType == "" {
		tripType = models.OneWay
	}
	if tripType != models.OneWay && tripType != models.RoundTrip {
		return Quote{}, ValidationError{Field: "tripType", Msg: "must be one_way or round_trip"}
	}

	fare := VehicleFare(in.Route, in.Vehicle)
	legs := tripType.Legs()
	q := Quote{
		RouteID:   in.Route.ID,
		VehicleID: in.Vehicle.ID,
		Fare:      fare,
		Legs:      legs,
		Subtotal:  fare * int64(legs),
	}

	promo, discount, err := pickPromotion(in, q.Subtotal)
	if err != nil {
		return Quote{}, err
	}
	if promo != nil {
		q.Discount = discount
		q.Promotion = &AppliedPromotion{ID: promo.ID, Code: promo.Code, Name: promo.Name}
	}
	q.Total = q.Subtotal - q.Discount
	return q, nil
}

// CheckCapacity rejects loads the vehicle cannot carry.
func CheckCapacity(v models.Vehicle, passengers, luggage int) error {
	var fe FieldErrors
	if passengers < 1 {
		fe = fe.Add("passengers", "at least one passenger is required")
	} else if v.Capacity > 0 && passengers > v.Capacity {
		fe = fe.Add("passengers", fmt.Sprintf("%s seats at most %d passengers", v.Name, v.Capacity))
	}
	if luggage < 0 {
		fe = fe.Add("luggage", "cannot be negative")
	} else if luggage > v.Luggage {
		fe = fe.Add("luggage", fmt.Sprintf("%s carries at most %d bags", v.Name, v.Luggage))
	}
	return fe.Err()
}

func pickPromotion(in QuoteInput, subtotal int64) (*models.Promotion, int64, error) {
	code := strings.TrimSpace(in.PromoCode)
	if code != "" {
		for i := range in.Promotions {
			p := in.Promotions[i]
			if !strings.EqualFold(p.Code, code) {
				continue
			}
			if reason := promotionIneligible(p, in, subtotal); reason != "" {
				return nil, 0, ValidationError{Field: "promoCode", Msg: reason}
			}
			return &p, Discount(p, subtotal), nil
		}
		return nil, 0, ValidationError{Field: "promoCode", Msg: "unknown promo code"}
	}

	var (
		best     *models.Promotion
		bestDisc int64
	)
	for i := range in.Promotions {
		p := in.Promotions[i]
		if !p.Automatic || promotionIneligible(p, in, subtotal) != "" {
			continue
		}
		d := Discount(p, subtotal)
		if d > bestDisc {
			best, bestDisc = &p, d
		}
	}
	return best, bestDisc, nil
}

// promotionIneligible returns the reason a promotion cannot apply, or "".
func promotionIneligible(p models.Promotion, in QuoteInput, subtotal int64) string {
	if !p.Active {
		return "promo code is no longer active"
	}
	if !PromotionValidOn(p, in.PickupAt) {
		return "promo code is not valid for the selected date"
	}
	if p.RouteID != nil && *p.RouteID != in.Route.ID {
		return "promo code does not apply to this route"
	}
	if p.VehicleID != nil && *p.VehicleID != in.Vehicle.ID {
		return "promo code does not apply to this vehicle"
	}
	if subtotal < p.MinSubtotal {
		return fmt.Sprintf("promo code requires a minimum of %d", p.MinSubtotal)
	}
	return ""
}

// PromotionValidOn compares calendar dates only; both ends are inclusive.
func PromotionValidOn(p models.Promotion, at time.Time) bool {
	day := at.Format(dateLayout)
	if !p.ValidFrom.IsZero() && day < p.ValidFrom.Format(dateLayout) {
		return false
	}
	if !p.ValidTo.IsZero() && day > p.ValidTo.Format(dateLayout) {
		return false
	}
	return true
}

// Discount is capped at the subtotal so totals never go negative.
func Discount(p models.Promotion, subtotal int64) int64 {
	var d int64
	switch p.Kind {
	case models.PromoPercent:
		pct := p.Value
		if pct > 100 {
			pct = 100
		}
		d = roundMoney(float64(subtotal) * float64(pct) / 100.0)
	case models.PromoFixed:
		d = p.Value
	}
	if d < 0 {
		return 0
	}
	if d > subtotal {
		return subtotal
	}
	return d
}

// DepositAmount is the share of total charged online at checkout.
func DepositAmount(total int64, percent int) int64 {
	if percent <= 0 || percent >= 100 {
		return total
	}
	return roundMoney(float64(total) * float64(percent) / 100.0)
}
