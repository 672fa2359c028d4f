// Package wizard validates the multi-step booking form. The site walks the
// customer through trip -> vehicle -> contact -> review; the same rules are
// applied when a draft advances and when the final booking is submitted.
package wizard

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

const (
	StepTrip    = 1
	StepVehicle = 2
	StepContact = 3
	StepReview  = 4
)

var stepNames = map[int]string{
	StepTrip:    "trip",
	StepVehicle: "vehicle",
	StepContact: "contact",
	StepReview:  "review",
}

func StepName(step int) string {
	return stepNames[step]
}

func ValidStep(step int) bool {
	return step >= StepTrip && step <= StepReview
}

// Form is the full wizard payload. Dates are YYYY-MM-DD and times HH:MM in
// the service timezone, as entered on the site.
type Form struct {
	TripType      models.TripType `json:"tripType"`
	RouteID       *int64          `json:"routeId"`
	Pickup        string          `json:"pickup"`
	Dropoff       string          `json:"dropoff"`
	PickupDate    string          `json:"pickupDate"`
	PickupTime    string          `json:"pickupTime"`
	ReturnDate    string          `json:"returnDate"`
	ReturnTime    string          `json:"returnTime"`
	VehicleID     int64           `json:"vehicleId"`
	Passengers    int             `json:"passengers"`
	Luggage       int             `json:"luggage"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	CustomerEmail string          `json:"customerEmail"`
	Language      string          `json:"language"`
	FlightNumber  string          `json:"flightNumber"`
	Notes         string          `json:"notes"`
	PromoCode     string          `json:"promoCode"`
	AcceptTerms   bool            `json:"acceptTerms"`
	DraftID       string          `json:"draftId"`
}

// Rules carries the clock and site settings the checks depend on.
type Rules struct {
	Now      time.Time
	Location *time.Location
	Settings models.Settings
}

func (r Rules) loc() *time.Location {
	if r.Location == nil {
		return utils.ServiceLocation("")
	}
	return r.Location
}

var flightPattern = regexp.MustCompile(`^[A-Z0-9]{2,3} ?\d{1,4}[A-Z]?$`)

// Normalize trims user input and fills defaults. Phone numbers that fail to
// normalize are left as typed so validation can report them.
func (f Form) Normalize() Form {
	f.TripType = models.TripType(strings.ToLower(strings.TrimSpace(string(f.TripType))))
	if f.TripType == "" {
		f.TripType = models.OneWay
	}
	f.Pickup = utils.NormalizeSpace(f.Pickup)
	f.Dropoff = utils.NormalizeSpace(f.Dropoff)
	f.PickupDate = strings.TrimSpace(f.PickupDate)
	f.PickupTime = strings.TrimSpace(f.PickupTime)
	f.ReturnDate = strings.TrimSpace(f.ReturnDate)
	f.ReturnTime = strings.TrimSpace(f.ReturnTime)
	f.CustomerName = utils.NormalizeSpace(f.CustomerName)
	if phone, ok := utils.NormalizeSaudiPhone(f.CustomerPhone); ok {
		f.CustomerPhone = phone
	} else {
		f.CustomerPhone = strings.TrimSpace(f.CustomerPhone)
	}
	f.CustomerEmail = strings.ToLower(strings.TrimSpace(f.CustomerEmail))
	f.Language = strings.ToLower(strings.TrimSpace(f.Language))
	if f.Language == "" {
		f.Language = "en"
	}
	f.FlightNumber = strings.ToUpper(utils.NormalizeSpace(f.FlightNumber))
	f.Notes = strings.TrimSpace(f.Notes)
	f.PromoCode = strings.ToUpper(strings.TrimSpace(f.PromoCode))
	f.DraftID = strings.TrimSpace(f.DraftID)
	return f
}

// PickupAt parses the pickup date and time in loc.
func (f Form) PickupAt(loc *time.Location) (time.Time, error) {
	return utils.ParsePickup(f.PickupDate, f.PickupTime, loc)
}

// ReturnAt is nil for one-way trips.
func (f Form) ReturnAt(loc *time.Location) (*time.Time, error) {
	if f.TripType != models.RoundTrip {
		return nil, nil
	}
	t, err := utils.ParsePickup(f.ReturnDate, f.ReturnTime, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ValidateStep checks only the fields owned by step.
func ValidateStep(step int, f Form, r Rules) domain.FieldErrors {
	switch step {
	case StepTrip:
		return validateTrip(f, r)
	case StepVehicle:
		return validateVehicle(f)
	case StepContact:
		return validateContact(f)
	case StepReview:
		var fe domain.FieldErrors
		if !f.AcceptTerms {
			fe = fe.Add("acceptTerms", "terms must be accepted")
		}
		return fe
	default:
		return domain.FieldErrors{{Field: "step", Msg: fmt.Sprintf("unknown step %d", step)}}
	}
}

// ValidateAll runs every step, used when the booking is submitted.
func ValidateAll(f Form, r Rules) domain.FieldErrors {
	var fe domain.FieldErrors
	for step := StepTrip; step <= StepReview; step++ {
		fe = append(fe, ValidateStep(step, f, r)...)
	}
	return fe
}

// Advance returns the step after current when current validates. Steps are
// never skipped and review is terminal.
func Advance(current int, f Form, r Rules) (int, domain.FieldErrors) {
	if !ValidStep(current) {
		return current, domain.FieldErrors{{Field: "step", Msg: fmt.Sprintf("unknown step %d", current)}}
	}
	if fe := ValidateStep(current, f, r); len(fe) > 0 {
		return current, fe
	}
	if current == StepReview {
		return StepReview, nil
	}
	return current + 1, nil
}

// Back never goes before the first step.
func Back(current int) int {
	if current <= StepTrip {
		return StepTrip
	}
	if current > StepReview {
		return StepReview
	}
	return current - 1
}

func validateTrip(f Form, r Rules) domain.FieldErrors {
	var fe domain.FieldErrors
	if f.TripType != models.OneWay && f.TripType != models.RoundTrip {
		fe = fe.Add("tripType", "must be one_way or round_trip")
	}
	if f.RouteID == nil {
		if f.Pickup == "" {
			fe = fe.Add("pickup", "pickup location is required")
		}
		if f.Dropoff == "" {
			fe = fe.Add("dropoff", "drop-off location is required")
		}
		if f.Pickup != "" && strings.EqualFold(f.Pickup, f.Dropoff) {
			fe = fe.Add("dropoff", "drop-off must differ from pickup")
		}
	} else if *f.RouteID <= 0 {
		fe = fe.Add("routeId", "invalid route")
	}

	loc := r.loc()
	pickup, err := f.PickupAt(loc)
	if err != nil {
		return fe.Add("pickupDate", "pickup date and time are required (YYYY-MM-DD HH:MM)")
	}
	lead := time.Duration(r.Settings.LeadTimeHours) * time.Hour
	if pickup.Before(r.Now.Add(lead)) {
		if lead > 0 {
			fe = fe.Add("pickupDate", fmt.Sprintf("pickup must be at least %d hours from now", r.Settings.LeadTimeHours))
		} else {
			fe = fe.Add("pickupDate", "pickup must be in the future")
		}
	}
	if days := r.Settings.MaxAdvanceDays; days > 0 && pickup.After(r.Now.AddDate(0, 0, days)) {
		fe = fe.Add("pickupDate", fmt.Sprintf("pickup can be booked at most %d days ahead", days))
	}

	if f.TripType == models.RoundTrip {
		ret, err := f.ReturnAt(loc)
		switch {
		case err != nil:
			fe = fe.Add("returnDate", "return date and time are required for round trips")
		case !ret.After(pickup):
			fe = fe.Add("returnDate", "return must be after pickup")
		}
	}
	return fe
}

func validateVehicle(f Form) domain.FieldErrors {
	var fe domain.FieldErrors
	if f.VehicleID <= 0 {
		fe = fe.Add("vehicleId", "choose a vehicle")
	}
	if f.Passengers < 1 {
		fe = fe.Add("passengers", "at least one passenger is required")
	}
	if f.Luggage < 0 {
		fe = fe.Add("luggage", "cannot be negative")
	}
	return fe
}

func validateContact(f Form) domain.FieldErrors {
	var fe domain.FieldErrors
	if len([]rune(f.CustomerName)) < 2 {
		fe = fe.Add("customerName", "full name is required")
	}
	if !utils.IsSaudiPhone(f.CustomerPhone) {
		fe = fe.Add("customerPhone", "enter a Saudi mobile number, e.g. 05XXXXXXXX")
	}
	if !utils.IsEmail(f.CustomerEmail) {
		fe = fe.Add("customerEmail", "enter a valid email address")
	}
	if f.Language != "en" && f.Language != "ar" {
		fe = fe.Add("language", "supported languages are en and ar")
	}
	if f.FlightNumber != "" && !flightPattern.MatchString(f.FlightNumber) {
		fe = fe.Add("flightNumber", "flight number looks wrong, e.g. SV 1234")
	}
	if len(f.Notes) > 1000 {
		fe = fe.Add("notes", "notes are limited to 1000 characters")
	}
	return fe
}
