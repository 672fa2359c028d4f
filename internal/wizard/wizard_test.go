package wizard

import (
	"testing"
	"time"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() Rules {
	loc := utils.ServiceLocation("Asia/Riyadh")
	return Rules{
		Now:      time.Date(2025, 3, 1, 8, 0, 0, 0, loc),
		Location: loc,
		Settings: models.DefaultSettings(),
	}
}

func validForm() Form {
	route := int64(1)
	return Form{
		TripType:      models.RoundTrip,
		RouteID:       &route,
		PickupDate:    "2025-03-02",
		PickupTime:    "10:00",
		ReturnDate:    "2025-03-05",
		ReturnTime:    "18:30",
		VehicleID:     7,
		Passengers:    3,
		Luggage:       2,
		CustomerName:  "Aisha Rahman",
		CustomerPhone: "+966501234567",
		CustomerEmail: "aisha@example.com",
		Language:      "en",
		FlightNumber:  "SV 1234",
		AcceptTerms:   true,
	}
}

func TestAdvanceWalksEveryStep(t *testing.T) {
	r := testRules()
	f := validForm()
	step := StepTrip
	for want := StepVehicle; want <= StepReview; want++ {
		next, fe := Advance(step, f, r)
		require.Empty(t, fe)
		assert.Equal(t, want, next)
		step = next
	}
	next, fe := Advance(StepReview, f, r)
	require.Empty(t, fe)
	assert.Equal(t, StepReview, next, "review is terminal")
}

func TestAdvanceStaysOnInvalidStep(t *testing.T) {
	r := testRules()
	f := validForm()
	f.CustomerPhone = "12345"
	next, fe := Advance(StepContact, f, r)
	assert.Equal(t, StepContact, next)
	assert.Contains(t, fe.Fields(), "customerPhone")

	next, fe = Advance(9, f, r)
	assert.Equal(t, 9, next)
	assert.Contains(t, fe.Fields(), "step")
}

func TestTripStepRules(t *testing.T) {
	r := testRules()

	f := validForm()
	f.PickupDate, f.PickupTime = "2025-03-01", "12:00"
	fe := ValidateStep(StepTrip, f, r)
	assert.Contains(t, fe.Fields(), "pickupDate", "inside lead time")

	f = validForm()
	f.PickupDate, f.ReturnDate = "2026-06-01", "2026-06-02"
	fe = ValidateStep(StepTrip, f, r)
	assert.Contains(t, fe.Fields(), "pickupDate", "too far ahead")

	f = validForm()
	f.ReturnDate, f.ReturnTime = "2025-03-02", "09:00"
	fe = ValidateStep(StepTrip, f, r)
	assert.Contains(t, fe.Fields(), "returnDate")

	f = validForm()
	f.RouteID = nil
	f.Pickup, f.Dropoff = "Hilton Makkah", "hilton makkah"
	fe = ValidateStep(StepTrip, f, r)
	assert.Contains(t, fe.Fields(), "dropoff")

	f = validForm()
	f.TripType = models.OneWay
	f.ReturnDate, f.ReturnTime = "", ""
	assert.Empty(t, ValidateStep(StepTrip, f, r))
}

func TestValidateAllCollectsEveryStep(t *testing.T) {
	fe := ValidateAll(Form{}.Normalize(), testRules())
	fields := fe.Fields()
	for _, k := range []string{"pickup", "pickupDate", "vehicleId", "passengers", "customerName", "customerPhone", "customerEmail", "acceptTerms"} {
		assert.Contains(t, fields, k)
	}
}

func TestNormalize(t *testing.T) {
	f := Form{
		CustomerPhone: "050 123 4567",
		CustomerEmail: " Guest@Example.COM ",
		FlightNumber:  " sv   1234 ",
		PromoCode:     " ramadan10",
	}.Normalize()
	assert.Equal(t, models.OneWay, f.TripType)
	assert.Equal(t, "en", f.Language)
	assert.Equal(t, "+966501234567", f.CustomerPhone)
	assert.Equal(t, "guest@example.com", f.CustomerEmail)
	assert.Equal(t, "SV 1234", f.FlightNumber)
	assert.Equal(t, "RAMADAN10", f.PromoCode)
}

func TestBack(t *testing.T) {
	assert.Equal(t, StepTrip, Back(StepTrip))
	assert.Equal(t, StepVehicle, Back(StepContact))
	assert.Equal(t, StepReview, Back(12))
}
