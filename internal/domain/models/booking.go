package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type TripType string

const (
	OneWay    TripType = "one_way"
	RoundTrip TripType = "round_trip"
)

// Legs is the number of priced journeys for the trip type.
func (t TripType) Legs() int {
	if t == RoundTrip {
		return 2
	}
	return 1
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is a customer's transport reservation. RouteID is nil for custom
// trips; those are priced by an admin later (Total stays 0 until then).
type Booking struct {
	ID               int64         `json:"id"`
	Reference        string        `json:"reference"`
	Status           BookingStatus `json:"status"`
	TripType         TripType      `json:"tripType"`
	RouteID          *int64        `json:"routeId,omitempty"`
	VehicleID        int64         `json:"vehicleId"`
	VehicleName      string        `json:"vehicleName,omitempty"`
	Pickup           string        `json:"pickup"`
	Dropoff          string        `json:"dropoff"`
	PickupAt         time.Time     `json:"pickupAt"`
	ReturnAt         *time.Time    `json:"returnAt,omitempty"`
	Passengers       int           `json:"passengers"`
	Luggage          int           `json:"luggage"`
	FlightNumber     string        `json:"flightNumber,omitempty"`
	CustomerName     string        `json:"customerName"`
	CustomerPhone    string        `json:"customerPhone"`
	CustomerEmail    string        `json:"customerEmail"`
	Notes            string        `json:"notes,omitempty"`
	Language         string        `json:"language"`
	PromoCode        string        `json:"promoCode,omitempty"`
	Subtotal         int64         `json:"subtotal"`
	Discount         int64         `json:"discount"`
	Total            int64         `json:"total"`
	Currency         string        `json:"currency"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	PaymentSessionID string        `json:"-"`
	DraftID          string        `json:"draftId,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// PriceConfirmed reports whether the booking carries a computed price.
func (b Booking) PriceConfirmed() bool {
	return b.RouteID != nil || b.Total > 0
}

// BookingFilter narrows the admin booking list.
type BookingFilter struct {
	Status BookingStatus
	From   *time.Time
	To     *time.Time
	Query  string
}

// BookingStats feeds the admin dashboard header.
type BookingStats struct {
	ByStatus     map[BookingStatus]int `json:"byStatus"`
	Revenue      int64                 `json:"revenue"`
	PickupsToday int                   `json:"pickupsToday"`
	CreatedToday int                   `json:"createdToday"`
	OpenDrafts   int                   `json:"openDrafts"`
}
