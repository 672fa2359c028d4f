package models

// Route is a static, pre-priced origin-destination pair.
type Route struct {
	ID          int64       `json:"id"`
	Slug        string      `json:"slug"`
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	DistanceKm  int         `json:"distanceKm"`
	DurationMin int         `json:"durationMin"`
	BasePrice   int64       `json:"basePrice"`
	Active      bool        `json:"active"`
	Fares       []RouteFare `json:"fares,omitempty"`
}

// RouteFare overrides the computed fare of one vehicle on one route.
type RouteFare struct {
	RouteID   int64 `json:"routeId"`
	VehicleID int64 `json:"vehicleId"`
	Price     int64 `json:"price"`
}

type RoutePayload struct {
	Slug        string `json:"slug" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	DistanceKm  int    `json:"distanceKm" binding:"min=0"`
	DurationMin int    `json:"durationMin" binding:"min=0"`
	BasePrice   int64  `json:"basePrice" binding:"required,min=1"`
	Active      *bool  `json:"active"`
}
