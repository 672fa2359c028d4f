package models

import "time"

type PromotionKind string

const (
	PromoPercent PromotionKind = "percent"
	PromoFixed   PromotionKind = "fixed"
)

// Promotion is a discount rule valid within [ValidFrom, ValidTo], both
// dates inclusive. RouteID/VehicleID narrow the rule when set.
type Promotion struct {
	ID          int64         `json:"id"`
	Code        string        `json:"code,omitempty"`
	Name        string        `json:"name"`
	Kind        PromotionKind `json:"kind"`
	Value       int64         `json:"value"`
	ValidFrom   time.Time     `json:"validFrom"`
	ValidTo     time.Time     `json:"validTo"`
	RouteID     *int64        `json:"routeId,omitempty"`
	VehicleID   *int64        `json:"vehicleId,omitempty"`
	MinSubtotal int64         `json:"minSubtotal"`
	Automatic   bool          `json:"automatic"`
	Active      bool          `json:"active"`
}

type PromotionPayload struct {
	Code        string        `json:"code"`
	Name        string        `json:"name" binding:"required"`
	Kind        PromotionKind `json:"kind" binding:"required"`
	Value       int64         `json:"value" binding:"required,min=1"`
	ValidFrom   string        `json:"validFrom" binding:"required"`
	ValidTo     string        `json:"validTo" binding:"required"`
	RouteID     *int64        `json:"routeId"`
	VehicleID   *int64        `json:"vehicleId"`
	MinSubtotal int64         `json:"minSubtotal" binding:"min=0"`
	Automatic   bool          `json:"automatic"`
	Active      *bool         `json:"active"`
}
