package models

import "time"

type VehicleCategory string

const (
	CategorySedan VehicleCategory = "sedan"
	CategorySUV   VehicleCategory = "suv"
	CategoryVan   VehicleCategory = "van"
	CategoryBus   VehicleCategory = "bus"
)

func (c VehicleCategory) Valid() bool {
	switch c {
	case CategorySedan, CategorySUV, CategoryVan, CategoryBus:
		return true
	}
	return false
}

// Vehicle is a fleet entry. PriceMultiplier is a percentage applied to a
// route's base price (100 = same as base).
type Vehicle struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        VehicleCategory `json:"category"`
	Capacity        int             `json:"capacity"`
	Luggage         int             `json:"luggage"`
	Features        []string        `json:"features"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	BasePrice       int64           `json:"basePrice"`
	PriceMultiplier int             `json:"priceMultiplier"`
	Active          bool            `json:"active"`
	SortOrder       int             `json:"sortOrder"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type VehiclePayload struct {
	Name            string          `json:"name" binding:"required"`
	Category        VehicleCategory `json:"category" binding:"required"`
	Capacity        int             `json:"capacity" binding:"required,min=1,max=60"`
	Luggage         int             `json:"luggage" binding:"min=0,max=60"`
	Features        []string        `json:"features"`
	ImageURL        string          `json:"imageUrl"`
	BasePrice       int64           `json:"basePrice" binding:"min=0"`
	PriceMultiplier int             `json:"priceMultiplier" binding:"min=0,max=1000"`
	Active          *bool           `json:"active"`
	SortOrder       int             `json:"sortOrder"`
}
