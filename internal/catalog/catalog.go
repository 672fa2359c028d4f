// Package catalog reads the static fleet/route/promotion data used to seed
// a fresh database.
package catalog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

type Vehicle struct {
	Name            string   `yaml:"name"`
	Category        string   `yaml:"category"`
	Capacity        int      `yaml:"capacity"`
	Luggage         int      `yaml:"luggage"`
	Features        []string `yaml:"features"`
	ImageURL        string   `yaml:"image_url"`
	BasePrice       int64    `yaml:"base_price"`
	PriceMultiplier int      `yaml:"price_multiplier"`
	SortOrder       int      `yaml:"sort_order"`
}

// Route fares are keyed by vehicle name.
type Route struct {
	Slug        string           `yaml:"slug"`
	Origin      string           `yaml:"origin"`
	Destination string           `yaml:"destination"`
	DistanceKm  int              `yaml:"distance_km"`
	DurationMin int              `yaml:"duration_min"`
	BasePrice   int64            `yaml:"base_price"`
	Fares       map[string]int64 `yaml:"fares"`
}

// Promotion scopes refer to a route slug and a vehicle name.
type Promotion struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Value       int64  `yaml:"value"`
	ValidFrom   string `yaml:"valid_from"`
	ValidTo     string `yaml:"valid_to"`
	Route       string `yaml:"route"`
	Vehicle     string `yaml:"vehicle"`
	MinSubtotal int64  `yaml:"min_subtotal"`
	Automatic   bool   `yaml:"automatic"`
}

type Catalog struct {
	Settings   *models.Settings `yaml:"settings"`
	Vehicles   []Vehicle        `yaml:"vehicles"`
	Routes     []Route          `yaml:"routes"`
	Promotions []Promotion      `yaml:"promotions"`
}

func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks references between sections so seeding never half-applies.
func (c Catalog) Validate() error {
	var fe domain.FieldErrors
	vehicles := map[string]bool{}
	for i, v := range c.Vehicles {
		key := fmt.Sprintf("vehicles[%d]", i)
		if strings.TrimSpace(v.Name) == "" {
			fe = fe.Add(key, "name is required")
		}
		if vehicles[strings.ToLower(v.Name)] {
			fe = fe.Add(key, "duplicate vehicle "+v.Name)
		}
		vehicles[strings.ToLower(v.Name)] = true
		if !models.VehicleCategory(v.Category).Valid() {
			fe = fe.Add(key, "unknown category "+v.Category)
		}
		if v.Capacity < 1 {
			fe = fe.Add(key, "capacity must be positive")
		}
	}

	routes := map[string]bool{}
	for i, r := range c.Routes {
		key := fmt.Sprintf("routes[%d]", i)
		slug := r.RouteSlug()
		if slug == "" {
			fe = fe.Add(key, "slug or origin/destination is required")
		}
		if routes[slug] {
			fe = fe.Add(key, "duplicate route "+slug)
		}
		routes[slug] = true
		if r.BasePrice <= 0 {
			fe = fe.Add(key, "base_price must be positive")
		}
		for name := range r.Fares {
			if !vehicles[strings.ToLower(name)] {
				fe = fe.Add(key, "fare for unknown vehicle "+name)
			}
		}
	}

	for i, p := range c.Promotions {
		key := fmt.Sprintf("promotions[%d]", i)
		if _, err := p.Model(nil, nil); err != nil {
			fe = fe.Add(key, err.Error())
		}
		if p.Route != "" && !routes[p.Route] {
			fe = fe.Add(key, "unknown route "+p.Route)
		}
		if p.Vehicle != "" && !vehicles[strings.ToLower(p.Vehicle)] {
			fe = fe.Add(key, "unknown vehicle "+p.Vehicle)
		}
	}
	return fe.Err()
}

// RouteSlug falls back to a slug built from origin and destination.
func (r Route) RouteSlug() string {
	if s := utils.Slugify(r.Slug); s != "" {
		return s
	}
	return utils.Slugify(r.Origin + " " + r.Destination)
}

func (v Vehicle) Model() models.Vehicle {
	mult := v.PriceMultiplier
	if mult <= 0 {
		mult = 100
	}
	return models.Vehicle{
		Name:            utils.NormalizeSpace(v.Name),
		Category:        models.VehicleCategory(v.Category),
		Capacity:        v.Capacity,
		Luggage:         v.Luggage,
		Features:        utils.CleanList(v.Features),
		ImageURL:        strings.TrimSpace(v.ImageURL),
		BasePrice:       v.BasePrice,
		PriceMultiplier: mult,
		Active:          true,
		SortOrder:       v.SortOrder,
	}
}

func (r Route) Model() models.Route {
	return models.Route{
		Slug:        r.RouteSlug(),
		Origin:      utils.NormalizeSpace(r.Origin),
		Destination: utils.NormalizeSpace(r.Destination),
		DistanceKm:  r.DistanceKm,
		DurationMin: r.DurationMin,
		BasePrice:   r.BasePrice,
		Active:      true,
	}
}

// Model resolves the promotion into the stored form; routeID and vehicleID
// are the ids the scope names were seeded under.
func (p Promotion) Model(routeID, vehicleID *int64) (models.Promotion, error) {
	from, err := time.Parse(utils.LayoutDate, p.ValidFrom)
	if err != nil {
		return models.Promotion{}, fmt.Errorf("valid_from must be YYYY-MM-DD")
	}
	to, err := time.Parse(utils.LayoutDate, p.ValidTo)
	if err != nil {
		return models.Promotion{}, fmt.Errorf("valid_to must be YYYY-MM-DD")
	}
	out := models.Promotion{
		Code:        strings.ToUpper(strings.TrimSpace(p.Code)),
		Name:        strings.TrimSpace(p.Name),
		Kind:        models.PromotionKind(p.Kind),
		Value:       p.Value,
		ValidFrom:   from,
		ValidTo:     to,
		RouteID:     routeID,
		VehicleID:   vehicleID,
		MinSubtotal: p.MinSubtotal,
		Automatic:   p.Automatic,
		Active:      true,
	}
	if err := domain.ValidatePromotion(out); err != nil {
		return models.Promotion{}, err
	}
	return out, nil
}
