package services

import (
	"context"
	"fmt"
	"strings"

	"umrahtransfer/internal/catalog"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

// VehiclePrice is the one-leg fare of one vehicle on a route.
type VehiclePrice struct {
	VehicleID   int64  `json:"vehicleId"`
	VehicleName string `json:"vehicleName"`
	Capacity    int    `json:"capacity"`
	Fare        int64  `json:"fare"`
}

// PublicRoute is a listed route with the fares the quick-quote widget shows.
type PublicRoute struct {
	models.Route
	Prices []VehiclePrice `json:"prices"`
}

// CatalogService serves the public catalog and seeds it from YAML.
type CatalogService struct {
	Vehicles   VehicleStore
	Routes     RouteStore
	Promotions PromotionStore
	Settings   SettingsStore
	RequestID  string
}

func (s CatalogService) PublicVehicles(ctx context.Context) ([]models.Vehicle, error) {
	list, err := s.Vehicles.List(ctx, true)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s CatalogService) PublicRoutes(ctx context.Context) ([]PublicRoute, error) {
	vehicles, err := s.Vehicles.List(ctx, true)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	routes, err := s.Routes.List(ctx, true)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	out := make([]PublicRoute, 0, len(routes))
	for _, rt := range routes {
		pr := PublicRoute{Route: rt, Prices: make([]VehiclePrice, 0, len(vehicles))}
		for _, v := range vehicles {
			pr.Prices = append(pr.Prices, VehiclePrice{
				VehicleID:   v.ID,
				VehicleName: v.Name,
				Capacity:    v.Capacity,
				Fare:        domain.VehicleFare(rt, v),
			})
		}
		pr.Fares = nil
		out = append(out, pr)
	}
	return out, nil
}

func (s CatalogService) PublicSettings(ctx context.Context) (models.PublicSettings, error) {
	st, err := s.Settings.Get(ctx)
	if err != nil {
		return st.Public(), domain.InternalError{Err: err}
	}
	return st.Public(), nil
}

type SeedResult struct {
	Vehicles   int
	Routes     int
	Fares      int
	Promotions int
	Settings   bool
}

func (r SeedResult) String() string {
	return fmt.Sprintf("vehicles=%d routes=%d fares=%d promotions=%d settings=%t",
		r.Vehicles, r.Routes, r.Fares, r.Promotions, r.Settings)
}

// Seed upserts the catalog. Vehicles and routes are matched by name and
// slug; promotions whose code (or name, for automatic ones) already exists
// are left alone so admin edits survive a re-seed.
func (s CatalogService) Seed(ctx context.Context, c catalog.Catalog) (SeedResult, error) {
	var res SeedResult
	if err := c.Validate(); err != nil {
		return res, err
	}

	vehicleIDs := map[string]int64{}
	for _, cv := range c.Vehicles {
		v := cv.Model()
		id, err := s.Vehicles.UpsertByName(ctx, v)
		if err != nil {
			return res, err
		}
		vehicleIDs[strings.ToLower(v.Name)] = id
		res.Vehicles++
	}

	routeIDs := map[string]int64{}
	for _, cr := range c.Routes {
		rt := cr.Model()
		id, err := s.Routes.UpsertBySlug(ctx, rt)
		if err != nil {
			return res, err
		}
		routeIDs[rt.Slug] = id
		res.Routes++

		fares := make([]models.RouteFare, 0, len(cr.Fares))
		for name, price := range cr.Fares {
			vid, ok := vehicleIDs[strings.ToLower(utils.NormalizeSpace(name))]
			if !ok {
				return res, domain.ValidationError{Field: "routes." + rt.Slug + ".fares", Msg: fmt.Sprintf("unknown vehicle %q", name)}
			}
			fares = append(fares, models.RouteFare{RouteID: id, VehicleID: vid, Price: price})
		}
		if err := s.Routes.ReplaceFares(ctx, id, fares); err != nil {
			return res, err
		}
		res.Fares += len(fares)
	}

	existing, err := s.Promotions.List(ctx)
	if err != nil {
		return res, err
	}
	seen := map[string]bool{}
	for _, p := range existing {
		seen[promoKey(p)] = true
	}
	for _, cp := range c.Promotions {
		var routeID, vehicleID *int64
		if cp.Route != "" {
			id, ok := routeIDs[utils.Slugify(cp.Route)]
			if !ok {
				return res, domain.ValidationError{Field: "promotions.route", Msg: fmt.Sprintf("unknown route %q", cp.Route)}
			}
			routeID = &id
		}
		if cp.Vehicle != "" {
			id, ok := vehicleIDs[strings.ToLower(utils.NormalizeSpace(cp.Vehicle))]
			if !ok {
				return res, domain.ValidationError{Field: "promotions.vehicle", Msg: fmt.Sprintf("unknown vehicle %q", cp.Vehicle)}
			}
			vehicleID = &id
		}
		p, err := cp.Model(routeID, vehicleID)
		if err != nil {
			return res, err
		}
		if seen[promoKey(p)] {
			continue
		}
		if _, err := s.Promotions.Create(ctx, p); err != nil {
			return res, err
		}
		seen[promoKey(p)] = true
		res.Promotions++
	}

	if c.Settings != nil {
		if err := s.Settings.Save(ctx, NormalizeSettings(*c.Settings)); err != nil {
			return res, err
		}
		res.Settings = true
	}
	utils.LogEvent(s.RequestID, "catalog", "seed", res.String())
	return res, nil
}

func promoKey(p models.Promotion) string {
	if p.Code != "" {
		return "code:" + strings.ToUpper(p.Code)
	}
	return "name:" + strings.ToLower(p.Name)
}
