package services

import (
	"context"
	"fmt"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/utils"
)

type RouteService struct {
	Routes    RouteStore
	Vehicles  VehicleStore
	Publisher realtime.Publisher
	RequestID string
}

func (s RouteService) List(ctx context.Context) ([]models.Route, error) {
	list, err := s.Routes.List(ctx, false)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s RouteService) Get(ctx context.Context, id int64) (models.Route, error) {
	if id <= 0 {
		return models.Route{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	rt, err := s.Routes.Get(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		return rt, domain.InternalError{Err: err}
	}
	return rt, err
}

func routeFromPayload(p models.RoutePayload) (models.Route, error) {
	rt := models.Route{
		Slug:        utils.Slugify(p.Slug),
		Origin:      utils.NormalizeSpace(p.Origin),
		Destination: utils.NormalizeSpace(p.Destination),
		DistanceKm:  p.DistanceKm,
		DurationMin: p.DurationMin,
		BasePrice:   p.BasePrice,
		Active:      true,
	}
	if p.Active != nil {
		rt.Active = *p.Active
	}
	if rt.Slug == "" {
		rt.Slug = utils.Slugify(rt.Origin + " " + rt.Destination)
	}

	var fe domain.FieldErrors
	if rt.Slug == "" {
		fe = fe.Add("slug", "slug is required")
	}
	if rt.Origin == "" {
		fe = fe.Add("origin", "origin is required")
	}
	if rt.Destination == "" {
		fe = fe.Add("destination", "destination is required")
	}
	if rt.Origin != "" && rt.Origin == rt.Destination {
		fe = fe.Add("destination", "must differ from origin")
	}
	if rt.BasePrice <= 0 {
		fe = fe.Add("basePrice", "must be positive")
	}
	if rt.DistanceKm < 0 || rt.DurationMin < 0 {
		fe = fe.Add("distanceKm", "cannot be negative")
	}
	return rt, fe.Err()
}

func (s RouteService) Create(ctx context.Context, p models.RoutePayload) (models.Route, error) {
	rt, err := routeFromPayload(p)
	if err != nil {
		return rt, err
	}
	id, err := s.Routes.Create(ctx, rt)
	if err != nil {
		if domain.IsConflict(err) {
			return rt, err
		}
		return rt, domain.InternalError{Err: err}
	}
	s.changed(ctx, "route_create", id)
	return s.Routes.Get(ctx, id)
}

func (s RouteService) Update(ctx context.Context, id int64, p models.RoutePayload) (models.Route, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Route{}, err
	}
	rt, err := routeFromPayload(p)
	if err != nil {
		return rt, err
	}
	rt.ID = id
	if err := s.Routes.Update(ctx, rt); err != nil {
		if domain.IsConflict(err) || domain.IsNotFound(err) {
			return rt, err
		}
		return rt, domain.InternalError{Err: err}
	}
	s.changed(ctx, "route_update", id)
	return s.Routes.Get(ctx, id)
}

func (s RouteService) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	retired, err := s.Routes.Delete(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, err
		}
		return false, domain.InternalError{Err: err}
	}
	s.changed(ctx, "route_delete", id)
	return retired, nil
}

// SetFares replaces the per-vehicle fare overrides of a route. A vehicle
// may appear once; every vehicle must exist.
func (s RouteService) SetFares(ctx context.Context, id int64, fares []models.RouteFare) (models.Route, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Route{}, err
	}
	vehicles, err := s.Vehicles.List(ctx, false)
	if err != nil {
		return models.Route{}, domain.InternalError{Err: err}
	}
	known := make(map[int64]bool, len(vehicles))
	for _, v := range vehicles {
		known[v.ID] = true
	}

	var fe domain.FieldErrors
	seen := map[int64]bool{}
	clean := make([]models.RouteFare, 0, len(fares))
	for i, f := range fares {
		key := fmt.Sprintf("fares[%d]", i)
		switch {
		case !known[f.VehicleID]:
			fe = fe.Add(key, fmt.Sprintf("unknown vehicle %d", f.VehicleID))
		case seen[f.VehicleID]:
			fe = fe.Add(key, fmt.Sprintf("vehicle %d listed twice", f.VehicleID))
		case f.Price <= 0:
			fe = fe.Add(key, "price must be positive")
		}
		seen[f.VehicleID] = true
		clean = append(clean, models.RouteFare{RouteID: id, VehicleID: f.VehicleID, Price: f.Price})
	}
	if err := fe.Err(); err != nil {
		return models.Route{}, err
	}
	if err := s.Routes.ReplaceFares(ctx, id, clean); err != nil {
		return models.Route{}, domain.InternalError{Err: err}
	}
	s.changed(ctx, "route_fares", id)
	return s.Routes.Get(ctx, id)
}

func (s RouteService) changed(ctx context.Context, action string, id int64) {
	utils.LogEvent(s.RequestID, "route", action, fmt.Sprintf("route_id=%d", id))
	if err := realtime.PublishEvent(ctx, s.Publisher, realtime.EventFleetUpdated, fleetChange{Action: action, RouteID: id}); err != nil {
		utils.LogError(s.RequestID, "route", "publish", err)
	}
}
