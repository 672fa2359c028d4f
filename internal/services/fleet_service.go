package services

import (
	"context"
	"fmt"
	"strings"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/utils"
)

// FleetService is the admin CRUD over vehicles. Every change is announced
// on the live feed as fleet.updated.
type FleetService struct {
	Vehicles  VehicleStore
	Publisher realtime.Publisher
	RequestID string
}

func (s FleetService) List(ctx context.Context) ([]models.Vehicle, error) {
	list, err := s.Vehicles.List(ctx, false)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s FleetService) Get(ctx context.Context, id int64) (models.Vehicle, error) {
	if id <= 0 {
		return models.Vehicle{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	v, err := s.Vehicles.Get(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		return v, domain.InternalError{Err: err}
	}
	return v, err
}

func vehicleFromPayload(p models.VehiclePayload) (models.Vehicle, error) {
	v := models.Vehicle{
		Name:            utils.NormalizeSpace(p.Name),
		Category:        models.VehicleCategory(strings.ToLower(strings.TrimSpace(string(p.Category)))),
		Capacity:        p.Capacity,
		Luggage:         p.Luggage,
		Features:        utils.CleanList(p.Features),
		ImageURL:        strings.TrimSpace(p.ImageURL),
		BasePrice:       p.BasePrice,
		PriceMultiplier: p.PriceMultiplier,
		Active:          true,
		SortOrder:       p.SortOrder,
	}
	if p.Active != nil {
		v.Active = *p.Active
	}
	if v.PriceMultiplier == 0 {
		v.PriceMultiplier = 100
	}

	var fe domain.FieldErrors
	if v.Name == "" {
		fe = fe.Add("name", "name is required")
	}
	if !v.Category.Valid() {
		fe = fe.Add("category", "must be sedan, suv, van or bus")
	}
	if v.Capacity < 1 {
		fe = fe.Add("capacity", "must be at least 1")
	}
	if v.Luggage < 0 {
		fe = fe.Add("luggage", "cannot be negative")
	}
	if v.BasePrice < 0 {
		fe = fe.Add("basePrice", "cannot be negative")
	}
	if v.PriceMultiplier < 0 {
		fe = fe.Add("priceMultiplier", "cannot be negative")
	}
	if v.ImageURL != "" && !strings.HasPrefix(v.ImageURL, "https://") {
		fe = fe.Add("imageUrl", "must be an https URL")
	}
	return v, fe.Err()
}

func (s FleetService) Create(ctx context.Context, p models.VehiclePayload) (models.Vehicle, error) {
	v, err := vehicleFromPayload(p)
	if err != nil {
		return v, err
	}
	id, err := s.Vehicles.Create(ctx, v)
	if err != nil {
		if domain.IsConflict(err) {
			return v, err
		}
		return v, domain.InternalError{Err: err}
	}
	v.ID = id
	s.changed(ctx, "create", v.ID)
	return s.Vehicles.Get(ctx, id)
}

func (s FleetService) Update(ctx context.Context, id int64, p models.VehiclePayload) (models.Vehicle, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Vehicle{}, err
	}
	v, err := vehicleFromPayload(p)
	if err != nil {
		return v, err
	}
	v.ID = id
	if err := s.Vehicles.Update(ctx, v); err != nil {
		if domain.IsConflict(err) || domain.IsNotFound(err) {
			return v, err
		}
		return v, domain.InternalError{Err: err}
	}
	s.changed(ctx, "update", id)
	return s.Vehicles.Get(ctx, id)
}

// Delete reports retired=true when the vehicle had bookings and was only
// deactivated.
func (s FleetService) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	retired, err := s.Vehicles.Delete(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, err
		}
		return false, domain.InternalError{Err: err}
	}
	action := "delete"
	if retired {
		action = "retire"
	}
	s.changed(ctx, action, id)
	return retired, nil
}

type fleetChange struct {
	Action    string `json:"action"`
	VehicleID int64  `json:"vehicleId,omitempty"`
	RouteID   int64  `json:"routeId,omitempty"`
}

func (s FleetService) changed(ctx context.Context, action string, id int64) {
	utils.LogEvent(s.RequestID, "fleet", action, fmt.Sprintf("vehicle_id=%d", id))
	if err := realtime.PublishEvent(ctx, s.Publisher, realtime.EventFleetUpdated, fleetChange{Action: action, VehicleID: id}); err != nil {
		utils.LogError(s.RequestID, "fleet", "publish", err)
	}
}
