package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umrahtransfer/internal/catalog"
	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

const seedYAML = `
settings:
  company_name: "  Zamzam   Transfers "
  currency: sar
  whatsapp: "0501112222"
  lead_time_hours: 8
vehicles:
  - name: Toyota Camry
    category: sedan
    capacity: 4
    luggage: 3
    base_price: 160
  - name: Hyundai H1
    category: van
    capacity: 10
    luggage: 8
    base_price: 300
    price_multiplier: 180
routes:
  - slug: jed-airport-makkah
    origin: King Abdulaziz Airport
    destination: Makkah Hotels
    base_price: 320
    fares:
      Hyundai H1: 600
promotions:
  - code: welcome5
    name: Welcome
    kind: percent
    value: 5
    valid_from: "2025-01-01"
    valid_to: "2025-12-31"
  - name: Van week
    kind: fixed
    value: 50
    valid_from: "2025-03-01"
    valid_to: "2025-03-07"
    vehicle: Hyundai H1
    automatic: true
`

func catalogService(f *fixture) CatalogService {
	return CatalogService{
		Vehicles:   vehicleStore{f.catalog},
		Routes:     routeStore{f.catalog},
		Promotions: promotionStore{f.catalog},
		Settings:   settingsStore{f.catalog},
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture()
	c, err := catalog.Parse([]byte(seedYAML))
	require.NoError(t, err)
	svc := catalogService(f)

	res, err := svc.Seed(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Vehicles: 2, Routes: 1, Fares: 1, Promotions: 2, Settings: true}, res)

	assert.Len(t, f.catalog.vehicles, 3, "Camry is updated in place, the van is new")
	assert.Equal(t, int64(160), f.catalog.vehicles[1].BasePrice)
	rt := f.catalog.routes[10]
	assert.Equal(t, int64(320), rt.BasePrice)
	require.Len(t, rt.Fares, 1)
	assert.Equal(t, int64(600), rt.Fares[0].Price)

	st := f.catalog.settings
	assert.Equal(t, "Zamzam Transfers", st.CompanyName)
	assert.Equal(t, "SAR", st.Currency)
	assert.Equal(t, "+966501112222", st.WhatsApp)
	assert.Equal(t, 365, st.MaxAdvanceDays)

	res, err = svc.Seed(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, res.Promotions)
	assert.Len(t, f.catalog.promotions, 2)
}

func TestPublicRoutesListsEveryVehicleFare(t *testing.T) {
	f := newFixture()
	routes, err := catalogService(f).PublicRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Nil(t, routes[0].Fares)
	assert.Equal(t, []VehiclePrice{
		{VehicleID: 1, VehicleName: "Toyota Camry", Capacity: 4, Fare: 300},
		{VehicleID: 2, VehicleName: "GMC Yukon", Capacity: 7, Fare: 520},
	}, routes[0].Prices)
}

func TestPublicVehiclesHidesRetired(t *testing.T) {
	f := newFixture()
	v := f.catalog.vehicles[2]
	v.Active = false
	f.catalog.vehicles[2] = v

	list, err := catalogService(f).PublicVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Toyota Camry", list[0].Name)
}

func TestSeedRejectsUnknownFareVehicle(t *testing.T) {
	f := newFixture()
	c := catalog.Catalog{
		Routes: []catalog.Route{{Slug: "x", BasePrice: 100, Fares: map[string]int64{"Bus": 10}}},
	}
	_, err := catalogService(f).Seed(context.Background(), c)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, models.DefaultSettings(), f.catalog.settings)
}
