package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
settings:
  company_name: Test Transfers
  currency: SAR
  lead_time_hours: 4
vehicles:
  - name: Camry
    category: sedan
    capacity: 4
    luggage: 3
    features: [" AC ", "ac", Water]
  - name: Yukon
    category: suv
    capacity: 7
    luggage: 6
    price_multiplier: 150
routes:
  - origin: Jeddah Airport
    destination: Makkah
    base_price: 300
    fares:
      Yukon: 450
promotions:
  - code: welcome10
    name: Welcome
    kind: percent
    value: 10
    valid_from: "2025-01-01"
    valid_to: "2025-12-31"
    route: jeddah-airport-makkah
`

func TestParseSample(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NotNil(t, c.Settings)
	assert.Equal(t, "Test Transfers", c.Settings.CompanyName)
	require.Len(t, c.Vehicles, 2)
	require.Len(t, c.Routes, 1)
	assert.Equal(t, "jeddah-airport-makkah", c.Routes[0].RouteSlug())

	v := c.Vehicles[0].Model()
	assert.Equal(t, 100, v.PriceMultiplier)
	assert.Equal(t, []string{"AC", "Water"}, v.Features)
	assert.True(t, v.Active)

	rid := int64(5)
	p, err := c.Promotions[0].Model(&rid, nil)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", p.Code)
	assert.Equal(t, models.PromoPercent, p.Kind)
	assert.Equal(t, &rid, p.RouteID)
}

func TestParseRejectsBrokenReferences(t *testing.T) {
	broken := `
vehicles:
  - name: Camry
    category: limo
    capacity: 0
routes:
  - slug: a-b
    base_price: 0
    fares:
      Bus: 100
promotions:
  - code: X1
    name: Bad
    kind: percent
    value: 120
    valid_from: "2025-02-01"
    valid_to: "2025-01-01"
    route: nowhere
`
	_, err := Parse([]byte(broken))
	require.Error(t, err)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.GreaterOrEqual(t, len(fe), 6)
}

func TestLoadRepositoryCatalog(t *testing.T) {
	path := filepath.Join("..", "..", "catalog.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("catalog.yaml not present")
	}
	c, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Vehicles)
	assert.NotEmpty(t, c.Routes)
}
