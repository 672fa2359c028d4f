package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/wizard"
)

func validForm() wizard.Form {
	return wizard.Form{
		TripType:      models.OneWay,
		RouteID:       int64p(10),
		PickupDate:    "2025-03-05",
		PickupTime:    "10:00",
		VehicleID:     1,
		Passengers:    2,
		Luggage:       2,
		CustomerName:  "Aisha Rahman",
		CustomerPhone: "050 123 4567",
		CustomerEmail: "Aisha@Example.com",
		Language:      "en",
		AcceptTerms:   true,
	}
}

func waitNotification(t *testing.T, ch chanNotifier) notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
		return notification{}
	}
}

func TestSubmitStoresPendingBookingWithServerPrice(t *testing.T) {
	f := newFixture()
	f.drafts.rows["d-1"] = models.Draft{ID: "d-1", Step: 4, ExpiresAt: testNow.Add(time.Hour)}
	form := validForm()
	form.DraftID = "d-1"

	b, err := f.bookingService().Submit(context.Background(), form)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(b.Reference, "UMR-250301-"), b.Reference)
	assert.Len(t, b.Reference, len("UMR-250301-ABCDEF"))
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, models.PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, int64(300), b.Total)
	assert.Equal(t, "SAR", b.Currency)
	assert.Equal(t, "+966501234567", b.CustomerPhone)
	assert.Equal(t, "aisha@example.com", b.CustomerEmail)
	assert.Equal(t, "King Abdulaziz Airport", b.Pickup, "route origin fills an empty pickup")
	assert.Equal(t, time.Date(2025, 3, 5, 7, 0, 0, 0, time.UTC), b.PickupAt.UTC())

	_, err = f.drafts.Get(context.Background(), "d-1")
	assert.True(t, domain.IsNotFound(err), "source draft is removed")
	assert.Equal(t, []string{realtime.EventBookingCreated}, f.pub.types())

	n := waitNotification(t, f.notes)
	assert.True(t, n.created)
	assert.Equal(t, b.Reference, n.booking.Reference)
}

func TestSubmitAppliesPromoCodeOnRoundTrip(t *testing.T) {
	f := newFixture()
	f.catalog.promotions[50] = models.Promotion{
		ID: 50, Code: "RAMADAN10", Name: "Ramadan", Kind: models.PromoPercent, Value: 10,
		ValidFrom: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ValidTo: time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC),
		VehicleID: int64p(2), Active: true,
	}
	form := validForm()
	form.TripType = models.RoundTrip
	form.ReturnDate = "2025-03-09"
	form.ReturnTime = "18:30"
	form.VehicleID = 2
	form.PromoCode = "ramadan10"

	b, err := f.bookingService().Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(1040), b.Subtotal)
	assert.Equal(t, int64(104), b.Discount)
	assert.Equal(t, int64(936), b.Total)
	assert.Equal(t, "RAMADAN10", b.PromoCode)
	require.NotNil(t, b.ReturnAt)
	waitNotification(t, f.notes)
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	f := newFixture()
	form := validForm()
	form.CustomerPhone = "12345"
	form.PickupDate = "2025-03-01"
	form.PickupTime = "11:00"
	form.AcceptTerms = false

	_, err := f.bookingService().Submit(context.Background(), form)
	require.Error(t, err)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	fields := fe.Fields()
	assert.Contains(t, fields, "customerPhone")
	assert.Contains(t, fields, "pickupDate")
	assert.Contains(t, fields, "acceptTerms")
	assert.Empty(t, f.bookings.rows)
}

func TestSubmitRejectsOverCapacity(t *testing.T) {
	f := newFixture()
	form := validForm()
	form.Passengers = 6

	_, err := f.bookingService().Submit(context.Background(), form)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestSubmitRetriesReferenceConflicts(t *testing.T) {
	f := newFixture()
	f.bookings.conflict = 2
	_, err := f.bookingService().Submit(context.Background(), validForm())
	require.NoError(t, err)
	waitNotification(t, f.notes)

	f.bookings.conflict = referenceTries
	_, err = f.bookingService().Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.True(t, domain.IsInternal(err))
}

func TestCustomTripNeedsPriceBeforeConfirm(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()
	form := validForm()
	form.RouteID = nil
	form.Pickup = "Hilton Makkah"
	form.Dropoff = "Pullman Zamzam Madinah"

	b, err := svc.Submit(context.Background(), form)
	require.NoError(t, err)
	waitNotification(t, f.notes)
	assert.Nil(t, b.RouteID)
	assert.Zero(t, b.Total)
	assert.False(t, b.PriceConfirmed())

	_, err = svc.UpdateStatus(context.Background(), b.ID, models.StatusConfirmed)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	b, err = svc.OverridePrice(context.Background(), b.ID, PriceOverride{Subtotal: 900, Discount: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(850), b.Total)

	b, err = svc.UpdateStatus(context.Background(), b.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	n := waitNotification(t, f.notes)
	assert.False(t, n.created)
	assert.Equal(t, models.StatusConfirmed, n.booking.Status)
}

func TestOverridePriceValidation(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()
	_, err := svc.OverridePrice(context.Background(), 1, PriceOverride{Subtotal: 0})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.OverridePrice(context.Background(), 1, PriceOverride{Subtotal: 100, Discount: 101})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.OverridePrice(context.Background(), 99, PriceOverride{Subtotal: 100})
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()
	id, _ := f.bookings.Create(context.Background(), models.Booking{Reference: "UMR-250301-AAAAAA", Status: models.StatusCompleted, RouteID: int64p(10)})

	_, err := svc.UpdateStatus(context.Background(), id, models.StatusCancelled)
	assert.True(t, domain.IsConflict(err))
	_, err = svc.UpdateStatus(context.Background(), id, models.BookingStatus("lost"))
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, f.pub.types())
}

func TestLookupAndCancelByCustomer(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()
	b, err := svc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	waitNotification(t, f.notes)

	got, err := svc.Lookup(context.Background(), strings.ToLower(b.Reference), "0501234567")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.Lookup(context.Background(), b.Reference, "someone@else.com")
	assert.True(t, domain.IsNotFound(err), "wrong contact looks like a missing booking")

	cancelled, err := svc.Cancel(context.Background(), b.Reference, "AISHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	waitNotification(t, f.notes)

	_, err = svc.Cancel(context.Background(), b.Reference, "aisha@example.com")
	assert.True(t, domain.IsConflict(err))
}

func TestCompletePastMovesOnlyOldConfirmedTrips(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()
	ctx := context.Background()
	oldID, _ := f.bookings.Create(ctx, models.Booking{Reference: "UMR-A", Status: models.StatusConfirmed, PickupAt: testNow.Add(-7 * time.Hour)})
	recentID, _ := f.bookings.Create(ctx, models.Booking{Reference: "UMR-B", Status: models.StatusConfirmed, PickupAt: testNow.Add(-2 * time.Hour)})
	ret := testNow.Add(time.Hour)
	roundID, _ := f.bookings.Create(ctx, models.Booking{Reference: "UMR-C", Status: models.StatusConfirmed,
		PickupAt: testNow.Add(-48 * time.Hour), ReturnAt: &ret})
	pendingID, _ := f.bookings.Create(ctx, models.Booking{Reference: "UMR-D", Status: models.StatusPending, PickupAt: testNow.Add(-48 * time.Hour)})

	n, err := svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := func(id int64) models.BookingStatus { return f.bookings.rows[id].Status }
	assert.Equal(t, models.StatusCompleted, status(oldID))
	assert.Equal(t, models.StatusConfirmed, status(recentID))
	assert.Equal(t, models.StatusConfirmed, status(roundID), "return leg still ahead")
	assert.Equal(t, models.StatusPending, status(pendingID))
}

func TestExportCSV(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _ = f.bookings.Create(ctx, models.Booking{Reference: "UMR-250301-AAAAAA", Status: models.StatusPending,
		TripType: models.OneWay, PickupAt: time.Date(2025, 3, 5, 7, 0, 0, 0, time.UTC), CustomerName: "Ali, Omar",
		Total: 300, Currency: "SAR", PaymentStatus: models.PaymentUnpaid})

	var buf bytes.Buffer
	n, err := f.bookingService().ExportCSV(ctx, &buf, models.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "UMR-250301-AAAAAA", records[1][0])
	assert.Equal(t, "2025-03-05 10:00", records[1][3])
	assert.Equal(t, "Ali, Omar", records[1][10])
}

func TestStatsIncludesOpenDrafts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, _ = f.bookings.Create(ctx, models.Booking{Status: models.StatusConfirmed, Total: 500, PickupAt: testNow.Add(time.Hour)})
	_, _ = f.bookings.Create(ctx, models.Booking{Status: models.StatusCancelled, Total: 900, PickupAt: testNow.Add(48 * time.Hour)})
	f.drafts.rows["open"] = models.Draft{ID: "open", ExpiresAt: testNow.Add(time.Hour)}
	f.drafts.rows["gone"] = models.Draft{ID: "gone", ExpiresAt: testNow.Add(-time.Hour)}

	st, err := f.bookingService().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), st.Revenue)
	assert.Equal(t, 1, st.PickupsToday)
	assert.Equal(t, 1, st.OpenDrafts)
	assert.Equal(t, 1, st.ByStatus[models.StatusCancelled])
}

func TestAdminListValidatesFilter(t *testing.T) {
	f := newFixture()
	_, _, err := f.bookingService().AdminList(context.Background(), models.BookingFilter{Status: "unknown"}, domain.Pagination{})
	assert.True(t, domain.IsValidation(err))

	_, _ = f.bookings.Create(context.Background(), models.Booking{Reference: "UMR-1", Status: models.StatusPending})
	list, p, err := f.bookingService().AdminList(context.Background(), models.BookingFilter{}, domain.Pagination{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, domain.MaxPageSize, p.PageSize)
	assert.Equal(t, 1, p.Total)
}

func TestCheckStepAdvancesOnlyValidSteps(t *testing.T) {
	svc := newFixture().bookingService()
	ctx := context.Background()

	next, err := svc.CheckStep(ctx, wizard.StepTrip, validForm())
	require.NoError(t, err)
	assert.Equal(t, wizard.StepTrip+1, next)

	form := validForm()
	form.CustomerPhone = "12345"
	next, err = svc.CheckStep(ctx, 3, form)
	require.Error(t, err)
	assert.Equal(t, 3, next)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields(), "customerPhone")

	next, err = svc.CheckStep(ctx, wizard.StepReview, validForm())
	require.NoError(t, err)
	assert.Equal(t, wizard.StepReview, next, "review is terminal")

	_, err = svc.CheckStep(ctx, 7, validForm())
	assert.True(t, domain.IsValidation(err))
}

func TestCheckStepVehicleMustFitParty(t *testing.T) {
	f := newFixture()
	f.catalog.vehicles[3] = models.Vehicle{ID: 3, Name: "Hiace", Capacity: 12, Luggage: 12, Active: false}
	svc := f.bookingService()
	ctx := context.Background()

	next, err := svc.CheckStep(ctx, wizard.StepVehicle, validForm())
	require.NoError(t, err)
	assert.Equal(t, wizard.StepVehicle+1, next)

	form := validForm()
	form.Passengers, form.Luggage = 9, 20
	next, err = svc.CheckStep(ctx, wizard.StepVehicle, form)
	require.Error(t, err)
	assert.Equal(t, wizard.StepVehicle, next)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields(), "passengers")
	assert.Contains(t, fe.Fields(), "luggage")

	form = validForm()
	form.Passengers = 0
	_, err = svc.CheckStep(ctx, wizard.StepVehicle, form)
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 1, "no duplicate passenger message")

	for _, id := range []int64{3, 99} {
		form = validForm()
		form.VehicleID = id
		next, err = svc.CheckStep(ctx, wizard.StepVehicle, form)
		require.ErrorAs(t, err, &fe, "vehicle %d", id)
		assert.Equal(t, wizard.StepVehicle, next)
		assert.Contains(t, fe.Fields(), "vehicleId")
	}
}
