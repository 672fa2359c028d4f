package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

// DocsService renders the booking voucher PDF the driver checks at pickup.
type DocsService struct {
	Bookings  BookingService
	Location  *time.Location
	RequestID string
}

func (s DocsService) loc() *time.Location {
	if s.Location == nil {
		return utils.ServiceLocation("")
	}
	return s.Location
}

// Voucher looks the booking up for its customer and renders it. Cancelled
// bookings have no voucher.
func (s DocsService) Voucher(ctx context.Context, ref, contact string) ([]byte, string, error) {
	svc := s.Bookings
	svc.RequestID = s.RequestID
	b, err := svc.Lookup(ctx, ref, contact)
	if err != nil {
		return nil, "", err
	}
	if b.Status == models.StatusCancelled {
		return nil, "", domain.ConflictError{Resource: "booking", Msg: "cancelled bookings have no voucher"}
	}
	settings, err := svc.Settings.Get(ctx)
	if err != nil {
		settings = models.DefaultSettings()
	}
	utils.LogEvent(s.RequestID, "docs", "voucher", "reference="+b.Reference)
	return BuildVoucherPDF(b, settings, s.loc())
}

// BuildVoucherPDF uses the core Helvetica font, so text is transliterated
// to cp1252; characters outside it print as '?'.
func BuildVoucherPDF(b models.Booking, st models.Settings, loc *time.Location) ([]byte, string, error) {
	if b.Status == models.StatusCancelled {
		return nil, "", fmt.Errorf("booking %s is cancelled", b.Reference)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Transfer voucher "+b.Reference, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(safe(st.CompanyName, "Umrah Transfer")))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "TRANSFER VOUCHER")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Reference: "+b.Reference)
	pdf.Ln(10)

	trip := "One way"
	if b.TripType == models.RoundTrip {
		trip = "Round trip"
	}
	total := utils.FormatMoney(b.Total, b.Currency)
	if !b.PriceConfirmed() {
		total = "to be confirmed"
	}
	rows := [][2]string{
		{"Status", strings.ToUpper(string(b.Status))},
		{"Passenger", b.CustomerName},
		{"Phone", b.CustomerPhone},
		{"Trip", trip},
		{"From", b.Pickup},
		{"To", b.Dropoff},
		{"Pickup", utils.FormatDateTime(b.PickupAt, loc)},
	}
	if b.ReturnAt != nil {
		rows = append(rows, [2]string{"Return", utils.FormatDateTime(*b.ReturnAt, loc)})
	}
	rows = append(rows,
		[2]string{"Vehicle", b.VehicleName},
		[2]string{"Passengers", fmt.Sprintf("%d (bags: %d)", b.Passengers, b.Luggage)},
		[2]string{"Flight", b.FlightNumber},
		[2]string{"Total", total},
		[2]string{"Payment", string(b.PaymentStatus)},
	)

	pdf.SetFont("Helvetica", "", 12)
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(40, 8, r[0], "B", 0, "", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, tr(safe(r[1], "-")), "B", 1, "", false, 0, "")
	}

	if b.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Notes")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(b.Notes), "", "", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	contact := utils.FirstNonEmpty(st.WhatsApp, st.SupportPhone)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf(
		"Show this voucher to your driver at pickup. Your driver waits up to 60 minutes after the scheduled time for airport pickups. Support: %s",
		safe(contact, "-"))), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("VOUCHER_%s.pdf", safeFilenamePart(b.Reference)), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
