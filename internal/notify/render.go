package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/utils"
)

//go:embed templates/*.txt templates/*.html
var templateFS embed.FS

const (
	KindReceived  = "booking_received"
	KindConfirmed = "booking_confirmed"
	KindCancelled = "booking_cancelled"
	KindAdminNew  = "admin_new_booking"
)

// Message is one rendered notification. SMS is empty when the template has
// no sms block.
type Message struct {
	Subject string
	Text    string
	HTML    string
	SMS     string
}

// View is the data every template sees.
type View struct {
	Lang         string
	Dir          string
	Company      string
	SupportPhone string
	Reference    string
	Name         string
	Phone        string
	Email        string
	TripLabel    string
	Pickup       string
	Dropoff      string
	PickupAt     string
	ReturnAt     string
	Vehicle      string
	Passengers   int
	Luggage      int
	FlightNumber string
	Notes        string
	Total        string
	Priced       bool
	ManageURL    string
	VoucherURL   string
}

type Renderer struct {
	text   map[string]*template.Template
	layout *htmltemplate.Template
	loc    *time.Location
}

func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = utils.ServiceLocation("")
	}
	r := &Renderer{text: map[string]*template.Template{}, loc: loc}

	files, err := fs.Glob(templateFS, "templates/*.txt")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(f, "templates/"), ".txt")
		t, err := template.ParseFS(templateFS, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.text[name] = t
	}
	r.layout, err = htmltemplate.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return r, nil
}

// NewView formats booking fields for humans in the service timezone.
func (r *Renderer) NewView(b models.Booking, s models.Settings, siteURL string) View {
	lang := b.Language
	if lang != "ar" {
		lang = "en"
	}
	v := View{
		Lang:         lang,
		Dir:          "ltr",
		Company:      s.CompanyName,
		SupportPhone: utils.FirstNonEmpty(s.WhatsApp, s.SupportPhone),
		Reference:    b.Reference,
		Name:         b.CustomerName,
		Phone:        b.CustomerPhone,
		Email:        b.CustomerEmail,
		Pickup:       b.Pickup,
		Dropoff:      b.Dropoff,
		PickupAt:     utils.FormatDateTime(b.PickupAt, r.loc),
		Vehicle:      b.VehicleName,
		Passengers:   b.Passengers,
		Luggage:      b.Luggage,
		FlightNumber: b.FlightNumber,
		Notes:        b.Notes,
		Total:        utils.FormatMoney(b.Total, b.Currency),
		Priced:       b.PriceConfirmed(),
		ManageURL:    fmt.Sprintf("%s/booking/%s", strings.TrimRight(siteURL, "/"), b.Reference),
		VoucherURL:   fmt.Sprintf("%s/booking/%s/voucher", strings.TrimRight(siteURL, "/"), b.Reference),
	}
	if lang == "ar" {
		v.Dir = "rtl"
	}
	if b.ReturnAt != nil {
		v.ReturnAt = utils.FormatDateTime(*b.ReturnAt, r.loc)
	}
	v.TripLabel = tripLabel(b.TripType, lang)
	if !v.Priced {
		if lang == "ar" {
			v.Total = "يحدد لاحقاً"
		} else {
			v.Total = "to be confirmed"
		}
	}
	return v
}

func tripLabel(t models.TripType, lang string) string {
	switch {
	case t == models.RoundTrip && lang == "ar":
		return "ذهاب وعودة"
	case t == models.RoundTrip:
		return "Round trip"
	case lang == "ar":
		return "ذهاب فقط"
	default:
		return "One way"
	}
}

// Render picks kind.<lang>.txt, falling back to English.
func (r *Renderer) Render(kind string, v View) (Message, error) {
	t, ok := r.text[kind+"."+v.Lang]
	if !ok {
		t, ok = r.text[kind+".en"]
	}
	if !ok {
		return Message{}, fmt.Errorf("no template for %s", kind)
	}

	var msg Message
	var err error
	if msg.Subject, err = execText(t, "subject", v); err != nil {
		return msg, err
	}
	if msg.Text, err = execText(t, "body", v); err != nil {
		return msg, err
	}
	if t.Lookup("sms") != nil {
		if msg.SMS, err = execText(t, "sms", v); err != nil {
			return msg, err
		}
	}

	var html bytes.Buffer
	err = r.layout.ExecuteTemplate(&html, "html", struct {
		View
		Body string
	}{v, msg.Text})
	if err != nil {
		return msg, fmt.Errorf("render html: %w", err)
	}
	msg.HTML = html.String()
	return msg, nil
}

func execText(t *template.Template, name string, v View) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
