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

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventChargeRefunded    = "charge.refunded"
)

type CheckoutRequest struct {
	Reference   string
	Description string
	Email       string
	Currency    string
	Amount      int64
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentEvent is the part of a verified webhook the booking flow needs.
type PaymentEvent struct {
	Type            string
	SessionID       string
	PaymentIntentID string
	Paid            bool
}

// PaymentGateway is implemented by StripeGateway.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (PaymentEvent, error)
	SessionForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error)
}

// PaymentService takes online deposits for bookings and applies the
// provider's webhooks.
type PaymentService struct {
	Bookings  BookingService
	Gateway   PaymentGateway
	SiteURL   string
	RequestID string
}

func (s PaymentService) lifecycle() BookingService {
	b := s.Bookings
	b.RequestID = s.RequestID
	return b
}

// Checkout opens a hosted checkout for the deposit (or full amount) of a
// priced, unpaid booking.
func (s PaymentService) Checkout(ctx context.Context, ref, contact string) (CheckoutSession, error) {
	if s.Gateway == nil {
		return CheckoutSession{}, domain.ConflictError{Resource: "payment", Msg: "online payment is not available"}
	}
	svc := s.lifecycle()
	b, err := svc.Lookup(ctx, ref, contact)
	if err != nil {
		return CheckoutSession{}, err
	}
	switch {
	case b.Status != models.StatusPending && b.Status != models.StatusConfirmed:
		return CheckoutSession{}, domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("booking is %s", b.Status)}
	case b.PaymentStatus != models.PaymentUnpaid:
		return CheckoutSession{}, domain.ConflictError{Resource: "booking", Msg: "booking is already " + string(b.PaymentStatus)}
	case b.Total <= 0:
		return CheckoutSession{}, domain.ConflictError{Resource: "booking", Msg: "price has not been confirmed yet"}
	}

	settings, err := svc.Settings.Get(ctx)
	if err != nil {
		return CheckoutSession{}, domain.InternalError{Err: err}
	}
	amount := domain.DepositAmount(b.Total, settings.DepositPercent)
	site := strings.TrimRight(s.SiteURL, "/")
	sess, err := s.Gateway.CreateCheckout(ctx, CheckoutRequest{
		Reference:   b.Reference,
		Description: fmt.Sprintf("%s %s: %s to %s", settings.CompanyName, b.Reference, b.Pickup, b.Dropoff),
		Email:       b.CustomerEmail,
		Currency:    utils.FirstNonEmpty(b.Currency, settings.Currency),
		Amount:      amount,
		SuccessURL:  site + "/booking/" + b.Reference + "?payment=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   site + "/booking/" + b.Reference + "?payment=cancelled",
	})
	if err != nil {
		return CheckoutSession{}, domain.InternalError{Msg: "payment provider unavailable", Err: err}
	}
	if err := svc.Bookings.SetPaymentSession(ctx, b.ID, sess.ID); err != nil {
		return CheckoutSession{}, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "payment", "checkout", fmt.Sprintf("reference=%s amount=%d", b.Reference, amount))
	return sess, nil
}

// HandleWebhook verifies and applies one provider event. Events for
// unknown sessions are acknowledged and ignored so the provider stops
// retrying them.
func (s PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.Gateway == nil {
		return domain.ConflictError{Resource: "payment", Msg: "online payment is not available"}
	}
	ev, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return domain.ValidationError{Field: "signature", Msg: "webhook verification failed", Err: err}
	}

	switch ev.Type {
	case EventCheckoutCompleted:
		if !ev.Paid {
			return nil
		}
		return s.markPaid(ctx, ev.SessionID)
	case EventChargeRefunded:
		if ev.PaymentIntentID == "" {
			return nil
		}
		sid, err := s.Gateway.SessionForPaymentIntent(ctx, ev.PaymentIntentID)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if sid == "" {
			return nil
		}
		return s.markRefunded(ctx, sid)
	default:
		utils.LogEvent(s.RequestID, "payment", "webhook", "ignored event "+ev.Type)
		return nil
	}
}

func (s PaymentService) bookingForSession(ctx context.Context, sessionID string) (models.Booking, bool, error) {
	b, err := s.Bookings.Bookings.GetByPaymentSession(ctx, sessionID)
	if domain.IsNotFound(err) {
		utils.LogEvent(s.RequestID, "payment", "webhook", "no booking for session "+sessionID)
		return b, false, nil
	}
	if err != nil {
		return b, false, domain.InternalError{Err: err}
	}
	return b, true, nil
}

// markPaid records the payment and confirms a pending booking.
func (s PaymentService) markPaid(ctx context.Context, sessionID string) error {
	b, ok, err := s.bookingForSession(ctx, sessionID)
	if !ok || err != nil {
		return err
	}
	// a redelivery after a failed confirm still has to confirm
	if b.PaymentStatus == models.PaymentPaid && b.Status != models.StatusPending {
		return nil
	}
	svc := s.lifecycle()
	if b.PaymentStatus != models.PaymentPaid {
		if err := svc.Bookings.SetPaymentStatus(ctx, b.ID, models.PaymentPaid); err != nil {
			return domain.InternalError{Err: err}
		}
		b.PaymentStatus = models.PaymentPaid
		utils.LogEvent(s.RequestID, "payment", "paid", "reference="+b.Reference)
	}

	if b.Status == models.StatusPending {
		if _, err := svc.transition(ctx, b, models.StatusConfirmed); err != nil && !domain.IsConflict(err) {
			return err
		}
		return nil
	}
	svc.publish(ctx, realtime.EventBookingUpdated, b)
	return nil
}

func (s PaymentService) markRefunded(ctx context.Context, sessionID string) error {
	b, ok, err := s.bookingForSession(ctx, sessionID)
	if !ok || err != nil {
		return err
	}
	if b.PaymentStatus == models.PaymentRefunded {
		return nil
	}
	svc := s.lifecycle()
	if err := svc.Bookings.SetPaymentStatus(ctx, b.ID, models.PaymentRefunded); err != nil {
		return domain.InternalError{Err: err}
	}
	b.PaymentStatus = models.PaymentRefunded
	utils.LogEvent(s.RequestID, "payment", "refunded", "reference="+b.Reference)
	svc.publish(ctx, realtime.EventBookingUpdated, b)
	return nil
}
