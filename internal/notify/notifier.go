package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"umrahtransfer/internal/domain/models"
	"umrahtransfer/internal/metrics"
	"umrahtransfer/internal/utils"
)

// Notifier sends the customer and operator messages for booking events.
type Notifier struct {
	Mailer     Mailer
	SMS        SMSSender
	Renderer   *Renderer
	AdminEmail string
	SiteURL    string
}

// BookingCreated mails the customer and the operator and texts the
// customer. Every channel is attempted; the joined error reports failures.
func (n *Notifier) BookingCreated(ctx context.Context, b models.Booking, s models.Settings) error {
	v := n.Renderer.NewView(b, s, n.SiteURL)

	var errs []error
	customer, err := n.Renderer.Render(KindReceived, v)
	if err != nil {
		return err
	}
	errs = append(errs, n.email(ctx, b.CustomerName, b.CustomerEmail, customer))
	errs = append(errs, n.sms(ctx, b.CustomerPhone, customer.SMS))

	if admin := utils.FirstNonEmpty(n.AdminEmail, s.AdminEmail); admin != "" {
		av := v
		av.Lang = "en"
		av.TripLabel = tripLabel(b.TripType, "en")
		adminMsg, err := n.Renderer.Render(KindAdminNew, av)
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, n.email(ctx, s.CompanyName, admin, adminMsg))
		}
	}
	return errors.Join(errs...)
}

// StatusChanged informs the customer about confirmation or cancellation.
// Other statuses are not announced.
func (n *Notifier) StatusChanged(ctx context.Context, b models.Booking, s models.Settings) error {
	var kind string
	switch b.Status {
	case models.StatusConfirmed:
		kind = KindConfirmed
	case models.StatusCancelled:
		kind = KindCancelled
	default:
		return nil
	}
	msg, err := n.Renderer.Render(kind, n.Renderer.NewView(b, s, n.SiteURL))
	if err != nil {
		return err
	}
	return errors.Join(
		n.email(ctx, b.CustomerName, b.CustomerEmail, msg),
		n.sms(ctx, b.CustomerPhone, msg.SMS),
	)
}

func (n *Notifier) email(ctx context.Context, name, to string, msg Message) error {
	if to == "" || n.Mailer == nil {
		return nil
	}
	err := n.Mailer.Send(ctx, Email{ToName: name, ToEmail: to, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML})
	metrics.Notification("email", err)
	if err != nil {
		return fmt.Errorf("email %s: %w", to, err)
	}
	return nil
}

func (n *Notifier) sms(ctx context.Context, to, body string) error {
	if to == "" || body == "" || n.SMS == nil {
		return nil
	}
	err := n.SMS.Send(ctx, to, body)
	metrics.Notification("sms", err)
	if err != nil {
		return fmt.Errorf("sms %s: %w", to, err)
	}
	return nil
}

// Async runs fn detached from the request, logging failures only.
func Async(ctx context.Context, requestID, action string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := fn(ctx); err != nil {
			zap.L().Warn("notification failed",
				zap.String("request_id", requestID),
				zap.String("action", action),
				zap.Error(err))
		}
	}()
}
