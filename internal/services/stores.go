package services

import (
	"context"
	"time"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

// The store interfaces are satisfied by the MySQL repositories in
// internal/repositories; tests substitute in-memory fakes.

type BookingStore interface {
	Create(ctx context.Context, b models.Booking) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	GetByReference(ctx context.Context, ref string) (models.Booking, error)
	GetByPaymentSession(ctx context.Context, sessionID string) (models.Booking, error)
	List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error)
	Each(ctx context.Context, f models.BookingFilter, fn func(models.Booking) error) error
	UpdateStatus(ctx context.Context, id int64, from, to models.BookingStatus) error
	UpdatePrice(ctx context.Context, id int64, subtotal, discount, total int64) error
	SetPaymentSession(ctx context.Context, id int64, sessionID string) error
	SetPaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	Stats(ctx context.Context, dayStart, dayEnd time.Time) (models.BookingStats, error)
}

type VehicleStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Vehicle, error)
	Get(ctx context.Context, id int64) (models.Vehicle, error)
	Create(ctx context.Context, v models.Vehicle) (int64, error)
	Update(ctx context.Context, v models.Vehicle) error
	Delete(ctx context.Context, id int64) (bool, error)
	UpsertByName(ctx context.Context, v models.Vehicle) (int64, error)
}

type RouteStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Route, error)
	Get(ctx context.Context, id int64) (models.Route, error)
	Create(ctx context.Context, rt models.Route) (int64, error)
	Update(ctx context.Context, rt models.Route) error
	Delete(ctx context.Context, id int64) (bool, error)
	ReplaceFares(ctx context.Context, routeID int64, fares []models.RouteFare) error
	UpsertBySlug(ctx context.Context, rt models.Route) (int64, error)
}

type PromotionStore interface {
	List(ctx context.Context) ([]models.Promotion, error)
	ListValidOn(ctx context.Context, day time.Time) ([]models.Promotion, error)
	FindByCode(ctx context.Context, code string) (models.Promotion, error)
	Get(ctx context.Context, id int64) (models.Promotion, error)
	Create(ctx context.Context, p models.Promotion) (int64, error)
	Update(ctx context.Context, p models.Promotion) error
	Delete(ctx context.Context, id int64) error
}

type SettingsStore interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
}

type DraftStore interface {
	Save(ctx context.Context, d models.Draft) error
	Get(ctx context.Context, id string) (models.Draft, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context, now time.Time, limit, offset int) ([]models.Draft, int, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	Upsert(ctx context.Context, u models.User) (int64, error)
}

// BookingNotifier is implemented by notify.Notifier.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, b models.Booking, s models.Settings) error
	StatusChanged(ctx context.Context, b models.Booking, s models.Settings) error
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
