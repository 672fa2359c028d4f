package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"umrahtransfer/internal/config"
	"umrahtransfer/internal/http/handlers"
	"umrahtransfer/internal/notify"
	"umrahtransfer/internal/realtime"
	"umrahtransfer/internal/repositories"
	"umrahtransfer/internal/services"
	"umrahtransfer/internal/utils"
)

const eventsChannel = "umrah:events"

// app is the fully wired service graph shared by the server and the
// maintenance commands.
type app struct {
	env    config.Env
	db     *sql.DB
	loc    *time.Location
	broker realtime.Broker

	bookings services.BookingService
	drafts   services.DraftService
	pricing  services.PricingService
	catalog  services.CatalogService
	auth     services.AuthService
	handler  *handlers.Handler
}

func newApp(ctx context.Context, env config.Env) (*app, error) {
	db, err := config.ConnectDB(env.DBDSN)
	if err != nil {
		return nil, err
	}
	a := &app{env: env, db: db, loc: utils.ServiceLocation(env.Timezone)}

	if env.RedisURL != "" {
		b, err := realtime.NewRedisBroker(ctx, env.RedisURL, eventsChannel)
		if err != nil {
			return nil, fmt.Errorf("redis broker: %w", err)
		}
		a.broker = b
	} else {
		zap.L().Info("REDIS_URL not set, live events stay in this process")
		a.broker = realtime.NewMemoryBroker()
	}

	notifier, err := newNotifier(env, a.loc)
	if err != nil {
		return nil, err
	}

	var (
		bookingRepo  = repositories.BookingRepository{DB: db}
		draftRepo    = repositories.DraftRepository{DB: db}
		vehicleRepo  = repositories.VehicleRepository{DB: db}
		routeRepo    = repositories.RouteRepository{DB: db}
		promoRepo    = repositories.PromotionRepository{DB: db}
		settingsRepo = repositories.SettingsRepository{DB: db}
		userRepo     = repositories.UserRepository{DB: db}
	)

	a.pricing = services.PricingService{
		Routes: routeRepo, Vehicles: vehicleRepo, Promotions: promoRepo, Settings: settingsRepo, Location: a.loc,
	}
	a.bookings = services.BookingService{
		Bookings:  bookingRepo,
		Drafts:    draftRepo,
		Settings:  settingsRepo,
		Pricing:   a.pricing,
		Publisher: a.broker,
		Notifier:  notifier,
		Location:  a.loc,
	}
	a.drafts = services.DraftService{Drafts: draftRepo, Publisher: a.broker, TTL: env.DraftTTL}
	a.catalog = services.CatalogService{Vehicles: vehicleRepo, Routes: routeRepo, Promotions: promoRepo, Settings: settingsRepo}
	a.auth = services.AuthService{Users: userRepo, Secret: []byte(env.JWTSecret), TTL: env.JWTTTL}

	payments := services.PaymentService{Bookings: a.bookings, SiteURL: env.SiteURL}
	if env.StripeSecretKey != "" {
		payments.Gateway = services.NewStripeGateway(env.StripeSecretKey, env.StripeWebhookSecret)
	} else {
		zap.L().Info("STRIPE_SECRET_KEY not set, online payment disabled")
	}

	a.handler = &handlers.Handler{
		Bookings:   a.bookings,
		Drafts:     a.drafts,
		Pricing:    a.pricing,
		Catalog:    a.catalog,
		Fleet:      services.FleetService{Vehicles: vehicleRepo, Publisher: a.broker},
		Routes:     services.RouteService{Routes: routeRepo, Vehicles: vehicleRepo, Publisher: a.broker},
		Promotions: services.PromotionService{Promotions: promoRepo},
		Settings:   services.SettingsService{Settings: settingsRepo},
		Auth:       a.auth,
		Payments:   payments,
		Docs:       services.DocsService{Bookings: a.bookings, Location: a.loc},
		Uploads:    services.UploadSigner{CloudName: env.UploadCloudName, APIKey: env.UploadAPIKey, APISecret: env.UploadAPISecret},
		DB:         db,
		Location:   a.loc,
	}
	return a, nil
}

func newNotifier(env config.Env, loc *time.Location) (*notify.Notifier, error) {
	renderer, err := notify.NewRenderer(loc)
	if err != nil {
		return nil, fmt.Errorf("notification templates: %w", err)
	}
	n := &notify.Notifier{
		Mailer:     notify.NoopMailer{},
		SMS:        notify.NoopSMS{},
		Renderer:   renderer,
		AdminEmail: env.AdminNotifyEmail,
		SiteURL:    env.SiteURL,
	}
	if env.SendGridAPIKey != "" && env.SendGridFrom != "" {
		n.Mailer = notify.NewSendGridMailer(env.SendGridAPIKey, env.SendGridFrom, env.SendGridFromName)
	} else {
		zap.L().Info("SendGrid not configured, emails are logged only")
	}
	if env.TwilioAccountSID != "" && env.TwilioAuthToken != "" && env.TwilioFrom != "" {
		n.SMS = notify.NewTwilioSMS(env.TwilioAccountSID, env.TwilioAuthToken, env.TwilioFrom)
	} else {
		zap.L().Info("Twilio not configured, SMS are logged only")
	}
	return n, nil
}

func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			zap.L().Warn("close broker", zap.Error(err))
		}
	}
	config.CloseDB()
}
