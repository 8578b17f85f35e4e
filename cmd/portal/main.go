package main

import (
	"context"

	"github.com/google/uuid"

	"clinicportal/internal/appointments"
	"clinicportal/internal/booking"
	"clinicportal/internal/directory"
	"clinicportal/internal/notify"
	"clinicportal/internal/portal"
	"clinicportal/internal/schedule"
	"clinicportal/internal/session"
	"clinicportal/pkg/app"
	"clinicportal/pkg/client"
	"clinicportal/pkg/config"
	"clinicportal/pkg/kafka"
	kafkamw "clinicportal/pkg/kafka/middleware"
	"clinicportal/pkg/model"
	"clinicportal/pkg/sealer"
	"clinicportal/pkg/validator"
)

const ServiceName = "portal"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting clinic portal")

	serverApp := app.NewApplication(cfg)
	handler := initPortal(cfg, serverApp)
	serverApp.SetApp(handler)
	serverApp.Run()
}

func initPortal(cfg *config.Config, serverApp *app.Application) *portal.Handler {
	v := validator.New(cfg.Log)
	loc := cfg.Location()
	reconnect := notify.Backoff{
		Initial:    cfg.ReconnectInitial,
		Max:        cfg.ReconnectMax,
		MaxElapsed: cfg.ReconnectMaxElapsed,
	}

	storage := client.NewClient()
	serverApp.AddCloser(app.Closer{Name: "storage", Close: storage.Close})
	store := initSessionStore(cfg, storage)

	s, err := sealer.New(cfg.SealKey)
	if err != nil {
		cfg.Log.Fatal("Invalid cookie seal key", "error", err)
	}
	if cfg.SealKey == "" {
		cfg.Log.Warn("SEAL_KEY not set; session cookies will not survive a restart")
	}

	auth := client.NewAuthClient(cfg.AuthAPI, cfg.UpstreamTimeout)
	doctors := client.NewDoctorClient(cfg.DoctorAPI, cfg.UpstreamTimeout)
	gateway := client.NewGatewayClient(cfg.GatewayAPI, cfg.UpstreamTimeout)
	appointmentAPI := client.NewAppointmentClient(cfg.AppointmentAPI, cfg.UpstreamTimeout)

	sessions := session.NewManager(store, auth, doctors, v, cfg.Log)

	var events booking.EventPublisher
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(kafka.NewConfig(cfg.KafkaBrokers), cfg.KafkaBookingTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create kafka producer", "error", err)
		}
		producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
		serverApp.AddCloser(app.Closer{Name: "kafka producer", Close: func(context.Context) error { return producer.Close() }})
		events = producer
		cfg.Log.Info("Booking events enabled", "topic", cfg.KafkaBookingTopic)
	}

	bookingService := booking.NewService(gateway, events, v, loc, cfg.Log)
	boards := booking.NewBoards(bookingService.ListAvailableSlots, 0)
	serverApp.AddCloser(app.Closer{Name: "slot boards", Close: func(context.Context) error {
		boards.Stop()
		return nil
	}})

	source := initNotifySource(cfg, serverApp, reconnect)
	cfg.Log.Info("Doctor notifications configured", "transport", notify.Describe(source))

	return portal.NewHandler(portal.Deps{
		Sessions:     sessions,
		Cookies:      portal.NewCookies(cfg.CookieName, cfg.CookieSecure, cfg.SessionTTL, s),
		Booking:      bookingService,
		Attempts:     booking.NewAttempts(),
		Boards:       boards,
		Schedules:    schedule.NewService(gateway, v, loc, cfg.Log),
		Directory:    directory.NewService(doctors, v, cfg.Log),
		Appointments: appointments.NewService(appointmentAPI, v, cfg.Log),
		Source:       source,
		Reconnect:    reconnect,
		Validator:    v,
		Log:          cfg.Log,
	})
}

func initSessionStore(cfg *config.Config, storage *client.Client) session.Store {
	switch cfg.SessionStore {
	case config.StoreMongo:
		storage.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
		store := session.NewMongoStore(storage.Mongo.Database(cfg.MongoDatabaseName), cfg.SessionTTL, cfg.MongoConnTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			cfg.Log.Fatal("Failed to create session indexes", "error", err)
		}
		cfg.Log.Info("Session store initialized", "store", config.StoreMongo, "database", cfg.MongoDatabaseName)
		return store

	case config.StoreRedis:
		storage.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.UpstreamTimeout)
		cfg.Log.Info("Session store initialized", "store", config.StoreRedis, "addr", cfg.RedisAddr)
		return session.NewRedisStore(storage.Redis, cfg.SessionTTL)

	default:
		cfg.Log.Info("Session store initialized", "store", config.StoreMemory)
		return session.NewMemoryStore(cfg.SessionTTL)
	}
}

// initNotifySource picks the live transport for doctor views. The kafka
// transport feeds an in-process broker from a consumer worker that is kept
// connected with the same backoff as the hub. Each replica joins its own
// group from the newest offset, so no replica misses events for its doctors
// and none replays history on start.
func initNotifySource(cfg *config.Config, serverApp *app.Application, reconnect notify.Backoff) notify.Source {
	switch cfg.NotifyTransport {
	case config.TransportSignalR:
		return notify.NewSignalRSource(cfg.NotificationURL, cfg.Log)

	case config.TransportKafka:
		broker := notify.NewBroker()
		groupID := cfg.ConsumerGroupID(uuid.NewString())
		cfg.Log.Info("Joining booking events group", "group", groupID)
		consumer, err := kafka.NewConsumer(
			kafka.NewConfig(cfg.KafkaBrokers),
			cfg.KafkaBookingTopic,
			groupID,
			notify.BookingEventHandler(broker, cfg.Log),
			cfg.Log,
		)
		if err != nil {
			cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
		}
		consumer.Use(kafkamw.LoggingConsumerMiddleware(cfg.Log))

		// the consumer is shared by every doctor, so it never gives up
		policy := reconnect
		policy.MaxElapsed = 0
		serverApp.AddWorker(app.Worker{
			Name: "booking events consumer",
			Run: func(ctx context.Context) error {
				consume := notify.SourceFunc(func(ctx context.Context, _ notify.Subscriber, _ func(model.Notification)) error {
					return consumer.Start(ctx)
				})
				return notify.Run(ctx, consume, notify.Subscriber{}, nil, policy, cfg.Log)
			},
		})
		serverApp.AddCloser(app.Closer{Name: "kafka consumer", Close: func(context.Context) error { return consumer.Close() }})
		return broker

	default:
		return nil
	}
}
