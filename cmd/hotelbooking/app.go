package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"hotelbooking/internal/app/commands"
	bookingapp "hotelbooking/internal/app/handlers/booking"
	roomsapp "hotelbooking/internal/app/handlers/rooms"
	"hotelbooking/internal/app/locks"
	"hotelbooking/internal/app/middleware"
	appoutbox "hotelbooking/internal/app/outbox"
	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/schedule"
	"hotelbooking/internal/app/uow"
	"hotelbooking/internal/domain/inventory"
	"hotelbooking/internal/infra/broker/kafka"
	"hotelbooking/internal/infra/config"
	mongostore "hotelbooking/internal/infra/db/mongo"
	ginserver "hotelbooking/internal/infra/http/gin"
	"hotelbooking/internal/infra/inbox"
	"hotelbooking/internal/infra/ledger/scylla"
	"hotelbooking/internal/infra/notify"
	infraoutbox "hotelbooking/internal/infra/outbox"
	"hotelbooking/internal/infra/security"
	"hotelbooking/internal/infra/storage/memory"
	"hotelbooking/internal/infra/storage/s3"
)

// application holds the wired buses plus everything main has to start or close.
type application struct {
	handlers ginserver.Handlers
	commands commands.Bus
	queries  queries.Bus
	effects  *policies.Effects
	ready    func(ctx context.Context) error

	background []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
}

// infrastructure is the storage side chosen by STORAGE_MODE and the optional adapters.
type infrastructure struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	inbox       kafka.Inbox
	ledger      policies.Ledger
	receipts    policies.ReceiptArchive
	notifier    policies.Notifier
	producer    infraoutbox.Producer
	ready       func(ctx context.Context) error

	background []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	infra, err := buildInfrastructure(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &application{
		effects: &policies.Effects{
			Notifier: infra.notifier,
			Receipts: infra.receipts,
			Ledger:   infra.ledger,
			Timeout:  cfg.NotifyTimeout,
			Logger:   logger,
		},
		ready:      infra.ready,
		background: infra.background,
		closers:    infra.closers,
	}

	validator := security.NewValidator()
	authorizer, err := security.NewAuthorizer()
	if err != nil {
		app.close(ctx, logger)
		return nil, fmt.Errorf("authorizer: %w", err)
	}

	bookingDeps := bookingapp.Deps{
		UoWFactory: infra.factory,
		Outbox:     infra.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Effects:    app.effects,
		Logger:     logger,
	}
	roomDeps := roomsapp.Deps{
		UoWFactory: infra.factory,
		Outbox:     infra.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	updateHandler := &bookingapp.UpdateBookingHandler{Deps: bookingDeps}
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingKey, &bookingapp.CreateBookingHandler{Deps: bookingDeps})
	commands.RegisterHandler(commandBus, bookingapp.UpdateBookingKey, updateHandler)
	commands.RegisterHandler(commandBus, bookingapp.AdminUpdateBookingKey, &bookingapp.AdminUpdateBookingHandler{Update: updateHandler})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingKey, &bookingapp.CancelBookingHandler{Deps: bookingDeps})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingKey, &bookingapp.ConfirmBookingHandler{Deps: bookingDeps})
	commands.RegisterHandler(commandBus, roomsapp.CreateRoomKey, &roomsapp.CreateRoomHandler{Deps: roomDeps})
	commands.RegisterHandler(commandBus, roomsapp.RateRoomKey, &roomsapp.RateRoomHandler{Deps: roomDeps})
	commands.RegisterHandler(commandBus, roomsapp.ReconcileRoomKey, &roomsapp.ReconcileRoomHandler{Deps: roomDeps, Ledger: infra.ledger})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingKey, &bookingapp.GetBookingHandler{UoWFactory: infra.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListMyBookingsKey, &bookingapp.ListMyBookingsHandler{UoWFactory: infra.factory, Logger: logger})
	queries.RegisterHandler(queryBus, roomsapp.GetRoomKey, &roomsapp.GetRoomHandler{UoWFactory: infra.factory})
	queries.RegisterHandler(queryBus, roomsapp.ListRoomsKey, &roomsapp.ListRoomsHandler{UoWFactory: infra.factory})
	queries.RegisterHandler(queryBus, roomsapp.GetRatingKey, &roomsapp.GetRatingHandler{UoWFactory: infra.factory})
	queries.RegisterHandler(queryBus, roomsapp.GetAvailabilityKey, &roomsapp.GetAvailabilityHandler{
		UoWFactory:  infra.factory,
		Weekend:     weekendOrDefault(cfg.WeekendDays),
		DefaultDays: cfg.CalendarDays,
	})
	queries.RegisterHandler(queryBus, roomsapp.ListLedgerKey, &roomsapp.ListLedgerHandler{Ledger: infra.ledger})

	app.commands = middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Authorization(authorizer),
		middleware.Idempotency(infra.idempotency, nil, cfg.IdempotencyTTL),
		middleware.OutboxFlush(infra.outbox, logger),
		middleware.Locking(locks.NewKeyed()),
		middleware.Transaction(infra.factory, cfg.ConflictRetries),
	)
	app.queries = middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(validator),
		middleware.QueryAuthorization(authorizer),
	)

	app.handlers = ginserver.Handlers{
		Booking:        ginserver.BookingHandler{Commands: app.commands, Queries: app.queries},
		Room:           ginserver.RoomHandler{Commands: app.commands, Queries: app.queries},
		AuthMiddleware: ginserver.AuthMiddleware{Logger: logger}.Handle,
	}

	if cfg.KafkaEnabled() {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.PaymentsGroup, nil, &kafka.PaymentsHandler{
			Bus:    app.commands,
			Inbox:  infra.inbox,
			Logger: logger,
		}, logger)
		if err != nil {
			app.close(ctx, logger)
			return nil, fmt.Errorf("payments consumer: %w", err)
		}
		app.background = append(app.background, func(ctx context.Context) error {
			return consumer.Run(ctx, []string{cfg.PaymentsTopic})
		})
		app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
	}
	if cfg.SweepEnabled() {
		ticker := &schedule.Ticker{
			Interval: cfg.ReconcileInterval,
			Jobs:     []schedule.Job{&schedule.InventorySweep{Commands: app.commands, Queries: app.queries, Logger: logger}},
			Logger:   logger,
		}
		app.background = append(app.background, ticker.Run)
	}
	return app, nil
}

func buildInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger) (infra *infrastructure, err error) {
	infra = &infrastructure{ready: func(context.Context) error { return nil }}
	defer func() {
		if err != nil {
			closeAll(ctx, infra.closers, logger)
		}
	}()

	infra.producer = infraoutbox.LogProducer{Logger: logger}
	infra.notifier = notify.LogNotifier{Logger: logger}
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, sarama.NewConfig())
		if err != nil {
			return infra, fmt.Errorf("kafka producer: %w", err)
		}
		infra.closers = append(infra.closers, func(context.Context) error { return producer.Close() })
		infra.producer = producer
		infra.notifier = kafka.Notifier{Publisher: producer, Topic: cfg.NotifyTopic}
	}
	relay := infraoutbox.Relay{Producer: infra.producer, TopicPrefix: cfg.KafkaTopicPrefix}

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return infra, fmt.Errorf("mongo connect: %w", err)
		}
		infra.closers = append(infra.closers, client.Close)
		if err := client.EnsureIndexes(ctx); err != nil {
			return infra, fmt.Errorf("mongo indexes: %w", err)
		}
		store, err := infraoutbox.NewStore(ctx, client.DB)
		if err != nil {
			return infra, fmt.Errorf("outbox store: %w", err)
		}
		idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return infra, fmt.Errorf("idempotency store: %w", err)
		}
		seen, err := inbox.NewStore(ctx, client.DB, cfg.PaymentsGroup, inbox.DefaultRetention)
		if err != nil {
			return infra, fmt.Errorf("inbox store: %w", err)
		}
		infra.factory = mongostore.NewFactory(client.DB)
		infra.outbox = store
		infra.idempotency = idem
		infra.inbox = seen
		infra.ready = client.Ping
		worker := &infraoutbox.Worker{
			Store:       store,
			Relay:       relay,
			Interval:    cfg.OutboxPollInterval,
			Backoff:     cfg.RetryBackoff,
			MaxAttempts: cfg.OutboxMaxAttempts,
			Logger:      logger,
		}
		infra.background = append(infra.background, worker.Run)
	default:
		box := memory.NewOutbox(relay)
		infra.factory = memory.Factory{Store: memory.NewStore(), Outbox: box}
		infra.outbox = box
		infra.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		infra.inbox = memory.NewInbox()
	}

	infra.receipts = memory.NewReceiptArchive()
	if cfg.S3Enabled() {
		archive, err := s3.NewReceiptArchive(s3.Config{
			Endpoint:  cfg.S3Endpoint,
			UseSSL:    cfg.S3UseSSL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		}, logger)
		if err != nil {
			return infra, err
		}
		infra.receipts = archive
	}

	infra.ledger = memory.NewLedger()
	if cfg.ScyllaEnabled() {
		session, err := scylla.NewSession(ctx, scylla.Config{
			Hosts:    cfg.ScyllaHosts,
			Keyspace: cfg.ScyllaKeyspace,
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
			Timeout:  cfg.ScyllaTimeout,
		}, logger)
		if err != nil {
			return infra, err
		}
		ledger := scylla.NewLedger(session, logger)
		infra.closers = append(infra.closers, func(context.Context) error {
			ledger.Close()
			return nil
		})
		infra.ledger = ledger
	}
	return infra, nil
}

func weekendOrDefault(days inventory.WeekendDays) inventory.WeekendDays {
	if len(days) == 0 {
		return inventory.DefaultWeekend
	}
	return days
}

// run starts every background loop and returns once all of them stopped.
func (a *application) run(ctx context.Context, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	remaining := len(a.background)
	if remaining == 0 {
		close(done)
		return done
	}
	finished := make(chan struct{}, remaining)
	for _, fn := range a.background {
		go func(fn func(ctx context.Context) error) {
			defer func() { finished <- struct{}{} }()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background task stopped", "error", err)
			}
		}(fn)
	}
	go func() {
		for i := 0; i < remaining; i++ {
			<-finished
		}
		close(done)
	}()
	return done
}

func (a *application) close(ctx context.Context, logger *slog.Logger) {
	a.effects.Wait()
	closeAll(ctx, a.closers, logger)
}

func closeAll(ctx context.Context, closers []func(ctx context.Context) error, logger *slog.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := closers[i](closeCtx); err != nil {
			logger.Warn("close failed", "error", err)
		}
		cancel()
	}
}
