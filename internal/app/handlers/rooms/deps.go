package rooms

import (
	"context"
	"log/slog"
	"time"

	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/outbox"
	"hotelbooking/internal/app/uow"
)

type Deps struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (d Deps) now() time.Time {
	return handlersupport.Clock(d.Now)
}

func (d Deps) record(ctx context.Context, aggregates ...outbox.EventSource) error {
	return outbox.RecordAggregates(ctx, d.Outbox, d.Encoder, aggregates...)
}

func (d Deps) log() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
