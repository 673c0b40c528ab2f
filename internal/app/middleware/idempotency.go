package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
)

// IdempotentCommand carries a client supplied key (the Idempotency-Key
// header) and a fresh pointer of its result type for replays.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency answers a repeated key from the same actor with the first
// successful result while it is younger than ttl (ttl <= 0 never expires).
// Failures are not stored, so a rejected booking can be retried with the same key.
func Idempotency(store IdempotencyStore, codec ResultCodec, ttl time.Duration) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		return CommandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := scopedKey(ctx, idCmd)

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found && (ttl <= 0 || time.Since(rec.OccurredAt) < ttl) {
				return replay(codec, idCmd, rec)
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			rec = IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if result != nil {
				if rec.Payload, err = codec.Encode(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, rec); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

// scopedKey namespaces the client key by actor and command so two guests
// sending the same header value never share a booking.
func scopedKey(ctx context.Context, cmd IdempotentCommand) string {
	parts := []string{cmd.Key(), cmd.IdempotencyKey()}
	if actor, ok := auth.ActorFromContext(ctx); ok {
		parts = append([]string{actor.UserID}, parts...)
	}
	return strings.Join(parts, ":")
}

func replay(codec ResultCodec, cmd IdempotentCommand, rec IdempotencyRecord) (any, error) {
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	return proto, nil
}
