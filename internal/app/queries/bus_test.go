package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomQuery struct{ ID string }

func (roomQuery) Key() string { return "test.room" }

type otherQuery struct{}

func (otherQuery) Key() string { return "test.other" }

func TestAskTyped(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[roomQuery, string](bus, "test.room", HandlerFunc[roomQuery, string](func(_ context.Context, q roomQuery) (string, error) {
		return "room:" + q.ID, nil
	}))

	out, err := Ask[roomQuery, string](context.Background(), bus, roomQuery{ID: "101"})
	require.NoError(t, err)
	assert.Equal(t, "room:101", out)

	_, err = Ask[roomQuery, int](context.Background(), bus, roomQuery{})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = bus.Ask(context.Background(), otherQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Ask[roomQuery, string](context.Background(), nil, roomQuery{})
	assert.ErrorIs(t, err, ErrNilBus)
	assert.Equal(t, []string{"test.room"}, bus.Keys())
}

func TestEmptyKeyPanics(t *testing.T) {
	h := HandlerFunc[roomQuery, string](func(context.Context, roomQuery) (string, error) { return "", nil })
	assert.Panics(t, func() { RegisterHandler[roomQuery, string](NewInMemoryBus(), "", h) })
}
