package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	roomsapp "hotelbooking/internal/app/handlers/rooms"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/domain/inventory"
	domainroom "hotelbooking/internal/domain/room"
)

func roomPage(total, offset, limit int) dto.RoomCollection {
	out := dto.RoomCollection{}
	for i := offset; i < total && i < offset+limit; i++ {
		out.Items = append(out.Items, dto.RoomView{ID: fmt.Sprintf("r-%d", i)})
	}
	return out
}

func TestInventorySweepVisitsEveryPage(t *testing.T) {
	qb := queries.NewInMemoryBus()
	queries.RegisterHandler[roomsapp.ListRoomsQuery, dto.RoomCollection](qb, roomsapp.ListRoomsKey,
		queries.HandlerFunc[roomsapp.ListRoomsQuery, dto.RoomCollection](func(ctx context.Context, q roomsapp.ListRoomsQuery) (dto.RoomCollection, error) {
			return roomPage(5, q.Offset, q.Limit), nil
		}))

	var visited []string
	cb := commands.NewInMemoryBus()
	commands.RegisterHandler[roomsapp.ReconcileRoomCommand, *roomsapp.ReconcileResult](cb, roomsapp.ReconcileRoomKey,
		commands.HandlerFunc[roomsapp.ReconcileRoomCommand, *roomsapp.ReconcileResult](func(ctx context.Context, cmd roomsapp.ReconcileRoomCommand) (*roomsapp.ReconcileResult, error) {
			actor, err := auth.RequireActor(ctx)
			require.NoError(t, err)
			assert.True(t, actor.IsAdmin())
			visited = append(visited, cmd.RoomID)
			if cmd.RoomID == "r-3" {
				return nil, domainroom.ErrNotFound
			}
			return &roomsapp.ReconcileResult{Drift: inventory.Drift{InSync: cmd.RoomID != "r-1"}}, nil
		}))

	sweep := &InventorySweep{Commands: cb, Queries: qb, PageSize: 2}
	err := sweep.Run(context.Background())

	assert.Equal(t, []string{"r-0", "r-1", "r-2", "r-3", "r-4"}, visited)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainroom.ErrNotFound)
}

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestTickerRunsJobsUntilCancelled(t *testing.T) {
	ok := &countingJob{}
	failing := &countingJob{err: errors.New("boom")}
	ticker := &Ticker{Interval: 5 * time.Millisecond, Jobs: []Job{failing, ok}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ticker.Run(ctx) }()

	require.Eventually(t, func() bool { return ok.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, failing.runs.Load(), int32(2))
}

func TestTickerRequiresInterval(t *testing.T) {
	assert.ErrorIs(t, (&Ticker{}).Run(context.Background()), ErrNoInterval)
}
