package policies

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []NoticeKind
	fail  bool
}

func (n *recordingNotifier) SendBookingConfirmation(_ context.Context, notice BookingNotice) error {
	return n.record(notice)
}

func (n *recordingNotifier) SendCancellationConfirmation(_ context.Context, notice BookingNotice) error {
	return n.record(notice)
}

func (n *recordingNotifier) record(notice BookingNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, notice.Kind)
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

type failingArchive struct{}

func (failingArchive) Store(context.Context, Receipt) (string, error) {
	return "", errors.New("bucket missing")
}

func TestEffectsSwallowFailures(t *testing.T) {
	notifier := &recordingNotifier{fail: true}
	effects := &Effects{Notifier: notifier, Receipts: failingArchive{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	effects.Dispatch(ctx, Committed{
		Notice:  &BookingNotice{Kind: NoticeBookingConfirmation, BookingID: "b-1"},
		Receipt: &Receipt{BookingID: "b-1"},
	})
	effects.Dispatch(ctx, Committed{Notice: &BookingNotice{Kind: NoticeCancellation, BookingID: "b-1"}})
	effects.Wait()

	assert.ElementsMatch(t, []NoticeKind{NoticeBookingConfirmation, NoticeCancellation}, notifier.kinds)
}

func TestNilEffectsIsSafe(t *testing.T) {
	var effects *Effects
	effects.Dispatch(context.Background(), Committed{})
	effects.Wait()
}
