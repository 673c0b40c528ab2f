package memory

import (
	"context"
	"encoding/json"
	"sync"

	"hotelbooking/internal/app/policies"
)

// ReceiptArchive keeps the latest receipt JSON per booking.
type ReceiptArchive struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewReceiptArchive() *ReceiptArchive {
	return &ReceiptArchive{items: make(map[string][]byte)}
}

func (a *ReceiptArchive) Store(ctx context.Context, receipt policies.Receipt) (string, error) {
	data, err := json.Marshal(receipt)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.items[receipt.BookingID] = data
	a.mu.Unlock()
	return "memory://receipts/" + receipt.BookingID + ".json", nil
}

func (a *ReceiptArchive) Load(bookingID string) (policies.Receipt, bool) {
	a.mu.RLock()
	data, ok := a.items[bookingID]
	a.mu.RUnlock()
	if !ok {
		return policies.Receipt{}, false
	}
	var rec policies.Receipt
	if err := json.Unmarshal(data, &rec); err != nil {
		return policies.Receipt{}, false
	}
	return rec, true
}

var _ policies.ReceiptArchive = (*ReceiptArchive)(nil)
