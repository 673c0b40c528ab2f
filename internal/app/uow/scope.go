package uow

import (
	"context"
	"errors"
	"sync"
)

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work in scope")

type (
	unitKey  struct{}
	hooksKey struct{}
)

// Bind attaches unit to ctx, letting the unit inject its own transport state first.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext returns the unit bound by the innermost Bind.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}

// Hooks collects callbacks that must only run once the unit has committed,
// such as releasing notifications for a booking that was actually stored.
type Hooks struct {
	mu  sync.Mutex
	fns []func()
}

func WithHooks(ctx context.Context) (context.Context, *Hooks) {
	h := &Hooks{}
	return context.WithValue(ctx, hooksKey{}, h), h
}

// AfterCommit defers fn until commit. Without a transaction scope fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if fn == nil {
		return
	}
	h, ok := ctx.Value(hooksKey{}).(*Hooks)
	if !ok || h == nil {
		fn()
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

// Run executes and clears the collected callbacks in registration order.
func (h *Hooks) Run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Discard drops callbacks registered by an attempt that did not commit.
func (h *Hooks) Discard() {
	h.mu.Lock()
	h.fns = nil
	h.mu.Unlock()
}
