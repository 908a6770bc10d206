package events

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
)

// Subscription is a persistent registration: the callback fires for every
// matching event until Unsubscribe is called.
type Subscription struct {
	handler *Handler
	id      uint64
}

// Unsubscribe removes the registration. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.handler.remove(s.id)
}

// Subscribe registers a persistent callback for events of the given name on
// the given contract, optionally narrowed by a payload filter. A zero
// contract address matches any contract.
func (h *Handler) Subscribe(contract common.Address, name string, filter Filter, callback Callback) *Subscription {
	sub := &subscription{
		contract: contract,
		name:     name,
		filter:   filter,
		callback: callback,
	}
	id := h.add(sub)
	return &Subscription{handler: h, id: id}
}

// OnceWaiter is a one-shot registration. It resolves with the first matching
// event and never fires again.
type OnceWaiter struct {
	handler *Handler
	id      uint64
	ch      chan keeper.Event
}

// C exposes the delivery channel. It receives at most one event.
func (w *OnceWaiter) C() <-chan keeper.Event {
	return w.ch
}

// Wait blocks until the event arrives or the context ends. An event emitted
// before the waiter was registered is never delivered; waiting on it ends
// only through the context.
func (w *OnceWaiter) Wait(ctx context.Context) (keeper.Event, error) {
	select {
	case event := <-w.ch:
		return event, nil
	case <-ctx.Done():
		w.Cancel()
		if ctx.Err() == context.DeadlineExceeded {
			return keeper.Event{}, errors.NewTimeoutError("event wait", "")
		}
		return keeper.Event{}, errors.Wrap(ctx.Err(), "event wait cancelled")
	}
}

// Cancel withdraws the registration if the event has not fired yet.
func (w *OnceWaiter) Cancel() {
	w.handler.remove(w.id)
}

// Once registers a one-shot waiter for the first event matching contract,
// name and filter. Register before triggering the action that emits the
// event, or the effect may slip past unobserved.
func (h *Handler) Once(contract common.Address, name string, filter Filter) *OnceWaiter {
	ch := make(chan keeper.Event, 1)
	sub := &subscription{
		contract: contract,
		name:     name,
		filter:   filter,
		once:     true,
		callback: func(event keeper.Event) {
			ch <- event
		},
	}
	id := h.add(sub)
	return &OnceWaiter{handler: h, id: id, ch: ch}
}
