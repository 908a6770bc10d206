// Package events routes effect notifications from the execution environment
// to interested parties. Subscriptions only observe events emitted after the
// stream was opened and the subscription registered; there is no replay.
// Callers that must not miss an effect subscribe before triggering the action
// that causes it.
package events

import (
	"context"
	"reflect"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// Filter matches on a subset of an event's payload fields. An empty or nil
// filter matches every payload.
type Filter map[string]interface{}

// matches reports whether every filter entry equals the corresponding
// payload field.
func (f Filter) matches(payload map[string]interface{}) bool {
	for key, want := range f {
		got, ok := payload[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Callback handles one matched event. Callbacks run on the dispatch
// goroutine and must not block.
type Callback func(event keeper.Event)

// subscription is one registered interest: contract, event name, payload
// filter and the delivery callback.
type subscription struct {
	id       uint64
	contract common.Address
	name     string
	filter   Filter
	callback Callback
	once     bool
}

func (s *subscription) matches(event keeper.Event) bool {
	if s.contract != (common.Address{}) && s.contract != event.Contract {
		return false
	}
	if s.name != "" && s.name != event.Name {
		return false
	}
	return s.filter.matches(event.Payload)
}

// Handler owns the event stream of one backend and fans matched events out
// to subscriptions. One dispatch goroutine serves all subscriptions, so
// delivery order follows emission order.
type Handler struct {
	backend keeper.Backend
	log     *logging.ColoredLogger

	mu      sync.Mutex
	subs    map[uint64]*subscription
	nextID  uint64
	started bool
	done    chan struct{}
}

// NewHandler creates an event handler over the given backend. Call Start
// before registering subscriptions that must not miss events.
func NewHandler(backend keeper.Backend, log *logging.ColoredLogger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{
		backend: backend,
		log:     log,
		subs:    make(map[uint64]*subscription),
		done:    make(chan struct{}),
	}
}

// Start opens the backend event stream and launches the dispatch loop. The
// loop runs until the context is cancelled or the stream closes. Events
// emitted before Start are never delivered.
func (h *Handler) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return errors.New("event handler already started")
	}
	h.started = true
	h.mu.Unlock()

	stream, err := h.backend.EventStream(ctx)
	if err != nil {
		return errors.Wrap(err, "opening event stream failed")
	}

	go h.dispatch(ctx, stream)
	return nil
}

// Done is closed when the dispatch loop has exited.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) dispatch(ctx context.Context, stream <-chan keeper.Event) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-stream:
			if !ok {
				h.log.ComponentDebug(logging.ComponentEvents, "event stream closed")
				return
			}
			h.deliver(event)
		}
	}
}

func (h *Handler) deliver(event keeper.Event) {
	h.mu.Lock()
	var matched []*subscription
	for _, sub := range h.subs {
		if sub.matches(event) {
			matched = append(matched, sub)
			if sub.once {
				delete(h.subs, sub.id)
			}
		}
	}
	h.mu.Unlock()

	if len(matched) > 0 {
		h.log.ComponentDebug(logging.ComponentEvents, "dispatching event",
			zap.String("event", event.Name),
			zap.String("contract", event.Contract.Hex()),
			zap.Int("subscribers", len(matched)),
		)
	}
	for _, sub := range matched {
		sub.callback(event)
	}
}

func (h *Handler) add(sub *subscription) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	return sub.id
}

func (h *Handler) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// subscriberCount reports the live subscription count, for tests.
func (h *Handler) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
