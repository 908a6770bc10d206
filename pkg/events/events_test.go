package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
)

// streamBackend is a minimal backend for exercising the dispatch loop. It
// delivers events only to streams that were already open at emission time,
// matching the no-replay contract.
type streamBackend struct {
	mu      sync.Mutex
	streams []chan keeper.Event
}

func (b *streamBackend) Call(ctx context.Context, contract common.Address, method string, result interface{}, args ...interface{}) error {
	return errors.New("not implemented")
}

func (b *streamBackend) Send(ctx context.Context, from, contract common.Address, method string, args ...interface{}) (*keeper.Receipt, error) {
	return nil, errors.New("not implemented")
}

func (b *streamBackend) EventStream(ctx context.Context) (<-chan keeper.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan keeper.Event, 64)
	b.streams = append(b.streams, ch)
	return ch, nil
}

func (b *streamBackend) Emit(event keeper.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.streams {
		ch <- event
	}
}

func startedHandler(t *testing.T) (*Handler, *streamBackend) {
	t.Helper()
	backend := &streamBackend{}
	handler := NewHandler(backend, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := handler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return handler, backend
}

func contractAddr(b byte) common.Address {
	var a common.Address
	a[0] = b
	return a
}

func TestSubscribeReceivesMatchingEvents(t *testing.T) {
	handler, backend := startedHandler(t)
	contract := contractAddr(0x01)

	received := make(chan keeper.Event, 8)
	handler.Subscribe(contract, "Fulfilled", nil, func(event keeper.Event) {
		received <- event
	})

	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled", Payload: map[string]interface{}{"n": 1}})
	backend.Emit(keeper.Event{Contract: contract, Name: "Aborted"})
	backend.Emit(keeper.Event{Contract: contractAddr(0x02), Name: "Fulfilled"})
	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled", Payload: map[string]interface{}{"n": 2}})

	for _, want := range []int{1, 2} {
		select {
		case event := <-received:
			if event.Payload["n"] != want {
				t.Errorf("event payload n = %v, want %d (delivery must follow emission order)", event.Payload["n"], want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	select {
	case event := <-received:
		t.Fatalf("unexpected extra delivery: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribePayloadFilter(t *testing.T) {
	handler, backend := startedHandler(t)
	contract := contractAddr(0x01)
	agreementID := common.HexToHash("0xee")

	received := make(chan keeper.Event, 8)
	handler.Subscribe(contract, "Fulfilled", Filter{"agreementId": agreementID}, func(event keeper.Event) {
		received <- event
	})

	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled", Payload: map[string]interface{}{"agreementId": common.HexToHash("0xaa")}})
	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled", Payload: map[string]interface{}{"agreementId": agreementID}})

	select {
	case event := <-received:
		if event.Payload["agreementId"] != agreementID {
			t.Errorf("filtered delivery payload = %v", event.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for filtered event")
	}
}

func TestOnceDeliversExactlyOnce(t *testing.T) {
	handler, backend := startedHandler(t)
	contract := contractAddr(0x01)

	waiter := handler.Once(contract, "Fulfilled", nil)

	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled", Payload: map[string]interface{}{"n": 1}})
	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled", Payload: map[string]interface{}{"n": 2}})

	event, err := waiter.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if event.Payload["n"] != 1 {
		t.Errorf("Wait() delivered n = %v, want first emission", event.Payload["n"])
	}

	deadline := time.Now().Add(time.Second)
	for handler.subscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("one-shot registration was not removed after delivery")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestOnceMissesEventEmittedBeforeRegistration(t *testing.T) {
	handler, backend := startedHandler(t)
	contract := contractAddr(0x01)

	// The effect fires first; only then does the party register interest.
	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled"})

	// Give the dispatch loop time to consume the emission.
	time.Sleep(20 * time.Millisecond)

	waiter := handler.Once(contract, "Fulfilled", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := waiter.Wait(ctx)
	if err == nil {
		t.Fatal("a waiter registered after the emission must never resolve")
	}
	if !errors.IsTimeout(err) {
		t.Errorf("Wait() error = %v, want timeout", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	handler, backend := startedHandler(t)
	contract := contractAddr(0x01)

	received := make(chan keeper.Event, 8)
	sub := handler.Subscribe(contract, "Fulfilled", nil, func(event keeper.Event) {
		received <- event
	})

	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled"})
	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first event")
	}

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	backend.Emit(keeper.Event{Contract: contract, Name: "Fulfilled"})
	select {
	case event := <-received:
		t.Fatalf("delivery after Unsubscribe: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandlerStartTwice(t *testing.T) {
	backend := &streamBackend{}
	handler := NewHandler(backend, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := handler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := handler.Start(ctx); err == nil {
		t.Error("second Start() must fail")
	}
}

func TestHandlerStopsOnContextCancel(t *testing.T) {
	backend := &streamBackend{}
	handler := NewHandler(backend, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := handler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	cancel()
	select {
	case <-handler.Done():
	case <-time.After(time.Second):
		t.Fatal("dispatch loop did not exit on context cancellation")
	}
}
