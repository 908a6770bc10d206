// Package keeper is the client-side binding to the execution environment:
// contract handles, read calls, state-changing sends, and the typed records
// kept by the on-chain agreement and condition stores.
package keeper

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Event is one effect record emitted by the execution environment when state
// changes, observable asynchronously by listeners.
type Event struct {
	Contract common.Address
	Name     string
	Payload  map[string]interface{}
}

// Receipt is the effect receipt of one state-changing send.
type Receipt struct {
	TxHash  common.Hash
	Success bool
	Events  []Event
}

// HasEvent reports whether an event with the given name was emitted in this
// receipt's effect log.
func (r *Receipt) HasEvent(name string) bool {
	if r == nil {
		return false
	}
	for _, ev := range r.Events {
		if ev.Name == name {
			return true
		}
	}
	return false
}

// Backend is the boundary to the execution environment. Two verbs: Call for
// read-only queries returning a typed value, Send for state changes requiring
// a signer address and returning an effect receipt.
//
// Implementations must distinguish explicit rejections (errors.RemoteRejectionError)
// from network failures (errors.TransportError); this layer never retries
// either.
type Backend interface {
	// Call performs a read-only contract method call and decodes the result
	// into result.
	Call(ctx context.Context, contract common.Address, method string, result interface{}, args ...interface{}) error

	// Send submits a state-changing contract method call from the given
	// account.
	Send(ctx context.Context, from common.Address, contract common.Address, method string, args ...interface{}) (*Receipt, error)

	// EventStream opens a stream of all events emitted at or after the time
	// of the call. Events emitted strictly before the stream was opened are
	// not replayed; callers must subscribe before triggering the action they
	// want to observe. The channel is closed when ctx is done.
	EventStream(ctx context.Context) (<-chan Event, error)
}
