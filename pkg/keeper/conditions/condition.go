// Package conditions holds the typed handles to the on-chain conditional
// payment primitives. Each concrete condition fixes its own parameter order;
// that order is part of the protocol contract and must never change without a
// template version bump.
package conditions

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
)

// Condition is the capability shared by every condition handle: identifier
// derivation plus its deployed address. Concrete types add their strongly
// typed HashValues and Fulfill operations.
type Condition interface {
	Name() string
	Address() common.Address
}

// Base carries the remote plumbing common to all condition types.
type Base struct {
	keeper.ContractBase
}

// GenerateID derives the condition instance identifier for one agreement:
// keccak256(agreementId ++ valueHash). The valueHash must come from the
// concrete condition's HashValues so the condition type address is bound in.
func (b *Base) GenerateID(agreementID common.Hash, valueHash common.Hash) common.Hash {
	return ids.GenerateConditionID(agreementID, valueHash)
}

// fulfill submits the state-changing fulfill call and reports whether a
// Fulfilled event was observed in the effect log. A rejection by the
// execution environment (dependency not satisfied, double fulfillment,
// insufficient balance) is returned as-is, never retried here.
func (b *Base) fulfill(ctx context.Context, from common.Address, args ...interface{}) (bool, error) {
	receipt, err := b.Send(ctx, from, "fulfill", args...)
	if err != nil {
		return false, err
	}
	return receipt.HasEvent("Fulfilled"), nil
}

// AbortByTimeout transitions the condition from Unfulfilled to Aborted once
// its on-chain timeout has elapsed. Any party may call it; the execution
// environment rejects the call if the condition is already terminal.
func (b *Base) AbortByTimeout(ctx context.Context, conditionID common.Hash, from common.Address) (*keeper.Receipt, error) {
	return b.Send(ctx, from, "abortByTimeOut", conditionID)
}
