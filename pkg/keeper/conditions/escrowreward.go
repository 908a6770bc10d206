package conditions

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// EscrowRewardName is the registered contract name of the escrow-release
// condition.
const EscrowRewardName = "EscrowReward"

// EscrowReward releases the escrowed payment to the receiver once both the
// lock and release conditions are fulfilled, or refunds the sender if the
// release condition aborted.
type EscrowReward struct {
	Base
}

// NewEscrowReward binds the escrow-reward condition at the given address.
func NewEscrowReward(address common.Address, backend keeper.Backend, log *logging.ColoredLogger) *EscrowReward {
	return &EscrowReward{
		Base: Base{ContractBase: keeper.NewContractBase(EscrowRewardName, address, backend, log)},
	}
}

// HashValues computes the parameter hash for one instantiation. Parameter
// order: amount, receiver, sender, lock condition ID, release condition ID.
func (c *EscrowReward) HashValues(amount *big.Int, receiver, sender common.Address, lockCondition, releaseCondition common.Hash) (common.Hash, error) {
	return ids.HashValues(
		ids.Address(c.Address()),
		ids.Uint256(amount),
		ids.Address(receiver),
		ids.Address(sender),
		ids.Bytes32(lockCondition),
		ids.Bytes32(releaseCondition),
	)
}

// GenerateIDHash derives the condition instance ID for an agreement.
func (c *EscrowReward) GenerateIDHash(agreementID common.Hash, amount *big.Int, receiver, sender common.Address, lockCondition, releaseCondition common.Hash) (common.Hash, error) {
	valueHash, err := c.HashValues(amount, receiver, sender, lockCondition, releaseCondition)
	if err != nil {
		return common.Hash{}, err
	}
	return c.GenerateID(agreementID, valueHash), nil
}

// Fulfill releases (or refunds) the escrowed amount. Reports whether a
// Fulfilled event was observed.
func (c *EscrowReward) Fulfill(ctx context.Context, agreementID common.Hash, amount *big.Int, receiver, sender common.Address, lockCondition, releaseCondition common.Hash, from common.Address) (bool, error) {
	return c.fulfill(ctx, from, agreementID, amount, receiver, sender, lockCondition, releaseCondition)
}
