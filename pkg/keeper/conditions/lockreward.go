package conditions

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// LockRewardName is the registered contract name of the lock-reward
// condition.
const LockRewardName = "LockRewardCondition"

// LockReward escrows the consumer's payment: fulfilled when the agreed token
// amount has been transferred to the reward address.
type LockReward struct {
	Base
}

// NewLockReward binds the lock-reward condition at the given address.
func NewLockReward(address common.Address, backend keeper.Backend, log *logging.ColoredLogger) *LockReward {
	return &LockReward{
		Base: Base{ContractBase: keeper.NewContractBase(LockRewardName, address, backend, log)},
	}
}

// HashValues computes the parameter hash for one instantiation. Parameter
// order: reward address, amount.
func (c *LockReward) HashValues(rewardAddress common.Address, amount *big.Int) (common.Hash, error) {
	return ids.HashValues(
		ids.Address(c.Address()),
		ids.Address(rewardAddress),
		ids.Uint256(amount),
	)
}

// GenerateIDHash derives the condition instance ID for an agreement.
func (c *LockReward) GenerateIDHash(agreementID common.Hash, rewardAddress common.Address, amount *big.Int) (common.Hash, error) {
	valueHash, err := c.HashValues(rewardAddress, amount)
	if err != nil {
		return common.Hash{}, err
	}
	return c.GenerateID(agreementID, valueHash), nil
}

// Fulfill transfers the token amount into escrow. The sender must have
// approved the allowance beforehand. Reports whether a Fulfilled event was
// observed.
func (c *LockReward) Fulfill(ctx context.Context, agreementID common.Hash, rewardAddress common.Address, amount *big.Int, from common.Address) (bool, error) {
	return c.fulfill(ctx, from, agreementID, rewardAddress, amount)
}
