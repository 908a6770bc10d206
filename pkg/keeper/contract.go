package keeper

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// ContractBase is the shared plumbing of one deployed contract handle. It is
// safe for concurrent use: it holds no mutable state, only the address, the
// backend and a logger.
type ContractBase struct {
	name    string
	address common.Address
	backend Backend
	log     *logging.ColoredLogger
}

// NewContractBase binds a named contract at a deployed address.
func NewContractBase(name string, address common.Address, backend Backend, log *logging.ColoredLogger) ContractBase {
	if log == nil {
		log = logging.Nop()
	}
	return ContractBase{name: name, address: address, backend: backend, log: log}
}

// Name returns the contract name.
func (c *ContractBase) Name() string {
	return c.name
}

// Address returns the deployed contract address.
func (c *ContractBase) Address() common.Address {
	return c.address
}

// Call performs a read-only method call.
func (c *ContractBase) Call(ctx context.Context, method string, result interface{}, args ...interface{}) error {
	err := c.backend.Call(ctx, c.address, method, result, args...)
	if err != nil {
		c.log.ComponentError(logging.ComponentKeeper, "contract call failed",
			zap.String("contract", c.name),
			zap.String("method", method),
			zap.Error(err),
		)
	}
	return err
}

// Send submits a state-changing method call from the given account and
// returns the effect receipt.
func (c *ContractBase) Send(ctx context.Context, from common.Address, method string, args ...interface{}) (*Receipt, error) {
	receipt, err := c.backend.Send(ctx, from, c.address, method, args...)
	if err != nil {
		c.log.ComponentError(logging.ComponentKeeper, "contract send failed",
			zap.String("contract", c.name),
			zap.String("method", method),
			zap.String("from", from.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	c.log.ComponentDebug(logging.ComponentKeeper, "contract send confirmed",
		zap.String("contract", c.name),
		zap.String("method", method),
		zap.Int("events", len(receipt.Events)),
	)
	return receipt, nil
}
