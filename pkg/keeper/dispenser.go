package keeper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// Dispenser binds the development token faucet. Test networks only.
type Dispenser struct {
	ContractBase
}

// NewDispenser binds the dispenser contract at the given address.
func NewDispenser(address common.Address, backend Backend, log *logging.ColoredLogger) *Dispenser {
	return &Dispenser{
		ContractBase: NewContractBase("Dispenser", address, backend, log),
	}
}

// RequestTokens mints tokens to the receiving account.
func (d *Dispenser) RequestTokens(ctx context.Context, amount *big.Int, receiver common.Address) (*Receipt, error) {
	return d.Send(ctx, receiver, "requestTokens", amount)
}
