package keeper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// Token binds the payment token contract.
type Token struct {
	ContractBase
}

// NewToken binds the token contract at the given address.
func NewToken(address common.Address, backend Backend, log *logging.ColoredLogger) *Token {
	return &Token{
		ContractBase: NewContractBase("Token", address, backend, log),
	}
}

// Approve grants a spender an allowance from the sending account. Required
// before the lock-reward condition can pull the escrow payment.
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int, from common.Address) (*Receipt, error) {
	return t.Send(ctx, from, "approve", spender, amount)
}

// BalanceOf returns the token balance of an account.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	balance := new(big.Int)
	if err := t.Call(ctx, "balanceOf", balance, account); err != nil {
		return nil, err
	}
	return balance, nil
}

// Transfer moves tokens between accounts.
func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int, from common.Address) (*Receipt, error) {
	return t.Send(ctx, from, "transfer", to, amount)
}
