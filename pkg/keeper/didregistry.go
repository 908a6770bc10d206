package keeper

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// DIDRegistry binds the on-chain registry mapping asset DIDs to their owner
// and metadata service endpoint.
type DIDRegistry struct {
	ContractBase
}

// NewDIDRegistry binds the DID registry at the given address.
func NewDIDRegistry(address common.Address, backend Backend, log *logging.ColoredLogger) *DIDRegistry {
	return &DIDRegistry{
		ContractBase: NewContractBase("DIDRegistry", address, backend, log),
	}
}

// RegisterAttribute records a DID with its metadata checksum and service
// endpoint, owned by the sending account.
func (r *DIDRegistry) RegisterAttribute(ctx context.Context, did common.Hash, checksum common.Hash, value string, owner common.Address) (*Receipt, error) {
	return r.Send(ctx, owner, "registerAttribute", did, checksum, value)
}

// GetDIDOwner returns the owner of a registered DID.
func (r *DIDRegistry) GetDIDOwner(ctx context.Context, did common.Hash) (common.Address, error) {
	var owner common.Address
	if err := r.Call(ctx, "getDIDOwner", &owner, did); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

// GetBlockNumberUpdated returns the block at which the DID record last
// changed.
func (r *DIDRegistry) GetBlockNumberUpdated(ctx context.Context, did common.Hash) (uint64, error) {
	var block uint64
	if err := r.Call(ctx, "getBlockNumberUpdated", &block, did); err != nil {
		return 0, err
	}
	return block, nil
}
