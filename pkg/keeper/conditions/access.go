package conditions

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// AccessSecretStoreName is the registered contract name of the access-grant
// condition.
const AccessSecretStoreName = "AccessSecretStoreCondition"

// AccessSecretStore grants a consumer decryption access to one asset:
// fulfilled by the publisher after off-chain verification.
type AccessSecretStore struct {
	Base
}

// NewAccessSecretStore binds the access condition at the given address.
func NewAccessSecretStore(address common.Address, backend keeper.Backend, log *logging.ColoredLogger) *AccessSecretStore {
	return &AccessSecretStore{
		Base: Base{ContractBase: keeper.NewContractBase(AccessSecretStoreName, address, backend, log)},
	}
}

// HashValues computes the parameter hash for one instantiation. Parameter
// order: document ID, grantee.
func (c *AccessSecretStore) HashValues(did common.Hash, grantee common.Address) (common.Hash, error) {
	return ids.HashValues(
		ids.Address(c.Address()),
		ids.Bytes32(did),
		ids.Address(grantee),
	)
}

// GenerateIDHash derives the condition instance ID for an agreement.
func (c *AccessSecretStore) GenerateIDHash(agreementID common.Hash, did common.Hash, grantee common.Address) (common.Hash, error) {
	valueHash, err := c.HashValues(did, grantee)
	if err != nil {
		return common.Hash{}, err
	}
	return c.GenerateID(agreementID, valueHash), nil
}

// Fulfill records the access grant on chain. Reports whether a Fulfilled
// event was observed.
func (c *AccessSecretStore) Fulfill(ctx context.Context, agreementID common.Hash, did common.Hash, grantee common.Address, from common.Address) (bool, error) {
	return c.fulfill(ctx, from, agreementID, did, grantee)
}

// CheckPermissions is a read-only query reporting whether the grantee holds
// an access grant for the document. No side effects.
func (c *AccessSecretStore) CheckPermissions(ctx context.Context, grantee common.Address, did common.Hash) (bool, error) {
	var granted bool
	if err := c.Call(ctx, "checkPermissions", &granted, grantee, did); err != nil {
		return false, err
	}
	return granted, nil
}
