package templates

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ids"
)

// AgreementHash computes the digest a consumer signs to commit to one
// agreement instance: the template address, the per-condition value hashes in
// slot order, the timing vectors and the agreement ID, tightly packed and
// keccak-hashed. Both parties recompute it independently; a single diverging
// byte yields a different signer on recovery.
func AgreementHash(templateAddress common.Address, valueHashes []common.Hash, timeLocks, timeOuts []uint64, agreementID common.Hash) (common.Hash, error) {
	return ids.HashValues(
		ids.Address(templateAddress),
		ids.Bytes32Array(valueHashes),
		ids.Uint64Array(timeLocks),
		ids.Uint64Array(timeOuts),
		ids.Bytes32(agreementID),
	)
}

// ValueHashes computes the per-condition parameter hashes of one escrowed
// access agreement, in slot order. The escrow hash folds in the lock and
// access condition IDs, binding the three slots together.
func (t *EscrowAccessTemplate) ValueHashes(agreementID common.Hash, did common.Hash, amount *big.Int, consumer, publisher common.Address) ([]common.Hash, error) {
	accessHash, err := t.registry.AccessSecretStore.HashValues(did, consumer)
	if err != nil {
		return nil, err
	}
	lockHash, err := t.registry.LockReward.HashValues(t.registry.EscrowReward.Address(), amount)
	if err != nil {
		return nil, err
	}
	accessID := t.registry.AccessSecretStore.GenerateID(agreementID, accessHash)
	lockID := t.registry.LockReward.GenerateID(agreementID, lockHash)
	escrowHash, err := t.registry.EscrowReward.HashValues(amount, publisher, consumer, lockID, accessID)
	if err != nil {
		return nil, err
	}
	return []common.Hash{accessHash, lockHash, escrowHash}, nil
}

// AgreementHash computes the signable digest for one escrowed access
// agreement from asset and participant data.
func (t *EscrowAccessTemplate) AgreementHash(agreementID common.Hash, did common.Hash, amount *big.Int, consumer, publisher common.Address) (common.Hash, error) {
	valueHashes, err := t.ValueHashes(agreementID, did, amount, consumer, publisher)
	if err != nil {
		return common.Hash{}, err
	}
	descriptor := t.ServiceAgreementTemplate()
	return AgreementHash(
		t.Address(),
		valueHashes,
		descriptor.TimeValues("timelock"),
		descriptor.TimeValues("timeout"),
		agreementID,
	)
}
