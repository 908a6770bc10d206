package keepertest

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
)

// conditionSend handles fulfill and abortByTimeOut on the three condition
// contracts. Fulfillment derives the condition ID from the submitted
// parameters exactly as the client does; an agreement created from different
// parameters simply has no record under the derived ID and the call is
// rejected.
func (b *Backend) conditionSend(from, contract common.Address, method string, args []interface{}) ([]keeper.Event, error) {
	switch method {
	case "abortByTimeOut":
		conditionID, err := argHash(args, 0)
		if err != nil {
			return nil, err
		}
		return b.abortByTimeout(contract, conditionID)
	case "fulfill":
		switch contract {
		case b.addresses.LockRewardCondition:
			return b.fulfillLockReward(from, args)
		case b.addresses.AccessSecretStoreCondition:
			return b.fulfillAccess(from, args)
		case b.addresses.EscrowReward:
			return b.fulfillEscrowReward(from, args)
		}
	}
	return nil, errors.Newf("condition has no method %s", method)
}

func (b *Backend) abortByTimeout(contract common.Address, conditionID common.Hash) ([]keeper.Event, error) {
	record, ok := b.conditions[conditionID]
	if !ok {
		return nil, errors.NewNotFoundError("condition", conditionID.Hex())
	}
	if record.typeRef != contract {
		return nil, errors.NewRemoteRejectionError("condition", "abortByTimeOut", "condition belongs to another contract")
	}
	if record.state.Terminal() {
		return nil, errors.NewRemoteRejectionError("condition", "abortByTimeOut", "condition is already terminal")
	}
	if record.deadline == 0 {
		return nil, errors.NewRemoteRejectionError("condition", "abortByTimeOut", "condition has no timeout")
	}
	if b.block < record.deadline {
		return nil, errors.NewRemoteRejectionError("condition", "abortByTimeOut", "timeout has not elapsed")
	}
	record.state = keeper.Aborted
	return []keeper.Event{{
		Contract: contract,
		Name:     "Aborted",
		Payload: map[string]interface{}{
			"agreementId": record.agreementID,
			"conditionId": conditionID,
		},
	}}, nil
}

// fulfillable fetches the condition record under the derived ID and checks
// the state transition is legal.
func (b *Backend) fulfillable(operation string, conditionID common.Hash) (*conditionRecord, error) {
	record, ok := b.conditions[conditionID]
	if !ok {
		return nil, errors.NewRemoteRejectionError("condition", operation, "no condition under the derived ID; parameters do not match the agreement")
	}
	switch record.state {
	case keeper.Unfulfilled:
		return record, nil
	case keeper.Fulfilled:
		return nil, errors.NewRemoteRejectionError("condition", operation, "condition is already fulfilled")
	default:
		return nil, errors.NewRemoteRejectionError("condition", operation, "condition is not in a fulfillable state")
	}
}

func (b *Backend) fulfillLockReward(from common.Address, args []interface{}) ([]keeper.Event, error) {
	agreementID, err := argHash(args, 0)
	if err != nil {
		return nil, err
	}
	rewardAddress, err := argAddress(args, 1)
	if err != nil {
		return nil, err
	}
	amount, err := argBig(args, 2)
	if err != nil {
		return nil, err
	}

	valueHash, err := ids.HashValues(
		ids.Address(b.addresses.LockRewardCondition),
		ids.Address(rewardAddress),
		ids.Uint256(amount),
	)
	if err != nil {
		return nil, err
	}
	conditionID := ids.GenerateConditionID(agreementID, valueHash)
	record, err := b.fulfillable("lockReward.fulfill", conditionID)
	if err != nil {
		return nil, err
	}

	// The condition pulls the payment via the allowance granted to it.
	allowance := b.allowanceOf(from, b.addresses.LockRewardCondition)
	if allowance.Cmp(amount) < 0 {
		return nil, errors.NewRemoteRejectionError("condition", "lockReward.fulfill", "allowance below the agreed amount")
	}
	if err := b.moveTokens(from, rewardAddress, amount); err != nil {
		return nil, err
	}
	if spenders := b.allowances[from]; spenders != nil && spenders[b.addresses.LockRewardCondition] != nil {
		spenders[b.addresses.LockRewardCondition].Sub(allowance, amount)
	}

	record.state = keeper.Fulfilled
	return []keeper.Event{{
		Contract: b.addresses.LockRewardCondition,
		Name:     "Fulfilled",
		Payload: map[string]interface{}{
			"agreementId":   agreementID,
			"conditionId":   conditionID,
			"rewardAddress": rewardAddress,
			"amount":        new(big.Int).Set(amount),
		},
	}}, nil
}

func (b *Backend) fulfillAccess(from common.Address, args []interface{}) ([]keeper.Event, error) {
	agreementID, err := argHash(args, 0)
	if err != nil {
		return nil, err
	}
	did, err := argHash(args, 1)
	if err != nil {
		return nil, err
	}
	grantee, err := argAddress(args, 2)
	if err != nil {
		return nil, err
	}

	valueHash, err := ids.HashValues(
		ids.Address(b.addresses.AccessSecretStoreCondition),
		ids.Bytes32(did),
		ids.Address(grantee),
	)
	if err != nil {
		return nil, err
	}
	conditionID := ids.GenerateConditionID(agreementID, valueHash)
	record, err := b.fulfillable("accessSecretStore.fulfill", conditionID)
	if err != nil {
		return nil, err
	}

	// Only the document owner can grant access.
	if didRecord, ok := b.dids[did]; ok && didRecord.owner != from {
		return nil, errors.NewUnauthorizedError(from.Hex(), "grant access to a document owned by another account")
	}

	record.state = keeper.Fulfilled
	if b.grants[did] == nil {
		b.grants[did] = make(map[common.Address]bool)
	}
	b.grants[did][grantee] = true

	return []keeper.Event{{
		Contract: b.addresses.AccessSecretStoreCondition,
		Name:     "Fulfilled",
		Payload: map[string]interface{}{
			"agreementId": agreementID,
			"conditionId": conditionID,
			"documentId":  did,
			"grantee":     grantee,
		},
	}}, nil
}

func (b *Backend) fulfillEscrowReward(from common.Address, args []interface{}) ([]keeper.Event, error) {
	agreementID, err := argHash(args, 0)
	if err != nil {
		return nil, err
	}
	amount, err := argBig(args, 1)
	if err != nil {
		return nil, err
	}
	receiver, err := argAddress(args, 2)
	if err != nil {
		return nil, err
	}
	sender, err := argAddress(args, 3)
	if err != nil {
		return nil, err
	}
	lockConditionID, err := argHash(args, 4)
	if err != nil {
		return nil, err
	}
	releaseConditionID, err := argHash(args, 5)
	if err != nil {
		return nil, err
	}

	valueHash, err := ids.HashValues(
		ids.Address(b.addresses.EscrowReward),
		ids.Uint256(amount),
		ids.Address(receiver),
		ids.Address(sender),
		ids.Bytes32(lockConditionID),
		ids.Bytes32(releaseConditionID),
	)
	if err != nil {
		return nil, err
	}
	conditionID := ids.GenerateConditionID(agreementID, valueHash)
	record, err := b.fulfillable("escrowReward.fulfill", conditionID)
	if err != nil {
		return nil, err
	}

	lock, ok := b.conditions[lockConditionID]
	if !ok || lock.state != keeper.Fulfilled {
		return nil, errors.NewRemoteRejectionError("condition", "escrowReward.fulfill", "lock condition is not fulfilled")
	}
	release, ok := b.conditions[releaseConditionID]
	if !ok {
		return nil, errors.NewRemoteRejectionError("condition", "escrowReward.fulfill", "unknown release condition")
	}

	// Fulfilled release pays the receiver; aborted release refunds the
	// sender; anything else is premature.
	var payee common.Address
	switch release.state {
	case keeper.Fulfilled:
		payee = receiver
	case keeper.Aborted:
		payee = sender
	default:
		return nil, errors.NewRemoteRejectionError("condition", "escrowReward.fulfill", "release condition is not terminal")
	}
	if err := b.moveTokens(b.addresses.EscrowReward, payee, amount); err != nil {
		return nil, err
	}

	record.state = keeper.Fulfilled
	return []keeper.Event{{
		Contract: b.addresses.EscrowReward,
		Name:     "Fulfilled",
		Payload: map[string]interface{}{
			"agreementId": agreementID,
			"conditionId": conditionID,
			"receiver":    payee,
			"amount":      new(big.Int).Set(amount),
		},
	}}, nil
}

func (b *Backend) accessCall(method string, result interface{}, args []interface{}) error {
	if method != "checkPermissions" {
		return errors.Newf("access condition has no method %s", method)
	}
	grantee, err := argAddress(args, 0)
	if err != nil {
		return err
	}
	did, err := argHash(args, 1)
	if err != nil {
		return err
	}
	out, ok := result.(*bool)
	if !ok {
		return errors.NewValidationError("result", "checkPermissions result must be *bool", nil)
	}
	*out = b.grants[did][grantee]
	return nil
}
