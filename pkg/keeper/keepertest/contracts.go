package keepertest

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
)

// execute dispatches a state-changing method to the simulated contract at
// the target address. Called under b.mu.
func (b *Backend) execute(from, contract common.Address, method string, args []interface{}) ([]keeper.Event, error) {
	switch contract {
	case b.addresses.Token:
		return b.tokenSend(from, method, args)
	case b.addresses.Dispenser:
		return b.dispenserSend(from, method, args)
	case b.addresses.DIDRegistry:
		return b.didRegistrySend(from, method, args)
	case b.addresses.EscrowAccessTemplate:
		return b.templateSend(from, method, args)
	case b.addresses.LockRewardCondition, b.addresses.AccessSecretStoreCondition, b.addresses.EscrowReward:
		return b.conditionSend(from, contract, method, args)
	}
	return nil, errors.Newf("no contract at %s", contract.Hex())
}

// query dispatches a read-only method. Called under b.mu.
func (b *Backend) query(contract common.Address, method string, result interface{}, args []interface{}) error {
	switch contract {
	case b.addresses.Token:
		return b.tokenCall(method, result, args)
	case b.addresses.DIDRegistry:
		return b.didRegistryCall(method, result, args)
	case b.addresses.AgreementStoreManager:
		return b.agreementStoreCall(method, result, args)
	case b.addresses.ConditionStoreManager:
		return b.conditionStoreCall(method, result, args)
	case b.addresses.EscrowAccessTemplate:
		return b.templateCall(method, result, args)
	case b.addresses.AccessSecretStoreCondition:
		return b.accessCall(method, result, args)
	}
	return errors.Newf("no contract at %s", contract.Hex())
}

func argHash(args []interface{}, i int) (common.Hash, error) {
	if i < len(args) {
		if h, ok := args[i].(common.Hash); ok {
			return h, nil
		}
	}
	return common.Hash{}, errors.NewValidationError("args", "expected bytes32 argument", i)
}

func argAddress(args []interface{}, i int) (common.Address, error) {
	if i < len(args) {
		if a, ok := args[i].(common.Address); ok {
			return a, nil
		}
	}
	return common.Address{}, errors.NewValidationError("args", "expected address argument", i)
}

func argBig(args []interface{}, i int) (*big.Int, error) {
	if i < len(args) {
		if n, ok := args[i].(*big.Int); ok && n != nil {
			return n, nil
		}
	}
	return nil, errors.NewValidationError("args", "expected uint256 argument", i)
}

func argHashSlice(args []interface{}, i int) ([]common.Hash, error) {
	if i < len(args) {
		if hs, ok := args[i].([]common.Hash); ok {
			return hs, nil
		}
	}
	return nil, errors.NewValidationError("args", "expected bytes32[] argument", i)
}

func argUint64Slice(args []interface{}, i int) ([]uint64, error) {
	if i < len(args) {
		if vs, ok := args[i].([]uint64); ok {
			return vs, nil
		}
	}
	return nil, errors.NewValidationError("args", "expected uint256[] argument", i)
}

func argString(args []interface{}, i int) (string, error) {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s, nil
		}
	}
	return "", errors.NewValidationError("args", "expected string argument", i)
}

// --- token ---

func (b *Backend) tokenSend(from common.Address, method string, args []interface{}) ([]keeper.Event, error) {
	switch method {
	case "approve":
		spender, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		amount, err := argBig(args, 1)
		if err != nil {
			return nil, err
		}
		if b.allowances[from] == nil {
			b.allowances[from] = make(map[common.Address]*big.Int)
		}
		b.allowances[from][spender] = new(big.Int).Set(amount)
		return []keeper.Event{{
			Contract: b.addresses.Token,
			Name:     "Approval",
			Payload: map[string]interface{}{
				"owner":   from,
				"spender": spender,
				"value":   new(big.Int).Set(amount),
			},
		}}, nil

	case "transfer":
		to, err := argAddress(args, 0)
		if err != nil {
			return nil, err
		}
		amount, err := argBig(args, 1)
		if err != nil {
			return nil, err
		}
		if err := b.moveTokens(from, to, amount); err != nil {
			return nil, err
		}
		return []keeper.Event{{
			Contract: b.addresses.Token,
			Name:     "Transfer",
			Payload: map[string]interface{}{
				"from":  from,
				"to":    to,
				"value": new(big.Int).Set(amount),
			},
		}}, nil
	}
	return nil, errors.Newf("token has no method %s", method)
}

func (b *Backend) moveTokens(from, to common.Address, amount *big.Int) error {
	balance := b.balanceOf(from)
	if balance.Cmp(amount) < 0 {
		return errors.NewInsufficientFundsError(from.Hex(), amount.Uint64(), balance.Uint64())
	}
	if _, ok := b.balances[from]; !ok {
		b.balances[from] = new(big.Int)
	}
	b.balances[from].Sub(b.balances[from], amount)
	b.credit(to, amount)
	return nil
}

func (b *Backend) tokenCall(method string, result interface{}, args []interface{}) error {
	switch method {
	case "balanceOf":
		account, err := argAddress(args, 0)
		if err != nil {
			return err
		}
		out, ok := result.(*big.Int)
		if !ok {
			return errors.NewValidationError("result", "balanceOf result must be *big.Int", nil)
		}
		out.Set(b.balanceOf(account))
		return nil

	case "allowance":
		owner, err := argAddress(args, 0)
		if err != nil {
			return err
		}
		spender, err := argAddress(args, 1)
		if err != nil {
			return err
		}
		out, ok := result.(*big.Int)
		if !ok {
			return errors.NewValidationError("result", "allowance result must be *big.Int", nil)
		}
		out.Set(b.allowanceOf(owner, spender))
		return nil
	}
	return errors.Newf("token has no method %s", method)
}

// --- dispenser ---

func (b *Backend) dispenserSend(from common.Address, method string, args []interface{}) ([]keeper.Event, error) {
	if method != "requestTokens" {
		return nil, errors.Newf("dispenser has no method %s", method)
	}
	amount, err := argBig(args, 0)
	if err != nil {
		return nil, err
	}
	b.credit(from, amount)
	return []keeper.Event{{
		Contract: b.addresses.Dispenser,
		Name:     "RequestFulfilled",
		Payload: map[string]interface{}{
			"requester": from,
			"amount":    new(big.Int).Set(amount),
		},
	}}, nil
}

// --- DID registry ---

func (b *Backend) didRegistrySend(from common.Address, method string, args []interface{}) ([]keeper.Event, error) {
	if method != "registerAttribute" {
		return nil, errors.Newf("DID registry has no method %s", method)
	}
	did, err := argHash(args, 0)
	if err != nil {
		return nil, err
	}
	checksum, err := argHash(args, 1)
	if err != nil {
		return nil, err
	}
	value, err := argString(args, 2)
	if err != nil {
		return nil, err
	}
	if existing, ok := b.dids[did]; ok && existing.owner != from {
		return nil, errors.NewUnauthorizedError(from.Hex(), "update a DID owned by another account")
	}
	b.dids[did] = &didRecord{owner: from, checksum: checksum, value: value, block: b.block}
	return []keeper.Event{{
		Contract: b.addresses.DIDRegistry,
		Name:     "DIDAttributeRegistered",
		Payload: map[string]interface{}{
			"did":      did,
			"owner":    from,
			"checksum": checksum,
			"value":    value,
		},
	}}, nil
}

func (b *Backend) didRegistryCall(method string, result interface{}, args []interface{}) error {
	did, err := argHash(args, 0)
	if err != nil {
		return err
	}
	record, ok := b.dids[did]
	if !ok {
		return errors.NewNotFoundError("DID", did.Hex())
	}
	switch method {
	case "getDIDOwner":
		out, ok := result.(*common.Address)
		if !ok {
			return errors.NewValidationError("result", "getDIDOwner result must be *common.Address", nil)
		}
		*out = record.owner
		return nil
	case "getBlockNumberUpdated":
		out, ok := result.(*uint64)
		if !ok {
			return errors.NewValidationError("result", "getBlockNumberUpdated result must be *uint64", nil)
		}
		*out = record.block
		return nil
	}
	return errors.Newf("DID registry has no method %s", method)
}

// --- agreement and condition stores ---

func (b *Backend) agreementStoreCall(method string, result interface{}, args []interface{}) error {
	if method != "getAgreement" {
		return errors.Newf("agreement store has no method %s", method)
	}
	agreementID, err := argHash(args, 0)
	if err != nil {
		return err
	}
	record, ok := b.agreements[agreementID]
	if !ok {
		return errors.NewNotFoundError("agreement", agreementID.Hex())
	}
	out, ok := result.(*keeper.AgreementData)
	if !ok {
		return errors.NewValidationError("result", "getAgreement result must be *keeper.AgreementData", nil)
	}
	*out = keeper.AgreementData{
		DID:                record.did,
		DIDOwner:           record.didOwner,
		TemplateID:         record.templateID,
		ConditionIDs:       append([]common.Hash(nil), record.conditionIDs...),
		LastUpdatedBy:      record.lastUpdatedBy,
		BlockNumberUpdated: record.block,
	}
	return nil
}

func (b *Backend) conditionStoreCall(method string, result interface{}, args []interface{}) error {
	if method != "getCondition" {
		return errors.Newf("condition store has no method %s", method)
	}
	conditionID, err := argHash(args, 0)
	if err != nil {
		return err
	}
	record, ok := b.conditions[conditionID]
	if !ok {
		return errors.NewNotFoundError("condition", conditionID.Hex())
	}
	out, ok := result.(*keeper.ConditionData)
	if !ok {
		return errors.NewValidationError("result", "getCondition result must be *keeper.ConditionData", nil)
	}
	*out = keeper.ConditionData{
		TypeRef:  record.typeRef,
		State:    record.state,
		TimeLock: record.timeLock,
		TimeOut:  record.timeOut,
	}
	return nil
}

// --- escrowed access template ---

// slotTypes returns the condition type addresses in slot order: access,
// lock, escrow.
func (b *Backend) slotTypes() []common.Address {
	return []common.Address{
		b.addresses.AccessSecretStoreCondition,
		b.addresses.LockRewardCondition,
		b.addresses.EscrowReward,
	}
}

func (b *Backend) templateSend(from common.Address, method string, args []interface{}) ([]keeper.Event, error) {
	if method != "createAgreement" {
		return nil, errors.Newf("template has no method %s", method)
	}
	agreementID, err := argHash(args, 0)
	if err != nil {
		return nil, err
	}
	did, err := argHash(args, 1)
	if err != nil {
		return nil, err
	}
	conditionIDs, err := argHashSlice(args, 2)
	if err != nil {
		return nil, err
	}
	timeLocks, err := argUint64Slice(args, 3)
	if err != nil {
		return nil, err
	}
	timeOuts, err := argUint64Slice(args, 4)
	if err != nil {
		return nil, err
	}
	accessConsumer, err := argAddress(args, 5)
	if err != nil {
		return nil, err
	}

	if _, exists := b.agreements[agreementID]; exists {
		return nil, errors.NewAlreadyExistsError("agreement", agreementID.Hex())
	}
	slots := b.slotTypes()
	if len(conditionIDs) != len(slots) || len(timeLocks) != len(slots) || len(timeOuts) != len(slots) {
		return nil, errors.NewRemoteRejectionError("template", "createAgreement", "argument vectors must cover every condition slot")
	}

	var didOwner common.Address
	if record, ok := b.dids[did]; ok {
		didOwner = record.owner
	}

	for i, conditionID := range conditionIDs {
		if existing, ok := b.conditions[conditionID]; ok && existing.agreementID != agreementID {
			return nil, errors.NewAlreadyExistsError("condition", conditionID.Hex())
		}
		var deadline uint64
		if timeOuts[i] > 0 {
			deadline = b.block + timeOuts[i]
		}
		b.conditions[conditionID] = &conditionRecord{
			agreementID: agreementID,
			typeRef:     slots[i],
			state:       keeper.Unfulfilled,
			timeLock:    timeLocks[i],
			timeOut:     timeOuts[i],
			deadline:    deadline,
		}
	}
	b.agreements[agreementID] = &agreementRecord{
		did:            did,
		didOwner:       didOwner,
		templateID:     b.addresses.EscrowAccessTemplate,
		conditionIDs:   append([]common.Hash(nil), conditionIDs...),
		accessConsumer: accessConsumer,
		lastUpdatedBy:  from,
		block:          b.block,
	}

	return []keeper.Event{{
		Contract: b.addresses.EscrowAccessTemplate,
		Name:     "AgreementCreated",
		Payload: map[string]interface{}{
			"agreementId":    agreementID,
			"did":            did,
			"accessConsumer": accessConsumer,
			"accessProvider": didOwner,
		},
	}}, nil
}

func (b *Backend) templateCall(method string, result interface{}, args []interface{}) error {
	if method != "getConditionTypes" {
		return errors.Newf("template has no method %s", method)
	}
	out, ok := result.(*[]common.Address)
	if !ok {
		return errors.NewValidationError("result", "getConditionTypes result must be *[]common.Address", nil)
	}
	*out = b.slotTypes()
	return nil
}
