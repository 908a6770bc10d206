package keeper

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// ConditionData is the on-chain record of one condition instance.
type ConditionData struct {
	TypeRef  common.Address // address of the condition contract
	State    ConditionState
	TimeLock uint64
	TimeOut  uint64
}

// ConditionStoreManager reads condition records from the execution
// environment. Lookups are always fresh; condition state is the shared
// mutable resource and the chain is its single source of truth.
type ConditionStoreManager struct {
	ContractBase
}

// NewConditionStoreManager binds the condition store at the given address.
func NewConditionStoreManager(address common.Address, backend Backend, log *logging.ColoredLogger) *ConditionStoreManager {
	return &ConditionStoreManager{
		ContractBase: NewContractBase("ConditionStoreManager", address, backend, log),
	}
}

// GetCondition fetches the record for one condition ID.
func (m *ConditionStoreManager) GetCondition(ctx context.Context, conditionID common.Hash) (*ConditionData, error) {
	var data ConditionData
	if err := m.Call(ctx, "getCondition", &data, conditionID); err != nil {
		return nil, err
	}
	return &data, nil
}
