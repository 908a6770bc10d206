// Package templates encodes exchange patterns as ordered, interdependent
// sets of conditions. A template is immutable configuration: it declares
// condition positions, a dependency map and timing parameters, and it
// materializes condition identifiers from asset, consumer and publisher data.
package templates

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ddo"
	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/conditions"
)

// ConditionStatus is the derived status view of one condition slot within an
// agreement: its current state plus whether unfulfilled dependencies block
// it.
type ConditionStatus struct {
	Ref          string
	ContractName string
	State        keeper.ConditionState
	Blocked      bool
	BlockedBy    []string
}

// Template is the capability shared by agreement templates: the static
// descriptor and the condition set backing it.
type Template interface {
	Name() string
	Address() common.Address
	ServiceAgreementTemplate() *ddo.ServiceAgreementTemplate
	Conditions() []conditions.Condition
}

// Base carries the plumbing shared by template kinds: the contract handle,
// the condition registry and the store managers used to derive status views.
type Base struct {
	keeper.ContractBase

	registry       *conditions.Registry
	agreementStore *keeper.AgreementStoreManager
	conditionStore *keeper.ConditionStoreManager
}

// GetConditionTypes returns the ordered condition type addresses as recorded
// on chain, matching the order of the template's condition slots.
func (b *Base) GetConditionTypes(ctx context.Context) ([]common.Address, error) {
	var types []common.Address
	if err := b.Call(ctx, "getConditionTypes", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// ResolveConditions maps the on-chain condition type addresses onto live
// handles via the registry.
func (b *Base) ResolveConditions(ctx context.Context) ([]conditions.Condition, error) {
	types, err := b.GetConditionTypes(ctx)
	if err != nil {
		return nil, err
	}
	resolved := make([]conditions.Condition, 0, len(types))
	for _, addr := range types {
		cond, ok := b.registry.ByAddress(addr)
		if !ok {
			return nil, errors.NewNotFoundError("condition type", addr.Hex())
		}
		resolved = append(resolved, cond)
	}
	return resolved, nil
}

// agreementStatus walks the template's dependency graph against the current
// condition store records. The view is recomputed on every call: condition
// state changes externally and is never cached client-side.
func (b *Base) agreementStatus(ctx context.Context, agreementID common.Hash, descriptor *ddo.ServiceAgreementTemplate) (map[string]ConditionStatus, error) {
	agreement, err := b.agreementStore.GetAgreement(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if len(agreement.ConditionIDs) != len(descriptor.Conditions) {
		return nil, errors.NewProtocolMismatchError(
			"agreement condition count does not match template",
			"", "",
		)
	}

	states := make(map[string]keeper.ConditionState, len(descriptor.Conditions))
	contractNames := make(map[string]string, len(descriptor.Conditions))
	for i, slot := range descriptor.Conditions {
		record, err := b.conditionStore.GetCondition(ctx, agreement.ConditionIDs[i])
		if err != nil {
			return nil, err
		}
		states[slot.Name] = record.State
		contractNames[slot.Name] = slot.ContractName
	}

	return evaluateDependencies(descriptor.ConditionDependency, states, contractNames), nil
}

// evaluateDependencies computes the blocked view for any dependency graph:
// a condition is blocked exactly when at least one of its declared
// dependencies is not Fulfilled.
func evaluateDependencies(deps map[string][]string, states map[string]keeper.ConditionState, contractNames map[string]string) map[string]ConditionStatus {
	out := make(map[string]ConditionStatus, len(states))
	for ref, state := range states {
		var blockedBy []string
		for _, dep := range deps[ref] {
			if states[dep] != keeper.Fulfilled {
				blockedBy = append(blockedBy, dep)
			}
		}
		sort.Strings(blockedBy)
		out[ref] = ConditionStatus{
			Ref:          ref,
			ContractName: contractNames[ref],
			State:        state,
			Blocked:      len(blockedBy) > 0,
			BlockedBy:    blockedBy,
		}
	}
	return out
}
