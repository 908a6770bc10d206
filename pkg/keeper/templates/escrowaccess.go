package templates

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/ddo"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/conditions"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// EscrowAccessTemplateName is the registered contract name of the escrowed
// access exchange pattern.
const EscrowAccessTemplateName = "EscrowAccessSecretStoreTemplate"

// Condition slot names within the escrowed access pattern. The slot order is
// part of the protocol: condition IDs are submitted and stored in this order.
const (
	SlotAccessSecretStore = "accessSecretStore"
	SlotLockReward        = "lockReward"
	SlotEscrowReward      = "escrowReward"
)

// AgreementData bundles the three derived condition identifiers of one
// escrowed access agreement, in slot order.
type AgreementData struct {
	AccessConditionID common.Hash
	LockConditionID   common.Hash
	EscrowConditionID common.Hash
}

// IDs returns the condition identifiers in slot order, ready for agreement
// creation.
func (d *AgreementData) IDs() []common.Hash {
	return []common.Hash{d.AccessConditionID, d.LockConditionID, d.EscrowConditionID}
}

// EscrowAccessTemplate is the escrowed access exchange pattern: the consumer
// locks payment, the publisher grants access, and escrow releases the payment
// once both are fulfilled.
type EscrowAccessTemplate struct {
	Base
}

// NewEscrowAccessTemplate binds the template at the given address with the
// condition registry and store managers needed to derive and inspect
// agreements.
func NewEscrowAccessTemplate(
	address common.Address,
	backend keeper.Backend,
	registry *conditions.Registry,
	agreementStore *keeper.AgreementStoreManager,
	conditionStore *keeper.ConditionStoreManager,
	log *logging.ColoredLogger,
) *EscrowAccessTemplate {
	return &EscrowAccessTemplate{
		Base: Base{
			ContractBase:   keeper.NewContractBase(EscrowAccessTemplateName, address, backend, log),
			registry:       registry,
			agreementStore: agreementStore,
			conditionStore: conditionStore,
		},
	}
}

// Conditions returns the condition handles in slot order.
func (t *EscrowAccessTemplate) Conditions() []conditions.Condition {
	return []conditions.Condition{
		t.registry.AccessSecretStore,
		t.registry.LockReward,
		t.registry.EscrowReward,
	}
}

// ServiceAgreementTemplate returns the static descriptor embedded into asset
// service listings. Parameter values are placeholders filled per asset by
// FillTemplate.
func (t *EscrowAccessTemplate) ServiceAgreementTemplate() *ddo.ServiceAgreementTemplate {
	return &ddo.ServiceAgreementTemplate{
		ContractName:     EscrowAccessTemplateName,
		FulfillmentOrder: []string{"lockReward.fulfill", "accessSecretStore.fulfill", "escrowReward.fulfill"},
		ConditionDependency: map[string][]string{
			SlotLockReward:        {},
			SlotAccessSecretStore: {},
			SlotEscrowReward:      {SlotLockReward, SlotAccessSecretStore},
		},
		Conditions: []ddo.TemplateCondition{
			{
				Name:         SlotAccessSecretStore,
				ContractName: conditions.AccessSecretStoreName,
				FunctionName: "fulfill",
				Parameters: []ddo.ConditionParameter{
					{Name: "_documentId", Type: "bytes32"},
					{Name: "_grantee", Type: "address"},
				},
				Events: []ddo.TemplateEvent{
					{Name: "Fulfilled", ActorType: "publisher", HandlerName: "fulfillEscrowRewardCondition"},
					{Name: "TimedOut", ActorType: "consumer", HandlerName: "fulfillEscrowRewardCondition"},
				},
			},
			{
				Name:         SlotLockReward,
				ContractName: conditions.LockRewardName,
				FunctionName: "fulfill",
				Parameters: []ddo.ConditionParameter{
					{Name: "_rewardAddress", Type: "address"},
					{Name: "_amount", Type: "uint256"},
				},
				Events: []ddo.TemplateEvent{
					{Name: "Fulfilled", ActorType: "publisher", HandlerName: "fulfillAccessSecretStoreCondition"},
				},
			},
			{
				Name:         SlotEscrowReward,
				ContractName: conditions.EscrowRewardName,
				FunctionName: "fulfill",
				Parameters: []ddo.ConditionParameter{
					{Name: "_amount", Type: "uint256"},
					{Name: "_receiver", Type: "address"},
					{Name: "_sender", Type: "address"},
					{Name: "_lockCondition", Type: "bytes32"},
					{Name: "_releaseCondition", Type: "bytes32"},
				},
				Events: []ddo.TemplateEvent{
					{Name: "Fulfilled", ActorType: "publisher", HandlerName: "verifyRewardTokens"},
				},
			},
		},
	}
}

// FillTemplate returns the descriptor with parameter values bound for one
// asset. Condition IDs stay unbound: they depend on the agreement ID and
// consumer, which are fixed at order time.
func (t *EscrowAccessTemplate) FillTemplate(did common.Hash, price *big.Int, publisher common.Address) *ddo.ServiceAgreementTemplate {
	descriptor := t.ServiceAgreementTemplate()
	for i := range descriptor.Conditions {
		for j := range descriptor.Conditions[i].Parameters {
			p := &descriptor.Conditions[i].Parameters[j]
			switch p.Name {
			case "_documentId":
				p.Value = did.Hex()
			case "_amount":
				p.Value = price.String()
			case "_rewardAddress":
				p.Value = t.registry.EscrowReward.Address().Hex()
			case "_receiver":
				p.Value = publisher.Hex()
			}
		}
	}
	return descriptor
}

// CreateFullAgreementData derives the three condition identifiers for one
// agreement instance. Every party that knows the agreement ID, the asset and
// the participants arrives at the same identifiers.
func (t *EscrowAccessTemplate) CreateFullAgreementData(agreementID common.Hash, did common.Hash, amount *big.Int, consumer, publisher common.Address) (*AgreementData, error) {
	accessID, err := t.registry.AccessSecretStore.GenerateIDHash(agreementID, did, consumer)
	if err != nil {
		return nil, err
	}
	lockID, err := t.registry.LockReward.GenerateIDHash(agreementID, t.registry.EscrowReward.Address(), amount)
	if err != nil {
		return nil, err
	}
	escrowID, err := t.registry.EscrowReward.GenerateIDHash(agreementID, amount, publisher, consumer, lockID, accessID)
	if err != nil {
		return nil, err
	}
	return &AgreementData{
		AccessConditionID: accessID,
		LockConditionID:   lockID,
		EscrowConditionID: escrowID,
	}, nil
}

// CreateAgreement submits the agreement instance on chain: the agreement ID,
// the asset, the derived condition IDs in slot order, the timing vectors and
// the consumer the access grant is bound to.
func (t *EscrowAccessTemplate) CreateAgreement(
	ctx context.Context,
	agreementID common.Hash,
	did common.Hash,
	conditionIDs []common.Hash,
	timeLocks, timeOuts []uint64,
	accessConsumer common.Address,
	from common.Address,
) (*keeper.Receipt, error) {
	return t.Send(ctx, from, "createAgreement",
		agreementID, did, conditionIDs, timeLocks, timeOuts, accessConsumer)
}

// GetAgreementStatus returns the per-slot status view of one agreement:
// current condition states plus the blocked view derived from the dependency
// map. The view is computed fresh on every call.
func (t *EscrowAccessTemplate) GetAgreementStatus(ctx context.Context, agreementID common.Hash) (map[string]ConditionStatus, error) {
	return t.agreementStatus(ctx, agreementID, t.ServiceAgreementTemplate())
}
