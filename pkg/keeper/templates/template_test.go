package templates

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/conditions"
)

func repeatAddress(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func repeatHash(b byte) common.Hash {
	var h common.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func testTemplate(t *testing.T) *EscrowAccessTemplate {
	t.Helper()
	registry := &conditions.Registry{
		LockReward:        conditions.NewLockReward(repeatAddress(0x11), nil, nil),
		AccessSecretStore: conditions.NewAccessSecretStore(repeatAddress(0x12), nil, nil),
		EscrowReward:      conditions.NewEscrowReward(repeatAddress(0x13), nil, nil),
	}
	return NewEscrowAccessTemplate(repeatAddress(0xff), nil, registry, nil, nil, nil)
}

func TestAgreementHashGolden(t *testing.T) {
	valueHashes := []common.Hash{repeatHash(0xaa), repeatHash(0xbb), repeatHash(0xcc)}
	hash, err := AgreementHash(
		repeatAddress(0xff),
		valueHashes,
		[]uint64{0, 0, 0},
		[]uint64{0, 0, 0},
		repeatHash(0xee),
	)
	if err != nil {
		t.Fatalf("AgreementHash() error = %v", err)
	}
	want := "0x67901517c18a3d23e05806fff7f04235cc8ae3b1f82345b8bfb3e4b02b5800c7"
	if hash.Hex() != want {
		t.Errorf("AgreementHash() = %s, want %s", hash.Hex(), want)
	}
}

func TestAgreementHashSensitivity(t *testing.T) {
	valueHashes := []common.Hash{repeatHash(0xaa), repeatHash(0xbb), repeatHash(0xcc)}
	base, err := AgreementHash(repeatAddress(0xff), valueHashes, []uint64{0, 0, 0}, []uint64{0, 0, 0}, repeatHash(0xee))
	if err != nil {
		t.Fatalf("AgreementHash() error = %v", err)
	}

	differentAgreement, err := AgreementHash(repeatAddress(0xff), valueHashes, []uint64{0, 0, 0}, []uint64{0, 0, 0}, repeatHash(0xef))
	if err != nil {
		t.Fatalf("AgreementHash() error = %v", err)
	}
	if base == differentAgreement {
		t.Error("changing the agreement ID must change the hash")
	}

	differentTimeout, err := AgreementHash(repeatAddress(0xff), valueHashes, []uint64{0, 0, 0}, []uint64{0, 0, 86400}, repeatHash(0xee))
	if err != nil {
		t.Fatalf("AgreementHash() error = %v", err)
	}
	if base == differentTimeout {
		t.Error("changing a timeout must change the hash")
	}
}

func TestCreateFullAgreementData(t *testing.T) {
	template := testTemplate(t)
	agreementID := repeatHash(0xee)
	did := repeatHash(0xdd)
	amount := big.NewInt(10)
	consumer := repeatAddress(0x33)
	publisher := repeatAddress(0x44)

	data, err := template.CreateFullAgreementData(agreementID, did, amount, consumer, publisher)
	if err != nil {
		t.Fatalf("CreateFullAgreementData() error = %v", err)
	}

	again, err := template.CreateFullAgreementData(agreementID, did, amount, consumer, publisher)
	if err != nil {
		t.Fatalf("CreateFullAgreementData() error = %v", err)
	}
	if *data != *again {
		t.Error("derivation must be deterministic")
	}

	ids := data.IDs()
	if len(ids) != 3 {
		t.Fatalf("IDs() length = %d, want 3", len(ids))
	}
	if ids[0] != data.AccessConditionID || ids[1] != data.LockConditionID || ids[2] != data.EscrowConditionID {
		t.Error("IDs() must preserve slot order: access, lock, escrow")
	}
	seen := map[common.Hash]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("condition IDs must be distinct, got duplicate %s", id.Hex())
		}
		seen[id] = true
	}

	// The consumer is bound into the access grant and, through the derived
	// condition IDs, into the escrow release.
	otherConsumer, err := template.CreateFullAgreementData(agreementID, did, amount, repeatAddress(0x34), publisher)
	if err != nil {
		t.Fatalf("CreateFullAgreementData() error = %v", err)
	}
	if otherConsumer.AccessConditionID == data.AccessConditionID {
		t.Error("changing the consumer must change the access condition ID")
	}
	if otherConsumer.EscrowConditionID == data.EscrowConditionID {
		t.Error("changing the consumer must change the escrow condition ID")
	}
	if otherConsumer.LockConditionID != data.LockConditionID {
		t.Error("the lock condition does not involve the consumer")
	}

	// The price is bound into lock and escrow but not into the access grant.
	otherAmount, err := template.CreateFullAgreementData(agreementID, did, big.NewInt(11), consumer, publisher)
	if err != nil {
		t.Fatalf("CreateFullAgreementData() error = %v", err)
	}
	if otherAmount.LockConditionID == data.LockConditionID {
		t.Error("changing the amount must change the lock condition ID")
	}
	if otherAmount.EscrowConditionID == data.EscrowConditionID {
		t.Error("changing the amount must change the escrow condition ID")
	}
	if otherAmount.AccessConditionID != data.AccessConditionID {
		t.Error("the access condition does not involve the amount")
	}
}

func TestTemplateAgreementHashMatchesValueHashes(t *testing.T) {
	template := testTemplate(t)
	agreementID := repeatHash(0xee)
	did := repeatHash(0xdd)
	amount := big.NewInt(10)
	consumer := repeatAddress(0x33)
	publisher := repeatAddress(0x44)

	valueHashes, err := template.ValueHashes(agreementID, did, amount, consumer, publisher)
	if err != nil {
		t.Fatalf("ValueHashes() error = %v", err)
	}
	descriptor := template.ServiceAgreementTemplate()
	want, err := AgreementHash(template.Address(), valueHashes, descriptor.TimeValues("timelock"), descriptor.TimeValues("timeout"), agreementID)
	if err != nil {
		t.Fatalf("AgreementHash() error = %v", err)
	}

	got, err := template.AgreementHash(agreementID, did, amount, consumer, publisher)
	if err != nil {
		t.Fatalf("template AgreementHash() error = %v", err)
	}
	if got != want {
		t.Errorf("template AgreementHash() = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestServiceAgreementTemplateDescriptor(t *testing.T) {
	template := testTemplate(t)
	descriptor := template.ServiceAgreementTemplate()

	if descriptor.ContractName != EscrowAccessTemplateName {
		t.Errorf("ContractName = %s, want %s", descriptor.ContractName, EscrowAccessTemplateName)
	}
	if len(descriptor.Conditions) != 3 {
		t.Fatalf("conditions = %d, want 3", len(descriptor.Conditions))
	}
	wantOrder := []string{SlotAccessSecretStore, SlotLockReward, SlotEscrowReward}
	for i, slot := range descriptor.Conditions {
		if slot.Name != wantOrder[i] {
			t.Errorf("slot %d = %s, want %s", i, slot.Name, wantOrder[i])
		}
	}
	deps := descriptor.ConditionDependency[SlotEscrowReward]
	if len(deps) != 2 {
		t.Fatalf("escrow dependencies = %v, want lock and access", deps)
	}
}

func TestFillTemplate(t *testing.T) {
	template := testTemplate(t)
	did := repeatHash(0xdd)
	publisher := repeatAddress(0x44)

	filled := template.FillTemplate(did, big.NewInt(25), publisher)

	values := map[string]interface{}{}
	for _, cond := range filled.Conditions {
		for _, p := range cond.Parameters {
			if p.Value != nil {
				values[p.Name] = p.Value
			}
		}
	}
	if values["_documentId"] != did.Hex() {
		t.Errorf("_documentId = %v, want %s", values["_documentId"], did.Hex())
	}
	if values["_amount"] != "25" {
		t.Errorf("_amount = %v, want 25", values["_amount"])
	}
	if values["_rewardAddress"] != repeatAddress(0x13).Hex() {
		t.Errorf("_rewardAddress = %v, want escrow contract address", values["_rewardAddress"])
	}
	if values["_receiver"] != publisher.Hex() {
		t.Errorf("_receiver = %v, want %s", values["_receiver"], publisher.Hex())
	}

	// The shared descriptor must stay pristine.
	for _, cond := range template.ServiceAgreementTemplate().Conditions {
		for _, p := range cond.Parameters {
			if p.Value != nil {
				t.Fatalf("base descriptor parameter %s mutated to %v", p.Name, p.Value)
			}
		}
	}
}

func TestEvaluateDependencies(t *testing.T) {
	deps := map[string][]string{
		SlotLockReward:        {},
		SlotAccessSecretStore: {},
		SlotEscrowReward:      {SlotLockReward, SlotAccessSecretStore},
	}
	names := map[string]string{
		SlotLockReward:        conditions.LockRewardName,
		SlotAccessSecretStore: conditions.AccessSecretStoreName,
		SlotEscrowReward:      conditions.EscrowRewardName,
	}

	tests := []struct {
		name          string
		states        map[string]keeper.ConditionState
		wantBlocked   bool
		wantBlockedBy []string
	}{
		{
			name: "all unfulfilled",
			states: map[string]keeper.ConditionState{
				SlotLockReward:        keeper.Unfulfilled,
				SlotAccessSecretStore: keeper.Unfulfilled,
				SlotEscrowReward:      keeper.Unfulfilled,
			},
			wantBlocked:   true,
			wantBlockedBy: []string{SlotAccessSecretStore, SlotLockReward},
		},
		{
			name: "lock fulfilled only",
			states: map[string]keeper.ConditionState{
				SlotLockReward:        keeper.Fulfilled,
				SlotAccessSecretStore: keeper.Unfulfilled,
				SlotEscrowReward:      keeper.Unfulfilled,
			},
			wantBlocked:   true,
			wantBlockedBy: []string{SlotAccessSecretStore},
		},
		{
			name: "both dependencies fulfilled",
			states: map[string]keeper.ConditionState{
				SlotLockReward:        keeper.Fulfilled,
				SlotAccessSecretStore: keeper.Fulfilled,
				SlotEscrowReward:      keeper.Unfulfilled,
			},
			wantBlocked: false,
		},
		{
			name: "aborted dependency still blocks",
			states: map[string]keeper.ConditionState{
				SlotLockReward:        keeper.Fulfilled,
				SlotAccessSecretStore: keeper.Aborted,
				SlotEscrowReward:      keeper.Unfulfilled,
			},
			wantBlocked:   true,
			wantBlockedBy: []string{SlotAccessSecretStore},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := evaluateDependencies(deps, tt.states, names)

			escrow := status[SlotEscrowReward]
			if escrow.Blocked != tt.wantBlocked {
				t.Errorf("escrow blocked = %v, want %v", escrow.Blocked, tt.wantBlocked)
			}
			if len(escrow.BlockedBy) != len(tt.wantBlockedBy) {
				t.Fatalf("escrow blockedBy = %v, want %v", escrow.BlockedBy, tt.wantBlockedBy)
			}
			for i, ref := range tt.wantBlockedBy {
				if escrow.BlockedBy[i] != ref {
					t.Errorf("escrow blockedBy[%d] = %s, want %s", i, escrow.BlockedBy[i], ref)
				}
			}

			// Root conditions are never blocked, whatever their state.
			for _, root := range []string{SlotLockReward, SlotAccessSecretStore} {
				if status[root].Blocked {
					t.Errorf("%s has no dependencies and must not be blocked", root)
				}
			}
		})
	}
}
