package keeper_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/keepertest"
)

func TestTokenBalanceAndTransfer(t *testing.T) {
	backend := keepertest.NewBackend()
	token := keeper.NewToken(backend.Addresses().Token, backend, nil)
	ctx := context.Background()

	alice := common.HexToAddress("0xa1")
	bob := common.HexToAddress("0xb0")
	backend.MintTokens(alice, big.NewInt(100))

	balance, err := token.BalanceOf(ctx, alice)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if balance.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("balance = %s, want 100", balance)
	}

	receipt, err := token.Transfer(ctx, bob, big.NewInt(30), alice)
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if !receipt.HasEvent("Transfer") {
		t.Error("transfer receipt missing Transfer event")
	}

	bobBalance, err := token.BalanceOf(ctx, bob)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if bobBalance.Cmp(big.NewInt(30)) != 0 {
		t.Errorf("recipient balance = %s, want 30", bobBalance)
	}

	_, err = token.Transfer(ctx, bob, big.NewInt(1000), alice)
	if !errors.IsInsufficientFunds(err) {
		t.Errorf("overdraft error = %v, want insufficient funds", err)
	}
}

func TestTokenApprove(t *testing.T) {
	backend := keepertest.NewBackend()
	token := keeper.NewToken(backend.Addresses().Token, backend, nil)
	ctx := context.Background()

	alice := common.HexToAddress("0xa1")
	receipt, err := token.Approve(ctx, backend.Addresses().LockRewardCondition, big.NewInt(10), alice)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if !receipt.HasEvent("Approval") {
		t.Error("approve receipt missing Approval event")
	}
}

func TestDispenserMints(t *testing.T) {
	backend := keepertest.NewBackend()
	dispenser := keeper.NewDispenser(backend.Addresses().Dispenser, backend, nil)
	token := keeper.NewToken(backend.Addresses().Token, backend, nil)
	ctx := context.Background()

	receiver := common.HexToAddress("0xc0")
	if _, err := dispenser.RequestTokens(ctx, big.NewInt(50), receiver); err != nil {
		t.Fatalf("RequestTokens() error = %v", err)
	}
	balance, err := token.BalanceOf(ctx, receiver)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if balance.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("balance = %s, want 50", balance)
	}
}

func TestDIDRegistry(t *testing.T) {
	backend := keepertest.NewBackend()
	registry := keeper.NewDIDRegistry(backend.Addresses().DIDRegistry, backend, nil)
	ctx := context.Background()

	owner := common.HexToAddress("0xa1")
	did := ids.GenerateDID().Hash()
	checksum := common.HexToHash("0xcc")

	receipt, err := registry.RegisterAttribute(ctx, did, checksum, "http://localhost:5000", owner)
	if err != nil {
		t.Fatalf("RegisterAttribute() error = %v", err)
	}
	if !receipt.HasEvent("DIDAttributeRegistered") {
		t.Error("register receipt missing DIDAttributeRegistered event")
	}

	got, err := registry.GetDIDOwner(ctx, did)
	if err != nil {
		t.Fatalf("GetDIDOwner() error = %v", err)
	}
	if got != owner {
		t.Errorf("owner = %s, want %s", got.Hex(), owner.Hex())
	}

	block, err := registry.GetBlockNumberUpdated(ctx, did)
	if err != nil {
		t.Fatalf("GetBlockNumberUpdated() error = %v", err)
	}
	if block == 0 {
		t.Error("block number updated = 0, want > 0")
	}

	// Re-registration by another account must be rejected.
	_, err = registry.RegisterAttribute(ctx, did, checksum, "http://other", common.HexToAddress("0xb0"))
	if !errors.IsUnauthorized(err) {
		t.Errorf("takeover error = %v, want unauthorized", err)
	}

	_, err = registry.GetDIDOwner(ctx, ids.GenerateDID().Hash())
	if !errors.IsNotFound(err) {
		t.Errorf("unknown DID error = %v, want not found", err)
	}
}

func TestAgreementStoreUnknownAgreement(t *testing.T) {
	backend := keepertest.NewBackend()
	store := keeper.NewAgreementStoreManager(backend.Addresses().AgreementStoreManager, backend, nil)

	_, err := store.GetAgreement(context.Background(), ids.GenerateID())
	if !errors.IsNotFound(err) {
		t.Errorf("GetAgreement() error = %v, want not found", err)
	}
}

func TestConditionStoreUnknownCondition(t *testing.T) {
	backend := keepertest.NewBackend()
	store := keeper.NewConditionStoreManager(backend.Addresses().ConditionStoreManager, backend, nil)

	_, err := store.GetCondition(context.Background(), ids.GenerateID())
	if !errors.IsNotFound(err) {
		t.Errorf("GetCondition() error = %v, want not found", err)
	}
}
