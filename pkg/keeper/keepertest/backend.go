// Package keepertest provides an in-memory execution environment with the
// semantics the client layers are written against: token balances and
// allowances, a DID registry, the agreement and condition stores, and the
// escrowed access exchange pattern with dependency enforcement and timeouts.
// It backs the integration tests; nothing in it talks to a real network.
package keepertest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
)

// Addresses holds the simulated deployment: one address per contract.
type Addresses struct {
	DIDRegistry                common.Address
	Token                      common.Address
	Dispenser                  common.Address
	LockRewardCondition        common.Address
	AccessSecretStoreCondition common.Address
	EscrowReward               common.Address
	EscrowAccessTemplate       common.Address
	AgreementStoreManager      common.Address
	ConditionStoreManager      common.Address
}

type didRecord struct {
	owner    common.Address
	checksum common.Hash
	value    string
	block    uint64
}

type agreementRecord struct {
	did            common.Hash
	didOwner       common.Address
	templateID     common.Address
	conditionIDs   []common.Hash
	accessConsumer common.Address
	lastUpdatedBy  common.Address
	block          uint64
}

type conditionRecord struct {
	agreementID common.Hash
	typeRef     common.Address
	state       keeper.ConditionState
	timeLock    uint64
	timeOut     uint64
	deadline    uint64 // absolute block; 0 means no timeout
}

// Backend is the simulated execution environment. All operations are
// serialized under one lock; the event stream contract matches the real
// environment, including the absence of replay.
type Backend struct {
	mu        sync.Mutex
	addresses Addresses
	block     uint64

	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	dids       map[common.Hash]*didRecord
	agreements map[common.Hash]*agreementRecord
	conditions map[common.Hash]*conditionRecord
	grants     map[common.Hash]map[common.Address]bool

	streams map[chan keeper.Event]struct{}
}

// NewBackend creates a simulated environment with a fixed deployment.
func NewBackend() *Backend {
	return &Backend{
		addresses: Addresses{
			DIDRegistry:                common.HexToAddress("0x1000000000000000000000000000000000000001"),
			Token:                      common.HexToAddress("0x1000000000000000000000000000000000000002"),
			Dispenser:                  common.HexToAddress("0x1000000000000000000000000000000000000003"),
			LockRewardCondition:        common.HexToAddress("0x1000000000000000000000000000000000000004"),
			AccessSecretStoreCondition: common.HexToAddress("0x1000000000000000000000000000000000000005"),
			EscrowReward:               common.HexToAddress("0x1000000000000000000000000000000000000006"),
			EscrowAccessTemplate:       common.HexToAddress("0x1000000000000000000000000000000000000007"),
			AgreementStoreManager:      common.HexToAddress("0x1000000000000000000000000000000000000008"),
			ConditionStoreManager:      common.HexToAddress("0x1000000000000000000000000000000000000009"),
		},
		block:      1,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		dids:       make(map[common.Hash]*didRecord),
		agreements: make(map[common.Hash]*agreementRecord),
		conditions: make(map[common.Hash]*conditionRecord),
		grants:     make(map[common.Hash]map[common.Address]bool),
		streams:    make(map[chan keeper.Event]struct{}),
	}
}

// Addresses returns the simulated deployment addresses.
func (b *Backend) Addresses() Addresses {
	return b.addresses
}

// AdvanceBlocks moves the logical block height forward, unlocking timeouts.
func (b *Backend) AdvanceBlocks(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.block += n
}

// MintTokens credits an account directly, bypassing the dispenser.
func (b *Backend) MintTokens(account common.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(account, amount)
}

func (b *Backend) credit(account common.Address, amount *big.Int) {
	balance, ok := b.balances[account]
	if !ok {
		balance = new(big.Int)
		b.balances[account] = balance
	}
	balance.Add(balance, amount)
}

func (b *Backend) balanceOf(account common.Address) *big.Int {
	if balance, ok := b.balances[account]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

func (b *Backend) allowanceOf(owner, spender common.Address) *big.Int {
	if spenders, ok := b.allowances[owner]; ok {
		if allowance, ok := spenders[spender]; ok {
			return new(big.Int).Set(allowance)
		}
	}
	return new(big.Int)
}

// EventStream opens a stream of events emitted from this point on. Earlier
// events are gone; the simulated environment keeps no history either.
func (b *Backend) EventStream(ctx context.Context) (<-chan keeper.Event, error) {
	ch := make(chan keeper.Event, 256)
	b.mu.Lock()
	b.streams[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.streams, ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// emit appends the event to open streams. Called under b.mu.
func (b *Backend) emit(event keeper.Event) {
	for ch := range b.streams {
		select {
		case ch <- event:
		default:
			// A stalled consumer loses events, as it would against a real
			// environment with a bounded subscription buffer.
		}
	}
}

// Send executes a state-changing method under the lock and publishes the
// resulting events.
func (b *Backend) Send(ctx context.Context, from, contract common.Address, method string, args ...interface{}) (*keeper.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewTransportError("keepertest", "context ended", err)
	}

	b.mu.Lock()
	events, err := b.execute(from, contract, method, args)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.block++
	for _, event := range events {
		b.emit(event)
	}
	b.mu.Unlock()

	return &keeper.Receipt{
		TxHash:  ids.GenerateID(),
		Success: true,
		Events:  events,
	}, nil
}

// Call executes a read-only method under the lock.
func (b *Backend) Call(ctx context.Context, contract common.Address, method string, result interface{}, args ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.NewTransportError("keepertest", "context ended", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query(contract, method, result, args)
}
