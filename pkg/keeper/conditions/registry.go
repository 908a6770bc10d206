package conditions

import (
	"github.com/ethereum/go-ethereum/common"
)

// Registry maps condition type names and deployed addresses onto live
// condition handles. It is immutable after construction and safe for
// concurrent use.
type Registry struct {
	LockReward        *LockReward
	AccessSecretStore *AccessSecretStore
	EscrowReward      *EscrowReward
}

// All returns the registered condition handles.
func (r *Registry) All() []Condition {
	return []Condition{r.LockReward, r.AccessSecretStore, r.EscrowReward}
}

// ByAddress resolves a deployed condition type address to its handle.
func (r *Registry) ByAddress(address common.Address) (Condition, bool) {
	for _, c := range r.All() {
		if c.Address() == address {
			return c, true
		}
	}
	return nil, false
}

// ByName resolves a registered contract name to its handle.
func (r *Registry) ByName(name string) (Condition, bool) {
	for _, c := range r.All() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
