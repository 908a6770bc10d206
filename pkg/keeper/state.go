package keeper

// ConditionState is the lifecycle state of one condition as recorded by the
// on-chain condition store.
type ConditionState int

const (
	Uninitialized ConditionState = iota
	Unfulfilled
	Fulfilled
	Aborted
)

var conditionStateNames = map[ConditionState]string{
	Uninitialized: "Uninitialized",
	Unfulfilled:   "Unfulfilled",
	Fulfilled:     "Fulfilled",
	Aborted:       "Aborted",
}

func (s ConditionState) String() string {
	if name, ok := conditionStateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether no transition leaves this state.
func (s ConditionState) Terminal() bool {
	return s == Fulfilled || s == Aborted
}
