package config

import (
	"fmt"
	"strings"
)

// Validate checks that the config is usable: endpoints are present and every
// pinned contract address is a 0x-prefixed 20-byte hex value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Keeper.NodeURI) == "" {
		return fmt.Errorf("keeper.node_uri is required")
	}
	if strings.TrimSpace(c.Metadata.URI) == "" {
		return fmt.Errorf("metadata.uri is required")
	}
	if strings.TrimSpace(c.Provider.URI) == "" {
		return fmt.Errorf("provider.uri is required")
	}

	addrs := map[string]string{
		"did_registry":                  c.Keeper.Contracts.DIDRegistry,
		"token":                         c.Keeper.Contracts.Token,
		"dispenser":                     c.Keeper.Contracts.Dispenser,
		"lock_reward_condition":         c.Keeper.Contracts.LockRewardCondition,
		"access_secret_store_condition": c.Keeper.Contracts.AccessSecretStoreCondition,
		"escrow_reward":                 c.Keeper.Contracts.EscrowReward,
		"escrow_access_template":        c.Keeper.Contracts.EscrowAccessTemplate,
		"agreement_store_manager":       c.Keeper.Contracts.AgreementStoreManager,
		"condition_store_manager":       c.Keeper.Contracts.ConditionStoreManager,
	}
	for name, addr := range addrs {
		if addr == "" {
			continue // unset addresses are tolerated until the contract is used
		}
		if err := validateAddress(addr); err != nil {
			return fmt.Errorf("keeper.contracts.%s: %w", name, err)
		}
	}
	return nil
}

func validateAddress(addr string) error {
	if !strings.HasPrefix(addr, "0x") {
		return fmt.Errorf("address %q must be 0x-prefixed", addr)
	}
	hexPart := addr[2:]
	if len(hexPart) != 40 {
		return fmt.Errorf("address %q must be 20 bytes", addr)
	}
	for _, r := range hexPart {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return fmt.Errorf("address %q contains non-hex characters", addr)
		}
	}
	return nil
}
