package config

import (
	"time"
)

// Config is the full configuration for one client session. It is constructed
// once and passed down through constructors; there is no process-wide
// configuration singleton.
type Config struct {
	Keeper      KeeperConfig      `yaml:"keeper"`
	Metadata    MetadataConfig    `yaml:"metadata"`
	Provider    ProviderConfig    `yaml:"provider"`
	SecretStore SecretStoreConfig `yaml:"secret_store"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// KeeperConfig contains the execution environment endpoint and the deployed
// contract addresses the client binds to.
type KeeperConfig struct {
	NodeURI string        `yaml:"node_uri"` // JSON-RPC endpoint of the chain node
	Timeout time.Duration `yaml:"timeout"`  // Per-call timeout, zero for none

	Contracts ContractAddresses `yaml:"contracts"`
}

// ContractAddresses pins the deployed contract set. All values are 0x-prefixed
// 20-byte hex addresses.
type ContractAddresses struct {
	DIDRegistry                string `yaml:"did_registry"`
	Token                      string `yaml:"token"`
	Dispenser                  string `yaml:"dispenser"`
	LockRewardCondition        string `yaml:"lock_reward_condition"`
	AccessSecretStoreCondition string `yaml:"access_secret_store_condition"`
	EscrowReward               string `yaml:"escrow_reward"`
	EscrowAccessTemplate       string `yaml:"escrow_access_template"`
	AgreementStoreManager      string `yaml:"agreement_store_manager"`
	ConditionStoreManager      string `yaml:"condition_store_manager"`
}

// MetadataConfig contains the metadata index service endpoint.
type MetadataConfig struct {
	URI     string        `yaml:"uri"`
	Timeout time.Duration `yaml:"timeout"`
}

// ProviderConfig contains the publisher-side provider service endpoint.
type ProviderConfig struct {
	URI     string        `yaml:"uri"`
	Address string        `yaml:"address"` // Provider account address, optional
	Timeout time.Duration `yaml:"timeout"`
}

// SecretStoreConfig contains the document encryption service endpoint.
type SecretStoreConfig struct {
	URI     string        `yaml:"uri"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Colors     bool   `yaml:"colors"`      // ANSI colors on console output
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// DefaultConfig returns a config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		Keeper: KeeperConfig{
			NodeURI: "http://localhost:8545",
			Timeout: 30 * time.Second,
		},
		Metadata: MetadataConfig{
			URI:     "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Provider: ProviderConfig{
			URI:     "http://localhost:8030",
			Timeout: 60 * time.Second,
		},
		SecretStore: SecretStoreConfig{
			URI:     "http://localhost:12001",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Colors: true,
		},
	}
}
