// Package aqua is the top-level client: it assembles the contract bindings,
// the off-chain service connectors and the event routing into one session,
// and exposes the asset and agreement workflows on top of them.
package aqua

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/config"
	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/events"
	"github.com/aquaprotocol/aqua-go/pkg/keeper"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/conditions"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/templates"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
	"github.com/aquaprotocol/aqua-go/pkg/metadata"
	"github.com/aquaprotocol/aqua-go/pkg/provider"
	"github.com/aquaprotocol/aqua-go/pkg/secretstore"
)

// Client is one configured session against a deployment: contract handles,
// service connectors and the event router share its lifetime.
type Client struct {
	cfg *config.Config
	log *logging.ColoredLogger

	backend keeper.Backend

	Token          *keeper.Token
	Dispenser      *keeper.Dispenser
	DIDRegistry    *keeper.DIDRegistry
	AgreementStore *keeper.AgreementStoreManager
	ConditionStore *keeper.ConditionStoreManager
	Conditions     *conditions.Registry
	Template       *templates.EscrowAccessTemplate

	Events      *events.Handler
	Metadata    *metadata.Client
	Provider    *provider.Client
	SecretStore *secretstore.Client

	Assets               *Assets
	Agreements           *Agreements
	AgreementsConditions *AgreementsConditions
}

// New assembles a client from configuration and a backend. The backend is
// injected so the same assembly serves real deployments and simulated ones.
func New(cfg *config.Config, backend keeper.Backend) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, errors.NewValidationError("backend", "a backend is required", nil)
	}

	var log *logging.ColoredLogger
	var err error
	if cfg.Logging.OutputFile != "" {
		log, err = logging.NewFileLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.OutputFile, cfg.Logging.Colors)
	} else {
		log, err = logging.NewColoredLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Colors)
	}
	if err != nil {
		return nil, errors.Wrap(err, "logger construction failed")
	}

	contracts := cfg.Keeper.Contracts
	addresses := map[string]string{
		"did_registry":                  contracts.DIDRegistry,
		"token":                         contracts.Token,
		"dispenser":                     contracts.Dispenser,
		"lock_reward_condition":         contracts.LockRewardCondition,
		"access_secret_store_condition": contracts.AccessSecretStoreCondition,
		"escrow_reward":                 contracts.EscrowReward,
		"escrow_access_template":        contracts.EscrowAccessTemplate,
		"agreement_store_manager":       contracts.AgreementStoreManager,
		"condition_store_manager":       contracts.ConditionStoreManager,
	}
	for field, value := range addresses {
		if value == "" {
			return nil, errors.NewValidationError(field, "contract address is required", nil)
		}
	}

	c := &Client{
		cfg:     cfg,
		log:     log,
		backend: backend,
	}

	c.Token = keeper.NewToken(common.HexToAddress(contracts.Token), backend, log)
	c.Dispenser = keeper.NewDispenser(common.HexToAddress(contracts.Dispenser), backend, log)
	c.DIDRegistry = keeper.NewDIDRegistry(common.HexToAddress(contracts.DIDRegistry), backend, log)
	c.AgreementStore = keeper.NewAgreementStoreManager(common.HexToAddress(contracts.AgreementStoreManager), backend, log)
	c.ConditionStore = keeper.NewConditionStoreManager(common.HexToAddress(contracts.ConditionStoreManager), backend, log)

	c.Conditions = &conditions.Registry{
		LockReward:        conditions.NewLockReward(common.HexToAddress(contracts.LockRewardCondition), backend, log),
		AccessSecretStore: conditions.NewAccessSecretStore(common.HexToAddress(contracts.AccessSecretStoreCondition), backend, log),
		EscrowReward:      conditions.NewEscrowReward(common.HexToAddress(contracts.EscrowReward), backend, log),
	}
	c.Template = templates.NewEscrowAccessTemplate(
		common.HexToAddress(contracts.EscrowAccessTemplate),
		backend,
		c.Conditions,
		c.AgreementStore,
		c.ConditionStore,
		log,
	)

	c.Events = events.NewHandler(backend, log)
	c.Metadata = metadata.NewClient(cfg.Metadata.URI, cfg.Metadata.Timeout, log)
	c.Provider = provider.NewClient(cfg.Provider.URI, cfg.Provider.Timeout, log)
	c.SecretStore = secretstore.NewClient(cfg.SecretStore.URI, cfg.SecretStore.Timeout, log)

	c.Agreements = &Agreements{client: c}
	c.AgreementsConditions = &AgreementsConditions{client: c}
	c.Assets = &Assets{client: c}

	log.ComponentInfo(logging.ComponentClient, "client assembled")
	return c, nil
}

// Start opens the event stream. Workflows that wait on effects (ordering in
// particular) require a started client.
func (c *Client) Start(ctx context.Context) error {
	return c.Events.Start(ctx)
}

// Config returns the session configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}
