package keeper

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/logging"
)

// AgreementData is the authoritative on-chain record of one service
// agreement instance.
type AgreementData struct {
	DID                common.Hash
	DIDOwner           common.Address
	TemplateID         common.Address
	ConditionIDs       []common.Hash
	LastUpdatedBy      common.Address
	BlockNumberUpdated uint64
}

// AgreementStoreManager reads agreement records from the execution
// environment. It never caches: agreement state changes externally.
type AgreementStoreManager struct {
	ContractBase
}

// NewAgreementStoreManager binds the agreement store at the given address.
func NewAgreementStoreManager(address common.Address, backend Backend, log *logging.ColoredLogger) *AgreementStoreManager {
	return &AgreementStoreManager{
		ContractBase: NewContractBase("AgreementStoreManager", address, backend, log),
	}
}

// GetAgreement fetches the record for one agreement ID. Returns
// errors.NotFoundError if the agreement was never created.
func (m *AgreementStoreManager) GetAgreement(ctx context.Context, agreementID common.Hash) (*AgreementData, error) {
	var data AgreementData
	if err := m.Call(ctx, "getAgreement", &data, agreementID); err != nil {
		return nil, err
	}
	return &data, nil
}
