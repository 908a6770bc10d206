package aqua

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/account"
	"github.com/aquaprotocol/aqua-go/pkg/ddo"
	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/keeper/templates"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
	"github.com/aquaprotocol/aqua-go/pkg/provider"
)

// Agreements exposes the agreement workflows: proposing, creating and
// inspecting service agreements.
type Agreements struct {
	client *Client
}

// serviceTerms is everything agreement derivation needs about one asset
// service: the price and the publisher the payment goes to.
type serviceTerms struct {
	document  *ddo.DDO
	service   *ddo.Service
	amount    *big.Int
	publisher common.Address
}

func (a *Agreements) terms(ctx context.Context, did ids.DID, serviceIndex int) (*serviceTerms, error) {
	document, err := a.client.Assets.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}
	service, err := document.FindServiceByIndex(serviceIndex)
	if err != nil {
		return nil, err
	}
	if service.Type != ddo.ServiceAccess {
		return nil, errors.NewValidationError("serviceIndex", "service is not an access service", serviceIndex)
	}
	metaService, err := document.FindServiceByType(ddo.ServiceMetadata)
	if err != nil {
		return nil, err
	}
	publisher, err := a.client.DIDRegistry.GetDIDOwner(ctx, did.Hash())
	if err != nil {
		return nil, err
	}
	return &serviceTerms{
		document:  document,
		service:   service,
		amount:    new(big.Int).SetUint64(metaService.Metadata.Base.Price),
		publisher: publisher,
	}, nil
}

// Prepare derives a fresh agreement ID and the consumer's signature over the
// agreement hash. Nothing is sent anywhere; the caller decides when to
// propose.
func (a *Agreements) Prepare(ctx context.Context, did ids.DID, serviceIndex int, consumer *account.Account) (common.Hash, string, error) {
	terms, err := a.terms(ctx, did, serviceIndex)
	if err != nil {
		return common.Hash{}, "", err
	}

	agreementID := ids.GenerateID()
	hash, err := a.client.Template.AgreementHash(agreementID, did.Hash(), terms.amount, consumer.Address(), terms.publisher)
	if err != nil {
		return common.Hash{}, "", err
	}
	signature, err := consumer.SignHash(hash)
	if err != nil {
		return common.Hash{}, "", err
	}

	a.client.log.ComponentInfo(logging.ComponentAgreement, "agreement prepared",
		zap.String("agreementId", agreementID.Hex()),
		zap.String("did", did.String()),
	)
	return agreementID, signature, nil
}

// Send hands the signed proposal to the publisher's access controller.
func (a *Agreements) Send(ctx context.Context, did ids.DID, agreementID common.Hash, serviceIndex int, signature string, consumer common.Address) error {
	return a.client.Provider.InitializeAgreement(ctx, &provider.InitializeRequest{
		DID:             did.String(),
		AgreementID:     ids.NoZeroX(agreementID.Hex()),
		ServiceIndex:    serviceIndex,
		Signature:       signature,
		ConsumerAddress: consumer.Hex(),
	})
}

// Create records the agreement on chain. Typically invoked on the publisher
// side after verifying the consumer's proposal signature.
func (a *Agreements) Create(ctx context.Context, did ids.DID, agreementID common.Hash, serviceIndex int, consumer common.Address, from common.Address) error {
	terms, err := a.terms(ctx, did, serviceIndex)
	if err != nil {
		return err
	}
	data, err := a.client.Template.CreateFullAgreementData(agreementID, did.Hash(), terms.amount, consumer, terms.publisher)
	if err != nil {
		return err
	}
	descriptor := a.client.Template.ServiceAgreementTemplate()
	_, err = a.client.Template.CreateAgreement(
		ctx,
		agreementID,
		did.Hash(),
		data.IDs(),
		descriptor.TimeValues("timelock"),
		descriptor.TimeValues("timeout"),
		consumer,
		from,
	)
	return err
}

// VerifyProposal checks a consumer's proposal signature against the
// agreement hash both parties derive independently.
func (a *Agreements) VerifyProposal(ctx context.Context, did ids.DID, agreementID common.Hash, serviceIndex int, signature string, consumer common.Address) (bool, error) {
	terms, err := a.terms(ctx, did, serviceIndex)
	if err != nil {
		return false, err
	}
	hash, err := a.client.Template.AgreementHash(agreementID, did.Hash(), terms.amount, consumer, terms.publisher)
	if err != nil {
		return false, err
	}
	return account.VerifySigner(hash, signature, consumer)
}

// Status returns the per-condition status view of one agreement.
func (a *Agreements) Status(ctx context.Context, agreementID common.Hash) (map[string]templates.ConditionStatus, error) {
	return a.client.Template.GetAgreementStatus(ctx, agreementID)
}

// IsAccessGranted reports whether the consumer of the agreement holds an
// access grant for the document.
func (a *Agreements) IsAccessGranted(ctx context.Context, agreementID common.Hash, did ids.DID, consumer common.Address) (bool, error) {
	agreement, err := a.client.AgreementStore.GetAgreement(ctx, agreementID)
	if err != nil {
		return false, err
	}
	if agreement.DID != did.Hash() {
		return false, nil
	}
	return a.client.Conditions.AccessSecretStore.CheckPermissions(ctx, consumer, did.Hash())
}
