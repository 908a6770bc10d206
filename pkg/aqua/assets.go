package aqua

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aquaprotocol/aqua-go/pkg/account"
	"github.com/aquaprotocol/aqua-go/pkg/ddo"
	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
	"github.com/aquaprotocol/aqua-go/pkg/metadata"
)

// Assets exposes the asset workflows: publishing, resolving, searching,
// ordering and consuming.
type Assets struct {
	client *Client
}

// Create publishes an asset: it encrypts the file URLs, assembles and signs
// the descriptor document, stores it in the metadata service and anchors the
// DID on chain.
func (a *Assets) Create(ctx context.Context, meta *ddo.MetaData, publisher *account.Account) (*ddo.DDO, error) {
	if meta == nil || meta.Base.Name == "" {
		return nil, errors.NewValidationError("metadata", "asset metadata with a name is required", nil)
	}
	if len(meta.Base.Files) == 0 {
		return nil, errors.NewValidationError("files", "an asset needs at least one file", nil)
	}

	did := ids.GenerateDID()

	// The plain URLs never reach the metadata service.
	plainFiles, err := json.Marshal(meta.Base.Files)
	if err != nil {
		return nil, errors.Wrap(err, "file list serialization failed")
	}
	encrypted, err := a.client.SecretStore.EncryptDocument(ctx, did, string(plainFiles), publisher.Address())
	if err != nil {
		return nil, err
	}
	published := *meta
	published.Base.EncryptedFiles = encrypted
	published.Base.Files = make([]ddo.File, len(meta.Base.Files))
	for i, f := range meta.Base.Files {
		f.URL = ""
		published.Base.Files[i] = f
	}
	if published.Base.DateCreated == "" {
		published.Base.DateCreated = time.Now().UTC().Format(time.RFC3339)
	}

	descriptor := a.client.Template.FillTemplate(did.Hash(), new(big.Int).SetUint64(meta.Base.Price), publisher.Address())
	document := &ddo.DDO{
		Context: "https://w3id.org/did/v1",
		ID:      did.String(),
		Created: time.Now().UTC(),
		PublicKey: []ddo.PublicKey{{
			ID:    did.String() + "#keys-1",
			Type:  "EthereumECDSAKey",
			Owner: publisher.Address().Hex(),
		}},
		Authentication: []ddo.Authentication{{
			Type:      "RsaSignatureAuthentication2018",
			PublicKey: did.String() + "#keys-1",
		}},
		Service: []ddo.Service{
			{
				Type:            ddo.ServiceMetadata,
				Index:           0,
				ServiceEndpoint: fmt.Sprintf("%s/%s", a.client.Metadata.URL(), did.String()),
				Metadata:        &published,
			},
			{
				Type:                     ddo.ServiceAccess,
				Index:                    1,
				TemplateID:               a.client.Template.Address().Hex(),
				PurchaseEndpoint:         a.client.Provider.PurchaseEndpoint(),
				ServiceEndpoint:          a.client.Provider.ConsumeEndpoint(),
				ServiceAgreementTemplate: descriptor,
			},
			{
				Type:    ddo.ServiceAuthorization,
				Index:   2,
				Service: "SecretStore",
			},
		},
	}

	checksum, err := document.Checksum()
	if err != nil {
		return nil, err
	}
	signature, err := publisher.SignHash(common.HexToHash(checksum))
	if err != nil {
		return nil, err
	}
	if err := document.AddProof(publisher.Address().Hex(), signature); err != nil {
		return nil, err
	}

	stored, err := a.client.Metadata.StoreDDO(ctx, document)
	if err != nil {
		return nil, err
	}
	_, err = a.client.DIDRegistry.RegisterAttribute(ctx, did.Hash(), common.HexToHash(checksum), a.client.Metadata.URL(), publisher.Address())
	if err != nil {
		return nil, err
	}

	a.client.log.ComponentInfo(logging.ComponentClient, "asset published",
		zap.String("did", did.String()),
		zap.String("name", meta.Base.Name),
	)
	return stored, nil
}

// Resolve fetches the descriptor document for a DID from the metadata
// service.
func (a *Assets) Resolve(ctx context.Context, did ids.DID) (*ddo.DDO, error) {
	return a.client.Metadata.GetDDO(ctx, did)
}

// Search runs a free-text search over the metadata service.
func (a *Assets) Search(ctx context.Context, text string, offset, page int) (*metadata.SearchResult, error) {
	return a.client.Metadata.SearchText(ctx, text, offset, page)
}

// Query runs a structured search over the metadata service.
func (a *Assets) Query(ctx context.Context, query metadata.SearchQuery) (*metadata.SearchResult, error) {
	return a.client.Metadata.Search(ctx, query)
}

// Consume downloads the files of an ordered asset into destDir. Requires a
// fulfilled access condition; the controller rejects consumers without a
// grant. Files download concurrently; the first failure cancels the rest.
func (a *Assets) Consume(ctx context.Context, agreementID common.Hash, did ids.DID, serviceIndex int, consumer *account.Account, destDir string) ([]string, error) {
	document, err := a.Resolve(ctx, did)
	if err != nil {
		return nil, err
	}
	service, err := document.FindServiceByIndex(serviceIndex)
	if err != nil {
		return nil, err
	}
	metaService, err := document.FindServiceByType(ddo.ServiceMetadata)
	if err != nil {
		return nil, err
	}
	files := metaService.Metadata.Base.Files
	if len(files) == 0 {
		return nil, errors.NewValidationError("files", "asset lists no files", did.String())
	}

	signature, err := consumer.SignHash(agreementID)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			dest, err := a.client.Provider.ConsumeService(groupCtx, agreementID, service.ServiceEndpoint, consumer.Address(), signature, file.Index, destDir)
			if err != nil {
				return err
			}
			paths[i] = dest
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
