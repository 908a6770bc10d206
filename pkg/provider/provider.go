// Package provider talks to the publisher's access controller: the service
// that receives signed agreement proposals, creates the agreement on chain on
// the publisher's behalf, grants access and serves the asset files.
package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
	"github.com/aquaprotocol/aqua-go/pkg/logging"
	"github.com/aquaprotocol/aqua-go/pkg/webclient"
)

const (
	initializePath = "/api/v1/services/access/initialize"
	consumePath    = "/api/v1/services/consume"
	publishPath    = "/api/v1/services/publish"
	executePath    = "/api/v1/services/exec"
)

// Client is a connector to one access controller instance.
type Client struct {
	base string
	web  *webclient.Client
	log  *logging.ColoredLogger
}

// NewClient creates an access controller connector for the given base URI.
func NewClient(uri string, timeout time.Duration, log *logging.ColoredLogger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		base: strings.TrimRight(uri, "/"),
		web:  webclient.New(timeout, log),
		log:  log,
	}
}

// PurchaseEndpoint returns the endpoint agreement proposals are sent to,
// for embedding into asset service listings.
func (c *Client) PurchaseEndpoint() string {
	return c.base + initializePath
}

// ConsumeEndpoint returns the endpoint asset files are served from.
func (c *Client) ConsumeEndpoint() string {
	return c.base + consumePath
}

// InitializeRequest is the signed agreement proposal the consumer hands to
// the publisher's access controller.
type InitializeRequest struct {
	DID             string `json:"did"`
	AgreementID     string `json:"serviceAgreementId"`
	ServiceIndex    int    `json:"serviceIndex"`
	Signature       string `json:"signature"`
	ConsumerAddress string `json:"consumerAddress"`
}

// InitializeAgreement submits the proposal. Acceptance means the controller
// verified the signature and will create the agreement on chain; the on-chain
// creation event arrives asynchronously afterwards.
func (c *Client) InitializeAgreement(ctx context.Context, req *InitializeRequest) error {
	if req.AgreementID == "" {
		return errors.NewValidationError("serviceAgreementId", "agreement ID is required", nil)
	}
	if req.Signature == "" {
		return errors.NewValidationError("signature", "signature is required", nil)
	}
	if err := c.web.PostJSON(ctx, c.base+initializePath, req, nil); err != nil {
		return err
	}
	c.log.ComponentInfo(logging.ComponentProvider, "agreement proposal accepted",
		zap.String("agreementId", req.AgreementID),
		zap.String("did", req.DID),
	)
	return nil
}

// ConsumeService downloads one asset file for a consumer that holds an
// access grant. The controller checks the grant on chain before serving.
func (c *Client) ConsumeService(ctx context.Context, agreementID common.Hash, serviceEndpoint string, consumer common.Address, signature string, fileIndex int, destDir string) (string, error) {
	if serviceEndpoint == "" {
		serviceEndpoint = c.ConsumeEndpoint()
	}
	params := url.Values{}
	params.Set("serviceAgreementId", ids.NoZeroX(agreementID.Hex()))
	params.Set("consumerAddress", consumer.Hex())
	params.Set("signature", signature)
	params.Set("index", fmt.Sprint(fileIndex))

	dest, err := c.web.Download(ctx, serviceEndpoint+"?"+params.Encode(), destDir)
	if err != nil {
		return "", err
	}
	c.log.ComponentInfo(logging.ComponentProvider, "asset file consumed",
		zap.String("agreementId", agreementID.Hex()),
		zap.Int("index", fileIndex),
		zap.String("path", dest),
	)
	return dest, nil
}

// Encrypt asks the controller to encrypt the asset file URLs at publish
// time. Consumers only ever see the encrypted form.
func (c *Client) Encrypt(ctx context.Context, did ids.DID, document string, publisher common.Address) (string, error) {
	req := map[string]string{
		"did":              did.String(),
		"document":         document,
		"publisherAddress": publisher.Hex(),
	}
	var resp struct {
		EncryptedDocument string `json:"encryptedDocument"`
	}
	if err := c.web.PostJSON(ctx, c.base+publishPath, req, &resp); err != nil {
		return "", err
	}
	return resp.EncryptedDocument, nil
}

// ExecuteRequest starts a remote computation bound to an existing agreement.
type ExecuteRequest struct {
	AgreementID     string `json:"serviceAgreementId"`
	WorkflowDID     string `json:"workflowDID"`
	ConsumerAddress string `json:"consumerAddress"`
	Signature       string `json:"signature"`
}

// Execute submits a computation job and returns its identifier.
func (c *Client) Execute(ctx context.Context, req *ExecuteRequest) (string, error) {
	if req.AgreementID == "" {
		return "", errors.NewValidationError("serviceAgreementId", "agreement ID is required", nil)
	}
	var resp struct {
		WorkflowID string `json:"workflowId"`
	}
	if err := c.web.PostJSON(ctx, c.base+executePath, req, &resp); err != nil {
		return "", err
	}
	return resp.WorkflowID, nil
}
