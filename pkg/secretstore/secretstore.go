// Package secretstore talks to the distributed key store that encrypts asset
// file URLs under a document key derived from the DID. Decryption succeeds
// only for consumers holding an on-chain access grant.
package secretstore

import (
	"context"
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
	encryptPath = "/api/v1/secretstore/encrypt"
	decryptPath = "/api/v1/secretstore/decrypt"
)

// Client is a connector to one secret store cluster.
type Client struct {
	base string
	web  *webclient.Client
	log  *logging.ColoredLogger
}

// NewClient creates a secret store connector for the given base URI.
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

// EncryptDocument encrypts content under the document key of the given DID.
// Called by the publisher before the descriptor document is stored.
func (c *Client) EncryptDocument(ctx context.Context, did ids.DID, content string, publisher common.Address) (string, error) {
	if content == "" {
		return "", errors.NewValidationError("content", "nothing to encrypt", nil)
	}
	req := map[string]string{
		"documentId": did.ID(),
		"content":    content,
		"publisher":  publisher.Hex(),
	}
	var resp struct {
		EncryptedContent string `json:"encryptedContent"`
	}
	if err := c.web.PostJSON(ctx, c.base+encryptPath, req, &resp); err != nil {
		return "", err
	}
	c.log.ComponentDebug(logging.ComponentSecretStore, "document encrypted",
		zap.String("did", did.String()),
	)
	return resp.EncryptedContent, nil
}

// DecryptDocument decrypts content for a consumer. The store validates the
// consumer's on-chain access grant before releasing the key shares; without
// a grant the call fails with an unauthorized error.
func (c *Client) DecryptDocument(ctx context.Context, did ids.DID, encrypted string, consumer common.Address) (string, error) {
	if encrypted == "" {
		return "", errors.NewValidationError("encrypted", "nothing to decrypt", nil)
	}
	req := map[string]string{
		"documentId": did.ID(),
		"content":    encrypted,
		"consumer":   consumer.Hex(),
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := c.web.PostJSON(ctx, c.base+decryptPath, req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}
