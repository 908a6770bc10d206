// Package ddo models the off-chain asset descriptor document: the metadata,
// the service listings and the embedded service-agreement template both
// parties derive condition identifiers from.
package ddo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
	"github.com/aquaprotocol/aqua-go/pkg/ids"
)

// DDO is one asset descriptor document, stored in the metadata service and
// anchored on chain via the DID registry checksum.
type DDO struct {
	Context        string           `json:"@context"`
	ID             string           `json:"id"` // did:aqua:<64 hex>
	Created        time.Time        `json:"created"`
	PublicKey      []PublicKey      `json:"publicKey,omitempty"`
	Authentication []Authentication `json:"authentication,omitempty"`
	Service        []Service        `json:"service"`
	Proof          *Proof           `json:"proof,omitempty"`
}

// PublicKey is one verification key entry.
type PublicKey struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Owner string `json:"owner"`
	Value string `json:"publicKeyHex,omitempty"`
}

// Authentication links a key to an authentication scheme.
type Authentication struct {
	Type      string `json:"type"`
	PublicKey string `json:"publicKey"`
}

// Proof is the publisher's signature over the document checksum.
type Proof struct {
	Type           string    `json:"type"`
	Created        time.Time `json:"created"`
	Creator        string    `json:"creator"`
	SignatureValue string    `json:"signatureValue"`
	Checksum       string    `json:"checksum"`
}

// DID parses the document identifier.
func (d *DDO) DID() (ids.DID, error) {
	return ids.ParseDID(d.ID)
}

// ShortID returns the unprefixed hex form of the identifier.
func (d *DDO) ShortID() string {
	return ids.NoZeroX(d.ID[len(ids.DIDPrefix):])
}

// FindServiceByType returns the first service entry with the given type.
func (d *DDO) FindServiceByType(serviceType ServiceType) (*Service, error) {
	for i := range d.Service {
		if d.Service[i].Type == serviceType {
			return &d.Service[i], nil
		}
	}
	return nil, errors.NewNotFoundError("service", string(serviceType))
}

// FindServiceByIndex returns the service entry at the given index.
func (d *DDO) FindServiceByIndex(index int) (*Service, error) {
	for i := range d.Service {
		if d.Service[i].Index == index {
			return &d.Service[i], nil
		}
	}
	return nil, errors.NewNotFoundError("service", "")
}

// Checksum computes the document checksum over the canonical JSON of the
// metadata and service listing, excluding the proof itself.
func (d *DDO) Checksum() (string, error) {
	shadow := *d
	shadow.Proof = nil
	raw, err := json.Marshal(&shadow)
	if err != nil {
		return "", errors.Wrap(err, "checksum serialization failed")
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// AddProof attaches the publisher's signature over the checksum.
func (d *DDO) AddProof(creator, signature string) error {
	checksum, err := d.Checksum()
	if err != nil {
		return err
	}
	d.Proof = &Proof{
		Type:           "DDOIntegritySignature",
		Created:        time.Now().UTC(),
		Creator:        creator,
		SignatureValue: signature,
		Checksum:       checksum,
	}
	return nil
}
