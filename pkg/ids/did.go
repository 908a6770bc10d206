package ids

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
)

// DIDPrefix is the textual rendering prefix for asset identifiers.
const DIDPrefix = "did:aqua:"

// DID is a decentralized identifier naming one asset: a 32-byte random value,
// immutable once assigned at registration time.
type DID struct {
	id common.Hash
}

// GenerateDID creates a new random DID.
func GenerateDID() DID {
	return DID{id: GenerateID()}
}

// DIDFromHash wraps an existing 32-byte value as a DID.
func DIDFromHash(h common.Hash) DID {
	return DID{id: h}
}

// ParseDID accepts "did:aqua:<64 hex>", a bare 64-hex string, or a
// 0x-prefixed one.
func ParseDID(s string) (DID, error) {
	raw := strings.TrimPrefix(s, DIDPrefix)
	raw = NoZeroX(raw)
	if len(raw) != 64 || !hexPattern.MatchString(raw) {
		return DID{}, errors.NewValidationError("did", fmt.Sprintf("%q is not a valid DID", s), s)
	}
	return DID{id: common.HexToHash(raw)}, nil
}

// Hash returns the raw 32-byte identifier.
func (d DID) Hash() common.Hash {
	return d.id
}

// ID returns the identifier as unprefixed hex, the form used in chain calls.
func (d DID) ID() string {
	return NoZeroX(d.id.Hex())
}

// String returns the external textual rendering, did:aqua:<64 hex>.
func (d DID) String() string {
	return DIDPrefix + d.ID()
}

// IsZero reports whether the DID is unset.
func (d DID) IsZero() bool {
	return d.id == (common.Hash{})
}
