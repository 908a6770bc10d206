// Package account holds the signing identities of the participating parties.
// Signatures use the recoverable personal-sign scheme: the counterparty
// recovers the signer address from the signature alone and compares it to the
// expected party.
package account

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
)

// Account is one signing identity.
type Account struct {
	key *ecdsa.PrivateKey
}

// NewAccount generates a fresh identity.
func NewAccount() (*Account, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "key generation failed")
	}
	return &Account{key: key}, nil
}

// FromHexKey loads an identity from a hex-encoded private key, with or
// without the 0x prefix.
func FromHexKey(hexKey string) (*Account, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	key, err := ethcrypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.NewValidationError("privateKey", "invalid private key", nil)
	}
	return &Account{key: key}, nil
}

// Address returns the account address derived from the public key.
func (a *Account) Address() common.Address {
	return ethcrypto.PubkeyToAddress(a.key.PublicKey)
}

// personalDigest applies the personal-sign prefix over a 32-byte message and
// hashes it, so signed payloads can never be replayed as raw transactions.
func personalDigest(message common.Hash) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return ethcrypto.Keccak256([]byte(prefix), message.Bytes())
}

// SignHash signs a 32-byte digest with the personal-sign prefix. The result
// is the 65-byte recoverable signature, hex encoded with 0x prefix.
func (a *Account) SignHash(message common.Hash) (string, error) {
	signature, err := ethcrypto.Sign(personalDigest(message), a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing failed")
	}
	return "0x" + hex.EncodeToString(signature), nil
}

// RecoverSigner recovers the address that produced a personal-sign signature
// over the given 32-byte message.
func RecoverSigner(message common.Hash, signature string) (common.Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, errors.NewValidationError("signature", "signature is not hex", signature)
	}
	if len(raw) != 65 {
		return common.Address{}, errors.NewValidationError("signature", "signature must be 65 bytes", len(raw))
	}

	// Accept both recovery-id conventions: 0/1 and 27/28.
	sig := make([]byte, 65)
	copy(sig, raw)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pubkey, err := ethcrypto.SigToPub(personalDigest(message), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "signature recovery failed")
	}
	return ethcrypto.PubkeyToAddress(*pubkey), nil
}

// VerifySigner reports whether the signature over the message was produced
// by the expected address.
func VerifySigner(message common.Hash, signature string, expected common.Address) (bool, error) {
	signer, err := RecoverSigner(message, signature)
	if err != nil {
		return false, err
	}
	return signer == expected, nil
}
