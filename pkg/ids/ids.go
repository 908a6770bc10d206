// Package ids produces the 32-byte identifiers used across the agreement
// protocol: random agreement IDs and asset DIDs, and deterministic
// hash-derived condition IDs that must match, byte for byte, the values the
// execution environment computes from the same logical inputs.
package ids

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/aquaprotocol/aqua-go/pkg/errors"
)

// ValueType enumerates the ABI types used in condition parameters.
type ValueType string

const (
	TypeAddress      ValueType = "address"
	TypeBytes32      ValueType = "bytes32"
	TypeBytes32Array ValueType = "bytes32[]"
	TypeUint256      ValueType = "uint256"
	TypeUint256Array ValueType = "uint256[]"
)

// Value is one ordered, typed parameter in a hash derivation. Order is part
// of the protocol contract and must never change without a template version
// bump.
type Value struct {
	Type  ValueType
	Value interface{}
}

// Address wraps a 20-byte address parameter.
func Address(addr common.Address) Value {
	return Value{Type: TypeAddress, Value: addr}
}

// Bytes32 wraps a 32-byte parameter.
func Bytes32(h common.Hash) Value {
	return Value{Type: TypeBytes32, Value: h}
}

// Bytes32Array wraps an ordered list of 32-byte parameters.
func Bytes32Array(hs []common.Hash) Value {
	return Value{Type: TypeBytes32Array, Value: hs}
}

// Uint256 wraps an unsigned 256-bit integer parameter.
func Uint256(v *big.Int) Value {
	return Value{Type: TypeUint256, Value: v}
}

// Uint64 wraps a native integer as a uint256 parameter.
func Uint64(v uint64) Value {
	return Value{Type: TypeUint256, Value: new(big.Int).SetUint64(v)}
}

// Uint256Array wraps an ordered list of uint256 parameters.
func Uint256Array(vs []*big.Int) Value {
	return Value{Type: TypeUint256Array, Value: vs}
}

// Uint64Array wraps native integers as a uint256[] parameter.
func Uint64Array(vs []uint64) Value {
	bigs := make([]*big.Int, len(vs))
	for i, v := range vs {
		bigs[i] = new(big.Int).SetUint64(v)
	}
	return Value{Type: TypeUint256Array, Value: bigs}
}

// GenerateID returns a cryptographically-random 32-byte identifier, used for
// agreement IDs and asset DIDs.
func GenerateID() common.Hash {
	var id common.Hash
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("ids: entropy source failed: %v", err))
	}
	return id
}

// HashValues applies the execution environment's tightly-packed ABI encoding
// over a strictly ordered sequence of typed values and keccak-hashes the
// result: address = 20 bytes, bytes32 = 32 bytes, uint256 = 32-byte
// big-endian, arrays = concatenated 32-byte elements. This is the single
// compatibility-critical encoding in the library.
func HashValues(values ...Value) (common.Hash, error) {
	packed, err := pack(values)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(crypto.Keccak256(packed)), nil
}

// GenerateConditionID derives a condition identifier from its agreement and
// its parameter hash: keccak256(agreementId ++ valueHash). Pure function, no
// I/O; both parties pre-compute it independently before submission.
func GenerateConditionID(agreementID common.Hash, valueHash common.Hash) common.Hash {
	return common.BytesToHash(crypto.Keccak256(agreementID.Bytes(), valueHash.Bytes()))
}

func pack(values []Value) ([]byte, error) {
	var buf []byte
	for i, v := range values {
		switch v.Type {
		case TypeAddress:
			addr, ok := v.Value.(common.Address)
			if !ok {
				return nil, typeError(i, v, "common.Address")
			}
			buf = append(buf, addr.Bytes()...)

		case TypeBytes32:
			h, ok := v.Value.(common.Hash)
			if !ok {
				return nil, typeError(i, v, "common.Hash")
			}
			buf = append(buf, h.Bytes()...)

		case TypeBytes32Array:
			hs, ok := v.Value.([]common.Hash)
			if !ok {
				return nil, typeError(i, v, "[]common.Hash")
			}
			for _, h := range hs {
				buf = append(buf, h.Bytes()...)
			}

		case TypeUint256:
			n, ok := v.Value.(*big.Int)
			if !ok {
				return nil, typeError(i, v, "*big.Int")
			}
			b, err := uint256Bytes(n)
			if err != nil {
				return nil, errors.NewValidationError(fmt.Sprintf("values[%d]", i), err.Error(), v.Value)
			}
			buf = append(buf, b...)

		case TypeUint256Array:
			ns, ok := v.Value.([]*big.Int)
			if !ok {
				return nil, typeError(i, v, "[]*big.Int")
			}
			for _, n := range ns {
				b, err := uint256Bytes(n)
				if err != nil {
					return nil, errors.NewValidationError(fmt.Sprintf("values[%d]", i), err.Error(), v.Value)
				}
				buf = append(buf, b...)
			}

		default:
			return nil, errors.NewValidationError(
				fmt.Sprintf("values[%d]", i),
				fmt.Sprintf("unsupported value type %q", v.Type),
				v.Value,
			)
		}
	}
	return buf, nil
}

func uint256Bytes(n *big.Int) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("nil uint256")
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for uint256", n)
	}
	if n.BitLen() > 256 {
		return nil, fmt.Errorf("value %s overflows uint256", n)
	}
	return common.LeftPadBytes(n.Bytes(), 32), nil
}

func typeError(i int, v Value, want string) error {
	return errors.NewValidationError(
		fmt.Sprintf("values[%d]", i),
		fmt.Sprintf("type %q requires %s, got %T", v.Type, want, v.Value),
		v.Value,
	)
}
