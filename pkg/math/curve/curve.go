package curve

import (
	"encoding/hex"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"golang.org/x/crypto/sha3"
)

// Name of the only group supported by this module.
const Name = "secp256k1"

// ScalarBits is the bit length of the group order.
const ScalarBits = 256

var (
	order     *saferith.Modulus
	orderOnce sync.Once

	pedersenH     *Point
	pedersenHOnce sync.Once
)

// Order returns the order q of the secp256k1 group.
func Order() *saferith.Modulus {
	orderOnce.Do(func() {
		b, _ := hex.DecodeString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")
		order = saferith.ModulusFromBytes(b)
	})
	return order
}

// FromHash converts a message digest to a Scalar.
//
// Following [SECG], the digest is truncated to the bit-length of the curve order
// and interpreted as a big-endian integer, then reduced modulo q.
// Since q has 256 bits, no shift of the excess bits is needed.
// Shorter inputs are used as is, so that arbitrary message bytes can be signed.
func FromHash(h []byte) *Scalar {
	if len(h) > params.BytesScalar {
		h = h[:params.BytesScalar]
	}
	var s Scalar
	s.value.SetByteSlice(h)
	return &s
}

// MakeInt converts s to a saferith.Int in [0, q).
func MakeInt(s *Scalar) *saferith.Int {
	return s.Int()
}

// H returns a second generator of the group whose discrete logarithm with
// respect to G is unknown.
//
// It is derived by hashing a fixed string with SHAKE256 and using the output as the
// x coordinate of a point with even y, incrementing a counter until a valid point is found.
func H() *Point {
	pedersenHOnce.Do(func() {
		var ctr byte
		for {
			xof := sha3.NewShake256()
			_, _ = xof.Write([]byte("threshold-ecdsa secp256k1 Pedersen generator H"))
			_, _ = xof.Write([]byte{ctr})
			candidate := make([]byte, params.BytesPoint)
			candidate[0] = secp256k1.PubKeyFormatCompressedEven
			_, _ = xof.Read(candidate[1:])
			var p Point
			if err := p.UnmarshalBinary(candidate); err == nil {
				pedersenH = &p
				return
			}
			ctr++
		}
	})
	return new(Point).Set(pedersenH)
}
