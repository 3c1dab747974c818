package ecdsa

import (
	"errors"
	"fmt"

	decred "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// Signature is an ECDSA signature (R, s), where r = R.x (mod q).
type Signature struct {
	R *curve.Point
	S *curve.Scalar
}

// EmptySignature returns a new signature ready for unmarshalling.
func EmptySignature() Signature {
	return Signature{
		R: curve.NewIdentityPoint(),
		S: curve.NewScalar(),
	}
}

// Verify is a custom signature format using curve data.
// The message is interpreted with curve.FromHash, without hashing.
func (sig Signature) Verify(X *curve.Point, hash []byte) bool {
	if sig.R == nil || sig.S == nil || X == nil {
		return false
	}
	if sig.R.IsIdentity() || sig.S.IsZero() || X.IsIdentity() {
		return false
	}

	m := curve.FromHash(hash)
	sInv := sig.S.Clone().Invert()
	r := sig.R.XScalar()

	// R' = s⁻¹⋅(m⋅G + r⋅X)
	mG := m.ActOnBase()
	rX := r.Act(X)
	R2 := sInv.Act(mG.Add(rX))
	return R2.Equal(sig.R)
}

// Normalize sets s to q - s when s > q/2, so that the signature is in low-s form.
// R is negated as well, so that Verify still holds.
func (sig *Signature) Normalize() {
	if sig.S.IsOverHalfOrder() {
		sig.S.Negate()
		sig.R = sig.R.Negate()
	}
}

// ToDecred returns the signature as a decred ecdsa signature, which can be verified with standard ECDSA.
func (sig Signature) ToDecred() (*decred.Signature, error) {
	if sig.R == nil || sig.S == nil {
		return nil, errors.New("ecdsa: nil signature")
	}
	r := sig.R.XScalar()
	if r == nil {
		return nil, errors.New("ecdsa: R is the identity")
	}
	return decred.NewSignature(r.ModNScalar(), sig.S.ModNScalar()), nil
}

// SigDER returns the ASN.1 DER encoding of (r, s).
func (sig Signature) SigDER() ([]byte, error) {
	ds, err := sig.ToDecred()
	if err != nil {
		return nil, err
	}
	return ds.Serialize(), nil
}

// SigBytes returns the 64 byte encoding r ‖ s.
func (sig Signature) SigBytes() ([]byte, error) {
	if sig.R == nil || sig.S == nil {
		return nil, errors.New("ecdsa: nil signature")
	}
	r := sig.R.XScalar()
	if r == nil {
		return nil, errors.New("ecdsa: R is the identity")
	}
	rb, _ := r.MarshalBinary()
	sb, _ := sig.S.MarshalBinary()
	out := make([]byte, 0, 2*params.BytesScalar)
	out = append(out, rb...)
	return append(out, sb...), nil
}

// VerifyStandard checks the signature with the decred ECDSA implementation,
// which only uses r and is independent from the representation of R.
func (sig Signature) VerifyStandard(X *curve.Point, hash []byte) bool {
	ds, err := sig.ToDecred()
	if err != nil {
		return false
	}
	pk, err := X.ToPublicKey()
	if err != nil {
		return false
	}
	return ds.Verify(hash, pk)
}

// ParsePublicKey parses a 33 or 65 byte SEC1 public key.
func ParsePublicKey(data []byte) (*curve.Point, error) {
	var p curve.Point
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("ecdsa: %w", err)
	}
	if p.IsIdentity() {
		return nil, errors.New("ecdsa: public key is the identity")
	}
	return &p, nil
}
