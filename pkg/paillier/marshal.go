package paillier

import (
	"encoding"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
)

var (
	_ encoding.BinaryMarshaler   = (*PublicKey)(nil)
	_ encoding.BinaryUnmarshaler = (*PublicKey)(nil)
	_ encoding.BinaryMarshaler   = (*SecretKey)(nil)
	_ encoding.BinaryUnmarshaler = (*SecretKey)(nil)
)

type publicKeyMarshal struct {
	N []byte
}

type secretKeyMarshal struct {
	P, Q []byte
}

// MarshalBinary implements encoding.BinaryMarshaler, encoding only N.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(publicKeyMarshal{N: pk.n.Bytes()})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, and validates N.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	var x publicKeyMarshal
	if err := cbor.Unmarshal(data, &x); err != nil {
		return err
	}
	n := saferith.ModulusFromBytes(x.N)
	if err := ValidateN(n); err != nil {
		return fmt.Errorf("paillier: %w", err)
	}
	*pk = *NewPublicKey(n)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler, encoding the factors P and Q.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(secretKeyMarshal{P: sk.p.Bytes(), Q: sk.q.Bytes()})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, and validates both primes.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	var x secretKeyMarshal
	if err := cbor.Unmarshal(data, &x); err != nil {
		return err
	}
	p := new(saferith.Nat).SetBytes(x.P)
	q := new(saferith.Nat).SetBytes(x.Q)
	if err := ValidatePrime(p); err != nil {
		return fmt.Errorf("paillier: p: %w", err)
	}
	if err := ValidatePrime(q); err != nil {
		return fmt.Errorf("paillier: q: %w", err)
	}
	*sk = *NewSecretKeyFromPrimes(p, q)
	return nil
}
