package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/threshold-ecdsa/internal/params"
)

// Commitment is the digest H(data ‖ decommitment).
type Commitment []byte

// Decommitment is the random opening of a Commitment.
type Decommitment []byte

// ErrDecommit is returned by callers when an opening does not match its commitment.
var ErrDecommit = errors.New("decommitment does not match commitment")

// Validate returns an error if c is not a digest.
func (c Commitment) Validate() error {
	if len(c) != DigestLengthBytes {
		return fmt.Errorf("commitment: length is %d, should be %d", len(c), DigestLengthBytes)
	}
	return nil
}

// Validate returns an error if d does not have the length of a fresh opening.
func (d Decommitment) Validate() error {
	if len(d) != params.SecBytes {
		return fmt.Errorf("decommitment: length is %d, should be %d", len(d), params.SecBytes)
	}
	return nil
}

func (c Commitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c)
	return int64(n), err
}

func (Commitment) Domain() string { return "Commitment" }

func (d Decommitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d)
	return int64(n), err
}

func (Decommitment) Domain() string { return "Decommitment" }

// Commit samples a decommitment d and returns H(data ‖ d) computed from a copy of the current state.
func (hash *Hash) Commit(data ...interface{}) (Commitment, Decommitment, error) {
	d := make(Decommitment, params.SecBytes)
	if _, err := io.ReadFull(rand.Reader, d); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	c, err := hash.opening(d, data)
	if err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return c, d, nil
}

// Decommit returns true if c = H(data ‖ d).
func (hash *Hash) Decommit(c Commitment, d Decommitment, data ...interface{}) bool {
	if c.Validate() != nil || d.Validate() != nil {
		return false
	}
	expected, err := hash.opening(d, data)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expected, c) == 1
}

func (hash *Hash) opening(d Decommitment, data []interface{}) (Commitment, error) {
	h := hash.Clone()
	if err := h.WriteAny(data...); err != nil {
		return nil, err
	}
	if err := h.WriteAny(d); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}
