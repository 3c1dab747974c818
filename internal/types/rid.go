package types

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/threshold-ecdsa/internal/params"
)

// RID is a random identifier of params.SecBytes bytes.
// Each keygen participant contributes one, and the session value is their XOR.
type RID []byte

// EmptyRID returns a zeroed-out RID of the correct length.
func EmptyRID() RID {
	return make(RID, params.SecBytes)
}

// NewRID reads a fresh RID from r.
func NewRID(r io.Reader) (RID, error) {
	rid := EmptyRID()
	if _, err := io.ReadFull(r, rid); err != nil {
		return nil, fmt.Errorf("rid: %w", err)
	}
	return rid, nil
}

// XOR modifies the receiver by taking the XOR with the argument.
func (rid RID) XOR(otherRID RID) {
	for b := 0; b < params.SecBytes; b++ {
		rid[b] ^= otherRID[b]
	}
}

// Equal compares two RIDs in constant time.
func (rid RID) Equal(otherRID RID) bool {
	return subtle.ConstantTimeCompare(rid, otherRID) == 1
}

// WriteTo implements io.WriterTo interface.
func (rid RID) WriteTo(w io.Writer) (int64, error) {
	if rid == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(rid[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (RID) Domain() string { return "RID" }

// Validate ensures that the RID has the correct length and is not identically 0.
func (rid RID) Validate() error {
	if l := len(rid); l != params.SecBytes {
		return fmt.Errorf("rid: incorrect length (got %d, expected %d)", l, params.SecBytes)
	}
	for _, b := range rid {
		if b != 0 {
			return nil
		}
	}
	return errors.New("rid: rid is 0")
}

// Copy returns a new RID with the same content.
func (rid RID) Copy() RID {
	other := EmptyRID()
	copy(other, rid)
	return other
}
