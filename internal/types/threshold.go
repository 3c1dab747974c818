package types

import (
	"encoding/binary"
	"io"
)

// ThresholdWrapper is the threshold t of a session, written to transcripts so that
// proofs and commitments are bound to it.
type ThresholdWrapper uint16

// WriteTo implements io.WriterTo interface.
func (t ThresholdWrapper) WriteTo(w io.Writer) (int64, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(t))
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ThresholdWrapper) Domain() string { return "Threshold" }
