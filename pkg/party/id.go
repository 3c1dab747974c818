package party

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// ByteSize is the number of bytes required to store an ID.
const ByteSize = 2

// MaxID is the largest integer that can represent a party.
const MaxID = (1 << (ByteSize * 8)) - 1

// ID is the index of a party in a protocol execution.
// Valid IDs are in [1, n]; 0 is reserved for "no party", for example the
// receiver of a broadcast message.
type ID uint16

// Scalar returns the corresponding curve.Scalar, which is the evaluation
// point of this party's share.
func (id ID) Scalar() *curve.Scalar {
	return curve.NewScalarUint32(uint32(id))
}

// WriteTo implements io.WriterTo.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	var buf [ByteSize]byte
	binary.BigEndian.PutUint16(buf[:], uint16(id))
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (ID) Domain() string {
	return "ID"
}

// String returns a base 10 representation of ID.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// FromString parses a base 10 string into an ID.
func FromString(str string) (ID, error) {
	p, err := strconv.ParseUint(str, 10, 16)
	if err != nil {
		return 0, err
	}
	return ID(p), nil
}
