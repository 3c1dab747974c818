package hash

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of the output of Sum.
const DigestLengthBytes = params.SecBytes * 2 // 64

// Hash is the transcript hash used for commitments and Fiat-Shamir challenges.
//
// It wraps blake3.Hasher and writes every value with a domain and a length prefix,
// so that two different sequences of values cannot produce the same state.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct where the internal hash function is initialized with "threshold-ecdsa".
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	_, _ = hash.h.WriteString("threshold-ecdsa")
	for _, data := range initialData {
		_ = hash.WriteAny(data)
	}
	return hash
}

// Digest returns a reader for the current state of the hash.
// Further writes to the Hash do not affect the reader.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Clone().Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny writes each item to the hash state, prefixed by its domain and length.
//
// Supported types are []byte, WriterToWithDomain and encoding.BinaryMarshaler,
// which covers curve elements and saferith numbers.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var (
			domain string
			body   []byte
			err    error
		)
		switch t := d.(type) {
		case []byte:
			domain, body = "[]byte", t
		case WriterToWithDomain:
			domain = t.Domain()
			body, err = writerToBytes(t)
		case encoding.BinaryMarshaler:
			domain = reflect.TypeOf(t).String()
			body, err = t.MarshalBinary()
		default:
			return fmt.Errorf("hash.WriteAny: unsupported type %T", d)
		}
		if err != nil {
			return fmt.Errorf("hash.WriteAny: %s: %w", domain, err)
		}
		hash.writeWithDomain(domain, body)
	}
	return nil
}

func (hash *Hash) writeWithDomain(domain string, body []byte) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(domain)))
	_, _ = hash.h.Write(length[:])
	_, _ = hash.h.WriteString(domain)
	binary.BigEndian.PutUint64(length[:], uint64(len(body)))
	_, _ = hash.h.Write(length[:])
	_, _ = hash.h.Write(body)
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork returns a clone of the Hash to which data has been written.
// Errors are ignored, since the inputs are always of a supported type.
func (hash *Hash) Fork(data ...interface{}) *Hash {
	newHash := hash.Clone()
	_ = newHash.WriteAny(data...)
	return newHash
}
