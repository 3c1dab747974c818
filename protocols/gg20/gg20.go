// Package gg20 runs threshold ECDSA key generation and signing between a fixed set of parties.
//
// A signature is produced in three steps:
//   - Keygen, run once by all n parties, gives each party a *config.Config key share.
//   - OfflineStage, run by a coalition of at least t+1 parties before the message is known,
//     gives each signer a single-use *offline.CompletedOffline.
//   - NewSignManual turns a CompletedOffline and a message into a partial signature,
//     and combines the partial signatures of the other signers.
//
// Keygen and OfflineStage embed a *protocol.Handler, which the caller drives by
// delivering messages and calling Proceed.
package gg20

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/keygen"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/offline"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/signing"
)

// ErrInvalidCoalition is returned when the signer index does not match the key share.
var ErrInvalidCoalition = offline.ErrInvalidCoalition

type settings struct {
	logger    zerolog.Logger
	pool      *pool.Pool
	sessionID []byte
	paillier  *paillier.SecretKey
}

// Option configures a Keygen or OfflineStage.
type Option func(*settings)

// WithLogger sets the logger of the handler. By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithPool sets the pool used to parallelize the local computation of each round.
func WithPool(pl *pool.Pool) Option {
	return func(s *settings) { s.pool = pl }
}

// WithSessionID binds the execution to sessionID, which all parties must agree on.
func WithSessionID(sessionID []byte) Option {
	return func(s *settings) { s.sessionID = sessionID }
}

// WithPaillier sets a pre-generated Paillier secret key for keygen. It is ignored by OfflineStage.
func WithPaillier(sk *paillier.SecretKey) Option {
	return func(s *settings) { s.paillier = sk }
}

func newSettings(opts []Option) *settings {
	s := &settings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keygen is an execution of key generation by a single party.
type Keygen struct {
	*protocol.Handler
}

// NewKeygen starts key generation for party i among the parties 1, …, n,
// such that any t+1 of them can sign.
func NewKeygen(i party.ID, t, n int, opts ...Option) (*Keygen, error) {
	if !config.ValidThreshold(t, n) {
		return nil, fmt.Errorf("keygen: threshold %d is invalid for %d parties", t, n)
	}
	if i < 1 || int(i) > n {
		return nil, fmt.Errorf("keygen: party %s is not in 1, …, %d", i, n)
	}
	s := newSettings(opts)
	var keygenOpts []keygen.Option
	if s.paillier != nil {
		keygenOpts = append(keygenOpts, keygen.WithPaillier(s.paillier))
	}
	h, err := protocol.NewHandler(s.logger, keygen.Start(i, party.Range(n), t, s.pool, keygenOpts...), s.sessionID)
	if err != nil {
		return nil, err
	}
	return &Keygen{Handler: h}, nil
}

// PickOutput returns the key share once the protocol has finished successfully.
func (k *Keygen) PickOutput() (*config.Config, error) {
	result, err := k.Result()
	if err != nil {
		return nil, err
	}
	c, ok := result.(*config.Config)
	if !ok {
		return nil, errors.New("keygen: unexpected result type")
	}
	return c, nil
}

// OfflineStage is an execution of the offline signing stage by a single signer.
type OfflineStage struct {
	*protocol.Handler
}

// NewOfflineStage starts the offline stage for the signer at 1-based index i of coalition,
// which must be the owner of share.
func NewOfflineStage(i int, coalition []party.ID, share *config.Config, opts ...Option) (*OfflineStage, error) {
	if share == nil {
		return nil, fmt.Errorf("%w: nil key share", ErrInvalidCoalition)
	}
	if i < 1 || i > len(coalition) {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidCoalition, i)
	}
	if coalition[i-1] != share.ID {
		return nil, fmt.Errorf("%w: signer %d is party %s, but the key share belongs to %s",
			ErrInvalidCoalition, i, coalition[i-1], share.ID)
	}
	s := newSettings(opts)
	h, err := protocol.NewHandler(s.logger, offline.Start(share, coalition, s.pool), s.sessionID)
	if err != nil {
		return nil, err
	}
	return &OfflineStage{Handler: h}, nil
}

// PickOutput returns the single-use result of the offline stage once the protocol has finished successfully.
func (o *OfflineStage) PickOutput() (*offline.CompletedOffline, error) {
	result, err := o.Result()
	if err != nil {
		return nil, err
	}
	c, ok := result.(*offline.CompletedOffline)
	if !ok {
		return nil, errors.New("offline: unexpected result type")
	}
	return c, nil
}

// NewSignManual computes this signer's partial signature of message.
// See signing.NewSignManual.
func NewSignManual(message []byte, completed *offline.CompletedOffline) (*signing.Signer, *signing.PartialSignature, error) {
	return signing.NewSignManual(message, completed)
}

// Verify returns true if sig is a valid signature of message under publicKey.
func Verify(sig *ecdsa.Signature, publicKey *curve.Point, message []byte) bool {
	return signing.Verify(sig, publicKey, message)
}
