package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/offline"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/signing"
)

// Keygen runs key generation for party id and returns its key share.
func Keygen(ctx context.Context, id party.ID, t, n int, net *test.Network, pl *pool.Pool, logger zerolog.Logger, fixtures bool) (*config.Config, error) {
	opts := []gg20.Option{
		gg20.WithLogger(logger),
		gg20.WithPool(pl),
		gg20.WithSessionID([]byte("demo keygen")),
	}
	if fixtures {
		opts = append(opts, gg20.WithPaillier(test.PaillierSecret(int(id)-1)))
	}
	k, err := gg20.NewKeygen(id, t, n, opts...)
	if err != nil {
		return nil, err
	}
	if err = test.HandlerLoop(ctx, id, k.Handler, net); err != nil {
		return nil, err
	}
	return k.PickOutput()
}

// OfflineStage runs the offline stage for the signer at index i of coalition.
func OfflineStage(ctx context.Context, i int, coalition []party.ID, c *config.Config, net *test.Network, pl *pool.Pool, logger zerolog.Logger) (*offline.CompletedOffline, error) {
	o, err := gg20.NewOfflineStage(i, coalition, c,
		gg20.WithLogger(logger),
		gg20.WithPool(pl),
		gg20.WithSessionID([]byte("demo offline")))
	if err != nil {
		return nil, err
	}
	if err = test.HandlerLoop(ctx, c.ID, o.Handler, net); err != nil {
		return nil, err
	}
	return o.PickOutput()
}

// partialBoard collects the partial signatures published by each signer.
type partialBoard struct {
	ready    chan struct{}
	partials chan *signing.PartialSignature
	all      []*signing.PartialSignature
}

func newPartialBoard(n int) *partialBoard {
	return &partialBoard{
		ready:    make(chan struct{}),
		partials: make(chan *signing.PartialSignature, n),
	}
}

// collect waits for n partial signatures, and releases the signers waiting in others.
func (b *partialBoard) collect(ctx context.Context, n int) error {
	for len(b.all) < n {
		select {
		case p := <-b.partials:
			b.all = append(b.all, p)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	close(b.ready)
	return nil
}

func (b *partialBoard) others(ctx context.Context, self party.ID) ([]*signing.PartialSignature, error) {
	select {
	case <-b.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out := make([]*signing.PartialSignature, 0, len(b.all)-1)
	for _, p := range b.all {
		if p.Signer != self {
			out = append(out, p)
		}
	}
	return out, nil
}

// Sign publishes this signer's partial signature of digest and combines it with the others.
func Sign(ctx context.Context, digest []byte, completed *offline.CompletedOffline, board *partialBoard) (*ecdsa.Signature, error) {
	signer, partial, err := gg20.NewSignManual(digest, completed)
	if err != nil {
		return nil, err
	}
	board.partials <- partial
	others, err := board.others(ctx, partial.Signer)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Complete(others)
	if err != nil {
		return nil, err
	}
	if !gg20.Verify(sig, completed.PublicKey, digest) {
		return nil, errors.New("failed to verify signature")
	}
	if !sig.VerifyStandard(completed.PublicKey, digest) {
		return nil, fmt.Errorf("party %s: signature rejected by standard ECDSA verification", completed.ID)
	}
	return sig, nil
}
