package test

import (
	"context"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// HandlerLoop blocks until the handler has finished. The result of the execution is given by Handler.Result().
//
// The handler is advanced whenever it can proceed, and its outgoing messages are sent over the network.
func HandlerLoop(ctx context.Context, id party.ID, h *protocol.Handler, network *Network) error {
	defer network.Quit(id)
	for !h.IsFinished() {
		if h.WantsToProceed() {
			err := h.Proceed()
			for _, msg := range h.DrainMessages() {
				network.Send(msg)
			}
			if err != nil {
				return err
			}
			continue
		}

		select {
		case msg := <-network.Next(id):
			if err := h.HandleIncoming(msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// RunHandlers runs all handlers concurrently over a simulated network until they finish.
// The first error returned by any handler is returned, and the others are cancelled.
func RunHandlers(ctx context.Context, handlers map[party.ID]*protocol.Handler) error {
	ids := make([]party.ID, 0, len(handlers))
	for id := range handlers {
		ids = append(ids, id)
	}
	network := NewNetwork(party.NewIDSlice(ids))

	g, ctx := errgroup.WithContext(ctx)
	for id, h := range handlers {
		id, h := id, h
		g.Go(func() error {
			if err := HandlerLoop(ctx, id, h, network); err != nil {
				return fmt.Errorf("party %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
