package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/pkg/ecdsa"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/offline"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

func parseCoalition(s string) ([]party.ID, error) {
	var ids []party.ID
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid party %q: %w", field, err)
		}
		ids = append(ids, party.ID(v))
	}
	return ids, nil
}

func run(ctx context.Context, n, t int, coalition []party.ID, message string, fixtures bool, logger, out zerolog.Logger) error {
	if fixtures && n > test.NumPaillierFixtures {
		return fmt.Errorf("only %d Paillier fixtures are available, use -fixtures=false", test.NumPaillierFixtures)
	}
	pl := pool.NewPool(0)
	defer pl.TearDown()

	partyIDs := party.Range(n)

	start := time.Now()
	net := test.NewNetwork(partyIDs)
	configs := make(map[party.ID]*config.Config, n)
	results := make([]*config.Config, n)
	g, gctx := errgroup.WithContext(ctx)
	for idx, id := range partyIDs {
		idx, id := idx, id
		g.Go(func() error {
			c, err := Keygen(gctx, id, t, n, net, pl, logger, fixtures)
			if err != nil {
				return fmt.Errorf("keygen: party %s: %w", id, err)
			}
			results[idx] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, c := range results {
		configs[c.ID] = c
	}
	publicKey := results[0].PublicKeyBytes()
	out.Info().Dur("took", time.Since(start)).Hex("public_key", publicKey).Msg("keygen done")

	start = time.Now()
	net = test.NewNetwork(party.NewIDSlice(coalition))
	completed := make([]*offline.CompletedOffline, len(coalition))
	g, gctx = errgroup.WithContext(ctx)
	for _, id := range coalition {
		if configs[id] == nil {
			return fmt.Errorf("party %s did not take part in keygen", id)
		}
	}
	for idx, id := range coalition {
		idx, c := idx, configs[id]
		g.Go(func() error {
			out, err := OfflineStage(gctx, idx+1, coalition, c, net, pl, logger)
			if err != nil {
				return fmt.Errorf("offline: party %s: %w", c.ID, err)
			}
			completed[idx] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	out.Info().Dur("took", time.Since(start)).Msg("offline stage done")

	digest := sha3.Sum256([]byte(message))
	board := newPartialBoard(len(coalition))
	signatures := make([]*ecdsa.Signature, len(coalition))
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error { return board.collect(gctx, len(coalition)) })
	for idx := range coalition {
		idx := idx
		g.Go(func() error {
			sig, err := Sign(gctx, digest[:], completed[idx], board)
			if err != nil {
				return fmt.Errorf("signing: party %s: %w", completed[idx].ID, err)
			}
			signatures[idx] = sig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sig, err := signatures[0].SigBytes()
	if err != nil {
		return err
	}
	der, err := signatures[0].SigDER()
	if err != nil {
		return err
	}
	out.Info().
		Hex("digest", digest[:]).
		Hex("signature", sig).
		Str("der", hex.EncodeToString(der)).
		Msg("signature verified")
	return nil
}

func main() {
	n := flag.Int("n", 3, "number of parties")
	t := flag.Int("t", 1, "threshold, any t+1 parties can sign")
	signers := flag.String("signers", "1,2", "comma separated coalition of signers, in signer index order")
	message := flag.String("message", "hello", "message to sign, hashed with SHA3-256")
	fixtures := flag.Bool("fixtures", true, "use pre-generated Paillier keys instead of generating safe primes")
	debug := flag.Bool("debug", false, "log every round")
	timeout := flag.Duration("timeout", 10*time.Minute, "maximum duration of the demo")
	flag.Parse()

	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	demoLogger := logger.Level(zerolog.InfoLevel)

	coalition, err := parseCoalition(*signers)
	if err != nil {
		demoLogger.Fatal().Err(err).Msg("invalid signers")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err = run(ctx, *n, *t, coalition, *message, *fixtures, logger, demoLogger); err != nil {
		demoLogger.Fatal().Err(err).Msg("demo failed")
	}
}
