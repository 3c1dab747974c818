package test

import (
	"io"

	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
	"github.com/taurusgroup/threshold-ecdsa/protocols/gg20/config"
)

// GenerateConfig creates a configuration for N parties with threshold T, as a trusted dealer would.
// Paillier keys are taken from the fixtures, so that no primes need to be generated.
func GenerateConfig(N, T int, source io.Reader) (map[party.ID]*config.Config, party.IDSlice) {
	partyIDs := PartyIDs(N)
	configs := make(map[party.ID]*config.Config, N)
	public := make(map[party.ID]*config.Public, N)

	f := polynomial.NewPolynomial(T, sample.Scalar(source))

	rid, err := types.NewRID(source)
	if err != nil {
		panic(err)
	}

	for i, pid := range partyIDs {
		paillierSecret := PaillierSecret(i)
		s, t, _ := sample.Pedersen(source, paillierSecret.Phi(), paillierSecret.N())
		pedersenPublic := pedersen.New(paillierSecret.Modulus(), s, t)

		ecdsaSecret := f.Evaluate(pid.Scalar())
		configs[pid] = &config.Config{
			ID:        pid,
			Threshold: T,
			ECDSA:     ecdsaSecret,
			Paillier:  paillierSecret,
			RID:       rid.Copy(),
			Public:    public,
		}
		public[pid] = &config.Public{
			ECDSA:    ecdsaSecret.ActOnBase(),
			Paillier: paillierSecret.PublicKey,
			Pedersen: pedersenPublic,
		}
	}
	return configs, partyIDs
}
