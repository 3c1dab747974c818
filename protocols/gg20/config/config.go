package config

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
)

// Public holds public information for a party.
type Public struct {
	// ECDSA public key share Xⱼ = xⱼ⋅G
	ECDSA *curve.Point
	// Paillier is this party's public Paillier key Nⱼ.
	Paillier *paillier.PublicKey
	// Pedersen is this party's auxiliary commitment parameters (Nⱼ, sⱼ, tⱼ).
	Pedersen *pedersen.Parameters
}

// Config is the key share of a party after keygen.
// It represents ssid = (sid, (N₁, s₁, t₁), …, (Nₙ, sₙ, tₙ))
// where sid = (secp256k1, t, n, P₁, …, Pₙ).
type Config struct {
	ID party.ID

	// Threshold is the integer t which defines the maximum number of corruptions tolerated for this config.
	// Threshold + 1 is the minimum number of parties' shares required to reconstruct the secret/sign a message.
	Threshold int

	// ECDSA is this party's share xᵢ of the secret ECDSA x
	ECDSA *curve.Scalar

	// Paillier is this party's Paillier secret key, which also defines its Pedersen parameters.
	Paillier *paillier.SecretKey

	// RID is a 32 byte random identifier generated for this config
	RID types.RID

	// Public maps party.ID to party. It contains all public information associated to a party.
	Public map[party.ID]*Public
}

// PublicPoint returns the group's public ECC point X = ∑ⱼ λⱼ⋅Xⱼ.
func (c *Config) PublicPoint() *curve.Point {
	sum := curve.NewIdentityPoint()
	l := polynomial.Lagrange(c.PartyIDs())
	for j, partyJ := range c.Public {
		sum = sum.Add(l[j].Act(partyJ.ECDSA))
	}
	return sum
}

// PublicKeyBytes returns the 65 byte uncompressed encoding of the public key.
func (c *Config) PublicKeyBytes() []byte {
	return c.PublicPoint().BytesUncompressed()
}

// Validate ensures that the data is consistent. In particular it verifies:
// - 0 ⩽ threshold ⩽ n-1
// - all public data is present and valid
// - the secret corresponds to the data from an included party.
func (c *Config) Validate() error {
	// verify number of parties w.r.t. threshold
	// want 0 ⩽ threshold ⩽ n-1
	if !ValidThreshold(c.Threshold, len(c.Public)) {
		return fmt.Errorf("config: threshold %d is invalid", c.Threshold)
	}

	if err := c.RID.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.ECDSA == nil || c.Paillier == nil {
		return errors.New("config: one or more field is empty")
	}

	if c.ECDSA.IsZero() {
		return errors.New("config: ECDSA secret key share is zero")
	}

	if err := paillier.ValidatePrime(c.Paillier.P()); err != nil {
		return fmt.Errorf("config: prime p: %w", err)
	}
	if err := paillier.ValidatePrime(c.Paillier.Q()); err != nil {
		return fmt.Errorf("config: prime q: %w", err)
	}

	for j, publicJ := range c.Public {
		if j == 0 {
			return errors.New("config: party ID 0 is reserved")
		}
		if err := publicJ.validate(); err != nil {
			return fmt.Errorf("config: party %s: %w", j, err)
		}
	}

	// verify our ID is present
	public := c.Public[c.ID]
	if public == nil {
		return errors.New("config: no public data for secret")
	}

	if !c.ECDSA.ActOnBase().Equal(public.ECDSA) {
		return errors.New("config: ECDSA secret key share does not correspond to public share")
	}

	if !c.Paillier.PublicKey.Equal(public.Paillier) {
		return errors.New("config: P•Q ≠ N")
	}

	if c.PublicPoint().IsIdentity() {
		return errors.New("config: public key is identity")
	}

	return nil
}

// PartyIDs returns a sorted slice of party IDs.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.Public))
	for j := range c.Public {
		ids = append(ids, j)
	}
	return party.NewIDSlice(ids)
}

// CanSign returns true if the given _sorted_ list of signers is
// a valid subset of the original parties of size > t,
// and includes self.
func (c *Config) CanSign(signers party.IDSlice) bool {
	if !ValidThreshold(c.Threshold, len(signers)) {
		return false
	}

	// check for duplicates
	if !signers.Valid() {
		return false
	}

	if !signers.Contains(c.ID) {
		return false
	}

	for _, j := range signers {
		if _, ok := c.Public[j]; !ok {
			return false
		}
	}

	return true
}

// Erase zeroes the secret share. The Config must not be used afterwards.
func (c *Config) Erase() {
	if c.ECDSA != nil {
		c.ECDSA.Zero()
	}
	c.Paillier = nil
}

// ValidThreshold returns true if 0 ⩽ t ⩽ n-1.
func ValidThreshold(t, n int) bool {
	if t < 0 || t > math.MaxUint16 {
		return false
	}
	if n <= 0 || t > n-1 {
		return false
	}
	return true
}

// WriteTo implements io.WriterTo interface.
func (c *Config) WriteTo(w io.Writer) (total int64, err error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var n int64

	// write t
	n, err = types.ThresholdWrapper(c.Threshold).WriteTo(w)
	total += n
	if err != nil {
		return
	}

	// write partyIDs
	partyIDs := c.PartyIDs()
	n, err = partyIDs.WriteTo(w)
	total += n
	if err != nil {
		return
	}

	// write rid
	n, err = c.RID.WriteTo(w)
	total += n
	if err != nil {
		return
	}

	// write all party data
	for _, j := range partyIDs {
		n, err = c.Public[j].WriteTo(w)
		total += n
		if err != nil {
			return
		}
	}

	return
}

// Domain implements hash.WriterToWithDomain.
func (Config) Domain() string {
	return "GG20 Config"
}

// validate returns an error if Public is invalid. Otherwise return nil.
func (p *Public) validate() error {
	if p == nil || p.ECDSA == nil || p.Paillier == nil || p.Pedersen == nil {
		return errors.New("public: one or more field is empty")
	}

	if p.ECDSA.IsIdentity() {
		return errors.New("public: ECDSA public key share is identity")
	}

	if err := paillier.ValidateN(p.Paillier.N()); err != nil {
		return fmt.Errorf("public: %w", err)
	}

	if p.Pedersen.N().Nat().Eq(p.Paillier.N().Nat()) != 1 {
		return errors.New("public: Pedersen and Paillier moduli differ")
	}

	if err := pedersen.ValidateParameters(p.Pedersen.N(), p.Pedersen.S(), p.Pedersen.T()); err != nil {
		return fmt.Errorf("public: %w", err)
	}

	return nil
}

// WriteTo implements io.WriterTo interface.
func (p *Public) WriteTo(w io.Writer) (total int64, err error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	data, err := p.ECDSA.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	total = int64(n)
	if err != nil {
		return
	}

	// N, s, t
	n64, err := p.Pedersen.WriteTo(w)
	total += n64
	return
}

// Domain implements hash.WriterToWithDomain.
func (Public) Domain() string {
	return "Public Data"
}

// Equal returns true if both parties hold the same public data.
func (p *Public) Equal(other *Public) bool {
	if !p.ECDSA.Equal(other.ECDSA) {
		return false
	}
	if !p.Paillier.Equal(other.Paillier) {
		return false
	}
	if p.Pedersen.S().Eq(other.Pedersen.S()) != 1 {
		return false
	}
	if p.Pedersen.T().Eq(other.Pedersen.T()) != 1 {
		return false
	}
	return true
}
