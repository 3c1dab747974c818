// Package params defines the security parameters of the protocols.
package params

// Security parameters, in bits.
const (
	// SecBytes is the byte length of random identifiers and commitment openings.
	SecBytes = 32

	// L bounds the Paillier plaintexts proven in range, |x| < 2ˡ.
	L = 256
	// LPrime bounds the additive masks β of the MtA, |y| < 2ˡ′.
	LPrime = 5 * L
	// Epsilon is the slack of range proofs.
	Epsilon = 2 * L

	LPlusEpsilon      = L + Epsilon
	LPrimePlusEpsilon = LPrime + Epsilon

	// ZKModIterations is the number of challenges answered when proving that a
	// Paillier modulus N is a Blum integer. The challenges are derived from the
	// session transcript, so N cannot be chosen after seeing them.
	ZKModIterations = 12
	// ZKPrmIterations is the number of binary challenges in the ring-Pedersen parameter proof.
	ZKPrmIterations = 80
)

// Sizes of Paillier moduli and curve encodings.
const (
	BitsBlumPrime = 1024
	BitsPaillier  = 2 * BitsBlumPrime
	// BitsIntModN bounds elements of Z_N sampled for range proofs.
	BitsIntModN  = BitsPaillier
	BytesIntModN = BitsIntModN / 8

	BytesCiphertext = 2 * BitsPaillier / 8

	// BytesScalar is the length of a serialized secp256k1 scalar.
	BytesScalar = 32
	// BytesPoint is the length of a compressed secp256k1 point.
	BytesPoint = 33
)
