package mta

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/paillier"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pedersen"
	zkaffg "github.com/taurusgroup/threshold-ecdsa/pkg/zk/affg"
)

// ProveAffG runs the sender's side of a multiplicative-to-additive conversion, and proves it
// for the receiver.
// h is a hash function initialized with the sender's ID.
//   - senderSecretShare = aᵢ
//   - senderSecretSharePoint = Aᵢ = aᵢ⋅G
//   - receiverEncryptedShare = Encⱼ(bⱼ)
//
// The elements returned are :
//   - Beta = β
//   - D = (aᵢ ⊙ Bⱼ) ⊕ encⱼ(-β, s)
//   - F = encᵢ(-β, r)
//   - Proof = zkaffg proof of correct encryption.
//
// The receiver obtains α = Decⱼ(D) such that α + β = aᵢ⋅bⱼ.
func ProveAffG(h *hash.Hash,
	senderSecretShare *saferith.Int, senderSecretSharePoint *curve.Point, receiverEncryptedShare *paillier.Ciphertext,
	sender *paillier.SecretKey, receiver *paillier.PublicKey, verifier *pedersen.Parameters) (Beta *saferith.Int, D, F *paillier.Ciphertext, Proof *zkaffg.Proof) {
	D, F, S, R, BetaNeg := newMta(senderSecretShare, receiverEncryptedShare, sender, receiver)
	Proof = zkaffg.NewProof(h, zkaffg.Public{
		Kv:       receiverEncryptedShare,
		Dv:       D,
		Fp:       F,
		Xp:       senderSecretSharePoint,
		Prover:   sender.PublicKey,
		Verifier: receiver,
		Aux:      verifier,
	}, zkaffg.Private{
		X: senderSecretShare,
		Y: BetaNeg,
		S: S,
		R: R,
	})
	Beta = new(saferith.Int).SetInt(BetaNeg).Neg(1)
	return
}

// VerifyAffG checks the proof produced by ProveAffG, from the point of view of the receiver.
//   - senderSecretSharePoint = Aᵢ
//   - receiverEncryptedShare = Encⱼ(bⱼ), the receiver's own ciphertext
//   - verifier = the receiver's Pedersen parameters
func VerifyAffG(h *hash.Hash, proof *zkaffg.Proof,
	senderSecretSharePoint *curve.Point, receiverEncryptedShare, D, F *paillier.Ciphertext,
	sender, receiver *paillier.PublicKey, verifier *pedersen.Parameters) bool {
	return proof.Verify(h, zkaffg.Public{
		Kv:       receiverEncryptedShare,
		Dv:       D,
		Fp:       F,
		Xp:       senderSecretSharePoint,
		Prover:   sender,
		Verifier: receiver,
		Aux:      verifier,
	})
}

func newMta(senderSecretShare *saferith.Int, receiverEncryptedShare *paillier.Ciphertext,
	sender *paillier.SecretKey, receiver *paillier.PublicKey) (D, F *paillier.Ciphertext, S, R *saferith.Nat, BetaNeg *saferith.Int) {
	BetaNeg = sample.IntervalLPrime(rand.Reader)

	F, R = sender.Enc(BetaNeg) // F = encᵢ(-β, r)

	D, S = receiver.Enc(BetaNeg)
	tmp := receiverEncryptedShare.Clone().Mul(receiver, senderSecretShare) // tmp = aᵢ ⊙ Bⱼ
	D.Add(receiver, tmp)                                                   // D = encⱼ(-β;s) ⊕ (aᵢ ⊙ Bⱼ) = encⱼ(aᵢ•bⱼ-β)

	return
}
