package sample

import (
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

// primes returns all odd primes below the given bound.
func primes(below uint32) []uint32 {
	sieve := make([]bool, below)
	for i := 2; i < len(sieve); i++ {
		sieve[i] = true
	}
	for p := 2; p*p < len(sieve); p++ {
		if !sieve[p] {
			continue
		}
		for i := p << 1; i < len(sieve); i += p {
			sieve[i] = false
		}
	}
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF)))
	for p := uint32(3); p < below; p++ {
		if sieve[p] {
			out = append(out, p)
		}
	}
	return out
}

const (
	// sieveSize is the number of candidates checked after each random starting point.
	sieveSize = 1 << 18
	// primeBound bounds the small primes used for sieving.
	primeBound = 1 << 20
	// blumPrimalityIterations is the number of Miller-Rabin rounds for (p-1)/2.
	blumPrimalityIterations = 20
)

var (
	smallPrimes     []uint32
	smallPrimesOnce sync.Once

	sievePool = sync.Pool{
		New: func() interface{} {
			sieve := make([]bool, sieveSize)
			return &sieve
		},
	}
)

// tryBlumPrime looks for a safe prime p = 3 (mod 4) of params.BitsBlumPrime bits,
// in a window starting at a random point. It returns nil if the window contains none.
func tryBlumPrime(rand io.Reader) *saferith.Nat {
	smallPrimesOnce.Do(func() {
		smallPrimes = primes(primeBound)
	})

	bytes := make([]byte, (params.BitsBlumPrime+7)/8)
	if _, err := io.ReadFull(rand, bytes); err != nil {
		return nil
	}
	bytes[len(bytes)-1] |= 3
	// the top two bits are set so that a product of two such primes has exactly twice the bits
	bytes[0] |= 0xC0
	base := new(big.Int).SetBytes(bytes)

	sievePtr := sievePool.Get().(*[]bool)
	sieve := *sievePtr
	defer sievePool.Put(sievePtr)
	for i := range sieve {
		sieve[i] = i%4 == 0
	}
	remainder := new(big.Int)
	for _, prime := range smallPrimes {
		// x = 0 (mod r) is not prime, and x = 1 (mod r) means (x-1)/2 is not prime.
		remainder.SetUint64(uint64(prime))
		remainder.Mod(base, remainder)
		r := int(remainder.Uint64())
		primeInt := int(prime)
		firstMultiple := primeInt - r
		if r == 0 {
			firstMultiple = 0
		}
		for i := firstMultiple; i < len(sieve); i += primeInt {
			sieve[i] = false
			if i+1 < len(sieve) {
				sieve[i+1] = false
			}
		}
	}

	p := new(big.Int)
	q := new(big.Int)
	for delta := 0; delta < len(sieve); delta++ {
		if !sieve[delta] {
			continue
		}
		p.SetUint64(uint64(delta))
		p.Add(p, base)
		if p.BitLen() > params.BitsBlumPrime {
			return nil
		}
		q.Rsh(p, 1)
		if !q.ProbablyPrime(blumPrimalityIterations) {
			continue
		}
		// a single Miller-Rabin round suffices for p once q is prime
		if !p.ProbablyPrime(0) {
			continue
		}
		return new(saferith.Nat).SetBig(p, params.BitsBlumPrime)
	}
	return nil
}

// Paillier generates the primes of a Paillier key pair.
// p, q are safe primes ((p - 1) / 2 is also prime), and Blum primes (p = 3 mod 4).
func Paillier(rand io.Reader, pl *pool.Pool) (p, q *saferith.Nat) {
	reader := pool.NewLockedReader(rand)
	results := pl.Search(2, func() interface{} {
		q := tryBlumPrime(reader)
		if q == nil {
			return nil
		}
		return q
	})
	return results[0].(*saferith.Nat), results[1].(*saferith.Nat)
}
