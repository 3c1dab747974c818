package arith

import (
	"github.com/cronokirby/saferith"
)

// IsValidNatModN checks that each x is defined, and satisfies 0 < x < N and gcd(x, N) = 1.
func IsValidNatModN(n *saferith.Modulus, xs ...*saferith.Nat) bool {
	for _, x := range xs {
		if x == nil {
			return false
		}
		if x.EqZero() == 1 {
			return false
		}
		if _, _, lt := x.CmpMod(n); lt != 1 {
			return false
		}
		if x.IsUnit(n) != 1 {
			return false
		}
	}
	return true
}

// IsInIntervalLEps returns true if n ∈ ± 2ˡ⁺ᵉ, for the given number of bits l + ε.
func IsInIntervalLEps(n *saferith.Int, bits int) bool {
	if n == nil {
		return false
	}
	return n.Abs().TrueLen() <= bits
}
