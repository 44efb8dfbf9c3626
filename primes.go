package deltac

import (
	"math/big"
	"math/rand"
)

// isPrime reports whether n is prime using Miller-Rabin with k random
// witnesses; the false-positive rate is at most 4^-k. k=100 matches the
// default in spec.md §4.6 and is overkill for the small capacities this
// module ever tests (hash-table/checkpoint sizing), but the cost is
// negligible at those sizes.
func isPrime(n uint64, k int) bool {
	switch {
	case n < 2:
		return false
	case n == 2 || n == 3:
		return true
	case n%2 == 0:
		return false
	}

	// n-1 = 2^r * d with d odd.
	d := n - 1
	r := 0
	for d%2 == 0 {
		d /= 2
		r++
	}

	bn := new(big.Int).SetUint64(n)
	bd := new(big.Int).SetUint64(d)
	rng := rand.New(rand.NewSource(int64(n) ^ 0x9E3779B97F4A7C15))

	for i := 0; i < k; i++ {
		a := randomBase(rng, n)
		if witness(a, bd, bn, r) {
			return false
		}
	}
	return true
}

// randomBase draws a uniform base in [2, n-2]; n is assumed >= 5 here
// (isPrime handles n < 5 directly).
func randomBase(rng *rand.Rand, n uint64) uint64 {
	if n <= 3 {
		return 2
	}
	return 2 + uint64(rng.Int63n(int64(n-3)))
}

// witness reports whether a is a Miller-Rabin witness to n's
// compositeness, given n-1 = 2^r * d.
func witness(a uint64, d, n *big.Int, r int) bool {
	ba := new(big.Int).SetUint64(a)
	x := new(big.Int).Exp(ba, d, n)
	one := big.NewInt(1)
	nMinus1 := new(big.Int).Sub(n, one)

	if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
		return false
	}
	for i := 0; i < r-1; i++ {
		x.Mul(x, x)
		x.Mod(x, n)
		if x.Cmp(nMinus1) == 0 {
			return false
		}
		if x.Cmp(one) == 0 {
			return true
		}
	}
	return true
}

// nextPrime returns the smallest prime >= n.
func nextPrime(n uint64) uint64 {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n, 100) {
		n += 2
	}
	return n
}
