package deltac

import "testing"

func TestIsPrimeKnownPrimes(t *testing.T) {
	primes := []uint64{
		2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47,
		53, 59, 61, 67, 71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	}
	for _, p := range primes {
		if !isPrime(p, 100) {
			t.Errorf("isPrime(%d) = false, want true", p)
		}
	}
}

func TestIsPrimeKnownComposites(t *testing.T) {
	composites := []uint64{0, 1, 4, 6, 8, 9, 10, 12, 14, 15, 16, 18, 20,
		21, 25, 27, 33, 35, 49, 51, 55, 63, 65, 77, 91, 100, 121, 143, 169, 221}
	for _, c := range composites {
		if isPrime(c, 100) {
			t.Errorf("isPrime(%d) = true, want false", c)
		}
	}
}

func TestIsPrimeCarmichaelNumbers(t *testing.T) {
	// Carmichael numbers pass Fermat's test for every base coprime to them;
	// Miller-Rabin with random witnesses still rejects them.
	for _, c := range []uint64{561, 1105, 1729, 2465, 2821, 6601, 8911} {
		if isPrime(c, 100) {
			t.Errorf("isPrime(%d) = true, want false (Carmichael number)", c)
		}
	}
}

func TestIsPrimeMersennePrimes(t *testing.T) {
	for _, exp := range []uint{2, 3, 5, 7, 13, 17, 19} {
		mp := uint64(1)<<exp - 1
		if !isPrime(mp, 100) {
			t.Errorf("isPrime(2^%d-1 = %d) = false, want true", exp, mp)
		}
	}
}

func TestNextPrime(t *testing.T) {
	cases := []struct{ n, want uint64 }{
		{0, 2}, {1, 2}, {2, 2}, {7, 7}, {8, 11}, {14, 17}, {100, 101}, {1000, 1009},
	}
	for _, c := range cases {
		if got := nextPrime(c.n); got != c.want {
			t.Errorf("nextPrime(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestNextPrimeMonotonicAndPrime(t *testing.T) {
	last := uint64(2)
	for n := uint64(2); n < 500; n++ {
		np := nextPrime(n)
		if np < n {
			t.Fatalf("nextPrime(%d) = %d < %d", n, np, n)
		}
		if !isPrime(np, 100) {
			t.Fatalf("nextPrime(%d) = %d is not prime", n, np)
		}
		if np < last {
			t.Fatalf("nextPrime sequence not monotonic at n=%d", n)
		}
		last = np
	}
}
