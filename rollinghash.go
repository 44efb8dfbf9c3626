package deltac

import (
	"math/bits"
	"sync"
)

// Karp-Rabin parameters. b is a small odd prime chosen to avoid the
// low-bit degeneracy of b=256; Q is the Mersenne prime 2^61-1, so every
// residue fits a uint64 and the rolling subtraction needs one guard.
// Products of two residues can exceed 64 bits and go through mulMod.
const (
	rollingBase = uint64(263)
	rollingMod  = uint64(1)<<61 - 1 // 2^61 - 1
)

// bpCache memoizes b^(p-1) mod Q per distinct seed length p. It is the
// one process-wide, append-only cache in this module: once a value is
// written for a given p it never changes, so concurrent readers observe
// either the absent or the final value and initialization is idempotent.
var bpCache sync.Map // map[int]uint64

// bpFor returns b^(p-1) mod Q, computing and caching it on first use.
func bpFor(p int) uint64 {
	if v, ok := bpCache.Load(p); ok {
		return v.(uint64)
	}
	bp := modPow(rollingBase, uint64(p-1), rollingMod)
	actual, _ := bpCache.LoadOrStore(p, bp)
	return actual.(uint64)
}

// modPow computes base^exp mod m by repeated squaring, using 128-bit-safe
// multiplication (mulMod) throughout since m can approach 2^61.
func modPow(base, exp, m uint64) uint64 {
	result := uint64(1) % m
	base %= m
	for exp > 0 {
		if exp&1 == 1 {
			result = mulMod(result, base, m)
		}
		base = mulMod(base, base, m)
		exp >>= 1
	}
	return result
}

// mulMod computes (a*b) mod m without overflowing uint64: a*b can exceed
// 64 bits even though a, b, m < 2^61, so the double-width product from
// bits.Mul64 is reduced with bits.Div64.
func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

// RollingHash is a Karp-Rabin fingerprint window over a borrowed byte
// slice. It owns its residue and the cached bp factor; it never owns or
// copies the underlying bytes, which must outlive the window.
type RollingHash struct {
	data []byte
	p    int
	at   int // start offset of the current window
	fp   uint64
	bp   uint64
}

// NewRollingHash builds a window over data[at:at+p] in O(p).
func NewRollingHash(data []byte, at, p int) *RollingHash {
	rh := &RollingHash{data: data, p: p, bp: bpFor(p)}
	rh.Rebuild(at)
	return rh
}

// Rebuild recomputes the fingerprint from scratch at an arbitrary offset
// in O(p). Used whenever the next desired position is not current+1.
func (rh *RollingHash) Rebuild(at int) {
	f := uint64(0)
	end := at + rh.p
	for i := at; i < end; i++ {
		f = (mulMod(f, rollingBase, rollingMod) + uint64(rh.data[i])) % rollingMod
	}
	rh.at = at
	rh.fp = f
}

// Roll advances the window by exactly one byte, replacing data[at] with
// data[at+p], in O(1).
func (rh *RollingHash) Roll() {
	out := uint64(rh.data[rh.at])
	in := uint64(rh.data[rh.at+rh.p])
	sub := mulMod(out, rh.bp, rollingMod)
	f := rh.fp
	if f < sub {
		f += rollingMod
	}
	f -= sub
	f = (mulMod(f, rollingBase, rollingMod) + in) % rollingMod
	rh.fp = f
	rh.at++
}

// Fingerprint returns the current 61-bit residue.
func (rh *RollingHash) Fingerprint() uint64 { return rh.fp }

// At returns the window's current start offset.
func (rh *RollingHash) At() int { return rh.at }

// fingerprintAt is a convenience one-shot: the fingerprint of
// data[at:at+p], computed from scratch. Used by callers (e.g. the
// checkpoint-class derivation) that need a single fingerprint without
// keeping a window alive.
func fingerprintAt(data []byte, at, p int) uint64 {
	f := uint64(0)
	end := at + p
	for i := at; i < end; i++ {
		f = (mulMod(f, rollingBase, rollingMod) + uint64(data[i])) % rollingMod
	}
	return f
}
