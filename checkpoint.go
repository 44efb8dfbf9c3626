package deltac

// checkpointParams bounds the Correcting differencer's R-index to
// O(q) memory regardless of |R| (spec.md §4.2.3, "memory bound").
//
//	|C| = q,  table capacity
//	|F| = next_prime(2 * numRSeeds), or 1 if R has no seed
//	m   = ceil(|F| / |C|), checkpoint spacing
//	k   = fingerprint(V, |V|/2, p) mod |F| mod m, or 0 if V has no seed
type checkpointParams struct {
	C int
	F uint64
	m uint64
	k uint64
}

func newCheckpointParams(R, V []byte, p, requestedQ, maxTable int) checkpointParams {
	numRSeeds := 0
	if len(R) >= p {
		numRSeeds = len(R) - p + 1
	}

	qFloor := 31
	q := requestedQ
	if q <= 0 {
		want := maxInt(qFloor, (2*numRSeeds)/maxInt(p, 1))
		if maxTable > 0 && want > maxTable {
			want = maxTable // OutOfBudget: clamp silently, §7
		}
		q = int(nextPrime(uint64(want)))
	}
	if q < 1 {
		q = 1
	}

	var F uint64 = 1
	if numRSeeds > 0 {
		F = nextPrime(uint64(2 * numRSeeds))
	}

	m := (F + uint64(q) - 1) / uint64(q) // ceil(|F| / |C|)
	if m < 1 {
		m = 1
	}

	var k uint64
	if len(V) >= p {
		mid := len(V) / 2
		if mid+p > len(V) {
			mid = len(V) - p
		}
		fp := fingerprintAt(V, mid, p)
		k = (fp % F) % m
	}

	return checkpointParams{C: q, F: F, m: m, k: k}
}

// passes reports whether fp satisfies the checkpoint test and, if so,
// returns its slot index. A slot index at or past |C| (rounding in m's
// derivation can occasionally overshoot) is rejected here as a miss.
func (cp checkpointParams) passes(fp uint64) (slot int, ok bool) {
	if (fp%cp.F)%cp.m != cp.k {
		return 0, false
	}
	idx := (fp % cp.F) / cp.m
	if idx >= uint64(cp.C) {
		return 0, false
	}
	return int(idx), true
}

// checkpointSlot holds one first-found (fingerprint, offset) pair.
type checkpointSlot struct {
	occupied bool
	fp       uint64
	offset   int
}

// checkpointTable is the Correcting differencer's R-index: first-found,
// never-flushed, gated by the checkpoint test above.
type checkpointTable struct {
	slots []checkpointSlot
}

func newCheckpointTable(capacity int) *checkpointTable {
	return &checkpointTable{slots: make([]checkpointSlot, capacity)}
}

// insert stores (fp, offset) at slot if the slot is empty; first-found
// wins, matching the Python reference's tie-break.
func (t *checkpointTable) insert(slot int, fp uint64, offset int) {
	s := &t.slots[slot]
	if s.occupied {
		return
	}
	*s = checkpointSlot{occupied: true, fp: fp, offset: offset}
}

// lookup returns the stored offset for slot if it is occupied and its
// fingerprint matches fp exactly.
func (t *checkpointTable) lookup(slot int, fp uint64) (int, bool) {
	s := t.slots[slot]
	if s.occupied && s.fp == fp {
		return s.offset, true
	}
	return 0, false
}
