package deltac

import "bytes"

// onePassSlot is one entry of a single-slot hash table: a fingerprint,
// the offset it was seen at, and the version tag that was current when
// it was stored. A lookup only succeeds when the stored tag equals the
// table's current tag; bumping the tag "empties" both tables without
// touching their contents (next-match flush, spec.md §4.2.2).
type onePassSlot struct {
	occupied bool
	fp       uint64
	offset   int
	tag      int
}

type onePassTable struct {
	slots []onePassSlot
	size  int
}

func newOnePassTable(size int) *onePassTable {
	return &onePassTable{slots: make([]onePassSlot, size), size: size}
}

func (t *onePassTable) index(fp uint64) int {
	return int(fp % uint64(t.size))
}

// insert applies the retain-existing policy: if the slot is occupied
// under the current tag, leave it alone; first offset per fingerprint
// wins.
func (t *onePassTable) insert(fp uint64, offset, tag int) {
	i := t.index(fp)
	s := &t.slots[i]
	if s.occupied && s.tag == tag {
		return
	}
	*s = onePassSlot{occupied: true, fp: fp, offset: offset, tag: tag}
}

// lookup returns (offset, true) only if the slot is occupied, current
// under tag, and its stored fingerprint matches.
func (t *onePassTable) lookup(fp uint64, tag int) (int, bool) {
	i := t.index(fp)
	s := t.slots[i]
	if s.occupied && s.tag == tag && s.fp == fp {
		return s.offset, true
	}
	return 0, false
}

// DiffOnePass implements the One-Pass differencer (spec.md §4.2.2): a
// single concurrent scan of R and V, O(|R|+|V|) time, O(q) space. It
// cannot recover matches that appear in a different relative order in R
// than in V (transpositions) — see diff_correcting.go for a differencer
// that can.
func DiffOnePass(R, V []byte, opt Options) ([]Command, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	p := opt.SeedLen
	minCopy := p // §9: min_copy defaults to 0, so accepted length >= max(p, min_copy) == p

	var cmds []Command
	if len(V) == 0 {
		return cmds, nil
	}

	q := opt.TableSize
	if q <= 0 {
		numRSeeds := 0
		if len(R) >= p {
			numRSeeds = len(R) - p + 1
		}
		qFloor := 31
		want := maxInt(qFloor, numRSeeds/maxInt(p, 1))
		if opt.MaxTable > 0 && want > opt.MaxTable {
			want = opt.MaxTable // OutOfBudget: clamp silently, §7
		}
		q = int(nextPrime(uint64(want)))
	}
	if q < 1 {
		q = 1
	}

	rTable := newOnePassTable(q) // holds R fingerprints
	vTable := newOnePassTable(q) // holds V fingerprints
	tag := 0

	vc, rc := 0, 0
	vs := 0

	var vwin, rwin *RollingHash
	if len(V) >= p {
		vwin = NewRollingHash(V, 0, p)
	}
	if len(R) >= p {
		rwin = NewRollingHash(R, 0, p)
	}

	flush := func(end int) {
		if end > vs {
			cmds = append(cmds, addCmd(append([]byte(nil), V[vs:end]...)))
		}
	}

	for vc+p <= len(V) {
		vFits := vc+p <= len(V)
		rFits := rc+p <= len(R)
		if !vFits {
			break
		}

		if vwin.At() != vc {
			vwin.Rebuild(vc)
		}
		vfp := vwin.Fingerprint()

		var rfp uint64
		if rFits {
			if rwin.At() != rc {
				rwin.Rebuild(rc)
			}
			rfp = rwin.Fingerprint()
			rTable.insert(rfp, rc, tag)
		}
		vTable.insert(vfp, vc, tag)

		matched := false
		var mR, mV, mLen int

		if rFits {
			if voff, ok := vTable.lookup(rfp, tag); ok {
				if ml := verifyAndExtendForward(R, V, rc, voff, p); ml >= minCopy {
					mR, mV, mLen = rc, voff, ml
					matched = true
				}
			}
		}
		if !matched {
			if roff, ok := rTable.lookup(vfp, tag); ok {
				if ml := verifyAndExtendForward(R, V, roff, vc, p); ml >= minCopy {
					mR, mV, mLen = roff, vc, ml
					matched = true
				}
			}
		}

		if matched {
			flush(mV)
			cmds = append(cmds, copyCmd(mR, mLen))
			vs = mV + mLen
			tag++
			vc = mV + mLen
			rc = mR + mLen
		} else {
			vc++
			rc++
		}
	}

	flush(len(V))
	return cmds, nil
}

// verifyAndExtendForward checks the p-byte seeds at (r, v) are
// byte-identical (the hash is only an index, never proof) and, if so,
// extends the match forward only, per the One-Pass contract.
func verifyAndExtendForward(R, V []byte, r, v, p int) int {
	if r+p > len(R) || v+p > len(V) {
		return 0
	}
	if !bytes.Equal(R[r:r+p], V[v:v+p]) {
		return 0
	}
	return extendForward(R, V, r, v, p)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
