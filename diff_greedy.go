package deltac

import "bytes"

// DiffGreedy implements the Greedy differencer (spec.md §4.2.1):
// optimal under the simple copy/add cost measure, O(|V|*|R|) worst case,
// O(|R|) space via a chained fingerprint index.
//
// Tie-break on equal extension length: earliest offset wins, which is
// also the first offset discovered walking the chain in insertion order.
func DiffGreedy(R, V []byte, opt Options) ([]Command, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	p := opt.SeedLen

	var cmds []Command
	if len(V) == 0 {
		return cmds, nil
	}
	if len(R) < p || len(V) < p {
		return []Command{addCmd(append([]byte(nil), V...))}, nil
	}

	// Chained index: fingerprint -> ordered list of R offsets. Built once
	// up front since Greedy never revisits R.
	index := make(map[uint64][]int, len(R)-p+1)
	win := NewRollingHash(R, 0, p)
	index[win.Fingerprint()] = append(index[win.Fingerprint()], 0)
	for r := 1; r+p <= len(R); r++ {
		win.Roll()
		fp := win.Fingerprint()
		index[fp] = append(index[fp], r)
	}

	vc := 0  // current scan position in V
	vs := 0  // first unflushed byte of V
	vwin := NewRollingHash(V, 0, p)
	vwinAt := 0

	flush := func(end int) {
		if end > vs {
			cmds = append(cmds, addCmd(append([]byte(nil), V[vs:end]...)))
		}
	}

	for vc+p <= len(V) {
		if vwinAt != vc {
			vwin.Rebuild(vc)
			vwinAt = vc
		}
		fp := vwin.Fingerprint()

		bestLen := 0
		bestOff := -1
		for _, r := range index[fp] {
			if !bytes.Equal(R[r:r+p], V[vc:vc+p]) {
				continue
			}
			length := extendForward(R, V, r, vc, p)
			if length > bestLen {
				bestLen = length
				bestOff = r
			}
		}

		if bestLen >= p {
			flush(vc)
			cmds = append(cmds, copyCmd(bestOff, bestLen))
			vs = vc + bestLen
			vc += bestLen
		} else {
			vc++
		}
	}

	flush(len(V))
	return cmds, nil
}

// extendForward returns how far R[r:] and V[v:] agree, starting from the
// known-equal p-byte seed.
func extendForward(R, V []byte, r, v, p int) int {
	length := p
	for r+length < len(R) && v+length < len(V) && R[r+length] == V[v+length] {
		length++
	}
	return length
}
