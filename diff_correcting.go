package deltac

import "os"

// DiffCorrecting implements the Correcting 1.5-Pass differencer with
// fingerprint checkpointing (spec.md §4.2.3–§4.2.5): two linear-expected
// passes, a memory-bounded R-index regardless of |R|, and both-direction
// match extension recovering starts that fall between checkpoint
// positions.
func DiffCorrecting(R, V []byte, opt Options) ([]Command, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	p := opt.SeedLen

	var output []Command
	if len(V) == 0 {
		return output, nil
	}

	cpParams := newCheckpointParams(R, V, p, opt.TableSize, opt.MaxTable)
	table := newCheckpointTable(cpParams.C)

	// Pass 1 (R only): checkpoint-gated, first-found, never flushed.
	if len(R) >= p {
		win := NewRollingHash(R, 0, p)
		for r := 0; r+p <= len(R); r++ {
			if r > 0 {
				win.Roll()
			}
			if slot, ok := cpParams.passes(win.Fingerprint()); ok {
				table.insert(slot, win.Fingerprint(), r)
			}
		}
	}

	if opt.Verbose {
		dumpCheckpointOccupancy(os.Stderr, table, cpParams)
	}

	bufCap := opt.BufCap
	if bufCap < 1 {
		bufCap = 256
	}
	lb := NewLookbackBuffer(bufCap, &output)
	vs := 0

	// Pass 2 (V only).
	if len(V) >= p {
		win := NewRollingHash(V, 0, p)
		vc := 0
		for {
			if win.At() != vc {
				win.Rebuild(vc)
			}
			fp := win.Fingerprint()

			matched := false
			if slot, ok := cpParams.passes(fp); ok {
				if roff, ok := table.lookup(slot, fp); ok {
					if bytesEqualCorrecting(R, V, roff, vc, p) {
						vM, rM, length := extendBothWays(R, V, roff, vc, p)
						encodeWithCorrection(lb, V, vM, rM, length, &vs)
						vc = vM + length
						matched = true
					}
				}
			}
			if !matched {
				vc++
			}

			if vc+p > len(V) {
				break
			}
		}
	}

	lb.Flush()
	if vs < len(V) {
		output = append(output, addCmd(append([]byte(nil), V[vs:]...)))
	}
	return output, nil
}

func bytesEqualCorrecting(R, V []byte, r, v, p int) bool {
	if r+p > len(R) || v+p > len(V) {
		return false
	}
	for i := 0; i < p; i++ {
		if R[r+i] != V[v+i] {
			return false
		}
	}
	return true
}

// extendBothWays extends a verified p-byte seed match forward (beyond p
// while R and V keep agreeing) and backward (before the seed, while
// bytes agree and offsets stay non-negative), recovering match starts
// that fall between checkpoint positions.
func extendBothWays(R, V []byte, r, v, p int) (vStart, rStart, length int) {
	length = p
	for r+length < len(R) && v+length < len(V) && R[r+length] == V[v+length] {
		length++
	}
	back := 0
	for r-back-1 >= 0 && v-back-1 >= 0 && R[r-back-1] == V[v-back-1] {
		back++
	}
	return v - back, r - back, length + back
}

// encodeWithCorrection implements spec.md §4.2.5: given a newly found
// match [vM, vM+length), it either extends the unencoded suffix (case
// A) or walks the lookback buffer's tail to reclaim/trim already-emitted
// entries the backward extension reached into (case B).
func encodeWithCorrection(lb *LookbackBuffer, V []byte, vM, rM, length int, vs *int) {
	matchEnd := vM + length

	if *vs <= vM {
		// Case A: match lies in the unencoded suffix.
		if vM > *vs {
			lb.Emit(*vs, vM, addCmd(append([]byte(nil), V[*vs:vM]...)))
		}
		lb.Emit(vM, matchEnd, copyCmd(rM, length))
		*vs = matchEnd
		return
	}

	// Case B: the backward extension reaches into already-emitted bytes.
	effectiveStart := *vs
	for {
		tail := lb.Tail()
		if tail == nil {
			break
		}
		if tail.dummy {
			lb.PopTail()
			continue
		}
		if vM <= tail.vStart && tail.vEnd <= matchEnd {
			lb.PopTail()
			if tail.vStart < effectiveStart {
				effectiveStart = tail.vStart
			}
			continue
		}
		if tail.vEnd > vM && tail.vStart < vM {
			lb.PopTail()
			if tail.cmd.Kind == KindAdd {
				tail.cmd.Data = append([]byte(nil), V[tail.vStart:vM]...)
				tail.vEnd = vM
				if vM < effectiveStart {
					effectiveStart = vM
				}
			}
			// Copy: do not reclaim, only trim straddling Adds; put the
			// (possibly trimmed) entry back at the tail either way.
			lb.PushTail(tail)
		}
		break
	}

	if adjusted := matchEnd - effectiveStart; adjusted > 0 {
		lb.Emit(effectiveStart, matchEnd, copyCmd(rM+(effectiveStart-vM), adjusted))
		*vs = matchEnd
	}
}
