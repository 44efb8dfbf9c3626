package deltac

import "golang.org/x/xerrors"

// Apply runs a logical (unplaced) command list against R, producing V.
// It is a convenience wrapper over Place + ApplyPlaced used by callers
// (and tests) that never need the intermediate placed stream.
func Apply(R []byte, cmds []Command) ([]byte, error) {
	return ApplyPlaced(R, Place(cmds))
}

// ApplyPlaced executes a standard (non-in-place) placed stream: it
// allocates a fresh output buffer of the size implied by the highest
// destination offset plus length and writes each command's bytes once.
func ApplyPlaced(R []byte, placed []PlacedCommand) ([]byte, error) {
	n := 0
	for _, p := range placed {
		if end := p.Dst + p.Len(); end > n {
			n = end
		}
	}
	out := make([]byte, n)

	for _, p := range placed {
		switch p.Kind {
		case KindCopy:
			if p.Src < 0 || p.Src+p.Length > len(R) {
				return nil, xerrors.Errorf("%w: copy src range [%d:%d) exceeds reference of length %d",
					ErrInternalConsistency, p.Src, p.Src+p.Length, len(R))
			}
			if p.Dst < 0 || p.Dst+p.Length > len(out) {
				return nil, xerrors.Errorf("%w: copy dst range [%d:%d) exceeds output of length %d",
					ErrInternalConsistency, p.Dst, p.Dst+p.Length, len(out))
			}
			copy(out[p.Dst:p.Dst+p.Length], R[p.Src:p.Src+p.Length])
		case KindAdd:
			if p.Dst < 0 || p.Dst+len(p.Data) > len(out) {
				return nil, xerrors.Errorf("%w: add dst range [%d:%d) exceeds output of length %d",
					ErrInternalConsistency, p.Dst, p.Dst+len(p.Data), len(out))
			}
			copy(out[p.Dst:p.Dst+len(p.Data)], p.Data)
		}
	}
	return out, nil
}

// ApplyPlacedInPlace executes a placed stream (produced by InPlacePlan)
// against a single buffer that initially holds R, growing it to
// max(|R|, versionSize). Copies whose source and destination intervals
// overlap within that buffer behave as if the entire source range were
// read before any destination byte is written (memmove semantics); Go's
// builtin copy() already provides exactly that guarantee for overlapping
// slices of the same underlying array. The buffer may be larger than V
// during execution; the returned slice is its first versionSize bytes,
// which are V.
func ApplyPlacedInPlace(R []byte, placed []PlacedCommand, versionSize int) ([]byte, error) {
	size := len(R)
	if versionSize > size {
		size = versionSize
	}
	buf := make([]byte, size)
	copy(buf, R)

	for _, p := range placed {
		switch p.Kind {
		case KindCopy:
			if p.Src < 0 || p.Src+p.Length > len(buf) {
				return nil, xerrors.Errorf("%w: in-place copy src range [%d:%d) exceeds buffer of length %d",
					ErrInternalConsistency, p.Src, p.Src+p.Length, len(buf))
			}
			if p.Dst < 0 || p.Dst+p.Length > len(buf) {
				return nil, xerrors.Errorf("%w: in-place copy dst range [%d:%d) exceeds buffer of length %d",
					ErrInternalConsistency, p.Dst, p.Dst+p.Length, len(buf))
			}
			copy(buf[p.Dst:p.Dst+p.Length], buf[p.Src:p.Src+p.Length])
		case KindAdd:
			if p.Dst < 0 || p.Dst+len(p.Data) > len(buf) {
				return nil, xerrors.Errorf("%w: in-place add dst range [%d:%d) exceeds buffer of length %d",
					ErrInternalConsistency, p.Dst, p.Dst+len(p.Data), len(buf))
			}
			copy(buf[p.Dst:p.Dst+len(p.Data)], p.Data)
		}
	}

	if versionSize <= len(buf) {
		return buf[:versionSize], nil
	}
	return buf, nil
}
