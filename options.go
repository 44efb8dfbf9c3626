package deltac

import "golang.org/x/xerrors"

// Policy selects how the in-place planner breaks CRWI-graph cycles.
type Policy int

const (
	// PolicyLocalMin finds a cycle within the stalled SCC and demotes the
	// copy of minimum length inside it (ties broken by index).
	PolicyLocalMin Policy = iota
	// PolicyConstant demotes any remaining copy, with no search for a
	// cycle or a minimum-length victim.
	PolicyConstant
)

func (p Policy) String() string {
	switch p {
	case PolicyLocalMin:
		return "localmin"
	case PolicyConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the CLI spelling of a cycle-break policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "localmin":
		return PolicyLocalMin, nil
	case "constant":
		return PolicyConstant, nil
	default:
		return 0, xerrors.Errorf("%w: unknown policy %q", ErrBadParameter, s)
	}
}

// Options parameterizes a differencing run. It is validated once, at
// entry, before any component begins work.
type Options struct {
	// SeedLen is the Karp-Rabin seed length p. Must be >= 1.
	SeedLen int
	// TableSize is the requested one-pass/correcting hash table capacity
	// q. Zero means "auto-size" (see the per-algorithm auto-sizing rule).
	TableSize int
	// MaxTable caps the auto-sized table capacity; an auto-sized value
	// above MaxTable is clamped silently (OutOfBudget, §7).
	MaxTable int
	// BufCap is the lookback buffer capacity used by Correcting. Default
	// 256.
	BufCap int
	// Policy selects the in-place cycle-break strategy.
	Policy Policy
	// Verbose gates diagnostic dumps of internal state; never affects
	// the returned result.
	Verbose bool
}

// DefaultOptions returns an Options populated with the specification's
// defaults: p = 16, auto-sized table, MaxTable = 1<<20, BufCap = 256,
// localmin cycle-breaking.
func DefaultOptions() Options {
	return Options{
		SeedLen:   16,
		TableSize: 0,
		MaxTable:  1 << 20,
		BufCap:    256,
		Policy:    PolicyLocalMin,
		Verbose:   false,
	}
}

// Validate enforces BadParameter at entry: seed_len < 1, negative sizes,
// or a malformed policy all fail here rather than mid-algorithm.
func (o Options) Validate() error {
	if o.SeedLen < 1 {
		return xerrors.Errorf("%w: seed length %d must be >= 1", ErrBadParameter, o.SeedLen)
	}
	if o.TableSize < 0 {
		return xerrors.Errorf("%w: table size %d must be >= 0", ErrBadParameter, o.TableSize)
	}
	if o.MaxTable < 0 {
		return xerrors.Errorf("%w: max table %d must be >= 0", ErrBadParameter, o.MaxTable)
	}
	if o.BufCap < 1 {
		return xerrors.Errorf("%w: lookback buffer capacity %d must be >= 1", ErrBadParameter, o.BufCap)
	}
	if o.Policy != PolicyLocalMin && o.Policy != PolicyConstant {
		return xerrors.Errorf("%w: unknown policy %d", ErrBadParameter, int(o.Policy))
	}
	return nil
}
