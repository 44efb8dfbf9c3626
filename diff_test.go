package deltac

import (
	"bytes"
	"math/rand"
	"testing"
)

// differencers enumerates the three algorithms under a uniform signature so
// that test_delta.py's per-algorithm parametrization ("test_greedy",
// "test_onepass", "test_correcting") can be reused nearly verbatim as
// t.Run subtests.
var differencers = map[string]func(R, V []byte, opt Options) ([]Command, error){
	"greedy":     DiffGreedy,
	"onepass":    DiffOnePass,
	"correcting": DiffCorrecting,
}

func optWithSeed(p int) Options {
	o := DefaultOptions()
	o.SeedLen = p
	return o
}

func runRoundTrip(t *testing.T, R, V []byte, p int) {
	t.Helper()
	for name, fn := range differencers {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			cmds, err := fn(R, V, optWithSeed(p))
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			got, err := Apply(R, cmds)
			if err != nil {
				t.Fatalf("%s: Apply: %v", name, err)
			}
			if !bytes.Equal(got, V) {
				t.Fatalf("%s: round-trip mismatch: got %d bytes, want %d", name, len(got), len(V))
			}
		})
	}
}

// TestPaperExample reproduces section 2.1.1 of Ajtai et al. 2002.
func TestPaperExample(t *testing.T) {
	R := []byte("ABCDEFGHIJKLMNOP")
	V := []byte("QWIJKLMNOBCDEFGHZDEFGHIJKL")
	runRoundTrip(t, R, V, 2)
}

func TestIdenticalInputsProduceNoAdds(t *testing.T) {
	data := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog."), 10)
	for name, fn := range differencers {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			cmds, err := fn(data, data, optWithSeed(2))
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			got, err := Apply(data, cmds)
			if err != nil {
				t.Fatalf("%s: Apply: %v", name, err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("%s: round-trip mismatch", name)
			}
			for _, c := range cmds {
				if c.Kind == KindAdd {
					t.Fatalf("%s: identical inputs produced an Add command", name)
				}
			}
		})
	}
}

func TestCompletelyDifferentBytes(t *testing.T) {
	R := make([]byte, 512)
	V := make([]byte, 512)
	for i := range R {
		R[i] = byte(i % 256)
		V[i] = byte(255 - i%256)
	}
	runRoundTrip(t, R, V, 2)
}

func TestEmptyVersion(t *testing.T) {
	R := []byte("hello")
	for name, fn := range differencers {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			cmds, err := fn(R, nil, optWithSeed(2))
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if len(cmds) != 0 {
				t.Fatalf("%s: empty version produced %d commands, want 0", name, len(cmds))
			}
		})
	}
}

func TestEmptyReference(t *testing.T) {
	V := []byte("hello world")
	runRoundTrip(t, nil, V, 2)
}

func TestBinaryRoundTripThroughContainer(t *testing.T) {
	R := bytes.Repeat([]byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ"), 100)
	V := bytes.Repeat([]byte("0123EFGHIJKLMNOPQRS456ABCDEFGHIJKL789"), 100)

	for name, fn := range differencers {
		name, fn := name, fn
		t.Run(name, func(t *testing.T) {
			cmds, err := fn(R, V, optWithSeed(4))
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			placed := Place(cmds)
			hasher := DefaultHasher()
			container, err := EncodeContainer(placed, false, uint32(len(V)), hasher.Sum(R), hasher.Sum(V))
			if err != nil {
				t.Fatalf("%s: EncodeContainer: %v", name, err)
			}
			placed2, inPlace, versionSize, sh, dh, err := DecodeContainer(container)
			if err != nil {
				t.Fatalf("%s: DecodeContainer: %v", name, err)
			}
			if inPlace {
				t.Fatalf("%s: standard delta decoded as in-place", name)
			}
			if int(versionSize) != len(V) {
				t.Fatalf("%s: versionSize = %d, want %d", name, versionSize, len(V))
			}
			if !bytes.Equal(sh, hasher.Sum(R)) || !bytes.Equal(dh, hasher.Sum(V)) {
				t.Fatalf("%s: hash fields did not round-trip", name)
			}
			got, err := ApplyPlaced(R, placed2)
			if err != nil {
				t.Fatalf("%s: ApplyPlaced: %v", name, err)
			}
			if !bytes.Equal(got, V) {
				t.Fatalf("%s: binary round-trip mismatch", name)
			}
		})
	}
}

func TestBackwardExtensionAcrossBoundary(t *testing.T) {
	block := bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20)
	R := append(append([]byte("____"), block...), []byte("____")...)
	V := append(append([]byte("**"), block...), []byte("**")...)
	runRoundTrip(t, R, V, 4)
}

func TestTransposition(t *testing.T) {
	X := bytes.Repeat([]byte("FIRST_BLOCK_DATA_"), 10)
	Y := bytes.Repeat([]byte("SECOND_BLOCK_DATA"), 10)
	R := append(append([]byte(nil), X...), Y...)
	V := append(append([]byte(nil), Y...), X...)
	runRoundTrip(t, R, V, 4)
}

func TestScatteredModifications(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	R := make([]byte, 2000)
	rng.Read(R)
	V := append([]byte(nil), R...)
	for i := 0; i < 100; i++ {
		V[rng.Intn(len(V))] = byte(rng.Intn(256))
	}
	runRoundTrip(t, R, V, 4)
}

func TestCheckpointingTinyTableRoundTrip(t *testing.T) {
	R := bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20) // 320 bytes
	V := append(append(append([]byte(nil), R[:160]...), []byte("XXXXYYYY")...), R[160:]...)

	opt := DefaultOptions()
	opt.SeedLen = 16
	opt.TableSize = 7
	cmds, err := DiffCorrecting(R, V, opt)
	if err != nil {
		t.Fatalf("DiffCorrecting: %v", err)
	}
	got, err := Apply(R, cmds)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(got, V) {
		t.Fatalf("tiny table (q=7) round-trip mismatch")
	}
}

func TestCheckpointingAcrossTableSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	R := make([]byte, 2000)
	rng.Read(R)
	extra := make([]byte, 50)
	rng.Read(extra)
	V := append(append(append([]byte(nil), R[:500]...), extra...), R[500:]...)

	for _, q := range []int{7, 31, 101, 1009, 0} {
		opt := DefaultOptions()
		opt.SeedLen = 16
		opt.TableSize = q
		cmds, err := DiffCorrecting(R, V, opt)
		if err != nil {
			t.Fatalf("q=%d: DiffCorrecting: %v", q, err)
		}
		got, err := Apply(R, cmds)
		if err != nil {
			t.Fatalf("q=%d: Apply: %v", q, err)
		}
		if !bytes.Equal(got, V) {
			t.Fatalf("q=%d: round-trip mismatch", q)
		}
	}
}

func TestDiffValidatesOptions(t *testing.T) {
	bad := DefaultOptions()
	bad.SeedLen = 0
	for name, fn := range differencers {
		if _, err := fn([]byte("R"), []byte("V"), bad); err == nil {
			t.Errorf("%s: accepted SeedLen = 0", name)
		}
	}
}
