// Command deltac is the command-line surface over package deltac: four
// subcommands (encode, decode, info, inplace) wrapping the core
// differencing/planning/codec/applier library with argument parsing and
// file I/O — both explicitly out of scope for the library itself.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pborman/options"
	"golang.org/x/xerrors"

	"github.com/longburns/deltac"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "inplace":
		err = runInPlace(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "deltac:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: deltac <encode|decode|info|inplace> ...")
}

// verbosef writes a diagnostic line to stderr only when verbose is set
// and stderr is a real terminal — redirected output (logs, pipes) gets
// the plain result without progress chatter, the same tty-awareness the
// hash-calculator CLI this tool descends from relies on.
func verbosef(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// encodeFlags are registered with github.com/pborman/options: each
// exported field becomes a flag named after its `option` tag, defaulted
// to the value the field holds when it is registered (set in runEncode).
type encodeFlags struct {
	SeedLen   int    `option:"seed-len" description:"Karp-Rabin seed length p"`
	TableSize int    `option:"table-size" description:"hash table capacity q (0 = auto)"`
	MaxTable  int    `option:"max-table" description:"clamp for auto-sized tables"`
	InPlace   bool   `option:"inplace" description:"produce an in-place delta"`
	Policy    string `option:"policy" description:"in-place cycle-break policy: localmin|constant"`
	Verbose   bool   `option:"verbose" description:"print diagnostic information"`
}

func runEncode(args []string) error {
	if len(args) < 4 {
		return xerrors.Errorf("usage: deltac encode <greedy|onepass|correcting> <ref> <ver> <delta>")
	}
	algo, refPath, verPath, deltaPath := args[0], args[1], args[2], args[3]

	flags := encodeFlags{SeedLen: 16, MaxTable: 1 << 20, Policy: "localmin"}
	options.Register(&flags)
	options.Parse()

	policy, err := deltac.ParsePolicy(flags.Policy)
	if err != nil {
		return err
	}
	opt := deltac.Options{
		SeedLen:   flags.SeedLen,
		TableSize: flags.TableSize,
		MaxTable:  flags.MaxTable,
		BufCap:    256,
		Policy:    policy,
		Verbose:   flags.Verbose,
	}
	if err := opt.Validate(); err != nil {
		return err
	}

	R, err := os.ReadFile(refPath)
	if err != nil {
		return xerrors.Errorf("reading reference: %w", err)
	}
	V, err := os.ReadFile(verPath)
	if err != nil {
		return xerrors.Errorf("reading version: %w", err)
	}

	var cmds []deltac.Command
	switch algo {
	case "greedy":
		cmds, err = deltac.DiffGreedy(R, V, opt)
	case "onepass":
		cmds, err = deltac.DiffOnePass(R, V, opt)
	case "correcting":
		cmds, err = deltac.DiffCorrecting(R, V, opt)
	default:
		return xerrors.Errorf("%w: unknown algorithm %q", deltac.ErrBadParameter, algo)
	}
	if err != nil {
		return err
	}
	verbosef(opt.Verbose, "deltac: %d logical commands from %s\n", len(cmds), algo)

	var placed []deltac.PlacedCommand
	if flags.InPlace {
		placed = deltac.InPlacePlan(R, cmds, opt)
	} else {
		placed = deltac.Place(cmds)
	}

	hasher := deltac.DefaultHasher()
	container, err := deltac.EncodeContainer(placed, flags.InPlace, uint32(len(V)), hasher.Sum(R), hasher.Sum(V))
	if err != nil {
		return err
	}

	if err := os.WriteFile(deltaPath, container, 0o644); err != nil {
		return xerrors.Errorf("writing delta: %w", err)
	}
	verbosef(opt.Verbose, "deltac: wrote %d bytes (%.1f%% of version size)\n",
		len(container), 100*float64(len(container))/float64(maxInt(len(V), 1)))
	return nil
}

type decodeFlags struct {
	IgnoreHash bool `option:"ignore-hash" description:"downgrade hash mismatches to a warning"`
}

func runDecode(args []string) error {
	if len(args) < 3 {
		return xerrors.Errorf("usage: deltac decode <ref> <delta> <out>")
	}
	refPath, deltaPath, outPath := args[0], args[1], args[2]

	flags := decodeFlags{}
	options.Register(&flags)
	options.Parse()

	R, err := os.ReadFile(refPath)
	if err != nil {
		return xerrors.Errorf("reading reference: %w", err)
	}
	container, err := os.ReadFile(deltaPath)
	if err != nil {
		return xerrors.Errorf("reading delta: %w", err)
	}

	placed, inPlace, versionSize, srcHash, dstHash, err := deltac.DecodeContainer(container)
	if err != nil {
		return err
	}

	hasher := deltac.DefaultHasher()
	if sum := hasher.Sum(R); !bytesEqualExported(sum, srcHash) {
		if !flags.IgnoreHash {
			return deltac.ErrHashMismatch
		}
		fmt.Fprintln(os.Stderr, "deltac: warning: source hash mismatch (--ignore-hash set)")
	}

	var out []byte
	if inPlace {
		out, err = deltac.ApplyPlacedInPlace(R, placed, int(versionSize))
	} else {
		out, err = deltac.ApplyPlaced(R, placed)
	}
	if err != nil {
		return err
	}
	if uint32(len(out)) != versionSize {
		out = truncateOrPad(out, int(versionSize))
	}

	if sum := hasher.Sum(out); !bytesEqualExported(sum, dstHash) {
		if !flags.IgnoreHash {
			return deltac.ErrHashMismatch
		}
		fmt.Fprintln(os.Stderr, "deltac: warning: destination hash mismatch (--ignore-hash set)")
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return xerrors.Errorf("writing output: %w", err)
	}
	return nil
}

func truncateOrPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[:n]
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func bytesEqualExported(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type infoFlags struct {
	CBOR bool `option:"cbor" description:"also emit a CBOR-encoded summary and its CID"`
}

func runInfo(args []string) error {
	if len(args) < 1 {
		return xerrors.Errorf("usage: deltac info <delta>")
	}
	deltaPath := args[0]

	flags := infoFlags{}
	options.Register(&flags)
	options.Parse()

	container, err := os.ReadFile(deltaPath)
	if err != nil {
		return xerrors.Errorf("reading delta: %w", err)
	}

	placed, inPlace, versionSize, srcHash, dstHash, err := deltac.DecodeContainer(container)
	if err != nil {
		return err
	}

	var copies, adds int
	var addBytes int
	for _, p := range placed {
		switch p.Kind {
		case deltac.KindCopy:
			copies++
		case deltac.KindAdd:
			adds++
			addBytes += len(p.Data)
		}
	}

	fmt.Printf("magic:          %s\n", string(deltac.Magic[:3]))
	fmt.Printf("in-place:       %v\n", inPlace)
	fmt.Printf("version size:   %d\n", versionSize)
	fmt.Printf("src hash:       %x\n", srcHash)
	fmt.Printf("dst hash:       %x\n", dstHash)
	fmt.Printf("copy commands:  %d\n", copies)
	fmt.Printf("add commands:   %d (%d literal bytes)\n", adds, addBytes)
	if versionSize > 0 {
		fmt.Printf("payload ratio:  %.3f (container bytes / version size)\n",
			float64(len(container))/float64(versionSize))
	}

	cid, err := contentCID(container)
	if err != nil {
		return err
	}
	fmt.Printf("content cid:    %s\n", cid)

	if flags.CBOR {
		summary := deltaSummary{
			InPlace:       inPlace,
			VersionSize:   versionSize,
			CopyCommands:  copies,
			AddCommands:   adds,
			AddBytes:      addBytes,
			PayloadBytes:  len(container),
		}
		node, err := cborSummaryNode(summary)
		if err != nil {
			return err
		}
		fmt.Printf("cbor summary cid: %s\n", node.Cid())
	}
	return nil
}

type inplaceFlags struct {
	Policy string `option:"policy" description:"in-place cycle-break policy: localmin|constant"`
}

func runInPlace(args []string) error {
	if len(args) < 3 {
		return xerrors.Errorf("usage: deltac inplace <ref> <delta_in> <delta_out>")
	}
	refPath, inPath, outPath := args[0], args[1], args[2]

	flags := inplaceFlags{Policy: "localmin"}
	options.Register(&flags)
	options.Parse()

	policy, err := deltac.ParsePolicy(flags.Policy)
	if err != nil {
		return err
	}

	R, err := os.ReadFile(refPath)
	if err != nil {
		return xerrors.Errorf("reading reference: %w", err)
	}
	container, err := os.ReadFile(inPath)
	if err != nil {
		return xerrors.Errorf("reading delta: %w", err)
	}

	placed, wasInPlace, versionSize, srcHash, dstHash, err := deltac.DecodeContainer(container)
	if err != nil {
		return err
	}
	if wasInPlace {
		return xerrors.Errorf("%w: input delta is already in-place", deltac.ErrBadParameter)
	}

	cmds := deltac.Unplace(placed)
	newPlaced := deltac.InPlacePlan(R, cmds, deltac.Options{Policy: policy, SeedLen: 16, MaxTable: 1 << 20, BufCap: 256})

	out, err := deltac.EncodeContainer(newPlaced, true, versionSize, srcHash, dstHash)
	if err != nil {
		return err
	}
	if err := writeFile(outPath, out); err != nil {
		return err
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Errorf("writing delta: %w", err)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
