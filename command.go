package deltac

import "sort"

// CommandKind tags the two Command/PlacedCommand variants.
type CommandKind int

const (
	KindCopy CommandKind = iota
	KindAdd
)

// Command is a logical, destination-free instruction: a Copy reads from
// R, an Add carries literal bytes. Order is significant — concatenating
// every command's output in order reproduces V.
//
// Invariants: Offset+Length <= |R| for a Copy; Length > 0; Data is
// non-empty for an Add.
type Command struct {
	Kind   CommandKind
	Offset int    // Copy only
	Length int    // Copy only
	Data   []byte // Add only
}

// Len returns the number of output bytes this command contributes.
func (c Command) Len() int {
	if c.Kind == KindCopy {
		return c.Length
	}
	return len(c.Data)
}

func copyCmd(offset, length int) Command {
	return Command{Kind: KindCopy, Offset: offset, Length: length}
}

func addCmd(data []byte) Command {
	return Command{Kind: KindAdd, Data: data}
}

// PlacedCommand is a Command annotated with an explicit destination
// offset, permitting out-of-order execution.
type PlacedCommand struct {
	Kind   CommandKind
	Src    int    // PlacedCopy only
	Dst    int    // both
	Length int    // PlacedCopy only
	Data   []byte // PlacedAdd only
}

// Len returns the number of output bytes this placed command writes.
func (p PlacedCommand) Len() int {
	if p.Kind == KindCopy {
		return p.Length
	}
	return len(p.Data)
}

func placedCopy(src, dst, length int) PlacedCommand {
	return PlacedCommand{Kind: KindCopy, Src: src, Dst: dst, Length: length}
}

func placedAdd(dst int, data []byte) PlacedCommand {
	return PlacedCommand{Kind: KindAdd, Dst: dst, Data: data}
}

// Place walks a logical command list in order, assigning each a
// destination offset starting at 0 and advancing by the command's
// output length. Place and Unplace are mutual inverses on well-formed
// streams.
func Place(cmds []Command) []PlacedCommand {
	placed := make([]PlacedCommand, 0, len(cmds))
	dst := 0
	for _, c := range cmds {
		switch c.Kind {
		case KindCopy:
			placed = append(placed, placedCopy(c.Offset, dst, c.Length))
		case KindAdd:
			placed = append(placed, placedAdd(dst, c.Data))
		}
		dst += c.Len()
	}
	return placed
}

// Unplace sorts placed commands by destination offset and strips
// destinations, recovering the logical, V-order command list.
func Unplace(placed []PlacedCommand) []Command {
	sorted := make([]PlacedCommand, len(placed))
	copy(sorted, placed)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Dst < sorted[j].Dst })

	cmds := make([]Command, 0, len(sorted))
	for _, p := range sorted {
		switch p.Kind {
		case KindCopy:
			cmds = append(cmds, copyCmd(p.Src, p.Length))
		case KindAdd:
			cmds = append(cmds, addCmd(p.Data))
		}
	}
	return cmds
}
