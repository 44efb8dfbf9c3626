package deltac

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// verboseConfig matches the density of spew's default dump without
// pointer addresses, which are noise for structures that exist only for
// the duration of one planning call.
var verboseConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// dumpCheckpointOccupancy writes a one-line occupancy report for the
// Correcting differencer's checkpoint table when Options.Verbose is set.
// It never affects the differencer's returned commands.
func dumpCheckpointOccupancy(w io.Writer, t *checkpointTable, params checkpointParams) {
	occupied := 0
	for _, s := range t.slots {
		if s.occupied {
			occupied++
		}
	}
	fmt.Fprintf(w, "checkpoint table: |C|=%d |F|=%d m=%d k=%d occupied=%d (%.1f%%)\n",
		params.C, params.F, params.m, params.k, occupied, 100*float64(occupied)/float64(params.C))
}

// dumpCRWIGraph spew-dumps the adjacency list and SCC membership built
// by InPlacePlan, for --verbose troubleshooting of cycle-breaking
// decisions.
func dumpCRWIGraph(w io.Writer, adj [][]int, sccId []int) {
	fmt.Fprintln(w, "CRWI graph:")
	verboseConfig.Fprintf(w, "  adjacency: %v\n", adj)
	verboseConfig.Fprintf(w, "  scc ids:   %v\n", sccId)
}
