package deltac

import (
	"container/heap"
	"os"
	"sort"
)

// copyInfo is one copy command's annotated geometry; its slice index
// doubles as its CRWI-graph vertex id.
type copyInfo struct {
	src, dst, length int
}

// InPlacePlan converts a logical command list into a placed stream that
// can be executed in a single buffer initially holding R (spec.md §4.3):
// it builds the Copy-Read/Write-Intersect digraph, topologically sorts
// it with a deterministic priority (shortest copy first, ties by
// index), and breaks any cycle by demoting the offending copy to a
// literal Add under the requested Policy.
func InPlacePlan(R []byte, cmds []Command, opt Options) []PlacedCommand {
	policy := opt.Policy
	placedAll := Place(cmds)

	var copies []copyInfo
	var literalAdds []PlacedCommand

	for _, pc := range placedAll {
		switch pc.Kind {
		case KindCopy:
			copies = append(copies, copyInfo{src: pc.Src, dst: pc.Dst, length: pc.Length})
		case KindAdd:
			literalAdds = append(literalAdds, pc)
		}
	}

	n := len(copies)
	if n == 0 {
		return literalAdds
	}

	adj := buildCRWIGraph(copies)
	sccId := tarjanSCC(adj, n)
	sccMembers := make(map[int][]int)
	for v, id := range sccId {
		sccMembers[id] = append(sccMembers[id], v)
	}
	nonTrivialSCC := make(map[int]bool)
	for id, members := range sccMembers {
		if len(members) > 1 {
			nonTrivialSCC[id] = true
		}
	}

	if opt.Verbose {
		dumpCRWIGraph(os.Stderr, adj, sccId)
	}

	pl := &planner{
		R:          R,
		copies:     copies,
		adj:        adj,
		sccId:      sccId,
		sccMembers: sccMembers,
		color:      make([]int, n),
		scanPos:    make(map[int]int),
		removed:    make([]bool, n),
		scheduled:  make([]bool, n),
	}

	indegree := make([]int, n)
	for _, outs := range adj {
		for _, j := range outs {
			indegree[j]++
		}
	}

	pq := &copyPQ{}
	heap.Init(pq)
	for v := 0; v < n; v++ {
		if indegree[v] == 0 {
			heap.Push(pq, pqItem{length: copies[v].length, vertex: v})
		}
	}

	var topoOrder []int
	var demotedAdds []PlacedCommand
	done := 0

	for done < n {
		if pq.Len() == 0 {
			// Kahn stalled: the remaining vertices lie in one or more
			// non-trivial SCCs. Pick a victim per policy and demote it.
			victim, ok := pl.pickVictim(policy, nonTrivialSCC)
			if !ok {
				break // nothing left to demote; defensive, should not happen
			}
			pl.removed[victim] = true
			done++
			ci := copies[victim]
			data := append([]byte(nil), R[ci.src:ci.src+ci.length]...)
			demotedAdds = append(demotedAdds, placedAdd(ci.dst, data))
			for _, j := range adj[victim] {
				if pl.removed[j] || pl.scheduled[j] {
					continue
				}
				indegree[j]--
				if indegree[j] == 0 {
					heap.Push(pq, pqItem{length: copies[j].length, vertex: j})
				}
			}
			continue
		}

		item := heap.Pop(pq).(pqItem)
		v := item.vertex
		if pl.removed[v] || pl.scheduled[v] {
			continue
		}
		pl.scheduled[v] = true
		topoOrder = append(topoOrder, v)
		done++
		for _, j := range adj[v] {
			if pl.removed[j] || pl.scheduled[j] {
				continue
			}
			indegree[j]--
			if indegree[j] == 0 {
				heap.Push(pq, pqItem{length: copies[j].length, vertex: j})
			}
		}
	}

	out := make([]PlacedCommand, 0, len(topoOrder)+len(literalAdds)+len(demotedAdds))
	for _, v := range topoOrder {
		ci := copies[v]
		out = append(out, placedCopy(ci.src, ci.dst, ci.length))
	}
	out = append(out, literalAdds...)
	out = append(out, demotedAdds...)
	return out
}

// buildCRWIGraph builds i -> j edges for every copy j whose destination
// interval intersects copy i's source interval (i != j), in O(n log n +
// E): copies are sorted by destination, then each copy's source
// interval is resolved against that sorted order by binary search.
func buildCRWIGraph(copies []copyInfo) [][]int {
	n := len(copies)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return copies[order[a]].dst < copies[order[b]].dst })

	writeStarts := make([]int, n)
	for k, idx := range order {
		writeStarts[k] = copies[idx].dst
	}

	adj := make([][]int, n)
	for i, ci := range copies {
		srcStart, srcEnd := ci.src, ci.src+ci.length

		lo := sort.SearchInts(writeStarts, srcStart)
		hi := sort.SearchInts(writeStarts, srcEnd)

		for k := lo; k < hi; k++ {
			j := order[k]
			if j != i {
				adj[i] = append(adj[i], j)
			}
		}
		if lo > 0 {
			k := lo - 1
			j := order[k]
			writeEnd := copies[j].dst + copies[j].length
			if writeEnd > srcStart && j != i {
				adj[i] = append(adj[i], j)
			}
		}
	}
	return adj
}

// tarjanSCC computes strongly connected components iteratively, per
// vertex index, returning each vertex's component id.
func tarjanSCC(adj [][]int, n int) []int {
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	visited := make([]bool, n)
	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}
	var stack []int
	var callStack []tarjanFrame
	nextIndex := 0
	nextComp := 0

	for s := 0; s < n; s++ {
		if visited[s] {
			continue
		}
		callStack = append(callStack, tarjanFrame{v: s, i: 0})
		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]
			v := top.v
			if !visited[v] {
				visited[v] = true
				index[v] = nextIndex
				low[v] = nextIndex
				nextIndex++
				stack = append(stack, v)
				onStack[v] = true
			}

			recursed := false
			for top.i < len(adj[v]) {
				w := adj[v][top.i]
				top.i++
				if !visited[w] {
					callStack = append(callStack, tarjanFrame{v: w, i: 0})
					recursed = true
					break
				} else if onStack[w] {
					if index[w] < low[v] {
						low[v] = index[w]
					}
				}
			}
			if recursed {
				continue
			}

			if low[v] == index[v] {
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp[w] = nextComp
					if w == v {
						break
					}
				}
				nextComp++
			}

			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if low[v] < low[parent.v] {
					low[parent.v] = low[v]
				}
			}
		}
	}
	return comp
}

type tarjanFrame struct {
	v, i int
}

// planner holds the mutable cycle-breaking state for one InPlacePlan
// call: removal flags, SCC membership, and DFS colors/scan positions
// that persist across repeated cycle-break invocations within the same
// call (removal can only shrink the reachable set, so a vertex marked
// fully explored stays valid).
type planner struct {
	R          []byte
	copies     []copyInfo
	adj        [][]int
	sccId      []int
	sccMembers map[int][]int
	color      []int // 0 untouched, 1 on path, 2 fully explored
	scanPos    map[int]int
	removed    []bool
	scheduled  []bool
	path       []int
}

func (pl *planner) remainingIn(scc int) int {
	n := 0
	for _, v := range pl.sccMembers[scc] {
		if !pl.removed[v] && !pl.scheduled[v] {
			n++
		}
	}
	return n
}

// pickVictim selects the next vertex to demote to a literal Add.
func (pl *planner) pickVictim(policy Policy, nonTrivial map[int]bool) (int, bool) {
	if policy == PolicyConstant {
		best := -1
		for v := range pl.copies {
			if pl.removed[v] || pl.scheduled[v] {
				continue
			}
			if best == -1 || v < best {
				best = v
			}
		}
		if best == -1 {
			return 0, false
		}
		return best, true
	}

	sccIDs := make([]int, 0, len(nonTrivial))
	for id := range nonTrivial {
		sccIDs = append(sccIDs, id)
	}
	sort.Ints(sccIDs)

	for _, id := range sccIDs {
		if pl.remainingIn(id) < 2 {
			continue
		}
		if cyc := pl.findCycle(id); cyc != nil {
			return pl.minLengthInCycle(cyc), true
		}
	}
	// Fallback: no cycle found via the scoped search (should not happen
	// for a genuine stall) — demote the lowest-index remaining vertex.
	for v := range pl.copies {
		if !pl.removed[v] && !pl.scheduled[v] {
			return v, true
		}
	}
	return 0, false
}

func (pl *planner) minLengthInCycle(cyc []int) int {
	best := cyc[0]
	for _, v := range cyc[1:] {
		if pl.copies[v].length < pl.copies[best].length ||
			(pl.copies[v].length == pl.copies[best].length && v < best) {
			best = v
		}
	}
	return best
}

// findCycle resumes a scoped DFS within sccID from the last start
// position, restricted to vertices sharing that SCC id which are not
// yet removed or scheduled. DFS colors persist across calls within the
// same SCC: a vertex fully explored (color 2) without hitting a cycle
// stays valid forever, since removing vertices can only shrink the
// reachable set and never create a new cycle through it. Only the
// vertices left on the abandoned path when a cycle is found (color 1,
// never reaching the backtrack/finalize step because the hit unwinds
// early) are reset to unvisited, so they're re-explored against the
// post-demotion graph next call.
func (pl *planner) findCycle(sccID int) []int {
	members := pl.sccMembers[sccID]

	start := pl.scanPos[sccID]
	for idx := start; idx < len(members); idx++ {
		v := members[idx]
		if pl.removed[v] || pl.scheduled[v] || pl.color[v] == 2 {
			continue
		}
		if pl.color[v] == 1 {
			pl.color[v] = 0
		}
		pl.path = pl.path[:0]
		if cyc := pl.dfs(v, sccID); cyc != nil {
			pl.scanPos[sccID] = idx
			for _, p := range pl.path {
				pl.color[p] = 0
			}
			return cyc
		}
		pl.scanPos[sccID] = idx + 1
	}
	return nil
}

func (pl *planner) dfs(v int, sccID int) []int {
	pl.color[v] = 1
	pl.path = append(pl.path, v)
	for _, w := range pl.adj[v] {
		if pl.sccId[w] != sccID || pl.removed[w] || pl.scheduled[w] {
			continue
		}
		if pl.color[w] == 1 {
			pos := -1
			for i, x := range pl.path {
				if x == w {
					pos = i
					break
				}
			}
			if pos >= 0 {
				cyc := append([]int(nil), pl.path[pos:]...)
				return cyc
			}
			continue
		}
		if pl.color[w] == 0 {
			if cyc := pl.dfs(w, sccID); cyc != nil {
				return cyc
			}
		}
	}
	pl.path = pl.path[:len(pl.path)-1]
	pl.color[v] = 2
	return nil
}

// pqItem is a Kahn-ready vertex keyed by (length, vertex) ascending.
type pqItem struct {
	length, vertex int
}

type copyPQ []pqItem

func (q copyPQ) Len() int { return len(q) }
func (q copyPQ) Less(i, j int) bool {
	if q[i].length != q[j].length {
		return q[i].length < q[j].length
	}
	return q[i].vertex < q[j].vertex
}
func (q copyPQ) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *copyPQ) Push(x interface{}) {
	*q = append(*q, x.(pqItem))
}
func (q *copyPQ) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
