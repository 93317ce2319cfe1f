package engine

import (
	"context"
	"fmt"
	"sort"

	"tis100/tislog"
)

// Grid is the scheduler: it owns every Node and Sink, wires their
// neighbor relationships, injects buffered host input, and advances
// loaded nodes one suspension point at a time. Grid is the sole
// PortFabric implementation used outside of tests.
type Grid struct {
	width, height int

	nodes     []*Node
	neighbors [][4]int
	disabled  map[int]bool

	sinks      map[int]*Sink
	nextSinkID int

	pending      map[int]map[Direction][]int
	pendingCount int

	log tislog.Logger
}

// NewGrid builds a W×H grid of empty nodes, wiring orthogonal neighbors:
// each cell is attached to its upper and left peer, with right/down
// following from the bidirectional attach. disabledIDs mark positions
// that exist but are neither addressable nor wired to their neighbors.
func NewGrid(width, height int, disabledIDs []int, log tislog.Logger) *Grid {
	if log == nil {
		log = tislog.Noop{}
	}

	count := width * height
	g := &Grid{
		width:      width,
		height:     height,
		nodes:      make([]*Node, count),
		neighbors:  make([][4]int, count),
		disabled:   make(map[int]bool, len(disabledIDs)),
		sinks:      make(map[int]*Sink),
		nextSinkID: count,
		pending:    make(map[int]map[Direction][]int),
		log:        log,
	}

	for _, id := range disabledIDs {
		g.disabled[id] = true
	}
	for i := range g.neighbors {
		g.neighbors[i] = [4]int{-1, -1, -1, -1}
	}
	for id := 0; id < count; id++ {
		g.nodes[id] = NewNode(id, log)
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			id := row*width + col
			if col > 0 {
				g.attach(id, id-1, Left)
			}
			if row > 0 {
				g.attach(id, id-width, Up)
			}
		}
	}
	return g
}

// attach binds a's dir neighbor to b and, symmetrically, b's opposite
// neighbor to a. Disabled positions are never wired, not to their
// active neighbors and not to each other, so they behave like a
// missing edge on every side.
func (g *Grid) attach(a, b int, dir Direction) {
	if g.disabled[a] || g.disabled[b] {
		return
	}
	g.neighbors[a][dir] = b
	g.neighbors[b][dir.Opposite()] = a
}

// Width and Height report the grid's fixed dimensions.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// NodeCount returns the total number of grid positions, including
// disabled ones.
func (g *Grid) NodeCount() int { return len(g.nodes) }

// Disabled reports whether id names a disabled grid position.
func (g *Grid) Disabled(id int) bool { return g.disabled[id] }

// DisabledIDs returns every disabled node id in ascending order, the
// form a loader's offsetting walk needs.
func (g *Grid) DisabledIDs() []int {
	ids := make([]int, 0, len(g.disabled))
	for id := range g.disabled {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Node returns the node at id, or ok=false if id is out of range.
// Disabled positions still return a valid, perpetually-unloaded Node so
// the host can inspect them.
func (g *Grid) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// LoadProgram installs a compiled program onto node id. It refuses
// disabled or out-of-range ids; a loader is expected to have already
// applied disabled-id offsetting before calling this.
func (g *Grid) LoadProgram(id int, p Program) error {
	if id < 0 || id >= len(g.nodes) || g.disabled[id] {
		return fmt.Errorf("%w: node %d", ErrNodeDisabled, id)
	}
	g.nodes[id].LoadProgram(p)
	return nil
}

// AttachSink wires a new observer sink unidirectionally onto nodeID's
// dir output: the node gains a neighbor there, but the sink never
// looks back.
func (g *Grid) AttachSink(nodeID int, dir Direction) (*Sink, error) {
	if nodeID < 0 || nodeID >= len(g.nodes) || g.disabled[nodeID] {
		return nil, fmt.Errorf("%w: node %d", ErrNodeDisabled, nodeID)
	}
	s := NewSink(g.nextSinkID)
	g.nextSinkID++
	g.sinks[s.id] = s
	g.neighbors[nodeID][dir] = s.id
	return s, nil
}

// BufferInput queues values to be delivered, one per cycle at most, into
// nodeID's dir input queue whenever that node is suspended in READ.
func (g *Grid) BufferInput(nodeID int, dir Direction, values []int) error {
	if nodeID < 0 || nodeID >= len(g.nodes) || g.disabled[nodeID] {
		return fmt.Errorf("%w: node %d", ErrNodeDisabled, nodeID)
	}
	if len(values) == 0 {
		return nil
	}
	if g.pending[nodeID] == nil {
		g.pending[nodeID] = make(map[Direction][]int)
	}
	g.pending[nodeID][dir] = append(g.pending[nodeID][dir], values...)
	g.pendingCount += len(values)
	return nil
}

// PendingInputCount returns the number of buffered host values not yet
// delivered to any node, so a host has a concrete, queryable quantity to
// terminate on.
func (g *Grid) PendingInputCount() int { return g.pendingCount }

// Run starts the scheduler and streams an increasing cycle counter,
// closing the channel when ctx is canceled or when a node halts with an
// error (its Err reports the cause). Each cycle advances every
// loaded node by exactly one suspension point, in stable row-major
// order, after first attempting one buffered-input injection per node.
func (g *Grid) Run(ctx context.Context) <-chan int {
	loaded := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Loaded() {
			loaded = append(loaded, n)
		}
	}
	g.log.Infof("grid: starting run with %d loaded node(s)", len(loaded))

	out := make(chan int)
	go func() {
		defer close(out)
		cycle := 0
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			cycle++
			for _, n := range loaded {
				g.injectBuffered(n)
				n.Step(g)
				if err := n.Err(); err != nil {
					g.log.Infof("grid: node %d aborted the run: %v", n.ID(), err)
					return
				}
			}

			select {
			case out <- cycle:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// injectBuffered delivers at most one buffered value into n: a node
// receives at most one host-originated value per cycle, regardless of
// how many directions have something queued.
func (g *Grid) injectBuffered(n *Node) {
	if n.Mode() != Read {
		return
	}
	queues := g.pending[n.id]
	if queues == nil {
		return
	}
	for _, d := range directionOrder {
		q := queues[d]
		if len(q) == 0 || n.hasInput(d) {
			continue
		}
		n.pushInput(d, q[0])
		queues[d] = q[1:]
		g.pendingCount--
		return
	}
}

// Neighbor, HasInput, PushInput, and PopInput implement PortFabric. A
// nodeID past the grid's own node range addresses a Sink instead, which
// auto-drains (HasInput always false; PushInput records and never
// leaves a value queued) and is never the target of PopInput.
func (g *Grid) Neighbor(nodeID int, dir Direction) (int, bool) {
	peer := g.neighbors[nodeID][dir]
	if peer < 0 {
		return 0, false
	}
	return peer, true
}

func (g *Grid) HasInput(nodeID int, dir Direction) bool {
	if _, ok := g.sinks[nodeID]; ok {
		return false
	}
	return g.nodes[nodeID].hasInput(dir)
}

func (g *Grid) PushInput(nodeID int, dir Direction, v int) {
	if s, ok := g.sinks[nodeID]; ok {
		s.record(v)
		return
	}
	g.nodes[nodeID].pushInput(dir, v)
}

func (g *Grid) PopInput(nodeID int, dir Direction) int {
	return g.nodes[nodeID].popInput(dir)
}
