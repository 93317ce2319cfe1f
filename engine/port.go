package engine

// PortFabric is the indirection layer a Node's instruction evaluation
// goes through to reach its own input queue and its neighbors'. Grid is
// the only production implementation; tests satisfy it with a fake to
// exercise Node in isolation without building a full grid.
type PortFabric interface {
	// Neighbor returns the id of the entity attached to nodeID's dir side,
	// or ok=false if that side is unconnected (grid edge).
	Neighbor(nodeID int, dir Direction) (peerID int, ok bool)

	// HasInput reports whether the addressed entity's queue on dir
	// currently holds an unconsumed value.
	HasInput(nodeID int, dir Direction) bool

	// PushInput appends a value to the addressed entity's queue on dir.
	PushInput(nodeID int, dir Direction, v int)

	// PopInput removes and returns the front of the addressed entity's
	// queue on dir. Callers must confirm HasInput first.
	PopInput(nodeID int, dir Direction) int
}
