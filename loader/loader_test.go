package loader

import (
	"fmt"
	"testing"

	"tis100/engine"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestLoadInstallsEachSection(t *testing.T) {
	g := engine.NewGrid(4, 3, nil, nil)
	data := "@0\nMOV UP, DOWN\n@4\nMOV UP, ACC\nADD 1\nMOV ACC, DOWN\n"

	assert(t, Load(g, data) == nil, "load failed")

	n0, _ := g.Node(0)
	n4, _ := g.Node(4)
	assert(t, n0.Loaded(), "expected node 0 to be loaded")
	assert(t, n4.Loaded(), "expected node 4 to be loaded")
}

func TestLoadOffsetsPastDisabledNodes(t *testing.T) {
	g := engine.NewGrid(4, 3, []int{1}, nil)
	data := "@0\nNOP\n@1\nNOP\n"

	assert(t, Load(g, data) == nil, "load failed")

	n1, _ := g.Node(1)
	n2, _ := g.Node(2)
	assert(t, !n1.Loaded(), "disabled node 1 must remain unloaded")
	assert(t, n2.Loaded(), "expected the @1 section to land on node 2 after offsetting")
}

func TestLoadRejectsSectionTargetingOutOfRangeNode(t *testing.T) {
	g := engine.NewGrid(4, 3, nil, nil)
	data := "@20\nNOP\n"

	err := Load(g, data)
	assert(t, err != nil, "expected an error for an out-of-range target")
	var lerr *engine.LoaderError
	if le, ok := err.(*engine.LoaderError); ok {
		lerr = le
	}
	assert(t, lerr != nil, "expected a *engine.LoaderError, got %T", err)
}
