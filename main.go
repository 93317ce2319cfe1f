package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"gopkg.in/urfave/cli.v2"

	"tis100/engine"
	"tis100/loader"
	"tis100/tislog"
)

// outputSpec pairs a --output flag's expected values with the sink
// Grid attached to deliver them, so the run summary can compare the two
// once the run winds down (run-tis.py's expected-vs-actual printout).
type outputSpec struct {
	nodeID   int
	expected []int
	sink     *engine.Sink
}

func main() {
	flag.Parse()
	defer glog.Flush()

	app := &cli.App{
		Name:  "tis100",
		Usage: "run a TIS-100 style program grid",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "input",
				Usage: "NODE:V1,V2,... - buffer host input values onto NODE's UP port (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "output",
				Usage: "NODE:V1,V2,... - attach an observer to NODE's DOWN port and expect these values (repeatable)",
			},
			&cli.StringFlag{
				Name:  "disabled-nodes",
				Usage: "N,N,... - node ids to mark disabled",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "disassemble the loaded program and exit without running it",
			},
			&cli.IntFlag{
				Name:  "max-cycles",
				Usage: "safety valve: abort after this many scheduling cycles",
				Value: 1_000_000,
			},
		},
		Action: run,
	}

	if err := app.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("missing program file", 2)
	}

	disabled, err := parseIntList(c.String("disabled-nodes"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("--disabled-nodes: %v", err), 2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	grid := engine.NewGrid(4, 3, disabled, tislog.Glog{})
	if err := loader.Load(grid, string(data)); err != nil {
		return cli.Exit(fmt.Sprintf("load: %v", err), 2)
	}

	if c.Bool("list") {
		listProgram(grid)
		return nil
	}

	for _, spec := range c.StringSlice("input") {
		nodeID, values, err := parseNodeValues(spec)
		if err != nil {
			return cli.Exit(fmt.Sprintf("--input %q: %v", spec, err), 2)
		}
		if err := grid.BufferInput(nodeID, engine.Up, values); err != nil {
			return cli.Exit(fmt.Sprintf("--input %q: %v", spec, err), 2)
		}
	}

	var outputs []outputSpec
	for _, spec := range c.StringSlice("output") {
		nodeID, expected, err := parseNodeValues(spec)
		if err != nil {
			return cli.Exit(fmt.Sprintf("--output %q: %v", spec, err), 2)
		}
		sink, err := grid.AttachSink(nodeID, engine.Down)
		if err != nil {
			return cli.Exit(fmt.Sprintf("--output %q: %v", spec, err), 2)
		}
		outputs = append(outputs, outputSpec{nodeID: nodeID, expected: expected, sink: sink})
	}

	ok := drive(grid, outputs, c.Int("max-cycles"))
	printSummary(outputs)
	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}

// drive pumps the scheduler until every expected output has arrived and
// no buffered host input remains, the cycle stream closes, or the cycle
// ceiling is hit. Returns whether every output matched exactly.
func drive(grid *engine.Grid, outputs []outputSpec, maxCycles int) bool {
	wantTotal := 0
	for _, o := range outputs {
		wantTotal += len(o.expected)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cycles := grid.Run(ctx)

	for i := 0; i < maxCycles; i++ {
		gotTotal := 0
		for _, o := range outputs {
			gotTotal += len(o.sink.Values())
		}
		if grid.PendingInputCount() == 0 && gotTotal >= wantTotal {
			break
		}
		if _, open := <-cycles; !open {
			break
		}
	}

	for _, o := range outputs {
		if !intSliceEqual(o.expected, o.sink.Values()) {
			return false
		}
	}
	return true
}

func printSummary(outputs []outputSpec) {
	for _, o := range outputs {
		status := "OK"
		if !intSliceEqual(o.expected, o.sink.Values()) {
			status = "MISMATCH"
		}
		fmt.Printf("node %d: expected %v, got %v [%s]\n", o.nodeID, o.expected, o.sink.Values(), status)
	}
}

func listProgram(grid *engine.Grid) {
	for id := 0; id < grid.NodeCount(); id++ {
		n, _ := grid.Node(id)
		if !n.Loaded() {
			continue
		}
		fmt.Printf("@%d\n", id)
		for _, instr := range n.Instructions() {
			fmt.Printf("  %s\n", instr)
		}
	}
}

func parseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseNodeValues(spec string) (int, []int, error) {
	idx := strings.Index(spec, ":")
	if idx < 0 {
		return 0, nil, fmt.Errorf("expected NODE:V1,V2,...")
	}
	nodeID, err := strconv.Atoi(strings.TrimSpace(spec[:idx]))
	if err != nil {
		return 0, nil, fmt.Errorf("bad node id: %v", err)
	}
	values, err := parseIntList(spec[idx+1:])
	if err != nil {
		return 0, nil, err
	}
	return nodeID, values, nil
}

func intSliceEqual(a, b []int) bool {
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
