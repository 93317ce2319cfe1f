// Package loader parses a program file partitioned by "@N" section
// headers and installs each section onto the grid, adjusting targets
// for disabled node ids. This is a supplementary package engine never
// imports.
package loader

import (
	"fmt"
	"strconv"
	"strings"

	"tis100/asm"
	"tis100/engine"
)

// Load compiles and installs every "@N ..." section in data onto grid.
func Load(grid *engine.Grid, data string) error {
	disabled := grid.DisabledIDs()
	offset := 0

	haveTarget := false
	targetID := 0
	var sectionLines []string

	flush := func() error {
		if !haveTarget {
			return nil
		}
		return installSection(grid, targetID, sectionLines)
	}

	for lineNo, raw := range strings.Split(data, "\n") {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "@") {
			if err := flush(); err != nil {
				return err
			}

			rawID, err := strconv.Atoi(strings.TrimSpace(trimmed[1:]))
			if err != nil {
				return &engine.LoaderError{NodeID: -1, Msg: fmt.Sprintf("line %d: malformed section header %q", lineNo+1, trimmed)}
			}

			for len(disabled) > 0 && rawID+offset >= disabled[0] {
				offset++
				disabled = disabled[1:]
			}
			targetID = rawID + offset
			haveTarget = true
			sectionLines = nil
			continue
		}

		if haveTarget {
			sectionLines = append(sectionLines, raw)
		}
	}

	return flush()
}

func installSection(grid *engine.Grid, nodeID int, lines []string) error {
	if nodeID < 0 || nodeID >= grid.NodeCount() || grid.Disabled(nodeID) {
		return &engine.LoaderError{NodeID: nodeID, Msg: "targets a disabled or out-of-range node"}
	}

	program, err := asm.Compile(lines)
	if err != nil {
		return err
	}
	return grid.LoadProgram(nodeID, program)
}
