// Package asm compiles TIS-100 assembly source text into an
// engine.Program. It is a supplementary package: engine never imports
// it, but a runnable host needs one, so this is built as a two-pass
// preprocess/parse, matching the grammar a tis100 assembly compiler
// actually implements.
package asm

import (
	"fmt"
	"regexp"
	"strings"

	"tis100/engine"
)

var commentPattern = regexp.MustCompile(`#.*$`)

// opLinePattern matches an opcode name followed by zero, one, or two
// comma-and/or-space-separated argument tokens.
var opLinePattern = regexp.MustCompile(`^([A-Z]+)(?:\s+([0-9A-Za-z_+-]+)(?:\s*,?\s*([0-9A-Za-z_+-]+))?)?$`)

// Compile turns assembly source lines into a Program. It runs two
// passes: the first strips comments, records label positions, and
// produces one raw instruction line per emitted instruction; the second
// parses each raw line's opcode and operands.
func Compile(lines []string) (engine.Program, error) {
	rawLines, labels, err := preprocess(lines)
	if err != nil {
		return engine.Program{}, err
	}

	instructions := make([]engine.Instruction, 0, len(rawLines))
	for i, raw := range rawLines {
		instr, err := parseLine(raw)
		if err != nil {
			return engine.Program{}, &engine.ParseError{Line: i + 1, Msg: err.Error()}
		}
		instructions = append(instructions, instr)
	}

	for label, idx := range labels {
		if idx > len(instructions) {
			return engine.Program{}, &engine.ParseError{Line: idx, Msg: "label \"" + label + "\" points past end of program"}
		}
	}

	for i, instr := range instructions {
		if instr.Op.IsJump() {
			if _, ok := labels[instr.Arg1]; !ok {
				return engine.Program{}, &engine.ParseError{Line: i + 1, Msg: "undefined label \"" + instr.Arg1 + "\""}
			}
		}
	}

	return engine.Program{Instructions: instructions, Labels: labels}, nil
}

// preprocess strips comments and blank lines, records label→index
// positions (a label's target is the index of the next emitted
// instruction), and returns one raw line per instruction still needing
// operand parsing.
func preprocess(lines []string) ([]string, map[string]int, error) {
	labels := make(map[string]int)
	raw := make([]string, 0, len(lines))

	for lineNo, line := range lines {
		line = commentPattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if idx := strings.Index(line, ":"); idx >= 0 {
			label := strings.TrimSpace(line[:idx])
			if label == "" {
				return nil, nil, &engine.ParseError{Line: lineNo + 1, Msg: "empty label"}
			}
			labels[label] = len(raw)

			rest := strings.TrimSpace(line[idx+1:])
			if rest == "" {
				continue
			}
			line = rest
		}

		raw = append(raw, line)
	}

	return raw, labels, nil
}

// parseLine converts one "OPCODE arg1, arg2" line into an
// engine.Instruction, validating the opcode's expected argument count.
func parseLine(line string) (engine.Instruction, error) {
	m := opLinePattern.FindStringSubmatch(line)
	if m == nil {
		return engine.Instruction{}, fmt.Errorf("malformed instruction: %q", line)
	}

	op, ok := engine.LookupOpcode(m[1])
	if !ok {
		return engine.Instruction{}, fmt.Errorf("unknown opcode: %s", m[1])
	}

	arg1, arg2 := m[2], m[3]
	n := 0
	if arg1 != "" {
		n++
	}
	if arg2 != "" {
		n++
	}
	if err := op.ValidateArgCount(n); err != nil {
		return engine.Instruction{}, err
	}

	return engine.Instruction{Op: op, Arg1: arg1, Arg2: arg2}, nil
}
