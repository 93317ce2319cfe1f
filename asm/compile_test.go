package asm

import (
	"fmt"
	"strings"
	"testing"

	"tis100/engine"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func compileSource(t *testing.T, source string) engine.Program {
	t.Helper()
	p, err := Compile(strings.Split(source, "\n"))
	assert(t, err == nil, "failed to compile: %v", err)
	return p
}

func TestCompileSimpleMov(t *testing.T) {
	p := compileSource(t, "MOV UP, DOWN")
	assert(t, len(p.Instructions) == 1, "expected 1 instruction, got %d", len(p.Instructions))
	assert(t, p.Instructions[0].Op == engine.MOV, "expected MOV, got %s", p.Instructions[0].Op)
	assert(t, p.Instructions[0].Arg1 == "UP" && p.Instructions[0].Arg2 == "DOWN",
		"expected UP, DOWN, got %s, %s", p.Instructions[0].Arg1, p.Instructions[0].Arg2)
}

func TestCompileStripsCommentsAndBlankLines(t *testing.T) {
	p := compileSource(t, "# a full line comment\nNOP # trailing comment\n\nNOP")
	assert(t, len(p.Instructions) == 2, "expected 2 instructions, got %d", len(p.Instructions))
}

func TestCompileLabelsAndJumps(t *testing.T) {
	p := compileSource(t, "top:\n  MOV UP, ACC\n  JGZ pos\n  MOV 0, DOWN\n  JMP top\npos:\n  MOV ACC, DOWN\n  JMP top")
	assert(t, p.Labels["top"] == 0, "expected top==0, got %d", p.Labels["top"])
	assert(t, p.Labels["pos"] == 4, "expected pos==4, got %d", p.Labels["pos"])
	assert(t, len(p.Instructions) == 6, "expected 6 instructions, got %d", len(p.Instructions))
}

func TestCompileLabelSharingAnInstructionLine(t *testing.T) {
	p := compileSource(t, "loop: ADD 1\nJMP loop")
	assert(t, p.Labels["loop"] == 0, "expected loop==0, got %d", p.Labels["loop"])
	assert(t, len(p.Instructions) == 2, "expected 2 instructions, got %d", len(p.Instructions))
}

func TestCompileRejectsUnknownOpcode(t *testing.T) {
	_, err := Compile([]string{"FROB UP, DOWN"})
	assert(t, err != nil, "expected an error for an unknown opcode")
	var perr *engine.ParseError
	assert(t, asParseError(err, &perr), "expected a *engine.ParseError, got %T", err)
}

func TestCompileRejectsWrongArgCount(t *testing.T) {
	_, err := Compile([]string{"MOV UP"})
	assert(t, err != nil, "expected an error for MOV with one argument")
}

func TestCompileRejectsUndefinedJumpLabel(t *testing.T) {
	_, err := Compile([]string{"JMP nowhere"})
	assert(t, err != nil, "expected an error for a jump to an undefined label")
	var perr *engine.ParseError
	assert(t, asParseError(err, &perr), "expected a *engine.ParseError, got %T", err)
}

func asParseError(err error, target **engine.ParseError) bool {
	pe, ok := err.(*engine.ParseError)
	if ok {
		*target = pe
	}
	return ok
}
