// Package tislog is the ambient logging seam shared by package engine
// and the host CLI. It is grounded on the
// teacher's debugOut split (vm/vm.go, vm/run.go: a *strings.Builder that
// either collects or discards debug text) generalized to an interface so
// the backend can be swapped for glog without touching call sites.
package tislog

// Logger is the minimal structured-ish logging surface this repo needs.
// Tracef is for per-instruction dispatch detail (noisy, off by default);
// Infof is for run-level milestones (grid construction, cycle ceiling
// hit, run completion).
type Logger interface {
	Tracef(format string, args ...any)
	Infof(format string, args ...any)
}

// Noop discards everything. It is the default Logger: NewNode and
// NewGrid substitute it for a nil Logger, so engine code needs no nil
// check at its call sites.
type Noop struct{}

func (Noop) Tracef(string, ...any) {}
func (Noop) Infof(string, ...any)  {}
