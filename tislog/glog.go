package tislog

import "github.com/golang/glog"

// Glog routes Logger calls through github.com/golang/glog, the way
// jyane-jnes wires its own verbose diagnostics (glog.Infof gated behind
// -v). Tracef is logged at V(2) so per-instruction dispatch noise stays
// off unless the host is run with -v=2 or higher.
type Glog struct{}

func (Glog) Tracef(format string, args ...any) {
	if glog.V(2) {
		glog.Infof(format, args...)
	}
}

func (Glog) Infof(format string, args ...any) {
	glog.Infof(format, args...)
}
