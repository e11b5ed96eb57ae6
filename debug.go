package garden

import (
	"fmt"
	"time"
)

// tickStats holds per-tick timing. Only populated when the scene is in debug mode.
type tickStats struct {
	frame        uint64
	delta        time.Duration
	controlsTime time.Duration
	dispatchTime time.Duration
	renderTime   time.Duration
	invocations  int
}

// debugLog logs timing stats for one tick at debug level.
func (s *Scene) debugLog(stats tickStats) {
	if !s.debug {
		return
	}
	total := stats.controlsTime + stats.dispatchTime + stats.renderTime
	Logger().Debug("tick",
		"frame", stats.frame,
		"delta", stats.delta,
		"controls", stats.controlsTime,
		"dispatch", stats.dispatchTime,
		"render", stats.renderTime,
		"total", total,
		"hooks", stats.invocations,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("garden debug: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxTreeDepth is the depth past which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the child count past which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
