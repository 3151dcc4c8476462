package plugin

// Gate decides once whether enough history exists to inject context.
// It is computed at plugin start and never re-evaluated, so sessions
// recorded later do not open a closed gate.
type Gate struct {
	count     int
	threshold int
}

// NewGate records the matching-session count against the threshold.
func NewGate(count, threshold int) Gate {
	return Gate{count: count, threshold: threshold}
}

// Open reports whether count reached the threshold.
func (g Gate) Open() bool { return g.count >= g.threshold }

// Count returns the session count observed at start.
func (g Gate) Count() int { return g.count }

// Threshold returns the minimum session count required.
func (g Gate) Threshold() int { return g.threshold }
