package throttle

import "time"

// Spec configures delivery throttling for a set of event kinds: either one
// interval applied to every kind, or a per-kind map where absent kinds get
// no throttling. The zero value throttles nothing. A Spec is fixed at
// construction and never mutated afterward.
type Spec struct {
	interval time.Duration
	perKind  map[string]time.Duration
}

// None returns a Spec that throttles nothing.
func None() Spec {
	return Spec{}
}

// All returns a Spec applying the same interval to every event kind.
func All(interval time.Duration) Spec {
	return Spec{interval: interval}
}

// PerKind returns a Spec with individual intervals per event kind. Kinds
// absent from the map are not throttled. The map is copied.
func PerKind(intervals map[string]time.Duration) Spec {
	copied := make(map[string]time.Duration, len(intervals))
	for k, v := range intervals {
		copied[k] = v
	}
	return Spec{perKind: copied}
}

// IntervalFor resolves the effective interval for an event kind. Zero
// means no throttling for that kind.
func (s Spec) IntervalFor(kind string) time.Duration {
	if s.perKind != nil {
		return s.perKind[kind]
	}
	return s.interval
}

// Empty reports whether the Spec throttles nothing.
func (s Spec) Empty() bool {
	if s.interval > 0 {
		return false
	}
	for _, interval := range s.perKind {
		if interval > 0 {
			return false
		}
	}
	return true
}
