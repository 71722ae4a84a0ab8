// Package metrics records pruning outcomes.
package metrics

// Outcome describes what happened to one parameter during model pruning.
type Outcome string

// Pruning outcomes.
const (
	Pruned   Outcome = "pruned"
	Skipped  Outcome = "skipped"  // pruned dimension smaller than m
	Excluded Outcome = "excluded" // layer excluded or not registered
	Failed   Outcome = "failed"
)

// Recorder receives one observation per parameter visited by a pruning run.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// ObserveParam records the outcome for a parameter of the given layer type
	// and the density of the weight after the run.
	ObserveParam(layer string, outcome Outcome, density float64)
}

// Nop discards every observation.
type Nop struct{}

// ObserveParam implements Recorder.
func (Nop) ObserveParam(string, Outcome, float64) {}
