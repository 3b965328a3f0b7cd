// Package observability exposes the metrics emitted by the element graph
// runtime. Components depend on the Recorder interface; Nop is the default
// and Prometheus backs it with client_golang collectors.
package observability

// Recorder receives counters and gauges from the runtime services.
type Recorder interface {
	// EventPublished counts a change event delivered by the bus.
	EventPublished(kind string)
	// HandlerFailed counts a subscriber or replay step that panicked or
	// returned an error. component names the service that caught it.
	HandlerFailed(component string)
	// EdgesTracked reports the number of (element, property) pairs the
	// dispatcher currently watches.
	EdgesTracked(n int)
	// StackDepth reports the size of the undo or redo stack.
	StackDepth(stack string, n int)
	// TransactionFinished counts a transaction by outcome, e.g. "commit".
	TransactionFinished(outcome string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) EventPublished(string) {}
func (Nop) HandlerFailed(string) {}
func (Nop) EdgesTracked(int) {}
func (Nop) StackDepth(string, int) {}
func (Nop) TransactionFinished(string) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
