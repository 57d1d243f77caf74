package events

// Event represents a structured state change emitted by the marketplace
// engine. Attributes are flat string pairs so downstream consumers (gateway,
// indexers, metrics) can handle every event uniformly.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Emitter broadcasts events to downstream subscribers.
type Emitter interface {
	Emit(*Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while
// discarding all events. It is useful when a component wants to optionally
// expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(*Event) {}

// Recorder captures emitted events in order. Intended for tests and for the
// gateway's recent-events buffer.
type Recorder struct {
	Events []*Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt *Event) {
	if evt == nil {
		return
	}
	r.Events = append(r.Events, evt)
}

// Reset clears the captured events.
func (r *Recorder) Reset() { r.Events = nil }

// Multi fans an event out to several emitters.
type Multi []Emitter

// Emit implements the Emitter interface.
func (m Multi) Emit(evt *Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(evt)
		}
	}
}
