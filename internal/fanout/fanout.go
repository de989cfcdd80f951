// Package fanout delivers one completed GameReport to an ordered list of
// sinks (C4): the cache, the report log writer, and optionally a learner.
// Delivery is sequential; the first sink error short-circuits the rest.
package fanout

import "github.com/lox/alphaself/internal/record"

// Sink consumes a single report. The cache and the report log writer both
// implement this.
type Sink interface {
	Process(report record.Report) error
}

// Processor holds an ordered, exclusive list of sinks.
type Processor struct {
	sinks []Sink
}

// New returns a fan-out processor that delivers to sinks in order.
func New(sinks ...Sink) *Processor {
	return &Processor{sinks: sinks}
}

// Process delivers report to every sink in order, stopping at (and
// returning) the first error.
func (p *Processor) Process(report record.Report) error {
	for _, sink := range p.sinks {
		if err := sink.Process(report); err != nil {
			return err
		}
	}
	return nil
}
