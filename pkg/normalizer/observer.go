package normalizer

import "github.com/papercomputeco/agentui/pkg/event"

// Observer is notified as a stream is normalized. Calls happen on the
// goroutine consuming the sequence and must not block.
type Observer interface {
	LineResolved(res Resolution)
	Emitted(e event.Event)
	UpstreamFailed(err error)
}

type observers []Observer

func (o observers) LineResolved(res Resolution) {
	for _, ob := range o {
		ob.LineResolved(res)
	}
}

func (o observers) Emitted(e event.Event) {
	for _, ob := range o {
		ob.Emitted(e)
	}
}

func (o observers) UpstreamFailed(err error) {
	for _, ob := range o {
		ob.UpstreamFailed(err)
	}
}
