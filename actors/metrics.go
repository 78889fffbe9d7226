package actors

// Metrics receives runtime instrumentation events
type Metrics interface {
	ActorStarted()
	ActorStopped()
	MessageProcessed(success bool)
}

type nopMetrics struct{}

func (nopMetrics) ActorStarted()         {}
func (nopMetrics) ActorStopped()         {}
func (nopMetrics) MessageProcessed(bool) {}

// NopMetrics returns Metrics that record nothing
func NopMetrics() Metrics { return nopMetrics{} }
