package di

// Metrics receives resolver instrumentation events
type Metrics interface {
	// ActorProduced counts actors built for kind
	ActorProduced(kind string)
	// ProduceFailed counts failed constructions for kind
	ProduceFailed(kind string)
	// ScopeReleased counts disposed scopes
	ScopeReleased(success bool)
	// LiveBindings reports the number of bound actors
	LiveBindings(count int)
}

type nopMetrics struct{}

func (nopMetrics) ActorProduced(string) {}
func (nopMetrics) ProduceFailed(string) {}
func (nopMetrics) ScopeReleased(bool)   {}
func (nopMetrics) LiveBindings(int)     {}

// NopMetrics returns Metrics that record nothing
func NopMetrics() Metrics { return nopMetrics{} }
