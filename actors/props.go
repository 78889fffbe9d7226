package actors

import (
	"context"
	"fmt"
	"sync/atomic"
)

// constructions numbers every actor built in the process
var constructions atomic.Uint64

// NewHandle returns a handle unique to one construction of actorID of the given kind
func NewHandle(kind string, actorID string) string {
	return fmt.Sprintf("%s/%s#%d", kind, actorID, constructions.Add(1))
}
// Props describes how the runtime constructs and releases actors of one kind
type Props struct {
	kind     string
	factory  ActorFactory
	releaser Releaser
}

// NewProps returns Props building actors with the given factory
func NewProps(kind string, factory ActorFactory) *Props {
	return &Props{kind: kind, factory: factory}
}

// WithReleaser sets who is told when actors built from these props terminate
func (p *Props) WithReleaser(releaser Releaser) *Props {
	p.releaser = releaser
	return p
}

// Kind returns the logical actor kind
func (p *Props) Kind() string {
	return p.kind
}

// Produce builds a new actor instance and returns the handle it is released by
func (p *Props) Produce(ctx context.Context, actorID string) (Actor, string, error) {
	handle := NewHandle(p.kind, actorID)
	actor, err := p.factory(ctx, actorID, handle)
	if err != nil {
		return nil, "", err
	}
	return actor, handle, nil
}

// Release signals that the actor built under handle has terminated.
// No-op when the props carry no releaser.
func (p *Props) Release(ctx context.Context, handle string) error {
	if p.releaser == nil {
		return nil
	}
	return p.releaser.Release(ctx, handle)
}
