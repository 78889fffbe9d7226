package actors

import "context"

// Spawn is a utility function that creates a single actor behind its own dispatcher
// and returns the ActorRef, so you can send it messages
func Spawn(ctx context.Context, ID string, actorFactory ActorFactory, opts ...DispatcherOpt) (*ActorRef, error) {
	// get the observability span
	spanCtx, span := getSpanContext(ctx, "Actor.Spawn", ID)
	defer span.End()
	dispatcher := NewActorDispatcher(NewProps(ID, actorFactory), opts...)
	dispatcher.Start()
	// build the actor now so construction errors surface to the caller
	if _, err := dispatcher.getActor(spanCtx, ID); err != nil {
		_ = dispatcher.Shutdown(spanCtx)
		return nil, err
	}
	return &ActorRef{ID: ID, dispatcher: dispatcher}, nil
}
