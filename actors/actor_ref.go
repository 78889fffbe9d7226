package actors

import (
	"context"

	"google.golang.org/protobuf/proto"
)

// ActorRef addresses a spawned actor
type ActorRef struct {
	ID         string
	dispatcher *Dispatcher
}

// Send sends a message to the actor and waits for its reply
func (ref *ActorRef) Send(ctx context.Context, msg proto.Message) (proto.Message, error) {
	return ref.dispatcher.Send(ctx, ref.ID, msg)
}

// Stop terminates the actor
func (ref *ActorRef) Stop(ctx context.Context) error {
	return ref.dispatcher.Shutdown(ctx)
}
