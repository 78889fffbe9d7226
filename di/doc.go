// Package di builds actors through an external inversion-of-control container.
//
// A Resolver registers itself with the actor runtime as its DependencyResolver.
// When the runtime needs an actor of a logical kind it asks the Resolver for a
// factory; each factory call looks the concrete type up in the Catalog, opens a
// fresh child scope in the Container, resolves the actor from that scope and binds
// the scope to the handle the runtime issued for that construction. When the runtime
// terminates the actor it calls Release with the handle and the bound scope is
// disposed exactly once.
//
//	c := container.New()
//	_ = c.Provide(NewDatabase)
//	_ = c.ProvideActor(NewGreeter)
//
//	system := actors.NewSystem("demo")
//	resolver, err := di.NewResolver(c, c, system)
//	props, err := di.PropsFor[*Greeter](resolver)
//	dispatcher := system.NewDispatcher(props)
//
// Bindings are keyed by handle rather than by the instance, so the resolver never
// keeps an actor reachable. Handles are unique per construction, so dispatchers of
// different kinds may reuse actor IDs. The runtime is expected to call Release for
// every actor it terminates.
package di
