// Package container implements the di.Container and di.TypeSource collaborators
// on top of go.uber.org/dig.
//
// Constructors given to Provide are root registrations: their results are built
// once and shared by every scope. Constructors given to ProvideScoped or
// ProvideActor run again inside every scope opened with BeginScope, and results
// implementing io.Closer are closed, newest first, when the scope is disposed.
// ProvideActor also records the constructed types as actor types that the
// resolver can look up by name.
package container
