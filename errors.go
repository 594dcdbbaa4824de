package di

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is returned when an identifier is unknown
	// in a container and in all of its parents.
	ErrNotRegistered = errors.New("service not registered")

	// ErrDisposed is returned by every registering or resolving call
	// made on a disposed container.
	ErrDisposed = errors.New("container has been disposed")

	// ErrCycle is returned when an object needs itself,
	// directly or not, while it is being built.
	ErrCycle = errors.New("cycle in the object definitions")

	// ErrNilFactory is returned when a definition has no Build function.
	ErrNilFactory = errors.New("the Build function can not be nil")

	// ErrInvalidIdentifier is returned for the zero Identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier, it should be created with NewIdentifier")

	// ErrTypeMismatch is returned when the resolved object
	// does not have the type of its Identifier.
	ErrTypeMismatch = errors.New("resolved object does not match the identifier type")
)

// BuildError is returned when the Build function of a definition
// returns an error or panics.
type BuildError struct {
	ID  string
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("could not build `%s`: %v", e.ID, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ForwardError is returned by a Forwarder that could not resolve its target.
// Consumer is the service that received the forwarder,
// Target the dependency that could not be resolved.
type ForwardError struct {
	Consumer string
	Target   string
	Err      error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("could not resolve `%s` needed by `%s`: %v", e.Target, e.Consumer, e.Err)
}

func (e *ForwardError) Unwrap() error {
	return e.Err
}

func notRegisteredError(id Key) error {
	return fmt.Errorf("could not get `%s`: %w", id, ErrNotRegistered)
}

func disposedError(id Key) error {
	if id == nil {
		return ErrDisposed
	}
	return fmt.Errorf("could not get `%s`: %w", id, ErrDisposed)
}
