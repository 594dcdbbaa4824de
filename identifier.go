package di

import (
	"strconv"
	"sync/atomic"
)

var tokenSeq uint64

// token is the value behind an Identifier.
// Two identifiers are equal only if they share the same token.
type token struct {
	name string
	seq  uint64
}

// Key is the untyped view of an Identifier.
// It is used by the non-generic methods of the Container
// and in the dependency list of a definition.
// Only Identifier implements Key.
type Key interface {
	String() string
	key() *token
}

// Identifier is the registry key of a service.
// It is created once with NewIdentifier, usually as a package variable
// next to the interface it stands for,
// and shared by the code that registers the service and the code that resolves it.
//
// The type parameter is the type of the object
// returned when the identifier is resolved.
type Identifier[T any] struct {
	tok *token
}

// NewIdentifier creates a new identifier.
// The name is only used in error and log messages:
// calling NewIdentifier twice with the same name returns two different identifiers.
func NewIdentifier[T any](name string) Identifier[T] {
	return Identifier[T]{
		tok: &token{
			name: name,
			seq:  atomic.AddUint64(&tokenSeq, 1),
		},
	}
}

// Name returns the name given to NewIdentifier.
func (id Identifier[T]) Name() string {
	if id.tok == nil {
		return ""
	}
	return id.tok.name
}

// String returns the name followed by a sequence number
// that tells apart the identifiers having the same name.
func (id Identifier[T]) String() string {
	if id.tok == nil {
		return "<invalid>"
	}
	return id.tok.name + "#" + strconv.FormatUint(id.tok.seq, 10)
}

func (id Identifier[T]) key() *token {
	return id.tok
}

// tokenOf returns the token of a Key, or nil if the key is not usable.
func tokenOf(id Key) *token {
	if id == nil {
		return nil
	}
	return id.key()
}
