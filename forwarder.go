package di

import (
	"fmt"
	"reflect"
	"sync"
)

// Forwarder stands for a dependency of an object built by RegisterClass.
//
// The dependency is not resolved when the object is constructed,
// but the first time Get is called.
// That is what allows two services to depend on each other:
// each constructor stores a Forwarder to the other one
// and only uses it once both objects exist.
//
// After a successful Get, the Forwarder always returns the same object.
// If the resolution fails, the error is returned and the next call tries again.
type Forwarder struct {
	m        sync.Mutex
	consumer Key
	target   Key
	ctn      Container
	resolved bool
	obj      any
}

func newForwarder(consumer, target Key, ctn Container) *Forwarder {
	return &Forwarder{
		consumer: consumer,
		target:   target,
		ctn:      ctn,
	}
}

// Target returns the identifier the Forwarder resolves.
func (f *Forwarder) Target() Key {
	return f.target
}

// Resolved returns true once the target has been resolved.
func (f *Forwarder) Resolved() bool {
	f.m.Lock()
	defer f.m.Unlock()
	return f.resolved
}

// Get resolves the target on the first call and returns it.
// The error is a *ForwardError naming both the consumer and the target.
func (f *Forwarder) Get() (any, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if f.resolved {
		return f.obj, nil
	}

	obj, err := f.ctn.Resolve(f.target)
	if err != nil {
		return nil, &ForwardError{
			Consumer: f.consumer.String(),
			Target:   f.target.String(),
			Err:      err,
		}
	}

	f.obj = obj
	f.resolved = true

	return obj, nil
}

// Ref is the typed version of a Forwarder.
type Ref[T any] struct {
	f *Forwarder
}

// RefOf wraps a Forwarder in a Ref.
func RefOf[T any](f *Forwarder) *Ref[T] {
	return &Ref[T]{f: f}
}

// Forwarder returns the underlying Forwarder.
func (r *Ref[T]) Forwarder() *Forwarder {
	return r.f
}

// Get resolves the dependency on the first call and returns it.
func (r *Ref[T]) Get() (T, error) {
	var zero T

	obj, err := r.f.Get()
	if err != nil {
		return zero, err
	}

	return cast[T](r.f.target, obj)
}

// MustGet is similar to Get but it panics if the dependency can not be resolved.
func (r *Ref[T]) MustGet() T {
	obj, err := r.Get()
	if err != nil {
		panic(err)
	}
	return obj
}

// Deps contains the forwarders given to a Constructor,
// in the order of the declared dependencies.
type Deps []*Forwarder

// Dep returns the i-th dependency as a Ref.
// It panics if i is out of range, like a slice would.
func Dep[T any](deps Deps, i int) *Ref[T] {
	return RefOf[T](deps[i])
}

func cast[T any](id Key, obj any) (T, error) {
	var zero T

	if obj == nil {
		return zero, nil
	}

	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf(
			"could not get `%s` as `%s`, the object is a `%T`: %w",
			id, reflect.TypeOf((*T)(nil)).Elem(), obj, ErrTypeMismatch,
		)
	}

	return t, nil
}
