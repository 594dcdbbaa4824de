package di

import (
	"fmt"
)

// Child creates a new Container that has this Container as parent.
//
// The child resolves the identifiers it does not know through its parent.
// Registering an identifier in the child never changes the parent:
// it only shadows the parent definition for the child and its own children.
// The child inherits the logger and the metrics of its parent,
// unless options override them.
//
// Disposing the parent disposes the child.
func (ctn Container) Child(opts ...ContainerOption) (Container, error) {
	if ctn.core == nil {
		return Container{}, fmt.Errorf("could not create a child container: %w", ErrDisposed)
	}

	parent := ctn.core

	parent.m.Lock()
	defer parent.m.Unlock()

	if parent.disposed {
		return Container{}, fmt.Errorf("could not create a child container: %w", ErrDisposed)
	}

	child := newCore(parent, "child", parent.base, parent.metrics, opts)
	parent.children = append(parent.children, child)

	return Container{core: child}, nil
}

// NewChild is a shortcut for parent.Child(opts...).
func NewChild(parent Container, opts ...ContainerOption) (Container, error) {
	return parent.Child(opts...)
}

// Parent returns the parent Container.
// The boolean is false for a root container or a disposed one.
func (ctn Container) Parent() (Container, bool) {
	if ctn.core == nil {
		return Container{}, false
	}

	parent := ctn.core.getParent()
	if parent == nil {
		return Container{}, false
	}

	return Container{core: parent}, true
}

func (core *containerCore) removeChild(child *containerCore) {
	core.m.Lock()
	defer core.m.Unlock()

	for i, c := range core.children {
		if c == child {
			core.children = append(core.children[:i], core.children[i+1:]...)
			return
		}
	}
}
