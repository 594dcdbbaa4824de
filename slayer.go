package di

import (
	"fmt"
	"io"
	"runtime/debug"

	"go.uber.org/zap"
)

// Disposer can be implemented by the objects that need to release resources
// when their container is disposed.
// It is used when the definition does not have a Close function.
type Disposer interface {
	Dispose() error
}

// Dispose disposes the container.
//
// The children are disposed first, the most recent one first.
// Then the singletons built by the container are closed
// in the reverse order of their construction.
// The container is detached from its parent.
//
// After Dispose, the container can no longer be used:
// Register, Resolve, Lazy and Child return an error wrapping ErrDisposed.
// Calling Dispose again does nothing and returns nil.
//
// The returned error joins the errors of the close functions.
func (ctn Container) Dispose() error {
	if ctn.core == nil {
		return nil
	}
	return ctn.core.dispose()
}

// IsDisposed returns true if the container has been disposed.
func (ctn Container) IsDisposed() bool {
	if ctn.core == nil {
		return true
	}

	ctn.core.m.RLock()
	defer ctn.core.m.RUnlock()
	return ctn.core.disposed
}

func (core *containerCore) dispose() error {
	core.m.Lock()

	if core.disposed {
		core.m.Unlock()
		return nil
	}

	core.disposed = true

	children := core.children
	built := core.built
	parent := core.parent

	core.children = nil
	core.built = nil
	core.parent = nil
	core.objects = map[*token]any{}

	core.m.Unlock()

	errs := multiErrBuilder{}

	for i := len(children) - 1; i >= 0; i-- {
		errs.Add(children[i].dispose())
	}

	for i := len(built) - 1; i >= 0; i-- {
		errs.Add(core.closeObject(built[i].def, built[i].obj))
	}

	if parent != nil {
		parent.removeChild(core)
	}

	core.metrics.observeDisposal()
	core.logger.Debug("container disposed", zap.Int("closed", len(built)))

	return errs.Build()
}

func (core *containerCore) closeObject(def Def, obj any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			core.logger.Error("close function panicked",
				serviceField(def.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("could not close `%s` because the close function panicked: %v", def.ID, r)
		}
	}()

	switch o := obj.(type) {
	case nil:
		return nil
	case Disposer:
		if def.Close == nil {
			err = o.Dispose()
		}
	case io.Closer:
		if def.Close == nil {
			err = o.Close()
		}
	}

	if def.Close != nil {
		err = def.Close(obj)
	}

	if err != nil {
		core.logger.Error("could not close object", serviceField(def.ID), zap.Error(err))
		return fmt.Errorf("could not close `%s`: %w", def.ID, err)
	}

	return nil
}
