package di

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// buildingChan is closed when a singleton that is being built is ready.
type buildingChan chan struct{}

// Resolve retrieves the object registered for the identifier.
//
// The identifier is looked up in this container and then in its parents.
// The object is built by the container owning the definition,
// with args passed verbatim to the Build function.
// A singleton is built only once and cached in the owning container,
// the args of the following calls are ignored.
// A transient object is built on every call.
func (ctn Container) Resolve(id Key, args ...any) (any, error) {
	tok := tokenOf(id)
	if tok == nil {
		return nil, ErrInvalidIdentifier
	}

	if ctn.IsDisposed() {
		return nil, disposedError(id)
	}

	ctn = ctn.detached()

	owner, rec := ctn.core.lookup(tok)
	if rec == nil {
		ctn.core.metrics.observeResolution(unknownLifetime, ErrNotRegistered)
		return nil, notRegisteredError(id)
	}

	view := Container{core: owner, builtList: ctn.builtList, frame: ctn.frame}

	var obj any
	var err error

	if rec.def.Lifetime == Transient {
		obj, err = view.build(tok, rec, args)
	} else {
		obj, err = view.getSingleton(tok, rec, args)
	}

	owner.metrics.observeResolution(rec.def.Lifetime, err)

	return obj, err
}

// MustResolve is similar to Resolve but it panics if the object can not be retrieved.
func (ctn Container) MustResolve(id Key, args ...any) any {
	obj, err := ctn.Resolve(id, args...)
	if err != nil {
		panic(err)
	}
	return obj
}

// Fill is similar to Resolve but it does not return the object.
// Instead it fills the provided object with the value returned by Resolve.
// The provided object must be a pointer to the value returned by Resolve.
// It uses reflection, prefer the generic Resolve function when possible.
func (ctn Container) Fill(id Key, dst any) error {
	obj, err := ctn.Resolve(id)
	if err != nil {
		return err
	}
	return fill(obj, dst)
}

// Lazy returns a function resolving the identifier when it is called.
// It fails right away if the container is disposed
// or if the identifier is not registered.
// Calling the function several times for a singleton builds it only once.
func (ctn Container) Lazy(id Key, args ...any) (func() (any, error), error) {
	if tokenOf(id) == nil {
		return nil, ErrInvalidIdentifier
	}

	if ctn.IsDisposed() {
		return nil, disposedError(id)
	}

	if !ctn.IsRegistered(id) {
		return nil, notRegisteredError(id)
	}

	return func() (any, error) {
		return ctn.Resolve(id, args...)
	}, nil
}

// detached replaces the build chain once the build that created the container is over.
// A Container kept by an object is still used while the builds that led to
// this object are running: it takes the chain of the closest build that is not over,
// so that a cycle through it is reported instead of waiting for ever.
// When every build is over, the chain is dropped.
func (ctn Container) detached() Container {
	frame := ctn.frame
	if frame == nil || !frame.done.Load() {
		return ctn
	}

	for frame = frame.parent; frame != nil; frame = frame.parent {
		if !frame.done.Load() {
			return Container{core: ctn.core, builtList: frame.builtList, frame: frame}
		}
	}

	return Container{core: ctn.core}
}

func (ctn Container) getSingleton(tok *token, rec *record, args []any) (any, error) {
	core := ctn.core

	for {
		core.m.Lock()

		if core.disposed {
			core.m.Unlock()
			return nil, disposedError(rec.def.ID)
		}

		if obj, ok := core.objects[tok]; ok {
			core.m.Unlock()
			return obj, nil
		}

		ch, ok := core.building[tok]
		if !ok {
			break
		}

		core.m.Unlock()

		// The object is being built. If it is built by this call chain,
		// waiting would never end.
		if ctn.builtList.Has(core, tok) {
			return nil, formatCycleError(ctn.builtList, rec.def.ID)
		}

		<-ch
	}

	ch := make(buildingChan)
	core.building[tok] = ch
	current := core.records[tok]

	core.m.Unlock()

	obj, err := ctn.build(tok, current, args)

	core.m.Lock()

	delete(core.building, tok)
	close(ch)

	if err != nil {
		core.m.Unlock()
		return nil, err
	}

	if core.disposed {
		core.m.Unlock()
		closeErr := core.closeObject(current.def, obj)
		return nil, formatBuiltOnDisposedError(current.def, closeErr)
	}

	core.built = append(core.built, builtObject{def: current.def, obj: obj})

	// The identifier may have been registered again during the build.
	// The object is kept for disposal but it is not cached.
	if core.records[tok] == current {
		core.objects[tok] = obj
	}

	core.m.Unlock()

	return obj, nil
}

func (ctn Container) build(tok *token, rec *record, args []any) (obj any, err error) {
	def := rec.def

	if ctn.builtList.Has(ctn.core, tok) {
		return nil, formatCycleError(ctn.builtList, def.ID)
	}

	frame := &buildFrame{
		parent:    ctn.frame,
		builtList: ctn.builtList.Add(ctn.core, def.ID),
	}
	start := time.Now()

	defer func() {
		frame.done.Store(true)

		if r := recover(); r != nil {
			obj = nil
			err = &BuildError{
				ID:  def.ID.String(),
				Err: fmt.Errorf("the build function panicked: %v", r),
			}
		}
	}()

	obj, err = def.Build(Container{
		core:      ctn.core,
		builtList: frame.builtList,
		frame:     frame,
	}, args...)

	if err != nil {
		return nil, &BuildError{ID: def.ID.String(), Err: err}
	}

	ctn.core.metrics.observeBuild(def.Lifetime, start)
	ctn.core.logger.Debug("object built",
		serviceField(def.ID),
		zap.Stringer("lifetime", def.Lifetime),
	)

	return obj, nil
}

// formatBuiltOnDisposedError formats the error returned when the container
// is disposed while one of its objects is being built.
func formatBuiltOnDisposedError(def Def, closeErr error) error {
	if closeErr == nil {
		return fmt.Errorf("could not get `%s`, the object has been created and closed: %w", def.ID, ErrDisposed)
	}
	return fmt.Errorf(
		"could not get `%s`, the object has been created and closed (with an error: %v): %w",
		def.ID, closeErr, ErrDisposed,
	)
}

// formatCycleError formats the error returned when a cycle is detected.
func formatCycleError(l builtList, id Key) error {
	cycle := append(l.OrderedList(), id.String())
	return fmt.Errorf("could not get `%s`: %w %v", id, ErrCycle, cycle)
}
