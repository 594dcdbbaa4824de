package di

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Container is a dependency injection container.
// It is created with New, NewChild or a Builder.
//
// A Container holds the definitions registered in it and the singletons it built.
// It may have a parent: the identifiers that are not registered in the Container
// are looked up in the parent, then in the parent of the parent, and so on.
//
// Container is a small value that can be copied.
// All the copies share the same registrations and objects.
type Container struct {
	// core contains the container data.
	// The Container given to a Build function shares the core of the
	// Container that owns the definition, but it has its own builtList.
	core *containerCore

	// builtList contains the definitions being built by the current call chain.
	// It is used to detect cycles.
	builtList builtList

	// frame is the build that created this Container, if any.
	// Once the build is over, the chain of the closest running ancestor
	// build replaces builtList.
	frame *buildFrame
}

// containerCore contains the data of a Container.
type containerCore struct {
	m        sync.RWMutex
	id       string
	name     string
	disposed bool
	metrics  *Metrics

	// base is the logger inherited by the children,
	// logger is base with the container fields.
	base   *zap.Logger
	logger *zap.Logger

	// lineage
	parent   *containerCore
	children []*containerCore

	// definitions, in registration order
	records map[*token]*record
	order   []*token

	// singletons
	objects  map[*token]any
	building map[*token]buildingChan

	// built contains the singletons in construction order.
	// They are closed in the reverse order when the container is disposed.
	built []builtObject
}

// record is a registered definition.
// Its address changes each time the identifier is registered again.
type record struct {
	def Def
}

type builtObject struct {
	def Def
	obj any
}

// buildFrame is shared by the Container views created for a single call to a Build function.
// parent is the frame of the build that was running when this one started,
// builtList is the chain given to the Build function.
type buildFrame struct {
	done      atomic.Bool
	parent    *buildFrame
	builtList builtList
}

// ContainerOption configures a Container.
type ContainerOption func(core *containerCore)

// WithLogger sets the logger of the container.
// Children inherit it.
func WithLogger(logger *zap.Logger) ContainerOption {
	return func(core *containerCore) {
		if logger != nil {
			core.base = logger
		}
	}
}

// WithMetrics sets the prometheus metrics updated by the container.
// Children inherit them.
func WithMetrics(m *Metrics) ContainerOption {
	return func(core *containerCore) {
		core.metrics = m
	}
}

// WithName gives a name to the container. It only appears in logs.
func WithName(name string) ContainerOption {
	return func(core *containerCore) {
		core.name = name
	}
}

// New creates a root Container without any registration.
func New(opts ...ContainerOption) Container {
	return Container{core: newCore(nil, "root", defaultLogger(), nil, opts)}
}

func newCore(parent *containerCore, name string, logger *zap.Logger, metrics *Metrics, opts []ContainerOption) *containerCore {
	core := &containerCore{
		id:       uuid.NewString(),
		name:     name,
		base:     logger,
		metrics:  metrics,
		parent:   parent,
		records:  map[*token]*record{},
		objects:  map[*token]any{},
		building: map[*token]buildingChan{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(core)
		}
	}

	core.logger = core.base.With(zap.String("container", core.name), zap.String("container_id", core.id))

	return core
}

// ID returns the unique id of the container.
func (ctn Container) ID() string {
	if ctn.core == nil {
		return ""
	}
	return ctn.core.id
}

// Logger returns the logger of the container.
func (ctn Container) Logger() *zap.Logger {
	if ctn.core == nil {
		return defaultLogger()
	}
	return ctn.core.logger
}

// Register adds a definition built with a Factory.
// If the identifier is already registered in this container, the definition is replaced.
// A singleton already built for the previous definition is no longer returned,
// but it is still closed when the container is disposed.
func (ctn Container) Register(id Key, build Factory, opts ...Option) error {
	return ctn.add(newDef(id, build, opts))
}

// Add registers a definition, like Register.
func (ctn Container) Add(def Def) error {
	return ctn.add(copyDef(def))
}

func (ctn Container) add(def Def) error {
	tok := tokenOf(def.ID)
	if tok == nil {
		return ErrInvalidIdentifier
	}

	if def.Build == nil {
		return fmt.Errorf("could not register `%s`: %w", def.ID, ErrNilFactory)
	}

	if ctn.core == nil {
		return fmt.Errorf("could not register `%s`: %w", def.ID, ErrDisposed)
	}

	ctn.core.m.Lock()
	defer ctn.core.m.Unlock()

	if ctn.core.disposed {
		return fmt.Errorf("could not register `%s`: %w", def.ID, ErrDisposed)
	}

	if _, ok := ctn.core.records[tok]; !ok {
		ctn.core.order = append(ctn.core.order, tok)
	}

	ctn.core.records[tok] = &record{def: def}

	if _, ok := ctn.core.objects[tok]; ok {
		delete(ctn.core.objects, tok)
		ctn.core.logger.Warn("registration replaces an already built singleton", serviceField(def.ID))
	}

	return nil
}

// IsRegistered returns true if the identifier is registered
// in this container or in one of its parents.
func (ctn Container) IsRegistered(id Key) bool {
	tok := tokenOf(id)
	if tok == nil || ctn.core == nil {
		return false
	}
	_, rec := ctn.core.lookup(tok)
	return rec != nil
}

// Registrations returns the identifiers registered in this container,
// in registration order. The parents registrations are not included.
func (ctn Container) Registrations() []Key {
	if ctn.core == nil {
		return nil
	}

	ctn.core.m.RLock()
	defer ctn.core.m.RUnlock()

	ids := make([]Key, 0, len(ctn.core.order))
	for _, tok := range ctn.core.order {
		ids = append(ids, ctn.core.records[tok].def.ID)
	}

	return ids
}

// Definition returns the definition used to build the identifier.
// It can come from a parent container.
func (ctn Container) Definition(id Key) (Def, bool) {
	tok := tokenOf(id)
	if tok == nil || ctn.core == nil {
		return Def{}, false
	}
	_, rec := ctn.core.lookup(tok)
	if rec == nil {
		return Def{}, false
	}
	return copyDef(rec.def), true
}

// Validate checks that the dependencies declared by the definitions
// of this container and of its parents can be resolved.
// Each definition is checked from the container that owns it,
// since that is where its object is built.
func (ctn Container) Validate() error {
	if ctn.IsDisposed() {
		return ErrDisposed
	}

	errs := multiErrBuilder{}

	for core := ctn.core; core != nil; core = core.getParent() {
		core.m.RLock()
		defs := make([]Def, 0, len(core.order))
		for _, tok := range core.order {
			defs = append(defs, core.records[tok].def)
		}
		core.m.RUnlock()

		owner := Container{core: core}

		for _, def := range defs {
			for _, dep := range def.Dependencies {
				if !owner.IsRegistered(dep) {
					errs.Add(fmt.Errorf("`%s` depends on `%s`: %w", def.ID, dep, ErrNotRegistered))
				}
			}
		}
	}

	return errs.Build()
}

// lookup finds the record of a token in the core or in its parents.
// It also returns the core owning the record.
func (core *containerCore) lookup(tok *token) (*containerCore, *record) {
	for c := core; c != nil; c = c.getParent() {
		c.m.RLock()
		rec, ok := c.records[tok]
		c.m.RUnlock()

		if ok {
			return c, rec
		}
	}
	return nil, nil
}

func (core *containerCore) getParent() *containerCore {
	core.m.RLock()
	defer core.m.RUnlock()
	return core.parent
}
