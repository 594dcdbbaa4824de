package di

// Factory builds an object.
// ctn is the container owning the definition,
// args are the runtime arguments given to Resolve or Lazy.
// They are passed verbatim, the container never resolves them.
type Factory func(ctn Container, args ...any) (any, error)

// Def contains the information to build and close an object inside a Container.
type Def struct {
	ID       Key
	Build    Factory
	Lifetime Lifetime

	// Dependencies lists the identifiers the object needs.
	// RegisterClass hands them to the constructor as forwarders.
	// Validate checks they can all be resolved.
	Dependencies []Key

	// Close is called on the object when the container is disposed.
	// If it is nil, the object is closed with its Dispose or Close method, if any.
	// Transient objects are never closed by the container.
	Close func(obj any) error
}

// Option configures a definition when it is registered.
type Option func(def *Def)

// WithLifetime sets the lifetime of the definition.
func WithLifetime(l Lifetime) Option {
	return func(def *Def) {
		def.Lifetime = l
	}
}

// AsSingleton is a shortcut for WithLifetime(Singleton).
func AsSingleton() Option {
	return WithLifetime(Singleton)
}

// AsTransient is a shortcut for WithLifetime(Transient).
func AsTransient() Option {
	return WithLifetime(Transient)
}

// DependsOn appends identifiers to the dependencies of the definition.
// The order is kept: it is the order of the forwarders given to a constructor.
func DependsOn(ids ...Key) Option {
	return func(def *Def) {
		def.Dependencies = append(def.Dependencies, ids...)
	}
}

// WithClose sets the function called on the object when the container is disposed.
func WithClose(fn func(obj any) error) Option {
	return func(def *Def) {
		def.Close = fn
	}
}

func newDef(id Key, build Factory, opts []Option) Def {
	def := Def{
		ID:       id,
		Build:    build,
		Lifetime: Singleton,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&def)
		}
	}

	return def
}

// copyDef returns a definition that does not share its dependency slice with def.
func copyDef(def Def) Def {
	if def.Dependencies != nil {
		deps := make([]Key, len(def.Dependencies))
		copy(deps, def.Dependencies)
		def.Dependencies = deps
	}
	return def
}
