package di

// Constructor builds an object from its dependencies.
// deps contains one Forwarder per declared dependency, in declaration order.
// args are the runtime arguments given to Resolve or Lazy, passed verbatim.
type Constructor func(deps Deps, args ...any) (any, error)

// RegisterClass registers a definition built by a Constructor.
//
// The dependencies are declared with the DependsOn option.
// They are not resolved when the object is built:
// the constructor receives a Forwarder for each of them
// and the dependency is only resolved when the Forwarder is used.
func (ctn Container) RegisterClass(id Key, ctor Constructor, opts ...Option) error {
	def := newDef(id, nil, opts)

	if ctor != nil {
		deps := make([]Key, len(def.Dependencies))
		copy(deps, def.Dependencies)

		def.Build = func(c Container, args ...any) (any, error) {
			forwarders := make(Deps, len(deps))
			for i, dep := range deps {
				forwarders[i] = newForwarder(id, dep, c)
			}
			return ctor(forwarders, args...)
		}
	}

	return ctn.add(def)
}

// RegisterClass is the typed version of Container.RegisterClass.
func RegisterClass[T any](ctn Container, id Identifier[T], ctor func(deps Deps, args ...any) (T, error), opts ...Option) error {
	if ctor == nil {
		return ctn.RegisterClass(id, nil, opts...)
	}
	return ctn.RegisterClass(id, func(deps Deps, args ...any) (any, error) {
		return ctor(deps, args...)
	}, opts...)
}

// RegisterClass1 registers a constructor with one typed dependency.
// The dependency is added before the ones declared with DependsOn.
func RegisterClass1[T, D1 any](
	ctn Container,
	id Identifier[T],
	d1 Identifier[D1],
	ctor func(r1 *Ref[D1], args ...any) (T, error),
	opts ...Option,
) error {
	if ctor == nil {
		return RegisterClass[T](ctn, id, nil, opts...)
	}
	return RegisterClass(ctn, id, func(deps Deps, args ...any) (T, error) {
		return ctor(Dep[D1](deps, 0), args...)
	}, prependDeps(opts, d1)...)
}

// RegisterClass2 registers a constructor with two typed dependencies.
func RegisterClass2[T, D1, D2 any](
	ctn Container,
	id Identifier[T],
	d1 Identifier[D1],
	d2 Identifier[D2],
	ctor func(r1 *Ref[D1], r2 *Ref[D2], args ...any) (T, error),
	opts ...Option,
) error {
	if ctor == nil {
		return RegisterClass[T](ctn, id, nil, opts...)
	}
	return RegisterClass(ctn, id, func(deps Deps, args ...any) (T, error) {
		return ctor(Dep[D1](deps, 0), Dep[D2](deps, 1), args...)
	}, prependDeps(opts, d1, d2)...)
}

// RegisterClass3 registers a constructor with three typed dependencies.
func RegisterClass3[T, D1, D2, D3 any](
	ctn Container,
	id Identifier[T],
	d1 Identifier[D1],
	d2 Identifier[D2],
	d3 Identifier[D3],
	ctor func(r1 *Ref[D1], r2 *Ref[D2], r3 *Ref[D3], args ...any) (T, error),
	opts ...Option,
) error {
	if ctor == nil {
		return RegisterClass[T](ctn, id, nil, opts...)
	}
	return RegisterClass(ctn, id, func(deps Deps, args ...any) (T, error) {
		return ctor(Dep[D1](deps, 0), Dep[D2](deps, 1), Dep[D3](deps, 2), args...)
	}, prependDeps(opts, d1, d2, d3)...)
}

func prependDeps(opts []Option, ids ...Key) []Option {
	return append([]Option{DependsOn(ids...)}, opts...)
}
