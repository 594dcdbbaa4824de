package di

// Register is the typed version of Container.Register.
func Register[T any](ctn Container, id Identifier[T], build func(ctn Container, args ...any) (T, error), opts ...Option) error {
	if build == nil {
		return ctn.Register(id, nil, opts...)
	}
	return ctn.Register(id, func(c Container, args ...any) (any, error) {
		return build(c, args...)
	}, opts...)
}

// Resolve is the typed version of Container.Resolve.
// It returns an error wrapping ErrTypeMismatch
// if the object does not have the identifier type.
func Resolve[T any](ctn Container, id Identifier[T], args ...any) (T, error) {
	var zero T

	obj, err := ctn.Resolve(id, args...)
	if err != nil {
		return zero, err
	}

	return cast[T](id, obj)
}

// MustResolve is similar to Resolve but it panics if the object can not be retrieved.
func MustResolve[T any](ctn Container, id Identifier[T], args ...any) T {
	obj, err := Resolve(ctn, id, args...)
	if err != nil {
		panic(err)
	}
	return obj
}

// Lazy is the typed version of Container.Lazy.
func Lazy[T any](ctn Container, id Identifier[T], args ...any) (func() (T, error), error) {
	get, err := ctn.Lazy(id, args...)
	if err != nil {
		return nil, err
	}

	return func() (T, error) {
		var zero T

		obj, err := get()
		if err != nil {
			return zero, err
		}

		return cast[T](id, obj)
	}, nil
}

// Set registers an already built object as a singleton.
// Like Container.Set, it does not close the object when the container is disposed.
func Set[T any](ctn Container, id Identifier[T], obj T, opts ...Option) error {
	return ctn.Set(id, obj, opts...)
}

// Set registers an already built object as a singleton.
// The container does not own the object:
// it is not closed when the container is disposed, unless WithClose is used.
func (ctn Container) Set(id Key, obj any, opts ...Option) error {
	opts = append([]Option{WithClose(keepOpen)}, opts...)
	opts = append(opts, AsSingleton())
	return ctn.Register(id, func(Container, ...any) (any, error) {
		return obj, nil
	}, opts...)
}

func keepOpen(any) error {
	return nil
}
