package di

import (
	"fmt"
)

// Builder can be used to create a Container.
// The Builder should be created with NewBuilder.
// Then you can add definitions with the Add method,
// and finally build the Container with the Build method.
//
// It is meant for the bootstrap of an application:
// every service is described once, then the root container is built.
// Definitions can still be registered in the Container afterwards.
type Builder struct {
	opts        []ContainerOption
	definitions map[*token]Def
	order       []*token
}

// NewBuilder creates a Builder.
// The options are given to New when the Container is built.
func NewBuilder(opts ...ContainerOption) *Builder {
	return &Builder{
		opts:        opts,
		definitions: map[*token]Def{},
	}
}

// Definitions returns the definitions added to the Builder, in insertion order.
func (b *Builder) Definitions() []Def {
	defs := make([]Def, 0, len(b.order))
	for _, tok := range b.order {
		defs = append(defs, copyDef(b.definitions[tok]))
	}
	return defs
}

// IsDefined returns true if there is a definition for the given identifier.
func (b *Builder) IsDefined(id Key) bool {
	tok := tokenOf(id)
	if tok == nil {
		return false
	}
	_, ok := b.definitions[tok]
	return ok
}

// Add adds one or more definitions in the Builder.
// It returns an error if a definition can not be added.
// If a definition with the same identifier has already been added,
// it is replaced by the new one, as if the first one never existed.
func (b *Builder) Add(defs ...Def) error {
	for _, def := range defs {
		if err := b.add(copyDef(def)); err != nil {
			return err
		}
	}

	return nil
}

func (b *Builder) add(def Def) error {
	tok := tokenOf(def.ID)
	if tok == nil {
		return ErrInvalidIdentifier
	}

	if def.Build == nil {
		return fmt.Errorf("could not add `%s`: %w", def.ID, ErrNilFactory)
	}

	if _, ok := b.definitions[tok]; !ok {
		b.order = append(b.order, tok)
	}

	b.definitions[tok] = def

	return nil
}

// Register adds a definition built with a Factory.
func (b *Builder) Register(id Key, build Factory, opts ...Option) error {
	return b.add(newDef(id, build, opts))
}

// Set is a shortcut to add a definition for an already built object.
// The object is not closed when the container is disposed.
func (b *Builder) Set(id Key, obj any) error {
	return b.add(Def{
		ID:       id,
		Lifetime: Singleton,
		Build: func(Container, ...any) (any, error) {
			return obj, nil
		},
		Close: keepOpen,
	})
}

// Build creates a root Container with all the definitions added to the Builder.
func (b *Builder) Build() (Container, error) {
	ctn := New(b.opts...)

	for _, tok := range b.order {
		if err := ctn.add(copyDef(b.definitions[tok])); err != nil {
			return Container{}, err
		}
	}

	return ctn, nil
}
