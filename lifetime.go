package di

// Lifetime defines how long an object built by a container is kept.
type Lifetime int

const (
	// Singleton objects are built once per container and cached
	// until the container is disposed.
	Singleton Lifetime = iota

	// Transient objects are built each time they are resolved.
	// They are not cached and the container does not close them.
	Transient
)

// unknownLifetime labels the resolutions of unregistered identifiers in metrics.
const unknownLifetime Lifetime = -1

// String returns the name of the lifetime, as used in metric labels.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}
