// Package ditest helps to replace services by test doubles.
//
// A Mock wraps a child of the container used in production.
// Substitutions are registered in the child only,
// so the production registrations are never modified
// and the child is disposed when the test ends.
//
//	m := ditest.New(t, app)
//	ditest.Instance(m, forms.NotifierID, &fakeNotifier{})
//	v := di.MustResolve(m.Container(), forms.ValidatorID)
package ditest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/formwire/di"
)

// Mock is an isolated container for a test.
type Mock struct {
	t   testing.TB
	ctn di.Container
}

// New creates a Mock on top of a child of parent.
// The container logs to the test output and is disposed with t.Cleanup.
func New(t testing.TB, parent di.Container) *Mock {
	t.Helper()

	ctn, err := parent.Child(mockOptions(t)...)
	require.NoError(t, err, "could not create the mock container")

	return newMock(t, ctn)
}

// NewRoot creates a Mock that does not have a parent.
func NewRoot(t testing.TB) *Mock {
	t.Helper()
	return newMock(t, di.New(mockOptions(t)...))
}

func newMock(t testing.TB, ctn di.Container) *Mock {
	t.Cleanup(func() {
		if err := ctn.Dispose(); err != nil {
			t.Errorf("could not dispose the mock container: %v", err)
		}
	})

	return &Mock{t: t, ctn: ctn}
}

func mockOptions(t testing.TB) []di.ContainerOption {
	return []di.ContainerOption{
		di.WithName("mock"),
		di.WithLogger(zaptest.NewLogger(t)),
	}
}

// Container returns the container in which the substitutions are registered.
func (m *Mock) Container() di.Container {
	return m.ctn
}

// Instance substitutes a fixed instance for the identifier.
// Like with di.Set, the instance belongs to the caller:
// it is not closed when the mock container is disposed.
// Use Factory with di.WithClose if the container should close it.
func Instance[T any](m *Mock, id di.Identifier[T], obj T) *Mock {
	m.t.Helper()
	require.NoError(m.t, di.Set(m.ctn, id, obj), "could not set instance for `%s`", id)
	return m
}

// Factory substitutes a factory for the identifier.
func Factory[T any](m *Mock, id di.Identifier[T], build func(ctn di.Container, args ...any) (T, error), opts ...di.Option) *Mock {
	m.t.Helper()
	require.NoError(m.t, di.Register(m.ctn, id, build, opts...), "could not register factory for `%s`", id)
	return m
}

// Class substitutes a mock constructor for the identifier.
// Its dependencies are declared with di.DependsOn, like with di.RegisterClass.
func Class[T any](m *Mock, id di.Identifier[T], ctor func(deps di.Deps, args ...any) (T, error), opts ...di.Option) *Mock {
	m.t.Helper()
	require.NoError(m.t, di.RegisterClass(m.ctn, id, ctor, opts...), "could not register class for `%s`", id)
	return m
}

// Resolve resolves the identifier in the mock container and fails the test on error.
func Resolve[T any](m *Mock, id di.Identifier[T], args ...any) T {
	m.t.Helper()
	obj, err := di.Resolve(m.ctn, id, args...)
	require.NoError(m.t, err)
	return obj
}
