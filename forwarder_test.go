package di

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pinger interface {
	Ping() string
	Name() string
}

type pingService struct {
	name string
	peer *Ref[pinger]
}

func (s *pingService) Name() string {
	return s.name
}

func (s *pingService) Ping() string {
	return s.name + "->" + s.peer.MustGet().Name()
}

var (
	pingAID = NewIdentifier[pinger]("ping.a")
	pingBID = NewIdentifier[pinger]("ping.b")
)

func registerPingPair(t *testing.T, ctn Container, built *int) {
	t.Helper()

	for _, pair := range []struct {
		name     string
		id, peer Identifier[pinger]
	}{
		{"a", pingAID, pingBID},
		{"b", pingBID, pingAID},
	} {
		name := pair.name
		err := RegisterClass1(ctn, pair.id, pair.peer, func(peer *Ref[pinger], _ ...any) (pinger, error) {
			if built != nil {
				*built++
			}
			return &pingService{name: name, peer: peer}, nil
		})
		require.Nil(t, err)
	}
}

func TestMutualDependencies(t *testing.T) {
	ctn := New()
	built := 0
	registerPingPair(t, ctn, &built)

	a, err := Resolve(ctn, pingAID)
	require.Nil(t, err)
	require.Equal(t, 1, built, "b should not be built before a uses it")

	b, err := Resolve(ctn, pingBID)
	require.Nil(t, err)

	require.Equal(t, "a->b", a.Ping())
	require.Equal(t, "b->a", b.Ping())
	require.Equal(t, 2, built)

	require.True(t, a.(*pingService).peer.MustGet() == b)
	require.True(t, b.(*pingService).peer.MustGet() == a)
}

func TestMutualDependenciesFromTheOtherSide(t *testing.T) {
	ctn := New()
	registerPingPair(t, ctn, nil)

	b := MustResolve(ctn, pingBID)
	require.Equal(t, "b->a", b.Ping())
	require.Equal(t, "a->b", MustResolve(ctn, pingAID).Ping())
}

func TestForwarderResolvesOnce(t *testing.T) {
	ctn := New()

	target := NewIdentifier[*mockObject]("target")
	consumer := NewIdentifier[*Ref[*mockObject]]("consumer")

	calls := 0
	require.Nil(t, Register(ctn, target, func(Container, ...any) (*mockObject, error) {
		calls++
		return &mockObject{Count: calls}, nil
	}, AsTransient()))

	require.Nil(t, RegisterClass1(ctn, consumer, target, func(r *Ref[*mockObject], _ ...any) (*Ref[*mockObject], error) {
		return r, nil
	}))

	ref := MustResolve(ctn, consumer)
	require.False(t, ref.Forwarder().Resolved())
	require.Equal(t, 0, calls)

	obj1 := ref.MustGet()
	obj2 := ref.MustGet()

	require.True(t, ref.Forwarder().Resolved())
	require.Equal(t, 1, calls, "a transient target is still resolved once by the forwarder")
	require.True(t, obj1 == obj2)
}

func TestForwarderError(t *testing.T) {
	ctn := New()

	missing := NewIdentifier[int]("missing")
	consumer := NewIdentifier[*Ref[int]]("consumer")

	require.Nil(t, RegisterClass1(ctn, consumer, missing, func(r *Ref[int], _ ...any) (*Ref[int], error) {
		return r, nil
	}))

	ref := MustResolve(ctn, consumer)

	_, err := ref.Get()
	require.ErrorIs(t, err, ErrNotRegistered)

	var fwdErr *ForwardError
	require.ErrorAs(t, err, &fwdErr)
	require.Equal(t, consumer.String(), fwdErr.Consumer)
	require.Equal(t, missing.String(), fwdErr.Target)
	require.False(t, ref.Forwarder().Resolved())

	require.Panics(t, func() { ref.MustGet() })

	// the error is not cached
	require.Nil(t, Set(ctn, missing, 42))
	require.Equal(t, 42, ref.MustGet())
}

func TestForwarderTypeMismatch(t *testing.T) {
	ctn := New()

	target := NewIdentifier[string]("target")
	consumer := NewIdentifier[*Ref[int]]("consumer")

	require.Nil(t, Set(ctn, target, "not an int"))
	require.Nil(t, RegisterClass[*Ref[int]](ctn, consumer, func(deps Deps, _ ...any) (*Ref[int], error) {
		return Dep[int](deps, 0), nil
	}, DependsOn(target)))

	_, err := MustResolve(ctn, consumer).Get()
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestConstructorArguments(t *testing.T) {
	ctn := New()

	d1 := NewIdentifier[int]("d1")
	d2 := NewIdentifier[string]("d2")
	d3 := NewIdentifier[bool]("d3")
	id := NewIdentifier[[]any]("all")

	require.Nil(t, Set(ctn, d1, 1))
	require.Nil(t, Set(ctn, d2, "two"))
	require.Nil(t, Set(ctn, d3, true))

	err := RegisterClass3(ctn, id, d1, d2, d3,
		func(r1 *Ref[int], r2 *Ref[string], r3 *Ref[bool], args ...any) ([]any, error) {
			return append([]any{r1.MustGet(), r2.MustGet(), r3.MustGet()}, args...), nil
		},
		AsTransient(),
	)
	require.Nil(t, err)

	all, err := Resolve(ctn, id, "x", 9)
	require.Nil(t, err)
	require.Equal(t, []any{1, "two", true, "x", 9}, all)
}

func TestDeclarationOrder(t *testing.T) {
	ctn := New()

	d1 := NewIdentifier[int]("d1")
	d2 := NewIdentifier[int]("d2")
	d3 := NewIdentifier[int]("d3")
	id := NewIdentifier[[]Key]("targets")

	err := RegisterClass2(ctn, id, d1, d2, func(r1, r2 *Ref[int], _ ...any) ([]Key, error) {
		return []Key{r1.Forwarder().Target(), r2.Forwarder().Target()}, nil
	}, DependsOn(d3))
	require.Nil(t, err)

	def, ok := ctn.Definition(id)
	require.True(t, ok)
	require.Equal(t, []Key{d1, d2, d3}, def.Dependencies)

	require.Equal(t, []Key{d1, d2}, MustResolve(ctn, id))
}

func TestEagerForwarderCycle(t *testing.T) {
	ctn := New()

	a := NewIdentifier[int]("a")
	b := NewIdentifier[int]("b")

	// both constructors use their forwarder right away
	require.Nil(t, RegisterClass1(ctn, a, b, func(r *Ref[int], _ ...any) (int, error) {
		v, err := r.Get()
		return v + 1, err
	}))
	require.Nil(t, RegisterClass1(ctn, b, a, func(r *Ref[int], _ ...any) (int, error) {
		v, err := r.Get()
		return v + 1, err
	}))

	_, err := Resolve(ctn, a)
	require.ErrorIs(t, err, ErrCycle)

	var fwdErr *ForwardError
	require.True(t, errors.As(err, &fwdErr))
}

func TestRegisterClassNilConstructor(t *testing.T) {
	ctn := New()
	id := NewIdentifier[int]("int")
	dep := NewIdentifier[int]("dep")

	require.ErrorIs(t, ctn.RegisterClass(id, nil), ErrNilFactory)
	require.ErrorIs(t, RegisterClass[int](ctn, id, nil), ErrNilFactory)
	require.ErrorIs(t, RegisterClass1[int, int](ctn, id, dep, nil), ErrNilFactory)
	require.ErrorIs(t, RegisterClass2[int, int, int](ctn, id, dep, dep, nil), ErrNilFactory)
	require.ErrorIs(t, RegisterClass3[int, int, int, int](ctn, id, dep, dep, dep, nil), ErrNilFactory)
}

type backRef struct {
	a *Ref[int]
}

func TestStoredForwarderCycle(t *testing.T) {
	ctn := New()

	a := NewIdentifier[int]("a")
	b := NewIdentifier[*backRef]("b")

	// b is fully built and keeps its forwarder to a,
	// then a uses it while it is still being built.
	require.Nil(t, RegisterClass1(ctn, b, a, func(r *Ref[int], _ ...any) (*backRef, error) {
		return &backRef{a: r}, nil
	}))
	require.Nil(t, RegisterClass1(ctn, a, b, func(r *Ref[*backRef], _ ...any) (int, error) {
		br, err := r.Get()
		if err != nil {
			return 0, err
		}
		return br.a.Get()
	}))

	errc := make(chan error, 1)
	go func() {
		_, err := ctn.Resolve(a)
		errc <- err
	}()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrCycle)

		var fErr *ForwardError
		require.ErrorAs(t, err, &fErr)
	case <-time.After(2 * time.Second):
		t.Fatal("the cycle should be reported, not wait for ever")
	}
}

func TestStoredForwarderAfterBuild(t *testing.T) {
	ctn := New()

	a := NewIdentifier[int]("a")
	b := NewIdentifier[*backRef]("b")

	require.Nil(t, RegisterClass1(ctn, b, a, func(r *Ref[int], _ ...any) (*backRef, error) {
		return &backRef{a: r}, nil
	}))
	require.Nil(t, RegisterClass1(ctn, a, b, func(r *Ref[*backRef], _ ...any) (int, error) {
		_, err := r.Get()
		return 1, err
	}))

	require.Equal(t, 1, MustResolve(ctn, a))

	// every build is over, b can now reach a
	require.Equal(t, 1, MustResolve(ctn, b).a.MustGet())
}

func TestConcurrentForwarderResolution(t *testing.T) {
	ctn := New()

	target := NewIdentifier[*mockObject]("target")
	consumer := NewIdentifier[*Ref[*mockObject]]("consumer")

	var calls int32
	require.Nil(t, Register(ctn, target, func(Container, ...any) (*mockObject, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return &mockObject{}, nil
	}, AsTransient()))
	require.Nil(t, RegisterClass1(ctn, consumer, target, func(r *Ref[*mockObject], _ ...any) (*Ref[*mockObject], error) {
		return r, nil
	}))

	ref := MustResolve(ctn, consumer)

	const n = 50

	objects := make([]*mockObject, n)
	wg := sync.WaitGroup{}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			objects[i] = ref.MustGet()
		}(i)
	}

	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.True(t, ref.Forwarder().Resolved())
	for _, obj := range objects {
		require.True(t, obj == objects[0])
	}
}
