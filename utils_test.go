package di

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltList(t *testing.T) {
	app := &containerCore{}
	child := &containerCore{}

	a := NewIdentifier[int]("a")
	b := NewIdentifier[int]("b")

	var list builtList

	require.Empty(t, list.OrderedList())
	require.False(t, list.Has(app, a.tok))

	list = list.Add(app, a)
	newList := list.Add(app, b)

	require.Equal(t, []string{a.String()}, list.OrderedList())
	require.Equal(t, []string{a.String(), b.String()}, newList.OrderedList())

	require.True(t, list.Has(app, a.tok))
	require.False(t, list.Has(app, b.tok), "Add should not modify the receiver")
	require.True(t, newList.Has(app, b.tok))
	require.False(t, newList.Has(child, a.tok), "the same identifier in another container is not in the list")
}

func TestMultiErrBuilder(t *testing.T) {
	b := multiErrBuilder{}
	b.Add(nil)
	require.Nil(t, b.Build())

	errA := errors.New("a")
	errB := errors.New("b")

	b.Add(errA)
	b.Add(nil)
	b.Add(errB)

	err := b.Build()
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}

func TestIdentifier(t *testing.T) {
	id := NewIdentifier[string]("name")

	require.Equal(t, "name", id.Name())
	require.Regexp(t, `^name#\d+$`, id.String())

	var zero Identifier[string]
	require.Equal(t, "", zero.Name())
	require.Equal(t, "<invalid>", zero.String())
	require.Nil(t, tokenOf(zero))
	require.Nil(t, tokenOf(nil))

	require.Equal(t, id, id)
	require.NotEqual(t, id, NewIdentifier[string]("name"))
}

func TestLifetimeString(t *testing.T) {
	require.Equal(t, "singleton", Singleton.String())
	require.Equal(t, "transient", Transient.String())
	require.Equal(t, "unknown", unknownLifetime.String())
}
