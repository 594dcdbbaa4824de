package di

import (
	"errors"
	"fmt"
	"reflect"
)

// builtList contains the definitions being built by a call chain,
// in the order they were entered.
// The same identifier can appear once per container.
type builtList []builtEntry

type builtEntry struct {
	core *containerCore
	id   Key
}

// Add returns a new list with the element appended.
// The receiver is not modified, so it can be shared by several builds.
func (l builtList) Add(core *containerCore, id Key) builtList {
	list := make(builtList, len(l), len(l)+1)
	copy(list, l)
	return append(list, builtEntry{core: core, id: id})
}

// Has checks if the list contains the given element.
func (l builtList) Has(core *containerCore, tok *token) bool {
	for _, e := range l {
		if e.core == core && e.id.key() == tok {
			return true
		}
	}
	return false
}

// OrderedList returns the names of the elements in the order they were inserted.
func (l builtList) OrderedList() []string {
	s := make([]string, len(l))

	for i, e := range l {
		s[i] = e.id.String()
	}

	return s
}

// multiErrBuilder can accumulate errors.
type multiErrBuilder struct {
	errs []error
}

// Add adds an error in the multiErrBuilder.
func (b *multiErrBuilder) Add(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// Build returns an error wrapping all the accumulated errors.
// If there is no error in the builder, it returns nil.
func (b *multiErrBuilder) Build() error {
	if len(b.errs) == 0 {
		return nil
	}
	return errors.Join(b.errs...)
}

// fill copies src in dest. dest should be a pointer to src type.
func fill(src, dest any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d := reflect.TypeOf(dest)
			s := reflect.TypeOf(src)
			err = fmt.Errorf("the fill destination should be a pointer to a `%s`, but you used a `%s`", s, d)
		}
	}()

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(src))

	return err
}
