package forms

import (
	"sort"
	"sync"

	"github.com/formwire/di"
)

// Tracker records the fields of a form the user has touched.
type Tracker interface {
	Form() string
	Touch(field string)
	Touched() []string
}

type tracker struct {
	m       sync.Mutex
	form    string
	touched map[string]struct{}
}

func newTracker(form string) *tracker {
	return &tracker{form: form, touched: map[string]struct{}{}}
}

func (t *tracker) Form() string {
	return t.form
}

func (t *tracker) Touch(field string) {
	t.m.Lock()
	defer t.m.Unlock()
	t.touched[field] = struct{}{}
}

func (t *tracker) Touched() []string {
	t.m.Lock()
	defer t.m.Unlock()

	fields := make([]string, 0, len(t.touched))
	for f := range t.touched {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	return fields
}

// ValueHandler holds the values of a form and notifies their changes.
type ValueHandler interface {
	Set(field, value string) error
	Values() map[string]string
	Validate() ([]FieldError, error)
}

type valueHandler struct {
	m        sync.Mutex
	form     string
	config   *di.Ref[ConfigProvider]
	notifier *di.Ref[Notifier]
	values   map[string]string
}

func (h *valueHandler) Set(field, value string) error {
	h.m.Lock()
	h.values[field] = value
	h.m.Unlock()

	n, err := h.notifier.Get()
	if err != nil {
		return err
	}

	n.Notify(Event{Form: h.form, Kind: EventChanged, Field: field})

	return nil
}

func (h *valueHandler) Values() map[string]string {
	h.m.Lock()
	defer h.m.Unlock()

	values := make(map[string]string, len(h.values))
	for k, v := range h.values {
		values[k] = v
	}

	return values
}

func (h *valueHandler) Validate() ([]FieldError, error) {
	cfg, err := h.config.Get()
	if err != nil {
		return nil, err
	}

	v, err := cfg.Validator()
	if err != nil {
		return nil, err
	}

	return v.Validate(h.form, h.Values())
}
