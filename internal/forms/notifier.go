package forms

import (
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/formwire/di"
)

// EventKind tells what happened to a form.
type EventKind string

// Kinds of the events sent by the Notifier.
const (
	EventChanged   EventKind = "changed"
	EventValidated EventKind = "validated"
)

// Event is sent to the subscribers of a form.
type Event struct {
	Form  string
	Kind  EventKind
	Field string
	Valid bool

	// Required is set on changed events when the field is a required one.
	Required bool
}

// Notifier dispatches form events to subscribers.
type Notifier interface {
	Subscribe(form string, fn func(Event)) (unsubscribe func())
	Notify(e Event)
}

// notifier delivers the events synchronously, in subscription order.
type notifier struct {
	m      sync.Mutex
	logger *zap.Logger
	config func() (ConfigProvider, error)
	next   int
	subs   map[string]map[int]func(Event)
	closed bool
}

// newNotifier reads the config provider through a lazy resolver:
// the config provider itself needs the notifier.
func newNotifier(ctn di.Container) (*notifier, error) {
	config, err := di.Lazy(ctn, ConfigID)
	if err != nil {
		return nil, err
	}

	return &notifier{
		logger: ctn.Logger().Named("notifier"),
		config: config,
		subs:   map[string]map[int]func(Event){},
	}, nil
}

func (n *notifier) Subscribe(form string, fn func(Event)) func() {
	n.m.Lock()
	defer n.m.Unlock()

	if n.closed {
		return func() {}
	}

	id := n.next
	n.next++

	if n.subs[form] == nil {
		n.subs[form] = map[int]func(Event){}
	}
	n.subs[form][id] = fn

	return func() {
		n.m.Lock()
		defer n.m.Unlock()
		delete(n.subs[form], id)
	}
}

func (n *notifier) Notify(e Event) {
	if e.Kind == EventChanged {
		if cfg, err := n.config(); err == nil {
			e.Required = slices.Contains(cfg.Settings().Required, e.Field)
		} else {
			n.logger.Warn("could not get the form settings", zap.Error(err))
		}
	}

	n.m.Lock()
	subs := n.subs[e.Form]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, subs[id])
	}
	n.m.Unlock()

	n.logger.Debug("notify", zap.String("form", e.Form), zap.String("kind", string(e.Kind)), zap.Int("subscribers", len(fns)))

	for _, fn := range fns {
		fn(e)
	}
}

// Dispose drops the subscribers. It is called when the container is disposed.
func (n *notifier) Dispose() error {
	n.m.Lock()
	defer n.m.Unlock()

	n.closed = true
	n.subs = map[string]map[int]func(Event){}

	return nil
}
