// Package forms contains the form managers of the application.
// They are only built through the container: Register describes them
// and the rest of the code resolves them by identifier.
package forms

import (
	"github.com/formwire/di"
)

// Identifiers of the form managers registered by Register.
var (
	ConfigID    = di.NewIdentifier[ConfigProvider]("forms.config")
	ValidatorID = di.NewIdentifier[Validator]("forms.validator")
	NotifierID  = di.NewIdentifier[Notifier]("forms.notifier")
	TrackerID   = di.NewIdentifier[Tracker]("forms.tracker")
	ValuesID    = di.NewIdentifier[ValueHandler]("forms.values")
)

// Settings are the options shared by the managers.
type Settings struct {
	// Required lists the fields rejected by the validator when they are empty.
	Required []string
}

// ConfigProvider gives access to the settings and to the strategies used by the forms.
type ConfigProvider interface {
	Settings() Settings
	Validator() (Validator, error)
	Notifier() (Notifier, error)
}

// Register registers the form managers in ctn.
//
// The config provider and the validator depend on each other,
// and the notifier composes the container it is registered in.
// The tracker is transient: it is built for each form,
// the name of the form being given as a runtime argument.
func Register(ctn di.Container, settings Settings) error {
	err := di.RegisterClass2(ctn, ConfigID, ValidatorID, NotifierID,
		func(v *di.Ref[Validator], n *di.Ref[Notifier], _ ...any) (ConfigProvider, error) {
			return &configProvider{settings: settings, validator: v, notifier: n}, nil
		},
	)
	if err != nil {
		return err
	}

	err = di.RegisterClass1(ctn, ValidatorID, ConfigID,
		func(cfg *di.Ref[ConfigProvider], _ ...any) (Validator, error) {
			return &requiredValidator{config: cfg}, nil
		},
	)
	if err != nil {
		return err
	}

	err = di.Register(ctn, NotifierID, func(c di.Container, _ ...any) (Notifier, error) {
		return newNotifier(c)
	})
	if err != nil {
		return err
	}

	err = di.Register(ctn, TrackerID, func(_ di.Container, args ...any) (Tracker, error) {
		form, _ := firstString(args)
		return newTracker(form), nil
	}, di.AsTransient())
	if err != nil {
		return err
	}

	return di.RegisterClass2(ctn, ValuesID, ConfigID, NotifierID,
		func(cfg *di.Ref[ConfigProvider], n *di.Ref[Notifier], args ...any) (ValueHandler, error) {
			form, _ := firstString(args)
			return &valueHandler{form: form, config: cfg, notifier: n, values: map[string]string{}}, nil
		},
		di.AsTransient(),
	)
}

type configProvider struct {
	settings  Settings
	validator *di.Ref[Validator]
	notifier  *di.Ref[Notifier]
}

func (p *configProvider) Settings() Settings {
	return p.settings
}

func (p *configProvider) Validator() (Validator, error) {
	return p.validator.Get()
}

func (p *configProvider) Notifier() (Notifier, error) {
	return p.notifier.Get()
}

func firstString(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}
