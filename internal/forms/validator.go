package forms

import (
	"strings"

	"github.com/formwire/di"
)

// FieldError describes an invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator checks the values of a form.
type Validator interface {
	Validate(form string, values map[string]string) ([]FieldError, error)
}

// requiredValidator rejects the empty required fields
// and notifies the result of each validation.
type requiredValidator struct {
	config *di.Ref[ConfigProvider]
}

func (v *requiredValidator) Validate(form string, values map[string]string) ([]FieldError, error) {
	cfg, err := v.config.Get()
	if err != nil {
		return nil, err
	}

	var errs []FieldError

	for _, field := range cfg.Settings().Required {
		if strings.TrimSpace(values[field]) == "" {
			errs = append(errs, FieldError{Field: field, Message: "this field is required"})
		}
	}

	n, err := cfg.Notifier()
	if err != nil {
		return nil, err
	}

	n.Notify(Event{Form: form, Kind: EventValidated, Valid: len(errs) == 0})

	return errs, nil
}
