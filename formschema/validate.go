package formschema

import (
	"fmt"
	"strings"
)

type Reason string

const (
	ReasonNoFields       Reason = "no_fields"
	ReasonMissingLabel   Reason = "missing_label"
	ReasonMissingOptions Reason = "missing_options"
	ReasonOptionComma    Reason = "option_comma"
	ReasonUnknownType    Reason = "unknown_type"
)

// ValidationError reports the first rule a schema breaks.
type ValidationError struct {
	Reason  Reason
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a schema is publishable: at least one field, every label
// set, every choice field with at least one option.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return &ValidationError{
			Reason:  ReasonNoFields,
			Message: "Please add at least one form field before creating the form.",
		}
	}

	for _, f := range s {
		if strings.TrimSpace(f.Label) == "" {
			return &ValidationError{
				Reason:  ReasonMissingLabel,
				Field:   f.Name,
				Message: "All fields must have a label. Please check your fields.",
			}
		}
		if !f.Type.Valid() {
			return &ValidationError{
				Reason:  ReasonUnknownType,
				Field:   f.Label,
				Message: fmt.Sprintf("Field %q has an unknown type %q.", f.Label, f.Type),
			}
		}
		if !f.Type.IsChoice() {
			continue
		}
		if countOptions(f.Options) == 0 {
			return &ValidationError{
				Reason:  ReasonMissingOptions,
				Field:   f.Label,
				Message: fmt.Sprintf("Field %q needs at least one option.", f.Label),
			}
		}
		for _, o := range f.Options {
			if strings.Contains(o, ",") {
				return &ValidationError{
					Reason:  ReasonOptionComma,
					Field:   f.Label,
					Message: fmt.Sprintf("Option %q must not contain a comma.", o),
				}
			}
		}
	}
	return nil
}

// countOptions ignores options that are blank after trimming, since
// Normalize drops them.
func countOptions(options []string) (n int) {
	for _, o := range options {
		if strings.TrimSpace(o) != "" {
			n++
		}
	}
	return
}
