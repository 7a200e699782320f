// Package formschema holds the authoring side of recruitment forms: typed field
// descriptors, the builder that edits an ordered list of them, and the
// serialized schema that gets published.
package formschema

import "strings"

// FieldType is the closed set of field kinds a form can contain.
type FieldType string

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Phone    FieldType = "phone"
	Textarea FieldType = "textarea"
	Select   FieldType = "select"
	Radio    FieldType = "radio"
	Checkbox FieldType = "checkbox"
	File     FieldType = "file"
	Number   FieldType = "number"
)

// FieldTypes lists the types offered by the builder, in menu order.
var FieldTypes = []FieldType{Text, Email, Phone, Textarea, Select, Radio, Checkbox, File}

var typeLabels = map[FieldType]string{
	Text:     "Text",
	Email:    "Email",
	Phone:    "Phone",
	Textarea: "Textarea",
	Select:   "Dropdown",
	Radio:    "Radio",
	Checkbox: "Checkbox",
	File:     "File",
	Number:   "Number",
}

// ParseFieldType accepts builder names and the served question names
// ("tel" is the served name of Phone).
func ParseFieldType(s string) (FieldType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "tel" {
		return Phone, true
	}
	t := FieldType(s)
	if _, ok := typeLabels[t]; ok {
		return t, true
	}
	return "", false
}

func (t FieldType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label is the human name shown in type pickers.
func (t FieldType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// IsChoice reports whether the type draws its value from a closed option list.
func (t FieldType) IsChoice() bool {
	switch t {
	case Select, Radio, Checkbox:
		return true
	}
	return false
}

// IsTextLike reports whether a placeholder applies to the type.
func (t FieldType) IsTextLike() bool {
	switch t {
	case Text, Email, Phone, Textarea, Number:
		return true
	}
	return false
}

// QuestionType is the name used for the type once the form is published.
func (t FieldType) QuestionType() string {
	if t == Phone {
		return "tel"
	}
	return string(t)
}

// Option is one choice of a select, radio or checkbox field. ID is stable for
// the life of the builder so removals never depend on list positions.
type Option struct {
	ID    string
	Value string
}

// FieldDescriptor is the pre-publish representation of one form field.
type FieldDescriptor struct {
	ID          int
	Name        string
	Type        FieldType
	Label       string
	Placeholder string
	Required    bool
	Options     []Option
}

func (f FieldDescriptor) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return values
}

func (f FieldDescriptor) clone() FieldDescriptor {
	c := f
	if f.Options != nil {
		c.Options = append([]Option(nil), f.Options...)
	}
	return c
}
