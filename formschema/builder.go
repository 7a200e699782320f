package formschema

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

// Editable field properties, as accepted by UpdateField.
const (
	PropName        = "name"
	PropType        = "type"
	PropLabel       = "label"
	PropPlaceholder = "placeholder"
	PropRequired    = "required"
)

// Builder owns an ordered list of field descriptors being authored. It is not
// safe for concurrent use: mutations are expected to come from one UI loop.
type Builder struct {
	fields   []*FieldDescriptor
	lastID   int
	focused  int
	onChange func(Schema)
	optionID func() string
}

type BuilderOption func(*Builder)

// OnChange registers a callback run after every mutation with the freshly
// serialized schema. It plays the part of a re-render.
func OnChange(fn func(Schema)) BuilderOption {
	return func(b *Builder) { b.onChange = fn }
}

// WithOptionIDs replaces the option id generator (random UUIDs by default).
func WithOptionIDs(gen func() string) BuilderOption {
	return func(b *Builder) { b.optionID = gen }
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		optionID: func() string { return uuid.Must(uuid.NewV4()).String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromSchema starts a builder pre-filled with an existing schema, e.g. a form
// loaded for editing. Fields get fresh builder ids.
func FromSchema(s Schema, opts ...BuilderOption) *Builder {
	b := NewBuilder(opts...)
	for _, sf := range s {
		b.lastID++
		f := &FieldDescriptor{
			ID:          b.lastID,
			Name:        sf.Name,
			Type:        sf.Type,
			Label:       sf.Label,
			Placeholder: sf.Placeholder,
			Required:    sf.Required,
		}
		for _, v := range sf.Options {
			f.Options = append(f.Options, Option{ID: b.optionID(), Value: v})
		}
		b.fields = append(b.fields, f)
	}
	return b
}

func (b *Builder) Len() int {
	return len(b.fields)
}

// Fields returns a copy of the current descriptors, in order.
func (b *Builder) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(b.fields))
	for i, f := range b.fields {
		out[i] = f.clone()
	}
	return out
}

func (b *Builder) Field(id int) (FieldDescriptor, bool) {
	if f := b.find(id); f != nil {
		return f.clone(), true
	}
	return FieldDescriptor{}, false
}

// Focused is the id of the most recently added field, the one a UI should
// scroll into view. Zero when nothing was added or it has been removed.
func (b *Builder) Focused() int {
	return b.focused
}

// AddField appends a blank field of the given type.
func (b *Builder) AddField(t FieldType) (FieldDescriptor, error) {
	if !t.Valid() {
		return FieldDescriptor{}, fmt.Errorf("unknown field type %q", t)
	}
	b.lastID++
	f := &FieldDescriptor{
		ID:   b.lastID,
		Name: fmt.Sprintf("field_%d", b.lastID),
		Type: t,
	}
	b.fields = append(b.fields, f)
	b.focused = f.ID
	b.changed()
	return f.clone(), nil
}

// RemoveField deletes the field with the given id. Unknown ids are ignored.
func (b *Builder) RemoveField(id int) bool {
	for i, f := range b.fields {
		if f.ID == id {
			b.fields = append(b.fields[:i], b.fields[i+1:]...)
			if b.focused == id {
				b.focused = 0
			}
			b.changed()
			return true
		}
	}
	return false
}

// UpdateField sets one property of one field. An unknown id is a no-op; an
// unknown property or a value of the wrong kind is an error and changes nothing.
func (b *Builder) UpdateField(id int, property string, value any) error {
	f := b.find(id)
	if f == nil {
		return nil
	}

	switch property {
	case PropRequired:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("property %q expects a bool, got %T", property, value)
		}
		f.Required = v
	case PropName, PropType, PropLabel, PropPlaceholder:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("property %q expects a string, got %T", property, value)
		}
		switch property {
		case PropName:
			f.Name = v
		case PropLabel:
			f.Label = v
		case PropPlaceholder:
			f.Placeholder = v
		case PropType:
			t, ok := ParseFieldType(v)
			if !ok {
				return fmt.Errorf("unknown field type %q", v)
			}
			f.Type = t
		}
	default:
		return fmt.Errorf("unknown field property %q", property)
	}

	b.changed()
	return nil
}

// AddOption appends a trimmed option to a field and returns its stable id.
// Blank input is ignored and yields an empty id. Commas are rejected because
// published forms carry options as a comma-joined list.
func (b *Builder) AddOption(id int, value string) (string, error) {
	f := b.find(id)
	if f == nil {
		return "", nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if strings.Contains(value, ",") {
		return "", &ValidationError{
			Reason:  ReasonOptionComma,
			Field:   f.Label,
			Message: fmt.Sprintf("Option %q must not contain a comma.", value),
		}
	}
	opt := Option{ID: b.optionID(), Value: value}
	f.Options = append(f.Options, opt)
	b.changed()
	return opt.ID, nil
}

// RemoveOption removes an option by its stable id.
func (b *Builder) RemoveOption(id int, optionID string) bool {
	f := b.find(id)
	if f == nil {
		return false
	}
	for i, o := range f.Options {
		if o.ID == optionID {
			f.Options = append(f.Options[:i], f.Options[i+1:]...)
			b.changed()
			return true
		}
	}
	return false
}

// RemoveOptionAt removes an option by position. Out of range indexes are
// ignored.
func (b *Builder) RemoveOptionAt(id, index int) bool {
	f := b.find(id)
	if f == nil || index < 0 || index >= len(f.Options) {
		return false
	}
	return b.RemoveOption(id, f.Options[index].ID)
}

// Serialize produces the publishable schema. Builder ids are dropped; options
// are only emitted for choice types and placeholders for text-like types.
func (b *Builder) Serialize() Schema {
	s := make(Schema, len(b.fields))
	for i, f := range b.fields {
		sf := SchemaField{
			Name:     f.Name,
			Type:     f.Type,
			Label:    f.Label,
			Required: f.Required,
		}
		if f.Type.IsTextLike() {
			sf.Placeholder = f.Placeholder
		}
		if f.Type.IsChoice() {
			sf.Options = f.OptionValues()
			if sf.Options == nil {
				sf.Options = []string{}
			}
		}
		s[i] = sf
	}
	return s
}

// Validate is the publish gate. It never mutates the builder.
func (b *Builder) Validate() error {
	return b.Serialize().Validate()
}

func (b *Builder) find(id int) *FieldDescriptor {
	for _, f := range b.fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (b *Builder) changed() {
	if b.onChange != nil {
		b.onChange(b.Serialize())
	}
}
