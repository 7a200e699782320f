package formschema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mbolis/recruit/model"
)

// SchemaField is one serialized field: a FieldDescriptor without its builder id.
type SchemaField struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Schema is the ordered field list exchanged between the builder and the API.
type Schema []SchemaField

func ParseJSON(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return s, nil
}

func ParseYAML(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return s, nil
}

func (s Schema) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

var reNoIdent = regexp.MustCompile(`\W+`)

// Normalize returns a cleaned copy: labels and options trimmed, blank options
// dropped, and every field given a unique name. Missing names are derived from
// the label; repeated names get a "__<n>" suffix.
func (s Schema) Normalize() Schema {
	out := make(Schema, len(s))
	taken := make(map[string]bool, len(s))
	for i, f := range s {
		f.Label = strings.TrimSpace(f.Label)
		f.Placeholder = strings.TrimSpace(f.Placeholder)

		var opts []string
		for _, o := range f.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		f.Options = opts

		name := strings.TrimSpace(f.Name)
		if name == "" {
			name = slug(f.Label)
		}
		if name == "" {
			name = fmt.Sprintf("field_%d", i+1)
		}
		base := name
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s__%d", base, n)
		}
		taken[name] = true
		f.Name = name

		out[i] = f
	}
	return out
}

func slug(label string) string {
	name := strings.ToLower(label)
	name = reNoIdent.ReplaceAllLiteralString(name, " ")
	return strings.Join(strings.Fields(name), "_")
}

// Questions converts the schema to the served question representation, in
// order. Question ids are left zero: they are assigned on save.
func (s Schema) Questions() []model.Question {
	qs := make([]model.Question, len(s))
	for i, f := range s {
		q := model.Question{
			Name:       f.Name,
			Text:       f.Label,
			Type:       f.Type.QuestionType(),
			IsRequired: f.Required,
			OrderIndex: i,
		}
		if f.Type.IsTextLike() {
			q.Placeholder = f.Placeholder
		}
		if f.Type.IsChoice() {
			q.Options = model.JoinOptions(f.Options)
		}
		qs[i] = q
	}
	return qs
}

// FromQuestions rebuilds a schema from a published form, e.g. to edit it.
// Unknown question types become text fields.
func FromQuestions(qs []model.Question) Schema {
	s := make(Schema, len(qs))
	for i, q := range qs {
		t, ok := ParseFieldType(q.Type)
		if !ok {
			t = Text
		}
		s[i] = SchemaField{
			Name:        q.Name,
			Type:        t,
			Label:       q.Text,
			Placeholder: q.Placeholder,
			Required:    q.IsRequired,
		}
		if t.IsChoice() {
			s[i].Options = q.OptionList()
		}
	}
	return s
}
