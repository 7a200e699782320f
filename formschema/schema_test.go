package formschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mbolis/recruit/model"
)

func TestNormalizeNames(t *testing.T) {
	s := Schema{
		{Type: Text, Label: " Full Name! "},
		{Type: Text, Label: "Full name"},
		{Type: Text, Name: "full_name__1", Label: "Other"},
		{Type: Select, Label: "Team", Options: []string{" A ", "", "B"}},
		{Type: Text, Label: "???"},
	}

	got := s.Normalize()

	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Name
	}
	want := []string{"full_name", "full_name__1", "full_name__1__1", "team", "field_5"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, got[3].Options); diff != "" {
		t.Fatalf("unexpected options (-want +got):\n%s", diff)
	}
	if got[0].Label != "Full Name!" {
		t.Fatalf("label not trimmed: %q", got[0].Label)
	}
}

func TestQuestionsRoundTrip(t *testing.T) {
	s := Schema{
		{Name: "team", Type: Select, Label: "Team", Required: true, Options: []string{"A", "B"}},
		{Name: "phone", Type: Phone, Label: "Phone", Placeholder: "+91"},
	}

	qs := s.Questions()
	want := []model.Question{
		{Name: "team", Text: "Team", Type: "select", Options: "A,B", IsRequired: true, OrderIndex: 0},
		{Name: "phone", Text: "Phone", Type: "tel", Placeholder: "+91", OrderIndex: 1},
	}
	if diff := cmp.Diff(want, qs); diff != "" {
		t.Fatalf("unexpected questions (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(s, FromQuestions(qs)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromQuestionsFallsBackToText(t *testing.T) {
	s := FromQuestions([]model.Question{{Text: "Colour", Type: "color"}})
	if s[0].Type != Text {
		t.Fatalf("expected unknown type to become text, got %s", s[0].Type)
	}
}

func TestParseYAMLAndJSONAgree(t *testing.T) {
	y, err := ParseYAML([]byte(`
- name: team
  type: select
  label: Team
  required: true
  options: [A, B]
- name: bio
  type: textarea
  label: About you
`))
	if err != nil {
		t.Fatal(err)
	}
	j, err := ParseJSON([]byte(`[
		{"name":"team","type":"select","label":"Team","required":true,"options":["A","B"]},
		{"name":"bio","type":"textarea","label":"About you","required":false}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(j, y); diff != "" {
		t.Fatalf("json and yaml disagree (-json +yaml):\n%s", diff)
	}
	if err := y.Validate(); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
}

func TestSchemaValidateIgnoresBlankOptions(t *testing.T) {
	for _, opts := range [][]string{nil, {""}, {"  ", "\t"}} {
		err := Schema{{Name: "team", Type: Select, Label: "Team", Options: opts}}.Validate()
		assertReason(t, err, ReasonMissingOptions)
	}

	s := Schema{{Name: "team", Type: Radio, Label: "Team", Options: []string{" ", "A"}}}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
	if err := s.Normalize().Validate(); err != nil {
		t.Fatalf("normalized schema must stay valid, got %v", err)
	}
}

func TestSchemaValidateRejectsUnknownType(t *testing.T) {
	err := Schema{{Name: "x", Type: "slider", Label: "X"}}.Validate()
	assertReason(t, err, ReasonUnknownType)
}
