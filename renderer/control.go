package renderer

import (
	"strings"

	"github.com/mbolis/recruit/formschema"
)

// Element is the kind of widget a question is rendered with.
type Element string

const (
	ElementInput    Element = "input"
	ElementTextarea Element = "textarea"
	ElementSelect   Element = "select"
	ElementRadio    Element = "radio"
	ElementCheckbox Element = "checkbox"
)

// Control describes how a question is rendered. InputType is only set for
// ElementInput.
type Control struct {
	Element   Element
	InputType string
}

// Multiple reports whether the control can carry more than one choice.
func (c Control) Multiple() bool {
	return c.Element == ElementCheckbox
}

// Choices reports whether the control picks from the question's options.
func (c Control) Choices() bool {
	switch c.Element {
	case ElementSelect, ElementRadio, ElementCheckbox:
		return true
	}
	return false
}

var textInput = Control{Element: ElementInput, InputType: "text"}

// ControlFor maps a question type to its control. Every type has a control;
// types this version does not know render as a single-line text input, so the
// answer still travels as a plain string.
func ControlFor(questionType string) Control {
	t, ok := formschema.ParseFieldType(questionType)
	if !ok {
		return textInput
	}
	switch t {
	case formschema.Textarea:
		return Control{Element: ElementTextarea}
	case formschema.Select:
		return Control{Element: ElementSelect}
	case formschema.Radio:
		return Control{Element: ElementRadio}
	case formschema.Checkbox:
		return Control{Element: ElementCheckbox}
	case formschema.Email:
		return Control{Element: ElementInput, InputType: "email"}
	case formschema.Phone:
		return Control{Element: ElementInput, InputType: "tel"}
	case formschema.Number:
		return Control{Element: ElementInput, InputType: "number"}
	case formschema.File:
		return Control{Element: ElementInput, InputType: "file"}
	default:
		return textInput
	}
}

// JoinChoices encodes the picks of a multiple choice control as one answer.
func JoinChoices(values []string) string {
	return strings.Join(values, ", ")
}

// SplitChoices is the inverse of JoinChoices.
func SplitChoices(answer string) []string {
	var out []string
	for _, v := range strings.Split(answer, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
