package renderer

import (
	"fmt"

	"github.com/mbolis/recruit/model"
)

// FieldView is everything a template needs to draw one question.
type FieldView struct {
	Number      int
	QuestionID  int
	ID          string
	Name        string
	Label       string
	Placeholder string
	Required    bool
	Control     Control
	Value       string
	Options     []OptionView
}

type OptionView struct {
	Value    string
	Selected bool
}

// InputName is the form field name used for a question in HTML forms.
func InputName(questionID int) string {
	return fmt.Sprintf("q_%d", questionID)
}

// Fields builds the views for a form's questions, in order, filled with the
// given answers.
func Fields(form *model.Form, responses model.Responses) []FieldView {
	if form == nil {
		return nil
	}
	views := make([]FieldView, len(form.Questions))
	for i, q := range form.Questions {
		ctl := ControlFor(q.Type)
		value := responses[q.ID]
		v := FieldView{
			Number:      i + 1,
			QuestionID:  q.ID,
			ID:          fmt.Sprintf("question-%d", q.ID),
			Name:        InputName(q.ID),
			Label:       q.Text,
			Placeholder: q.Placeholder,
			Required:    q.IsRequired,
			Control:     ctl,
			Value:       value,
		}
		if ctl.Choices() {
			picked := map[string]bool{}
			if ctl.Multiple() {
				for _, c := range SplitChoices(value) {
					picked[c] = true
				}
			} else {
				picked[value] = true
			}
			for _, opt := range q.OptionList() {
				v.Options = append(v.Options, OptionView{Value: opt, Selected: picked[opt]})
			}
		}
		views[i] = v
	}
	return views
}

// Fields is the view of the session's current form and answers.
func (s *Session) Fields() []FieldView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Fields(s.form, s.responses)
}
