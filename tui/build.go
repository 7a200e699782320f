package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/mbolis/recruit/formschema"
	"github.com/mbolis/recruit/prompt"
)

const (
	actionAdd     = "Add field"
	actionEdit    = "Edit field"
	actionRemove  = "Remove field"
	actionPreview = "Preview"
	actionDone    = "Done"
)

// BuildForm runs the builder menu until the user is done with a schema that
// passes validation. The returned schema is normalized.
func BuildForm(ctx context.Context, d prompt.Driver, b *formschema.Builder) (formschema.Schema, error) {
	for {
		actions := []string{actionAdd}
		if b.Len() > 0 {
			actions = append(actions, actionEdit, actionRemove, actionPreview)
		}
		actions = append(actions, actionDone)

		i, err := d.Select(ctx, prompt.SelectConfig{
			Message: fmt.Sprintf("Form builder (%d fields)", b.Len()),
			Options: actions,
		})
		if err != nil {
			return nil, err
		}
		if i < 0 {
			continue
		}

		switch actions[i] {
		case actionAdd:
			err = addField(ctx, d, b)
		case actionEdit:
			var id int
			id, err = pickField(ctx, d, b, "Edit which field?")
			if err == nil && id != 0 {
				err = editField(ctx, d, b, id)
			}
		case actionRemove:
			var id int
			id, err = pickField(ctx, d, b, "Remove which field?")
			if err == nil && id != 0 {
				b.RemoveField(id)
			}
		case actionPreview:
			err = preview(ctx, d, b)
		case actionDone:
			verr := b.Validate()
			var vr *formschema.ValidationError
			if errors.As(verr, &vr) {
				err = d.Info(ctx, vr.Message)
				break
			}
			if verr != nil {
				return nil, verr
			}
			return b.Serialize().Normalize(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func addField(ctx context.Context, d prompt.Driver, b *formschema.Builder) error {
	labels := make([]string, len(formschema.FieldTypes))
	for i, t := range formschema.FieldTypes {
		labels[i] = t.Label()
	}
	i, err := d.Select(ctx, prompt.SelectConfig{Message: "Field type", Options: labels})
	if err != nil || i < 0 {
		return err
	}

	f, err := b.AddField(formschema.FieldTypes[i])
	if err != nil {
		return err
	}
	return editField(ctx, d, b, f.ID)
}

func pickField(ctx context.Context, d prompt.Driver, b *formschema.Builder, msg string) (int, error) {
	fields := b.Fields()
	titles := make([]string, len(fields))
	for i, f := range fields {
		titles[i] = fieldTitle(i, f)
	}
	i, err := d.Select(ctx, prompt.SelectConfig{Message: msg, Options: titles})
	if err != nil || i < 0 {
		return 0, err
	}
	return fields[i].ID, nil
}

func fieldTitle(i int, f formschema.FieldDescriptor) string {
	label := f.Label
	if label == "" {
		label = "(no label)"
	}
	return fmt.Sprintf("%d. %s [%s]", i+1, label, f.Type.Label())
}

// editField walks through every property of one field, the current values
// as defaults.
func editField(ctx context.Context, d prompt.Driver, b *formschema.Builder, id int) error {
	f, ok := b.Field(id)
	if !ok {
		return nil
	}

	label, err := d.Input(ctx, prompt.InputConfig{Message: "Question", Default: f.Label})
	if err != nil {
		return err
	}
	if err := b.UpdateField(id, formschema.PropLabel, label); err != nil {
		return err
	}

	if f.Type.IsTextLike() {
		placeholder, err := d.Input(ctx, prompt.InputConfig{Message: "Placeholder", Default: f.Placeholder})
		if err != nil {
			return err
		}
		if err := b.UpdateField(id, formschema.PropPlaceholder, placeholder); err != nil {
			return err
		}
	}

	required, err := d.Confirm(ctx, prompt.ConfirmConfig{Message: "Required?", Default: f.Required})
	if err != nil {
		return err
	}
	if err := b.UpdateField(id, formschema.PropRequired, required); err != nil {
		return err
	}

	if f.Type.IsChoice() {
		return editOptions(ctx, d, b, id)
	}
	return nil
}

func editOptions(ctx context.Context, d prompt.Driver, b *formschema.Builder, id int) error {
	f, _ := b.Field(id)
	if len(f.Options) > 0 {
		picked, err := d.MultiSelect(ctx, prompt.SelectConfig{Message: "Remove options", Options: f.OptionValues()})
		if err != nil {
			return err
		}
		for _, i := range picked {
			b.RemoveOption(id, f.Options[i].ID)
		}
	}

	for {
		value, err := d.Input(ctx, prompt.InputConfig{Message: "Add option (empty to finish)"})
		if err != nil {
			return err
		}
		optionID, err := b.AddOption(id, value)
		var verr *formschema.ValidationError
		switch {
		case errors.As(err, &verr):
			if err := d.Info(ctx, verr.Message); err != nil {
				return err
			}
		case err != nil:
			return err
		case optionID == "":
			return nil
		}
	}
}

func preview(ctx context.Context, d prompt.Driver, b *formschema.Builder) error {
	out, err := b.Serialize().YAML()
	if err != nil {
		return err
	}
	return d.Info(ctx, string(out))
}
