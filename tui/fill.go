// Package tui drives the form builder and the form renderer from a terminal.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/prompt"
	"github.com/mbolis/recruit/renderer"
)

// FillForm asks every question of a loaded session, then submits. Missing
// required answers are asked again; a refused submit keeps the answers and
// offers a retry.
func FillForm(ctx context.Context, d prompt.Driver, s *renderer.Session) (*model.Application, error) {
	form := s.Form()
	if form == nil {
		return nil, renderer.ErrNotReady
	}
	if s.AlreadyApplied() {
		if err := d.Info(ctx, "You have already applied to this form."); err != nil {
			return nil, err
		}
		return nil, renderer.ErrAlreadyApplied
	}

	if err := d.Info(ctx, form.Title); err != nil {
		return nil, err
	}
	if err := askAll(ctx, d, s, form.Questions); err != nil {
		return nil, err
	}

	for {
		app, err := s.Submit(ctx)
		if err == nil {
			return app, d.Info(ctx, "Application submitted successfully.")
		}

		var (
			verr *renderer.ValidationError
			serr *renderer.SubmissionError
		)
		switch {
		case errors.As(err, &verr):
			if err := d.Info(ctx, verr.Message); err != nil {
				return nil, err
			}
			if err := askAll(ctx, d, s, verr.Missing); err != nil {
				return nil, err
			}
		case errors.As(err, &serr):
			if err := d.Info(ctx, serr.Message); err != nil {
				return nil, err
			}
			retry, err := d.Confirm(ctx, prompt.ConfirmConfig{Message: "Try again?", Default: true})
			if err != nil {
				return nil, err
			}
			if !retry {
				return nil, serr
			}
		default:
			return nil, err
		}
	}
}

func askAll(ctx context.Context, d prompt.Driver, s *renderer.Session, questions []model.Question) error {
	for _, q := range questions {
		answer, err := ask(ctx, d, q, s.Response(q.ID))
		if err != nil {
			return err
		}
		if err := s.SetResponse(q.ID, answer); err != nil {
			return err
		}
	}
	return nil
}

func ask(ctx context.Context, d prompt.Driver, q model.Question, current string) (string, error) {
	msg := q.Text
	if q.IsRequired {
		msg += " *"
	}

	ctl := renderer.ControlFor(q.Type)
	options := q.OptionList()
	switch {
	case ctl.Multiple():
		var defaults []int
		for _, v := range renderer.SplitChoices(current) {
			if i := indexOf(options, v); i >= 0 {
				defaults = append(defaults, i)
			}
		}
		picked, err := d.MultiSelect(ctx, prompt.SelectConfig{Message: msg, Options: options, Defaults: defaults})
		if err != nil {
			return "", err
		}
		values := make([]string, 0, len(picked))
		for _, i := range picked {
			values = append(values, options[i])
		}
		return renderer.JoinChoices(values), nil

	case ctl.Choices():
		if !q.IsRequired {
			options = append([]string{noAnswer}, options...)
		}
		i, err := d.Select(ctx, prompt.SelectConfig{Message: msg, Options: options, DefaultIndex: indexOf(options, current)})
		if err != nil {
			return "", err
		}
		if i < 0 || options[i] == noAnswer {
			return "", nil
		}
		return options[i], nil

	case ctl.Element == renderer.ElementTextarea:
		return d.TextArea(ctx, prompt.TextAreaConfig{Message: msg, Default: current, Help: q.Placeholder})

	case ctl.InputType == "file":
		return d.Input(ctx, prompt.InputConfig{Message: msg + " (file name)", Default: current, Help: q.Placeholder})

	default:
		answer, err := d.Input(ctx, prompt.InputConfig{Message: msg, Default: current, Help: q.Placeholder})
		return strings.TrimSpace(answer), err
	}
}

const noAnswer = "(no answer)"

func indexOf(options []string, v string) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return -1
}
