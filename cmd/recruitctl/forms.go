package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mbolis/recruit/apiclient"
	"github.com/mbolis/recruit/formschema"
	"github.com/mbolis/recruit/model"
	"github.com/mbolis/recruit/prompt"
	"github.com/mbolis/recruit/renderer"
	"github.com/mbolis/recruit/tui"
)

func (c *cli) formsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Browse, build and fill recruitment forms",
	}

	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List published forms, marking the ones not seen before",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.listForms(cmd.Context(), page)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")

	show := &cobra.Command{
		Use:   "show <form-id>",
		Short: "Show the questions of a published form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid form id %q", args[0])
			}
			return c.showForm(cmd.Context(), id)
		},
	}

	var (
		from    string
		title   string
		publish bool
		batch   bool
	)
	build := &cobra.Command{
		Use:   "build",
		Short: "Build a new form for your society",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.buildForm(cmd.Context(), from, title, publish, batch)
		},
	}
	build.Flags().StringVar(&from, "from", "", "YAML schema to start from")
	build.Flags().StringVar(&title, "title", "", "form title")
	build.Flags().BoolVar(&publish, "publish", false, "publish the form right away")
	build.Flags().BoolVar(&batch, "batch", false, "create the form from --from without prompting")

	apply := &cobra.Command{
		Use:   "apply <form-id>",
		Short: "Fill in and submit a published form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid form id %q", args[0])
			}
			return c.applyForm(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, show, build, apply)
	return cmd
}

func (c *cli) listForms(ctx context.Context, page int) error {
	forms, err := c.client.PublishedForms(ctx, page, 0)
	if err != nil {
		return err
	}
	if len(forms.Forms) == 0 {
		return c.info(ctx, "No published forms.")
	}

	ids := make([]int, len(forms.Forms))
	for i, f := range forms.Forms {
		ids[i] = f.ID
	}
	store := c.seen()
	var fresh map[int]bool
	if c.state.Email != "" {
		unseen, err := store.Unseen(c.state.Email, ids)
		if err != nil {
			return err
		}
		fresh = map[int]bool{}
		for _, id := range unseen {
			fresh[id] = true
		}
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tSOCIETY\tTITLE\tAPPLICATIONS")
	for _, f := range forms.Forms {
		mark := ""
		if fresh[f.ID] {
			mark = "new"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n", mark, f.ID, f.SocietyName, f.Title, f.ApplicationCount)
	}
	tw.Flush()
	fmt.Fprintf(&buf, "page %d of %d", forms.Pagination.Page, forms.Pagination.Pages)

	if err := c.info(ctx, "%s", buf.String()); err != nil {
		return err
	}
	if c.state.Email != "" {
		return store.Mark(c.state.Email, ids...)
	}
	return nil
}

func (c *cli) showForm(ctx context.Context, id int) error {
	f, err := c.client.GetForm(ctx, id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s)\n", f.Title, f.SocietyName)
	for i, q := range f.Questions {
		req := ""
		if q.IsRequired {
			req = " *"
		}
		fmt.Fprintf(&buf, "%d. %s%s [%s]\n", i+1, q.Text, req, q.Type)
		if ctl := renderer.ControlFor(q.Type); ctl.Choices() {
			for _, o := range q.OptionList() {
				fmt.Fprintf(&buf, "   - %s\n", o)
			}
		}
	}
	if err := c.info(ctx, "%s", bytes.TrimRight(buf.Bytes(), "\n")); err != nil {
		return err
	}
	if c.state.Email != "" {
		return c.seen().Mark(c.state.Email, id)
	}
	return nil
}

func (c *cli) buildForm(ctx context.Context, from, title string, publish, batch bool) error {
	var schema formschema.Schema
	if from != "" {
		data, err := os.ReadFile(from)
		if err != nil {
			return err
		}
		if schema, err = formschema.ParseYAML(data); err != nil {
			return err
		}
	}

	if batch {
		if from == "" || title == "" {
			return fmt.Errorf("--batch needs --from and --title")
		}
		if err := schema.Validate(); err != nil {
			return err
		}
		schema = schema.Normalize()
	} else {
		var err error
		schema, err = tui.BuildForm(ctx, c.driver, formschema.FromSchema(schema))
		if err != nil {
			return err
		}
		if title == "" {
			title, err = c.driver.Input(ctx, prompt.InputConfig{Message: "Form title", Validator: required("a title")})
			if err != nil {
				return err
			}
		}
	}

	status := model.FormDraft
	if publish {
		status = model.FormPublished
	}

	var form model.Form
	err := c.authed(ctx, func() (err error) {
		form, err = c.client.CreateForm(ctx, apiclient.NewForm{Title: title, Status: status, Fields: schema})
		return
	})
	if err != nil {
		return err
	}
	return c.info(ctx, "Created %s form %d (%s) with %d questions", form.Status, form.ID, form.Title, len(form.Questions))
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("please enter %s", what)
		}
		return nil
	}
}

func (c *cli) applyForm(ctx context.Context, id int) error {
	return c.authed(ctx, func() error {
		session := renderer.NewSession(c.client)
		if err := session.Load(ctx, id); err != nil {
			return err
		}
		app, err := tui.FillForm(ctx, c.driver, session)
		if err != nil {
			return err
		}
		return c.info(ctx, "Application %d is %s", app.ID, app.Status)
	})
}
