package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mbolis/recruit/model"
)

func (c *cli) applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Follow and review applications",
	}

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your own applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.myApplications(cmd.Context())
		},
	}

	var (
		society int
		status  string
		page    int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List the applications sent to a society",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := model.Status(status)
			if s != "" && !s.Valid() {
				return fmt.Errorf("invalid status %q", status)
			}
			return c.societyApplications(cmd.Context(), society, s, page)
		},
	}
	list.Flags().IntVar(&society, "society", 0, "society id (default: the society you lead)")
	list.Flags().StringVar(&status, "status", "", "only show applications with this status")
	list.Flags().IntVar(&page, "page", 1, "page number")

	setStatus := &cobra.Command{
		Use:   "status <application-id> <pending|shortlisted|accepted|rejected>",
		Short: "Change the status of an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid application id %q", args[0])
			}
			s := model.Status(args[1])
			if !s.Valid() {
				return fmt.Errorf("invalid status %q", args[1])
			}
			return c.setStatus(cmd.Context(), id, s)
		},
	}

	cmd.AddCommand(mine, list, setStatus)
	return cmd
}

func (c *cli) myApplications(ctx context.Context) error {
	var apps []model.Application
	err := c.authed(ctx, func() (err error) {
		apps, err = c.client.MyApplications(ctx)
		return
	})
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		return c.info(ctx, "You have not applied to any society yet.")
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOCIETY\tFORM\tSTATUS\tSUBMITTED")
	for _, a := range apps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.SocietyName, a.FormTitle, a.Status, a.SubmittedAt.Format("2006-01-02"))
	}
	tw.Flush()
	return c.info(ctx, "%s", bytes.TrimRight(buf.Bytes(), "\n"))
}

func (c *cli) societyApplications(ctx context.Context, society int, status model.Status, page int) error {
	return c.authed(ctx, func() error {
		if society == 0 {
			s, err := c.client.MySociety(ctx)
			if err != nil {
				return err
			}
			society = s.ID
		}

		res, err := c.client.SocietyApplications(ctx, society, status, page)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		st := res.Statistics
		fmt.Fprintf(&buf, "%d applications: %d pending, %d shortlisted, %d accepted, %d rejected\n",
			st.Total, st.Pending, st.Shortlisted, st.Accepted, st.Rejected)
		tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tAPPLICANT\tEMAIL\tFORM\tSTATUS")
		for _, a := range res.Applications {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.UserName, a.UserEmail, a.FormTitle, a.Status)
		}
		tw.Flush()
		return c.info(ctx, "%s", bytes.TrimRight(buf.Bytes(), "\n"))
	})
}

func (c *cli) setStatus(ctx context.Context, id int, status model.Status) error {
	var app model.Application
	err := c.authed(ctx, func() (err error) {
		app, err = c.client.UpdateApplicationStatus(ctx, id, status)
		return
	})
	if err != nil {
		return err
	}
	return c.info(ctx, "Application %d is now %s", app.ID, app.Status)
}
