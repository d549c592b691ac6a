package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexanderjulianmartinez/peopledb/internal/drift"
	"github.com/alexanderjulianmartinez/peopledb/internal/people"
	"github.com/alexanderjulianmartinez/peopledb/internal/web"
	"github.com/alexanderjulianmartinez/peopledb/pkg/types"
)

func newRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:           "peopledb",
		Short:         "Keep a list of people in a SQL database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "Path to config.yaml")
	cmd.PersistentFlags().StringVar(&o.dsn, "db", "", "database dsn, overrides database.dsn from the config")
	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "use debug log level")

	cmd.AddCommand(
		newServeCmd(o),
		newCheckCmd(o),
		newListCmd(o),
		newAddCmd(o),
		newEditCmd(o),
		newDeleteCmd(o),
		newQueryCmd(o),
		newExecCmd(o),
	)
	return cmd
}

// withApp opens the app for the duration of fn. Logs go to stderr so
// command output stays clean. A failure to close is returned when fn
// itself succeeded.
func withApp(cmd *cobra.Command, o *options, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := o.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeInto(&err, a)
	return fn(ctx, a)
}

func closeInto(err *error, c io.Closer) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func newServeCmd(o *options) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the people list and edit form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				list, err := a.listScreen(ctx)
				if err != nil {
					return err
				}
				defer list.Close()

				info, err := a.db.Inspect(ctx, people.Table)
				if err != nil {
					return err
				}
				report := drift.Validate(people.ExpectedColumns(a.db.Dialect()), info)
				for _, iss := range report.Issues {
					a.log.WithFields(logrus.Fields{
						"table":    iss.Table,
						"column":   iss.Column,
						"severity": iss.Severity,
					}).Warn(iss.Message)
				}
				if report.Blocking() {
					return fmt.Errorf("table %s does not match the expected schema, run check for details", people.Table)
				}

				srv, err := web.New(list, a.db, a.log)
				if err != nil {
					return err
				}
				addr := a.cfg.HTTP.Listen
				if listen != "" {
					addr = listen
				}
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides http.listen from the config")
	return cmd
}

func newCheckCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare the people table with the expected schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				info, err := a.db.Inspect(ctx, people.Table)
				if err != nil {
					return err
				}
				report := drift.Validate(people.ExpectedColumns(a.db.Dialect()), info)
				printReport(cmd.OutOrStdout(), string(a.db.Dialect()), report)
				if report.Blocking() {
					return errors.New("schema check failed")
				}
				return nil
			})
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				list, err := a.listScreen(ctx)
				if err != nil {
					return err
				}
				defer list.Close()

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tAGE")
				for _, p := range list.People() {
					fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.FullName(), p.Age)
				}
				return tw.Flush()
			})
		},
	}
}

func newAddCmd(o *options) *cobra.Command {
	var first, last, age string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				list, err := a.listScreen(ctx)
				if err != nil {
					return err
				}
				defer list.Close()

				form := list.NewForm()
				form.FirstName, form.LastName, form.Age = first, last, age
				p, err := form.Save(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&age, "age", "", "age in years")
	cmd.MarkFlagRequired("age")
	return cmd
}

func newEditCmd(o *options) *cobra.Command {
	var id int64
	var first, last, age string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change fields of an existing person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				list, err := a.listScreen(ctx)
				if err != nil {
					return err
				}
				defer list.Close()

				form, err := list.EditForm(ctx, id)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("first") {
					form.FirstName = first
				}
				if cmd.Flags().Changed("last") {
					form.LastName = last
				}
				if cmd.Flags().Changed("age") {
					form.Age = age
				}
				if _, err := form.Save(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "id of the person to edit")
	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&age, "age", "", "age in years")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newDeleteCmd(o *options) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				list, err := a.listScreen(ctx)
				if err != nil {
					return err
				}
				defer list.Close()

				if err := list.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "id of the person to delete")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newQueryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print the result table",
		Long: `Run a free-form query against the database and print every row.
The statement is passed to the database as-is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				res, err := a.db.Query(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newExecCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a statement that returns no rows",
		Long: `Run a free-form insert, update, delete or DDL statement and print the
affected row count and last inserted row id. The statement is passed to
the database as-is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				out, err := a.db.Exec(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "affected rows: %d\nlast insert id: %d\n", out.AffectedRows, out.LastInsertID)
				return nil
			})
		},
	}
}

func printResult(w io.Writer, res *types.QueryResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			if row[col] == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = types.String(row, col)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d rows)\n", res.Len())
	return nil
}

func printReport(w io.Writer, dialect string, report *drift.Report) {
	fmt.Fprintf(w, "Database: %s\n", dialect)
	fmt.Fprintf(w, "Table: %s (%d rows)\n", report.Table, report.RowCount)
	if len(report.Issues) == 0 {
		fmt.Fprintln(w, "Schema OK")
		return
	}
	for _, iss := range report.Issues {
		target := iss.Table
		if iss.Column != "" {
			target += "." + iss.Column
		}
		line := fmt.Sprintf("[%s] %s: %s", iss.Severity, target, iss.Message)
		if iss.FromType != "" || iss.ToType != "" {
			line += fmt.Sprintf(" (expected %s, found %s)", iss.FromType, iss.ToType)
		}
		fmt.Fprintln(w, line)
	}
}
