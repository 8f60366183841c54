package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"carlog/internal/backend"
	"carlog/internal/core"
	"carlog/internal/services"
	"carlog/internal/storage"
)

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer, header string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func carsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cars",
		Short: "List cars in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			journal, err := a.open()
			if err != nil {
				return err
			}
			cars, err := journal.ListCars(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), cars)
			}
			rows := make([][]string, 0, len(cars))
			for _, c := range cars {
				rows = append(rows, []string{c.ID, c.Make, c.Model, c.Year, optInt(c.CustomIntervalKm), optInt(c.CustomIntervalMonths)})
			}
			return table(cmd.OutOrStdout(), "ID\tMAKE\tMODEL\tYEAR\tCUSTOM KM\tCUSTOM MONTHS", rows)
		},
	}
}

func nextServiceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next-service <car-id>",
		Short: "Project a car's next planned service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := a.open()
			if err != nil {
				return err
			}
			info, ok, err := journal.NextService(cmd.Context(), args[0], a.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "No planned service recorded yet; nothing to project from.")
				return nil
			}
			status := services.ClassifyService(info)
			if a.asJSON {
				return a.printJSON(out, struct {
					core.NextServiceInfo
					Status services.ServiceStatus `json:"status"`
				}{info, status})
			}
			return table(out, "DUE KM\tDUE DATE\tKM LEFT\tDAYS LEFT\tSTATUS", [][]string{{
				strconv.Itoa(info.ByMileageKm), info.ByDate.String(), optInt(info.KmLeft), optInt(info.DaysLeft), string(status),
			}})
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "stats <car-id>",
		Short: "Summarize a car's spending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if months < 1 || months > 120 {
				return fmt.Errorf("--months must be between 1 and 120, got %d", months)
			}
			journal, err := a.open()
			if err != nil {
				return err
			}
			summary, err := journal.Stats(cmd.Context(), args[0], months, a.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.printJSON(out, summary)
			}
			costPerKm := "-"
			if summary.CostPerKm != nil {
				costPerKm = strconv.FormatFloat(*summary.CostPerKm, 'f', 2, 64)
			}
			if err := table(out, "TOTAL\tPLANNED\tUNPLANNED\tREFUELING\tAVG/MONTH\tAVG/YEAR\tCOST/KM\tRECORDS", [][]string{{
				summary.TotalSpent.String(), summary.PlannedTotal.String(), summary.UnplannedTotal.String(),
				summary.RefuelingTotal.String(), summary.AvgPerMonth.String(), summary.AvgPerYear.String(),
				costPerKm, strconv.Itoa(summary.RecordCount),
			}}); err != nil {
				return err
			}
			fmt.Fprintln(out)
			rows := make([][]string, 0, len(summary.Monthly))
			for _, m := range summary.Monthly {
				rows = append(rows, []string{m.Key, m.Total.String()})
			}
			return table(out, "MONTH\tTOTAL", rows)
		},
	}
	cmd.Flags().IntVar(&months, "months", services.DefaultStatsMonths, "trailing window in months")
	return cmd
}

func intervalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "intervals [make]",
		Short: "Show the service interval catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := a.open()
			if err != nil {
				return err
			}
			var entries []core.CatalogEntry
			if len(args) == 1 {
				e, err := journal.ServiceIntervalForMake(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries = []core.CatalogEntry{e}
			} else if entries, err = journal.ServiceIntervals(cmd.Context()); err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Make, strconv.Itoa(e.IntervalKm), strconv.Itoa(e.IntervalMonths), strings.Join(e.Models, ", ")})
			}
			return table(cmd.OutOrStdout(), "MAKE\tKM\tMONTHS\tMODELS", rows)
		},
	}
}

func remindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder sweep and list overdue cars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.open(); err != nil {
				return err
			}
			p := services.NewReminderProcessor(a.repo, services.ReminderProcessorConfig{Concurrency: a.cfg.ReminderConcurrency})
			if _, err := p.ProcessAll(cmd.Context(), a.now()); err != nil {
				return err
			}
			overdue, err := a.repo.ListOverdueReminders(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), overdue)
			}
			rows := make([][]string, 0, len(overdue))
			for _, r := range overdue {
				rows = append(rows, []string{r.CarID, strconv.Itoa(r.ByMileageKm), r.ByDate.String(), optInt(r.KmLeft), optInt(r.DaysLeft)})
			}
			return table(cmd.OutOrStdout(), "CAR\tDUE KM\tDUE DATE\tKM LEFT\tDAYS LEFT", rows)
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Re-export every record to the configured Google Sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.SheetsEnabled() {
				return fmt.Errorf("GOOGLE_SPREADSHEET_ID is not set")
			}
			if _, err := a.open(); err != nil {
				return err
			}
			sinkCfg, err := backend.FromAppConfig(a.cfg)
			if err != nil {
				return err
			}
			sink, err := backend.NewFactory(a.logger).CreateSink(cmd.Context(), sinkCfg)
			if err != nil {
				return err
			}
			n, err := services.NewExportProcessor(a.repo, sink, services.DefaultExportProcessorConfig()).ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records\n", n)
			return nil
		},
	}
}

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(a.dbPath); err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), a.dbPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Revert migrations (default: 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			if err := storage.RollbackMigrations(a.dbPath, steps); err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), a.dbPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout(), a.dbPath)
		},
	})
	return cmd
}

func printVersion(w io.Writer, dbPath string) error {
	v, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "schema version %d", v)
	if dirty {
		fmt.Fprint(w, " (dirty)")
	}
	fmt.Fprintln(w)
	return nil
}
