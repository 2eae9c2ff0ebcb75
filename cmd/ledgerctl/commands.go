package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-assurance/internal/database"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/services"
	"github.com/sjperalta/fintera-assurance/internal/storage"
)

var (
	importFile  string
	importMonth int
	importYear  int

	reportDate string
	reportUser string
	reportOut  string

	statsFrom string
	statsTo   string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE:  runMigrateUp,
	}
	migrateDownCmd = &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (one step by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMigrateDown,
	}

	importTermeCmd = &cobra.Command{
		Use:   "import-terme",
		Short: "Replace the terme schedule of a month from an .xlsx or .xml file",
		RunE:  runImportTerme,
	}

	markOverdueCmd = &cobra.Command{
		Use:   "mark-overdue",
		Short: "Flag unpaid credits whose due date has passed",
		RunE:  runMarkOverdue,
	}

	sessionReportCmd = &cobra.Command{
		Use:   "session-report",
		Short: "Render the cash sheet of an agent for a day",
		RunE:  runSessionReport,
	}

	creditStatsCmd = &cobra.Command{
		Use:   "credit-stats",
		Short: "Print credit statistics as JSON",
		RunE:  runCreditStats,
	}
)

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	importTermeCmd.Flags().StringVar(&importFile, "file", "", "schedule file (.xlsx or .xml)")
	importTermeCmd.Flags().IntVar(&importMonth, "month", 0, "month (1-12)")
	importTermeCmd.Flags().IntVar(&importYear, "year", 0, "year")
	_ = importTermeCmd.MarkFlagRequired("file")
	_ = importTermeCmd.MarkFlagRequired("month")
	_ = importTermeCmd.MarkFlagRequired("year")

	sessionReportCmd.Flags().StringVar(&reportDate, "date", "", "day (YYYY-MM-DD)")
	sessionReportCmd.Flags().StringVar(&reportUser, "user", "", "agent username")
	sessionReportCmd.Flags().StringVar(&reportOut, "out", "", "output PDF path (defaults to feuille_caisse_<user>_<date>.pdf)")
	_ = sessionReportCmd.MarkFlagRequired("date")
	_ = sessionReportCmd.MarkFlagRequired("user")

	creditStatsCmd.Flags().StringVar(&statsFrom, "from", "", "first creation day (YYYY-MM-DD)")
	creditStatsCmd.Flags().StringVar(&statsTo, "to", "", "last creation day (YYYY-MM-DD)")

	rootCmd.AddCommand(migrateCmd, importTermeCmd, markOverdueCmd, sessionReportCmd, creditStatsCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	steps := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		steps = n
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := database.Rollback(cfg.DatabaseURL, steps); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
	return nil
}

func runImportTerme(cmd *cobra.Command, args []string) error {
	kind := storage.ImportKind(importFile)
	if kind == "" {
		return fmt.Errorf("unsupported file %s: use .xlsx or .xml", importFile)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer f.Close()

	var result *services.ImportResult
	switch kind {
	case storage.ImportKindXLSX:
		result, err = a.svcs.Import.ImportTermeXLSX(cmd.Context(), importMonth, importYear, f, "ledgerctl")
	case storage.ImportKindXML:
		result, err = a.svcs.Import.ImportTermeXML(cmd.Context(), importMonth, importYear, f, "ledgerctl")
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d: %d imported, %d skipped\n",
		models.MonthLabel(result.Month), result.Year, result.Imported, result.Skipped)
	for _, line := range result.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), "  "+line)
	}
	return nil
}

func runMarkOverdue(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	marked, err := a.svcs.Credit.MarkOverdue(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d credit(s) marked overdue\n", marked)
	return nil
}

func runSessionReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := services.ParseDay(reportDate, a.cfg.Location())
	if err != nil {
		return fmt.Errorf("invalid --date %q: %w", reportDate, err)
	}

	report, err := a.svcs.SessionReport.Build(cmd.Context(), day, reportUser)
	if err != nil {
		return err
	}
	pdf, err := a.svcs.SessionReport.RenderPDF(report)
	if err != nil {
		return err
	}

	out := reportOut
	if out == "" {
		out = fmt.Sprintf("feuille_caisse_%s_%s.pdf", reportUser, report.Day)
	}
	if err := os.WriteFile(filepath.Clean(out), pdf, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, written to %s\n", report.Day, len(report.Entries), out)
	return nil
}

func runCreditStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var window models.DateWindow
	if statsFrom != "" {
		from, err := services.ParseDay(statsFrom, a.cfg.Location())
		if err != nil {
			return fmt.Errorf("invalid --from %q: %w", statsFrom, err)
		}
		window.From = &from
	}
	if statsTo != "" {
		to, err := services.ParseDay(statsTo, a.cfg.Location())
		if err != nil {
			return fmt.Errorf("invalid --to %q: %w", statsTo, err)
		}
		window.To = &to
	}

	stats, err := a.svcs.Credit.Statistics(cmd.Context(), nil, window)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
