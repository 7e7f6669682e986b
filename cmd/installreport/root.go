package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/installtrack/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/installtrack/internal/adapter/driven/export"
	"github.com/ericfisherdev/installtrack/internal/application"
	"github.com/ericfisherdev/installtrack/internal/config"
	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// cli carries the persistent flags and the resources opened for a command.
type cli struct {
	dbPath string
	locale string
	out    string

	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteadapter.DB
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "installreport",
		Short: "Generate installation reports",
		Long: `Generate installation reports from the installtrack database.

Available subcommands:
  cartography   - Latest delivered version of each lot, per context
  delays        - Monthly on-time/late delivery counts
  installations - Installations with their lots, as JSON
  migrate       - Apply pending schema migrations`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}

	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "SQLite database path (default from "+config.EnvDBPath+")")
	root.PersistentFlags().StringVar(&c.locale, "locale", "", "Locale of month labels (default from "+config.EnvLocale+")")
	root.PersistentFlags().StringVarP(&c.out, "out", "o", "", "Output file (default: stdout)")

	root.AddCommand(c.cartographyCmd())
	root.AddCommand(c.delaysCmd())
	root.AddCommand(c.installationsCmd())
	root.AddCommand(c.migrateCmd())

	return root
}

// setup loads the configuration, applies flag overrides and opens the database.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.locale != "" {
		if !application.IsSupportedLocale(c.locale) {
			return fmt.Errorf("unsupported locale %q", c.locale)
		}
		cfg.Locale = c.locale
	}
	c.cfg = cfg

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	db, err := sqliteadapter.NewDB(cmd.Context(), cfg.DBPath)
	if err != nil {
		return err
	}
	c.db = db
	c.logger.Debug("database opened", "path", cfg.DBPath)
	return nil
}

func (c *cli) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *cli) reportService() *application.ReportService {
	return application.NewReportService(sqliteadapter.NewReportRepo(c.db), c.cfg.Locale)
}

// output opens the --out file, or returns the command's stdout.
func (c *cli) output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if c.out == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(c.out)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}

// writeReport writes v as JSON, or table as xlsx or csv.
func (c *cli) writeReport(cmd *cobra.Command, format string, v any, table export.Table) (err error) {
	if format != "json" && format != "xlsx" && format != "csv" {
		return fmt.Errorf("invalid format %q: expected json, xlsx or csv", format)
	}

	w, closeOut, err := c.output(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeOut(); err == nil {
			err = closeErr
		}
	}()

	switch format {
	case "json":
		return export.WriteJSON(w, v)
	case "xlsx":
		return export.WriteXLSX(w, table)
	default:
		return export.WriteCSV(w, table)
	}
}

func parseStatuses(raw []string) []model.Status {
	var statuses []model.Status
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, model.Status(s))
		}
	}
	return statuses
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return t, nil
}
