package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/installtrack/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/installtrack/internal/adapter/driven/export"
	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

func (c *cli) cartographyCmd() *cobra.Command {
	var (
		category string
		statuses []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "cartography",
		Short: "Latest delivered version of each lot, per context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := model.CartographyQuery{
				Statuses: parseStatuses(statuses),
				Category: model.CategoryCode(strings.ToUpper(category)),
			}
			carto, err := c.reportService().Cartography(cmd.Context(), q)
			if err != nil {
				return err
			}
			c.logger.Debug("cartography built", "lots", carto.Len())
			return c.writeReport(cmd, format, carto, export.CartographyTable(carto))
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category code filter (APP, BATCH, ITF, REF, INFRA)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Delivered/validated statuses to include (default: all four)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, xlsx or csv")
	return cmd
}

func (c *cli) delaysCmd() *cobra.Command {
	var (
		from, to string
		statuses []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "delays",
		Short: "Monthly on-time/late delivery counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromDate, err := parseDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseDate(to)
			if err != nil {
				return err
			}

			q := model.DelayQuery{Statuses: parseStatuses(statuses), From: fromDate, To: toDate}
			buckets, err := c.reportService().DelayStats(cmd.Context(), q, "")
			if err != nil {
				return err
			}
			return c.writeReport(cmd, format, buckets, export.DelayTable(buckets))
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First delivery date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last delivery date to include (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Delivered/validated statuses to include (default: all four)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, xlsx or csv")
	return cmd
}

func (c *cli) installationsCmd() *cobra.Command {
	var (
		mantis   string
		statuses []string
	)

	cmd := &cobra.Command{
		Use:   "installations",
		Short: "Installations with their lots, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := model.ExportQuery{Mantis: mantis, Statuses: parseStatuses(statuses)}
			installs, err := c.reportService().Installations(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.writeReport(cmd, "json", installs, export.Table{})
		},
	}

	cmd.Flags().StringVar(&mantis, "mantis", "", "Only export this Mantis ticket")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Statuses to include (default: all)")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sqliteadapter.RunMigrations(c.db.Writer); err != nil {
				return err
			}
			version, _, err := sqliteadapter.SchemaVersion(c.db.Writer)
			if err != nil {
				return err
			}
			c.logger.Info("migrations complete", "path", c.db.Path(), "schema_version", version)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return err
		},
	}
}
