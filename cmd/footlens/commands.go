package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"footlens/internal/app"
	"footlens/internal/config"
	"footlens/internal/dataprocessing"
	apperrors "footlens/internal/errors"
	"footlens/internal/exporter"
	"footlens/internal/infrastructure"
	"footlens/internal/services"
	"footlens/internal/validation"
	"footlens/pkg/contracts/domain"
)

// DefaultAugmentedFile names the augmented table written by process
const DefaultAugmentedFile = "player_injuries_augmented.csv"

func serveCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the injury table and serve the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApplication(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides server.port")
	return cmd
}

// loadSnapshot validates and preprocesses the configured injury table
func loadSnapshot(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dataprocessing.Snapshot, *config.Paths, error) {
	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, nil, err
	}
	if err := validation.NewFileValidator(logger).ValidateDataFile(paths.DataFile); err != nil {
		return nil, nil, apperrors.NewLoadError(paths.DataFile, err)
	}
	snap, err := dataprocessing.Load(ctx, paths.DataFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return snap, paths, nil
}

func printWarnings(w io.Writer, warnings []dataprocessing.Warning) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func processCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Write the augmented injury table with every derived column as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			snap, paths, err := loadSnapshot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), snap.Warnings())

			writer := exporter.NewCSVWriter(paths, logger)
			if err := exporter.NewTableExporter(writer, nil).ExportTable(ctx, snap.Records(), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d rows from %s\n", snap.Len(), paths.DataFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", DefaultAugmentedFile, "output CSV; relative paths land in the export directory")
	return cmd
}

// exportFormats maps --format values to output file extensions
var exportFormats = map[string]string{
	"xlsx": validation.ExtXLSX,
	"csv":  validation.ExtCSV,
}

// filterFlags collects the dashboard filter from repeatable flags
type filterFlags struct {
	req validation.FilterRequest
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.req.Seasons, "season", nil, "season to include, e.g. 2020/21 (repeatable)")
	cmd.Flags().StringSliceVar(&f.req.Severities, "severity", nil, "severity to include: Minor, Moderate, Severe (repeatable)")
	cmd.Flags().StringSliceVar(&f.req.Positions, "position", nil, "position to include (repeatable)")
	cmd.Flags().StringSliceVar(&f.req.AgeGroups, "age-group", nil, "age group to include: Young, Prime, Experienced, Veteran (repeatable)")
	cmd.Flags().StringSliceVar(&f.req.Teams, "team", nil, "team to include (repeatable)")
	cmd.Flags().StringSliceVar(&f.req.Players, "player", nil, "player to include (repeatable)")
}

// filter validates the flags and converts them into a service filter
func (f *filterFlags) filter(logger *slog.Logger) (services.Filter, error) {
	if err := validation.New(logger).Struct(f.req); err != nil {
		return services.Filter{}, err
	}
	return services.Filter{
		Seasons:    f.req.Seasons,
		Severities: f.req.Severities,
		Positions:  f.req.Positions,
		AgeGroups:  f.req.AgeGroups,
		Teams:      f.req.Teams,
		Players:    f.req.Players,
	}, nil
}

func newDashboard(cfg *config.Config, paths *config.Paths, snap *dataprocessing.Snapshot, logger *slog.Logger) *services.DashboardService {
	return services.NewDashboardService(snap, services.DashboardConfig{
		Exporter:    exporter.NewXLSXExporter(cfg.Export.SheetName, logger, nil),
		Tables:      exporter.NewTableExporter(exporter.NewCSVWriter(paths, logger), nil),
		PreviewRows: cfg.Export.PreviewRows,
		TopDrops:    cfg.Export.TopDrops,
	}, logger)
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		columns []string
		out     string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered injury rows to an Excel workbook or CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			ext, ok := exportFormats[format]
			if !ok {
				return fmt.Errorf("unsupported export format %q, want xlsx or csv", format)
			}
			f, err := filters.filter(logger)
			if err != nil {
				return err
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			snap, paths, err := loadSnapshot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), snap.Warnings())

			target := strings.TrimSuffix(paths.ExportFile, filepath.Ext(paths.ExportFile)) + ext
			if out != "" {
				target = config.ResolvePath(paths.ExportDir, out)
			}
			if err := validation.NewFileValidator(logger).ValidateOutputFile(target, ext); err != nil {
				return err
			}

			dashboard := newDashboard(cfg, paths, snap, logger)
			var n int
			if ext == validation.ExtCSV {
				n, err = dashboard.ExportCSVFile(ctx, f, columns, target)
			} else {
				n, err = dashboard.ExportFile(ctx, f, columns, target)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, target)
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringSliceVar(&columns, "column", nil, fmt.Sprintf("column to export (repeatable, default %d export columns)", len(domain.ExportColumns)))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; relative paths land in the export directory")
	cmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx or csv")
	return cmd
}

func statsCmd(opts *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		out     string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print descriptive statistics of the filtered injury rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			f, err := filters.filter(logger)
			if err != nil {
				return err
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			snap, paths, err := loadSnapshot(ctx, cfg, logger)
			if err != nil {
				return err
			}

			summaries, err := newDashboard(cfg, paths, snap, logger).Stats(ctx, f)
			if err != nil {
				return err
			}
			writeSummaries(cmd.OutOrStdout(), summaries)

			if out != "" {
				writer := exporter.NewCSVWriter(paths, logger)
				if err := exporter.NewTableExporter(writer, nil).ExportSummaries(ctx, summaries, out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write the statistics as CSV")
	return cmd
}

func writeSummaries(w io.Writer, summaries []dataprocessing.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Column, s.Count,
			round(s.Mean), round(s.Std), round(s.Min),
			round(s.Q25), round(s.Median), round(s.Q75), round(s.Max))
	}
	tw.Flush()
}

func round(v domain.NullFloat) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Value)
}
