package cli

import (
	"context"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/config"
	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/logger"
)

// NewReportCmd prints the statistics report for a date range as JSON.
func NewReportCmd(configPath *string) *cobra.Command {
	var rng domain.DateRange
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate the event log for a date range and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), *configPath, rng, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&rng.Start, "start", "", "first date key, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&rng.End, "end", "", "last date key, YYYY-MM-DD (inclusive)")
	return cmd
}

func runReport(ctx context.Context, configPath string, rng domain.DateRange, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// stdout carries the report
	logger.InitWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if err := app.ValidateRange(rng); err != nil {
		return err
	}

	eventLog, closeLog, err := openEventLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	report, err := app.NewStatsService(eventLog, cfg.Stats.Workers).Report(ctx, rng)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
