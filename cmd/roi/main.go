// roi is the one-shot batch pipeline: generate synthetic datasets, run
// last-touch attribution, aggregate churn/LTV/ROI and sweep attribution
// windows, all over CSV files.
package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	attrCsv "content-roi-service/internal/attribution/adapters/csv"
	attrDomain "content-roi-service/internal/attribution/core/domain"
	attrUsecase "content-roi-service/internal/attribution/core/usecase"
	"content-roi-service/internal/generator"
	"content-roi-service/internal/logging"
	metricsCsv "content-roi-service/internal/metrics/adapters/csv"
	metricsRepoPg "content-roi-service/internal/metrics/adapters/postgres"
	metricsDomain "content-roi-service/internal/metrics/core/domain"
	metricsPorts "content-roi-service/internal/metrics/core/ports"
	metricsUsecase "content-roi-service/internal/metrics/core/usecase"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var log zerolog.Logger

func main() {
	var logLevel string
	var pretty bool

	root := &cobra.Command{
		Use:   "roi",
		Short: "Content ROI batch pipeline",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(logLevel, pretty)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&pretty, "pretty", true, "human-readable log output")

	root.AddCommand(generateCmd(), attributeCmd(), aggregateCmd(), sensitivityCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate seeded synthetic catalog and user datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			g := generator.New(cfg)
			catalog := g.Catalog()
			users := g.UserBase(catalog)

			catalogPath := filepath.Join(outDir, "content_catalog.csv")
			if err := attrCsv.WriteCatalog(catalogPath, catalog); err != nil {
				return err
			}
			usersPath := filepath.Join(outDir, "user_base.csv")
			sink := attrCsv.NewEnrichedSink(usersPath)
			if err := sink.WriteUsers(context.Background(), users); err != nil {
				return err
			}

			log.Info().Int("shows", len(catalog)).Str("path", catalogPath).Msg("wrote catalog")
			log.Info().Int("users", len(users)).Str("path", usersPath).Msg("wrote user base")
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Shows, "shows", cfg.Shows, "number of shows")
	cmd.Flags().IntVar(&cfg.Users, "users", cfg.Users, "number of users")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().StringVar(&outDir, "out-dir", "data", "output directory")
	return cmd
}

func attributeCmd() *cobra.Command {
	var catalogPath, usersPath, outPath, policy string
	var window int

	cmd := &cobra.Command{
		Use:   "attribute",
		Short: "Run last-touch attribution and write the enriched user base",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := attrCsv.NewDatasetSource(catalogPath, usersPath)
			sink := attrCsv.NewEnrichedSink(outPath)
			uc := attrUsecase.NewAttributeUseCase(source, sink)

			out, err := uc.Execute(context.Background(), attrUsecase.AttributeInput{
				WindowDays: window,
				Policy:     attrDomain.InvalidRowPolicy(policy),
			})
			if err != nil {
				return err
			}

			logRejected(out.Rejected)
			log.Info().
				Int("window_days", window).
				Int("users", len(out.Users)).
				Int("attributed", out.Attributed).
				Int("organic", out.Organic).
				Str("path", outPath).
				Msg("attribution complete")
			return nil
		},
	}
	addDatasetFlags(cmd, &catalogPath, &usersPath, &policy)
	cmd.Flags().IntVar(&window, "window", 7, "attribution window in days")
	cmd.Flags().StringVar(&outPath, "out", "data/user_attribution_enriched.csv", "enriched output path")
	return cmd
}

func aggregateCmd() *cobra.Command {
	var catalogPath, usersPath, outDir, policy, dsn string
	var window int

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Compute churn, LTV and ROI result tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := attrCsv.NewDatasetSource(catalogPath, usersPath)

			var sink metricsPorts.ResultSinkPort = metricsCsv.NewReportWriter(outDir)
			if dsn != "" {
				db, err := sql.Open("postgres", dsn)
				if err != nil {
					return err
				}
				defer db.Close()
				repo := metricsRepoPg.NewReportRepository(metricsRepoPg.NewSQLDB(db))
				if err := repo.EnsureSchema(context.Background()); err != nil {
					return err
				}
				sink = multiSink{metricsCsv.NewReportWriter(outDir), repo}
			}

			uc := metricsUsecase.NewReportUseCase(source, sink)
			report, err := uc.Execute(context.Background(), metricsUsecase.ReportInput{
				WindowDays: window,
				Policy:     attrDomain.InvalidRowPolicy(policy),
			})
			if err != nil {
				return err
			}

			logRejectedRecords(report.Rejected)
			log.Info().
				Str("run_id", report.RunID).
				Int("window_days", report.WindowDays).
				Int("months", len(report.Churn)).
				Int("genres", len(report.GenreLTV)).
				Int("shows", len(report.ShowROI)).
				Str("dir", outDir).
				Msg("aggregation complete")
			return nil
		},
	}
	addDatasetFlags(cmd, &catalogPath, &usersPath, &policy)
	cmd.Flags().IntVar(&window, "window", 7, "attribution window in days")
	cmd.Flags().StringVar(&outDir, "out-dir", "results", "result tables directory")
	cmd.Flags().StringVar(&dsn, "postgres-dsn", "", "also persist results to this Postgres database")
	return cmd
}

func sensitivityCmd() *cobra.Command {
	var catalogPath, usersPath, outPath, policy string
	var windows []int

	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Sweep attribution windows and compare per-genre economics",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := attrCsv.NewDatasetSource(catalogPath, usersPath)
			uc := metricsUsecase.NewSensitivityUseCase(source)

			outcomes, rejected, err := uc.Execute(context.Background(), metricsUsecase.SensitivityInput{
				Windows: windows,
				Policy:  attrDomain.InvalidRowPolicy(policy),
			})
			if err != nil {
				return err
			}
			if err := metricsCsv.WriteSweep(outPath, outcomes); err != nil {
				return err
			}

			logRejectedRecords(rejected)

			for _, o := range outcomes {
				log.Info().
					Int("window_days", o.WindowDays).
					Int("attributed", o.AttributedUsers).
					Str("attribution_rate", o.AttributionRate.String()).
					Msg("sweep step")
			}
			log.Info().Str("path", outPath).Msg("sensitivity analysis complete")
			return nil
		},
	}
	addDatasetFlags(cmd, &catalogPath, &usersPath, &policy)
	cmd.Flags().IntSliceVar(&windows, "windows", metricsUsecase.DefaultWindows, "window sizes to sweep")
	cmd.Flags().StringVar(&outPath, "out", "results/sensitivity.csv", "sweep output path")
	return cmd
}

func addDatasetFlags(cmd *cobra.Command, catalogPath, usersPath, policy *string) {
	cmd.Flags().StringVar(catalogPath, "catalog", "data/content_catalog.csv", "content catalog CSV")
	cmd.Flags().StringVar(usersPath, "users", "data/user_base.csv", "user base CSV")
	cmd.Flags().StringVar(policy, "policy", "fail", "invalid-row policy (fail|skip)")
}

func logRejected(report attrDomain.ValidationReport) {
	for _, rej := range report {
		log.Warn().
			Str("record_id", rej.RecordID).
			Str("field", rej.Field).
			Str("reason", rej.Reason).
			Msg("rejected row")
	}
}

func logRejectedRecords(records []metricsDomain.RejectedRecord) {
	for _, rec := range records {
		log.Warn().
			Str("record_id", rec.RecordID).
			Str("field", rec.Field).
			Str("reason", rec.Reason).
			Msg("rejected row")
	}
}

// multiSink fans a report out to several sinks; the CSV sink runs first so
// a database failure still leaves the file output usable.
type multiSink []metricsPorts.ResultSinkPort

func (m multiSink) WriteReport(ctx context.Context, report *metricsDomain.Report) error {
	for _, s := range m {
		if err := s.WriteReport(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
