package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nulllvoid/fiscalpanel"
)

var version = "dev"

var (
	configPath string
	verbose    bool

	dataDir       string
	outputPath    string
	referenceYear int
	cutoffYear    int
	auditDB       string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fiscalpanel",
	Short: "Assemble the government-liabilities panel dataset",
	Long: `fiscalpanel builds a country x year panel of government debt,
liabilities and spending by loading the study's statistical sources,
rebasing percent-of-GDP series to a fixed reference year, merging
everything on the (country, year) key and deriving the study variables.

The run either writes the complete output CSV or fails outright.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full pipeline and write the panel CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		state := fiscalpanel.NewState()
		logger.Info("starting run",
			zap.String("run_id", state.RunID()),
			zap.String("output", cfg.OutputPath),
			zap.Int("reference_year", cfg.ReferenceYear),
			zap.Int("cutoff_year", cfg.CutoffYear),
		)

		pipeline := fiscalpanel.Assemble(cfg, logger)
		report, err := pipeline.Execute(ctx, state)
		if err != nil {
			return err
		}

		logger.Info("run complete",
			zap.String("run_id", report.RunID),
			zap.Int("rows", report.Rows),
			zap.Int("columns", report.Columns),
			zap.Int("warnings", len(report.Warnings)),
			zap.Duration("duration", report.Duration),
		)
		for _, w := range report.Warnings {
			logger.Warn("data warning", zap.String("source", w.Source), zap.String("detail", w.Message))
		}

		fmt.Printf("wrote %s: %d rows, %d columns (%d warnings)\n",
			cfg.OutputPath, report.Rows, report.Columns, len(report.Warnings))
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and their resolved locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		for _, spec := range fiscalpanel.DefaultSources() {
			join := spec.Join.String()
			if !spec.Merge {
				join = "input-only"
			}
			fmt.Printf("%-18s %-10s %s\n", spec.Name, join, spec.Location(cfg))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fiscalpanel version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fiscalpanel", version)
	},
}

// loadConfig layers flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (fiscalpanel.Config, error) {
	cfg, err := fiscalpanel.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputPath = outputPath
	}
	if cmd.Flags().Changed("reference-year") {
		cfg.ReferenceYear = referenceYear
	}
	if cmd.Flags().Changed("cutoff-year") {
		cfg.CutoffYear = cutoffYear
	}
	if cmd.Flags().Changed("audit-db") {
		cfg.AuditDB = auditDB
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fiscalpanel.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	for _, cmd := range []*cobra.Command{buildCmd, sourcesCmd} {
		cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding local source files")
		cmd.Flags().StringVar(&outputPath, "output", "", "output CSV path")
		cmd.Flags().IntVar(&referenceYear, "reference-year", 0, "GDP reference year for rebasing")
		cmd.Flags().IntVar(&cutoffYear, "cutoff-year", 0, "last year kept in the panel")
		cmd.Flags().StringVar(&auditDB, "audit-db", "", "SQLite audit database path")
	}

	rootCmd.AddCommand(buildCmd, sourcesCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
