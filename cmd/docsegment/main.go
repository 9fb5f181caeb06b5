// Command docsegment runs the doctor-segmentation pipeline: four raw
// tables in, one labeled per-doctor table out.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/praxa/docsegment/internal/config"
	"github.com/praxa/docsegment/internal/pipeline"
	"github.com/praxa/docsegment/internal/version"
)

var (
	cfgFile  string
	logLevel string

	flagCfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docsegment",
	Short: "Segment doctors into behavioral groups from four raw tables",
	Long: `docsegment is a one-shot analytical pipeline. It loads the doctors,
orders, complaints, and instructions tables, cleans and merges them into
one feature row per doctor, imputes missing satisfaction scores, reduces
the feature space with kernel PCA, and partitions the doctors into
segments via Ward-linkage clustering. The output is the merged table with
an integer segment label per doctor.

Configuration comes from DOCSEG_* environment variables, an optional
config file (--config), and flags, in increasing order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.Info().String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (json or yaml)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")

	rootCmd.Flags().StringVar(&flagCfg.DoctorsPath, "doctors", "", "doctors table (csv)")
	rootCmd.Flags().StringVar(&flagCfg.OrdersPath, "orders", "", "orders table (csv)")
	rootCmd.Flags().StringVar(&flagCfg.ComplaintsPath, "complaints", "", "complaints table (csv)")
	rootCmd.Flags().StringVar(&flagCfg.InstructionsPath, "instructions", "", "instructions table (csv)")
	rootCmd.Flags().StringVarP(&flagCfg.OutputPath, "output", "o", "", "output path for the labeled table")
	rootCmd.Flags().StringVar(&flagCfg.OutputFormat, "format", "", "output format (csv, parquet)")
	rootCmd.Flags().StringVar(&flagCfg.DedupPolicy, "dedup-policy", "", "duplicate order resolution (keep-first, keep-fewest-conditions)")
	rootCmd.Flags().IntVar(&flagCfg.KNNNeighbors, "knn-neighbors", 0, "neighborhood size for satisfaction imputation")
	rootCmd.Flags().IntVar(&flagCfg.Components, "components", 0, "number of kernel principal components")
	rootCmd.Flags().IntVar(&flagCfg.ReducedClusters, "clusters", 0, "number of segments cut from the reduced-space dendrogram")
	rootCmd.Flags().Int64Var(&flagCfg.Seed, "seed", 0, "random seed for the centroid validation sweeps")
}

func run(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	result, err := pipeline.Run(cmd.Context(), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		return err
	}

	log.Info().
		Int("doctors", len(result.Rows)).
		Int("imputed", result.Imputed).
		Msg("segmentation complete")
	return nil
}

// resolveConfig layers the sources: environment, then config file, then
// explicit flags.
func resolveConfig() (config.Config, error) {
	cfg := config.LoadFromEnv()

	if cfgFile != "" {
		fileCfg, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	overlayStrings := []struct {
		value  string
		target *string
	}{
		{flagCfg.DoctorsPath, &cfg.DoctorsPath},
		{flagCfg.OrdersPath, &cfg.OrdersPath},
		{flagCfg.ComplaintsPath, &cfg.ComplaintsPath},
		{flagCfg.InstructionsPath, &cfg.InstructionsPath},
		{flagCfg.OutputPath, &cfg.OutputPath},
		{flagCfg.OutputFormat, &cfg.OutputFormat},
		{flagCfg.DedupPolicy, &cfg.DedupPolicy},
	}
	for _, o := range overlayStrings {
		if o.value != "" {
			*o.target = o.value
		}
	}
	if flagCfg.KNNNeighbors > 0 {
		cfg.KNNNeighbors = flagCfg.KNNNeighbors
	}
	if flagCfg.Components > 0 {
		cfg.Components = flagCfg.Components
	}
	if flagCfg.ReducedClusters > 0 {
		cfg.ReducedClusters = flagCfg.ReducedClusters
	}
	if flagCfg.Seed != 0 {
		cfg.Seed = flagCfg.Seed
	}

	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

// newLogger configures console logging on stderr.
func newLogger() zerolog.Logger {
	var level zerolog.Level
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.Disabled
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
