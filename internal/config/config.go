// Package config provides configuration management for the segmentation
// pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output format tokens.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Default parameter values. Cluster counts default to the values the
// dendrogram inspection settled on, but stay configurable and are
// cross-checked against the elbow estimate at run time.
const (
	DefaultKNNNeighbors        = 2
	DefaultIterativeRounds     = 10
	DefaultComponents          = 5
	DefaultFullFeatureClusters = 3
	DefaultReducedClusters     = 6
	DefaultKMeansMinK          = 2
	DefaultKMeansMaxK          = 9
	DefaultSeed                = 42
)

// Config represents one pipeline run: the four input tables, the output
// destination, and every tunable parameter of the statistical stages.
type Config struct {
	// Input table paths
	DoctorsPath      string `json:"doctors_path" yaml:"doctors_path"`
	OrdersPath       string `json:"orders_path" yaml:"orders_path"`
	ComplaintsPath   string `json:"complaints_path" yaml:"complaints_path"`
	InstructionsPath string `json:"instructions_path" yaml:"instructions_path"`

	// Output
	OutputPath   string `json:"output_path" yaml:"output_path"`
	OutputFormat string `json:"output_format" yaml:"output_format"` // csv or parquet

	// Cleaning
	DedupPolicy string `json:"dedup_policy" yaml:"dedup_policy"` // keep-first or keep-fewest-conditions

	// Imputation
	KNNNeighbors    int `json:"knn_neighbors" yaml:"knn_neighbors"`
	IterativeRounds int `json:"iterative_rounds" yaml:"iterative_rounds"`

	// Dimensionality reduction
	Components  int     `json:"components" yaml:"components"`
	KernelGamma float64 `json:"kernel_gamma" yaml:"kernel_gamma"` // 0 = 1/numFeatures

	// Clustering
	FullFeatureClusters int   `json:"full_feature_clusters" yaml:"full_feature_clusters"`
	ReducedClusters     int   `json:"reduced_clusters" yaml:"reduced_clusters"`
	KMeansMinK          int   `json:"kmeans_min_k" yaml:"kmeans_min_k"`
	KMeansMaxK          int   `json:"kmeans_max_k" yaml:"kmeans_max_k"`
	Seed                int64 `json:"seed" yaml:"seed"`
}

// NewConfig creates a new configuration with default parameter values.
// Input and output paths have no defaults; they must be provided.
func NewConfig() Config {
	return Config{
		OutputFormat:        FormatCSV,
		DedupPolicy:         "keep-first",
		KNNNeighbors:        DefaultKNNNeighbors,
		IterativeRounds:     DefaultIterativeRounds,
		Components:          DefaultComponents,
		FullFeatureClusters: DefaultFullFeatureClusters,
		ReducedClusters:     DefaultReducedClusters,
		KMeansMinK:          DefaultKMeansMinK,
		KMeansMaxK:          DefaultKMeansMaxK,
		Seed:                DefaultSeed,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	for _, p := range []struct{ name, value string }{
		{"doctors_path", c.DoctorsPath},
		{"orders_path", c.OrdersPath},
		{"complaints_path", c.ComplaintsPath},
		{"instructions_path", c.InstructionsPath},
		{"output_path", c.OutputPath},
	} {
		if p.value == "" {
			return fmt.Errorf("%s must be set", p.name)
		}
	}

	if c.OutputFormat != FormatCSV && c.OutputFormat != FormatParquet {
		return fmt.Errorf("output_format must be %q or %q, got %q", FormatCSV, FormatParquet, c.OutputFormat)
	}

	if c.KNNNeighbors <= 0 {
		return fmt.Errorf("knn_neighbors must be positive, got %d", c.KNNNeighbors)
	}

	if c.IterativeRounds <= 0 {
		return fmt.Errorf("iterative_rounds must be positive, got %d", c.IterativeRounds)
	}

	if c.Components <= 0 {
		return fmt.Errorf("components must be positive, got %d", c.Components)
	}

	if c.KernelGamma < 0 {
		return fmt.Errorf("kernel_gamma must be non-negative, got %f", c.KernelGamma)
	}

	if c.FullFeatureClusters <= 0 {
		return fmt.Errorf("full_feature_clusters must be positive, got %d", c.FullFeatureClusters)
	}

	if c.ReducedClusters <= 0 {
		return fmt.Errorf("reduced_clusters must be positive, got %d", c.ReducedClusters)
	}

	if c.KMeansMinK <= 1 || c.KMeansMaxK < c.KMeansMinK {
		return fmt.Errorf("kmeans k range [%d,%d] is invalid", c.KMeansMinK, c.KMeansMaxK)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in
// for unset parameters. Paths are left alone; they have no defaults.
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.OutputFormat == "" {
		c.OutputFormat = defaults.OutputFormat
	}
	if c.DedupPolicy == "" {
		c.DedupPolicy = defaults.DedupPolicy
	}
	if c.KNNNeighbors == 0 {
		c.KNNNeighbors = defaults.KNNNeighbors
	}
	if c.IterativeRounds == 0 {
		c.IterativeRounds = defaults.IterativeRounds
	}
	if c.Components == 0 {
		c.Components = defaults.Components
	}
	if c.FullFeatureClusters == 0 {
		c.FullFeatureClusters = defaults.FullFeatureClusters
	}
	if c.ReducedClusters == 0 {
		c.ReducedClusters = defaults.ReducedClusters
	}
	if c.KMeansMinK == 0 {
		c.KMeansMinK = defaults.KMeansMinK
	}
	if c.KMeansMaxK == 0 {
		c.KMeansMaxK = defaults.KMeansMaxK
	}
	if c.Seed == 0 {
		c.Seed = defaults.Seed
	}

	return c
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() Config {
	config := NewConfig()

	for env, target := range map[string]*string{
		"DOCSEG_DOCTORS_PATH":      &config.DoctorsPath,
		"DOCSEG_ORDERS_PATH":       &config.OrdersPath,
		"DOCSEG_COMPLAINTS_PATH":   &config.ComplaintsPath,
		"DOCSEG_INSTRUCTIONS_PATH": &config.InstructionsPath,
		"DOCSEG_OUTPUT_PATH":       &config.OutputPath,
		"DOCSEG_OUTPUT_FORMAT":     &config.OutputFormat,
		"DOCSEG_DEDUP_POLICY":      &config.DedupPolicy,
	} {
		if val := os.Getenv(env); val != "" {
			*target = val
		}
	}

	for env, target := range map[string]*int{
		"DOCSEG_KNN_NEIGHBORS":         &config.KNNNeighbors,
		"DOCSEG_ITERATIVE_ROUNDS":      &config.IterativeRounds,
		"DOCSEG_COMPONENTS":            &config.Components,
		"DOCSEG_FULL_FEATURE_CLUSTERS": &config.FullFeatureClusters,
		"DOCSEG_REDUCED_CLUSTERS":      &config.ReducedClusters,
		"DOCSEG_KMEANS_MIN_K":          &config.KMeansMinK,
		"DOCSEG_KMEANS_MAX_K":          &config.KMeansMaxK,
	} {
		if val := os.Getenv(env); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				*target = parsed
			}
		}
	}

	if val := os.Getenv("DOCSEG_KERNEL_GAMMA"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.KernelGamma = parsed
		}
	}

	if val := os.Getenv("DOCSEG_SEED"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Seed = parsed
		}
	}

	return config
}
