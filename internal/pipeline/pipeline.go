// Package pipeline orchestrates the one-shot segmentation run: load the
// four raw tables, clean and aggregate them, merge per doctor, build the
// feature matrix, impute satisfaction, reduce dimensionality, cluster,
// and write the labeled table.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/praxa/docsegment/internal/aggregate"
	"github.com/praxa/docsegment/internal/clean"
	"github.com/praxa/docsegment/internal/cluster"
	"github.com/praxa/docsegment/internal/config"
	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/features"
	"github.com/praxa/docsegment/internal/impute"
	pio "github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/merge"
	"github.com/praxa/docsegment/internal/model"
	"github.com/praxa/docsegment/internal/reduce"
)

// Result carries the run's output rows plus the intermediate diagnostics
// a caller may want to inspect or report on.
type Result struct {
	Rows []model.LabeledRow

	// Authoritative segmentation: hierarchical labels on the reduced
	// component space. FullFeatureLabels is the companion run on the
	// standardized feature matrix, kept for comparison only.
	ReducedLabels     []int
	FullFeatureLabels []int

	// Validation curves from the centroid sweeps.
	FullFeatureElbow []cluster.ElbowPoint
	ReducedElbow     []cluster.ElbowPoint

	Imputed int
}

// Run executes the full pipeline for one configuration. The context is
// checked between stages; a cancelled context aborts the run at the next
// stage boundary.
func Run(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := clean.ParseDedupPolicy(cfg.DedupPolicy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tables, err := loadTables(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("load stage complete")

	start = time.Now()
	rows, err := buildRows(ctx, tables, policy, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("clean/merge stage complete")

	start = time.Now()
	matrix, knn, err := buildFeatures(ctx, cfg, rows, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("feature/impute stage complete")

	start = time.Now()
	result, err := segment(ctx, cfg, matrix, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("reduce/cluster stage complete")
	result.Imputed = knn.Imputed

	result.Rows = make([]model.LabeledRow, len(rows))
	for i, row := range rows {
		result.Rows[i] = model.LabeledRow{MergedRow: row, Segment: result.ReducedLabels[i]}
	}

	if err := writeOutput(cfg, result.Rows); err != nil {
		return nil, err
	}
	log.Info().
		Str("path", cfg.OutputPath).
		Str("format", cfg.OutputFormat).
		Int("rows", len(result.Rows)).
		Msg("labeled table written")

	return result, nil
}

type rawTables struct {
	doctors      *pio.Table
	orders       *pio.Table
	complaints   *pio.Table
	instructions *pio.Table
}

func loadTables(ctx context.Context, cfg config.Config, log zerolog.Logger) (*rawTables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tables rawTables
	for _, in := range []struct {
		path   string
		name   string
		target **pio.Table
	}{
		{cfg.DoctorsPath, pio.TableDoctors, &tables.doctors},
		{cfg.OrdersPath, pio.TableOrders, &tables.orders},
		{cfg.ComplaintsPath, pio.TableComplaints, &tables.complaints},
		{cfg.InstructionsPath, pio.TableInstructions, &tables.instructions},
	} {
		table, err := pio.ReadTableFile(in.path, in.name)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("table", in.name).
			Str("path", in.path).
			Int("rows", table.Len()).
			Str("fingerprint", fmt.Sprintf("%016x", table.Fingerprint)).
			Msg("table loaded")
		*in.target = table
	}
	return &tables, nil
}

func buildRows(ctx context.Context, tables *rawTables, policy clean.DedupPolicy, log zerolog.Logger) ([]model.MergedRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doctors, err := clean.Doctors(tables.doctors)
	if err != nil {
		return nil, err
	}

	orders, err := clean.Orders(tables.orders, policy)
	if err != nil {
		return nil, err
	}
	if orders.DuplicatesDropped > 0 {
		log.Warn().
			Int("dropped", orders.DuplicatesDropped).
			Int("heuristic_misfits", orders.HeuristicMisfits).
			Str("policy", string(policy)).
			Msg("duplicate order rows resolved")
	}

	complaints, err := clean.Complaints(tables.complaints)
	if err != nil {
		return nil, err
	}
	if complaints.DroppedMissingType > 0 {
		log.Warn().
			Int("dropped", complaints.DroppedMissingType).
			Msg("complaint rows without a type discarded")
	}

	instructions, err := clean.Instructions(tables.instructions)
	if err != nil {
		return nil, err
	}

	merged := merge.Merge(
		doctors,
		aggregate.Orders(orders.Events),
		aggregate.Complaints(complaints.Records),
		instructions,
	)
	for _, orphans := range []struct {
		table string
		ids   []string
	}{
		{pio.TableOrders, merged.OrphanOrderDoctors},
		{pio.TableComplaints, merged.OrphanComplaintDoctors},
		{pio.TableInstructions, merged.OrphanInstructionDoctors},
	} {
		if len(orphans.ids) > 0 {
			log.Warn().
				Str("table", orphans.table).
				Strs("doctor_ids", orphans.ids).
				Msg("event rows for unknown doctors discarded")
		}
	}
	if merged.DroppedMissingRank > 0 {
		log.Warn().
			Int("dropped", merged.DroppedMissingRank).
			Msg("doctor rows without a rank discarded")
	}
	log.Info().Int("rows", len(merged.Rows)).Msg("per-doctor table merged")

	return merged.Rows, nil
}

func buildFeatures(ctx context.Context, cfg config.Config, rows []model.MergedRow, log zerolog.Logger) (*features.Matrix, impute.KNNResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, impute.KNNResult{}, err
	}

	matrix, err := features.Preprocess(rows)
	if err != nil {
		return nil, impute.KNNResult{}, err
	}
	log.Info().
		Int("rows", matrix.NumRows()).
		Int("columns", matrix.NumCols()).
		Msg("feature matrix built")

	// The regression estimator runs first, on the still-incomplete
	// matrix, purely as a cross-check; out-of-range candidates are why
	// the neighbor-based values are the ones adopted.
	iter, err := impute.Iterative(matrix, cfg.IterativeRounds, impute.DefaultRidge)
	if err != nil {
		return nil, impute.KNNResult{}, err
	}

	knn, err := impute.KNN(matrix, cfg.KNNNeighbors)
	if err != nil {
		// A failed imputation aborts the run: writing a table with
		// invented satisfaction values would be worse than no table.
		return nil, impute.KNNResult{}, err
	}
	log.Info().
		Int("imputed", knn.Imputed).
		Float64("observed_min", knn.ObservedMin).
		Float64("observed_max", knn.ObservedMax).
		Msg("satisfaction imputed")

	// The satisfaction column was never standardized, so the imputed
	// values are in original units and flow back into the output rows.
	satIdx := matrix.SatisfactionIndex()
	for i := range rows {
		if rows[i].Satisfaction == nil {
			v := matrix.Data[i][satIdx]
			rows[i].Satisfaction = &v
		}
	}
	if iter.OutOfRange > 0 {
		log.Warn().
			Int("out_of_range", iter.OutOfRange).
			Msg("regression imputer produced out-of-range candidates; neighbor values adopted")
	}

	// Imputation shifted the satisfaction column's distribution, so the
	// matrix is standardized again before any distance-based method
	// sees it.
	features.Restandardize(matrix)

	return matrix, knn, nil
}

func segment(ctx context.Context, cfg config.Config, matrix *features.Matrix, log zerolog.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reduced, err := reduce.KernelPCA(matrix, cfg.Components, cfg.KernelGamma)
	if err != nil {
		return nil, err
	}
	log.Info().Int("components", reduced.NumCols()).Msg("kernel components extracted")

	result := &Result{}

	result.FullFeatureLabels, err = cluster.Ward(matrix, cfg.FullFeatureClusters)
	if err != nil {
		return nil, err
	}
	result.ReducedLabels, err = cluster.Ward(reduced, cfg.ReducedClusters)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("full_feature_clusters", cfg.FullFeatureClusters).
		Int("reduced_clusters", cfg.ReducedClusters).
		Float64("silhouette", cluster.Silhouette(reduced, result.ReducedLabels)).
		Msg("hierarchical clustering complete")

	// Centroid sweeps corroborate the chosen cluster counts; they never
	// relabel anything.
	result.FullFeatureElbow, err = cluster.Sweep(matrix, cfg.KMeansMinK, cfg.KMeansMaxK, cfg.Seed)
	if err != nil {
		return nil, err
	}
	result.ReducedElbow, err = cluster.Sweep(reduced, cfg.KMeansMinK, cfg.KMeansMaxK, cfg.Seed)
	if err != nil {
		return nil, err
	}
	for _, sweep := range []struct {
		space string
		curve []cluster.ElbowPoint
	}{
		{"full", result.FullFeatureElbow},
		{"reduced", result.ReducedElbow},
	} {
		event := log.Info().Str("space", sweep.space).Int("knee", cluster.KneeEstimate(sweep.curve))
		for _, p := range sweep.curve {
			event = event.Float64(fmt.Sprintf("k%d", p.K), p.Distortion)
		}
		event.Msg("centroid distortion curve")
	}

	return result, nil
}

func writeOutput(cfg config.Config, rows []model.LabeledRow) error {
	const op = "WriteOutput"

	file, err := os.Create(cfg.OutputPath)
	if err != nil {
		return errors.NewInternalError(op, err)
	}

	switch cfg.OutputFormat {
	case config.FormatParquet:
		err = pio.NewParquetWriter(file, pio.DefaultParquetOptions(), nil).Write(rows)
	default:
		err = pio.NewCSVWriter(file, pio.DefaultCSVOptions()).Write(rows)
	}
	if err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
