package impute

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/features"
)

// Iterative regression defaults. The ridge term keeps the normal
// equations solvable when one-hot columns are collinear.
const (
	DefaultRounds = 10
	DefaultRidge  = 1e-3
)

// IterativeResult reports the comparison estimator's candidate values and
// how many fall outside the observed satisfaction range. Out-of-range
// values are the known failure mode of this method; a nonzero count means
// the candidate must not be trusted without human review.
type IterativeResult struct {
	Values      []float64
	OutOfRange  int
	ObservedMin float64
	ObservedMax float64
}

// Iterative computes regression-based candidate values for the missing
// satisfaction cells without mutating the input matrix. Missing cells are
// seeded with the observed mean, then refined over a fixed number of
// rounds of ridge regression of satisfaction on every other feature.
func Iterative(m *features.Matrix, rounds int, ridge float64) (IterativeResult, error) {
	const op = "ImputeIterative"

	if rounds <= 0 {
		rounds = DefaultRounds
	}
	if ridge <= 0 {
		ridge = DefaultRidge
	}

	satIdx := m.SatisfactionIndex()
	if satIdx < 0 {
		return IterativeResult{}, errors.NewImputationError(op, "matrix has no satisfaction column")
	}

	var donors, missingRows []int
	sum := 0.0
	for i, row := range m.Data {
		if math.IsNaN(row[satIdx]) {
			missingRows = append(missingRows, i)
		} else {
			donors = append(donors, i)
			sum += row[satIdx]
		}
	}
	if len(donors) == 0 {
		return IterativeResult{}, errors.NewImputationError(op, "no row has a known satisfaction value; nothing to regress on")
	}

	result := IterativeResult{ObservedMin: math.Inf(1), ObservedMax: math.Inf(-1)}
	for _, i := range donors {
		v := m.Data[i][satIdx]
		result.ObservedMin = math.Min(result.ObservedMin, v)
		result.ObservedMax = math.Max(result.ObservedMax, v)
	}
	if len(missingRows) == 0 {
		return result, nil
	}

	// Predictor matrix: every column but satisfaction, plus an intercept.
	numPredictors := m.NumCols() // -1 for satisfaction, +1 for intercept
	predictors := func(row []float64) []float64 {
		x := make([]float64, 0, numPredictors)
		x = append(x, 1)
		for j, v := range row {
			if j == satIdx {
				continue
			}
			x = append(x, v)
		}
		return x
	}

	current := make([]float64, len(missingRows))
	meanSat := sum / float64(len(donors))
	for i := range current {
		current[i] = meanSat
	}

	x := mat.NewDense(len(donors), numPredictors, nil)
	y := mat.NewVecDense(len(donors), nil)
	for r, i := range donors {
		x.SetRow(r, predictors(m.Data[i]))
		y.SetVec(r, m.Data[i][satIdx])
	}

	// The donor design never changes across rounds; refitting each round
	// mirrors the round structure of a full multiple-imputation chain
	// while only the missing-cell predictions move.
	beta := mat.NewVecDense(numPredictors, nil)
	for round := 0; round < rounds; round++ {
		if err := ridgeSolve(x, y, ridge, beta); err != nil {
			return IterativeResult{}, errors.NewInternalError(op, err)
		}
		for c, i := range missingRows {
			current[c] = mat.Dot(beta, mat.NewVecDense(numPredictors, predictors(m.Data[i])))
		}
	}

	result.Values = current
	for _, v := range current {
		if v < result.ObservedMin || v > result.ObservedMax {
			result.OutOfRange++
		}
	}
	return result, nil
}

// ridgeSolve solves (XᵀX + λI)β = Xᵀy.
func ridgeSolve(x *mat.Dense, y *mat.VecDense, ridge float64, beta *mat.VecDense) error {
	_, p := x.Dims()

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	gram := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := xtx.At(i, j)
			if i == j {
				v += ridge
			}
			gram.SetSym(i, j, v)
		}
	}

	xty := mat.NewVecDense(p, nil)
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if !chol.Factorize(gram) {
		return errors.NewImputationError("ImputeIterative", "ridge system is not positive definite")
	}
	return chol.SolveVecTo(beta, xty)
}
