// Package reduce projects the imputed feature matrix into a small
// nonlinear component space with radial-basis kernel principal component
// analysis. The input is re-standardized first, since imputation shifts
// the satisfaction scale and mean. The projection is deterministic: the
// eigendecomposition is exact and the eigenvector sign convention is
// fixed, so repeated runs on identical input agree bit for bit.
package reduce

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/features"
)

// DefaultComponents is the adopted component count.
const DefaultComponents = 5

// KernelPCA re-standardizes a copy of the matrix and projects it onto
// the top components of the centered RBF kernel. gamma <= 0 selects the
// conventional 1/numFeatures default.
func KernelPCA(m *features.Matrix, components int, gamma float64) (*features.Matrix, error) {
	const op = "KernelPCA"

	n := m.NumRows()
	if components <= 0 || components > n {
		return nil, errors.NewDataQualityError(op, "", "",
			fmt.Sprintf("component count must be in [1,%d], got %d", n, components))
	}
	for i, row := range m.Data {
		for j, v := range row {
			if math.IsNaN(v) {
				return nil, errors.NewDataQualityError(op, "", m.Columns[j],
					fmt.Sprintf("row %d: NaN reached the reducer; imputation must run first", i))
			}
		}
	}

	if gamma <= 0 {
		gamma = 1 / float64(m.NumCols())
	}

	work := m.Clone()
	features.Restandardize(work)

	kernel := rbfKernel(work.Data, gamma)
	centerKernel(kernel)

	var eig mat.EigenSym
	if !eig.Factorize(kernel, true) {
		return nil, errors.NewInternalError(op, fmt.Errorf("eigendecomposition failed"))
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Indices of eigenvalues in descending order.
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	const eigenTolerance = 1e-10
	if values[order[components-1]] <= eigenTolerance {
		return nil, errors.NewDataQualityError(op, "", "",
			fmt.Sprintf("kernel has fewer than %d informative components", components))
	}

	out := &features.Matrix{
		Columns:   make([]string, components),
		DoctorIDs: append([]string(nil), m.DoctorIDs...),
		Data:      make([][]float64, n),
	}
	for i := range out.Data {
		out.Data[i] = make([]float64, components)
	}

	for c := range components {
		idx := order[c]
		out.Columns[c] = fmt.Sprintf("component_%d", c+1)
		scale := math.Sqrt(values[idx])

		// Fix the sign so the largest-magnitude loading is positive.
		sign := 1.0
		maxAbs := 0.0
		for i := range n {
			v := vectors.At(i, idx)
			if math.Abs(v) > maxAbs {
				maxAbs = math.Abs(v)
				if v < 0 {
					sign = -1
				} else {
					sign = 1
				}
			}
		}

		for i := range n {
			out.Data[i][c] = sign * scale * vectors.At(i, idx)
		}
	}

	return out, nil
}

// rbfKernel builds K[i][j] = exp(-gamma * ||xi - xj||^2).
func rbfKernel(data [][]float64, gamma float64) *mat.SymDense {
	n := len(data)
	kernel := mat.NewSymDense(n, nil)
	for i := range n {
		kernel.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			sum := 0.0
			for f := range data[i] {
				d := data[i][f] - data[j][f]
				sum += d * d
			}
			kernel.SetSym(i, j, math.Exp(-gamma*sum))
		}
	}
	return kernel
}

// centerKernel applies the double-centering K - 1K - K1 + 1K1 in place.
func centerKernel(kernel *mat.SymDense) {
	n := kernel.SymmetricDim()

	rowMeans := make([]float64, n)
	total := 0.0
	for i := range n {
		for j := range n {
			rowMeans[i] += kernel.At(i, j)
		}
		total += rowMeans[i]
		rowMeans[i] /= float64(n)
	}
	total /= float64(n * n)

	for i := range n {
		for j := i; j < n; j++ {
			kernel.SetSym(i, j, kernel.At(i, j)-rowMeans[i]-rowMeans[j]+total)
		}
	}
}
