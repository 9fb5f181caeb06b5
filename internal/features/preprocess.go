// Package features turns merged doctor rows into a fully numeric matrix:
// identifier and region columns dropped, nominal categoricals one-hot
// encoded with one reference level removed, numeric columns standardized
// to zero mean and unit variance. Satisfaction is deliberately left
// unscaled and may still be NaN; it is the sole imputation target and the
// imputer works in its original numeric space.
package features

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/model"
)

// SatisfactionColumn names the one column exempt from standardization.
const SatisfactionColumn = "satisfaction"

// Matrix is the numeric feature table: one row per doctor, column order
// stable and exposed through Columns.
type Matrix struct {
	Columns   []string
	DoctorIDs []string
	Data      [][]float64
}

// NumRows returns the number of doctors.
func (m *Matrix) NumRows() int { return len(m.Data) }

// NumCols returns the number of feature columns.
func (m *Matrix) NumCols() int { return len(m.Columns) }

// ColumnIndex returns the position of the named column, or -1 when absent.
func (m *Matrix) ColumnIndex(name string) int {
	for i, col := range m.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// SatisfactionIndex returns the position of the satisfaction column.
func (m *Matrix) SatisfactionIndex() int {
	return m.ColumnIndex(SatisfactionColumn)
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	data := make([][]float64, len(m.Data))
	for i, row := range m.Data {
		data[i] = append([]float64(nil), row...)
	}
	return &Matrix{
		Columns:   append([]string(nil), m.Columns...),
		DoctorIDs: append([]string(nil), m.DoctorIDs...),
		Data:      data,
	}
}

// Preprocess builds the standardized feature matrix from merged rows.
// Every column except satisfaction leaves with mean 0 and unit variance;
// constant columns are centered to all zeros since they carry no signal.
func Preprocess(rows []model.MergedRow) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, errors.NewDataQualityError("Preprocess", "", "", "no merged rows to preprocess")
	}

	columns := featureColumns()
	m := &Matrix{
		Columns:   columns,
		DoctorIDs: make([]string, len(rows)),
		Data:      make([][]float64, len(rows)),
	}

	for i := range rows {
		m.DoctorIDs[i] = rows[i].ID
		m.Data[i] = encodeRow(&rows[i])
	}

	standardize(m, map[int]bool{m.SatisfactionIndex(): true})
	return m, nil
}

// Restandardize re-centers and re-scales every column in place, the
// satisfaction column included. The reducer calls this after imputation,
// which shifts the satisfaction scale and mean.
func Restandardize(m *Matrix) {
	standardize(m, nil)
}

func featureColumns() []string {
	cols := []string{
		"incidence_rate", "rework_rate", SatisfactionColumn,
		"experience", "prior_year_purchases",
	}
	cols = append(cols, model.ConditionNames[:]...)
	cols = append(cols, "total_settings", "total_orders",
		"complaints_correct", "complaints_incorrect", "complaints_r_and_r", "complaints_specific",
		"total_complaints", "instructions",
		"category_gp", // reference level: Specialist
	)
	// One-hot ranks with Silver as the dropped reference level.
	for _, rank := range model.Ranks() {
		if rank == model.RankSilver {
			continue
		}
		cols = append(cols, "rank_"+rankColumnSuffix(rank))
	}
	return cols
}

func rankColumnSuffix(rank model.Rank) string {
	s := strings.ToLower(rank.String())
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func encodeRow(row *model.MergedRow) []float64 {
	out := make([]float64, 0, 32)

	out = append(out, row.IncidenceRate, row.ReworkRate)
	if row.Satisfaction != nil {
		out = append(out, *row.Satisfaction)
	} else {
		out = append(out, math.NaN())
	}
	out = append(out, row.Experience, row.PriorYearPurchases)

	for _, sum := range row.ConditionSums {
		out = append(out, float64(sum))
	}
	out = append(out, float64(row.TotalSettings), float64(row.TotalOrders))
	for _, count := range row.ComplaintCounts {
		out = append(out, float64(count))
	}
	out = append(out, float64(row.TotalComplaints), float64(row.SpecialInstructions))

	if row.Category == model.CategoryGeneralPractitioner {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}

	for _, rank := range model.Ranks() {
		if rank == model.RankSilver {
			continue
		}
		if row.Rank == rank {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}

	return out
}

// standardize z-scores every column not in skip, using the population
// standard deviation. Constant columns become all zeros.
func standardize(m *Matrix, skip map[int]bool) {
	col := make([]float64, m.NumRows())
	for j := range m.Columns {
		if skip[j] {
			continue
		}
		for i := range m.Data {
			col[i] = m.Data[i][j]
		}
		mean := stat.Mean(col, nil)
		sd := math.Sqrt(stat.PopVariance(col, nil))
		for i := range m.Data {
			if sd == 0 {
				m.Data[i][j] = 0
			} else {
				m.Data[i][j] = (m.Data[i][j] - mean) / sd
			}
		}
	}
}
