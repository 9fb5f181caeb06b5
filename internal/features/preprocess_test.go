package features_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/praxa/docsegment/internal/features"
	"github.com/praxa/docsegment/internal/model"
)

func mergedRow(id string, rank model.Rank, satisfaction *float64, seed float64) model.MergedRow {
	row := model.MergedRow{
		ID:                 id,
		Region:             "North",
		Category:           model.CategorySpecialist,
		Rank:               rank,
		IncidenceRate:      seed,
		ReworkRate:         seed * 0.5,
		Satisfaction:       satisfaction,
		Experience:         seed + 2,
		PriorYearPurchases: seed * 3,
		TotalSettings:      int(seed) % 7,
		TotalOrders:        int(seed) % 5,
		TotalComplaints:    int(seed) % 3,
	}
	row.ConditionSums[int(seed)%model.NumConditions] = int(seed) % 4
	row.ComplaintCounts[int(seed)%model.NumComplaintTypes] = int(seed) % 3
	if int(seed)%2 == 0 {
		row.Category = model.CategoryGeneralPractitioner
		row.SpecialInstructions = 1
	}
	return row
}

func sampleRows(n int) []model.MergedRow {
	ranks := model.Ranks()
	rows := make([]model.MergedRow, 0, n)
	for i := range n {
		var satisfaction *float64
		if i%4 != 0 {
			v := 50 + float64(i%40)
			satisfaction = &v
		}
		rows = append(rows, mergedRow(
			string(rune('A'+i%26))+string(rune('0'+i%10)),
			ranks[i%model.NumRanks],
			satisfaction,
			float64(i+1),
		))
	}
	return rows
}

func TestPreprocess_ColumnLayout(t *testing.T) {
	m, err := features.Preprocess(sampleRows(12))
	require.NoError(t, err)

	assert.Equal(t, 12, m.NumRows())
	assert.Equal(t, len(m.Columns), m.NumCols())

	// Identifier and region never become features.
	assert.Equal(t, -1, m.ColumnIndex("doctor_id"))
	assert.Equal(t, -1, m.ColumnIndex("region"))

	// Reference levels are dropped from the one-hot encodings.
	assert.Equal(t, -1, m.ColumnIndex("rank_silver"))
	assert.NotEqual(t, -1, m.ColumnIndex("rank_silver_plus"))
	assert.NotEqual(t, -1, m.ColumnIndex("rank_ambassador"))
	assert.NotEqual(t, -1, m.ColumnIndex("category_gp"))

	assert.NotEqual(t, -1, m.SatisfactionIndex())
}

func TestPreprocess_StandardizedExceptSatisfaction(t *testing.T) {
	m, err := features.Preprocess(sampleRows(40))
	require.NoError(t, err)

	satIdx := m.SatisfactionIndex()
	col := make([]float64, m.NumRows())
	for j := range m.Columns {
		if j == satIdx {
			continue
		}
		for i, row := range m.Data {
			col[i] = row[j]
		}
		mean := stat.Mean(col, nil)
		sd := math.Sqrt(stat.PopVariance(col, nil))
		assert.InDelta(t, 0, mean, 1e-9, "column %s", m.Columns[j])
		if sd != 0 {
			assert.InDelta(t, 1, sd, 1e-9, "column %s", m.Columns[j])
		}
	}
}

func TestPreprocess_SatisfactionKeptRawWithNaN(t *testing.T) {
	m, err := features.Preprocess(sampleRows(8))
	require.NoError(t, err)

	satIdx := m.SatisfactionIndex()
	sawNaN := false
	for i, row := range m.Data {
		if math.IsNaN(row[satIdx]) {
			sawNaN = true
			continue
		}
		assert.GreaterOrEqual(t, row[satIdx], 50.0, "row %d keeps original scale", i)
	}
	assert.True(t, sawNaN, "missing satisfaction carried as NaN into imputation")
}

func TestPreprocess_EmptyInput(t *testing.T) {
	_, err := features.Preprocess(nil)
	require.Error(t, err)
}

func TestRestandardize(t *testing.T) {
	m, err := features.Preprocess(sampleRows(20))
	require.NoError(t, err)

	// Fill missing satisfaction so restandardization sees no NaN.
	satIdx := m.SatisfactionIndex()
	for i := range m.Data {
		if math.IsNaN(m.Data[i][satIdx]) {
			m.Data[i][satIdx] = 60
		}
	}

	features.Restandardize(m)

	col := make([]float64, m.NumRows())
	for i, row := range m.Data {
		col[i] = row[satIdx]
	}
	assert.InDelta(t, 0, stat.Mean(col, nil), 1e-9)
	assert.InDelta(t, 1, math.Sqrt(stat.PopVariance(col, nil)), 1e-9)
}

func TestMatrix_Clone(t *testing.T) {
	m, err := features.Preprocess(sampleRows(5))
	require.NoError(t, err)

	clone := m.Clone()
	clone.Data[0][0] = 999

	assert.NotEqual(t, m.Data[0][0], clone.Data[0][0])
	assert.Equal(t, m.Columns, clone.Columns)
}
