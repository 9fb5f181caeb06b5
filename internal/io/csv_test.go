package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/model"
)

const doctorsCSV = `doctor_id,region,category,rank,incidence_rate,rework_rate,satisfaction,experience,purchases
D1,North,Specialist,Gold,1.2,0.3,88.5,12,40
D2,South,General Practitioner,Silver,0.9,0.1,--,4,11
`

func TestTableReader_Read(t *testing.T) {
	reader := io.NewTableReader(strings.NewReader(doctorsCSV), io.TableDoctors, io.DefaultCSVOptions())
	table, err := reader.Read()
	require.NoError(t, err)

	assert.Equal(t, io.TableDoctors, table.Name)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "D2", table.Value(1, io.ColDoctorID))
	assert.Equal(t, "--", table.Value(1, io.ColSatisfaction))
	assert.Equal(t, -1, table.ColumnIndex("no_such_column"))
	assert.NotZero(t, table.Fingerprint)

	require.NoError(t, table.RequireColumns("LoadDoctors",
		io.ColDoctorID, io.ColRank, io.ColSatisfaction))
}

func TestTableReader_FingerprintDeterministic(t *testing.T) {
	read := func() uint64 {
		table, err := io.NewTableReader(strings.NewReader(doctorsCSV), io.TableDoctors, io.DefaultCSVOptions()).Read()
		require.NoError(t, err)
		return table.Fingerprint
	}

	assert.Equal(t, read(), read())

	other, err := io.NewTableReader(strings.NewReader(doctorsCSV+"D3,East,Specialist,Gold,1,1,50,1,1\n"),
		io.TableDoctors, io.DefaultCSVOptions()).Read()
	require.NoError(t, err)
	assert.NotEqual(t, read(), other.Fingerprint)
}

func TestTableReader_MissingColumn(t *testing.T) {
	table, err := io.NewTableReader(strings.NewReader(doctorsCSV), io.TableDoctors, io.DefaultCSVOptions()).Read()
	require.NoError(t, err)

	err = table.RequireColumns("LoadDoctors", io.ColDoctorID, "prior_year_purchases")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSchema))
}

func TestTableReader_EmptyInput(t *testing.T) {
	_, err := io.NewTableReader(strings.NewReader(""), io.TableOrders, io.DefaultCSVOptions()).Read()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSchema))
}

func TestTableReader_RaggedRow(t *testing.T) {
	_, err := io.NewTableReader(strings.NewReader("a,b\n1,2\n3\n"), io.TableOrders, io.DefaultCSVOptions()).Read()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSchema))
}

func sampleLabeledRow() model.LabeledRow {
	satisfaction := 88.5
	row := model.LabeledRow{Segment: 3}
	row.ID = "D1"
	row.Region = "North"
	row.Category = model.CategorySpecialist
	row.Rank = model.RankGoldPlus
	row.IncidenceRate = 1.25
	row.ReworkRate = 0.5
	row.Satisfaction = &satisfaction
	row.Experience = 12
	row.PriorYearPurchases = 40
	row.ConditionSums[2] = 7
	row.TotalSettings = 7
	row.TotalOrders = 9
	row.ComplaintCounts[1] = 2
	row.TotalComplaints = 2
	row.SpecialInstructions = 1
	return row
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	writer := io.NewCSVWriter(&buf, io.DefaultCSVOptions())

	require.NoError(t, writer.Write([]model.LabeledRow{sampleLabeledRow()}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(io.OutputColumns, ","), lines[0])

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, len(io.OutputColumns))
	assert.Equal(t, "D1", fields[0])
	assert.Equal(t, "Gold Plus", fields[3])
	assert.Equal(t, "3", fields[len(fields)-1])
}

func TestParquetWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	writer := io.NewParquetWriter(&buf, io.DefaultParquetOptions(), nil)

	require.NoError(t, writer.Write([]model.LabeledRow{sampleLabeledRow()}))
	assert.NotZero(t, buf.Len())
	// Parquet files end with the PAR1 magic.
	assert.Equal(t, "PAR1", buf.String()[buf.Len()-4:])
}
