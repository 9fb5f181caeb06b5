package clean_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxa/docsegment/internal/clean"
	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/model"
)

func loadTable(t *testing.T, name, csv string) *io.Table {
	t.Helper()
	table, err := io.NewTableReader(strings.NewReader(csv), name, io.DefaultCSVOptions()).Read()
	require.NoError(t, err)
	return table
}

func TestDoctors_Clean(t *testing.T) {
	table := loadTable(t, io.TableDoctors,
		`doctor_id,region,category,rank,incidence_rate,rework_rate,satisfaction,experience,purchases
D1,North,Specialist,Ambassador,1.2,0.3,88.5,12,40
D2,--,General Practitioner,--,0.9,0.1,--,4,11
`)

	records, err := clean.Doctors(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	d1 := records[0]
	require.NotNil(t, d1.Rank)
	assert.Equal(t, model.RankAmbassador, *d1.Rank)
	require.NotNil(t, d1.Satisfaction)
	assert.InDelta(t, 88.5, *d1.Satisfaction, 1e-9)
	assert.InDelta(t, 40.0, d1.PriorYearPurchases, 1e-9)

	d2 := records[1]
	assert.Nil(t, d2.Rank, "sentinel rank becomes missing")
	assert.Nil(t, d2.Satisfaction, "sentinel satisfaction becomes missing")
	assert.Empty(t, d2.Region)
}

func TestDoctors_FailsLoudly(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		kind errors.Kind
	}{
		{
			name: "unrecognized rank token",
			csv: `doctor_id,region,category,rank,incidence_rate,rework_rate,satisfaction,experience,purchases
D1,North,Specialist,Bronze,1.2,0.3,88.5,12,40
`,
			kind: errors.KindDataQuality,
		},
		{
			name: "non-numeric satisfaction",
			csv: `doctor_id,region,category,rank,incidence_rate,rework_rate,satisfaction,experience,purchases
D1,North,Specialist,Gold,1.2,0.3,high,12,40
`,
			kind: errors.KindDataQuality,
		},
		{
			name: "duplicate doctor identifier",
			csv: `doctor_id,region,category,rank,incidence_rate,rework_rate,satisfaction,experience,purchases
D1,North,Specialist,Gold,1.2,0.3,80,12,40
D1,South,Specialist,Gold,1.2,0.3,80,12,40
`,
			kind: errors.KindDataQuality,
		},
		{
			name: "missing required column",
			csv: `doctor_id,region,category,rank,incidence_rate,rework_rate,satisfaction,experience
D1,North,Specialist,Gold,1.2,0.3,80,12
`,
			kind: errors.KindSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clean.Doctors(loadTable(t, io.TableDoctors, tt.csv))
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

const ordersCSV = `doctor_id,order_id,order_num,condition_a,condition_b,condition_c,condition_d,condition_e,condition_f,condition_g,condition_h,condition_i,condition_j
D1,O1,1,true,false,false,false,false,false,false,false,false,false
D1,O1,2,false,false,false,false,false,false,false,false,false,false
D2,O2,3,Before,After,After,Before,Before,Before,Before,Before,Before,Before
`

func TestOrders_FlagEncodingAndDedup(t *testing.T) {
	result, err := clean.Orders(loadTable(t, io.TableOrders, ordersCSV), clean.DedupKeepFirst)
	require.NoError(t, err)

	require.Len(t, result.Events, 2)
	assert.Equal(t, 1, result.DuplicatesDropped)
	assert.Equal(t, 0, result.HeuristicMisfits)

	o1 := result.Events[0]
	assert.Equal(t, "O1", o1.OrderID)
	assert.Equal(t, 1, o1.SeqNo, "first occurrence retained")
	assert.Equal(t, uint8(1), o1.Conditions[0])

	o2 := result.Events[1]
	assert.Equal(t, uint8(0), o2.Conditions[0])
	assert.Equal(t, uint8(1), o2.Conditions[1])
	assert.Equal(t, uint8(1), o2.Conditions[2])
	assert.Equal(t, 2, o2.ActiveConditions())
}

func TestOrders_DedupIdempotent(t *testing.T) {
	once, err := clean.Orders(loadTable(t, io.TableOrders, ordersCSV), clean.DedupKeepFirst)
	require.NoError(t, err)

	again, err := clean.Orders(loadTable(t, io.TableOrders, ordersCSV), clean.DedupKeepFirst)
	require.NoError(t, err)

	assert.Equal(t, once.Events, again.Events)
}

func TestOrders_KeepFewestConditions(t *testing.T) {
	csv := `doctor_id,order_id,order_num,condition_a,condition_b,condition_c,condition_d,condition_e,condition_f,condition_g,condition_h,condition_i,condition_j
D1,O1,1,true,true,true,false,false,false,false,false,false,false
D1,O1,2,true,false,false,false,false,false,false,false,false,false
`
	result, err := clean.Orders(loadTable(t, io.TableOrders, csv), clean.DedupKeepFewestConditions)
	require.NoError(t, err)

	require.Len(t, result.Events, 1)
	assert.Equal(t, 2, result.Events[0].SeqNo, "row with fewest active conditions retained")
	assert.Equal(t, 1, result.HeuristicMisfits, "discarded duplicate carried three conditions")
}

func TestOrders_UnmappableToken(t *testing.T) {
	csv := `doctor_id,order_id,order_num,condition_a,condition_b,condition_c,condition_d,condition_e,condition_f,condition_g,condition_h,condition_i,condition_j
D1,O1,1,maybe,false,false,false,false,false,false,false,false,false
`
	_, err := clean.Orders(loadTable(t, io.TableOrders, csv), clean.DedupKeepFirst)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDataQuality))
}

func TestComplaints_DropMissingType(t *testing.T) {
	table := loadTable(t, io.TableComplaints,
		`doctor_id,complaint_type,qty
D1,Correct,3
D1,,2
D2,R&R,1
D3,--,5
`)

	result, err := clean.Complaints(table)
	require.NoError(t, err)

	assert.Equal(t, 2, result.DroppedMissingType)
	require.Len(t, result.Records, 2)
	assert.Equal(t, model.ComplaintCorrect, result.Records[0].Type)
	assert.Equal(t, model.ComplaintRAndR, result.Records[1].Type)
}

func TestComplaints_UnknownTypeFails(t *testing.T) {
	table := loadTable(t, io.TableComplaints,
		`doctor_id,complaint_type,qty
D1,Cosmetic,3
`)

	_, err := clean.Complaints(table)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDataQuality))
}

func TestInstructions_Clean(t *testing.T) {
	table := loadTable(t, io.TableInstructions,
		`doctor_id,instructions
D1,Yes
D2,No
`)

	records, err := clean.Instructions(table)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint8(1), records[0].SpecialInstructions)
	assert.Equal(t, uint8(0), records[1].SpecialInstructions)
}

func TestInstructions_UnmappableToken(t *testing.T) {
	table := loadTable(t, io.TableInstructions,
		`doctor_id,instructions
D1,Sometimes
`)

	_, err := clean.Instructions(table)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDataQuality))
}

func TestParseDedupPolicy(t *testing.T) {
	policy, err := clean.ParseDedupPolicy("keep-fewest-conditions")
	require.NoError(t, err)
	assert.Equal(t, clean.DedupKeepFewestConditions, policy)

	_, err = clean.ParseDedupPolicy("keep-last")
	require.Error(t, err)
}
