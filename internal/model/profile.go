package model

// OrderProfile collapses a doctor's retained orders into per-condition
// sums plus the derived totals. Invariant: TotalSettings equals the sum
// of the ten condition sums.
type OrderProfile struct {
	DoctorID      string
	ConditionSums [NumConditions]int
	TotalSettings int
	TotalOrders   int
}

// ComplaintProfile collapses a doctor's complaints into a count per type,
// zero-filled for types never lodged, plus the derived total.
type ComplaintProfile struct {
	DoctorID        string
	Counts          [NumComplaintTypes]int
	TotalComplaints int
}

// MergedRow is the per-doctor union of the doctor record with its
// aggregated order, complaint, and instruction features. Event-derived
// counts are plain ints: a doctor with no orders carries a structural
// zero, not a missing value. Satisfaction remains nullable until the
// imputer runs; Rank is non-nil by construction (the merger drops rows
// with a missing rank).
type MergedRow struct {
	ID                  string
	Region              string
	Category            Category
	Rank                Rank
	IncidenceRate       float64
	ReworkRate          float64
	Satisfaction        *float64
	Experience          float64
	PriorYearPurchases  float64
	ConditionSums       [NumConditions]int
	TotalSettings       int
	TotalOrders         int
	ComplaintCounts     [NumComplaintTypes]int
	TotalComplaints     int
	SpecialInstructions uint8
}

// LabeledRow is a merged row with its adopted segment label in [1,6].
type LabeledRow struct {
	MergedRow
	Segment int
}
