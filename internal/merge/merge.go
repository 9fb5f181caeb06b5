// Package merge left-joins the cleaned doctor table with the aggregated
// order, complaint, and instruction tables on the doctor identifier.
// Every doctor row is preserved regardless of match; event rows keyed by
// an unknown doctor are dropped and reported as join-integrity warnings.
package merge

import (
	"github.com/praxa/docsegment/internal/model"
)

// Result carries the merged rows plus the join-integrity bookkeeping the
// pipeline logs. Orphans are doctor identifiers that appear in an event
// aggregate but not in the doctor table; their aggregates are discarded,
// never invented as doctor rows.
type Result struct {
	Rows []model.MergedRow

	OrphanOrderDoctors       []string
	OrphanComplaintDoctors   []string
	OrphanInstructionDoctors []string
	DroppedMissingRank       int
}

// Merge joins the four per-doctor inputs into one row per doctor with a
// non-missing rank.
//
// Zero-fill policy: a doctor absent from an event table receives genuine
// zero counts — a structural zero, because no event occurred — which is
// distinct from the statistically missing satisfaction value the imputer
// fills later. The distinction is carried by the types: event counts are
// plain ints, satisfaction is a pointer.
//
// Rows whose rank is missing are dropped after the join; the caller logs
// the count as an explicit decision to treat them as uninformative noise.
func Merge(
	doctors []model.DoctorRecord,
	orders []model.OrderProfile,
	complaints []model.ComplaintProfile,
	instructions []model.InstructionRecord,
) Result {
	known := make(map[string]struct{}, len(doctors))
	for _, d := range doctors {
		known[d.ID] = struct{}{}
	}

	orderByDoctor := make(map[string]model.OrderProfile, len(orders))
	var result Result
	for _, p := range orders {
		if _, ok := known[p.DoctorID]; !ok {
			result.OrphanOrderDoctors = append(result.OrphanOrderDoctors, p.DoctorID)
			continue
		}
		orderByDoctor[p.DoctorID] = p
	}

	complaintByDoctor := make(map[string]model.ComplaintProfile, len(complaints))
	for _, p := range complaints {
		if _, ok := known[p.DoctorID]; !ok {
			result.OrphanComplaintDoctors = append(result.OrphanComplaintDoctors, p.DoctorID)
			continue
		}
		complaintByDoctor[p.DoctorID] = p
	}

	instructionByDoctor := make(map[string]model.InstructionRecord, len(instructions))
	for _, rec := range instructions {
		if _, ok := known[rec.DoctorID]; !ok {
			result.OrphanInstructionDoctors = append(result.OrphanInstructionDoctors, rec.DoctorID)
			continue
		}
		instructionByDoctor[rec.DoctorID] = rec
	}

	result.Rows = make([]model.MergedRow, 0, len(doctors))
	for _, d := range doctors {
		if d.Rank == nil {
			result.DroppedMissingRank++
			continue
		}

		row := model.MergedRow{
			ID:                 d.ID,
			Region:             d.Region,
			Category:           d.Category,
			Rank:               *d.Rank,
			IncidenceRate:      d.IncidenceRate,
			ReworkRate:         d.ReworkRate,
			Satisfaction:       d.Satisfaction,
			Experience:         d.Experience,
			PriorYearPurchases: d.PriorYearPurchases,
		}

		// Structural zero fill: lookup misses leave the zero counts in place.
		if p, ok := orderByDoctor[d.ID]; ok {
			row.ConditionSums = p.ConditionSums
			row.TotalSettings = p.TotalSettings
			row.TotalOrders = p.TotalOrders
		}
		if p, ok := complaintByDoctor[d.ID]; ok {
			row.ComplaintCounts = p.Counts
			row.TotalComplaints = p.TotalComplaints
		}
		if rec, ok := instructionByDoctor[d.ID]; ok {
			row.SpecialInstructions = rec.SpecialInstructions
		}

		result.Rows = append(result.Rows, row)
	}

	return result
}
