// Package aggregate collapses the cleaned event tables from one row per
// event to one row per doctor. Doctors absent from a source table do not
// appear in its aggregate; the merger zero-fills them later.
package aggregate

import (
	"sort"

	"github.com/praxa/docsegment/internal/model"
)

// Orders groups the retained order events by doctor and sums the ten
// condition flags, deriving the total-settings value and the retained
// order count. Output is sorted by doctor identifier for stable
// downstream ordering.
func Orders(events []model.OrderEvent) []model.OrderProfile {
	byDoctor := make(map[string]*model.OrderProfile)

	for _, ev := range events {
		profile, ok := byDoctor[ev.DoctorID]
		if !ok {
			profile = &model.OrderProfile{DoctorID: ev.DoctorID}
			byDoctor[ev.DoctorID] = profile
		}
		for c, flag := range ev.Conditions {
			profile.ConditionSums[c] += int(flag)
		}
		profile.TotalSettings += ev.ActiveConditions()
		profile.TotalOrders++
	}

	return sortedOrderProfiles(byDoctor)
}

// Complaints pivots complaint types into per-type counts, zero-filled
// for types never lodged, and sums the total per doctor.
func Complaints(records []model.ComplaintRecord) []model.ComplaintProfile {
	byDoctor := make(map[string]*model.ComplaintProfile)

	for _, rec := range records {
		profile, ok := byDoctor[rec.DoctorID]
		if !ok {
			profile = &model.ComplaintProfile{DoctorID: rec.DoctorID}
			byDoctor[rec.DoctorID] = profile
		}
		profile.Counts[rec.Type] += rec.Quantity
		profile.TotalComplaints += rec.Quantity
	}

	out := make([]model.ComplaintProfile, 0, len(byDoctor))
	for _, profile := range byDoctor {
		out = append(out, *profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out
}

func sortedOrderProfiles(byDoctor map[string]*model.OrderProfile) []model.OrderProfile {
	out := make([]model.OrderProfile, 0, len(byDoctor))
	for _, profile := range byDoctor {
		out = append(out, *profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out
}
