package clean

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/model"
)

// DedupPolicy selects which row survives when several orders share one
// order identifier. The keep-first rule mirrors the observed data (the
// first occurrence typically carries at most one active condition); it is
// a policy, not an invariant, so the alternative is available.
type DedupPolicy string

const (
	// DedupKeepFirst retains the first-seen row per order identifier in
	// natural load order.
	DedupKeepFirst DedupPolicy = "keep-first"
	// DedupKeepFewestConditions retains the row with the fewest active
	// condition flags, first-seen winning ties.
	DedupKeepFewestConditions DedupPolicy = "keep-fewest-conditions"
)

// ParseDedupPolicy validates a policy token.
func ParseDedupPolicy(token string) (DedupPolicy, error) {
	switch DedupPolicy(token) {
	case DedupKeepFirst, DedupKeepFewestConditions:
		return DedupPolicy(token), nil
	}
	return "", errors.NewDataQualityError("ParseDedupPolicy", "", "",
		"unknown dedup policy: "+token)
}

// OrdersResult carries the cleaned order events plus the bookkeeping the
// pipeline logs: how many duplicate rows were discarded and how many of
// those violated the keep-first premise by carrying more than one active
// condition.
type OrdersResult struct {
	Events            []model.OrderEvent
	DuplicatesDropped int
	HeuristicMisfits  int
}

// Orders cleans the raw orders table: condition tokens become 0/1 flags
// and duplicate order identifiers are resolved to exactly one row each
// under the given policy.
func Orders(table *io.Table, policy DedupPolicy) (OrdersResult, error) {
	const op = "CleanOrders"

	required := []string{io.ColDoctorID, io.ColOrderID, io.ColOrderNum}
	required = append(required, model.ConditionNames[:]...)
	if err := table.RequireColumns(op, required...); err != nil {
		return OrdersResult{}, err
	}

	events := make([]model.OrderEvent, 0, table.Len())
	for i := range table.Len() {
		ev := model.OrderEvent{
			DoctorID: table.Value(i, io.ColDoctorID),
			OrderID:  table.Value(i, io.ColOrderID),
		}
		if missing(ev.DoctorID) || missing(ev.OrderID) {
			return OrdersResult{}, errors.NewDataQualityError(op, table.Name, io.ColOrderID,
				fmt.Sprintf("row %d: missing doctor or order identifier", i))
		}

		seq, err := strconv.Atoi(table.Value(i, io.ColOrderNum))
		if err != nil {
			return OrdersResult{}, errors.NewDataQualityError(op, table.Name, io.ColOrderNum,
				fmt.Sprintf("row %d: non-integer sequence number %q", i, table.Value(i, io.ColOrderNum)))
		}
		ev.SeqNo = seq

		for c, name := range model.ConditionNames {
			flag, err := parseConditionFlag(table.Value(i, name))
			if err != nil {
				return OrdersResult{}, errors.NewDataQualityError(op, table.Name, name,
					fmt.Sprintf("row %d: %v", i, err))
			}
			ev.Conditions[c] = flag
		}

		events = append(events, ev)
	}

	return dedupOrders(events, policy), nil
}

// parseConditionFlag maps the two token pairs the raw data uses onto 0/1.
// "After" means the switch is applied on the produced device.
func parseConditionFlag(token string) (uint8, error) {
	switch strings.ToLower(token) {
	case "true", "after", "1":
		return 1, nil
	case "false", "before", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("unmappable boolean token %q", token)
}

// dedupOrders retains exactly one event per order identifier. Applying
// it to already-deduplicated events is a no-op.
func dedupOrders(events []model.OrderEvent, policy DedupPolicy) OrdersResult {
	kept := make([]model.OrderEvent, 0, len(events))
	byID := make(map[string]int, len(events))
	misfits := 0

	for _, ev := range events {
		idx, seen := byID[ev.OrderID]
		if !seen {
			byID[ev.OrderID] = len(kept)
			kept = append(kept, ev)
			continue
		}

		// The keep-first premise holds when discarded duplicates carry at
		// most one active condition.
		discarded := ev
		if policy == DedupKeepFewestConditions && ev.ActiveConditions() < kept[idx].ActiveConditions() {
			discarded = kept[idx]
			kept[idx] = ev
		}
		if discarded.ActiveConditions() > 1 {
			misfits++
		}
	}

	return OrdersResult{
		Events:            kept,
		DuplicatesDropped: len(events) - len(kept),
		HeuristicMisfits:  misfits,
	}
}
