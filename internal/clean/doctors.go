// Package clean repairs each raw table independently: sentinel
// substitution, ordinal and categorical typing, boolean encoding,
// duplicate-order resolution. Malformed domain values fail loudly with a
// DataQualityError; the cleaner never coerces a bad token into a wrong
// type. Each cleaner returns fresh typed records and leaves the raw table
// untouched.
package clean

import (
	"fmt"
	"strconv"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/model"
)

// Sentinel is the placeholder token the raw tables use for a missing cell.
const Sentinel = "--"

func missing(value string) bool {
	return value == "" || value == Sentinel
}

// Doctors cleans the raw doctors table into typed records.
//
// The sentinel becomes missing; rank becomes the ordered nine-level scale
// (missing allowed here, filtered by the merger); satisfaction becomes a
// nullable float; the raw "purchases" column is carried as prior-year
// purchases to keep it distinct from order-level purchase concepts.
func Doctors(table *io.Table) ([]model.DoctorRecord, error) {
	const op = "CleanDoctors"

	if err := table.RequireColumns(op,
		io.ColDoctorID, io.ColRegion, io.ColCategory, io.ColRank,
		io.ColIncidenceRate, io.ColReworkRate, io.ColSatisfaction,
		io.ColExperience, io.ColPurchases,
	); err != nil {
		return nil, err
	}

	records := make([]model.DoctorRecord, 0, table.Len())
	seen := make(map[string]struct{}, table.Len())

	for i := range table.Len() {
		id := table.Value(i, io.ColDoctorID)
		if missing(id) {
			return nil, errors.NewDataQualityError(op, table.Name, io.ColDoctorID,
				fmt.Sprintf("row %d: doctor identifier is missing", i))
		}
		if _, dup := seen[id]; dup {
			return nil, errors.NewDataQualityError(op, table.Name, io.ColDoctorID,
				fmt.Sprintf("row %d: duplicate doctor identifier %q", i, id))
		}
		seen[id] = struct{}{}

		rec := model.DoctorRecord{ID: id}

		if region := table.Value(i, io.ColRegion); !missing(region) {
			rec.Region = region
		}

		category, err := model.ParseCategory(table.Value(i, io.ColCategory))
		if err != nil {
			return nil, err
		}
		rec.Category = category

		if token := table.Value(i, io.ColRank); !missing(token) {
			rank, err := model.ParseRank(token)
			if err != nil {
				return nil, err
			}
			rec.Rank = &rank
		}

		if rec.IncidenceRate, err = parseFloat(op, table, i, io.ColIncidenceRate); err != nil {
			return nil, err
		}
		if rec.ReworkRate, err = parseFloat(op, table, i, io.ColReworkRate); err != nil {
			return nil, err
		}
		if rec.Experience, err = parseFloat(op, table, i, io.ColExperience); err != nil {
			return nil, err
		}
		if rec.PriorYearPurchases, err = parseFloat(op, table, i, io.ColPurchases); err != nil {
			return nil, err
		}

		if token := table.Value(i, io.ColSatisfaction); !missing(token) {
			v, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, errors.NewDataQualityError(op, table.Name, io.ColSatisfaction,
					fmt.Sprintf("row %d: non-numeric satisfaction %q", i, token))
			}
			rec.Satisfaction = &v
		}

		records = append(records, rec)
	}

	return records, nil
}

func parseFloat(op string, table *io.Table, row int, column string) (float64, error) {
	token := table.Value(row, column)
	if missing(token) {
		return 0, errors.NewDataQualityError(op, table.Name, column,
			fmt.Sprintf("row %d: missing value in non-imputed numeric column", row))
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, errors.NewDataQualityError(op, table.Name, column,
			fmt.Sprintf("row %d: non-numeric value %q", row, token))
	}
	return v, nil
}
