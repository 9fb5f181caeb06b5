package clean

import (
	"fmt"
	"strconv"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/model"
)

// ComplaintsResult carries the cleaned complaint records plus the number
// of rows dropped for a missing complaint type.
type ComplaintsResult struct {
	Records            []model.ComplaintRecord
	DroppedMissingType int
}

// Complaints cleans the raw complaints table. Rows with a missing
// complaint type are discarded as missing-completely-at-random noise;
// an unrecognized type token or a negative quantity fails the run.
func Complaints(table *io.Table) (ComplaintsResult, error) {
	const op = "CleanComplaints"

	if err := table.RequireColumns(op, io.ColDoctorID, io.ColComplaintType, io.ColQuantity); err != nil {
		return ComplaintsResult{}, err
	}

	result := ComplaintsResult{Records: make([]model.ComplaintRecord, 0, table.Len())}

	for i := range table.Len() {
		token := table.Value(i, io.ColComplaintType)
		if missing(token) {
			result.DroppedMissingType++
			continue
		}

		ctype, err := model.ParseComplaintType(token)
		if err != nil {
			return ComplaintsResult{}, err
		}

		doctorID := table.Value(i, io.ColDoctorID)
		if missing(doctorID) {
			return ComplaintsResult{}, errors.NewDataQualityError(op, table.Name, io.ColDoctorID,
				fmt.Sprintf("row %d: missing doctor identifier", i))
		}

		qty, err := strconv.Atoi(table.Value(i, io.ColQuantity))
		if err != nil || qty < 0 {
			return ComplaintsResult{}, errors.NewDataQualityError(op, table.Name, io.ColQuantity,
				fmt.Sprintf("row %d: quantity must be a non-negative integer, got %q", i, table.Value(i, io.ColQuantity)))
		}

		result.Records = append(result.Records, model.ComplaintRecord{
			DoctorID: doctorID,
			Type:     ctype,
			Quantity: qty,
		})
	}

	return result, nil
}
