package clean

import (
	"fmt"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/io"
	"github.com/praxa/docsegment/internal/model"
)

// Instructions cleans the raw instructions table: Yes/No becomes 1/0 and
// the doctor identifier must be unique.
func Instructions(table *io.Table) ([]model.InstructionRecord, error) {
	const op = "CleanInstructions"

	if err := table.RequireColumns(op, io.ColDoctorID, io.ColInstructions); err != nil {
		return nil, err
	}

	records := make([]model.InstructionRecord, 0, table.Len())
	seen := make(map[string]struct{}, table.Len())

	for i := range table.Len() {
		doctorID := table.Value(i, io.ColDoctorID)
		if missing(doctorID) {
			return nil, errors.NewDataQualityError(op, table.Name, io.ColDoctorID,
				fmt.Sprintf("row %d: missing doctor identifier", i))
		}
		if _, dup := seen[doctorID]; dup {
			return nil, errors.NewDataQualityError(op, table.Name, io.ColDoctorID,
				fmt.Sprintf("row %d: duplicate doctor identifier %q", i, doctorID))
		}
		seen[doctorID] = struct{}{}

		var flag uint8
		switch table.Value(i, io.ColInstructions) {
		case "Yes":
			flag = 1
		case "No":
			flag = 0
		default:
			return nil, errors.NewDataQualityError(op, table.Name, io.ColInstructions,
				fmt.Sprintf("row %d: unmappable token %q", i, table.Value(i, io.ColInstructions)))
		}

		records = append(records, model.InstructionRecord{
			DoctorID:            doctorID,
			SpecialInstructions: flag,
		})
	}

	return records, nil
}
