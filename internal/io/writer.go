package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/model"
)

// OutputColumns is the stable column order of the labeled output table.
var OutputColumns = buildOutputColumns()

func buildOutputColumns() []string {
	cols := []string{
		ColDoctorID, ColRegion, ColCategory, ColRank,
		ColIncidenceRate, ColReworkRate, ColSatisfaction, ColExperience,
		"prior_year_purchases",
	}
	cols = append(cols, model.ConditionNames[:]...)
	cols = append(cols, "total_settings", "total_orders")
	for _, ct := range model.ComplaintTypes() {
		cols = append(cols, "complaints_"+complaintColumnSuffix(ct))
	}
	cols = append(cols, "total_complaints", ColInstructions, "segment")
	return cols
}

func complaintColumnSuffix(ct model.ComplaintType) string {
	switch ct {
	case model.ComplaintCorrect:
		return "correct"
	case model.ComplaintIncorrect:
		return "incorrect"
	case model.ComplaintRAndR:
		return "r_and_r"
	default:
		return "specific"
	}
}

// CSVWriter writes the labeled doctor table as CSV.
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options.
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// Write writes the labeled rows in OutputColumns order.
func (w *CSVWriter) Write(rows []model.LabeledRow) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter
	defer csvWriter.Flush()

	if w.options.Header {
		if err := csvWriter.Write(OutputColumns); err != nil {
			return errors.NewInternalError("WriteCSV", fmt.Errorf("writing header: %w", err))
		}
	}

	for i := range rows {
		if err := csvWriter.Write(formatRow(&rows[i])); err != nil {
			return errors.NewInternalError("WriteCSV", fmt.Errorf("writing row %d: %w", i, err))
		}
	}

	if err := csvWriter.Error(); err != nil {
		return errors.NewInternalError("WriteCSV", err)
	}
	return nil
}

func formatRow(row *model.LabeledRow) []string {
	out := make([]string, 0, len(OutputColumns))
	out = append(out,
		row.ID,
		row.Region,
		row.Category.String(),
		row.Rank.String(),
		formatFloat(row.IncidenceRate),
		formatFloat(row.ReworkRate),
		formatOptFloat(row.Satisfaction),
		formatFloat(row.Experience),
		formatFloat(row.PriorYearPurchases),
	)
	for _, sum := range row.ConditionSums {
		out = append(out, strconv.Itoa(sum))
	}
	out = append(out, strconv.Itoa(row.TotalSettings), strconv.Itoa(row.TotalOrders))
	for _, count := range row.ComplaintCounts {
		out = append(out, strconv.Itoa(count))
	}
	out = append(out,
		strconv.Itoa(row.TotalComplaints),
		strconv.Itoa(int(row.SpecialInstructions)),
		strconv.Itoa(row.Segment),
	)
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
