// Package io provides input and output operations for the segmentation
// pipeline.
//
// The readers load the four raw tables (doctors, orders, complaints,
// instructions) from delimited text into string-valued Table snapshots;
// type repair and sentinel handling belong to the cleaner, not the loader.
// The writers emit the final labeled table as CSV or Parquet.
//
// Every loaded table carries a 64-bit content fingerprint so a run can be
// verified to have consumed byte-identical inputs; determinism across runs
// is a correctness requirement for the pipeline.
package io

import (
	"io"
)

// Column names for the four raw tables. Header tokens are significant
// identifiers, not display labels; a missing required column fails the
// load with no partial result.
const (
	ColDoctorID      = "doctor_id"
	ColRegion        = "region"
	ColCategory      = "category"
	ColRank          = "rank"
	ColIncidenceRate = "incidence_rate"
	ColReworkRate    = "rework_rate"
	ColSatisfaction  = "satisfaction"
	ColExperience    = "experience"
	ColPurchases     = "purchases"

	ColOrderID  = "order_id"
	ColOrderNum = "order_num"

	ColComplaintType = "complaint_type"
	ColQuantity      = "qty"

	ColInstructions = "instructions"
)

// Table names as they appear in errors and logs.
const (
	TableDoctors      = "doctors"
	TableOrders       = "orders"
	TableComplaints   = "complaints"
	TableInstructions = "instructions"
)

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:        ',',
		Comment:          0,
		Header:           true,
		SkipInitialSpace: true,
	}
}

// TableReader reads one raw table from delimited text.
type TableReader struct {
	reader  io.Reader
	name    string
	options CSVOptions
}

// NewTableReader creates a reader for the named table with the given options.
func NewTableReader(reader io.Reader, name string, options CSVOptions) *TableReader {
	return &TableReader{
		reader:  reader,
		name:    name,
		options: options,
	}
}

// ParquetOptions contains configuration options for Parquet output
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for writing operations
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   1000,
	}
}
