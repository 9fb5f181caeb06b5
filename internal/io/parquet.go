package io

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/praxa/docsegment/internal/model"
)

// ParquetWriter writes the labeled doctor table in Parquet format.
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetWriter creates a new Parquet writer with the specified options.
func NewParquetWriter(writer io.Writer, options ParquetOptions, mem memory.Allocator) *ParquetWriter {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     mem,
	}
}

// outputSchema builds the Arrow schema matching OutputColumns.
func outputSchema() *arrow.Schema {
	fields := []arrow.Field{
		{Name: ColDoctorID, Type: arrow.BinaryTypes.String},
		{Name: ColRegion, Type: arrow.BinaryTypes.String},
		{Name: ColCategory, Type: arrow.BinaryTypes.String},
		{Name: ColRank, Type: arrow.BinaryTypes.String},
		{Name: ColIncidenceRate, Type: arrow.PrimitiveTypes.Float64},
		{Name: ColReworkRate, Type: arrow.PrimitiveTypes.Float64},
		{Name: ColSatisfaction, Type: arrow.PrimitiveTypes.Float64},
		{Name: ColExperience, Type: arrow.PrimitiveTypes.Float64},
		{Name: "prior_year_purchases", Type: arrow.PrimitiveTypes.Float64},
	}
	for _, name := range model.ConditionNames {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64})
	}
	fields = append(fields,
		arrow.Field{Name: "total_settings", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "total_orders", Type: arrow.PrimitiveTypes.Int64},
	)
	for _, ct := range model.ComplaintTypes() {
		fields = append(fields, arrow.Field{
			Name: "complaints_" + complaintColumnSuffix(ct),
			Type: arrow.PrimitiveTypes.Int64,
		})
	}
	fields = append(fields,
		arrow.Field{Name: "total_complaints", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: ColInstructions, Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "segment", Type: arrow.PrimitiveTypes.Int64},
	)
	return arrow.NewSchema(fields, nil)
}

// Write converts the labeled rows into an Arrow record and writes it as
// a single Parquet row group.
func (w *ParquetWriter) Write(rows []model.LabeledRow) error {
	schema := outputSchema()
	builder := array.NewRecordBuilder(w.mem, schema)
	defer builder.Release()

	for i := range rows {
		appendRow(builder, &rows[i])
	}

	record := builder.NewRecord()
	defer record.Release()

	var compression compress.Compression
	switch w.options.Compression {
	case "gzip":
		compression = compress.Codecs.Gzip
	case "zstd":
		compression = compress.Codecs.Zstd
	case "uncompressed":
		compression = compress.Codecs.Uncompressed
	default:
		compression = compress.Codecs.Snappy
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compression),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(w.mem))

	fileWriter, err := pqarrow.NewFileWriter(schema, w.writer, props, arrowProps)
	if err != nil {
		return errors.NewInternalError("WriteParquet", fmt.Errorf("creating file writer: %w", err))
	}

	if err := fileWriter.Write(record); err != nil {
		_ = fileWriter.Close()
		return errors.NewInternalError("WriteParquet", fmt.Errorf("writing record: %w", err))
	}

	if err := fileWriter.Close(); err != nil {
		return errors.NewInternalError("WriteParquet", fmt.Errorf("closing file writer: %w", err))
	}
	return nil
}

func appendRow(builder *array.RecordBuilder, row *model.LabeledRow) {
	field := 0
	next := func() int { f := field; field++; return f }

	builder.Field(next()).(*array.StringBuilder).Append(row.ID)
	builder.Field(next()).(*array.StringBuilder).Append(row.Region)
	builder.Field(next()).(*array.StringBuilder).Append(row.Category.String())
	builder.Field(next()).(*array.StringBuilder).Append(row.Rank.String())
	builder.Field(next()).(*array.Float64Builder).Append(row.IncidenceRate)
	builder.Field(next()).(*array.Float64Builder).Append(row.ReworkRate)

	satisfaction := builder.Field(next()).(*array.Float64Builder)
	if row.Satisfaction != nil {
		satisfaction.Append(*row.Satisfaction)
	} else {
		satisfaction.AppendNull()
	}

	builder.Field(next()).(*array.Float64Builder).Append(row.Experience)
	builder.Field(next()).(*array.Float64Builder).Append(row.PriorYearPurchases)

	for _, sum := range row.ConditionSums {
		builder.Field(next()).(*array.Int64Builder).Append(int64(sum))
	}
	builder.Field(next()).(*array.Int64Builder).Append(int64(row.TotalSettings))
	builder.Field(next()).(*array.Int64Builder).Append(int64(row.TotalOrders))
	for _, count := range row.ComplaintCounts {
		builder.Field(next()).(*array.Int64Builder).Append(int64(count))
	}
	builder.Field(next()).(*array.Int64Builder).Append(int64(row.TotalComplaints))
	builder.Field(next()).(*array.Int64Builder).Append(int64(row.SpecialInstructions))
	builder.Field(next()).(*array.Int64Builder).Append(int64(row.Segment))
}
