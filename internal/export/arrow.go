// Package export writes simulation tick series to interchange formats
// for analysis tooling. CSV mirrors the experiment log layout; Arrow IPC
// carries the full series without lossy float formatting.
package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nervelab/neuroplex/internal/store"
)

// tickSchema describes one row per simulation tick. The run id, when
// known, travels in the schema metadata so a file can be traced back
// to its store entry.
func tickSchema(runID string) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "tick", Type: arrow.PrimitiveTypes.Int64},
		{Name: "target_firing", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "target_energy", Type: arrow.PrimitiveTypes.Float64},
		{Name: "target_priority", Type: arrow.PrimitiveTypes.Float64},
		{Name: "total_firing", Type: arrow.PrimitiveTypes.Int64},
		{Name: "avg_energy", Type: arrow.PrimitiveTypes.Float64},
		{Name: "avg_novelty", Type: arrow.PrimitiveTypes.Float64},
		{Name: "alert_level", Type: arrow.PrimitiveTypes.Float64},
	}
	if runID == "" {
		return arrow.NewSchema(fields, nil)
	}
	md := arrow.NewMetadata([]string{"run_id"}, []string{runID})
	return arrow.NewSchema(fields, &md)
}

// WriteArrowFile writes a tick series to path in the Arrow IPC file format.
// An empty runID omits the metadata entry.
func WriteArrowFile(path, runID string, series []store.TickMetrics) error {
	schema := tickSchema(runID)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	for _, m := range series {
		b.Field(0).(*array.Int64Builder).Append(int64(m.Tick))
		b.Field(1).(*array.BooleanBuilder).Append(m.TargetFiring)
		b.Field(2).(*array.Float64Builder).Append(m.TargetEnergy)
		b.Field(3).(*array.Float64Builder).Append(m.TargetPriority)
		b.Field(4).(*array.Int64Builder).Append(int64(m.TotalFiring))
		b.Field(5).(*array.Float64Builder).Append(m.AvgEnergy)
		b.Field(6).(*array.Float64Builder).Append(m.AvgNovelty)
		b.Field(7).(*array.Float64Builder).Append(m.AlertLevel)
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create arrow file: %w", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}
	if rec.NumRows() > 0 {
		if err := w.Write(rec); err != nil {
			w.Close()
			return fmt.Errorf("failed to write arrow record: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize arrow file: %w", err)
	}
	return nil
}

// ReadArrowFile loads a tick series written by WriteArrowFile. The second
// return value is the run id from the schema metadata, empty if absent.
func ReadArrowFile(path string) ([]store.TickMetrics, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open arrow file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read arrow file: %w", err)
	}
	defer r.Close()

	var runID string
	md := r.Schema().Metadata()
	if i := md.FindKey("run_id"); i >= 0 {
		runID = md.Values()[i]
	}

	var series []store.TickMetrics
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read record %d: %w", i, err)
		}

		ticks := rec.Column(0).(*array.Int64)
		firing := rec.Column(1).(*array.Boolean)
		targetEnergy := rec.Column(2).(*array.Float64)
		targetPriority := rec.Column(3).(*array.Float64)
		totalFiring := rec.Column(4).(*array.Int64)
		avgEnergy := rec.Column(5).(*array.Float64)
		avgNovelty := rec.Column(6).(*array.Float64)
		alertLevel := rec.Column(7).(*array.Float64)

		for j := 0; j < int(rec.NumRows()); j++ {
			series = append(series, store.TickMetrics{
				Tick:           int(ticks.Value(j)),
				TargetFiring:   firing.Value(j),
				TargetEnergy:   targetEnergy.Value(j),
				TargetPriority: targetPriority.Value(j),
				TotalFiring:    int(totalFiring.Value(j)),
				AvgEnergy:      avgEnergy.Value(j),
				AvgNovelty:     avgNovelty.Value(j),
				AlertLevel:     alertLevel.Value(j),
			})
		}
	}
	return series, runID, nil
}
