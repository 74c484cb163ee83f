package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"vbtlab/domain/study"
	"vbtlab/ports"
)

const (
	participantsCSV = "participants.csv"
	measurementsCSV = "vbt_measurements.csv"
)

// CSVWriter renders the participant and measurement tables as CSV files,
// one row per entity, headers matching the published column contract.
type CSVWriter struct {
	dir string
}

var _ ports.DatasetWriter = (*CSVWriter)(nil)

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

func (w *CSVWriter) Write(ctx context.Context, ds *study.Dataset, report *study.QualityReport) ([]string, error) {
	if ds == nil {
		return nil, fmt.Errorf("csv export requires a dataset")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pPath := filepath.Join(w.dir, participantsCSV)
	pRows := make([][]string, 0, len(ds.Participants))
	for _, p := range ds.Participants {
		pRows = append(pRows, participantRow(p))
	}
	if err := writeCSVFile(pPath, participantHeaders(), pRows); err != nil {
		return nil, fmt.Errorf("failed to write participant table: %w", err)
	}
	log.Printf("[Export] Wrote %s (%d rows)", pPath, len(pRows))

	mPath := filepath.Join(w.dir, measurementsCSV)
	mRows := make([][]string, 0, len(ds.Measurements))
	for _, m := range ds.Measurements {
		mRows = append(mRows, measurementRow(m))
	}
	if err := writeCSVFile(mPath, measurementHeaders(), mRows); err != nil {
		return nil, fmt.Errorf("failed to write measurement table: %w", err)
	}
	log.Printf("[Export] Wrote %s (%d rows)", mPath, len(mRows))

	return []string{pPath, mPath}, nil
}

func writeCSVFile(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
