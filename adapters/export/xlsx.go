package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vbtlab/domain/study"
	"vbtlab/ports"
)

const datasetXLSX = "vbt_dataset.xlsx"

// XLSXWriter renders both tables into a single workbook, one sheet per
// table, with the same cell values the CSV writer emits.
type XLSXWriter struct {
	dir string
}

var _ ports.DatasetWriter = (*XLSXWriter)(nil)

func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

func (w *XLSXWriter) Write(ctx context.Context, ds *study.Dataset, report *study.QualityReport) ([]string, error) {
	if ds == nil {
		return nil, fmt.Errorf("xlsx export requires a dataset")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "participants"); err != nil {
		return nil, fmt.Errorf("failed to name participant sheet: %w", err)
	}
	pRows := make([][]string, 0, len(ds.Participants))
	for _, p := range ds.Participants {
		pRows = append(pRows, participantRow(p))
	}
	if err := writeSheet(f, "participants", participantHeaders(), pRows); err != nil {
		return nil, fmt.Errorf("failed to write participant sheet: %w", err)
	}

	if _, err := f.NewSheet("vbt_measurements"); err != nil {
		return nil, fmt.Errorf("failed to create measurement sheet: %w", err)
	}
	mRows := make([][]string, 0, len(ds.Measurements))
	for _, m := range ds.Measurements {
		mRows = append(mRows, measurementRow(m))
	}
	if err := writeSheet(f, "vbt_measurements", measurementHeaders(), mRows); err != nil {
		return nil, fmt.Errorf("failed to write measurement sheet: %w", err)
	}

	path := filepath.Join(w.dir, datasetXLSX)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[Export] Wrote %s (%d participants, %d measurements)", path, len(pRows), len(mRows))
	return []string{path}, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
