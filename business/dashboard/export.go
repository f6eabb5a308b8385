package dashboard

import (
	"fmt"
	"io"
	"strings"

	"replacementGame/domain"

	"github.com/xuri/excelize/v2"
)

// default sheet of a new workbook
const exportSheet = "Sheet1"

var exportHeader = []string{"Timestamp", "Samples", "MSE", "R2", "Features", "Model"}

// WriteXLSX writes the retrain history as a single-sheet workbook, rows in
// the order the service returned them.
func WriteXLSX(w io.Writer, logs []domain.RetrainLog) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for r, l := range logs {
		row := []any{l.Timestamp, l.NumSamples, l.MSE, l.R2, strings.Join(l.Features, ", "), l.ModelPath}
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
