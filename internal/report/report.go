// Package report writes the offline artifacts: a multi-sheet Excel workbook
// for one country's analysis and the byte-for-byte dataset download copy.
package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/metrics"
)

// WriteWorkbook builds an .xlsx with four sheets — Profile, Series,
// Comparison, Targets — for the given snapshot.
func WriteWorkbook(path string, snap *metrics.Snapshot, series []dataset.Record, rows []metrics.ComparisonRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Profile"); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}

	f.SetCellValue("Profile", "A1", fmt.Sprintf("%s's Emissions Profile", snap.Country))
	f.SetCellValue("Profile", "A2", "Analysis Year")
	f.SetCellValue("Profile", "B2", snap.Year)
	f.SetCellValue("Profile", "A3", "Per Capita Emissions (kg CO2)")
	f.SetCellValue("Profile", "B3", snap.Current)
	f.SetCellValue("Profile", "C3", sourceLabel(snap.Predicted))
	f.SetCellValue("Profile", "A4", "Global Average (kg CO2)")
	f.SetCellValue("Profile", "B4", snap.GlobalAverage)
	f.SetCellValue("Profile", "A5", "Compared to Global Average")
	f.SetCellValue("Profile", "B5", fmt.Sprintf("%.1fx", snap.RatioToAverage))
	f.SetCellValue("Profile", "A6", "Historical Peak (kg CO2)")
	f.SetCellValue("Profile", "B6", snap.PeakValue)
	f.SetCellValue("Profile", "C6", fmt.Sprintf("in %d", snap.PeakYear))
	if snap.Trend != nil {
		f.SetCellValue("Profile", "A7", "Linear Trend (kg/year)")
		f.SetCellValue("Profile", "B7", snap.Trend.AnnualChangeKg)
	}

	if _, err := f.NewSheet("Series"); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	f.SetCellValue("Series", "A1", "Year")
	f.SetCellValue("Series", "B1", "Per Capita CO2 (kg)")
	f.SetCellValue("Series", "C1", "Total CO2 (kiloton)")
	for i, rec := range series {
		row := i + 2
		f.SetCellValue("Series", fmt.Sprintf("A%d", row), rec.Year)
		f.SetCellValue("Series", fmt.Sprintf("B%d", row), rec.PerCapitaCO2Kg)
		if rec.TotalCO2Kt != 0 {
			f.SetCellValue("Series", fmt.Sprintf("C%d", row), rec.TotalCO2Kt)
		}
	}

	if _, err := f.NewSheet("Comparison"); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	f.SetCellValue("Comparison", "A1", "Country")
	f.SetCellValue("Comparison", "B1", "Latest Year")
	f.SetCellValue("Comparison", "C1", "Per Capita CO2 (kg)")
	for i, row := range rows {
		r := i + 2
		f.SetCellValue("Comparison", fmt.Sprintf("A%d", r), row.Country)
		f.SetCellValue("Comparison", fmt.Sprintf("B%d", r), row.LatestYear)
		f.SetCellValue("Comparison", fmt.Sprintf("C%d", r), row.LatestValue)
	}

	if _, err := f.NewSheet("Targets"); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}
	f.SetCellValue("Targets", "A1", "Milestone")
	f.SetCellValue("Targets", "B1", "Target (kg CO2 per capita)")
	for i, tgt := range snap.Targets {
		r := i + 2
		f.SetCellValue("Targets", fmt.Sprintf("A%d", r), tgt.Label)
		f.SetCellValue("Targets", fmt.Sprintf("B%d", r), tgt.Value)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func sourceLabel(predicted bool) string {
	if predicted {
		return "predicted"
	}
	return "observed"
}

// ExportDataset copies the raw dataset file byte-for-byte to dstPath, the
// distinctly named download artifact. dstPath must differ from srcPath.
func ExportDataset(srcPath, dstPath string) error {
	if srcPath == dstPath {
		return fmt.Errorf("export: destination equals source %s", srcPath)
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("export: read %s: %w", srcPath, err)
	}
	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", dstPath, err)
	}
	return nil
}

// DatasetBytes returns the raw dataset contents for callers that stream the
// download instead of writing a file.
func DatasetBytes(srcPath string) (*bytes.Reader, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("export: read %s: %w", srcPath, err)
	}
	return bytes.NewReader(data), nil
}
