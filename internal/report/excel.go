package report

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"roadrouter/internal/apperror"
)

// ExcelGenerator renders a Batch as a two-sheet workbook: "Query Results"
// and "Potential Quality".
type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator { return &ExcelGenerator{} }

func (g *ExcelGenerator) Format() string { return "xlsx" }

func (g *ExcelGenerator) Generate(b Batch) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})

	g.writeQueryResults(f, b.QueryResults, headerStyle)
	g.writePotentialQuality(f, b.PotentialQuality, headerStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "writing xlsx report")
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeQueryResults(f *excelize.File, rows []QueryResultRecord, headerStyle int) {
	const sheet = "Query Results"
	f.NewSheet(sheet)

	headers := []string{"type", "query_time_s", "cust_time_s", "num_runs", "num_valid", "total_dist", "avg_dist"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, cellAt(1, row), r.Type)
		f.SetCellValue(sheet, cellAt(2, row), r.QueryTimeS)
		f.SetCellValue(sheet, cellAt(3, row), r.CustTimeS)
		f.SetCellValue(sheet, cellAt(4, row), r.NumRuns)
		f.SetCellValue(sheet, cellAt(5, row), r.NumValid)
		f.SetCellValue(sheet, cellAt(6, row), r.TotalDist)
		f.SetCellValue(sheet, cellAt(7, row), r.AvgDist)
	}
}

func (g *ExcelGenerator) writePotentialQuality(f *excelize.File, rows []PotentialQualityRecord, headerStyle int) {
	const sheet = "Potential Quality"
	f.NewSheet(sheet)

	headers := []string{"name", "query_count", "time_type", "time_s"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "D1", headerStyle)

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, cellAt(1, row), r.Name)
		f.SetCellValue(sheet, cellAt(2, row), r.QueryCount)
		f.SetCellValue(sheet, cellAt(3, row), r.TimeType)
		f.SetCellValue(sheet, cellAt(4, row), r.TimeS)
	}
}

func cellAt(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
