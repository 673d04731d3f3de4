// Package export builds the monthly recap spreadsheet: one workbook per
// request, one sheet named after the month, one row per radiograph.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/radiodent/radiodiagnostic-api/internal/repository"
)

// recapHeaders is the fixed column layout of a recap sheet.
var recapHeaders = []struct {
	title string
	width float64
}{
	{"Patient Code", 30},
	{"Patient Name", 30},
	{"Panoramic URL", 30},
	{"Radiographer Check Date", 30},
	{"Doctor Check Date", 30},
	{"Manual Interpretation", 50},
	{"Status", 10},
	{"Doctor Name", 30},
	{"Radiographer Name", 30},
}

const dateLayout = "2006/01/02"

// BuildRecap renders the given radiograph rows into a workbook whose single
// sheet is named after the month. It returns the workbook and the file name
// it should be saved under ("recaps-<Month>-<date>.xlsx").
func BuildRecap(rows []repository.RadiographRow, month time.Month) (*excelize.File, string, error) {
	f := excelize.NewFile()
	sheet := month.String()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	for i, h := range recapHeaders {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, col+"1", h.title); err != nil {
			return nil, "", err
		}
		if err := f.SetColWidth(sheet, col, col, h.width); err != nil {
			return nil, "", err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", err
	}
	lastCol, err := excelize.ColumnNumberToName(len(recapHeaders))
	if err != nil {
		return nil, "", err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, "", err
	}

	for i, row := range rows {
		values := []any{
			row.PatientID,
			row.PatientName,
			row.PanoramikPicture,
			row.PanoramikUploadDate.Format(dateLayout),
			formatDatePtr(row.PanoramikCheckDate),
			strOrEmpty(row.ManualInterpretation),
			row.Status,
			strOrEmpty(row.DoctorName),
			row.RadiographerName,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, "", err
		}
	}

	filename := fmt.Sprintf("recaps-%s-%s.xlsx",
		sheet, time.Now().UTC().Format("2006-01-02"))
	return f, filename, nil
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
