package export

import (
	"github.com/xuri/excelize/v2"

	"leadhunt/internal/domain"
)

const SheetName = "Leads"

type XLSX struct{}

func (XLSX) Ext() string { return ".xlsx" }

func (XLSX) Write(path string, leads []domain.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	rows := make([][]string, 0, len(leads)+1)
	rows = append(rows, Header)
	for _, l := range leads {
		rows = append(rows, Row(l))
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &rows[i]); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(SheetName, "A", "C", 22)
	_ = f.SetColWidth(SheetName, "D", "D", 45)
	_ = f.SetColWidth(SheetName, "E", "E", 80)
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return f.SaveAs(path)
}
