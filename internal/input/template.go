package input

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name used by WriteTemplate
const TemplateSheet = "Beam"

var templateHeader = []interface{}{"Kind", "Type", "Start (m)", "End (m)", "Magnitude", "Case", "Label"}

// templateRows is a 10 m simply supported beam with a full-span UDL and a
// live point load
var templateRows = [][]interface{}{
	{"beam", "", 0, 10, "", "", "Main span"},
	{"support", "pin", 0, "", "", "", "A"},
	{"support", "roller", 10, "", "", "", "B"},
	{"load", "udl", 0, 10, 5, "D", "Self weight + finishes"},
	{"load", "point", 4, "", 20, "L", "Equipment"},
}

var templateNotes = []string{
	"Kind: beam (End = span length), support, or load.",
	"Support types: pin, roller, fixed.",
	"Load types: point (force), moment (couple), udl (force per length, Start to End).",
	"Forces and UDLs are positive downward; moments are positive clockwise.",
	"Case: D, L, Lr, W, E or R (blank = D). Used by NSCP load combinations.",
	"A sheet with Position, Shear and Moment columns is read as a precomputed diagram table.",
}

// NewTemplate builds an example workbook in the accepted layout
func NewTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(TemplateSheet, "A1", &templateHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(TemplateSheet, "A1", "G1", bold); err != nil {
		f.Close()
		return nil, err
	}
	for i, row := range templateRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(TemplateSheet, cell, &r); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(TemplateSheet, "A", "F", 12); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(TemplateSheet, "G", "G", 28); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet("Notes"); err != nil {
		f.Close()
		return nil, err
	}
	for i, note := range templateNotes {
		if err := f.SetCellValue("Notes", fmt.Sprintf("A%d", i+1), note); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteTemplate saves an example workbook to path
func WriteTemplate(path string) error {
	f, err := NewTemplate()
	if err != nil {
		return fmt.Errorf("build template: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save template %s: %w", path, err)
	}
	return nil
}
