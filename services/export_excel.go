package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"os"

	"github.com/xuri/excelize/v2"
)

const (
	templateDataRow  = 3
	lastExportColumn = "K"

	baseRowHeight       = 260.0
	rowHeightPerAnn     = 60.0
	rowHeightPadding    = 80.0
	baseImageHeight     = 250.0
	imageHeightPerAnn   = 55.0
	imageHeightPadding  = 60.0
	exportImageWidth    = 400.0
	maxExcelRowHeight   = 409.0
	exportImageOffsetPx = 4
)

var exportColumns = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}

// itemRowHeight grows with the number of annotations so every swatch row of
// the composite stays visible.
func itemRowHeight(annotations int) float64 {
	return min(max(baseRowHeight, float64(annotations)*rowHeightPerAnn+rowHeightPadding), maxExcelRowHeight)
}

func itemImageHeight(annotations int) float64 {
	return max(baseImageHeight, float64(annotations)*imageHeightPerAnn+imageHeightPadding)
}

// openQuotationTemplate opens the template workbook at path, falling back to
// the built-in layout when path is empty or unreadable.
func openQuotationTemplate(path string) (*excelize.File, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			f, err := excelize.OpenFile(path)
			if err == nil {
				return f, nil
			}
			log.Printf("export: template %s unusable, using built-in: %v", path, err)
		} else {
			log.Printf("export: template %s not found, using built-in", path)
		}
	}
	return newQuotationTemplate()
}

// newQuotationTemplate builds the default sheet: a header row, the
// reference line in row 2 and a styled item row 3 that later rows copy.
func newQuotationTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Quotation"); err != nil {
		f.Close()
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	sheet = "Quotation"

	widths := []float64{5, 58, 22, 24, 7, 34, 9, 10, 14, 15, 14}
	for i, col := range exportColumns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	refStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create reference style: %w", err)
	}
	textStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create text style: %w", err)
	}
	centerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create center style: %w", err)
	}
	cbmFmt := "0.000"
	cbmStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Alignment:    &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:       thinBorders(),
		CustomNumFmt: &cbmFmt,
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create cbm style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create money style: %w", err)
	}

	headers := []string{"#", "Image", "Item", "Description", "Qty", "Material Specification", "CBM", "Total CBM", "Unit Price (AED)", "Total Price (AED)", "Remarks"}
	for i, h := range headers {
		f.SetCellValue(sheet, exportColumns[i]+"1", h)
	}
	f.SetCellStyle(sheet, "A1", lastExportColumn+"1", headerStyle)
	f.SetRowHeight(sheet, 1, 30)

	if err := f.MergeCell(sheet, "A2", lastExportColumn+"2"); err != nil {
		f.Close()
		return nil, fmt.Errorf("merge reference row: %w", err)
	}
	f.SetCellStyle(sheet, "A2", lastExportColumn+"2", refStyle)

	row := fmt.Sprint(templateDataRow)
	f.SetCellStyle(sheet, "A"+row, "F"+row, textStyle)
	f.SetCellStyle(sheet, "A"+row, "A"+row, centerStyle)
	f.SetCellStyle(sheet, "E"+row, "E"+row, centerStyle)
	f.SetCellStyle(sheet, "G"+row, "H"+row, cbmStyle)
	f.SetCellStyle(sheet, "I"+row, "J"+row, moneyStyle)
	f.SetCellStyle(sheet, "K"+row, "K"+row, textStyle)
	f.SetRowHeight(sheet, templateDataRow, baseRowHeight)

	return f, nil
}

// copyRowStyle applies the style of every export column in src to dst.
func copyRowStyle(f *excelize.File, sheet string, src, dst int) error {
	for _, col := range exportColumns {
		style, err := f.GetCellStyle(sheet, fmt.Sprintf("%s%d", col, src))
		if err != nil {
			return fmt.Errorf("read style %s%d: %w", col, src, err)
		}
		cell := fmt.Sprintf("%s%d", col, dst)
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("copy style to %s: %w", cell, err)
		}
	}
	return nil
}

// addItemImage anchors the composite in column B, scaled to the export width
// and the annotation-dependent height.
func addItemImage(f *excelize.File, sheet string, rowNum int, r QuotationExportRow) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(r.Image))
	if err != nil {
		return fmt.Errorf("decode composite: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decode composite: empty image")
	}
	return f.AddPictureFromBytes(sheet, fmt.Sprintf("B%d", rowNum), &excelize.Picture{
		Extension: ".png",
		File:      r.Image,
		Format: &excelize.GraphicOptions{
			OffsetX:         exportImageOffsetPx,
			OffsetY:         exportImageOffsetPx,
			ScaleX:          exportImageWidth / float64(cfg.Width),
			ScaleY:          itemImageHeight(r.AnnotationCount) / float64(cfg.Height),
			Positioning:     "oneCell",
			LockAspectRatio: false,
			AltText:         r.Name,
		},
	})
}

// GenerateQuotationExcel fills the quotation template and returns the
// workbook bytes. templatePath may be empty.
func GenerateQuotationExcel(data QuotationExportData, templatePath string) ([]byte, error) {
	f, err := openQuotationTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)

	f.SetCellValue(sheet, "A2", sanitizeExcelCell(data.ReferenceNumber+" - "+data.Customer.Name))

	for i, r := range data.Rows {
		rowNum := templateDataRow + i
		if i > 0 {
			if err := f.InsertRows(sheet, rowNum, 1); err != nil {
				return nil, fmt.Errorf("insert row %d: %w", rowNum, err)
			}
			if err := copyRowStyle(f, sheet, templateDataRow, rowNum); err != nil {
				return nil, err
			}
		}
		if err := f.SetRowHeight(sheet, rowNum, itemRowHeight(r.AnnotationCount)); err != nil {
			return nil, fmt.Errorf("row height %d: %w", rowNum, err)
		}

		cell := func(col string) string { return fmt.Sprintf("%s%d", col, rowNum) }
		f.SetCellValue(sheet, cell("A"), r.Index)
		f.SetCellValue(sheet, cell("C"), sanitizeExcelCell(r.Name))
		f.SetCellValue(sheet, cell("D"), sanitizeExcelCell(r.Description))
		f.SetCellValue(sheet, cell("E"), r.Quantity)
		f.SetCellValue(sheet, cell("F"), sanitizeExcelCell(r.Specification))
		f.SetCellValue(sheet, cell("G"), r.CBM)
		f.SetCellValue(sheet, cell("H"), r.TotalCBM)
		f.SetCellValue(sheet, cell("I"), r.UnitPrice)
		f.SetCellValue(sheet, cell("J"), r.TotalPrice)

		if len(r.Image) > 0 {
			if err := addItemImage(f, sheet, rowNum, r); err != nil {
				log.Printf("export: image for row %d skipped: %v", rowNum, err)
			}
		}
	}

	summary := templateDataRow + len(data.Rows)
	f.SetCellValue(sheet, fmt.Sprintf("I%d", summary), "Subtotal:")
	f.SetCellValue(sheet, fmt.Sprintf("J%d", summary), data.Subtotal)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summary+1), "VAT 5%")
	f.SetCellValue(sheet, fmt.Sprintf("J%d", summary+1), data.VATAmount)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summary+2), "TOTAL")
	f.SetCellValue(sheet, fmt.Sprintf("J%d", summary+2), data.TotalAmount)

	if err := setPrintArea(f, sheet, summary+2); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// setPrintArea limits printing to A1:K<lastRow>, one page wide.
func setPrintArea(f *excelize.File, sheet string, lastRow int) error {
	_ = f.DeleteDefinedName(&excelize.DefinedName{Name: "_xlnm.Print_Area", Scope: sheet})
	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: fmt.Sprintf("'%s'!$A$1:$%s$%d", sheet, lastExportColumn, lastRow),
		Scope:    sheet,
	}); err != nil {
		return fmt.Errorf("set print area: %w", err)
	}

	fitToPage := true
	if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return fmt.Errorf("set fit to page: %w", err)
	}
	wide, tall := 1, 0
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{FitToWidth: &wide, FitToHeight: &tall}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
