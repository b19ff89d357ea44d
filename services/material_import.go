package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"furniquote/quote"
)

// ErrUnsupportedImportFile is returned for uploads that are neither .csv nor .xlsx.
var ErrUnsupportedImportFile = errors.New("unsupported file format: must be .csv or .xlsx")

// importColumn describes one column of the material import sheet.
type importColumn struct {
	Key         string
	Label       string
	Required    bool
	Description string
	Example     string
}

var materialImportColumns = []importColumn{
	{Key: "name", Label: "Name", Required: true, Description: "Display name of the material", Example: "Velvet Rose"},
	{Key: "code", Label: "Code", Description: "Supplier or internal code", Example: "FAB-101"},
	{Key: "type", Label: "Type", Required: true, Description: "fabric, leather, wood, metal, glass or stone", Example: "fabric"},
	{Key: "price_uplift", Label: "Price Uplift", Description: "Added to the product base price, in AED", Example: "350"},
	{Key: "availability", Label: "Availability", Description: "in_stock, limited or out_of_stock (default in_stock)", Example: "in_stock"},
	{Key: "supplier", Label: "Supplier", Example: "Kvadrat"},
	{Key: "swatch_image_url", Label: "Swatch Image URL", Description: "Public URL of the swatch photo", Example: "https://example.com/velvet-rose.jpg"},
	{Key: "tags", Label: "Tags", Description: "Comma separated", Example: "Velvet, Pink"},
}

// ImportError is a single field-level problem on one row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is the outcome of parsing and validating an uploaded file.
// Materials holds only the rows without errors.
type ImportResult struct {
	FileName  string           `json:"file_name"`
	TotalRows int              `json:"total_rows"`
	ValidRows int              `json:"valid_rows"`
	ErrorRows int              `json:"error_rows"`
	Errors    []ImportError    `json:"errors"`
	Materials []quote.Material `json:"-"`
}

func parseCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// parseExcel reads headers and data rows from the first sheet.
func parseExcel(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapImportHeaders returns the column key for each header ("" when the
// header is not recognised). Matching ignores case and the " *" required
// marker the template adds.
func mapImportHeaders(headers []string) []string {
	byLabel := make(map[string]string, len(materialImportColumns))
	for _, c := range materialImportColumns {
		byLabel[strings.ToLower(c.Label)] = c.Key
		byLabel[c.Key] = c.Key
	}
	keys := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		keys[i] = byLabel[norm]
	}
	return keys
}

func columnLabel(key string) string {
	for _, c := range materialImportColumns {
		if c.Key == key {
			return c.Label
		}
	}
	return key
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// materialFromRow converts one row into a material. Parse problems are
// reported per field; the remaining fields are still validated.
func materialFromRow(rowNum int, data map[string]string) (quote.Material, []ImportError) {
	var errs []ImportError
	add := func(key, msg string) {
		errs = append(errs, ImportError{Row: rowNum, Field: columnLabel(key), Message: msg})
	}

	m := quote.Material{
		Name:           data["name"],
		Code:           data["code"],
		Type:           quote.MaterialType(strings.ToLower(data["type"])),
		Supplier:       data["supplier"],
		SwatchImageURL: data["swatch_image_url"],
		Tags:           splitTags(data["tags"]),
	}
	if v := data["price_uplift"]; v != "" {
		uplift, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			add("price_uplift", fmt.Sprintf("%q is not a number", v))
		}
		m.PriceUplift = uplift
	}
	availability, err := quote.ParseAvailability(strings.ToLower(data["availability"]))
	if err != nil {
		add("availability", "must be one of in_stock, limited, out_of_stock")
	}
	m.Availability = availability

	fields := FieldErrors(ValidateMaterial(m))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "availability" && availability == "" {
			continue
		}
		add(k, fields[k])
	}
	return m, errs
}

// ValidateMaterialFile parses an uploaded .csv or .xlsx material list and
// validates every row. Nothing is written.
func ValidateMaterialFile(r io.Reader, fileName string) (*ImportResult, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch lower := strings.ToLower(fileName); {
	case strings.HasSuffix(lower, ".csv"):
		headers, rows, err = parseCSV(r)
	case strings.HasSuffix(lower, ".xlsx"):
		headers, rows, err = parseExcel(r)
	default:
		return nil, ErrUnsupportedImportFile
	}
	if err != nil {
		return nil, err
	}

	keys := mapImportHeaders(headers)
	result := &ImportResult{FileName: fileName, Errors: []ImportError{}}
	for i, row := range rows {
		rowNum := i + 2 // 1-indexed, after the header row
		data := make(map[string]string, len(keys))
		blank := true
		for col, key := range keys {
			if key == "" || col >= len(row) {
				continue
			}
			data[key] = strings.TrimSpace(row[col])
			if data[key] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		result.TotalRows++
		m, rowErrs := materialFromRow(rowNum, data)
		if len(rowErrs) > 0 {
			result.ErrorRows++
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		result.ValidRows++
		result.Materials = append(result.Materials, m)
	}
	return result, nil
}

// ImportMaterials saves materials in one transaction: either every row is
// written or none is.
func (s *Store) ImportMaterials(materials []quote.Material) (int, error) {
	err := s.app.RunInTransaction(func(txApp core.App) error {
		tx := NewStore(txApp)
		for i, m := range materials {
			m.ID = ""
			if _, err := tx.SaveMaterial(m); err != nil {
				return fmt.Errorf("import row %d (%s): %w", i+1, m.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(materials), nil
}

// GenerateImportErrorReport creates a downloadable .xlsx listing row errors.
func GenerateImportErrorReport(errs []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errs {
		row := strconv.Itoa(i + 2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Field))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateMaterialTemplate builds the blank import workbook: a header row
// with required columns marked, drop-downs for type and availability, and a
// hidden instructions sheet.
func GenerateMaterialTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Materials"
	f.SetSheetName(f.GetSheetName(0), sheet)

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	optionalStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})

	types := make([]string, len(quote.MaterialTypes))
	for i, t := range quote.MaterialTypes {
		types[i] = string(t)
	}
	availability := make([]string, len(quote.Availabilities))
	for i, a := range quote.Availabilities {
		availability[i] = string(a)
	}

	for i, c := range materialImportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		header, style := c.Label, optionalStyle
		if c.Required {
			header, style = c.Label+" *", requiredStyle
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
		f.SetColWidth(sheet, col, col, max(15, float64(len(c.Label))*1.3))

		var list []string
		switch c.Key {
		case "type":
			list = types
		case "availability":
			list = availability
		}
		if list != nil {
			dv := excelize.NewDataValidation(true)
			dv.Sqref = fmt.Sprintf("%s2:%s1048576", col, col)
			if err := dv.SetDropList(list); err != nil {
				return nil, fmt.Errorf("drop list for %s: %w", c.Key, err)
			}
			f.AddDataValidation(sheet, dv)
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	addImportInstructions(f)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write import template: %w", err)
	}
	return buf.Bytes(), nil
}

func addImportInstructions(f *excelize.File) {
	sheet := "Instructions"
	f.NewSheet(sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	f.SetCellValue(sheet, "A1", "Material Import - Instructions")
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	for i, h := range []string{"Column", "Required?", "Description", "Example"} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, col+"3", h)
		f.SetCellStyle(sheet, col+"3", col+"3", headerStyle)
	}
	for i, c := range materialImportColumns {
		row := strconv.Itoa(i + 4)
		req := "Optional"
		if c.Required {
			req = "Required"
		}
		f.SetCellValue(sheet, "A"+row, c.Label)
		f.SetCellValue(sheet, "B"+row, req)
		f.SetCellValue(sheet, "C"+row, c.Description)
		f.SetCellValue(sheet, "D"+row, c.Example)
	}
	for i, w := range []float64{20, 12, 50, 30} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	f.SetSheetVisible(sheet, false)
}
