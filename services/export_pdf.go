package services

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	pdfImageRowHeight = 55.0
	pdfTextRowHeight  = 16.0
	pdfLineHeight     = 4.0
)

var (
	pdfGrey     = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfHeaderBg = &props.Color{Red: 51, Green: 51, Blue: 51}
	pdfStripeBg = &props.Color{Red: 247, Green: 247, Blue: 247}
)

// GenerateQuotationPDF renders the quotation as an A4 landscape PDF with one
// table row per item, including its composite image when present.
func GenerateQuotationPDF(data QuotationExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuotationHeader(m, data)
	addCustomerBlock(m, data)
	addItemTableHeader(m)
	for i, r := range data.Rows {
		addItemRow(m, r, i%2 == 1)
	}
	addQuotationTotals(m, data)
	if strings.TrimSpace(data.Notes) != "" {
		addNotes(m, data.Notes)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addQuotationHeader(m core.Maroto, data QuotationExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(8).Add(
				text.New(data.Brand, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Left}),
			),
			col.New(4).Add(
				text.New("QUOTATION", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
		row.New(6).Add(
			col.New(6).Add(
				text.New("Reference: "+data.ReferenceNumber, props.Text{Size: 9, Align: align.Left, Color: pdfGrey}),
			),
			col.New(6).Add(
				text.New("Date: "+data.Date, props.Text{Size: 9, Align: align.Right, Color: pdfGrey}),
			),
		),
		row.New(4),
	)
}

func addCustomerBlock(m core.Maroto, data QuotationExportData) {
	c := data.Customer
	lines := []string{c.Company, c.Email, c.Phone, c.Address}

	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("Prepared for: "+c.Name, props.Text{Size: 10, Style: fontstyle.Bold})),
	))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		m.AddRows(row.New(5).Add(
			col.New(12).Add(text.New(l, props.Text{Size: 8, Color: pdfGrey})),
		))
	}
	m.AddRows(row.New(4))
}

func addItemTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Top:   1.5,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	cell := &props.Cell{BackgroundColor: pdfHeaderBg}

	m.AddRows(row.New(8).Add(
		col.New(1).Add(text.New("#", headerText)).WithStyle(cell),
		col.New(3).Add(text.New("Image", headerText)).WithStyle(cell),
		col.New(2).Add(text.New("Item", headerText)).WithStyle(cell),
		col.New(1).Add(text.New("Qty", headerText)).WithStyle(cell),
		col.New(2).Add(text.New("Materials", headerText)).WithStyle(cell),
		col.New(1).Add(text.New("Unit Price", headerText)).WithStyle(cell),
		col.New(2).Add(text.New("Total", headerText)).WithStyle(cell),
	))
}

// stackedText lays out lines top to bottom inside one column.
func stackedText(lines []string, base props.Text) []core.Component {
	out := make([]core.Component, 0, len(lines))
	for i, l := range lines {
		p := base
		p.Top = base.Top + float64(i)*pdfLineHeight
		out = append(out, text.New(l, p))
	}
	return out
}

func addItemRow(m core.Maroto, r QuotationExportRow, striped bool) {
	height := pdfTextRowHeight
	if len(r.Image) > 0 {
		height = pdfImageRowHeight
	}
	body := props.Text{Size: 8, Align: align.Left, Top: 2, Left: 1}
	center := body
	center.Align = align.Center
	right := body
	right.Align = align.Right

	imageCol := col.New(3)
	if len(r.Image) > 0 {
		imageCol.Add(image.NewFromBytes(r.Image, extension.Png, props.Rect{Center: true, Percent: 92}))
	}

	itemLines := append([]string{r.Name}, strings.Split(r.Description, "\n")...)
	nameStyle := body
	nameStyle.Style = fontstyle.Bold

	itemCol := col.New(2).Add(text.New(itemLines[0], nameStyle))
	itemCol.Add(stackedText(itemLines[1:], props.Text{Size: 7, Top: body.Top + pdfLineHeight, Left: 1, Color: pdfGrey})...)

	cols := []core.Col{
		col.New(1).Add(text.New(fmt.Sprint(r.Index), center)),
		imageCol,
		itemCol,
		col.New(1).Add(text.New(fmt.Sprint(r.Quantity), center)),
		col.New(2).Add(stackedText(strings.Split(r.Specification, "\n"), props.Text{Size: 7, Top: 2, Left: 1})...),
		col.New(1).Add(text.New(FormatCurrency(r.UnitPrice), right)),
		col.New(2).Add(text.New(FormatCurrency(r.TotalPrice), right)),
	}
	if striped {
		for i := range cols {
			cols[i] = cols[i].WithStyle(&props.Cell{BackgroundColor: pdfStripeBg})
		}
	}
	m.AddRows(row.New(height).Add(cols...))
}

func addQuotationTotals(m core.Maroto, data QuotationExportData) {
	m.AddRows(row.New(6))

	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 1}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 1}
	cell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}

	lines := []struct {
		label string
		value string
	}{
		{"Total CBM", FormatCBM(data.TotalCBM)},
		{"Subtotal", FormatCurrency(data.Subtotal)},
		{"VAT 5%", FormatCurrency(data.VATAmount)},
		{"TOTAL", FormatCurrency(data.TotalAmount)},
	}
	for _, l := range lines {
		m.AddRows(row.New(7).Add(
			col.New(8),
			col.New(2).Add(text.New(l.label, label)).WithStyle(cell),
			col.New(2).Add(text.New(l.value, value)).WithStyle(cell),
		))
	}
}

func addNotes(m core.Maroto, notes string) {
	m.AddRows(row.New(6))
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("Notes", props.Text{Size: 9, Style: fontstyle.Bold})),
	))
	for _, l := range strings.Split(notes, "\n") {
		m.AddRows(row.New(5).Add(
			col.New(12).Add(text.New(l, props.Text{Size: 8, Color: pdfGrey})),
		))
	}
}
