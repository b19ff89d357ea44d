package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode"

	"furniquote/quote"
	"furniquote/render"
)

// QuotationExportRow is one item line of an exported quotation.
type QuotationExportRow struct {
	Index           int
	Name            string
	Description     string // category and formatted dimensions, newline separated
	Quantity        int
	Specification   string // material specification or "Standard"
	CBM             float64
	TotalCBM        float64
	UnitPrice       float64
	TotalPrice      float64
	Image           []byte // composite PNG; nil when the product image is unavailable
	AnnotationCount int
}

// QuotationExportData holds everything the spreadsheet and PDF need.
type QuotationExportData struct {
	Brand           string
	ReferenceNumber string
	Customer        quote.CustomerSnapshot
	Status          quote.Status
	Date            string
	Notes           string
	Rows            []QuotationExportRow
	Subtotal        float64
	VATAmount       float64
	TotalAmount     float64
	TotalCBM        float64
}

// ItemRenderer produces the composite image for an item.
type ItemRenderer interface {
	Render(ctx context.Context, productURL string, annotations []quote.Annotation) ([]byte, error)
}

// BuildQuotationExportData flattens a quotation for export. Totals are
// recomputed from the items. A nil renderer skips images; a failed render
// leaves that row without one.
func BuildQuotationExportData(ctx context.Context, q quote.Quotation, brand string, r ItemRenderer) QuotationExportData {
	q.Recalculate()
	data := QuotationExportData{
		Brand:           brand,
		ReferenceNumber: q.ReferenceNumber,
		Customer:        q.Customer,
		Status:          q.Status,
		Notes:           q.Notes,
		Subtotal:        q.Subtotal,
		VATAmount:       q.VATAmount,
		TotalAmount:     q.TotalAmount,
		TotalCBM:        q.TotalCBM,
	}
	if !q.Created.IsZero() {
		data.Date = q.Created.Format("02 Jan 2006")
	}

	for i, it := range q.Items {
		row := QuotationExportRow{
			Index:           i + 1,
			Name:            it.Product.Name,
			Description:     quote.CategoryAndDimensions(it.Product, it.CustomDimensions),
			Quantity:        it.Quantity,
			Specification:   quote.MaterialSpecification(it.Annotations),
			CBM:             it.CBM,
			TotalCBM:        it.TotalCBM,
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice,
			AnnotationCount: len(it.Annotations),
		}
		if r != nil && it.Product.ImageURL != "" {
			img, err := r.Render(ctx, it.Product.ImageURL, it.Annotations)
			switch {
			case err == nil:
				row.Image = img
			case errors.Is(err, render.ErrProductImage):
				log.Printf("export: %s item %d has no usable image: %v", q.ReferenceNumber, i+1, err)
			default:
				log.Printf("export: %s item %d render failed: %v", q.ReferenceNumber, i+1, err)
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// ExportFilename returns "<brand>_Quotation_<customer>_<reference>.<ext>".
func ExportFilename(data QuotationExportData, ext string) string {
	brand := strings.Join(strings.Fields(data.Brand), "")
	if brand == "" {
		brand = "Quotation"
	}
	customer := filenamePart(data.Customer.Name)
	if customer == "" {
		customer = "Draft"
	}
	ref := data.ReferenceNumber
	if ref == "" {
		ref = "draft"
	}
	return brand + "_Quotation_" + customer + "_" + ref + "." + strings.TrimPrefix(ext, ".")
}

// filenamePart keeps a name as typed, dropping only what breaks a file path
// or a quoted Content-Disposition value.
func filenamePart(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '"', r == '/', r == '\\', unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}
