package services

import (
	"testing"
)

func TestGenerateQuotationPDF_Basic(t *testing.T) {
	data := sampleExportData(2)
	data.Customer.Company = "Acme LLC"
	data.Customer.Email = "buyer@acme.test"
	data.Date = "15 Jan 2025"
	data.Notes = "Delivery in 6 weeks\nPrices valid for 30 days"

	result, err := GenerateQuotationPDF(data)
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if len(result) < 5 {
		t.Fatal("GenerateQuotationPDF() returned too few bytes")
	}
	if string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateQuotationPDF_EmptyItems(t *testing.T) {
	result, err := GenerateQuotationPDF(sampleExportData(0))
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateQuotationPDF() returned empty bytes")
	}
}

func TestGenerateQuotationPDF_WithImages(t *testing.T) {
	data := sampleExportData(3)
	data.Rows[0].Image = testPNG(t, 60, 40)
	data.Rows[2].Image = testPNG(t, 30, 30)
	data.Rows[2].Specification = "Seat: Velvet Rose (FAB-001)\nLegs: Walnut (WD-7)"

	result, err := GenerateQuotationPDF(data)
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	without, err := GenerateQuotationPDF(sampleExportData(3))
	if err != nil {
		t.Fatalf("GenerateQuotationPDF() error = %v", err)
	}
	if len(result) <= len(without) {
		t.Errorf("PDF with images (%d bytes) not larger than without (%d bytes)", len(result), len(without))
	}
}
