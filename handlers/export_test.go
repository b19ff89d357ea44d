package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestHandleQuotationExportExcel(t *testing.T) {
	app, d := newTestDeps(t)
	q := savedQuotation(t, app, d, "Acme Interiors")

	rec := doJSON(t, app, HandleQuotationExportExcel(d), http.MethodGet, "/", nil, "id", q.ID)
	assertStatus(t, rec, http.StatusOK)

	ct := rec.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("expected xlsx content type, got %q", ct)
	}
	wantName := fmt.Sprintf(`filename="Nammos_Quotation_Acme Interiors_%s.xlsx"`, q.ReferenceNumber)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, wantName) {
		t.Errorf("expected Content-Disposition to contain %s, got %q", wantName, cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a valid workbook: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if v, _ := f.GetCellValue(sheet, "A2"); v != q.ReferenceNumber+" - Acme Interiors" {
		t.Errorf("A2 = %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "F3"); !strings.Contains(v, "Seat: Velvet Rose") {
		t.Errorf("F3 = %q, want material specification", v)
	}
	if pics, _ := f.GetPictures(sheet, "B3"); len(pics) != 1 {
		t.Errorf("expected composite image at B3, got %d pictures", len(pics))
	}
	if r, ok := d.Renderer.(*stubRenderer); !ok || r.calls != 1 {
		t.Errorf("expected one render call")
	}
}

func TestHandleQuotationExportExcel_RenderFailureStillExports(t *testing.T) {
	app, d := newTestDeps(t)
	q := savedQuotation(t, app, d, "Acme")
	d.Renderer = &stubRenderer{err: errRenderFailed}

	rec := doJSON(t, app, HandleQuotationExportExcel(d), http.MethodGet, "/", nil, "id", q.ID)
	assertStatus(t, rec, http.StatusOK)
}

func TestHandleQuotationExportPDF(t *testing.T) {
	app, d := newTestDeps(t)
	q := savedQuotation(t, app, d, "Acme")

	rec := doJSON(t, app, HandleQuotationExportPDF(d), http.MethodGet, "/", nil, "id", q.ID)
	assertStatus(t, rec, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !strings.HasSuffix(rec.Header().Get("Content-Disposition"), `.pdf"`) {
		t.Errorf("expected .pdf filename, got %q", rec.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF body")
	}
}

func TestHandleQuotationExport_NotFound(t *testing.T) {
	app, d := newTestDeps(t)
	for name, h := range map[string]func(*testing.T) int{
		"excel": func(t *testing.T) int {
			return doJSON(t, app, HandleQuotationExportExcel(d), http.MethodGet, "/", nil, "id", "nope").Code
		},
		"pdf": func(t *testing.T) int {
			return doJSON(t, app, HandleQuotationExportPDF(d), http.MethodGet, "/", nil, "id", "nope").Code
		},
	} {
		if code := h(t); code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", name, code)
		}
	}
}
