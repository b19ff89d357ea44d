package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/services"
)

// buildExportData loads the quotation and renders every item's composite.
func buildExportData(e *core.RequestEvent, d *Deps, id string) (services.QuotationExportData, error) {
	q, err := d.Store.GetQuotation(id)
	if err != nil {
		return services.QuotationExportData{}, err
	}
	return services.BuildQuotationExportData(e.Request.Context(), q, d.Config.BrandName, d.Renderer), nil
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeDownload(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}

func HandleQuotationExportExcel(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildExportData(e, d, e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "export_excel", err)
		}

		xlsxBytes, err := services.GenerateQuotationExcel(data, d.Config.ExportTemplatePath)
		if err != nil {
			log.Printf("export_excel: failed to generate %s: %v", data.ReferenceNumber, err)
			return writeError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		return writeDownload(e, xlsxContentType, services.ExportFilename(data, "xlsx"), xlsxBytes)
	}
}

func HandleQuotationExportPDF(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildExportData(e, d, e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "export_pdf", err)
		}

		pdfBytes, err := services.GenerateQuotationPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate %s: %v", data.ReferenceNumber, err)
			return writeError(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}

		return writeDownload(e, "application/pdf", services.ExportFilename(data, "pdf"), pdfBytes)
	}
}
