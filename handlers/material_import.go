package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/services"
)

// maxImportFile bounds uploaded material lists.
const maxImportFile = 10 << 20

// validateImportUpload parses the multipart "file" field. A non-nil error
// has already been written to the response.
func validateImportUpload(e *core.RequestEvent) (*services.ImportResult, error) {
	e.Request.Body = http.MaxBytesReader(e.Response, e.Request.Body, maxImportFile)
	file, header, err := e.Request.FormFile("file")
	if err != nil {
		return nil, writeError(e, http.StatusBadRequest, "Please select a .csv or .xlsx file to upload")
	}
	defer file.Close()

	res, err := services.ValidateMaterialFile(file, header.Filename)
	switch {
	case errors.Is(err, services.ErrUnsupportedImportFile):
		return nil, writeError(e, http.StatusUnsupportedMediaType, err.Error())
	case err != nil:
		log.Printf("material_import: %s: %v", header.Filename, err)
		return nil, writeError(e, http.StatusBadRequest, err.Error())
	}
	return res, nil
}

// HandleMaterialImport validates an uploaded material list. With
// ?commit=true and no row errors the materials are saved.
func HandleMaterialImport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res, err := validateImportUpload(e)
		if res == nil {
			return err
		}

		if e.Request.URL.Query().Get("commit") != "true" {
			return e.JSON(http.StatusOK, res)
		}
		if res.ErrorRows > 0 {
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":  fmt.Sprintf("%d row(s) have errors; nothing was imported", res.ErrorRows),
				"result": res,
			})
		}

		n, err := d.Store.ImportMaterials(res.Materials)
		if err != nil {
			return storeError(e, "material_import", err)
		}
		log.Printf("material_import: imported %d material(s) from %s", n, res.FileName)
		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Imported %d materials", n))
		}
		return e.JSON(http.StatusCreated, map[string]any{"imported": n})
	}
}

// HandleMaterialImportErrors re-validates an upload and returns its row
// errors as a spreadsheet.
func HandleMaterialImportErrors(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		res, err := validateImportUpload(e)
		if res == nil {
			return err
		}
		report, err := services.GenerateImportErrorReport(res.Errors)
		if err != nil {
			log.Printf("material_import: error report: %v", err)
			return writeError(e, http.StatusInternalServerError, "Failed to generate error report")
		}
		return writeDownload(e, xlsxContentType, "material_import_errors.xlsx", report)
	}
}

func HandleMaterialTemplate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateMaterialTemplate()
		if err != nil {
			log.Printf("material_import: template: %v", err)
			return writeError(e, http.StatusInternalServerError, "Failed to generate template")
		}
		return writeDownload(e, xlsxContentType, "material_import_template.xlsx", data)
	}
}
