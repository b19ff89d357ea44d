package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/services"
)

// HandleGeneratePreview asks the AI image model for a photo of the product
// in the chosen materials. A missing credential is 503 with disabled set, so
// the client can hide the feature instead of reporting a failure.
func HandleGeneratePreview(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if d.Preview == nil || !d.Preview.Enabled() {
			return e.JSON(http.StatusServiceUnavailable, map[string]any{
				"error":    services.ErrPreviewDisabled.Error(),
				"disabled": true,
			})
		}

		var req services.PreviewRequest
		if err := decodeJSON(e, &req); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		if err := req.Validate(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"error":  "Missing required fields: productImageUrl, productName, annotations",
				"fields": services.FieldErrors(err),
			})
		}

		result, err := d.Preview.Generate(e.Request.Context(), req)
		if errors.Is(err, services.ErrPreviewDisabled) {
			return e.JSON(http.StatusServiceUnavailable, map[string]any{
				"error":    err.Error(),
				"disabled": true,
			})
		}
		if err != nil {
			log.Printf("preview: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{
				"success":  false,
				"error":    genericErrorMessage,
				"disabled": false,
			})
		}
		if !result.Success {
			log.Printf("preview: generation failed for %q: %s", req.ProductName, result.Error)
			return e.JSON(http.StatusInternalServerError, map[string]any{
				"success":  false,
				"error":    result.Error,
				"disabled": false,
			})
		}
		return e.JSON(http.StatusOK, result)
	}
}
