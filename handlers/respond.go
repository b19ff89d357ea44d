package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/services"
)

const genericErrorMessage = "Something went wrong. Please try again."

// maxJSONBody bounds decoded request bodies. Quotations carry snapshots of
// every item and annotation, so this is generous.
const maxJSONBody = 8 << 20

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

func decodeJSON(e *core.RequestEvent, dst any) error {
	dec := json.NewDecoder(io.LimitReader(e.Request.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeError answers with {"error": msg}. HTMX callers also get the error
// toast and no swap.
func writeError(e *core.RequestEvent, status int, msg string) error {
	if isHTMX(e) {
		SetToast(e, "error", msg)
		suppressSwap(e)
	}
	return e.JSON(status, map[string]any{"error": msg})
}

// storeError maps a store failure to a response: field errors become 422,
// missing records 404, anything else is logged under area and hidden behind
// the generic message.
func storeError(e *core.RequestEvent, area string, err error) error {
	if fields := services.FieldErrors(err); fields != nil {
		if isHTMX(e) {
			SetToast(e, "warning", "Please fix the errors below")
			suppressSwap(e)
		}
		return e.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	if errors.Is(err, services.ErrNotFound) {
		return writeError(e, http.StatusNotFound, err.Error())
	}
	log.Printf("%s: %v", area, err)
	return writeError(e, http.StatusInternalServerError, genericErrorMessage)
}
