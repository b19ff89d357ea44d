package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
	"furniquote/render"
	"furniquote/templates"
)

// findItem loads the quotation and the item addressed by {id} and {itemId}.
func findItem(e *core.RequestEvent, d *Deps) (quote.Quotation, quote.Item, error) {
	q, err := d.Store.GetQuotation(e.Request.PathValue("id"))
	if err != nil {
		return quote.Quotation{}, quote.Item{}, err
	}
	itemID := e.Request.PathValue("itemId")
	for _, it := range q.Items {
		if it.ID == itemID {
			return q, it, nil
		}
	}
	return q, quote.Item{}, fmt.Errorf("item %s of %s: %w", itemID, q.ReferenceNumber, quote.ErrItemNotFound)
}

func itemError(e *core.RequestEvent, area string, err error) error {
	if errors.Is(err, quote.ErrItemNotFound) {
		return writeError(e, http.StatusNotFound, "Item not found")
	}
	return storeError(e, area, err)
}

// HandleItemImage serves the composite PNG of one saved item: the product
// photo with a leader line from each annotated point to its swatch and label.
func HandleItemImage(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		_, item, err := findItem(e, d)
		if err != nil {
			return itemError(e, "item_image", err)
		}
		if item.Product.ImageURL == "" || d.Renderer == nil {
			return writeError(e, http.StatusNotFound, "No image available")
		}

		png, err := d.Renderer.Render(e.Request.Context(), item.Product.ImageURL, item.Annotations)
		switch {
		case errors.Is(err, render.ErrProductImage):
			log.Printf("item_image: %v", err)
			return writeError(e, http.StatusNotFound, "No image available")
		case err != nil:
			log.Printf("item_image: %v", err)
			return writeError(e, http.StatusInternalServerError, genericErrorMessage)
		}

		e.Response.Header().Set("Content-Type", "image/png")
		e.Response.Header().Set("Cache-Control", "no-store")
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(png)
		return err
	}
}

// HandleItemCanvas serves the marker canvas of a saved item as SVG.
// ?selected=<annotation id> draws the selection ring.
func HandleItemCanvas(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		_, item, err := findItem(e, d)
		if err != nil {
			return itemError(e, "item_canvas", err)
		}
		data := templates.MarkerCanvasData{
			ImageURL:    item.Product.ImageURL,
			Annotations: item.Annotations,
			SelectedID:  e.Request.URL.Query().Get("selected"),
		}
		e.Response.Header().Set("Content-Type", "image/svg+xml")
		e.Response.WriteHeader(http.StatusOK)
		templates.WriteMarkerCanvas(e.Response, data)
		return nil
	}
}

// HandleQuotationSummary renders the totals fragment swapped in by HTMX.
func HandleQuotationSummary(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q, err := d.Store.GetQuotation(e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "quotation_summary", err)
		}
		q.Recalculate()
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.QuotationSummary(q).Render(e.Request.Context(), e.Response)
	}
}

// HandleWorkbenchCanvas renders the marker canvas of an unsaved workbench
// state, so the configuring view can be redrawn after every action.
func HandleWorkbenchCanvas(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var b quote.Builder
		if err := decodeJSON(e, &b); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		imageURL := ""
		if b.Product != nil {
			imageURL = b.Product.ImageURL
		}
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.MarkerCanvas(templates.CanvasDataFromState(imageURL, b.Canvas)).Render(e.Request.Context(), e.Response)
	}
}
