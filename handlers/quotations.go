package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
	"furniquote/services"
)

// HandleQuotationList serves GET /api/quotations?status=&q=.
func HandleQuotationList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params := e.Request.URL.Query()
		f := services.QuotationFilter{Search: strings.TrimSpace(params.Get("q"))}
		if raw := params.Get("status"); raw != "" {
			status, err := quote.ParseStatus(raw)
			if err != nil {
				return writeError(e, http.StatusBadRequest, err.Error())
			}
			f.Status = status
		}
		list, err := d.Store.ListQuotations(f)
		if err != nil {
			return storeError(e, "quotation_list", err)
		}
		return e.JSON(http.StatusOK, list)
	}
}

func HandleQuotationGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		q, err := d.Store.GetQuotation(e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "quotation_get", err)
		}
		return e.JSON(http.StatusOK, q)
	}
}

// selectClient copies the chosen client onto q when only its id was sent.
func selectClient(d *Deps, q *quote.Quotation) error {
	if q.ClientID == "" || strings.TrimSpace(q.Customer.Name) != "" {
		return nil
	}
	c, err := d.Store.GetClient(q.ClientID)
	if err != nil {
		return err
	}
	q.SelectClient(c)
	return nil
}

// HandleQuotationSave creates a quotation on POST /api/quotations and
// replaces one on POST /api/quotations/{id}. Totals in the body are ignored
// and recomputed from the items.
func HandleQuotationSave(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var q quote.Quotation
		if err := decodeJSON(e, &q); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		if err := selectClient(d, &q); err != nil {
			return storeError(e, "quotation_save", err)
		}

		id := e.Request.PathValue("id")
		var (
			saved quote.Quotation
			err   error
		)
		if id == "" {
			saved, err = d.Store.CreateQuotation(q)
		} else {
			saved, err = d.Store.UpdateQuotation(id, q)
		}
		if err != nil {
			return storeError(e, "quotation_save", err)
		}

		if isHTMX(e) {
			SetToast(e, "success", "Quotation "+saved.ReferenceNumber+" saved")
		}
		return e.JSON(savedStatus(id), saved)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleQuotationStatus accepts {"status": ...} or a form field of the same
// name.
func HandleQuotationStatus(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req statusRequest
		if strings.HasPrefix(e.Request.Header.Get("Content-Type"), "application/json") {
			if err := decodeJSON(e, &req); err != nil {
				return writeError(e, http.StatusBadRequest, err.Error())
			}
		} else {
			if err := e.Request.ParseForm(); err != nil {
				return writeError(e, http.StatusBadRequest, "Invalid form data")
			}
			req.Status = e.Request.FormValue("status")
		}

		status, err := quote.ParseStatus(strings.TrimSpace(req.Status))
		if err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		q, err := d.Store.UpdateQuotationStatus(e.Request.PathValue("id"), status)
		if err != nil {
			return storeError(e, "quotation_status", err)
		}
		if isHTMX(e) {
			SetToast(e, "success", "Marked as "+status.Label())
		}
		return e.JSON(http.StatusOK, q)
	}
}

func HandleQuotationDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := d.Store.DeleteQuotation(e.Request.PathValue("id")); err != nil {
			return storeError(e, "quotation_delete", err)
		}
		if isHTMX(e) {
			e.Response.Header().Set("HX-Redirect", "/quotations")
		}
		return e.NoContent(http.StatusNoContent)
	}
}
