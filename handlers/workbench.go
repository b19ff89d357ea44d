package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
)

type workbenchRequest struct {
	State  *quote.Builder `json:"state"`
	Action quote.Action   `json:"action"`
}

type workbenchResponse struct {
	State            quote.Builder      `json:"state"`
	BuilderState     quote.BuilderState `json:"builder_state"`
	Totals           quote.Totals       `json:"totals"`
	PreviewUnitPrice float64            `json:"preview_unit_price"`
	Ignored          string             `json:"ignored,omitempty"`
}

// resolveAction fills in the product and material snapshots an action refers
// to by id, reading the live catalog.
func resolveAction(d *Deps, a *quote.Action) error {
	if a.ProductID != "" && a.Product == nil {
		p, err := d.Store.GetProduct(a.ProductID)
		if err != nil {
			return err
		}
		snap := p.Snapshot()
		a.Product = &snap
	}
	if a.MaterialID != "" && a.Material == nil {
		m, err := d.Store.GetMaterial(a.MaterialID)
		if err != nil {
			return err
		}
		snap := m.Snapshot()
		a.Material = &snap
	}
	return nil
}

// HandleWorkbench applies one action to a posted workbench state and
// returns the next state with live totals. The server keeps nothing between
// calls. Ignored actions return the state unchanged with the reason.
func HandleWorkbench(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req workbenchRequest
		if err := decodeJSON(e, &req); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		state := quote.NewBuilder(nil)
		if req.State != nil {
			state = *req.State
		}
		if err := resolveAction(d, &req.Action); err != nil {
			return storeError(e, "workbench", err)
		}

		next, err := quote.Apply(state, req.Action)
		resp := workbenchResponse{}
		switch {
		case err == nil:
		case quote.IsNoop(err):
			resp.Ignored = err.Error()
		case errors.Is(err, quote.ErrUnknownAction),
			errors.Is(err, quote.ErrMissingPayload),
			errors.Is(err, quote.ErrNoProduct),
			errors.Is(err, quote.ErrItemNotFound),
			errors.Is(err, quote.ErrAnnotationNotFound):
			return writeError(e, http.StatusBadRequest, err.Error())
		default:
			return storeError(e, "workbench", err)
		}

		resp.State = next
		resp.BuilderState = next.State()
		resp.Totals = next.Totals()
		resp.PreviewUnitPrice = next.PreviewUnitPrice()
		return e.JSON(http.StatusOK, resp)
	}
}
