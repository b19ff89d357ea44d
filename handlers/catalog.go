package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
	"furniquote/services"
)

// ── Products ─────────────────────────────────────────────────────────────

func HandleProductList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		products, err := d.Store.ListProducts()
		if err != nil {
			return storeError(e, "product_list", err)
		}
		return e.JSON(http.StatusOK, products)
	}
}

func HandleProductGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := d.Store.GetProduct(e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "product_get", err)
		}
		return e.JSON(http.StatusOK, p)
	}
}

// HandleProductSave creates a product on POST /api/products and updates one
// on POST /api/products/{id}.
func HandleProductSave(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var p quote.Product
		if err := decodeJSON(e, &p); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		p.ID = e.Request.PathValue("id")
		saved, err := d.Store.SaveProduct(p)
		if err != nil {
			return storeError(e, "product_save", err)
		}
		return e.JSON(savedStatus(p.ID), saved)
	}
}

func HandleProductDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := d.Store.DeleteProduct(e.Request.PathValue("id")); err != nil {
			return storeError(e, "product_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// ── Materials ────────────────────────────────────────────────────────────

// splitParam reads a query parameter given repeatedly or comma separated.
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// HandleMaterialList serves GET /api/materials?q=&type=&tag=&limit=.
func HandleMaterialList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params := e.Request.URL.Query()
		q := services.MaterialQuery{
			Text: params.Get("q"),
			Tags: splitParam(params["tag"]),
		}
		for _, raw := range splitParam(params["type"]) {
			t, err := quote.ParseMaterialType(raw)
			if err != nil {
				return writeError(e, http.StatusBadRequest, err.Error())
			}
			q.Types = append(q.Types, t)
		}
		if raw := params.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return writeError(e, http.StatusBadRequest, "limit must be a non-negative integer")
			}
			q.Limit = n
		}

		materials, err := d.Store.SearchMaterials(q)
		if err != nil {
			return storeError(e, "material_list", err)
		}
		return e.JSON(http.StatusOK, materials)
	}
}

func HandleMaterialTags(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		tags, err := d.Store.AllTags()
		if err != nil {
			return storeError(e, "material_tags", err)
		}
		return e.JSON(http.StatusOK, map[string]any{"tags": tags})
	}
}

func HandleMaterialGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		m, err := d.Store.GetMaterial(e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "material_get", err)
		}
		return e.JSON(http.StatusOK, m)
	}
}

func HandleMaterialSave(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var m quote.Material
		if err := decodeJSON(e, &m); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		m.ID = e.Request.PathValue("id")
		saved, err := d.Store.SaveMaterial(m)
		if err != nil {
			return storeError(e, "material_save", err)
		}
		return e.JSON(savedStatus(m.ID), saved)
	}
}

func HandleMaterialDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := d.Store.DeleteMaterial(e.Request.PathValue("id")); err != nil {
			return storeError(e, "material_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// ── Clients ──────────────────────────────────────────────────────────────

func HandleClientList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clients, err := d.Store.SearchClients(e.Request.URL.Query().Get("q"))
		if err != nil {
			return storeError(e, "client_list", err)
		}
		return e.JSON(http.StatusOK, clients)
	}
}

func HandleClientGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		c, err := d.Store.GetClient(e.Request.PathValue("id"))
		if err != nil {
			return storeError(e, "client_get", err)
		}
		return e.JSON(http.StatusOK, c)
	}
}

func HandleClientSave(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var c quote.Client
		if err := decodeJSON(e, &c); err != nil {
			return writeError(e, http.StatusBadRequest, err.Error())
		}
		c.ID = e.Request.PathValue("id")
		saved, err := d.Store.SaveClient(c)
		if err != nil {
			return storeError(e, "client_save", err)
		}
		if isHTMX(e) {
			SetToast(e, "success", "Client saved")
		}
		return e.JSON(savedStatus(c.ID), saved)
	}
}

func HandleClientDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := d.Store.DeleteClient(e.Request.PathValue("id")); err != nil {
			return storeError(e, "client_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

func savedStatus(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
