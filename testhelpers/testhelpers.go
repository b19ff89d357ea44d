// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/gosimple/slug"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"furniquote/collections"
	"furniquote/quote"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

func newRecord(t *testing.T, app *pocketbase.PocketBase, collection string) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}
	return core.NewRecord(col)
}

func save(t *testing.T, app *pocketbase.PocketBase, r *core.Record, what string) *core.Record {
	t.Helper()
	if err := app.Save(r); err != nil {
		t.Fatalf("failed to save test %s: %v", what, err)
	}
	return r
}

// CreateTestProduct creates a sofa-like product with one annotatable part.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, name string, basePrice float64) *core.Record {
	t.Helper()
	r := newRecord(t, app, "products")
	r.Set("name", name)
	r.Set("category", "Sofa")
	r.Set("base_price", basePrice)
	r.Set("dimensions", "220x95x80")
	r.Set("cbm", 1.2)
	r.Set("image_url", "http://127.0.0.1:8090/static/products/"+slug.Make(name)+".png")
	r.Set("annotatable_parts", []quote.AnnotatablePart{
		{ID: "seat", Name: "Seat", X: 20, Y: 40, Width: 60, Height: 20},
	})
	return save(t, app, r, "product")
}

// CreateTestMaterial creates a material of the given type and uplift.
func CreateTestMaterial(t *testing.T, app *pocketbase.PocketBase, name string, typ quote.MaterialType, uplift float64, tags ...string) *core.Record {
	t.Helper()
	r := newRecord(t, app, "materials")
	r.Set("name", name)
	r.Set("code", strings.ToUpper(string(typ[:3]))+"-"+strings.ToUpper(strings.ReplaceAll(name, " ", "")))
	r.Set("type", string(typ))
	r.Set("price_uplift", uplift)
	r.Set("availability", string(quote.InStock))
	r.Set("supplier", "Test Supplier")
	if tags == nil {
		tags = []string{}
	}
	r.Set("tags", tags)
	keys := ""
	for _, tag := range tags {
		keys += "|" + slug.Make(tag)
	}
	if keys != "" {
		keys += "|"
	}
	r.Set("tag_keys", keys)
	return save(t, app, r, "material")
}

// CreateTestClient creates a client with contact details.
func CreateTestClient(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()
	r := newRecord(t, app, "clients")
	r.Set("name", name)
	r.Set("email", "buyer@example.com")
	r.Set("phone", "+971 4 000 0000")
	r.Set("company", name+" LLC")
	r.Set("address", "Dubai Design District")
	return save(t, app, r, "client")
}

// CreateTestQuotation inserts a bare quotation header. Items are not added;
// use the store to create complete quotations.
func CreateTestQuotation(t *testing.T, app *pocketbase.PocketBase, reference, customer string, status quote.Status, total float64) *core.Record {
	t.Helper()
	r := newRecord(t, app, "quotations")
	r.Set("reference_number", reference)
	r.Set("customer_name", customer)
	r.Set("status", string(status))
	r.Set("subtotal", total/(1+quote.VATRate))
	r.Set("vat_amount", total-total/(1+quote.VATRate))
	r.Set("total_amount", total)
	return save(t, app, r, "quotation")
}

// CreateTestItem adds an item row to a quotation with its derived totals
// already filled in. The header totals are left alone.
func CreateTestItem(t *testing.T, app *pocketbase.PocketBase, quotationID string, quantity int, unitPrice, cbm float64) *core.Record {
	t.Helper()
	r := newRecord(t, app, "quotation_items")
	r.Set("quotation", quotationID)
	r.Set("product_snapshot", quote.ProductSnapshot{Name: "Test Product", BasePrice: unitPrice, CBM: cbm})
	r.Set("quantity", quantity)
	r.Set("unit_price", unitPrice)
	r.Set("cbm", cbm)
	r.Set("total_cbm", cbm*float64(quantity))
	r.Set("total_price", unitPrice*float64(quantity))
	return save(t, app, r, "quotation item")
}

// CreateTestAnnotation pins a material snapshot onto an item.
func CreateTestAnnotation(t *testing.T, app *pocketbase.PocketBase, itemID, partName string, x, y float64) *core.Record {
	t.Helper()
	r := newRecord(t, app, "item_annotations")
	r.Set("item", itemID)
	r.Set("part_name", partName)
	r.Set("material_snapshot", quote.MaterialSnapshot{Name: "Test Material", Type: quote.Fabric})
	r.Set("x", x)
	r.Set("y", y)
	return save(t, app, r, "annotation")
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
