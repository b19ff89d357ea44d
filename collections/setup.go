package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

var (
	materialTypes = []string{"fabric", "leather", "wood", "metal", "glass", "stone"}
	availability  = []string{"in_stock", "limited", "out_of_stock"}
	statuses      = []string{"draft", "sent", "approved", "rejected"}
)

// Setup programmatically creates/ensures the catalog, client, quotation and
// file collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "category"})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.NumberField{Name: "base_price", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.TextField{Name: "dimensions"})
		c.Fields.Add(&core.NumberField{Name: "cbm", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.TextField{Name: "image_url"})
		c.Fields.Add(&core.JSONField{Name: "annotatable_parts"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "materials", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "code"})
		c.Fields.Add(&core.SelectField{
			Name:      "type",
			Required:  true,
			Values:    materialTypes,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "price_uplift"})
		c.Fields.Add(&core.SelectField{
			Name:      "availability",
			Values:    availability,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "supplier"})
		c.Fields.Add(&core.TextField{Name: "swatch_image_url"})
		c.Fields.Add(&core.JSONField{Name: "tags"})
		// "|key|key|" slugs for case-insensitive tag matching
		c.Fields.Add(&core.TextField{Name: "tag_keys"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_materials_type_name", false, "type, name", "")
	})

	clients := ensureCollection(app, "clients", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "company"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	quotations := ensureCollection(app, "quotations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "client",
			CollectionId: clients.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "customer_email"})
		c.Fields.Add(&core.TextField{Name: "customer_phone"})
		c.Fields.Add(&core.TextField{Name: "customer_company"})
		c.Fields.Add(&core.TextField{Name: "customer_address"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    statuses,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.NumberField{Name: "subtotal"})
		c.Fields.Add(&core.NumberField{Name: "vat_amount"})
		c.Fields.Add(&core.NumberField{Name: "total_amount"})
		c.Fields.Add(&core.NumberField{Name: "total_cbm"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotations_reference_number", true, "reference_number", "")
	})

	items := ensureCollection(app, "quotation_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quotation",
			Required:      true,
			CollectionId:  quotations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "item_key"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "product_id"})
		c.Fields.Add(&core.JSONField{Name: "product_snapshot", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true, Min: types.Pointer(1.0), OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.NumberField{Name: "cbm"})
		c.Fields.Add(&core.NumberField{Name: "total_cbm"})
		c.Fields.Add(&core.NumberField{Name: "total_price"})
		c.Fields.Add(&core.TextField{Name: "custom_dimensions"})
		c.Fields.Add(&core.TextField{Name: "notes"})
	})

	ensureCollection(app, "item_annotations", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "item",
			Required:      true,
			CollectionId:  items.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "annotation_key"})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "part_id"})
		c.Fields.Add(&core.TextField{Name: "part_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "material_id"})
		c.Fields.Add(&core.JSONField{Name: "material_snapshot", Required: true})
		c.Fields.Add(&core.NumberField{Name: "x", Min: types.Pointer(0.0), Max: types.Pointer(100.0)})
		c.Fields.Add(&core.NumberField{Name: "y", Min: types.Pointer(0.0), Max: types.Pointer(100.0)})
	})

	ensureCollection(app, "reference_counters", func(c *core.Collection) {
		c.Fields.Add(&core.NumberField{Name: "year", Required: true, OnlyInt: true})
		c.Fields.Add(&core.NumberField{Name: "last_sequence", OnlyInt: true})
		c.AddIndex("idx_reference_counters_year", true, "year", "")
	})

	ensureCollection(app, "images", func(c *core.Collection) {
		// uploaded product photos and swatches are publicly readable
		c.ListRule = types.Pointer("")
		c.ViewRule = types.Pointer("")
		c.Fields.Add(&core.FileField{
			Name:      "file",
			Required:  true,
			MaxSelect: 1,
			MaxSize:   20 << 20,
			MimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		})
		c.Fields.Add(&core.TextField{Name: "original_name"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
