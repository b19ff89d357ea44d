package collections

import (
	"fmt"
	"log"
	"strings"

	"github.com/gosimple/slug"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
)

type productDef struct {
	name        string
	category    string
	description string
	basePrice   float64
	dimensions  string
	cbm         float64
	parts       []quote.AnnotatablePart
}

type materialDef struct {
	name         string
	code         string
	typ          quote.MaterialType
	uplift       float64
	availability quote.Availability
	supplier     string
	tags         []string
}

type clientDef struct {
	name    string
	email   string
	phone   string
	company string
	address string
}

func part(id, name string, x, y, w, h float64, types ...quote.MaterialType) quote.AnnotatablePart {
	return quote.AnnotatablePart{ID: id, Name: name, X: x, Y: y, Width: w, Height: h, AllowedMaterialTypes: types}
}

var seedProducts = []productDef{
	{
		name:        "Oslo Three-Seater Sofa",
		category:    "Sofa",
		description: "Low-back sofa with loose seat cushions",
		basePrice:   4200,
		dimensions:  "220x95x80",
		cbm:         1.85,
		parts: []quote.AnnotatablePart{
			part("seat", "Seat", 20, 45, 60, 20, quote.Fabric, quote.Leather),
			part("back", "Back", 20, 20, 60, 25, quote.Fabric, quote.Leather),
			part("legs", "Legs", 15, 85, 70, 10, quote.Wood, quote.Metal),
		},
	},
	{
		name:        "Mara Dining Chair",
		category:    "Chair",
		description: "Upholstered dining chair with tapered legs",
		basePrice:   950,
		dimensions:  "52x58x84",
		cbm:         0.28,
		parts: []quote.AnnotatablePart{
			part("seat", "Seat", 25, 50, 50, 15, quote.Fabric, quote.Leather),
			part("back", "Back", 25, 10, 50, 35, quote.Fabric, quote.Leather),
			part("frame", "Frame", 20, 65, 60, 30, quote.Wood),
		},
	},
	{
		name:        "Lune Coffee Table",
		category:    "Table",
		description: "Round coffee table with stone top",
		basePrice:   2600,
		dimensions:  "100x100x38",
		cbm:         0.45,
		parts: []quote.AnnotatablePart{
			part("top", "Top", 10, 30, 80, 20, quote.Stone, quote.Glass, quote.Wood),
			part("base", "Base", 35, 55, 30, 35, quote.Metal, quote.Wood),
		},
	},
}

var seedMaterials = []materialDef{
	{"Velvet Rose", "FAB-101", quote.Fabric, 350, quote.InStock, "Kvadrat", []string{"Velvet", "Pink", "Soft"}},
	{"Boucle Ivory", "FAB-114", quote.Fabric, 420, quote.Limited, "Dedar", []string{"Boucle", "White", "Textured"}},
	{"Cognac Aniline", "LEA-201", quote.Leather, 900, quote.InStock, "Sørensen", []string{"Brown", "Natural"}},
	{"Natural Oak", "WOO-301", quote.Wood, 250, quote.InStock, "Dinesen", []string{"Oak", "Natural", "Light"}},
	{"Smoked Walnut", "WOO-305", quote.Wood, 380, quote.OutOfStock, "Dinesen", []string{"Walnut", "Dark"}},
	{"Brushed Brass", "MET-401", quote.Metal, 300, quote.InStock, "Metalline", []string{"Brass", "Gold"}},
	{"Matte Black Steel", "MET-402", quote.Metal, 180, quote.InStock, "Metalline", []string{"Black", "Steel"}},
	{"Bronze Tinted Glass", "GLA-501", quote.Glass, 270, quote.Limited, "Glas Italia", []string{"Bronze", "Tinted"}},
	{"Calacatta Marble", "STO-601", quote.Stone, 1200, quote.InStock, "Antolini", []string{"Marble", "White", "Veined"}},
	{"Travertine", "STO-604", quote.Stone, 850, quote.InStock, "Antolini", []string{"Beige", "Natural"}},
}

var seedClients = []clientDef{
	{
		name:    "Layla Haddad",
		email:   "layla@sandstone-interiors.ae",
		phone:   "+971 4 555 0142",
		company: "Sandstone Interiors",
		address: "Alserkal Avenue, Al Quoz, Dubai",
	},
}

// seedTagKeys matches the store's tag key column: slugged, de-duplicated and
// pipe-delimited so LIKE filters can match whole keys.
func seedTagKeys(tags []string) string {
	var keys []string
	seen := map[string]bool{}
	for _, t := range tags {
		k := slug.Make(t)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	return "|" + strings.Join(keys, "|") + "|"
}

// Seed inserts a demo catalog. It is safe to call on every startup because it
// returns early if any product records already exist.
func Seed(app *pocketbase.PocketBase) error {
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	existing, err := app.FindAllRecords(productsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	log.Println("seed: products collection is empty, inserting demo catalog")

	materialsCol, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		return fmt.Errorf("seed: could not find materials collection: %w", err)
	}
	clientsCol, err := app.FindCollectionByNameOrId("clients")
	if err != nil {
		return fmt.Errorf("seed: could not find clients collection: %w", err)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		for _, p := range seedProducts {
			r := core.NewRecord(productsCol)
			r.Set("name", p.name)
			r.Set("category", p.category)
			r.Set("description", p.description)
			r.Set("base_price", p.basePrice)
			r.Set("dimensions", p.dimensions)
			r.Set("cbm", p.cbm)
			r.Set("annotatable_parts", p.parts)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: product %q: %w", p.name, err)
			}
		}

		for _, m := range seedMaterials {
			r := core.NewRecord(materialsCol)
			r.Set("name", m.name)
			r.Set("code", m.code)
			r.Set("type", string(m.typ))
			r.Set("price_uplift", m.uplift)
			r.Set("availability", string(m.availability))
			r.Set("supplier", m.supplier)
			r.Set("tags", m.tags)
			r.Set("tag_keys", seedTagKeys(m.tags))
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: material %q: %w", m.name, err)
			}
		}

		for _, c := range seedClients {
			r := core.NewRecord(clientsCol)
			r.Set("name", c.name)
			r.Set("email", c.email)
			r.Set("phone", c.phone)
			r.Set("company", c.company)
			r.Set("address", c.address)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: client %q: %w", c.name, err)
			}
		}

		log.Printf("seed: inserted %d products, %d materials, %d clients\n",
			len(seedProducts), len(seedMaterials), len(seedClients))
		return nil
	})
}
