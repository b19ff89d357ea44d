package collections_test

import (
	"testing"

	"furniquote/collections"
	"furniquote/quote"
	"furniquote/testhelpers"
)

func TestSeed_CreatesCatalog(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	products, err := app.FindAllRecords("products")
	if err != nil {
		t.Fatalf("query products error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for _, p := range products {
		var parts []quote.AnnotatablePart
		if err := p.UnmarshalJSONField("annotatable_parts", &parts); err != nil {
			t.Fatalf("product %q parts: %v", p.GetString("name"), err)
		}
		if len(parts) == 0 {
			t.Errorf("product %q has no annotatable parts", p.GetString("name"))
		}
	}

	// Every material type is represented
	materials, _ := app.FindAllRecords("materials")
	types := map[string]bool{}
	for _, m := range materials {
		types[m.GetString("type")] = true
		if m.GetString("tag_keys") == "" {
			t.Errorf("material %q has no tag keys", m.GetString("name"))
		}
	}
	for _, mt := range quote.MaterialTypes {
		if !types[string(mt)] {
			t.Errorf("no seeded material of type %q", mt)
		}
	}

	clients, _ := app.FindAllRecords("clients")
	if len(clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(clients))
	}
}

func TestSeed_TagKeysAreSlugged(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	r, err := app.FindFirstRecordByData("materials", "code", "FAB-101")
	if err != nil {
		t.Fatalf("find seeded velvet: %v", err)
	}
	if got := r.GetString("tag_keys"); got != "|velvet|pink|soft|" {
		t.Errorf("tag_keys = %q, want %q", got, "|velvet|pink|soft|")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	products, _ := app.FindAllRecords("products")
	if len(products) != 3 {
		t.Errorf("expected 3 products after double seed, got %d", len(products))
	}
	materials, _ := app.FindAllRecords("materials")
	if len(materials) != 10 {
		t.Errorf("expected 10 materials after double seed, got %d", len(materials))
	}
}

func TestSeed_SkipsWhenCatalogExists(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProduct(t, app, "Existing Sofa", 1000)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	materials, _ := app.FindAllRecords("materials")
	if len(materials) != 0 {
		t.Errorf("expected seed to be skipped, found %d materials", len(materials))
	}
}
