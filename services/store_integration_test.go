package services

import (
	"errors"
	"math"
	"testing"

	"furniquote/quote"
	"furniquote/testhelpers"
)

func TestStore_ProductRoundTrip(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)

	saved, err := s.SaveProduct(quote.Product{
		Name:       "  Oslo Sofa ",
		Category:   "Sofa",
		BasePrice:  4200,
		Dimensions: "220x95x80",
		CBM:        1.85,
		Parts: []quote.AnnotatablePart{
			{ID: "seat", Name: "Seat", X: 20, Y: 45, Width: 60, Height: 20, AllowedMaterialTypes: []quote.MaterialType{quote.Fabric}},
		},
	})
	if err != nil {
		t.Fatalf("SaveProduct() error: %v", err)
	}
	if saved.ID == "" || saved.Name != "Oslo Sofa" {
		t.Errorf("unexpected saved product %+v", saved)
	}

	got, err := s.GetProduct(saved.ID)
	if err != nil {
		t.Fatalf("GetProduct() error: %v", err)
	}
	if len(got.Parts) != 1 || got.Parts[0].AllowedMaterialTypes[0] != quote.Fabric {
		t.Errorf("parts not round-tripped: %+v", got.Parts)
	}

	got.BasePrice = 3900
	if _, err := s.SaveProduct(got); err != nil {
		t.Fatalf("update error: %v", err)
	}
	all, _ := s.ListProducts()
	if len(all) != 1 || all[0].BasePrice != 3900 {
		t.Errorf("expected one updated product, got %+v", all)
	}

	if err := s.DeleteProduct(saved.ID); err != nil {
		t.Fatalf("DeleteProduct() error: %v", err)
	}
	if _, err := s.GetProduct(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_SaveProduct_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)

	_, err := s.SaveProduct(quote.Product{Name: "  ", BasePrice: -1})
	fields := FieldErrors(err)
	if fields["name"] == "" || fields["base_price"] == "" {
		t.Errorf("expected name and base_price errors, got %v", fields)
	}
	if all, _ := s.ListProducts(); len(all) != 0 {
		t.Error("invalid product must not be stored")
	}
}

func TestStore_SearchMaterials(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	testhelpers.CreateTestMaterial(t, app, "Velvet Rose", quote.Fabric, 150, "Velvet", "Pink")
	testhelpers.CreateTestMaterial(t, app, "Pink Onyx", quote.Stone, 900, "pink")
	testhelpers.CreateTestMaterial(t, app, "Natural Oak", quote.Wood, 50, "Oak")

	tests := []struct {
		name  string
		query MaterialQuery
		want  []string
	}{
		{"all", MaterialQuery{}, []string{"Velvet Rose", "Pink Onyx", "Natural Oak"}},
		{"text is case-insensitive", MaterialQuery{Text: "ROSE"}, []string{"Velvet Rose"}},
		{"tag matches by key", MaterialQuery{Tags: []string{" PINK "}}, []string{"Velvet Rose", "Pink Onyx"}},
		{"type filter", MaterialQuery{Types: []quote.MaterialType{quote.Wood, quote.Stone}}, []string{"Pink Onyx", "Natural Oak"}},
		{"tag and type", MaterialQuery{Tags: []string{"pink"}, Types: []quote.MaterialType{quote.Fabric}}, []string{"Velvet Rose"}},
		{"limit", MaterialQuery{Limit: 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchMaterials(tt.query)
			if err != nil {
				t.Fatalf("SearchMaterials() error: %v", err)
			}
			if tt.want == nil {
				if len(got) != tt.query.Limit {
					t.Errorf("expected %d results, got %d", tt.query.Limit, len(got))
				}
				return
			}
			names := map[string]bool{}
			for _, m := range got {
				names[m.Name] = true
			}
			if len(got) != len(tt.want) {
				t.Errorf("expected %v, got %d results", tt.want, len(got))
			}
			for _, w := range tt.want {
				if !names[w] {
					t.Errorf("expected %q in results", w)
				}
			}
		})
	}
}

func TestStore_AllTagsDeduplicates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	testhelpers.CreateTestMaterial(t, app, "Velvet Rose", quote.Fabric, 150, "Velvet", "pink")
	testhelpers.CreateTestMaterial(t, app, "Pink Onyx", quote.Stone, 900, "Pink", "Veined")

	tags, err := s.AllTags()
	if err != nil {
		t.Fatalf("AllTags() error: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 distinct tags, got %v", tags)
	}
	if tags[0] != "pink" && tags[0] != "Pink" {
		t.Errorf("expected tags sorted case-insensitively, got %v", tags)
	}
}

func TestStore_SaveMaterialDefaults(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)

	m, err := s.SaveMaterial(quote.Material{Name: "Brass", Type: quote.Metal, Tags: []string{"Gold", "gold ", ""}})
	if err != nil {
		t.Fatalf("SaveMaterial() error: %v", err)
	}
	if m.Availability != quote.InStock {
		t.Errorf("availability = %q, want in_stock", m.Availability)
	}
	if len(m.Tags) != 1 {
		t.Errorf("expected duplicate tags to collapse, got %v", m.Tags)
	}

	_, err = s.SaveMaterial(quote.Material{Name: "Mystery", Type: "plastic"})
	if FieldErrors(err)["type"] == "" {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestStore_SearchClients(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	testhelpers.CreateTestClient(t, app, "Acme")
	testhelpers.CreateTestClient(t, app, "Beta Studio")

	all, _ := s.SearchClients("  ")
	if len(all) != 2 {
		t.Errorf("empty query should list all clients, got %d", len(all))
	}
	got, _ := s.SearchClients("beta studio llc")
	if len(got) != 1 || got[0].Name != "Beta Studio" {
		t.Errorf("expected company match, got %+v", got)
	}

	if _, err := s.SaveClient(quote.Client{Name: "Bad", Email: "not-an-email"}); FieldErrors(err)["email"] == "" {
		t.Errorf("expected email error, got %v", err)
	}
}

func storedQuotation(t *testing.T, s *Store, product quote.Product, material quote.Material, qty int) quote.Quotation {
	t.Helper()
	q, err := s.CreateQuotation(quote.Quotation{
		Customer: quote.CustomerSnapshot{Name: "Acme"},
		Items: []quote.Item{{
			Product:  product.Snapshot(),
			Quantity: qty,
			// derived values sent by a client are ignored
			UnitPrice:  1,
			TotalPrice: 1,
			Annotations: []quote.Annotation{
				{PartName: "Seat", MaterialID: material.ID, Material: material.Snapshot(), X: 30, Y: 40},
			},
		}},
	})
	if err != nil {
		t.Fatalf("CreateQuotation() error: %v", err)
	}
	return q
}

func TestStore_CreateQuotation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	p, _ := s.SaveProduct(quote.Product{Name: "Oslo Sofa", BasePrice: 1000, CBM: 1.5})
	m, _ := s.SaveMaterial(quote.Material{Name: "Velvet Rose", Code: "FAB-1", Type: quote.Fabric, PriceUplift: 200})

	q := storedQuotation(t, s, p, m, 3)

	if q.Status != quote.StatusDraft {
		t.Errorf("status = %q, want draft", q.Status)
	}
	if len(q.Items) != 1 || len(q.Items[0].Annotations) != 1 {
		t.Fatalf("expected 1 item with 1 annotation, got %+v", q.Items)
	}
	item := q.Items[0]
	if item.UnitPrice != 1200 || item.TotalPrice != 3600 {
		t.Errorf("item prices = %v / %v, want 1200 / 3600", item.UnitPrice, item.TotalPrice)
	}
	if math.Abs(q.TotalCBM-4.5) > epsilon || math.Abs(q.TotalAmount-3780) > epsilon {
		t.Errorf("totals = %+v", q.Totals)
	}
	if item.ID == "" || item.Annotations[0].ID == "" {
		t.Error("expected generated item and annotation ids")
	}
}

func TestStore_SnapshotsSurviveCatalogEdits(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	p, _ := s.SaveProduct(quote.Product{Name: "Oslo Sofa", BasePrice: 1000})
	m, _ := s.SaveMaterial(quote.Material{Name: "Velvet Rose", Type: quote.Fabric, PriceUplift: 200})
	q := storedQuotation(t, s, p, m, 1)

	p.BasePrice = 5000
	p.Name = "Oslo Sofa v2"
	m.PriceUplift = 999
	if _, err := s.SaveProduct(p); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveMaterial(m); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteMaterial(m.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetQuotation(q.ID)
	if err != nil {
		t.Fatalf("GetQuotation() error: %v", err)
	}
	item := got.Items[0]
	if item.Product.Name != "Oslo Sofa" || item.Product.BasePrice != 1000 {
		t.Errorf("product snapshot changed: %+v", item.Product)
	}
	if item.Annotations[0].Material.PriceUplift != 200 || item.Annotations[0].Material.Name != "Velvet Rose" {
		t.Errorf("material snapshot changed: %+v", item.Annotations[0].Material)
	}
	if got.TotalAmount != q.TotalAmount {
		t.Errorf("totals changed: %v -> %v", q.TotalAmount, got.TotalAmount)
	}
}

func TestStore_UpdateQuotationReplacesItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	p, _ := s.SaveProduct(quote.Product{Name: "Oslo Sofa", BasePrice: 1000})
	m, _ := s.SaveMaterial(quote.Material{Name: "Velvet Rose", Type: quote.Fabric, PriceUplift: 200})
	q := storedQuotation(t, s, p, m, 1)

	q.Items = append(q.Items, quote.Item{Product: p.Snapshot(), Quantity: 2})
	q.Items[0].Annotations = nil
	updated, err := s.UpdateQuotation(q.ID, q)
	if err != nil {
		t.Fatalf("UpdateQuotation() error: %v", err)
	}
	if updated.ReferenceNumber != q.ReferenceNumber {
		t.Errorf("reference changed: %s -> %s", q.ReferenceNumber, updated.ReferenceNumber)
	}
	if len(updated.Items) != 2 || len(updated.Items[0].Annotations) != 0 {
		t.Fatalf("unexpected items after update: %+v", updated.Items)
	}
	if updated.Subtotal != 3000 {
		t.Errorf("subtotal = %v, want 3000", updated.Subtotal)
	}

	annotations, _ := app.FindAllRecords("item_annotations")
	if len(annotations) != 0 {
		t.Errorf("expected old annotations removed, found %d", len(annotations))
	}
}

func TestStore_UpdateQuotationFailureKeepsPrevious(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	p, _ := s.SaveProduct(quote.Product{Name: "Oslo Sofa", BasePrice: 1000})
	m, _ := s.SaveMaterial(quote.Material{Name: "Velvet Rose", Type: quote.Fabric, PriceUplift: 200})
	q := storedQuotation(t, s, p, m, 1)

	bad := q
	bad.Items = []quote.Item{{Product: p.Snapshot(), Quantity: 0}}
	if _, err := s.UpdateQuotation(q.ID, bad); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got, _ := s.GetQuotation(q.ID)
	if len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Errorf("previous version should be intact, got %+v", got.Items)
	}
}

func TestStore_ListQuotationsItemCounts(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	p, _ := s.SaveProduct(quote.Product{Name: "Oslo Sofa", BasePrice: 1000})
	m, _ := s.SaveMaterial(quote.Material{Name: "Velvet Rose", Type: quote.Fabric})

	one := storedQuotation(t, s, p, m, 1)
	three := storedQuotation(t, s, p, m, 1)
	three.Items = append(three.Items,
		quote.Item{Product: p.Snapshot(), Quantity: 2},
		quote.Item{Product: p.Snapshot(), Quantity: 4})
	if _, err := s.UpdateQuotation(three.ID, three); err != nil {
		t.Fatalf("UpdateQuotation() error: %v", err)
	}

	list, err := s.ListQuotations(QuotationFilter{})
	if err != nil {
		t.Fatalf("ListQuotations() error: %v", err)
	}
	want := map[string]int{one.ID: 1, three.ID: 3}
	if len(list) != len(want) {
		t.Fatalf("expected %d quotations, got %d", len(want), len(list))
	}
	for _, q := range list {
		if q.ItemCount != want[q.ID] {
			t.Errorf("%s: ItemCount = %d, want %d", q.ReferenceNumber, q.ItemCount, want[q.ID])
		}
	}
}

func TestStore_QuotationStatusAndDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := NewStore(app)
	p, _ := s.SaveProduct(quote.Product{Name: "Oslo Sofa", BasePrice: 1000})
	m, _ := s.SaveMaterial(quote.Material{Name: "Velvet Rose", Type: quote.Fabric})
	q := storedQuotation(t, s, p, m, 1)

	for _, st := range []quote.Status{quote.StatusApproved, quote.StatusDraft, quote.StatusRejected} {
		got, err := s.UpdateQuotationStatus(q.ID, st)
		if err != nil || got.Status != st {
			t.Errorf("UpdateQuotationStatus(%s) = %v, %v", st, got.Status, err)
		}
	}
	if _, err := s.UpdateQuotationStatus(q.ID, "archived"); !errors.Is(err, quote.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	list, _ := s.ListQuotations(QuotationFilter{Status: quote.StatusRejected})
	if len(list) != 1 || list[0].ItemCount != 1 {
		t.Errorf("expected one rejected quotation with 1 item, got %+v", list)
	}

	if err := s.DeleteQuotation(q.ID); err != nil {
		t.Fatalf("DeleteQuotation() error: %v", err)
	}
	items, _ := app.FindAllRecords("quotation_items")
	if len(items) != 0 {
		t.Errorf("expected items cascade-deleted, found %d", len(items))
	}
	if err := s.DeleteQuotation(q.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
