package collections_test

import (
	"math"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/collections"
	"furniquote/quote"
	"furniquote/testhelpers"
)

func TestMigrateReferenceCounters_SeedsFromExisting(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestQuotation(t, app, "NQ-2025-0007", "Acme", quote.StatusDraft, 0)
	testhelpers.CreateTestQuotation(t, app, "NQ-2025-0012", "Acme", quote.StatusSent, 0)
	testhelpers.CreateTestQuotation(t, app, "NQ-2026-0003", "Beta", quote.StatusDraft, 0)
	testhelpers.CreateTestQuotation(t, app, "legacy-17", "Gamma", quote.StatusDraft, 0)

	if err := collections.MigrateReferenceCounters(app); err != nil {
		t.Fatalf("MigrateReferenceCounters() error: %v", err)
	}

	want := map[int]int{2025: 12, 2026: 3}
	counters, err := app.FindAllRecords("reference_counters")
	if err != nil {
		t.Fatalf("query counters: %v", err)
	}
	if len(counters) != len(want) {
		t.Fatalf("expected %d counters, got %d", len(want), len(counters))
	}
	for _, c := range counters {
		year := c.GetInt("year")
		if got := c.GetInt("last_sequence"); got != want[year] {
			t.Errorf("counter %d = %d, want %d", year, got, want[year])
		}
	}
}

func TestMigrateReferenceCounters_NeverLowers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("reference_counters")
	counter := core.NewRecord(col)
	counter.Set("year", 2025)
	counter.Set("last_sequence", 40)
	if err := app.Save(counter); err != nil {
		t.Fatal(err)
	}
	testhelpers.CreateTestQuotation(t, app, "NQ-2025-0005", "Acme", quote.StatusDraft, 0)

	// Run twice
	for i := 0; i < 2; i++ {
		if err := collections.MigrateReferenceCounters(app); err != nil {
			t.Fatalf("run %d error: %v", i+1, err)
		}
	}

	counters, _ := app.FindAllRecords("reference_counters")
	if len(counters) != 1 {
		t.Fatalf("expected 1 counter, got %d", len(counters))
	}
	if got := counters[0].GetInt("last_sequence"); got != 40 {
		t.Errorf("last_sequence = %d, want 40", got)
	}
}

func TestMigrateQuotationTotals_FixesStaleHeaders(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	stale := testhelpers.CreateTestQuotation(t, app, "NQ-2025-0001", "Acme", quote.StatusDraft, 99)
	testhelpers.CreateTestItem(t, app, stale.Id, 2, 1000, 1.5)
	testhelpers.CreateTestItem(t, app, stale.Id, 1, 500, 0.25)

	if err := collections.MigrateQuotationTotals(app); err != nil {
		t.Fatalf("MigrateQuotationTotals() error: %v", err)
	}

	got, err := app.FindRecordById("quotations", stale.Id)
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]float64{
		"subtotal":     2500,
		"vat_amount":   125,
		"total_amount": 2625,
		"total_cbm":    3.25,
	}
	for field, want := range checks {
		if v := got.GetFloat(field); math.Abs(v-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", field, v, want)
		}
	}
}

func TestMigrateQuotationTotals_LeavesCorrectHeaders(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	// 1050 = 1000 + 5% VAT, matching a single item of 1000 with no volume
	q := testhelpers.CreateTestQuotation(t, app, "NQ-2025-0002", "Acme", quote.StatusDraft, 1050)
	testhelpers.CreateTestItem(t, app, q.Id, 1, 1000, 0)
	before, _ := app.FindRecordById("quotations", q.Id)

	if err := collections.MigrateQuotationTotals(app); err != nil {
		t.Fatalf("MigrateQuotationTotals() error: %v", err)
	}

	after, _ := app.FindRecordById("quotations", q.Id)
	if after.GetDateTime("updated").String() != before.GetDateTime("updated").String() {
		t.Error("expected an already-correct quotation to be left untouched")
	}
}
