package collections

import (
	"fmt"
	"log"
	"math"

	"github.com/pocketbase/pocketbase"

	"furniquote/quote"
)

// totalsEpsilon absorbs float noise from values written by older versions.
const totalsEpsilon = 1e-6

func totalsDiffer(a, b quote.Totals) bool {
	return math.Abs(a.Subtotal-b.Subtotal) > totalsEpsilon ||
		math.Abs(a.VATAmount-b.VATAmount) > totalsEpsilon ||
		math.Abs(a.TotalAmount-b.TotalAmount) > totalsEpsilon ||
		math.Abs(a.TotalCBM-b.TotalCBM) > totalsEpsilon
}

// MigrateQuotationTotals recomputes every quotation header's subtotal, VAT,
// total and CBM from its stored item totals and rewrites the headers that
// disagree. Safe to call on every startup.
func MigrateQuotationTotals(app *pocketbase.PocketBase) error {
	quotations, err := app.FindAllRecords("quotations")
	if err != nil {
		return fmt.Errorf("migrate_totals: could not query quotations: %w", err)
	}

	fixed := 0
	for _, q := range quotations {
		itemRecords, err := app.FindRecordsByFilter(
			"quotation_items",
			"quotation = {:id}",
			"sort_order",
			0, 0,
			map[string]any{"id": q.Id},
		)
		if err != nil {
			return fmt.Errorf("migrate_totals: could not query items of %s: %w", q.Id, err)
		}

		items := make([]quote.Item, len(itemRecords))
		for i, r := range itemRecords {
			items[i] = quote.Item{
				TotalPrice: r.GetFloat("total_price"),
				TotalCBM:   r.GetFloat("total_cbm"),
			}
		}
		want := quote.QuotationTotals(items)
		stored := quote.Totals{
			Subtotal:    q.GetFloat("subtotal"),
			VATAmount:   q.GetFloat("vat_amount"),
			TotalAmount: q.GetFloat("total_amount"),
			TotalCBM:    q.GetFloat("total_cbm"),
		}
		if !totalsDiffer(want, stored) {
			continue
		}

		q.Set("subtotal", want.Subtotal)
		q.Set("vat_amount", want.VATAmount)
		q.Set("total_amount", want.TotalAmount)
		q.Set("total_cbm", want.TotalCBM)
		if err := app.Save(q); err != nil {
			log.Printf("migrate_totals: failed to update %s (%s): %v\n", q.GetString("reference_number"), q.Id, err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("migrate_totals: recomputed totals on %d quotation(s)\n", fixed)
	}
	return nil
}
