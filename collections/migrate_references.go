package collections

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
)

// MigrateReferenceCounters raises each year's reference counter to the
// highest sequence already issued that year. Quotations created before the
// counters existed would otherwise be handed a duplicate reference.
// Safe to call on every startup.
func MigrateReferenceCounters(app *pocketbase.PocketBase) error {
	countersCol, err := app.FindCollectionByNameOrId("reference_counters")
	if err != nil {
		return fmt.Errorf("migrate_refs: could not find reference_counters collection: %w", err)
	}

	quotations, err := app.FindAllRecords("quotations")
	if err != nil {
		return fmt.Errorf("migrate_refs: could not query quotations: %w", err)
	}

	highest := map[int]int{}
	for _, q := range quotations {
		ref := q.GetString("reference_number")
		year, seq, err := quote.ParseReference(ref)
		if err != nil {
			log.Printf("migrate_refs: skipping quotation %s with reference %q: %v\n", q.Id, ref, err)
			continue
		}
		if seq > highest[year] {
			highest[year] = seq
		}
	}

	for year, seq := range highest {
		counter, err := app.FindFirstRecordByFilter(countersCol, "year = {:year}", map[string]any{"year": year})
		switch {
		case errors.Is(err, sql.ErrNoRows):
			counter = core.NewRecord(countersCol)
			counter.Set("year", year)
		case err != nil:
			return fmt.Errorf("migrate_refs: could not load counter for %d: %w", year, err)
		}
		if !counter.IsNew() && counter.GetInt("last_sequence") >= seq {
			continue
		}

		counter.Set("last_sequence", seq)
		if err := app.Save(counter); err != nil {
			return fmt.Errorf("migrate_refs: could not save counter for %d: %w", year, err)
		}
		log.Printf("migrate_refs: counter for %d set to %d\n", year, seq)
	}

	return nil
}
