package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
)

// highestSequence scans existing quotations for the largest sequence used in
// year. It seeds a missing counter so references already issued are never
// handed out again.
func highestSequence(app core.App, year int) (int, error) {
	records, err := app.FindRecordsByFilter(
		"quotations",
		"reference_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": quote.ReferenceYearPrefix(year) + "%"},
	)
	if err != nil {
		return 0, fmt.Errorf("scan references for %d: %w", year, err)
	}
	highest := 0
	for _, r := range records {
		y, seq, err := quote.ParseReference(r.GetString("reference_number"))
		if err == nil && y == year && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

// AllocateReferenceNumber returns the next "NQ-<year>-NNNN" reference for
// now's year and advances the year's counter. Call it with the app of the
// transaction that inserts the quotation so the increment and the insert
// commit together; SQLite serialises concurrent writers and the unique
// index on reference_number rejects anything that slips through.
func AllocateReferenceNumber(app core.App, now time.Time) (string, error) {
	year := now.Year()

	counter, err := app.FindFirstRecordByFilter(
		"reference_counters",
		"year = {:year}",
		map[string]any{"year": year},
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		col, err := app.FindCollectionByNameOrId("reference_counters")
		if err != nil {
			return "", fmt.Errorf("reference counters collection: %w", err)
		}
		highest, err := highestSequence(app, year)
		if err != nil {
			return "", err
		}
		counter = core.NewRecord(col)
		counter.Set("year", year)
		counter.Set("last_sequence", highest)
	case err != nil:
		return "", fmt.Errorf("load reference counter for %d: %w", year, err)
	}

	next := counter.GetInt("last_sequence") + 1
	counter.Set("last_sequence", next)
	if err := app.Save(counter); err != nil {
		return "", fmt.Errorf("advance reference counter for %d: %w", year, err)
	}

	return quote.FormatReference(year, next), nil
}
