package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"furniquote/quote"
)

// QuotationSummary is a quotation header for list views.
type QuotationSummary struct {
	ID              string       `json:"id"`
	ReferenceNumber string       `json:"reference_number"`
	CustomerName    string       `json:"customer_name"`
	CustomerCompany string       `json:"customer_company"`
	Status          quote.Status `json:"status"`
	TotalAmount     float64      `json:"total_amount"`
	TotalCBM        float64      `json:"total_cbm"`
	ItemCount       int          `json:"item_count"`
	Created         time.Time    `json:"created"`
}

// QuotationFilter narrows ListQuotations.
type QuotationFilter struct {
	Status quote.Status
	Search string
}

func headerFromRecord(r *core.Record) quote.Quotation {
	return quote.Quotation{
		ID:              r.Id,
		ReferenceNumber: r.GetString("reference_number"),
		ClientID:        r.GetString("client"),
		Customer: quote.CustomerSnapshot{
			Name:    r.GetString("customer_name"),
			Email:   r.GetString("customer_email"),
			Phone:   r.GetString("customer_phone"),
			Company: r.GetString("customer_company"),
			Address: r.GetString("customer_address"),
		},
		Status: quote.Status(r.GetString("status")),
		Notes:  r.GetString("notes"),
		Totals: quote.Totals{
			Subtotal:    r.GetFloat("subtotal"),
			VATAmount:   r.GetFloat("vat_amount"),
			TotalAmount: r.GetFloat("total_amount"),
			TotalCBM:    r.GetFloat("total_cbm"),
		},
		Created: recordTime(r, "created"),
		Updated: recordTime(r, "updated"),
	}
}

// itemCounts returns the number of items per quotation id in one query.
func (s *Store) itemCounts() (map[string]int, error) {
	var rows []struct {
		Quotation string `db:"quotation"`
		N         int    `db:"n"`
	}
	err := s.app.DB().
		NewQuery("SELECT quotation, COUNT(*) AS n FROM quotation_items GROUP BY quotation").
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("count quotation items: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Quotation] = r.N
	}
	return counts, nil
}

// ListQuotations returns quotation headers, newest first.
func (s *Store) ListQuotations(f QuotationFilter) ([]QuotationSummary, error) {
	clauses := []string{"id != ''"}
	params := map[string]any{}
	if f.Status != "" {
		clauses = append(clauses, "status = {:status}")
		params["status"] = string(f.Status)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		clauses = append(clauses, "(reference_number ~ {:q} || customer_name ~ {:q} || customer_company ~ {:q})")
		params["q"] = q
	}

	records, err := s.app.FindRecordsByFilter("quotations", strings.Join(clauses, " && "), "-created", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	counts, err := s.itemCounts()
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}

	out := make([]QuotationSummary, 0, len(records))
	for _, r := range records {
		h := headerFromRecord(r)
		out = append(out, QuotationSummary{
			ID:              h.ID,
			ReferenceNumber: h.ReferenceNumber,
			CustomerName:    h.Customer.Name,
			CustomerCompany: h.Customer.Company,
			Status:          h.Status,
			TotalAmount:     h.TotalAmount,
			TotalCBM:        h.TotalCBM,
			ItemCount:       counts[r.Id],
			Created:         h.Created,
		})
	}
	return out, nil
}

// GetQuotation loads a quotation with its items and their annotations, both
// in saved order.
func (s *Store) GetQuotation(id string) (quote.Quotation, error) {
	r, err := s.app.FindRecordById("quotations", id)
	if err != nil {
		return quote.Quotation{}, lookupErr(err, "quotation", id)
	}
	q := headerFromRecord(r)

	itemRecords, err := s.app.FindRecordsByFilter("quotation_items", "quotation = {:id}", "sort_order", 0, 0,
		map[string]any{"id": id})
	if err != nil {
		return quote.Quotation{}, fmt.Errorf("load items of %s: %w", id, err)
	}

	q.Items = make([]quote.Item, 0, len(itemRecords))
	for _, ir := range itemRecords {
		item, err := s.itemFromRecord(ir)
		if err != nil {
			return quote.Quotation{}, err
		}
		q.Items = append(q.Items, item)
	}
	return q, nil
}

func (s *Store) itemFromRecord(r *core.Record) (quote.Item, error) {
	item := quote.Item{
		ID:               r.GetString("item_key"),
		Quantity:         r.GetInt("quantity"),
		UnitPrice:        r.GetFloat("unit_price"),
		CBM:              r.GetFloat("cbm"),
		TotalCBM:         r.GetFloat("total_cbm"),
		TotalPrice:       r.GetFloat("total_price"),
		CustomDimensions: r.GetString("custom_dimensions"),
		Notes:            r.GetString("notes"),
	}
	if item.ID == "" {
		item.ID = r.Id
	}
	if err := unmarshalJSONField(r, "product_snapshot", &item.Product); err != nil {
		return quote.Item{}, err
	}

	annRecords, err := s.app.FindRecordsByFilter("item_annotations", "item = {:id}", "sort_order", 0, 0,
		map[string]any{"id": r.Id})
	if err != nil {
		return quote.Item{}, fmt.Errorf("load annotations of item %s: %w", r.Id, err)
	}
	item.Annotations = make([]quote.Annotation, 0, len(annRecords))
	for _, ar := range annRecords {
		a := quote.Annotation{
			ID:         ar.GetString("annotation_key"),
			PartID:     ar.GetString("part_id"),
			PartName:   ar.GetString("part_name"),
			MaterialID: ar.GetString("material_id"),
			X:          ar.GetFloat("x"),
			Y:          ar.GetFloat("y"),
		}
		if a.ID == "" {
			a.ID = ar.Id
		}
		if err := unmarshalJSONField(ar, "material_snapshot", &a.Material); err != nil {
			return quote.Item{}, err
		}
		item.Annotations = append(item.Annotations, a)
	}
	return item, nil
}

func setHeader(r *core.Record, q quote.Quotation) {
	r.Set("client", q.ClientID)
	r.Set("customer_name", strings.TrimSpace(q.Customer.Name))
	r.Set("customer_email", strings.TrimSpace(q.Customer.Email))
	r.Set("customer_phone", strings.TrimSpace(q.Customer.Phone))
	r.Set("customer_company", strings.TrimSpace(q.Customer.Company))
	r.Set("customer_address", q.Customer.Address)
	r.Set("status", string(q.Status))
	r.Set("notes", q.Notes)
	r.Set("subtotal", q.Subtotal)
	r.Set("vat_amount", q.VATAmount)
	r.Set("total_amount", q.TotalAmount)
	r.Set("total_cbm", q.TotalCBM)
}

// writeItems inserts items and their annotations with their snapshots.
func writeItems(app core.App, quotationID string, items []quote.Item) error {
	itemsCol, err := app.FindCollectionByNameOrId("quotation_items")
	if err != nil {
		return fmt.Errorf("quotation_items collection: %w", err)
	}
	annCol, err := app.FindCollectionByNameOrId("item_annotations")
	if err != nil {
		return fmt.Errorf("item_annotations collection: %w", err)
	}

	for i, it := range items {
		key := it.ID
		if key == "" {
			key = uuid.NewString()
		}
		ir := core.NewRecord(itemsCol)
		ir.Set("quotation", quotationID)
		ir.Set("item_key", key)
		ir.Set("sort_order", i)
		ir.Set("product_id", it.Product.ID)
		ir.Set("product_snapshot", it.Product)
		ir.Set("quantity", it.Quantity)
		ir.Set("unit_price", it.UnitPrice)
		ir.Set("cbm", it.CBM)
		ir.Set("total_cbm", it.TotalCBM)
		ir.Set("total_price", it.TotalPrice)
		ir.Set("custom_dimensions", it.CustomDimensions)
		ir.Set("notes", it.Notes)
		if err := app.Save(ir); err != nil {
			return fmt.Errorf("save item %d: %w", i+1, err)
		}

		for j, a := range it.Annotations {
			akey := a.ID
			if akey == "" {
				akey = uuid.NewString()
			}
			ar := core.NewRecord(annCol)
			ar.Set("item", ir.Id)
			ar.Set("annotation_key", akey)
			ar.Set("sort_order", j)
			ar.Set("part_id", a.PartID)
			ar.Set("part_name", strings.TrimSpace(a.PartName))
			ar.Set("material_id", a.MaterialID)
			ar.Set("material_snapshot", a.Material)
			ar.Set("x", a.X)
			ar.Set("y", a.Y)
			if err := app.Save(ar); err != nil {
				return fmt.Errorf("save annotation %d of item %d: %w", j+1, i+1, err)
			}
		}
	}
	return nil
}

// CreateQuotation validates, recalculates and inserts a new draft quotation
// with its items and annotations. The reference number is allocated in the
// same transaction.
func (s *Store) CreateQuotation(q quote.Quotation) (quote.Quotation, error) {
	if q.Status == "" {
		q.Status = quote.StatusDraft
	}
	if err := ValidateQuotation(q); err != nil {
		return quote.Quotation{}, err
	}
	q.Recalculate()

	var id string
	err := s.app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("quotations")
		if err != nil {
			return fmt.Errorf("quotations collection: %w", err)
		}
		ref, err := AllocateReferenceNumber(txApp, s.now())
		if err != nil {
			return err
		}

		r := core.NewRecord(col)
		r.Set("reference_number", ref)
		setHeader(r, q)
		if err := txApp.Save(r); err != nil {
			return fmt.Errorf("save quotation: %w", err)
		}
		id = r.Id
		return writeItems(txApp, r.Id, q.Items)
	})
	if err != nil {
		return quote.Quotation{}, fmt.Errorf("create quotation: %w", err)
	}
	return s.GetQuotation(id)
}

// UpdateQuotation replaces the header and all items of a saved quotation in
// a single transaction; a failure leaves the previous version intact. The
// reference number never changes.
func (s *Store) UpdateQuotation(id string, q quote.Quotation) (quote.Quotation, error) {
	if err := ValidateQuotation(q); err != nil {
		return quote.Quotation{}, err
	}
	q.Recalculate()

	err := s.app.RunInTransaction(func(txApp core.App) error {
		r, err := txApp.FindRecordById("quotations", id)
		if err != nil {
			return lookupErr(err, "quotation", id)
		}
		if q.Status == "" {
			q.Status = quote.Status(r.GetString("status"))
		}
		setHeader(r, q)
		if err := txApp.Save(r); err != nil {
			return fmt.Errorf("save quotation: %w", err)
		}

		existing, err := txApp.FindRecordsByFilter("quotation_items", "quotation = {:id}", "", 0, 0,
			map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("load existing items: %w", err)
		}
		for _, ir := range existing {
			if err := txApp.Delete(ir); err != nil {
				return fmt.Errorf("delete item %s: %w", ir.Id, err)
			}
		}
		return writeItems(txApp, id, q.Items)
	})
	if err != nil {
		return quote.Quotation{}, fmt.Errorf("update quotation %s: %w", id, err)
	}
	return s.GetQuotation(id)
}

// UpdateQuotationStatus sets any status from any other.
func (s *Store) UpdateQuotationStatus(id string, status quote.Status) (quote.Quotation, error) {
	if _, err := quote.ParseStatus(string(status)); err != nil {
		return quote.Quotation{}, err
	}
	r, err := s.app.FindRecordById("quotations", id)
	if err != nil {
		return quote.Quotation{}, lookupErr(err, "quotation", id)
	}
	r.Set("status", string(status))
	if err := s.app.Save(r); err != nil {
		return quote.Quotation{}, fmt.Errorf("update status of %s: %w", id, err)
	}
	return s.GetQuotation(id)
}

// DeleteQuotation removes a quotation; items and annotations cascade.
func (s *Store) DeleteQuotation(id string) error {
	return s.deleteRecord("quotations", id, "quotation")
}

// LoadQuotations returns every quotation with items, for reporting.
func (s *Store) LoadQuotations() ([]quote.Quotation, error) {
	records, err := s.app.FindRecordsByFilter("quotations", "id != ''", "-created", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load quotations: %w", err)
	}
	out := make([]quote.Quotation, 0, len(records))
	for _, r := range records {
		q, err := s.GetQuotation(r.Id)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
