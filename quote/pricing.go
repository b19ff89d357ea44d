package quote

// VATRate is the fixed VAT applied to every quotation subtotal.
const VATRate = 0.05

// ItemTotal holds the derived figures of a single item.
type ItemTotal struct {
	CBM        float64
	TotalCBM   float64
	TotalPrice float64
}

// Totals holds the derived quotation figures.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	VATAmount   float64 `json:"vat_amount"`
	TotalAmount float64 `json:"total_amount"`
	TotalCBM    float64 `json:"total_cbm"`
}

// ItemUnitPrice returns the product base price plus every annotation's
// material uplift. With no annotations it is exactly the base price.
func ItemUnitPrice(product ProductSnapshot, annotations []Annotation) float64 {
	price := product.BasePrice
	for _, a := range annotations {
		price += a.Material.PriceUplift
	}
	return price
}

// ItemTotals scales the unit price and product volume by quantity.
func ItemTotals(product ProductSnapshot, unitPrice float64, quantity int) ItemTotal {
	q := float64(quantity)
	return ItemTotal{
		CBM:        product.CBM,
		TotalCBM:   product.CBM * q,
		TotalPrice: unitPrice * q,
	}
}

// QuotationTotals sums item totals and applies VAT. Values are not rounded.
func QuotationTotals(items []Item) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += item.TotalPrice
		t.TotalCBM += item.TotalCBM
	}
	t.VATAmount = t.Subtotal * VATRate
	t.TotalAmount = t.Subtotal + t.VATAmount
	return t
}

// Recalculate overwrites the item's derived fields from its product,
// annotations and quantity.
func (it *Item) Recalculate() {
	it.UnitPrice = ItemUnitPrice(it.Product, it.Annotations)
	t := ItemTotals(it.Product, it.UnitPrice, it.Quantity)
	it.CBM = t.CBM
	it.TotalCBM = t.TotalCBM
	it.TotalPrice = t.TotalPrice
}

// Recalculate recomputes every item and then the quotation totals. Any
// derived values received from a caller are discarded.
func (q *Quotation) Recalculate() {
	for i := range q.Items {
		q.Items[i].Recalculate()
	}
	q.Totals = QuotationTotals(q.Items)
}
