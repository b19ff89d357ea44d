package quote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BuilderState is Idle until a product is chosen, then Configuring.
type BuilderState string

const (
	BuilderIdle        BuilderState = "idle"
	BuilderConfiguring BuilderState = "configuring"
)

var (
	ErrNoProduct    = errors.New("no product selected")
	ErrItemNotFound = errors.New("item not found")
)

// Builder is the item workbench: the quotation's items plus the one item
// currently being configured.
type Builder struct {
	Items         []Item           `json:"items"`
	Product       *ProductSnapshot `json:"product,omitempty"`
	Canvas        Canvas           `json:"canvas"`
	Quantity      int              `json:"quantity"`
	QuantityInput string           `json:"quantity_input"`
	EditingID     string           `json:"editing_id,omitempty"`
}

// NewBuilder returns an idle builder over existing items.
func NewBuilder(items []Item) Builder {
	b := Builder{Canvas: NewCanvas(nil)}
	b.Items = append(b.Items, items...)
	b.resetQuantity()
	return b
}

// State reports whether a product is being configured.
func (b *Builder) State() BuilderState {
	if b.Product == nil {
		return BuilderIdle
	}
	return BuilderConfiguring
}

// SelectProduct starts configuring p with an empty annotation set. An item
// being edited stays the edit target.
func (b *Builder) SelectProduct(p ProductSnapshot) {
	b.Product = &p
	b.Canvas = NewCanvas(nil)
	if b.Quantity < 1 {
		b.resetQuantity()
	}
}

// EditItem loads an existing item into the workbench. The next
// AddOrUpdateItem replaces it in place.
func (b *Builder) EditItem(id string) error {
	i := b.itemIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	item := b.Items[i]
	p := item.Product
	b.Product = &p
	b.Canvas = NewCanvas(item.Annotations)
	b.setQuantity(item.Quantity)
	b.EditingID = id
	return nil
}

// AddOrUpdateItem stores the configured item, recalculated, and returns the
// builder to idle. An item being edited keeps its id and list position;
// otherwise a new item is appended. When the item being edited was removed
// in the meantime nothing is stored and the zero Item is returned.
func (b *Builder) AddOrUpdateItem() (Item, error) {
	if b.Product == nil {
		return Item{}, ErrNoProduct
	}
	b.BlurQuantity()

	item := Item{
		Product:     *b.Product,
		Quantity:    b.Quantity,
		Annotations: append([]Annotation(nil), b.Canvas.Annotations...),
	}

	if b.EditingID != "" {
		i := b.itemIndex(b.EditingID)
		if i < 0 {
			b.Cancel()
			return Item{}, nil
		}
		prev := b.Items[i]
		item.ID = prev.ID
		item.CustomDimensions = prev.CustomDimensions
		item.Notes = prev.Notes
		item.Recalculate()
		b.Items[i] = item
	} else {
		item.ID = newID()
		item.Recalculate()
		b.Items = append(b.Items, item)
	}

	b.Cancel()
	return item, nil
}

// Cancel clears the workbench without touching the item list.
func (b *Builder) Cancel() {
	b.Product = nil
	b.Canvas = NewCanvas(nil)
	b.EditingID = ""
	b.resetQuantity()
}

// RemoveItem deletes an item from the list. The workbench is left as is,
// even when the removed item was the one being edited.
func (b *Builder) RemoveItem(id string) bool {
	i := b.itemIndex(id)
	if i < 0 {
		return false
	}
	b.Items = append(b.Items[:i:i], b.Items[i+1:]...)
	return true
}

// SetQuantityInput applies typed quantity text. Anything but plain digits
// (signs included) leaves the quantity unchanged; an empty field reads as 0
// until blur.
func (b *Builder) SetQuantityInput(s string) {
	if s == "" {
		b.QuantityInput = ""
		b.Quantity = 0
		return
	}
	if strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return
	}
	b.QuantityInput = s
	b.Quantity = n
}

// BlurQuantity coerces a quantity below 1 to 1.
func (b *Builder) BlurQuantity() {
	if b.Quantity < 1 {
		b.resetQuantity()
	}
}

func (b *Builder) IncrementQuantity() {
	b.setQuantity(max(b.Quantity, 0) + 1)
}

// DecrementQuantity lowers the quantity, never below 1.
func (b *Builder) DecrementQuantity() {
	b.setQuantity(max(b.Quantity-1, 1))
}

// Totals are the live quotation totals of the builder's items.
func (b *Builder) Totals() Totals {
	return QuotationTotals(b.Items)
}

// PreviewUnitPrice prices the item on the workbench before it is added.
func (b *Builder) PreviewUnitPrice() float64 {
	if b.Product == nil {
		return 0
	}
	return ItemUnitPrice(*b.Product, b.Canvas.Annotations)
}

func (b *Builder) setQuantity(n int) {
	b.Quantity = n
	b.QuantityInput = strconv.Itoa(n)
}

func (b *Builder) resetQuantity() {
	b.setQuantity(1)
}

func (b *Builder) itemIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, it := range b.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (b Builder) clone() Builder {
	out := b
	out.Items = make([]Item, len(b.Items))
	for i, it := range b.Items {
		it.Annotations = append([]Annotation(nil), it.Annotations...)
		out.Items[i] = it
	}
	if b.Product != nil {
		p := *b.Product
		out.Product = &p
	}
	out.Canvas = b.Canvas.clone()
	return out
}
