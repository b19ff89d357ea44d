// Package quote holds the quotation domain: live catalog records, the frozen
// copies stored on quotations, pricing rules, the annotation engine and the
// item builder.
package quote

import (
	"errors"
	"fmt"
	"time"
)

// MaterialType classifies a material for filtering and fallback colouring.
type MaterialType string

const (
	Fabric  MaterialType = "fabric"
	Leather MaterialType = "leather"
	Wood    MaterialType = "wood"
	Metal   MaterialType = "metal"
	Glass   MaterialType = "glass"
	Stone   MaterialType = "stone"
)

// MaterialTypes lists every material type in display order.
var MaterialTypes = []MaterialType{Fabric, Leather, Wood, Metal, Glass, Stone}

// Availability is informational only; it never blocks selection.
type Availability string

const (
	InStock    Availability = "in_stock"
	Limited    Availability = "limited"
	OutOfStock Availability = "out_of_stock"
)

var Availabilities = []Availability{InStock, Limited, OutOfStock}

var (
	ErrInvalidMaterialType = errors.New("invalid material type")
	ErrInvalidAvailability = errors.New("invalid availability")
)

// ParseMaterialType validates s against the known material types.
func ParseMaterialType(s string) (MaterialType, error) {
	for _, t := range MaterialTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMaterialType, s)
}

// ParseAvailability validates s. An empty string means in stock.
func ParseAvailability(s string) (Availability, error) {
	if s == "" {
		return InStock, nil
	}
	for _, a := range Availabilities {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAvailability, s)
}

// AnnotatablePart is a named region of a product image. AllowedMaterialTypes
// is stored and returned but not enforced when a material is chosen.
type AnnotatablePart struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	X                    float64        `json:"x"`
	Y                    float64        `json:"y"`
	Width                float64        `json:"width"`
	Height               float64        `json:"height"`
	AllowedMaterialTypes []MaterialType `json:"allowed_material_types,omitempty"`
}

// Product is a live, editable catalog record.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	BasePrice   float64           `json:"base_price"`
	Dimensions  string            `json:"dimensions"`
	CBM         float64           `json:"cbm"`
	ImageURL    string            `json:"image_url"`
	Parts       []AnnotatablePart `json:"annotatable_parts"`
	Created     time.Time         `json:"created"`
	Updated     time.Time         `json:"updated"`
}

// Material is a live, editable catalog record.
type Material struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Code           string       `json:"code"`
	Type           MaterialType `json:"type"`
	PriceUplift    float64      `json:"price_uplift"`
	Availability   Availability `json:"availability"`
	Supplier       string       `json:"supplier"`
	SwatchImageURL string       `json:"swatch_image_url"`
	Tags           []string     `json:"tags"`
	Created        time.Time    `json:"created"`
	Updated        time.Time    `json:"updated"`
}

// Client is a live customer record. Quotations copy its contact fields.
type Client struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	Company string    `json:"company"`
	Address string    `json:"address"`
	Notes   string    `json:"notes"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Point is a position on a product image in percent of its width and height,
// origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Annotation binds a material to a point on a product image.
type Annotation struct {
	ID         string           `json:"id"`
	PartID     string           `json:"part_id"`
	PartName   string           `json:"part_name"`
	MaterialID string           `json:"material_id"`
	Material   MaterialSnapshot `json:"material"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
}

// Position returns the annotation's point.
func (a Annotation) Position() Point {
	return Point{X: a.X, Y: a.Y}
}

// Item is one configured product line on a quotation. UnitPrice, CBM,
// TotalCBM and TotalPrice are derived; see Recalculate.
type Item struct {
	ID               string          `json:"id"`
	Product          ProductSnapshot `json:"product"`
	Quantity         int             `json:"quantity"`
	UnitPrice        float64         `json:"unit_price"`
	CBM              float64         `json:"cbm"`
	TotalCBM         float64         `json:"total_cbm"`
	TotalPrice       float64         `json:"total_price"`
	Annotations      []Annotation    `json:"annotations"`
	CustomDimensions string          `json:"custom_dimensions,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// Quotation is the top-level aggregate. The embedded Totals are always
// recomputed from Items before persistence.
type Quotation struct {
	ID              string           `json:"id"`
	ReferenceNumber string           `json:"reference_number"`
	ClientID        string           `json:"client_id,omitempty"`
	Customer        CustomerSnapshot `json:"customer"`
	Status          Status           `json:"status"`
	Items           []Item           `json:"items"`
	Notes           string           `json:"notes"`
	Totals
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// SelectClient copies the client's contact fields onto the quotation. Later
// edits to the client are not reflected here.
func (q *Quotation) SelectClient(c Client) {
	q.ClientID = c.ID
	q.Customer = c.Snapshot()
}
