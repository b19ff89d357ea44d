package quote

import "slices"

// ProductSnapshot is the frozen copy of a product stored on a quotation item.
type ProductSnapshot struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description,omitempty"`
	BasePrice   float64           `json:"base_price"`
	Dimensions  string            `json:"dimensions"`
	CBM         float64           `json:"cbm"`
	ImageURL    string            `json:"image_url"`
	Parts       []AnnotatablePart `json:"annotatable_parts,omitempty"`
}

// MaterialSnapshot is the frozen copy of a material stored on an annotation.
type MaterialSnapshot struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Code           string       `json:"code"`
	Type           MaterialType `json:"type"`
	PriceUplift    float64      `json:"price_uplift"`
	Availability   Availability `json:"availability,omitempty"`
	Supplier       string       `json:"supplier,omitempty"`
	SwatchImageURL string       `json:"swatch_image_url,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
}

// CustomerSnapshot holds the contact fields copied from a client.
type CustomerSnapshot struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

// Snapshot freezes the product. Slices are copied so later catalog edits
// cannot leak into the snapshot.
func (p Product) Snapshot() ProductSnapshot {
	parts := make([]AnnotatablePart, len(p.Parts))
	for i, part := range p.Parts {
		part.AllowedMaterialTypes = slices.Clone(part.AllowedMaterialTypes)
		parts[i] = part
	}
	return ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		BasePrice:   p.BasePrice,
		Dimensions:  p.Dimensions,
		CBM:         p.CBM,
		ImageURL:    p.ImageURL,
		Parts:       parts,
	}
}

// Snapshot freezes the material.
func (m Material) Snapshot() MaterialSnapshot {
	return MaterialSnapshot{
		ID:             m.ID,
		Name:           m.Name,
		Code:           m.Code,
		Type:           m.Type,
		PriceUplift:    m.PriceUplift,
		Availability:   m.Availability,
		Supplier:       m.Supplier,
		SwatchImageURL: m.SwatchImageURL,
		Tags:           slices.Clone(m.Tags),
	}
}

// Snapshot copies the client's contact fields.
func (c Client) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Company: c.Company,
		Address: c.Address,
	}
}
