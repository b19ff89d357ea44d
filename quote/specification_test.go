package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaterialSpecification(t *testing.T) {
	assert.Equal(t, "Standard", MaterialSpecification(nil))

	anns := []Annotation{
		{PartName: "Seat", Material: MaterialSnapshot{Name: "Velvet Navy", Code: "VN-01"}},
		{PartName: "Legs", Material: MaterialSnapshot{Name: "Walnut", Code: "WD-7"}},
	}
	assert.Equal(t, "Seat: Velvet Navy (VN-01)\nLegs: Walnut (WD-7)", MaterialSpecification(anns))
}

func TestDimensionsText(t *testing.T) {
	tests := map[string]string{
		"220×95×80":       "W 220 x D 95 x H 80 cm",
		"220 x 95 x 80":   "W 220 x D 95 x H 80 cm",
		"220cm×95cm×80cm": "W 220 x D 95 x H 80 cm",
		"Ø60":             "Ø60 cm",
		"120 x 60":        "120 x 60 cm",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, DimensionsText(in), in)
	}
}

func TestCategoryAndDimensions(t *testing.T) {
	p := ProductSnapshot{Category: "Sofa", Dimensions: "220×95×80"}
	assert.Equal(t, "Sofa\nW 220 x D 95 x H 80 cm", CategoryAndDimensions(p, ""))
	assert.Equal(t, "Sofa\nW 200 x D 90 x H 75 cm", CategoryAndDimensions(p, "200x90x75"))
	assert.Equal(t, "Sofa", CategoryAndDimensions(ProductSnapshot{Category: "Sofa"}, ""))
}

func TestSnapshotsAreDetached(t *testing.T) {
	m := Material{ID: "m1", Name: "Oak", Tags: []string{"natural"}, PriceUplift: 10}
	snap := m.Snapshot()
	m.Name = "Oak (renamed)"
	m.PriceUplift = 99
	m.Tags[0] = "changed"

	assert.Equal(t, "Oak", snap.Name)
	assert.Equal(t, 10.0, snap.PriceUplift)
	assert.Equal(t, []string{"natural"}, snap.Tags)

	c := Client{ID: "c1", Name: "Ava", Email: "ava@example.com"}
	var q Quotation
	q.SelectClient(c)
	c.Email = "new@example.com"
	assert.Equal(t, "ava@example.com", q.Customer.Email)
	assert.Equal(t, "c1", q.ClientID)
}
