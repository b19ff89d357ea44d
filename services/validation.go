package services

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"furniquote/quote"
)

// FieldErrors flattens a validation error into a field -> message map.
// Non-validation errors return nil.
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, e := range verrs {
		if e != nil {
			out[field] = e.Error()
		}
	}
	return out
}

// IsValidation reports whether err carries field errors.
func IsValidation(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}

func materialTypeValues() []any {
	out := make([]any, len(quote.MaterialTypes))
	for i, t := range quote.MaterialTypes {
		out[i] = t
	}
	return out
}

func availabilityValues() []any {
	out := make([]any, len(quote.Availabilities))
	for i, a := range quote.Availabilities {
		out[i] = a
	}
	return out
}

var notBlank = validation.By(func(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

func ValidateProduct(p quote.Product) error {
	errs := validation.Errors{
		"name":       validation.Validate(p.Name, validation.Required, notBlank, validation.Length(1, 200)),
		"base_price": validation.Validate(p.BasePrice, validation.Min(0.0)),
		"cbm":        validation.Validate(p.CBM, validation.Min(0.0)),
	}
	for i, part := range p.Parts {
		if strings.TrimSpace(part.Name) == "" {
			errs[fmt.Sprintf("annotatable_parts.%d.name", i)] = errors.New("cannot be blank")
		}
		for _, t := range part.AllowedMaterialTypes {
			if _, err := quote.ParseMaterialType(string(t)); err != nil {
				errs[fmt.Sprintf("annotatable_parts.%d.allowed_material_types", i)] = err
			}
		}
	}
	return errs.Filter()
}

func ValidateMaterial(m quote.Material) error {
	return validation.Errors{
		"name":         validation.Validate(m.Name, validation.Required, notBlank, validation.Length(1, 200)),
		"code":         validation.Validate(m.Code, validation.Length(0, 64)),
		"type":         validation.Validate(m.Type, validation.Required, validation.In(materialTypeValues()...).Error("must be one of fabric, leather, wood, metal, glass, stone")),
		"availability": validation.Validate(m.Availability, validation.In(availabilityValues()...)),
	}.Filter()
}

func ValidateClient(c quote.Client) error {
	return validation.Errors{
		"name":  validation.Validate(c.Name, validation.Required, notBlank, validation.Length(1, 200)),
		"email": validation.Validate(strings.TrimSpace(c.Email), is.EmailFormat),
	}.Filter()
}

// ValidateQuotation checks what must hold before a quotation is saved:
// a customer name and at least one item with a positive quantity.
func ValidateQuotation(q quote.Quotation) error {
	errs := validation.Errors{
		"customer_name":  validation.Validate(q.Customer.Name, validation.Required.Error("Customer name is required"), notBlank),
		"customer_email": validation.Validate(strings.TrimSpace(q.Customer.Email), is.EmailFormat),
		"items":          validation.Validate(q.Items, validation.Required.Error("Add at least one item")),
	}
	if q.Status != "" {
		if _, err := quote.ParseStatus(string(q.Status)); err != nil {
			errs["status"] = err
		}
	}
	for i, it := range q.Items {
		if it.Quantity < 1 {
			errs[fmt.Sprintf("items.%d.quantity", i)] = errors.New("must be at least 1")
		}
		if strings.TrimSpace(it.Product.Name) == "" {
			errs[fmt.Sprintf("items.%d.product", i)] = errors.New("product snapshot is required")
		}
		for j, a := range it.Annotations {
			if strings.TrimSpace(a.PartName) == "" {
				errs[fmt.Sprintf("items.%d.annotations.%d.part_name", i, j)] = errors.New("cannot be blank")
			}
			if a.X < 0 || a.X > 100 || a.Y < 0 || a.Y > 100 {
				errs[fmt.Sprintf("items.%d.annotations.%d.position", i, j)] = errors.New("must be within 0-100")
			}
		}
	}
	return errs.Filter()
}
