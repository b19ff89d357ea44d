package quote

import (
	"fmt"
	"strings"
)

// StandardSpecification is the specification text of an item without
// annotations.
const StandardSpecification = "Standard"

// MaterialSpecification renders one "part: material (code)" line per
// annotation, or "Standard" when there are none.
func MaterialSpecification(annotations []Annotation) string {
	if len(annotations) == 0 {
		return StandardSpecification
	}
	lines := make([]string, 0, len(annotations))
	for _, a := range annotations {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", a.PartName, a.Material.Name, a.Material.Code))
	}
	return strings.Join(lines, "\n")
}

// DimensionsText formats "W x D x H" style dimensions as
// "W a x D b x H c cm". Anything that does not split into three parts is
// returned trimmed with " cm" appended.
func DimensionsText(dimensions string) string {
	d := strings.TrimSpace(dimensions)
	if d == "" {
		return ""
	}
	parts := strings.FieldsFunc(d, func(r rune) bool {
		return r == '×' || r == 'x' || r == 'X'
	})
	if len(parts) != 3 {
		return d + " cm"
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[i]), "cm"))
	}
	return fmt.Sprintf("W %s x D %s x H %s cm", parts[0], parts[1], parts[2])
}

// CategoryAndDimensions is the description cell text: category on the first
// line, formatted dimensions on the second.
func CategoryAndDimensions(p ProductSnapshot, customDimensions string) string {
	dims := p.Dimensions
	if strings.TrimSpace(customDimensions) != "" {
		dims = customDimensions
	}
	text := DimensionsText(dims)
	switch {
	case p.Category == "":
		return text
	case text == "":
		return p.Category
	}
	return p.Category + "\n" + text
}
