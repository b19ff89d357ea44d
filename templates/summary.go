package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"furniquote/quote"
	"furniquote/services"
)

// QuotationSummary renders the totals panel swapped into the quotation page
// after every item change.
func QuotationSummary(q quote.Quotation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="quotation-summary" class="summary" data-items="%d">`, len(q.Items))
		if q.ReferenceNumber != "" {
			fmt.Fprintf(&b, `<p class="summary-ref">%s</p>`, templ.EscapeString(q.ReferenceNumber))
		}
		b.WriteString(`<dl>`)
		summaryLine(&b, "Items", fmt.Sprint(len(q.Items)), "")
		summaryLine(&b, "Total CBM", services.FormatCBM(q.TotalCBM), "")
		summaryLine(&b, "Subtotal", services.FormatCurrency(q.Subtotal), "")
		summaryLine(&b, fmt.Sprintf("VAT %g%%", quote.VATRate*100), services.FormatCurrency(q.VATAmount), "")
		summaryLine(&b, "Total", services.FormatCurrency(q.TotalAmount), "summary-total")
		b.WriteString(`</dl></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func summaryLine(b *strings.Builder, label, value, class string) {
	if class != "" {
		fmt.Fprintf(b, `<div class="%s">`, class)
	} else {
		b.WriteString(`<div>`)
	}
	fmt.Fprintf(b, `<dt>%s</dt><dd>%s</dd></div>`, templ.EscapeString(label), templ.EscapeString(value))
}
