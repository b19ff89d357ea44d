package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniquote/quote"
)

func analyticsQuotation(customer string, status quote.Status, total float64, created time.Time, items ...quote.Item) quote.Quotation {
	q := quote.Quotation{
		Customer: quote.CustomerSnapshot{Name: customer},
		Status:   status,
		Items:    items,
		Created:  created,
	}
	q.TotalAmount = total
	q.TotalCBM = 1
	return q
}

func analyticsItem(product string, qty int, materials ...string) quote.Item {
	it := quote.Item{Product: quote.ProductSnapshot{Name: product}, Quantity: qty}
	for _, m := range materials {
		it.Annotations = append(it.Annotations, quote.Annotation{
			Material: quote.MaterialSnapshot{Name: m, Type: quote.Wood},
		})
	}
	return it
}

func TestComputeAnalytics(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	march := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2024, time.October, 10, 0, 0, 0, 0, time.UTC)
	old := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	qs := []quote.Quotation{
		analyticsQuotation("Acme", quote.StatusApproved, 300, march, analyticsItem("Sofa", 2, "Oak", "Oak")),
		analyticsQuotation("Acme", quote.StatusSent, 50, march, analyticsItem("Chair", 4, "Walnut")),
		analyticsQuotation("Beta", quote.StatusApproved, 200, feb, analyticsItem("Sofa", 1)),
		analyticsQuotation("Beta", quote.StatusRejected, 80, feb),
		analyticsQuotation("Gamma", quote.StatusApproved, 100, oct),
		analyticsQuotation("Delta", quote.StatusDraft, 10, old),
	}

	a := ComputeAnalytics(qs, now)

	assert.Equal(t, 6, a.TotalQuotations)
	assert.Equal(t, 3, a.ApprovedQuotations)
	assert.Equal(t, 1, a.PendingQuotations)
	assert.InDelta(t, 600, a.TotalRevenue, epsilon)
	assert.InDelta(t, 50, a.RevenueChange, epsilon)
	assert.InDelta(t, 0, a.QuotationsChange, epsilon)
	assert.InDelta(t, 0, a.ConversionChange, epsilon)
	assert.InDelta(t, 50, a.AOVChange, epsilon)
	assert.InDelta(t, 6, a.TotalCBM, epsilon)
	assert.InDelta(t, 1, a.AvgCBMPerQuotation, epsilon)
	assert.Equal(t, 3, a.TotalItems)
	assert.Equal(t, 1, a.SentThisMonth)
	assert.Equal(t, 1, a.ApprovedThisMonth)
	assert.InDelta(t, 100.0/6, a.RejectionRate, epsilon)

	require.Len(t, a.RevenueTrend, 6)
	assert.Equal(t, "Oct", a.RevenueTrend[0].Month)
	assert.InDelta(t, 100, a.RevenueTrend[0].Revenue, epsilon)
	assert.Equal(t, "Feb", a.RevenueTrend[4].Month)
	assert.InDelta(t, 200, a.RevenueTrend[4].Revenue, epsilon)
	assert.Equal(t, "Mar", a.RevenueTrend[5].Month)
	assert.InDelta(t, 300, a.RevenueTrend[5].Revenue, epsilon)

	assert.Equal(t, []StatusCount{
		{quote.StatusDraft, 1}, {quote.StatusSent, 1}, {quote.StatusApproved, 3}, {quote.StatusRejected, 1},
	}, a.StatusBreakdown)

	assert.Equal(t, []ProductCount{{"Chair", 4}, {"Sofa", 3}}, a.TopProducts)
	assert.Equal(t, []MaterialCount{{"Oak", quote.Wood, 2}, {"Walnut", quote.Wood, 1}}, a.PopularMaterials)

	require.Len(t, a.TopCustomers, 4)
	assert.Equal(t, CustomerStats{"Acme", 2, 300}, a.TopCustomers[0])
	assert.Equal(t, CustomerStats{"Beta", 2, 200}, a.TopCustomers[1])
}

func TestComputeAnalytics_Empty(t *testing.T) {
	a := ComputeAnalytics(nil, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, a.TotalRevenue)
	assert.Zero(t, a.RejectionRate)
	assert.Empty(t, a.TopProducts)
	require.Len(t, a.RevenueTrend, 6)
	assert.Equal(t, "Aug", a.RevenueTrend[0].Month)
	assert.Equal(t, "Jan", a.RevenueTrend[5].Month)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 100, percentChange(5, 0), epsilon)
	assert.InDelta(t, 0, percentChange(0, 0), epsilon)
	assert.InDelta(t, -50, percentChange(5, 10), epsilon)
}
