package services

import (
	"sort"
	"time"

	"furniquote/quote"
)

const (
	trendMonths  = 6
	topListLimit = 5
)

type MonthRevenue struct {
	Month   string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type StatusCount struct {
	Status quote.Status `json:"status"`
	Count  int          `json:"count"`
}

type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MaterialCount struct {
	Name  string             `json:"name"`
	Type  quote.MaterialType `json:"type"`
	Count int                `json:"count"`
}

type CustomerStats struct {
	Name       string  `json:"name"`
	Quotations int     `json:"quotations"`
	Revenue    float64 `json:"revenue"`
}

// Analytics is the dashboard summary. Revenue counts approved quotations
// only; percentage changes compare the current calendar month with the
// previous one.
type Analytics struct {
	TotalRevenue       float64         `json:"totalRevenue"`
	TotalQuotations    int             `json:"totalQuotations"`
	ApprovedQuotations int             `json:"approvedQuotations"`
	PendingQuotations  int             `json:"pendingQuotations"`
	RevenueChange      float64         `json:"revenueChange"`
	QuotationsChange   float64         `json:"quotationsChange"`
	ConversionChange   float64         `json:"conversionChange"`
	AOVChange          float64         `json:"aovChange"`
	TotalCBM           float64         `json:"totalCBM"`
	AvgCBMPerQuotation float64         `json:"avgCBMPerQuotation"`
	TotalItems         int             `json:"totalItems"`
	SentThisMonth      int             `json:"sentThisMonth"`
	ApprovedThisMonth  int             `json:"approvedThisMonth"`
	RejectionRate      float64         `json:"rejectionRate"`
	RevenueTrend       []MonthRevenue  `json:"revenueTrend"`
	StatusBreakdown    []StatusCount   `json:"statusBreakdown"`
	TopProducts        []ProductCount  `json:"topProducts"`
	PopularMaterials   []MaterialCount `json:"popularMaterials"`
	TopCustomers       []CustomerStats `json:"topCustomers"`
}

type monthStats struct {
	count    int
	approved int
	sent     int
	revenue  float64
}

func (m monthStats) conversion() float64 {
	if m.count == 0 {
		return 0
	}
	return float64(m.approved) / float64(m.count) * 100
}

func (m monthStats) aov() float64 {
	if m.approved == 0 {
		return 0
	}
	return m.revenue / float64(m.approved)
}

// percentChange is 100 when growing from zero and 0 when both are zero.
func percentChange(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ComputeAnalytics summarises quotations as of now.
func ComputeAnalytics(quotations []quote.Quotation, now time.Time) Analytics {
	a := Analytics{TotalQuotations: len(quotations)}

	thisMonth := monthStart(now)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	trendStart := thisMonth.AddDate(0, -(trendMonths - 1), 0)

	var cur, prev monthStats
	statusCounts := map[quote.Status]int{}
	trend := make([]float64, trendMonths)
	products := map[string]int{}
	materials := map[string]*MaterialCount{}
	customers := map[string]*CustomerStats{}
	rejected := 0

	for _, q := range quotations {
		approved := q.Status == quote.StatusApproved
		statusCounts[q.Status]++
		a.TotalCBM += q.TotalCBM
		a.TotalItems += len(q.Items)
		if approved {
			a.TotalRevenue += q.TotalAmount
			a.ApprovedQuotations++
		}
		if q.Status == quote.StatusRejected {
			rejected++
		}

		created := monthStart(q.Created.In(now.Location()))
		var bucket *monthStats
		switch {
		case created.Equal(thisMonth):
			bucket = &cur
		case created.Equal(lastMonth):
			bucket = &prev
		}
		if bucket != nil {
			bucket.count++
			if approved {
				bucket.approved++
				bucket.revenue += q.TotalAmount
			}
			if q.Status == quote.StatusSent {
				bucket.sent++
			}
		}
		if approved && !created.Before(trendStart) && !created.After(thisMonth) {
			idx := (created.Year()-trendStart.Year())*12 + int(created.Month()-trendStart.Month())
			trend[idx] += q.TotalAmount
		}

		for _, it := range q.Items {
			name := it.Product.Name
			if name == "" {
				name = "Unknown"
			}
			products[name] += it.Quantity
			for _, ann := range it.Annotations {
				mname := ann.Material.Name
				if mname == "" {
					mname = "Unknown"
				}
				mc, ok := materials[mname]
				if !ok {
					mtype := ann.Material.Type
					if mtype == "" {
						mtype = quote.Fabric
					}
					mc = &MaterialCount{Name: mname, Type: mtype}
					materials[mname] = mc
				}
				mc.Count++
			}
		}

		cs, ok := customers[q.Customer.Name]
		if !ok {
			cs = &CustomerStats{Name: q.Customer.Name}
			customers[q.Customer.Name] = cs
		}
		cs.Quotations++
		if approved {
			cs.Revenue += q.TotalAmount
		}
	}

	a.PendingQuotations = statusCounts[quote.StatusDraft]
	a.RevenueChange = percentChange(cur.revenue, prev.revenue)
	a.QuotationsChange = percentChange(float64(cur.count), float64(prev.count))
	if prevConv := prev.conversion(); prevConv > 0 {
		a.ConversionChange = cur.conversion() - prevConv
	} else {
		a.ConversionChange = cur.conversion()
	}
	a.AOVChange = percentChange(cur.aov(), prev.aov())
	if a.TotalQuotations > 0 {
		a.AvgCBMPerQuotation = a.TotalCBM / float64(a.TotalQuotations)
		a.RejectionRate = float64(rejected) / float64(a.TotalQuotations) * 100
	}
	a.SentThisMonth = cur.sent
	a.ApprovedThisMonth = cur.approved

	a.RevenueTrend = make([]MonthRevenue, trendMonths)
	for i := range trend {
		a.RevenueTrend[i] = MonthRevenue{
			Month:   trendStart.AddDate(0, i, 0).Format("Jan"),
			Revenue: trend[i],
		}
	}

	a.StatusBreakdown = make([]StatusCount, len(quote.Statuses))
	for i, s := range quote.Statuses {
		a.StatusBreakdown[i] = StatusCount{Status: s, Count: statusCounts[s]}
	}

	a.TopProducts = make([]ProductCount, 0, len(products))
	for name, n := range products {
		a.TopProducts = append(a.TopProducts, ProductCount{Name: name, Count: n})
	}
	sort.Slice(a.TopProducts, func(i, j int) bool {
		pi, pj := a.TopProducts[i], a.TopProducts[j]
		if pi.Count != pj.Count {
			return pi.Count > pj.Count
		}
		return pi.Name < pj.Name
	})
	a.TopProducts = limit(a.TopProducts, topListLimit)

	a.PopularMaterials = make([]MaterialCount, 0, len(materials))
	for _, mc := range materials {
		a.PopularMaterials = append(a.PopularMaterials, *mc)
	}
	sort.Slice(a.PopularMaterials, func(i, j int) bool {
		mi, mj := a.PopularMaterials[i], a.PopularMaterials[j]
		if mi.Count != mj.Count {
			return mi.Count > mj.Count
		}
		return mi.Name < mj.Name
	})
	a.PopularMaterials = limit(a.PopularMaterials, topListLimit)

	a.TopCustomers = make([]CustomerStats, 0, len(customers))
	for _, cs := range customers {
		a.TopCustomers = append(a.TopCustomers, *cs)
	}
	sort.Slice(a.TopCustomers, func(i, j int) bool {
		ci, cj := a.TopCustomers[i], a.TopCustomers[j]
		if ci.Revenue != cj.Revenue {
			return ci.Revenue > cj.Revenue
		}
		return ci.Name < cj.Name
	})
	a.TopCustomers = limit(a.TopCustomers, topListLimit)

	return a
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Analytics loads every quotation and summarises it.
func (s *Store) Analytics() (Analytics, error) {
	quotations, err := s.LoadQuotations()
	if err != nil {
		return Analytics{}, err
	}
	return ComputeAnalytics(quotations, s.now()), nil
}
