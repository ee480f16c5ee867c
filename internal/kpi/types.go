// internal/kpi/types.go
package kpi

// MonthlyRevenue is one point of the 12-month revenue series.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type SalesPipeline struct {
	Pending        int `json:"pending"`        // meeting booked this month, no outcome yet
	Considering    int `json:"considering"`    // prospect is considering
	WaitingPayment int `json:"waitingPayment"` // verbally contracted, awaiting first payment
}

type SalesKPI struct {
	Revenue        float64          `json:"revenue"`
	Deals          int              `json:"deals"`
	Pipeline       SalesPipeline    `json:"pipeline"`
	MonthlyRevenue []MonthlyRevenue `json:"monthlyRevenue"`
}

type RealestatePipeline struct {
	Prospects      int `json:"prospects"`
	NewProspects   int `json:"newProspects"`
	Applications   int `json:"applications"`
	AwaitingReview int `json:"awaitingReview"`
}

type RealestateKPI struct {
	Revenue          float64            `json:"revenue"`
	ProjectedRevenue float64            `json:"projectedRevenue"`
	Contracts        int                `json:"contracts"`
	Pipeline         RealestatePipeline `json:"pipeline"`
	MonthlyRevenue   []MonthlyRevenue   `json:"monthlyRevenue"`
}

type HRPipeline struct {
	Prospects         int `json:"prospects"`
	DocumentScreening int `json:"documentScreening"`
	Interviewing      int `json:"interviewing"`
	// OfferPending is always 0: no source field records pending offers.
	OfferPending int `json:"offerPending"`
}

type HRKPI struct {
	Revenue        float64          `json:"revenue"`
	Contracts      int              `json:"contracts"`
	Pipeline       HRPipeline       `json:"pipeline"`
	MonthlyRevenue []MonthlyRevenue `json:"monthlyRevenue"`
}

// Summary groups the three domain results for the dashboard overview.
type Summary struct {
	Sales      *SalesKPI      `json:"sales"`
	Realestate *RealestateKPI `json:"realestate"`
	HR         *HRKPI         `json:"hr"`
}

// monthlySeries sums amount(rec) for every record accepted by inMonth, once per
// month of the trailing 12-month window.
func monthlySeries(records []Record, months []MonthDescriptor, inMonth func(Record, DateRange) bool, amount func(Record) float64) []MonthlyRevenue {
	series := make([]MonthlyRevenue, 0, len(months))
	for _, m := range months {
		r := m.Range()
		total := 0.0
		for _, rec := range records {
			if inMonth(rec, r) {
				total += amount(rec)
			}
		}
		series = append(series, MonthlyRevenue{Month: m.Label, Revenue: total})
	}
	return series
}
