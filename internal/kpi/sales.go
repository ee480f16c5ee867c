// internal/kpi/sales.go
package kpi

import "time"

func salesPaidIn(rec Record, r DateRange) bool {
	return fieldString(rec, SalesFieldOutcome) == SalesOutcomePaid &&
		InRange(fieldString(rec, SalesFieldPaymentDate), r)
}

func salesAmount(rec Record) float64 {
	return fieldNumber(rec, SalesFieldAmount)
}

// ComputeSalesKPI aggregates the meetings table for the month containing now.
func ComputeSalesKPI(records []Record, now time.Time) *SalesKPI {
	current := CurrentMonthRange(now)
	out := &SalesKPI{}

	for _, rec := range records {
		outcome := fieldString(rec, SalesFieldOutcome)

		if salesPaidIn(rec, current) {
			out.Revenue += salesAmount(rec)
			out.Deals++
		}

		if fieldBlank(rec, SalesFieldOutcome) && InRange(fieldString(rec, SalesFieldMeetingDate), current) {
			out.Pipeline.Pending++
		}
		switch outcome {
		case SalesOutcomeConsider:
			out.Pipeline.Considering++
		case SalesOutcomeVerbalDeal:
			out.Pipeline.WaitingPayment++
		}
	}

	out.MonthlyRevenue = monthlySeries(records, Last12Months(now), salesPaidIn, salesAmount)
	return out
}
