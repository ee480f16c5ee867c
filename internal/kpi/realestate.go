// internal/kpi/realestate.go
package kpi

import "time"

func realestateFees(rec Record) float64 {
	return fieldNumber(rec, RealestateFieldAD) + fieldNumber(rec, RealestateFieldCommission)
}

func realestateConfirmedIn(rec Record, r DateRange) bool {
	return InRange(fieldString(rec, RealestateFieldApplicationDate), r) &&
		!ConfirmedRevenueExcluded.Contains(fieldString(rec, RealestateFieldStatus))
}

// ComputeRealestateKPI aggregates the case management table for the month
// containing now.
func ComputeRealestateKPI(records []Record, now time.Time) *RealestateKPI {
	current := CurrentMonthRange(now)
	out := &RealestateKPI{}

	for _, rec := range records {
		status := fieldString(rec, RealestateFieldStatus)
		applied := InRange(fieldString(rec, RealestateFieldApplicationDate), current)
		fees := realestateFees(rec)

		if applied && !ConfirmedRevenueExcluded.Contains(status) {
			out.Revenue += fees
			out.Contracts++
		}
		if applied && !ProjectedRevenueExcluded.Contains(status) {
			out.ProjectedRevenue += fees
		}
		if applied && !ApplicationExcluded.Contains(status) {
			out.Pipeline.Applications++
		}

		if ProspectStatuses.Contains(status) && fieldString(rec, RealestateFieldRoute) != RoutePhotographyShoot {
			out.Pipeline.Prospects++
		}
		if InRange(fieldString(rec, RealestateFieldRegistrationDate), current) {
			out.Pipeline.NewProspects++
		}
		if status == StatusUnderScreening {
			out.Pipeline.AwaitingReview++
		}
	}

	out.MonthlyRevenue = monthlySeries(records, Last12Months(now), realestateConfirmedIn, realestateFees)
	return out
}
