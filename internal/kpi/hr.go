// internal/kpi/hr.go
package kpi

import "time"

func hrAcceptedIn(rec Record, r DateRange) bool {
	return InRange(fieldString(rec, HRFieldAcceptanceDate), r)
}

func hrFee(rec Record) float64 {
	return fieldNumber(rec, HRFieldReferralFee)
}

// ComputeHRKPI aggregates the recommendations and cases tables for the month
// containing now. Screening buckets count distinct applicant names since one
// applicant can hold several recommendations.
func ComputeHRKPI(recommendations, cases []Record, now time.Time) *HRKPI {
	current := CurrentMonthRange(now)
	out := &HRKPI{}

	screening := make(map[string]struct{})
	interviewing := make(map[string]struct{})

	for _, rec := range recommendations {
		if hrAcceptedIn(rec, current) {
			out.Revenue += hrFee(rec)
			out.Contracts++
		}

		status := fieldString(rec, HRFieldStatus)
		manual := fieldString(rec, HRFieldManualStatus)
		applicant := fieldString(rec, HRFieldApplicant)
		if applicant == "" {
			continue
		}
		if status == HRStatusDocumentScreening || manual == HRStatusDocumentScreening {
			screening[applicant] = struct{}{}
		}
		if HRInterviewStatuses.Contains(status) || HRInterviewStatuses.Contains(manual) {
			interviewing[applicant] = struct{}{}
		}
	}

	for _, rec := range cases {
		if fieldString(rec, HRFieldRecommendationDate) != "" {
			continue
		}
		if InRange(DateOnly(fieldString(rec, HRFieldCreated)), current) {
			out.Pipeline.Prospects++
		}
	}

	out.Pipeline.DocumentScreening = len(screening)
	out.Pipeline.Interviewing = len(interviewing)
	out.Pipeline.OfferPending = 0

	out.MonthlyRevenue = monthlySeries(recommendations, Last12Months(now), hrAcceptedIn, hrFee)
	return out
}
