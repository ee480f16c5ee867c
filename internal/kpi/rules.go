// internal/kpi/rules.go
package kpi

// Field labels and status values as they appear in the record stores.
// Rule changes should be edits to this file.

// Sales: 面談 table.
const (
	SalesTable = "面談"

	SalesFieldOutcome      = "面談結果"
	SalesFieldPaymentDate  = "初回着金日"
	SalesFieldAmount       = "成約金額(税抜)"
	SalesFieldMeetingDate  = "面談予約日"
	SalesOutcomePaid       = "成約後着金"
	SalesOutcomeConsider   = "検討中"
	SalesOutcomeVerbalDeal = "口頭成約"
)

// SalesFields is the projection requested from the meetings table.
var SalesFields = []string{SalesFieldOutcome, SalesFieldPaymentDate, SalesFieldAmount, SalesFieldMeetingDate}

// Real estate: 案件管理 table.
const (
	RealestateTable = "案件管理"

	RealestateFieldStatus           = "ステータス"
	RealestateFieldApplicationDate  = "最終申込日"
	RealestateFieldRegistrationDate = "案件登録日"
	RealestateFieldAD               = "AD(税抜)"
	RealestateFieldCommission       = "仲介手数料(税抜)"
	RealestateFieldRoute            = "獲得経路"

	StatusRegistered                = "案件登録"
	StatusViewed                    = "内見"
	StatusUnderScreening            = "申込済み_審査中"
	StatusCancelledAfterRegistering = "案件登録後キャンセル"
	StatusCancelledAfterViewing     = "内見登録後キャンセル"
	StatusCancelledAfterApplying    = "申込後キャンセル"
	StatusScreeningRejected         = "審査落ち"

	// RoutePhotographyShoot marks cases sourced from a photo shoot; they are
	// never sales prospects.
	RoutePhotographyShoot = "撮影"
)

// RealestateFields is the projection requested from the case management table.
var RealestateFields = []string{
	RealestateFieldStatus,
	RealestateFieldApplicationDate,
	RealestateFieldRegistrationDate,
	RealestateFieldAD,
	RealestateFieldCommission,
	RealestateFieldRoute,
}

// StatusSet is a set of status labels.
type StatusSet map[string]struct{}

func newStatusSet(statuses ...string) StatusSet {
	s := make(StatusSet, len(statuses))
	for _, st := range statuses {
		s[st] = struct{}{}
	}
	return s
}

// Contains reports whether status is in the set.
func (s StatusSet) Contains(status string) bool {
	_, ok := s[status]
	return ok
}

// The real estate sets overlap but are not interchangeable.
var (
	// ConfirmedRevenueExcluded: what closed this month.
	ConfirmedRevenueExcluded = newStatusSet(
		StatusRegistered,
		StatusViewed,
		StatusUnderScreening,
		StatusCancelledAfterRegistering,
		StatusCancelledAfterViewing,
		StatusCancelledAfterApplying,
		StatusScreeningRejected,
	)

	// ProjectedRevenueExcluded: what will likely close, counting cases still
	// under screening.
	ProjectedRevenueExcluded = newStatusSet(
		StatusRegistered,
		StatusViewed,
		StatusCancelledAfterRegistering,
		StatusCancelledAfterViewing,
		StatusCancelledAfterApplying,
		StatusScreeningRejected,
	)

	// ApplicationExcluded: what was submitted this month, whatever the outcome.
	ApplicationExcluded = newStatusSet(
		StatusRegistered,
		StatusViewed,
		StatusCancelledAfterRegistering,
		StatusCancelledAfterViewing,
	)

	// ProspectStatuses are the statuses counted as open prospects.
	ProspectStatuses = newStatusSet(
		StatusRegistered,
		StatusViewed,
		StatusCancelledAfterViewing,
		StatusCancelledAfterApplying,
		StatusScreeningRejected,
	)
)

// HR: 推薦一覧 and 案件 tables.
const (
	HRRecommendationTable = "推薦一覧"
	HRCaseTable           = "案件"

	HRFieldAcceptanceDate = "内定承諾日"
	HRFieldReferralFee    = "紹介料(税抜)"
	HRFieldStatus         = "選考状況"
	HRFieldManualStatus   = "選考状況(手動)"
	HRFieldApplicant      = "応募者名"

	HRFieldRecommendationDate = "推薦日"
	HRFieldCreated            = "Created"

	HRStatusDocumentScreening = "書類選考"
)

var (
	HRRecommendationFields = []string{HRFieldAcceptanceDate, HRFieldReferralFee, HRFieldStatus, HRFieldManualStatus, HRFieldApplicant}
	HRCaseFields           = []string{HRFieldRecommendationDate, HRFieldCreated}

	HRInterviewStatuses = newStatusSet("一次面接", "二次面接", "最終面接")
)
