// internal/workers/kpi/realestate-kpi/models.go
package realestatekpi

import "kpi-dashboard/internal/kpi"

type Output = kpi.RealestateKPI
