// internal/workers/kpi/hr-kpi/models.go
package hrkpi

import "kpi-dashboard/internal/kpi"

type Output = kpi.HRKPI
