// internal/workers/kpi/sales-kpi/models.go
package saleskpi

import "kpi-dashboard/internal/kpi"

// Output is the body of GET /api/kpi/sales.
type Output = kpi.SalesKPI
