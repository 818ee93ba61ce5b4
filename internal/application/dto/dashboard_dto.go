package dto

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	Date string `json:"date"` // "hoy" en la zona del ledger

	TotalItems   int   `json:"total_items"`
	EntriesToday int64 `json:"entries_today"` // suma de cantidades
	ExitsToday   int64 `json:"exits_today"`

	LowStockCount int               `json:"low_stock_count"`
	LowStock      []LowStockItemDTO `json:"low_stock"` // top-N, menor cantidad primero

	RecentMovements []MovementDTO `json:"recent_movements"`
}
