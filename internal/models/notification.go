package models

// KPIUpdateType is the message type pushed after a deal changes
const KPIUpdateType = "kpi_update"

// KPIUpdate is the push payload sent after a mutation that could change a deal's financials
type KPIUpdate struct {
	Type   string   `json:"type"`
	DealID int64    `json:"dealId"`
	KPIs   DealKPIs `json:"kpis"`
}
