package claim

// SummaryStats is the dashboard headline rollup. Sums over an empty table
// are zero, never null.
type SummaryStats struct {
	TotalClaims              int64   `json:"total_claims"`
	TotalBillAmount          float64 `json:"total_bill_amount"`
	TotalApprovedAmount      float64 `json:"total_approved_amount"`
	TotalSettledAmount       float64 `json:"total_settled_amount"`
	TotalTDS                 float64 `json:"total_tds"`
	TotalConsumableDeduction float64 `json:"total_consumable_deduction"`
	TotalPaidByPatient       float64 `json:"total_paid_by_patient"`

	// Claims with no settlement date on record. The business treats
	// unsettled and rejected as one pending bucket.
	PendingClaims int64 `json:"pending_claims"`
}

// MonthlyStats is one month-wise group, keyed by the derived YYYY-MM month.
type MonthlyStats struct {
	Month         string  `json:"month"`
	ClaimCount    int64   `json:"claim_count"`
	TotalBill     float64 `json:"total_bill"`
	TotalApproved float64 `json:"total_approved"`
	TotalSettled  float64 `json:"total_settled"`
	TotalTDS      float64 `json:"total_tds"`
}

// CompanyEntry is one row of a company ranking.
type CompanyEntry struct {
	Name          string  `json:"name"`
	ClaimCount    int64   `json:"claim_count"`
	TotalApproved float64 `json:"total_approved"`
	TotalSettled  float64 `json:"total_settled"`
}

// CompanyStats holds both top-10 rankings: by TPA and by parent insurer.
type CompanyStats struct {
	TPA       []CompanyEntry `json:"tpa"`
	Insurance []CompanyEntry `json:"insurance"`
}
