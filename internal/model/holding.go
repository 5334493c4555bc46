package model

// HoldingRecord is one disclosed position as reported in a 13F information
// table. Values are stated in thousands of dollars. The same issuer can
// appear more than once in a filing (split by share class or option type);
// duplicates are summed during aggregation, never overwritten.
type HoldingRecord struct {
	IssuerName string  `json:"issuer_name"`
	CUSIP      string  `json:"cusip"`
	Value      float64 `json:"value_x1000"`
	Shares     float64 `json:"shares"`
	ShareType  string  `json:"share_type"`
}

// AggregatedHolding is one row of a fund's aggregated portfolio: positions
// grouped by (cusip, issuer name) with value and shares summed, weighted as
// a percentage of the fund's total reported value.
//
// The csv tags define the persisted per-fund table columns.
type AggregatedHolding struct {
	CUSIP      string  `csv:"cusip" json:"cusip"`
	IssuerName string  `csv:"stock_name" json:"stock_name"`
	Value      float64 `csv:"value_x1000" json:"value_x1000"`
	Shares     float64 `csv:"shares" json:"shares"`
	Weight     float64 `csv:"portfolio_weight" json:"portfolio_weight"`
}

// ConsensusRow is one row of the cross-fund consensus report. MatchKey is a
// derived, lossy key (normalized issuer name), not a stable identifier: two
// different securities collide if their names normalize identically.
type ConsensusRow struct {
	MatchKey      string  `csv:"match_id" json:"match_id"`
	StockName     string  `csv:"stock_name" json:"stock_name"`
	GuruCount     int     `csv:"guru_count" json:"guru_count"`
	GuruNames     string  `csv:"guru_names" json:"guru_names"`
	TotalValue    float64 `csv:"total_value" json:"total_value"`
	AvgConviction float64 `csv:"avg_conviction" json:"avg_conviction"`
}
