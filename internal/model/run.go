package model

import "time"

// RunStatus represents the outcome of one per-fund pipeline iteration.
type RunStatus string

const (
	RunStatusOK      RunStatus = "ok"
	RunStatusSkipped RunStatus = "skipped"
)

// Skip reasons recorded on skipped runs.
const (
	SkipNoFiling      = "no_filing"
	SkipNoDocument    = "no_document"
	SkipEmptyHoldings = "empty_holdings"
	SkipZeroPortfolio = "zero_portfolio"
)

// PipelineRun is the persisted record of one per-fund pipeline iteration.
type PipelineRun struct {
	ID         string    `json:"id"`
	Fund       string    `json:"fund"`
	CIK        string    `json:"cik"`
	Status     RunStatus `json:"status"`
	SkipReason string    `json:"skip_reason,omitempty"`
	FilingDate string    `json:"filing_date,omitempty"`
	Holdings   int       `json:"holdings"`
	OutputPath string    `json:"output_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
