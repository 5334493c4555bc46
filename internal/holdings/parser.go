// Package holdings parses 13F information tables into canonical holding
// records and aggregates them into weighted per-fund portfolios.
package holdings

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/investor-alpha/holdings-cli/internal/fetcher"
	"github.com/investor-alpha/holdings-cli/internal/model"
)

// infoTable is the single field-mapping table between the EDGAR 13F tag
// vocabulary and the canonical record fields. Tag matching is on the
// namespace-local name only; the one level of nesting under shrsOrPrnAmt is
// flattened into the record. Numeric fields are decoded as text so that a
// blank or malformed value degrades to 0 for that record instead of failing
// the whole document.
type infoTable struct {
	NameOfIssuer string `xml:"nameOfIssuer"`
	CUSIP        string `xml:"cusip"`
	Value        string `xml:"value"`
	Shares       string `xml:"shrsOrPrnAmt>sshPrnamt"`
	ShareType    string `xml:"shrsOrPrnAmt>sshPrnamtType"`
}

// Parser downloads and parses holdings-table documents.
type Parser struct {
	fetcher fetcher.Fetcher
}

// NewParser creates a Parser over the given fetcher.
func NewParser(f fetcher.Fetcher) *Parser {
	return &Parser{fetcher: f}
}

// Parse downloads the document at url and returns its holding records.
//
// Failures are soft: any network, parse, or structural error yields an empty
// result, logged, so the pipeline can continue with the next fund. Records
// with missing names or identifiers are kept with blank fields; downstream
// aggregation tolerates blank keys.
func (p *Parser) Parse(ctx context.Context, url string) []model.HoldingRecord {
	log := zap.L().With(zap.String("url", url))

	body, err := p.fetcher.Download(ctx, url)
	if err != nil {
		log.Warn("holdings document download failed", zap.Error(err))
		return nil
	}
	defer body.Close() //nolint:errcheck

	tables, err := fetcher.DecodeXMLElements[infoTable](body, "infoTable")
	if err != nil {
		log.Warn("holdings document parse failed", zap.Error(err))
		return nil
	}

	records := make([]model.HoldingRecord, 0, len(tables))
	for _, t := range tables {
		records = append(records, model.HoldingRecord{
			IssuerName: strings.TrimSpace(t.NameOfIssuer),
			CUSIP:      strings.TrimSpace(t.CUSIP),
			Value:      lenientFloat(t.Value),
			Shares:     lenientFloat(t.Shares),
			ShareType:  strings.TrimSpace(t.ShareType),
		})
	}

	return records
}

// lenientFloat parses a reported numeric field, defaulting to 0 on anything
// unparseable. Thousands separators appear in some hand-assembled filings.
func lenientFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
