package model

// Fund identifies one investment manager in the configured universe.
type Fund struct {
	// Name is the display name used in reports and output filenames.
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	// CIK is the SEC Central Index Key, zero-padded to 10 digits.
	CIK string `json:"cik" yaml:"cik" mapstructure:"cik"`
}

// FilingMetadata describes the most recent filing of a given form type
// for one CIK, with the URLs derived from its accession number.
type FilingMetadata struct {
	CIK             string `json:"cik"`
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	PrimaryDocURL   string `json:"primary_doc_url"`
	IndexJSONURL    string `json:"index_json_url"`
}
