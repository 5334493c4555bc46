// Package edgar locates filings on SEC EDGAR: it walks a CIK's submission
// history for the latest filing of a form type and resolves the URL of the
// machine-readable holdings table inside that filing.
package edgar

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/investor-alpha/holdings-cli/internal/fetcher"
	"github.com/investor-alpha/holdings-cli/internal/model"
)

// ErrNotFound indicates that no filing of the requested form type exists for
// the CIK, or that a filing's holdings document could not be located.
var ErrNotFound = eris.New("edgar: not found")

// Options configures an EDGAR client.
type Options struct {
	// DataBaseURL serves submission histories (default https://data.sec.gov).
	DataBaseURL string
	// ArchivesBaseURL serves filing folders (default https://www.sec.gov).
	ArchivesBaseURL string
}

// Client fetches filing metadata from EDGAR.
type Client struct {
	fetcher      fetcher.Fetcher
	dataBase     string
	archivesBase string
}

// NewClient creates an EDGAR client over the given fetcher.
func NewClient(f fetcher.Fetcher, opts Options) *Client {
	if opts.DataBaseURL == "" {
		opts.DataBaseURL = "https://data.sec.gov"
	}
	if opts.ArchivesBaseURL == "" {
		opts.ArchivesBaseURL = "https://www.sec.gov"
	}
	return &Client{
		fetcher:      f,
		dataBase:     strings.TrimSuffix(opts.DataBaseURL, "/"),
		archivesBase: strings.TrimSuffix(opts.ArchivesBaseURL, "/"),
	}
}

// submissionHistory is the shape of data.sec.gov/submissions/CIK{cik}.json.
// The recent filings are parallel arrays indexed in lockstep by filing,
// most recent first.
type submissionHistory struct {
	Filings struct {
		Recent filingList `json:"recent"`
	} `json:"filings"`
}

type filingList struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// directoryIndex is the shape of a filing folder's index.json.
type directoryIndex struct {
	Directory struct {
		Item []struct {
			Name string `json:"name"`
		} `json:"item"`
	} `json:"directory"`
}

// LatestFiling returns metadata for the most recent filing of formType by the
// given CIK. The submission history is scanned in its native order, which is
// most-recent-first, and the first exact form-type match wins. Returns
// ErrNotFound when the history is empty or nothing matches.
func (c *Client) LatestFiling(ctx context.Context, cik, formType string) (*model.FilingMetadata, error) {
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataBase, cik)

	body, err := c.fetcher.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "edgar: fetch submissions for CIK %s", cik)
	}
	defer body.Close() //nolint:errcheck

	history, err := fetcher.DecodeJSONObject[submissionHistory](body)
	if err != nil {
		return nil, eris.Wrapf(err, "edgar: decode submissions for CIK %s", cik)
	}

	recent := history.Filings.Recent
	if len(recent.Form) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "no filing history for CIK %s", cik)
	}

	for i, form := range recent.Form {
		if form != formType {
			continue
		}

		accession := safeIndex(recent.AccessionNumber, i)
		primaryDoc := safeIndex(recent.PrimaryDocument, i)
		accNoDashes := strings.ReplaceAll(accession, "-", "")

		return &model.FilingMetadata{
			CIK:             cik,
			AccessionNumber: accession,
			FilingDate:      safeIndex(recent.FilingDate, i),
			PrimaryDocURL:   fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", c.archivesBase, cik, accNoDashes, primaryDoc),
			IndexJSONURL:    fmt.Sprintf("%s/Archives/edgar/data/%s/%s/index.json", c.archivesBase, cik, accNoDashes),
		}, nil
	}

	return nil, eris.Wrapf(ErrNotFound, "no %s filing for CIK %s", formType, cik)
}

// ResolveHoldingsDocument returns the URL of the filing's holdings-table XML.
//
// The primary document of a 13F filing is usually just a cover page; the
// information table lives in a sibling XML file. There is no authoritative
// type metadata in the folder index, so this is a filename heuristic: the
// first listed .xml file that is not the primary document wins. When no such
// file exists the primary document URL itself is returned, because a filing
// occasionally in-lines the holdings table in the cover document.
func (c *Client) ResolveHoldingsDocument(ctx context.Context, meta *model.FilingMetadata) (string, error) {
	body, err := c.fetcher.Download(ctx, meta.IndexJSONURL)
	if err != nil {
		return "", eris.Wrapf(err, "edgar: fetch directory index for %s", meta.AccessionNumber)
	}
	defer body.Close() //nolint:errcheck

	index, err := fetcher.DecodeJSONObject[directoryIndex](body)
	if err != nil {
		return "", eris.Wrapf(err, "edgar: decode directory index for %s", meta.AccessionNumber)
	}

	primaryDoc := meta.PrimaryDocURL[strings.LastIndex(meta.PrimaryDocURL, "/")+1:]
	baseURL := strings.TrimSuffix(meta.IndexJSONURL, "index.json")

	for _, item := range index.Directory.Item {
		name := item.Name
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		if name == primaryDoc || strings.Contains(name, "primary_doc") {
			continue
		}
		return baseURL + name, nil
	}

	zap.L().Debug("no separate information table, falling back to primary document",
		zap.String("accession", meta.AccessionNumber),
	)
	return meta.PrimaryDocURL, nil
}

// safeIndex returns the string at index i, or empty string if out of bounds.
// The parallel arrays in a submission history are expected to be the same
// length, but a ragged response must not panic the scan.
func safeIndex(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
