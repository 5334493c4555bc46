package edgar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investor-alpha/holdings-cli/internal/fetcher"
	"github.com/investor-alpha/holdings-cli/internal/model"
)

const testCIK = "0001067983"

func newTestClient(t *testing.T, handler http.Handler) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1})
	return NewClient(f, Options{DataBaseURL: srv.URL, ArchivesBaseURL: srv.URL}), srv.URL
}

func submissionsHandler(body string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions/CIK"+testCIK+".json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})
	return mux
}

func TestLatestFiling_FirstMatchWins(t *testing.T) {
	// The arrays are most-recent-first; the 10-Q is skipped, the first
	// 13F-HR is taken, and the older 13F-HR never considered.
	c, _ := newTestClient(t, submissionsHandler(`{
		"filings": {"recent": {
			"accessionNumber": ["0001-24-000003", "0001-24-000002", "0001-24-000001"],
			"filingDate": ["2024-11-20", "2024-11-14", "2024-08-14"],
			"form": ["10-Q", "13F-HR", "13F-HR"],
			"primaryDocument": ["tenq.htm", "primary_doc.xml", "primary_doc.xml"]
		}}
	}`))

	meta, err := c.LatestFiling(context.Background(), testCIK, "13F-HR")
	require.NoError(t, err)

	assert.Equal(t, "0001-24-000002", meta.AccessionNumber)
	assert.Equal(t, "2024-11-14", meta.FilingDate)
	assert.Contains(t, meta.PrimaryDocURL, "/Archives/edgar/data/"+testCIK+"/000124000002/primary_doc.xml")
	assert.Contains(t, meta.IndexJSONURL, "/Archives/edgar/data/"+testCIK+"/000124000002/index.json")
}

func TestLatestFiling_ExactFormMatch(t *testing.T) {
	// Amendments (13F-HR/A) must not match the base form type.
	c, _ := newTestClient(t, submissionsHandler(`{
		"filings": {"recent": {
			"accessionNumber": ["0001-24-000002"],
			"filingDate": ["2024-11-14"],
			"form": ["13F-HR/A"],
			"primaryDocument": ["primary_doc.xml"]
		}}
	}`))

	_, err := c.LatestFiling(context.Background(), testCIK, "13F-HR")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestFiling_EmptyHistory(t *testing.T) {
	c, _ := newTestClient(t, submissionsHandler(`{"filings": {"recent": {}}}`))

	_, err := c.LatestFiling(context.Background(), testCIK, "13F-HR")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestFiling_HTTPError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.LatestFiling(context.Background(), testCIK, "13F-HR")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func indexHandler(body string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/Archives/edgar/data/"+testCIK+"/000124000002/index.json",
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
	return mux
}

func testMeta(baseURL string) *model.FilingMetadata {
	folder := baseURL + "/Archives/edgar/data/" + testCIK + "/000124000002/"
	return &model.FilingMetadata{
		CIK:             testCIK,
		AccessionNumber: "0001-24-000002",
		FilingDate:      "2024-11-14",
		PrimaryDocURL:   folder + "primary_doc.xml",
		IndexJSONURL:    folder + "index.json",
	}
}

func TestResolveHoldingsDocument_PicksSiblingXML(t *testing.T) {
	c, base := newTestClient(t, indexHandler(`{"directory": {"item": [
		{"name": "primary_doc.xml"},
		{"name": "0001-24-000002-index.htm"},
		{"name": "infotable.xml"}
	]}}`))

	url, err := c.ResolveHoldingsDocument(context.Background(), testMeta(base))
	require.NoError(t, err)
	assert.Equal(t, base+"/Archives/edgar/data/"+testCIK+"/000124000002/infotable.xml", url)
}

func TestResolveHoldingsDocument_FallsBackToPrimaryDoc(t *testing.T) {
	// No sibling XML: the filing in-lines its table in the cover document.
	c, base := newTestClient(t, indexHandler(`{"directory": {"item": [
		{"name": "primary_doc.xml"},
		{"name": "cover.htm"}
	]}}`))

	url, err := c.ResolveHoldingsDocument(context.Background(), testMeta(base))
	require.NoError(t, err)
	assert.Equal(t, testMeta(base).PrimaryDocURL, url)
}

func TestResolveHoldingsDocument_IndexUnavailable(t *testing.T) {
	c, base := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.ResolveHoldingsDocument(context.Background(), testMeta(base))
	assert.Error(t, err)
}
