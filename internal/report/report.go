// Package report persists per-fund and consensus tables as CSV files and
// reads them back for cross-fund analysis.
package report

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/investor-alpha/holdings-cli/internal/consensus"
	"github.com/investor-alpha/holdings-cli/internal/model"
)

// FundFileName builds the per-fund table filename: spaces become
// underscores, parentheses are stripped, and the ISO filing date is
// appended. Example: "Pershing Square (Ackman)" filed 2024-11-14 becomes
// "Pershing_Square_Ackman_2024-11-14.csv".
func FundFileName(fundName, filingDate string) string {
	safe := strings.NewReplacer(" ", "_", "(", "", ")", "").Replace(fundName)
	return safe + "_" + filingDate + ".csv"
}

// FundNameFromFile recovers the fund display name from a per-fund table
// filename by cutting at the date suffix and mapping underscores back to
// spaces. Stripped parentheses are not recoverable; the name is used as an
// owner label only, so the lossy round trip is acceptable.
func FundNameFromFile(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.Index(name, "_20"); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// WriteFundTable writes a fund's aggregated portfolio to dir and returns the
// full path. The write is atomic: the table lands under a temp name first
// and is renamed into place, so a crashed run leaves no partial file.
func WriteFundTable(dir, fundName, filingDate string, rows []model.AggregatedHolding) (string, error) {
	path := filepath.Join(dir, FundFileName(fundName, filingDate))
	if err := writeCSV(path, rows); err != nil {
		return "", eris.Wrapf(err, "report: write fund table for %s", fundName)
	}
	return path, nil
}

// WriteConsensusTable writes the consensus report to path, overwriting any
// previous run's output.
func WriteConsensusTable(path string, rows []model.ConsensusRow) error {
	if err := writeCSV(path, rows); err != nil {
		return eris.Wrap(err, "report: write consensus table")
	}
	return nil
}

func writeCSV[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "marshal csv")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "rename into place")
	}
	return nil
}

// ReadFundTable reads one per-fund CSV back into aggregated holdings.
func ReadFundTable(path string) ([]model.AggregatedHolding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read fund table %s", path)
	}

	var rows []model.AggregatedHolding
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "report: unmarshal fund table %s", path)
	}
	return rows, nil
}

// LoadFundTables reads every per-fund CSV in dir, in lexical filename order,
// tagged with the fund name recovered from each filename.
func LoadFundTables(dir string) ([]consensus.FundTable, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, eris.Wrap(err, "report: glob fund tables")
	}
	sort.Strings(matches)

	tables := make([]consensus.FundTable, 0, len(matches))
	for _, path := range matches {
		rows, err := ReadFundTable(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, consensus.FundTable{
			FundName: FundNameFromFile(path),
			Rows:     rows,
		})
	}
	return tables, nil
}
