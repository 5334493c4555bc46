// Package consensus aggregates per-fund portfolios across funds, clustering
// positions by a normalized issuer-name key and ranking by how many funds
// hold each name.
package consensus

import (
	"regexp"
	"strings"
)

// suffixRes strips common legal suffixes as whole words only, so "INCLINE"
// survives while "INCLINE CORP" loses its "CORP".
var suffixRes = []*regexp.Regexp{
	regexp.MustCompile(`\bINC\b`),
	regexp.MustCompile(`\bCORP\b`),
	regexp.MustCompile(`\bLTD\b`),
	regexp.MustCompile(`\bPLC\b`),
	regexp.MustCompile(`\bCO\b`),
	regexp.MustCompile(`\bCLASS A\b`),
	regexp.MustCompile(`\bCLASS B\b`),
}

var punctRe = regexp.MustCompile(`[^\w\s]`)

// NormalizeName derives the lossy matching key used to cluster issuer names
// across funds: uppercase, whole-word legal suffixes removed, punctuation
// stripped, whitespace collapsed. Idempotent; empty input yields "".
//
// Two different securities whose names normalize identically will collide
// under this key. That is an accepted limitation of name-based matching, not
// something callers should paper over.
func NormalizeName(name string) string {
	clean := strings.ToUpper(name)

	for _, re := range suffixRes {
		clean = re.ReplaceAllString(clean, "")
	}

	clean = punctRe.ReplaceAllString(clean, "")

	return strings.Join(strings.Fields(clean), " ")
}
