package consensus

import (
	"sort"
	"strings"

	"github.com/investor-alpha/holdings-cli/internal/model"
)

// FundTable pairs a fund's display name with its aggregated portfolio.
type FundTable struct {
	FundName string
	Rows     []model.AggregatedHolding
}

// Build clusters all funds' aggregated rows by NormalizeName(issuer) and
// produces one consensus row per cluster. Pure function, no I/O.
//
// Per cluster: the display name is the raw issuer name of the first row
// encountered in input order; guru count is the number of distinct owning
// funds (a fund never double-counts, no matter how many rows it contributes);
// guru names are deduplicated, sorted, and comma-joined; total value is
// summed; average conviction is the arithmetic mean of the cluster's row
// weights. Rows are ordered by guru count descending, then total value
// descending, stable beyond that.
func Build(tables []FundTable) []model.ConsensusRow {
	type cluster struct {
		displayName string
		owners      map[string]struct{}
		totalValue  float64
		weightSum   float64
		rows        int
	}

	clusters := make(map[string]*cluster)
	var order []string

	for _, t := range tables {
		for _, row := range t.Rows {
			key := NormalizeName(row.IssuerName)
			c, ok := clusters[key]
			if !ok {
				c = &cluster{
					displayName: row.IssuerName,
					owners:      make(map[string]struct{}),
				}
				clusters[key] = c
				order = append(order, key)
			}
			c.owners[t.FundName] = struct{}{}
			c.totalValue += row.Value
			c.weightSum += row.Weight
			c.rows++
		}
	}

	out := make([]model.ConsensusRow, 0, len(order))
	for _, key := range order {
		c := clusters[key]

		names := make([]string, 0, len(c.owners))
		for name := range c.owners {
			names = append(names, name)
		}
		sort.Strings(names)

		out = append(out, model.ConsensusRow{
			MatchKey:      key,
			StockName:     c.displayName,
			GuruCount:     len(c.owners),
			GuruNames:     strings.Join(names, ", "),
			TotalValue:    c.totalValue,
			AvgConviction: c.weightSum / float64(c.rows),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GuruCount != out[j].GuruCount {
			return out[i].GuruCount > out[j].GuruCount
		}
		return out[i].TotalValue > out[j].TotalValue
	})

	return out
}
