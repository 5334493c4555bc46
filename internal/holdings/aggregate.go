package holdings

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/investor-alpha/holdings-cli/internal/model"
)

// Aggregate groups raw holding records into a fund's weighted portfolio.
// Pure function, no I/O.
//
// Records are grouped by the (cusip, issuer name) pair: both must match for
// two records to merge. The same issuer under two different CUSIPs (voting vs
// non-voting classes) stays distinct, and the same CUSIP under two issuer
// spellings does NOT merge. That second case is a known limitation carried
// over from the report format this feeds, not something to correct here.
//
// Weight is the group's value as a percentage of the fund's total reported
// value, rounded to 2 decimal places half away from zero (decimal
// arithmetic, so boundary values like 33.335 round up to 33.34). A zero
// total yields an empty result rather than a division by zero.
//
// Output is ordered by weight descending; ties keep first-encounter order.
func Aggregate(records []model.HoldingRecord) []model.AggregatedHolding {
	type groupKey struct {
		cusip  string
		issuer string
	}

	groups := make(map[groupKey]*model.AggregatedHolding)
	var order []groupKey

	for _, r := range records {
		key := groupKey{cusip: r.CUSIP, issuer: r.IssuerName}
		g, ok := groups[key]
		if !ok {
			g = &model.AggregatedHolding{CUSIP: r.CUSIP, IssuerName: r.IssuerName}
			groups[key] = g
			order = append(order, key)
		}
		g.Value += r.Value
		g.Shares += r.Shares
	}

	total := decimal.Zero
	for _, key := range order {
		total = total.Add(decimal.NewFromFloat(groups[key].Value))
	}
	if total.IsZero() {
		return nil
	}

	out := make([]model.AggregatedHolding, 0, len(order))
	for _, key := range order {
		g := groups[key]
		weight := decimal.NewFromFloat(g.Value).
			Div(total).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		g.Weight, _ = weight.Float64()
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})

	return out
}
