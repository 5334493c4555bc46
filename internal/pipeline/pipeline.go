// Package pipeline orchestrates the per-fund 13F flow: locate the latest
// filing, resolve its holdings document, parse, aggregate, and persist one
// CSV table per fund.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/investor-alpha/holdings-cli/internal/edgar"
	"github.com/investor-alpha/holdings-cli/internal/holdings"
	"github.com/investor-alpha/holdings-cli/internal/model"
	"github.com/investor-alpha/holdings-cli/internal/report"
	"github.com/investor-alpha/holdings-cli/internal/store"
)

// Options configures a pipeline run.
type Options struct {
	FormType     string
	ProcessedDir string
	// FundPause is the fixed sleep inserted between funds, on top of the
	// fetcher's per-host request pacing.
	FundPause time.Duration
}

// Pipeline processes the configured fund universe sequentially. No state is
// shared across fund iterations; a fund's CSV is either fully written or not
// written at all.
type Pipeline struct {
	locator *edgar.Client
	parser  *holdings.Parser
	store   store.Store
	opts    Options
}

// New creates a pipeline. store may be nil to skip run-history recording.
func New(locator *edgar.Client, parser *holdings.Parser, st store.Store, opts Options) *Pipeline {
	if opts.FormType == "" {
		opts.FormType = "13F-HR"
	}
	return &Pipeline{locator: locator, parser: parser, store: st, opts: opts}
}

// Summary reports the outcome of a pipeline run.
type Summary struct {
	Processed int
	Skipped   int
}

// Run processes every fund in the universe, in display-name order. Per-fund
// failures (no filing, empty document, zero portfolio) skip that fund and
// continue; only a context cancellation aborts the loop.
func (p *Pipeline) Run(ctx context.Context, funds map[string]string) (*Summary, error) {
	names := make([]string, 0, len(funds))
	for name := range funds {
		names = append(names, name)
	}
	sort.Strings(names)

	var summary Summary
	for i, name := range names {
		if i > 0 && p.opts.FundPause > 0 {
			t := time.NewTimer(p.opts.FundPause)
			select {
			case <-ctx.Done():
				t.Stop()
				return &summary, eris.Wrap(ctx.Err(), "pipeline: cancelled")
			case <-t.C:
			}
		}

		run, err := p.processFund(ctx, name, funds[name])
		if err != nil {
			return &summary, err
		}

		if run.Status == model.RunStatusOK {
			summary.Processed++
		} else {
			summary.Skipped++
		}

		p.record(ctx, run)
	}

	return &summary, nil
}

// processFund runs the locate → resolve → parse → aggregate → persist chain
// for one fund. Every skip path returns a run record with the reason; the
// only returned errors are context cancellations and output-write failures.
func (p *Pipeline) processFund(ctx context.Context, fundName, cik string) (*model.PipelineRun, error) {
	log := zap.L().With(zap.String("fund", fundName), zap.String("cik", cik))
	log.Info("processing fund")

	run := &model.PipelineRun{Fund: fundName, CIK: cik, Status: model.RunStatusSkipped}

	meta, err := p.locator.LatestFiling(ctx, cik, p.opts.FormType)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "pipeline: cancelled")
		}
		if !errors.Is(err, edgar.ErrNotFound) {
			log.Warn("filing lookup failed", zap.Error(err))
		}
		log.Info("skipping fund", zap.String("reason", model.SkipNoFiling))
		run.SkipReason = model.SkipNoFiling
		return run, nil
	}
	run.FilingDate = meta.FilingDate
	log.Info("found filing", zap.String("filing_date", meta.FilingDate))

	docURL, err := p.locator.ResolveHoldingsDocument(ctx, meta)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "pipeline: cancelled")
		}
		log.Info("skipping fund", zap.String("reason", model.SkipNoDocument), zap.Error(err))
		run.SkipReason = model.SkipNoDocument
		return run, nil
	}

	records := p.parser.Parse(ctx, docURL)
	if len(records) == 0 {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "pipeline: cancelled")
		}
		log.Info("skipping fund", zap.String("reason", model.SkipEmptyHoldings))
		run.SkipReason = model.SkipEmptyHoldings
		return run, nil
	}

	aggregated := holdings.Aggregate(records)
	if len(aggregated) == 0 {
		log.Info("skipping fund", zap.String("reason", model.SkipZeroPortfolio))
		run.SkipReason = model.SkipZeroPortfolio
		return run, nil
	}

	path, err := report.WriteFundTable(p.opts.ProcessedDir, fundName, meta.FilingDate, aggregated)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: persist table for %s", fundName)
	}

	log.Info("saved holdings",
		zap.Int("holdings", len(aggregated)),
		zap.String("path", path),
	)

	run.Status = model.RunStatusOK
	run.Holdings = len(aggregated)
	run.OutputPath = path
	return run, nil
}

func (p *Pipeline) record(ctx context.Context, run *model.PipelineRun) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordRun(ctx, run); err != nil {
		zap.L().Warn("record run failed", zap.String("fund", run.Fund), zap.Error(err))
	}
}
