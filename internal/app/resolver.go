/**
 * @description
 * Anchor date resolution. Sales reports publish with a variable lag
 * behind the current date, so every aggregation run first needs a
 * reference date whose data can be treated as the most recent available.
 * Two strategies implement the same contract: a fixed lag that trusts the
 * configured offset, and backward probing that confirms a date actually
 * has data before anchoring on it.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BMERCER-XYZ/App-Store-API-Webhook/internal/domain"
	"github.com/BMERCER-XYZ/App-Store-API-Webhook/pkg/appstoreclient"
)

// now is overridden in tests to pin the current date.
var now = time.Now

// ErrAnchorNotFound means no candidate date within the probe window had
// usable report data. Network trouble and a genuinely unpublished backlog
// are not distinguished here; the per-offset logs carry that detail.
var ErrAnchorNotFound = errors.New("no report data found within probe window")

// AnchorResolver determines the most recent calendar date whose report
// data an aggregation run should treat as complete.
type AnchorResolver interface {
	Resolve(ctx context.Context) (*domain.Anchor, error)
}

// utcToday returns the current UTC calendar date at midnight.
func utcToday() time.Time {
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FixedLagResolver anchors on today minus a configured number of days
// without checking that the date has data.
type FixedLagResolver struct {
	lag int
}

// NewFixedLagResolver creates a resolver with the given lag in days.
func NewFixedLagResolver(lag int) *FixedLagResolver {
	return &FixedLagResolver{lag: lag}
}

// Resolve returns today minus the configured lag. It never fails and
// performs no network activity.
func (r *FixedLagResolver) Resolve(ctx context.Context) (*domain.Anchor, error) {
	return &domain.Anchor{Date: utcToday().AddDate(0, 0, -r.lag)}, nil
}

// ProbingResolver starts at today minus the configured lag and walks
// backward one day at a time until it finds a date with usable report
// data. Offsets are probed in order, so the candidate nearest to today
// always wins. The winning probe's parsed total rides along on the
// anchor, sparing the aggregation run a second fetch of the same date.
type ProbingResolver struct {
	source       ReportSource
	lag          int
	maxProbeDays int
	logger       *slog.Logger
}

// NewProbingResolver creates a probing resolver. maxProbeDays bounds how
// far past the initial lag the search walks; the probe at the initial lag
// itself is always attempted.
func NewProbingResolver(source ReportSource, lag, maxProbeDays int, logger *slog.Logger) *ProbingResolver {
	return &ProbingResolver{
		source:       source,
		lag:          lag,
		maxProbeDays: maxProbeDays,
		logger:       logger,
	}
}

// Resolve probes candidate dates newest-first and returns the first one
// with data. Fetch faults are logged and treated the same as an absent
// report; only exhausting every candidate is an error.
func (r *ProbingResolver) Resolve(ctx context.Context) (*domain.Anchor, error) {
	base := utcToday().AddDate(0, 0, -r.lag)
	for offset := 0; offset <= r.maxProbeDays; offset++ {
		candidate := base.AddDate(0, 0, -offset)
		units, err := r.source.FetchUnitsForDate(ctx, candidate)
		if err != nil {
			if errors.Is(err, appstoreclient.ErrReportUnavailable) {
				r.logger.Debug("probe found no data", "date", candidate.Format("2006-01-02"), "offset", offset)
			} else {
				r.logger.Warn("probe fetch failed", "date", candidate.Format("2006-01-02"), "offset", offset, "error", err)
			}
			continue
		}
		r.logger.Info("anchor date resolved", "date", candidate.Format("2006-01-02"), "offset", offset, "units", units)
		return &domain.Anchor{Date: candidate, Units: &units}, nil
	}
	return nil, ErrAnchorNotFound
}
