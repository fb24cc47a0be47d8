/**
 * @description
 * Core aggregation service. One run resolves the anchor date exactly
 * once, sums download units over each rolling window ending at that date,
 * renders the summary message, and hands it to the notifier. Per-date
 * fetch failures degrade to "no data for that date"; the notification is
 * attempted even when nothing could be aggregated, so a silent day is
 * still visible as an explicit UNKNOWN message.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BMERCER-XYZ/App-Store-API-Webhook/internal/domain"
	"github.com/BMERCER-XYZ/App-Store-API-Webhook/pkg/appstoreclient"
)

// ReportSource fetches the parsed units total for a single report date.
type ReportSource interface {
	FetchUnitsForDate(ctx context.Context, date time.Time) (int, error)
}

// Notifier delivers one rendered summary message.
type Notifier interface {
	Send(ctx context.Context, content string) error
}

// Service runs the report aggregation pipeline.
type Service struct {
	source   ReportSource
	resolver AnchorResolver
	notifier Notifier
	logger   *slog.Logger
	periods  []domain.Period
}

// NewService wires the aggregation service from its dependencies.
func NewService(source ReportSource, resolver AnchorResolver, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		source:   source,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		periods:  domain.DefaultPeriods,
	}
}

// Run executes one aggregation cycle and delivers the summary. Only a
// notification delivery failure is returned as an error; everything
// upstream degrades into the summary itself.
func (s *Service) Run(ctx context.Context) error {
	summary := s.Aggregate(ctx)
	if err := s.notifier.Send(ctx, renderSummary(summary)); err != nil {
		return fmt.Errorf("failed to deliver summary notification: %w", err)
	}
	s.logger.Info("summary notification delivered")
	return nil
}

// Aggregate resolves the anchor once and computes every period total
// against it, so all windows in one summary reference the same data
// through date.
func (s *Service) Aggregate(ctx context.Context) domain.Summary {
	summary := domain.Summary{GeneratedAt: now().UTC()}

	anchor, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.logger.Warn("anchor date could not be resolved, reporting all periods as unavailable", "error", err)
	} else {
		anchorDate := anchor.Date
		summary.AnchorDate = &anchorDate
		s.logger.Info("aggregating report windows", "anchor", anchorDate.Format("2006-01-02"))
	}

	for _, period := range s.periods {
		periodTotal := domain.PeriodTotal{Period: period}
		if anchor != nil {
			if total, ok := s.AggregateWindow(ctx, anchor, period.Days); ok {
				periodTotal.Units = &total
			}
		}
		summary.Totals = append(summary.Totals, periodTotal)
	}
	return summary
}

// AggregateWindow sums units over the window of days consecutive dates
// ending at the anchor date. Dates without data are skipped, making the
// total a best-effort partial sum. ok is false only when not a single
// date in the window had data.
func (s *Service) AggregateWindow(ctx context.Context, anchor *domain.Anchor, days int) (total int, ok bool) {
	available := 0
	for offset := 0; offset < days; offset++ {
		date := anchor.Date.AddDate(0, 0, -offset)
		units, err := s.fetchDate(ctx, anchor, date)
		if err != nil {
			if errors.Is(err, appstoreclient.ErrReportUnavailable) {
				s.logger.Debug("no data for date", "date", date.Format("2006-01-02"))
			} else {
				s.logger.Warn("fetch failed for date, treating as missing", "date", date.Format("2006-01-02"), "error", err)
			}
			continue
		}
		total += units
		available++
	}
	if available == 0 {
		return 0, false
	}
	if available < days {
		s.logger.Info("window aggregated with missing days", "days", days, "available", available)
	}
	return total, true
}

// fetchDate consults the anchor's probe-cached total when asked for the
// anchor's own date and fetches every other date from the source.
func (s *Service) fetchDate(ctx context.Context, anchor *domain.Anchor, date time.Time) (int, error) {
	if anchor.Units != nil && date.Equal(anchor.Date) {
		return *anchor.Units, nil
	}
	return s.source.FetchUnitsForDate(ctx, date)
}

// renderSummary formats the plain-text notification message.
func renderSummary(summary domain.Summary) string {
	lines := []string{":iphone: App Store Download Units Summary"}

	if summary.AnchorDate != nil {
		lines = append(lines, fmt.Sprintf("Data through: %s (UTC)", summary.AnchorDate.Format("2006-01-02")))
	} else {
		lines = append(lines, "Data through: UNKNOWN (anchor date not found)")
	}

	for _, periodTotal := range summary.Totals {
		value := "N/A"
		if periodTotal.Units != nil {
			value = strconv.Itoa(*periodTotal.Units)
		}
		lines = append(lines, fmt.Sprintf("• Period %s: %s", periodTotal.Period.Label, value))
	}

	lines = append(lines, fmt.Sprintf("Timestamp: %s", summary.GeneratedAt.Format("2006-01-02 15:04 UTC")))
	return strings.Join(lines, "\n")
}
