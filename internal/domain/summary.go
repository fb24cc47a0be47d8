/**
 * @description
 * Domain models shared by the aggregation service: reporting periods,
 * the resolved anchor date, and the per-run summary handed to the notifier.
 */
package domain

import "time"

// Period is one rolling aggregation window, e.g. {"7d", 7}.
type Period struct {
	Label string
	Days  int
}

// DefaultPeriods are the windows reported on every run, in display order.
var DefaultPeriods = []Period{
	{Label: "24h", Days: 1},
	{Label: "7d", Days: 7},
	{Label: "30d", Days: 30},
}

// Anchor is the most recent calendar date treated as having published
// report data. Units carries the parsed total from the probe that found
// the date, when the probing strategy was used; it is only valid for the
// aggregation run that produced it.
type Anchor struct {
	Date  time.Time
	Units *int
}

// PeriodTotal is the aggregate for one period. Units is nil when no date
// in the window had an available report.
type PeriodTotal struct {
	Period Period
	Units  *int
}

// Summary is the result of one aggregation run. AnchorDate is nil when
// anchor resolution failed; the summary is still delivered with every
// period marked unavailable.
type Summary struct {
	AnchorDate  *time.Time
	Totals      []PeriodTotal
	GeneratedAt time.Time
}
