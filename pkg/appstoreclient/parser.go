/**
 * @description
 * Parsing for Sales & Trends daily summary reports. Reports arrive as
 * tab-separated text with a header row; the parser locates the "Units"
 * column and sums it across all rows, skipping rows it cannot use.
 */
package appstoreclient

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrEmptyReport means the report text contained no non-blank lines.
	ErrEmptyReport = errors.New("report is empty")
	// ErrUnitsColumnMissing means the header row has no Units column.
	ErrUnitsColumnMissing = errors.New("units column not found in report header")
)

// ParseUnitsTotal sums the Units column of a tab-separated report. The
// column is matched exactly first, then case-insensitively. Rows that are
// too short, blank in the units cell, or non-numeric are skipped, so a
// report whose header carries the column always yields a total, even when
// every row is skipped. Only a missing column or an empty report is an
// error.
func ParseUnitsTotal(text string) (int, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return 0, ErrEmptyReport
	}

	header := strings.Split(lines[0], "\t")
	unitsIdx := -1
	for i, name := range header {
		if name == "Units" {
			unitsIdx = i
			break
		}
	}
	if unitsIdx == -1 {
		for i, name := range header {
			if strings.EqualFold(name, "Units") {
				unitsIdx = i
				break
			}
		}
	}
	if unitsIdx == -1 {
		return 0, ErrUnitsColumnMissing
	}

	total := 0
	for _, row := range lines[1:] {
		cells := strings.Split(row, "\t")
		if len(cells) <= unitsIdx {
			continue
		}
		cell := strings.TrimSpace(cells[unitsIdx])
		if cell == "" {
			continue
		}
		units, err := strconv.Atoi(cell)
		if err != nil {
			continue
		}
		total += units
	}
	return total, nil
}
