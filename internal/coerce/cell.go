// Package coerce converts loosely-typed spreadsheet cell values into the
// typed representation demanded by a schema field. It is a pure transform:
// coercion never touches shared state and never panics on bad input.
package coerce

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies the source-native shape of a raw cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBool
	CellTime
)

// Cell is one raw spreadsheet cell value. The zero value is an empty cell.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
	// Clock marks a time cell as carrying time-of-day precision. Kept
	// separate from Time so a midnight timestamp stays distinguishable from
	// a plain date.
	Clock bool
}

// TextCell builds a text cell, normalizing blank text to an empty cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// BoolCell builds a boolean cell.
func BoolCell(b bool) Cell {
	return Cell{Kind: CellBool, Bool: b}
}

// TimeCell builds a source-native date cell. A non-midnight time of day
// marks the cell with clock precision.
func TimeCell(t time.Time) Cell {
	return Cell{Kind: CellTime, Time: t, Clock: hasClock(t)}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	if c.Kind == CellEmpty {
		return true
	}
	return c.Kind == CellText && strings.TrimSpace(c.Text) == ""
}

// Snapshot renders the raw value for error messages and reports.
func (c Cell) Snapshot() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellTime:
		return renderTime(c.Time, c.Clock)
	default:
		return ""
	}
}

// hasClock reports whether t carries a non-midnight time of day.
func hasClock(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}

// renderTime renders an instant as an ISO 8601 date, or date-time when the
// value carries time-of-day precision.
func renderTime(t time.Time, clock bool) string {
	if clock {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02")
}
