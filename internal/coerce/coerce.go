package coerce

// coerce.go holds the per-kind coercion rules for the messy reality of
// user-provided spreadsheet data:
//   - Multiple date formats (ISO, US, EU, Excel serial numbers)
//   - Currency symbols and locale separators in numbers
//   - Various boolean spellings (yes/no, true/false, 1/0)
//
// Each target kind has exactly one arm in Coerce, so the coercion table
// stays exhaustive.

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dkanlabs/importer/internal/schema"
)

// numericRegex validates that a string is a valid numeric format after
// separator cleanup. Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateTimeLayouts are tried in priority order; the first successful parse
// wins. Layouts that carry a clock mark the value with time-of-day
// precision. Excel serial numbers are tried last.
var dateTimeLayouts = []struct {
	layout string
	clock  bool
}{
	{"2006-01-02", false},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"01/02/2006", false},
	{"02-01-2006", false},
}

// excelEpoch is the zero day of Excel's 1900 date system.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// arrayDelimiters are tried in order when splitting a plain-text cell into
// array elements.
var arrayDelimiters = []string{",", ";", "|", "\t"}

// Error describes a failed coercion of one cell.
type Error struct {
	Expected schema.Kind
	Raw      string // snapshot of the offending input
	// FormatRule is set when a structural or format rule failed, such as a
	// date parse or a malformed JSON object, rather than a plain type
	// mismatch.
	FormatRule bool
}

func (e *Error) Error() string {
	switch {
	case e.FormatRule && e.Expected == schema.KindDateTime:
		return fmt.Sprintf("invalid date %q (use YYYY-MM-DD, MM/DD/YYYY, or ISO 8601)", e.Raw)
	case e.FormatRule:
		return fmt.Sprintf("invalid %s format: %q", e.Expected, e.Raw)
	default:
		return fmt.Sprintf("expected %s, got %q", e.Expected, e.Raw)
	}
}

// Coerce converts a raw cell to the field's target kind. Empty cells always
// coerce to the Absent marker; required-ness is the caller's concern.
func Coerce(cell Cell, fd schema.FieldDescriptor) (Value, *Error) {
	if cell.IsEmpty() {
		return Absent(fd.Kind), nil
	}

	switch fd.Kind {
	case schema.KindInteger:
		return coerceInteger(cell)
	case schema.KindNumber:
		return coerceNumber(cell)
	case schema.KindBoolean:
		return coerceBoolean(cell)
	case schema.KindDateTime:
		return coerceDateTime(cell)
	case schema.KindArray:
		return coerceArray(cell), nil
	case schema.KindObject:
		return coerceObject(cell)
	default:
		return StringValue(stringify(cell)), nil
	}
}

func coerceInteger(cell Cell) (Value, *Error) {
	f, ok := cellFloat(cell)
	if !ok {
		return Value{}, &Error{Expected: schema.KindInteger, Raw: cell.Snapshot()}
	}
	if f != math.Trunc(f) {
		return Value{}, &Error{Expected: schema.KindInteger, Raw: cell.Snapshot()}
	}
	// int64(f) on an out-of-range float is implementation-defined; reject
	// rather than publish a wrapped value.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return Value{}, &Error{Expected: schema.KindInteger, Raw: cell.Snapshot()}
	}
	return IntegerValue(int64(f)), nil
}

func coerceNumber(cell Cell) (Value, *Error) {
	f, ok := cellFloat(cell)
	if !ok {
		return Value{}, &Error{Expected: schema.KindNumber, Raw: cell.Snapshot()}
	}
	return NumberValue(f), nil
}

// cellFloat extracts a float from an already-numeric cell or from text after
// separator normalization.
func cellFloat(cell Cell) (float64, bool) {
	switch cell.Kind {
	case CellNumber:
		return cell.Number, true
	case CellText:
		s, ok := normalizeNumericText(cell.Text)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// normalizeNumericText strips currency symbols, resolves the decimal versus
// grouping separator ambiguity, and validates the residue. Both "." and ","
// are accepted as decimal points:
//   - when both characters appear, the one further right is the decimal
//     point and the other is a grouping separator;
//   - multiple occurrences of a single character are grouping separators;
//   - a single occurrence is a decimal point.
//
// Accounting-style negatives "(123.45)" are honored.
func normalizeNumericText(s string) (string, bool) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"$", "€", "£"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if negative {
		s = "-" + s
	}
	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

func coerceBoolean(cell Cell) (Value, *Error) {
	var token string
	switch cell.Kind {
	case CellBool:
		return BooleanValue(cell.Bool), nil
	case CellText:
		token = strings.TrimSpace(cell.Text)
	case CellNumber:
		token = canonicalNumber(cell.Number)
	default:
		return Value{}, &Error{Expected: schema.KindBoolean, Raw: cell.Snapshot()}
	}

	switch strings.ToLower(token) {
	case "true", "t", "yes", "y", "1":
		return BooleanValue(true), nil
	case "false", "f", "no", "n", "0":
		return BooleanValue(false), nil
	default:
		return Value{}, &Error{Expected: schema.KindBoolean, Raw: cell.Snapshot()}
	}
}

func coerceDateTime(cell Cell) (Value, *Error) {
	switch cell.Kind {
	case CellTime:
		return DateTimeValue(cell.Time, cell.Clock), nil
	case CellNumber:
		t, clock := serialToTime(cell.Number)
		return DateTimeValue(t, clock), nil
	case CellText:
		s := strings.TrimSpace(cell.Text)
		for _, l := range dateTimeLayouts {
			if t, err := time.Parse(l.layout, s); err == nil {
				return DateTimeValue(t, l.clock), nil
			}
		}
		// Spreadsheet serial date numbers arrive as bare numerals when the
		// reader requests raw cell values.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			t, clock := serialToTime(f)
			return DateTimeValue(t, clock), nil
		}
	}
	return Value{}, &Error{Expected: schema.KindDateTime, Raw: cell.Snapshot(), FormatRule: true}
}

// serialToTime converts an Excel serial date number to an instant. Fractional
// days carry time-of-day precision.
func serialToTime(serial float64) (time.Time, bool) {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
	return t, secs > 0
}

// coerceArray never fails: a JSON-shaped cell parses as JSON, delimited text
// splits on the first matching delimiter, and a plain single value becomes a
// one-element array.
func coerceArray(cell Cell) Value {
	if cell.Kind != CellText {
		return ArrayValue([]string{stringify(cell)})
	}

	s := strings.TrimSpace(cell.Text)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var raw []any
		if err := json.Unmarshal([]byte(s), &raw); err == nil {
			items := make([]string, len(raw))
			for i, el := range raw {
				items[i] = stringifyJSON(el)
			}
			return ArrayValue(items)
		}
	}

	for _, delim := range arrayDelimiters {
		if strings.Contains(s, delim) {
			parts := strings.Split(s, delim)
			items := make([]string, len(parts))
			for i, p := range parts {
				items[i] = strings.TrimSpace(p)
			}
			return ArrayValue(items)
		}
	}
	return ArrayValue([]string{s})
}

// coerceObject accepts only JSON-shaped cells: a malformed "{...}" cell is a
// format failure, anything else is a type mismatch.
func coerceObject(cell Cell) (Value, *Error) {
	if cell.Kind != CellText {
		return Value{}, &Error{Expected: schema.KindObject, Raw: cell.Snapshot()}
	}
	s := strings.TrimSpace(cell.Text)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return Value{}, &Error{Expected: schema.KindObject, Raw: cell.Snapshot()}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return Value{}, &Error{Expected: schema.KindObject, Raw: cell.Snapshot(), FormatRule: true}
	}
	return ObjectValue(obj), nil
}

// stringify renders any raw cell as a string. Never fails.
func stringify(cell Cell) string {
	switch cell.Kind {
	case CellText:
		return strings.TrimSpace(cell.Text)
	case CellNumber:
		return canonicalNumber(cell.Number)
	case CellBool:
		return strconv.FormatBool(cell.Bool)
	case CellTime:
		return renderTime(cell.Time, cell.Clock)
	default:
		return ""
	}
}

// stringifyJSON renders a decoded JSON array element as a string.
func stringifyJSON(el any) string {
	switch v := el.(type) {
	case string:
		return v
	case float64:
		return canonicalNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
