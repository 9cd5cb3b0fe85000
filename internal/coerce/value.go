package coerce

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dkanlabs/importer/internal/schema"
)

// Value is the typed result of coercing one raw cell: a tagged union
// mirroring schema.Kind, or the explicit Absent marker for an optional
// empty field. Values are immutable.
type Value struct {
	kind   schema.Kind
	absent bool

	str   string
	num   float64
	i     int64
	b     bool
	t     time.Time
	clock bool
	items []string
	obj   map[string]any
}

// Absent marks an optional field whose cell was empty.
func Absent(kind schema.Kind) Value {
	return Value{kind: kind, absent: true}
}

// StringValue holds a coerced string.
func StringValue(s string) Value {
	return Value{kind: schema.KindString, str: s}
}

// IntegerValue holds a coerced integer.
func IntegerValue(i int64) Value {
	return Value{kind: schema.KindInteger, i: i}
}

// NumberValue holds a coerced number.
func NumberValue(f float64) Value {
	return Value{kind: schema.KindNumber, num: f}
}

// BooleanValue holds a coerced boolean.
func BooleanValue(b bool) Value {
	return Value{kind: schema.KindBoolean, b: b}
}

// DateTimeValue holds a coerced instant. clock records whether the source
// carried time-of-day precision, which controls how the value renders.
func DateTimeValue(t time.Time, clock bool) Value {
	return Value{kind: schema.KindDateTime, t: t, clock: clock}
}

// ArrayValue holds a coerced array of element strings.
func ArrayValue(items []string) Value {
	return Value{kind: schema.KindArray, items: items}
}

// ObjectValue holds a coerced JSON object.
func ObjectValue(obj map[string]any) Value {
	return Value{kind: schema.KindObject, obj: obj}
}

// Kind returns the target kind the value was coerced to.
func (v Value) Kind() schema.Kind { return v.kind }

// IsAbsent reports whether the value is the explicit absent marker.
func (v Value) IsAbsent() bool { return v.absent }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the number payload.
func (v Value) Float() float64 { return v.num }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Time returns the instant payload and whether it carries time-of-day.
func (v Value) Time() (time.Time, bool) { return v.t, v.clock }

// Items returns the array payload.
func (v Value) Items() []string { return v.items }

// Object returns the object payload.
func (v Value) Object() map[string]any { return v.obj }

// AsCell renders the value back into a raw cell. Coercing the result with
// the same descriptor yields the value again.
func (v Value) AsCell() Cell {
	if v.absent {
		return Cell{}
	}
	switch v.kind {
	case schema.KindInteger:
		return NumberCell(float64(v.i))
	case schema.KindNumber:
		return NumberCell(v.num)
	case schema.KindBoolean:
		return BoolCell(v.b)
	case schema.KindDateTime:
		return Cell{Kind: CellTime, Time: v.t, Clock: v.clock}
	case schema.KindArray:
		return TextCell(joinItems(v.items))
	case schema.KindObject:
		return TextCell(compactJSON(v.obj))
	default:
		return TextCell(v.str)
	}
}

func joinItems(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ";"
		}
		out += it
	}
	return out
}

func compactJSON(obj map[string]any) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// canonicalNumber renders a float without grouping separators or a spurious
// trailing ".0".
func canonicalNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
