package checklist

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Kind tags the concrete shape carried by a Value.
type Kind uint8

const (
	KindAbsent     Kind = iota // key not present in the response data
	KindNull                   // explicit null
	KindText                   // free text
	KindNumber                 // number, currency, rating
	KindBool                   // checkbox
	KindDate                   // string tagged as a date by ParseData
	KindOption                 // select/radio value
	KindOptionList             // multiselect values
	KindOther                  // anything else (objects, mixed arrays), carried opaque
)

var kindNames = map[Kind]string{
	KindAbsent:     "absent",
	KindNull:       "null",
	KindText:       "text",
	KindNumber:     "number",
	KindBool:       "bool",
	KindDate:       "date",
	KindOption:     "option",
	KindOptionList: "option_list",
	KindOther:      "other",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a single response value. The zero Value is absent.
type Value struct {
	kind  Kind
	str   string
	num   float64
	b     bool
	t     time.Time
	list  []string
	other any
}

// Null returns an explicit null value.
func Null() Value { return Value{kind: KindNull} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Option returns a single selected option.
func Option(s string) Value { return Value{kind: KindOption, str: s} }

// OptionList returns a multiselect value.
func OptionList(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{kind: KindOptionList, list: items}
}

// Date returns a date value keeping the raw string it was parsed from.
func Date(raw string, t time.Time) Value { return Value{kind: KindDate, str: raw, t: t} }

// Kind reports the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the key was missing from the data.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNull reports whether the value is absent or an explicit null.
func (v Value) IsNull() bool { return v.kind == KindAbsent || v.kind == KindNull }

// IsBlank reports whether a required field holding v counts as unanswered:
// absent, null, or the empty string. "0", 0 and false are answers.
func (v Value) IsBlank() bool {
	if v.IsNull() {
		return true
	}
	s, ok := v.AsString()
	return ok && s == ""
}

// AsString returns the string payload of text, date and option values.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindText, KindDate, KindOption:
		return v.str, true
	}
	return "", false
}

// AsNumber returns the payload of numeric values.
func (v Value) AsNumber() (float64, bool) {
	if v.kind == KindNumber {
		return v.num, true
	}
	return 0, false
}

// AsBool returns the payload of boolean values.
func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// AsTime returns the parsed time of date values.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind == KindDate {
		return v.t, true
	}
	return time.Time{}, false
}

// AsList returns the selections of a multiselect value.
func (v Value) AsList() ([]string, bool) {
	if v.kind == KindOptionList {
		return v.list, true
	}
	return nil, false
}

// StrictEqual compares without type coercion. Text, date and option values
// all carry strings on the wire and compare by their string payload. Lists
// and opaque values never compare equal.
func (v Value) StrictEqual(o Value) bool {
	if a, ok := v.AsString(); ok {
		b, ok := o.AsString()
		return ok && a == b
	}
	switch v.kind {
	case KindAbsent, KindNull:
		return o.kind == v.kind
	case KindNumber:
		return o.kind == KindNumber && v.num == o.num
	case KindBool:
		return o.kind == KindBool && v.b == o.b
	}
	return false
}

// String renders the value the way a string conversion on the wire value
// would: numbers without trailing zeros, null as "null", lists comma-joined.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "undefined"
	case KindNull:
		return "null"
	case KindText, KindDate, KindOption:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindOptionList:
		return strings.Join(v.list, ",")
	}
	return "[object Object]"
}

// ToNumber coerces the value to a number. Unconvertible values yield NaN,
// which fails every ordered comparison.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindNull:
		return 0
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindText, KindDate, KindOption:
		return parseNumber(v.str)
	case KindOptionList:
		switch len(v.list) {
		case 0:
			return 0
		case 1:
			return parseNumber(v.list[0])
		}
	}
	return math.NaN()
}

// Interface returns the plain Go representation used for JSON encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindText, KindDate, KindOption:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindOptionList:
		return v.list
	case KindOther:
		return v.other
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return eris.Wrap(err, "checklist: decode value")
	}
	*v = FromInterface(raw)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return eris.Wrap(err, "checklist: decode yaml value")
	}
	*v = FromInterface(raw)
	return nil
}

// FromInterface tags a decoded JSON/YAML value.
func FromInterface(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return Text(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String())
		}
		return Number(f)
	case []string:
		return OptionList(x...)
	case []any:
		items := make([]string, 0, len(x))
		for _, it := range x {
			s, ok := it.(string)
			if !ok {
				return Value{kind: KindOther, other: raw}
			}
			items = append(items, s)
		}
		return OptionList(items...)
	}
	return Value{kind: KindOther, other: raw}
}

// Data is the response dictionary of a checklist instance, keyed by field
// name. Missing keys read as absent values.
type Data map[string]Value

// Get returns the value stored under name.
func (d Data) Get(name string) Value {
	return d[name]
}

// DataFromMap tags every entry of a decoded map.
func DataFromMap(m map[string]any) Data {
	d := make(Data, len(m))
	for k, raw := range m {
		d[k] = FromInterface(raw)
	}
	return d
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
