package checklist

import "time"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseData tags raw response values with the kinds their fields declare:
// strings of date fields become dates, strings of select and radio fields
// become options. Values that do not fit their field type are kept as they
// are so validation sees exactly what was submitted. Keys without a field
// are carried over unchanged.
func ParseData(t *Template, raw Data) Data {
	out := make(Data, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, f := range t.Fields() {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		out[f.Name] = retag(f.Type, v)
	}
	return out
}

func retag(ft FieldType, v Value) Value {
	if v.Kind() != KindText {
		return v
	}
	s, _ := v.AsString()
	switch ft {
	case FieldTypeDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Date(s, t)
			}
		}
	case FieldTypeSelect, FieldTypeRadio:
		return Option(s)
	}
	return v
}
