// Package changetracker implements the Field-Level Change Tracker
// (spec.md §4.4): a structured JSON diff engine that classifies each
// changed field by category and severity, parses durations across
// several languages, and persists bounded per-URL history.
package changetracker

// Kind enumerates the JSON value shapes a Value can hold.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a sum type over the shapes a decoded JSON leaf or container can
// take. Using one closed type instead of bare interface{} lets every
// comparison, classifier, and formatter switch on Kind exhaustively rather
// than relying on repeated type assertions scattered through the diff
// walk.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Arr    []Value
	Obj    map[string]Value
}

// FromAny converts a decoded JSON value (as produced by encoding/json's
// default unmarshal into interface{}) into a Value.
func FromAny(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case float64:
		return Value{Kind: KindNumber, Number: t}
	case int:
		return Value{Kind: KindNumber, Number: float64(t)}
	case string:
		return Value{Kind: KindString, Str: t}
	case []interface{}:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = FromAny(e)
		}
		return Value{Kind: KindArray, Arr: arr}
	case map[string]interface{}:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = FromAny(e)
		}
		return Value{Kind: KindObject, Obj: obj}
	default:
		return Value{Kind: KindNull}
	}
}

// Equal reports deep value equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Number == o.Number
	case KindString:
		return v.Str == o.Str
	case KindArray:
		if len(v.Arr) != len(o.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(o.Arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.Obj) != len(o.Obj) {
			return false
		}
		for k, vv := range v.Obj {
			ov, ok := o.Obj[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// IsMonetary reports whether v looks like {amount: number, currency: string}.
func (v Value) IsMonetary() bool {
	if v.Kind != KindObject {
		return false
	}
	amount, hasAmount := v.Obj["amount"]
	_, hasCurrency := v.Obj["currency"]
	return hasAmount && hasCurrency && amount.Kind == KindNumber
}
