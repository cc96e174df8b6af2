package provider

import "strconv"

// Row is a single provider result row. Columns missing from the projection are
// simply absent; the typed getters report presence so callers can decide
// whether to skip the row or fall back to a zero value.
type Row map[string]any

// String returns the column as a string. Numeric values are formatted, which
// matters for identifier columns that are stored as integers.
func (r Row) String(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", ok
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Int64 returns the column as an int64.
func (r Row) Int64(col string) (int64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, ok
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the column interpreted as the provider's integer boolean
// (non-zero means true). A missing column is false.
func (r Row) Bool(col string) bool {
	n, ok := r.Int64(col)
	return ok && n != 0
}

// Has reports whether the column is present in the row, regardless of value.
func (r Row) Has(col string) bool {
	_, ok := r[col]
	return ok
}
