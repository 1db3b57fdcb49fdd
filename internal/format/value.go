package format

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxSafeInteger bounds integers that survive a trip through float64
const maxSafeInteger = 1<<53 - 1

// normalize converts decoder-specific values into the shared document
// model: map[string]any, []any, string, int64, float64, bool and nil.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case json.Number:
		return numberFromString(t.String())
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return numberFromUint(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return numberFromUint(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return string(t)
	case string, int64, float64, bool, nil:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func numberFromUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return float64(u)
}

// numberFromString turns an already validated numeric literal into int64
// when exact, float64 otherwise.
func numberFromString(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// inferScalar types a bare text value coming from CSV cells or XML text.
// Numbers are only converted when float64/int64 can hold them without
// losing precision; identifiers with leading zeros stay strings.
func inferScalar(s string) any {
	t := strings.TrimSpace(s)
	switch t {
	case "":
		return s
	case "true", "TRUE", "True":
		return true
	case "false", "FALSE", "False":
		return false
	}

	if hasLeadingZero(t) {
		return s
	}

	dec, err := decimal.NewFromString(t)
	if err != nil {
		return s
	}

	if dec.IsInteger() && !strings.ContainsAny(t, ".eE") {
		bigInt := dec.BigInt()
		if bigInt.IsInt64() {
			i64 := bigInt.Int64()
			if i64 >= -maxSafeInteger && i64 <= maxSafeInteger {
				return i64
			}
		}
		return s
	}

	f64, _ := dec.Float64()
	if !dec.Equal(decimal.NewFromFloat(f64)) {
		return s
	}
	if countSignificantDigits(t) > 15 {
		return s
	}
	return f64
}

func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

func countSignificantDigits(s string) int {
	mantissa := strings.TrimLeft(s, "+-")
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		mantissa = mantissa[:i]
	}
	mantissa = strings.Replace(mantissa, ".", "", 1)
	mantissa = strings.TrimLeft(mantissa, "0")
	return len(mantissa)
}

// scalarString renders a scalar for text-only formats (CSV cells, XML text)
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return fmt.Sprint(v)
}

// sortedKeys returns the keys of m in lexical order
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
