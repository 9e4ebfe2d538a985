package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"bnmcp/pkg/exchange"
)

// formatValue renders a single parameter value the way it is sent on the wire.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case exchange.Text:
		return string(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *apd.Decimal:
		return val.Text('f')
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// expandValue returns the values a parameter contributes. Slices become
// repeated keys.
func expandValue(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, formatValue(item))
		}
		return out
	default:
		return []string{formatValue(v)}
	}
}

// normalizeDecimal rewrites a numeric quantity or price in plain notation,
// e.g. 1e-5 becomes 0.00001. Values that are not finite decimals pass
// through untouched so the exchange can reject them itself.
func normalizeDecimal(v any) any {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case string, json.Number, float64, float32, int, int64:
	default:
		return v
	}
	d, _, err := apd.NewFromString(formatValue(v))
	if err != nil || d.Form != apd.Finite {
		return v
	}
	return d.Text('f')
}

// upper upper-cases a text parameter.
func upper(t exchange.Text) string {
	return strings.ToUpper(string(t))
}
