package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"bnmcp/pkg/core"
)

// Text is a scalar parameter that accepts a JSON string, number or boolean.
// Numbers and booleans keep their literal spelling. Falsy scalars (null,
// false and numeric zero) decode to the empty Text and count as absent.
type Text string

// UnmarshalJSON implements json.Unmarshaler for Text.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := core.JSON.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("expected a string, got %s", data)
	case 'f':
		*t = ""
	default:
		if isZeroNumber(data) {
			*t = ""
			return nil
		}
		*t = Text(data)
	}
	return nil
}

func isZeroNumber(data []byte) bool {
	f, err := json.Number(data).Float64()
	return err == nil && f == 0
}

func (t Text) String() string {
	return string(t)
}

// Contract is implemented by every operation's parameter set.
type Contract interface {
	Validate() error
}

// AccountParams are the parameters of get_account.
type AccountParams struct {
	RecvWindow any `json:"recvWindow"`
}

// OpenOrdersParams are the parameters of get_open_orders.
type OpenOrdersParams struct {
	Symbol     any `json:"symbol"`
	RecvWindow any `json:"recvWindow"`
}

// TradesParams are the parameters of get_trades.
type TradesParams struct {
	Symbol     Text `json:"symbol" validate:"required"`
	Limit      any  `json:"limit"`
	RecvWindow any  `json:"recvWindow"`
}

// OrderParams are the parameters of place_order. Test routes the order to
// the validation-only endpoint when truthy.
type OrderParams struct {
	Symbol        Text `json:"symbol" validate:"required"`
	Side          Text `json:"side" validate:"required"`
	Type          Text `json:"type" validate:"required"`
	Quantity      any  `json:"quantity"`
	QuoteOrderQty any  `json:"quoteOrderQty"`
	Price         any  `json:"price"`
	TimeInForce   any  `json:"timeInForce"`
	RecvWindow    any  `json:"recvWindow"`
	Test          any  `json:"test"`
}

// CandlesParams are the parameters of get_candles.
type CandlesParams struct {
	Symbol    Text `json:"symbol" validate:"required"`
	Interval  Text `json:"interval" validate:"required"`
	Limit     any  `json:"limit"`
	StartTime any  `json:"startTime"`
	EndTime   any  `json:"endTime"`
}

func (p AccountParams) Validate() error    { return nil }
func (p OpenOrdersParams) Validate() error { return nil }

func (p TradesParams) Validate() error {
	return requireFields(p, "symbol is required for get_trades")
}

func (p OrderParams) Validate() error {
	return requireFields(p, "symbol, side, and type are required for place_order")
}

func (p CandlesParams) Validate() error {
	return requireFields(p, "symbol and interval are required for get_candles")
}

// IsTest reports whether the order should go to the test endpoint.
func (p OrderParams) IsTest() bool {
	return Truthy(p.Test)
}

var validate = validator.New()

func requireFields(v any, message string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return core.NewMissingParameterError(message)
	}
	return err
}

// DecodeParams decodes a raw params object into the contract P and
// validates it. Empty input decodes to the zero contract.
func DecodeParams[P Contract](raw []byte) (P, error) {
	var p P
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := core.JSON.Unmarshal(raw, &p); err != nil {
			return p, fmt.Errorf("invalid params: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Truthy reports whether v is set in the loose sense callers expect from a
// flag: true, a non-zero number, a non-empty string or a non-empty container.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}
