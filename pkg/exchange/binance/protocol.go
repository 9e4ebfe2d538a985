package binance

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpClient "bnmcp/internal/http"
	"bnmcp/pkg/core"
	"bnmcp/pkg/exchange"
)

const (
	// SandboxURL is the spot testnet.
	SandboxURL = "https://testnet.binance.vision"

	// HeaderAPIKey carries the API key on signed requests.
	HeaderAPIKey = "X-MBX-APIKEY"
)

const (
	pathAccount    = "/api/v3/account"
	pathOpenOrders = "/api/v3/openOrders"
	pathMyTrades   = "/api/v3/myTrades"
	pathOrder      = "/api/v3/order"
	pathOrderTest  = "/api/v3/order/test"
	pathKlines     = "/api/v3/klines"
)

// Protocol builds, signs and parses Binance spot REST calls.
// It holds no state and is safe for concurrent use.
type Protocol struct{}

// NewProtocol creates a new Binance protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "binance".
func (p *Protocol) Name() string {
	return "binance"
}

// Version returns the REST API version the paths belong to.
func (p *Protocol) Version() string {
	return "3"
}

func (p *Protocol) buildAccountRequest(params exchange.AccountParams) *core.Request {
	req := core.NewRequest(http.MethodGet, pathAccount)
	req.SetParam("recvWindow", params.RecvWindow)
	req.SetRequireAuth(true)
	return req
}

func (p *Protocol) buildOpenOrdersRequest(params exchange.OpenOrdersParams) *core.Request {
	req := core.NewRequest(http.MethodGet, pathOpenOrders)
	req.SetParam("symbol", params.Symbol)
	req.SetParam("recvWindow", params.RecvWindow)
	req.SetRequireAuth(true)
	return req
}

func (p *Protocol) buildTradesRequest(params exchange.TradesParams) *core.Request {
	req := core.NewRequest(http.MethodGet, pathMyTrades)
	req.SetParam("symbol", params.Symbol.String())
	req.SetParam("limit", params.Limit)
	req.SetParam("recvWindow", params.RecvWindow)
	req.SetRequireAuth(true)
	return req
}

func (p *Protocol) buildPlaceOrderRequest(params exchange.OrderParams) *core.Request {
	path := pathOrder
	if params.IsTest() {
		path = pathOrderTest
	}

	req := core.NewRequest(http.MethodPost, path)
	req.SetParam("symbol", upper(params.Symbol))
	req.SetParam("side", upper(params.Side))
	req.SetParam("type", upper(params.Type))
	req.SetParam("quantity", normalizeDecimal(params.Quantity))
	req.SetParam("quoteOrderQty", normalizeDecimal(params.QuoteOrderQty))
	req.SetParam("price", normalizeDecimal(params.Price))
	req.SetParam("timeInForce", params.TimeInForce)
	req.SetParam("recvWindow", params.RecvWindow)
	req.SetRequireAuth(true)
	return req
}

func (p *Protocol) buildCandlesRequest(params exchange.CandlesParams) *core.Request {
	req := core.NewRequest(http.MethodGet, pathKlines)
	req.SetParam("symbol", upper(params.Symbol))
	req.SetParam("interval", params.Interval.String())
	req.SetParam("limit", params.Limit)
	req.SetParam("startTime", params.StartTime)
	req.SetParam("endTime", params.EndTime)
	return req
}

// Encode form-urlencodes params in order, skipping nil values.
func Encode(params core.Params) string {
	var b strings.Builder
	for _, kv := range params {
		if kv.Value == nil {
			continue
		}
		key := url.QueryEscape(kv.Key)
		for _, v := range expandValue(kv.Value) {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Sign drops nil params, appends the millisecond timestamp, signs the
// encoding with secret and returns the final encoded string with the
// signature appended last.
func (p *Protocol) Sign(params core.Params, secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", core.ErrNoSecret
	}

	signed := append(params.Compact(), core.Param{
		Key:   "timestamp",
		Value: strconv.FormatInt(now.UnixMilli(), 10),
	})

	query := Encode(signed)
	return query + "&signature=" + signHMAC(query, secret), nil
}

// Encode returns the wire form of req. Signed requests get timestamp,
// signature and the API key header.
func (p *Protocol) Encode(req *core.Request, creds *core.Credentials, now time.Time) (*httpClient.Request, error) {
	out := &httpClient.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: map[string]string{},
	}

	var payload string
	if req.RequireAuth {
		if creds == nil || creds.APIKey == "" {
			return nil, core.NewMissingCredentialError(core.ErrNoAPIKey)
		}
		signed, err := p.Sign(req.Params, creds.SecretKey, now)
		if err != nil {
			return nil, core.NewMissingCredentialError(err)
		}
		payload = signed
		out.Headers[HeaderAPIKey] = creds.APIKey
	} else {
		payload = Encode(req.Params)
	}

	if req.HasBody() {
		out.Body = payload
		out.ContentType = httpClient.ContentTypeForm
	} else {
		out.Query = payload
	}
	return out, nil
}

// ParseResponse turns an HTTP response into decoded JSON, raw text, or a
// remote error carrying the status and the decoded error body.
func (p *Protocol) ParseResponse(resp *httpClient.Response) (any, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}

	if !resp.IsSuccess() {
		return nil, p.parseError(resp)
	}

	body := resp.Body
	if isJSON(resp.ContentType(), body) {
		var result any
		if err := core.JSON.Unmarshal(body, &result); err != nil {
			return nil, core.WrapError(core.ErrorTypeUnknown, fmt.Errorf("decode response: %w", err)).
				WithCode(core.ErrCodeDecode)
		}
		return result, nil
	}
	return string(body), nil
}

func (p *Protocol) parseError(resp *httpClient.Response) *core.Error {
	var payload any
	if err := core.JSON.Unmarshal(resp.Body, &payload); err != nil {
		payload = map[string]any{"msg": string(resp.Body)}
	}

	message := fmt.Sprintf("HTTP error: %s", resp.Status)
	code := ""
	var apiErr apiError
	if err := core.JSON.Unmarshal(resp.Body, &apiErr); err == nil && apiErr.Code != 0 {
		message = apiErr.Msg
		code = strconv.Itoa(apiErr.Code)
	}

	e := core.NewRemoteError(resp.StatusCode, message, payload)
	if code != "" {
		e.Code = code
	}
	return e
}

func isJSON(contentType string, body []byte) bool {
	return strings.Contains(contentType, "application/json") ||
		bytes.HasPrefix(body, []byte("{")) ||
		bytes.HasPrefix(body, []byte("["))
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// describeAPICode classifies a Binance error code for logging.
func describeAPICode(code string) string {
	n, err := strconv.Atoi(code)
	if err != nil {
		return ""
	}
	switch n {
	case -1003, -1015:
		return "rate_limit"
	case -1021:
		return "timestamp_outside_recv_window"
	case -1022, -2014, -2015:
		return "authentication"
	case -2010, -2011, -2013:
		return "order_rejected"
	case -1100, -1101, -1102, -1103, -1104, -1105:
		return "bad_request"
	default:
		if n <= -1000 && n > -2000 {
			return "bad_request"
		}
		if n <= -2000 && n > -3000 {
			return "invalid_order"
		}
		return "unknown"
	}
}
