package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bnmcp/pkg/core"
	"bnmcp/pkg/exchange"
)

var _ exchange.Exchange = (*BinanceExchange)(nil)

type capturedRequest struct {
	method string
	path   string
	query  string
	body   string
	apiKey string
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.body = string(b)
		captured.apiKey = r.Header.Get(HeaderAPIKey)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func newTestExchange(t *testing.T, baseURL string, creds *core.Credentials) *BinanceExchange {
	t.Helper()
	config := core.DefaultConfig().WithBaseURL(baseURL).WithCredentials(creds)
	ex, err := New(config, WithLogger(zerolog.Nop()), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ex.Close() })
	return ex
}

func TestNew_LoggerScope(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`)

	var buf bytes.Buffer
	config := core.DefaultConfig().WithBaseURL(server.URL)
	ex, err := New(config, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)
	defer ex.Close()

	_, err = ex.GetCandles(context.Background(), exchange.CandlesParams{Symbol: "NOPE", Interval: "1h"})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"exchange":"binance"`)
	assert.Contains(t, out, `"api_version":"3"`)
	assert.Contains(t, out, `"kind":"bad_request"`)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	config := core.DefaultConfig()
	config.BaseURL = ""
	_, err = New(config)
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	ex, err := Factory(core.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, ex.Close())
}

func TestBinanceExchange_GetTrades(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `[{"id":1,"price":"30000.00"}]`)
	ex := newTestExchange(t, server.URL, &core.Credentials{APIKey: "key", SecretKey: "secret"})

	got, err := ex.GetTrades(context.Background(), exchange.TradesParams{Symbol: "BTCUSDT", Limit: json.Number("5")})
	require.NoError(t, err)

	query := "symbol=BTCUSDT&limit=5&timestamp=1700000000000"
	assert.Equal(t, http.MethodGet, captured.method)
	assert.Equal(t, pathMyTrades, captured.path)
	assert.Equal(t, query+"&signature="+signHMAC(query, "secret"), captured.query)
	assert.Equal(t, "key", captured.apiKey)
	assert.Equal(t, []any{map[string]any{"id": json.Number("1"), "price": "30000.00"}}, got)
}

func TestBinanceExchange_GetTrades_MissingSymbol(t *testing.T) {
	ex := newTestExchange(t, "http://127.0.0.1:1", &core.Credentials{APIKey: "key", SecretKey: "secret"})

	_, err := ex.GetTrades(context.Background(), exchange.TradesParams{})
	require.Error(t, err)
	assert.True(t, core.IsMissingParameter(err))
}

func TestBinanceExchange_PlaceOrder_Test(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `{}`)
	ex := newTestExchange(t, server.URL, &core.Credentials{APIKey: "key", SecretKey: "secret"})

	got, err := ex.PlaceOrder(context.Background(), exchange.OrderParams{
		Symbol:   "btcusdt",
		Side:     "buy",
		Type:     "market",
		Quantity: json.Number("0.001"),
		Test:     true,
	})
	require.NoError(t, err)

	body := "symbol=BTCUSDT&side=BUY&type=MARKET&quantity=0.001&timestamp=1700000000000"
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, pathOrderTest, captured.path)
	assert.Empty(t, captured.query)
	assert.Equal(t, body+"&signature="+signHMAC(body, "secret"), captured.body)
	assert.Equal(t, map[string]any{}, got)
}

func TestBinanceExchange_GetCandles_Unsigned(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `[[1700000000000,"1","2","0.5","1.5","10"]]`)
	ex := newTestExchange(t, server.URL, nil)

	_, err := ex.GetCandles(context.Background(), exchange.CandlesParams{
		Symbol:    "btcusdt",
		Interval:  "1h",
		Limit:     json.Number("2"),
		StartTime: json.Number("1699990000000"),
	})
	require.NoError(t, err)

	assert.Equal(t, pathKlines, captured.path)
	assert.Equal(t, "symbol=BTCUSDT&interval=1h&limit=2&startTime=1699990000000", captured.query)
	assert.Empty(t, captured.apiKey)
}

func TestBinanceExchange_GetAccount_NoCredentials(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `{}`)
	ex := newTestExchange(t, server.URL, nil)

	_, err := ex.GetAccount(context.Background(), exchange.AccountParams{})
	require.Error(t, err)
	assert.True(t, core.IsMissingCredential(err))
	assert.Empty(t, captured.path, "no request may be sent without credentials")
}

func TestBinanceExchange_GetOpenOrders(t *testing.T) {
	server, captured := newTestServer(t, http.StatusOK, `[]`)
	ex := newTestExchange(t, server.URL, &core.Credentials{APIKey: "key", SecretKey: "secret"})

	got, err := ex.GetOpenOrders(context.Background(), exchange.OpenOrdersParams{RecvWindow: json.Number("5000")})
	require.NoError(t, err)

	query := "recvWindow=5000&timestamp=1700000000000"
	assert.Equal(t, pathOpenOrders, captured.path)
	assert.Equal(t, query+"&signature="+signHMAC(query, "secret"), captured.query)
	assert.Equal(t, []any{}, got)
}

func TestBinanceExchange_RemoteError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`)
	ex := newTestExchange(t, server.URL, nil)

	_, err := ex.GetCandles(context.Background(), exchange.CandlesParams{Symbol: "NOPE", Interval: "1h"})
	require.Error(t, err)

	var e *core.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, core.ErrorTypeRemote, e.Type)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Invalid symbol.", e.Message)
}

func TestBinanceExchange_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	ex := newTestExchange(t, url, nil)

	_, err := ex.GetCandles(context.Background(), exchange.CandlesParams{Symbol: "BTCUSDT", Interval: "1m"})
	require.Error(t, err)
	assert.True(t, core.IsNetworkError(err))
}
