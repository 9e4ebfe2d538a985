package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	httpClient "bnmcp/internal/http"
	"bnmcp/internal/keyring"
	"bnmcp/pkg/core"
	"bnmcp/pkg/exchange"
)

// BinanceExchange implements exchange.Exchange for the Binance spot REST API.
// An instance is built per request and never shared between requests.
type BinanceExchange struct {
	config     *core.Config
	httpClient *httpClient.Client
	logger     zerolog.Logger
	protocol   *Protocol
	clock      func() time.Time
}

// Option is a functional option for configuring the BinanceExchange.
type Option func(*Options)

// Options holds configuration options for the BinanceExchange.
type Options struct {
	Logger zerolog.Logger
	Clock  func() time.Time
}

// WithLogger returns an option that sets the logger for the exchange.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithClock returns an option that replaces the clock used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// New creates a new BinanceExchange instance with the given configuration and options.
func New(config *core.Config, opts ...Option) (*BinanceExchange, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	protocol := NewProtocol()
	logger := options.Logger.With().
		Str("exchange", protocol.Name()).
		Str("api_version", protocol.Version()).
		Logger()

	hc, err := httpClient.NewClient(&httpClient.Config{
		BaseURL:   config.BaseURL,
		Timeout:   config.Timeout,
		UserAgent: config.UserAgent,
		Logger:    &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &BinanceExchange{
		config:     config,
		httpClient: hc,
		logger:     logger,
		protocol:   protocol,
		clock:      options.Clock,
	}, nil
}

// Factory adapts New to exchange.Factory.
func Factory(config *core.Config, logger zerolog.Logger) (exchange.Exchange, error) {
	return New(config, WithLogger(logger))
}

// Close releases resources used by the exchange, including the HTTP client.
func (e *BinanceExchange) Close() error {
	if e.httpClient != nil {
		return e.httpClient.Close()
	}
	return nil
}

// GetAccount retrieves the signed account snapshot.
func (e *BinanceExchange) GetAccount(ctx context.Context, p exchange.AccountParams) (any, error) {
	return e.do(ctx, e.protocol.buildAccountRequest(p))
}

// GetOpenOrders retrieves open orders, optionally filtered by symbol.
func (e *BinanceExchange) GetOpenOrders(ctx context.Context, p exchange.OpenOrdersParams) (any, error) {
	return e.do(ctx, e.protocol.buildOpenOrdersRequest(p))
}

// GetTrades retrieves the account's trades for a symbol.
func (e *BinanceExchange) GetTrades(ctx context.Context, p exchange.TradesParams) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return e.do(ctx, e.protocol.buildTradesRequest(p))
}

// PlaceOrder submits an order, or a test order when p.Test is truthy.
func (e *BinanceExchange) PlaceOrder(ctx context.Context, p exchange.OrderParams) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return e.do(ctx, e.protocol.buildPlaceOrderRequest(p))
}

// GetCandles retrieves public kline data. No credentials are needed.
func (e *BinanceExchange) GetCandles(ctx context.Context, p exchange.CandlesParams) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return e.do(ctx, e.protocol.buildCandlesRequest(p))
}

func (e *BinanceExchange) do(ctx context.Context, req *core.Request) (any, error) {
	wire, err := e.protocol.Encode(req, e.config.Credentials, e.clock())
	if err != nil {
		e.logger.Debug().Err(err).
			Str("path", req.Path).
			Str("credentials", keyring.Describe(e.config.Credentials)).
			Msg("request not sent")
		return nil, err
	}

	resp, err := e.httpClient.Do(ctx, wire)
	if err != nil {
		return nil, core.NewNetworkError(err)
	}

	result, err := e.protocol.ParseResponse(resp)
	if err != nil {
		var remote *core.Error
		if errors.As(err, &remote) && remote.Type == core.ErrorTypeRemote {
			e.logger.Warn().
				Int("status", remote.Status).
				Str("code", remote.Code).
				Str("kind", describeAPICode(remote.Code)).
				Str("path", req.Path).
				Msg("exchange rejected request")
		}
		return nil, err
	}
	return result, nil
}
