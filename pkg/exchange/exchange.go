package exchange

import (
	"context"

	"github.com/rs/zerolog"

	"bnmcp/pkg/core"
)

// Exchange is the set of remote operations reachable over the RPC channel.
// Every method returns the decoded exchange response or a *core.Error.
type Exchange interface {
	GetAccount(ctx context.Context, p AccountParams) (any, error)
	GetOpenOrders(ctx context.Context, p OpenOrdersParams) (any, error)
	GetTrades(ctx context.Context, p TradesParams) (any, error)
	PlaceOrder(ctx context.Context, p OrderParams) (any, error)
	GetCandles(ctx context.Context, p CandlesParams) (any, error)

	Close() error
}

// Factory builds a fresh Exchange for a single request.
type Factory func(config *core.Config, logger zerolog.Logger) (Exchange, error)
