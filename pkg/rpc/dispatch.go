package rpc

import (
	"context"

	"bnmcp/pkg/core"
	"bnmcp/pkg/exchange"
)

// handler runs a decoded, validated operation against an exchange client.
type handler func(ctx context.Context, ex exchange.Exchange) (any, error)

// prepare decodes params into op's contract and returns the bound call.
// Every remote operation must have a case here; the dispatch test walks
// core.Operations to enforce it.
func prepare(op core.Operation, params []byte) (handler, error) {
	switch op {
	case core.OpGetAccount:
		return bind(params, exchange.Exchange.GetAccount)
	case core.OpGetOpenOrders:
		return bind(params, exchange.Exchange.GetOpenOrders)
	case core.OpGetTrades:
		return bind(params, exchange.Exchange.GetTrades)
	case core.OpPlaceOrder:
		return bind(params, exchange.Exchange.PlaceOrder)
	case core.OpGetCandles:
		return bind(params, exchange.Exchange.GetCandles)
	default:
		return nil, core.NewUnknownMethodError(op.String())
	}
}

func bind[P exchange.Contract](params []byte, call func(exchange.Exchange, context.Context, P) (any, error)) (handler, error) {
	p, err := exchange.DecodeParams[P](params)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, ex exchange.Exchange) (any, error) {
		return call(ex, ctx, p)
	}, nil
}
