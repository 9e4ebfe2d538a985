package core

// Operation represents a method a caller can invoke over the RPC channel.
type Operation int

// Operation constants define the closed set of supported methods.
const (
	// OpPing is a liveness probe answered locally.
	OpPing Operation = iota
	// OpGetAccount retrieves the signed account snapshot.
	OpGetAccount
	// OpGetOpenOrders retrieves open orders, optionally for one symbol.
	OpGetOpenOrders
	// OpGetTrades retrieves the account's trade history for a symbol.
	OpGetTrades
	// OpPlaceOrder submits a new order, or a test order.
	OpPlaceOrder
	// OpGetCandles retrieves public kline data.
	OpGetCandles
)

var operationNames = [...]string{
	"ping",
	"get_account",
	"get_open_orders",
	"get_trades",
	"place_order",
	"get_candles",
}

// Operations returns every supported operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, len(operationNames))
	for i := range operationNames {
		ops[i] = Operation(i)
	}
	return ops
}

// String returns the RPC method name of the operation.
func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return "unknown"
	}
	return operationNames[o]
}

// ParseOperation resolves an RPC method name.
func ParseOperation(method string) (Operation, bool) {
	for i, name := range operationNames {
		if name == method {
			return Operation(i), true
		}
	}
	return 0, false
}

// RequiresAuth reports whether the operation needs both an API key and a
// secret before a client may be built for it.
func (o Operation) RequiresAuth() bool {
	switch o {
	case OpGetAccount, OpGetOpenOrders, OpGetTrades, OpPlaceOrder:
		return true
	default:
		return false
	}
}

// IsLocal reports whether the operation is answered without an exchange client.
func (o Operation) IsLocal() bool {
	return o == OpPing
}
