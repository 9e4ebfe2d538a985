package rpc

import (
	"encoding/json"

	"bnmcp/pkg/exchange"
)

// Version is the only protocol version this server speaks.
const Version = "2.0"

// JSON-RPC error codes.
const (
	// CodeParseError marks an input line that is not a JSON object.
	CodeParseError = -32700
	// CodeServerError marks every application-level failure.
	CodeServerError = -32000
)

var nullID = json.RawMessage("null")

// Request is one input line. Members are kept raw so the id is echoed
// byte for byte and params can be decoded into the operation's contract.
// The jsonrpc member is not checked.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method json.RawMessage `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is one output line. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error member of a response. Message is either a string or
// a structured Failure.
type Error struct {
	Code    int `json:"code"`
	Message any `json:"message"`
}

// Failure is the structured message of remote and network errors.
type Failure struct {
	Status  any `json:"status"`
	Payload any `json:"payload"`
}

// Pong is the result of ping.
type Pong struct {
	Pong bool  `json:"pong"`
	Time int64 `json:"time"`
}

// connection holds the per-request overrides accepted by every exchange method.
type connection struct {
	APIKey    exchange.Text `json:"apiKey"`
	APISecret exchange.Text `json:"apiSecret"`
	BaseURL   exchange.Text `json:"baseUrl"`
}

func idOrNull(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}
