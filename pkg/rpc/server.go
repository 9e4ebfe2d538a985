package rpc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"bnmcp/internal/keyring"
	"bnmcp/pkg/core"
	"bnmcp/pkg/exchange"
)

// Server reads JSON-RPC requests line by line and answers each on its own
// line. Requests are handled strictly one after another.
type Server struct {
	config  *core.Config
	keys    *keyring.KeyRing
	factory exchange.Factory
	logger  zerolog.Logger
	clock   func() time.Time
}

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithFactory sets how a fresh exchange client is built for each request.
func WithFactory(f exchange.Factory) Option {
	return func(s *Server) {
		s.factory = f
	}
}

// WithClock replaces the clock used by ping.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// NewServer creates a Server. config supplies the process-wide defaults
// every request starts from; it is never modified.
func NewServer(config *core.Config, opts ...Option) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: config.Clone(),
		keys:   keyring.New(config.Credentials),
		logger: zerolog.Nop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		return nil, fmt.Errorf("exchange factory is required")
	}
	return s, nil
}

// Serve processes r until it is exhausted, writing one response line to w
// for every non-blank input line. End of input is not an error.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := reader.ReadBytes('\n')
		if resp, ok := s.HandleLine(ctx, line); ok {
			if err := s.write(writer, resp); err != nil {
				return err
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", readErr)
		}
	}
}

// HandleLine answers a single input line. It reports false for blank lines,
// which get no response.
func (s *Server) HandleLine(ctx context.Context, line []byte) (*Response, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}

	req, err := decodeRequest(line)
	if err != nil {
		s.logger.Warn().Err(err).Int("size", len(line)).Msg("unparseable input line")
		return errorResponse(nil, toWireError(err)), true
	}

	return s.dispatch(ctx, req), true
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	method := methodName(req.Method)
	logger := s.logger.With().
		RawJSON("id", idOrNull(req.ID)).
		Str("method", method).
		Logger()
	logger.Debug().Msg("dispatch")

	result, err := s.call(ctx, method, req.Params)
	if err == nil {
		var raw []byte
		raw, err = core.JSON.Marshal(result)
		if err == nil {
			return &Response{JSONRPC: Version, ID: idOrNull(req.ID), Result: raw}
		}
		err = fmt.Errorf("encode result: %w", err)
	}

	logger.Warn().Err(err).
		Str("kind", core.TypeOf(err).String()).
		Msg("request failed")
	return errorResponse(req.ID, toWireError(err))
}

// call runs one operation. A panic is turned into an error so one request
// can never end the loop.
func (s *Server) call(ctx context.Context, method string, rawParams []byte) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("method", method).Msg("handler panicked")
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	op, ok := core.ParseOperation(method)
	if !ok {
		return nil, core.NewUnknownMethodError(method)
	}
	if op.IsLocal() {
		return s.local(op)
	}

	params, err := objectParams(rawParams)
	if err != nil {
		return nil, err
	}

	h, err := prepare(op, params)
	if err != nil {
		return nil, err
	}

	config, err := s.resolve(params)
	if err != nil {
		return nil, err
	}
	if op.RequiresAuth() && !config.Credentials.Complete() {
		return nil, core.NewMissingCredentialError(core.ErrNoCredentials)
	}

	ex, err := s.factory(config, s.logger)
	if err != nil {
		return nil, err
	}
	defer ex.Close()

	return h(ctx, ex)
}

func (s *Server) local(op core.Operation) (any, error) {
	switch op {
	case core.OpPing:
		return Pong{Pong: true, Time: s.clock().UnixMilli()}, nil
	default:
		return nil, core.NewUnknownMethodError(op.String())
	}
}

// resolve builds the configuration for one request: explicit params win
// over the process defaults.
func (s *Server) resolve(params []byte) (*core.Config, error) {
	var conn connection
	if len(params) > 0 {
		if err := core.JSON.Unmarshal(params, &conn); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	config := s.config.Clone()
	config.Credentials = s.keys.Resolve(keyring.Override{
		APIKey:    conn.APIKey.String(),
		APISecret: conn.APISecret.String(),
	})
	if conn.BaseURL != "" {
		config.WithBaseURL(conn.BaseURL.String())
	}
	return config, nil
}

func (s *Server) write(w *bufio.Writer, resp *Response) error {
	data, err := core.JSON.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush response: %w", err)
	}
	return nil
}

func decodeRequest(line []byte) (*Request, error) {
	if line[0] != '{' {
		return nil, core.NewError(core.ErrorTypeProtocolParse, core.ErrInvalidJSON.Error()).
			WithCode(core.ErrCodeInvalidJSON)
	}
	var req Request
	if err := core.JSON.Unmarshal(line, &req); err != nil {
		return nil, core.NewError(core.ErrorTypeProtocolParse, core.ErrInvalidJSON.Error()).
			WithCode(core.ErrCodeInvalidJSON)
	}
	return &req, nil
}

// methodName returns the method as text. Non-string methods keep their
// literal JSON spelling so they show up in the unknown-method message.
func methodName(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	var name string
	if err := core.JSON.Unmarshal(raw, &name); err == nil {
		return name
	}
	return string(raw)
}

// objectParams returns params as a raw object, or nil when absent or null.
func objectParams(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, core.NewError(core.ErrorTypeUnknown, core.ErrParamsNotObject.Error())
	}
	return raw, nil
}

func errorResponse(id []byte, e *Error) *Response {
	return &Response{JSONRPC: Version, ID: idOrNull(id), Error: e}
}

// toWireError is the single place where failures take their wire shape.
func toWireError(err error) *Error {
	var e *core.Error
	if !errors.As(err, &e) {
		return &Error{Code: CodeServerError, Message: err.Error()}
	}

	switch e.Type {
	case core.ErrorTypeProtocolParse:
		return &Error{Code: CodeParseError, Message: e.Message}
	case core.ErrorTypeRemote:
		return &Error{Code: CodeServerError, Message: Failure{Status: e.Status, Payload: e.Payload}}
	case core.ErrorTypeNetwork:
		return &Error{Code: CodeServerError, Message: Failure{Status: "network_error", Payload: e.Message}}
	default:
		return &Error{Code: CodeServerError, Message: e.Message}
	}
}
