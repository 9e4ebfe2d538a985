package core

import "net/http"

// Param is a single named request parameter. A nil Value marks the
// parameter as absent.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter list. Order is preserved on the wire.
type Params []Param

// Compact returns a copy of p without nil-valued entries.
func (p Params) Compact() Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		if kv.Value == nil {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// Request describes a single exchange call before it is encoded.
type Request struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Params      Params `json:"params,omitempty"`
	RequireAuth bool   `json:"require_auth"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
	}
}

// SetParam appends a parameter. Setting an existing key replaces its value
// in place and keeps its position.
func (r *Request) SetParam(key string, value any) *Request {
	for i := range r.Params {
		if r.Params[i].Key == key {
			r.Params[i].Value = value
			return r
		}
	}
	r.Params = append(r.Params, Param{Key: key, Value: value})
	return r
}

func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}

// HasBody reports whether parameters travel in the request body.
func (r *Request) HasBody() bool {
	return r.Method == http.MethodPost || r.Method == http.MethodPut
}
