// Package rpc is a minimal JSON-RPC 2.0 client for the XMRig HTTP API.
//
// XMRig serves JSON-RPC on POST /json_rpc and protects it with a bearer
// access token. Only the parameterless control methods are used here.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the only valid JSON-RPC version string.
const Version = "2.0"

// Control methods understood by XMRig.
const (
	MethodPause  = "pause"
	MethodResume = "resume"
	MethodStop   = "stop"
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *errorObject    `json:"error,omitempty"`
}

type errorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error is returned for every failed call: transport failures, rejected
// credentials, non-2xx statuses and JSON-RPC error objects.
type Error struct {
	Method  string
	Status  int // HTTP status, 0 when no response was received
	Code    int // JSON-RPC error code, 0 when the failure was not an error object
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("rpc %s: error %d: %s", e.Method, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("rpc %s: http %d: %s", e.Method, e.Status, e.Message)
	default:
		return fmt.Sprintf("rpc %s: %s", e.Method, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the server rejected the bearer token.
func (e *Error) IsAuth() bool {
	return e.Status == 401 || e.Status == 403
}
