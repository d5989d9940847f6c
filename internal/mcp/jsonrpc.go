package mcp

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 error codes. The -32xxx range below -32603 is reserved for
// server-defined conditions; clients match on these to tell an actionable
// failure apart from a generic internal error.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodePortInUse signals that the OAuth redirect port is already bound,
	// usually by a second cal2prompt instance.
	CodePortInUse = -32001

	// CodeUnknownAccount signals a tool call naming an account that is not
	// in the config.
	CodeUnknownAccount = -32002
)

// Error is a JSON-RPC 2.0 error object. It implements error so tool
// handlers can return it directly and have the dispatcher send it as-is.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Errorf builds an Error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// request is one incoming message. A missing id marks a notification; a
// missing method marks a response echoed back by a confused client.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// response is one outgoing message. The id mirrors the request's raw id
// bytes so number and string ids round-trip untouched.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}
