package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"
)

// Version is the JSON-RPC protocol version carried by every envelope.
const Version = "2.0"

// Message is an inbound JSON-RPC message.
type Message struct {
	// ID is nil for notifications, or when the id could not be decoded.
	ID     *jsonrpc2.ID
	Method string
	Params json.RawMessage

	// Result and Error are set when the message is a response.
	Result json.RawMessage
	Error  *Error
}

// IsResponse returns true if the message answers a request instead of
// invoking a method.
func (m *Message) IsResponse() bool {
	return m.Method == "" && (m.Result != nil || m.Error != nil)
}

func decodeMessage(fields map[string]json.RawMessage) *Message {
	m := &Message{
		Params: fields["params"],
		Result: fields["result"],
	}

	if raw, ok := fields["method"]; ok {
		var method string
		if err := json.Unmarshal(raw, &method); err == nil {
			m.Method = method
		}
	}

	if raw, ok := fields["id"]; ok && !isNull(raw) {
		var id jsonrpc2.ID
		if err := json.Unmarshal(raw, &id); err == nil {
			m.ID = &id
		}
	}

	if raw, ok := fields["error"]; ok && !isNull(raw) {
		var e Error
		if err := json.Unmarshal(raw, &e); err == nil {
			m.Error = &e
		}
	}

	return m
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// NotificationMessage is an outbound notification.
type NotificationMessage struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// ResponseMessage is an outbound response. It carries either a result or
// an error. A nil ID is written as null.
type ResponseMessage struct {
	ID     *jsonrpc2.ID
	Result interface{}
	Error  *Error
}

// MarshalJSON marshals a response, emitting `result` only when there is no
// error so that a null result is still present on success.
func (r *ResponseMessage) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(&struct {
			JSONRPC string       `json:"jsonrpc"`
			ID      *jsonrpc2.ID `json:"id"`
			Error   *Error       `json:"error"`
		}{Version, r.ID, r.Error})
	}

	return json.Marshal(&struct {
		JSONRPC string       `json:"jsonrpc"`
		ID      *jsonrpc2.ID `json:"id"`
		Result  interface{}  `json:"result"`
	}{Version, r.ID, r.Result})
}

// Error is a JSON-RPC error object. Handlers return it to pick the code of
// the error reply.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NewError creates an Error.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Code, e.Message)
}

// ErrorCode is a JSON-RPC error code.
type ErrorCode int64

// Error codes from the JSON-RPC and language server protocol specifications.
const (
	ParseError     = ErrorCode(jsonrpc2.CodeParseError)
	InvalidRequest = ErrorCode(jsonrpc2.CodeInvalidRequest)
	MethodNotFound = ErrorCode(jsonrpc2.CodeMethodNotFound)
	InvalidParams  = ErrorCode(jsonrpc2.CodeInvalidParams)
	InternalError  = ErrorCode(jsonrpc2.CodeInternalError)

	// Defined by the language server protocol.
	RequestFailed ErrorCode = -32803
)

func (c ErrorCode) String() string {
	switch c {
	case ParseError:
		return "ParseError"
	case InvalidRequest:
		return "InvalidRequest"
	case MethodNotFound:
		return "MethodNotFound"
	case InvalidParams:
		return "InvalidParams"
	case InternalError:
		return "InternalError"
	case RequestFailed:
		return "RequestFailed"
	default:
		return "UnknownErrorCode"
	}
}
