package lsp

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sourcegraph/jsonrpc2"
)

var (
	// ErrClosed is returned by Receive when the input stream has ended.
	ErrClosed = errors.New("transport closed")

	// ErrParse is the cause of errors returned by Receive for malformed
	// frames or payloads. The transport has already answered them with a
	// ParseError.
	ErrParse = errors.New("parse error")
)

const headerContentLength = "content-length"

// TransportOpt configures a Transport.
type TransportOpt func(*Transport)

// OnRecv causes fn to be called for every message received.
func OnRecv(fn func(*Message)) TransportOpt {
	return func(t *Transport) {
		t.onRecv = append(t.onRecv, fn)
	}
}

// OnSend causes fn to be called for every message before it is written. The
// value is a *NotificationMessage or a *ResponseMessage.
func OnSend(fn func(interface{})) TransportOpt {
	return func(t *Transport) {
		t.onSend = append(t.onSend, fn)
	}
}

// Transport reads and writes Content-Length framed JSON-RPC messages.
// It is not safe for concurrent use.
type Transport struct {
	in     *bufio.Reader
	out    io.Writer
	codec  jsonrpc2.VSCodeObjectCodec
	closed bool

	onRecv []func(*Message)
	onSend []func(interface{})
}

// NewTransport creates an instance of Transport.
func NewTransport(r io.Reader, w io.Writer, opts ...TransportOpt) *Transport {
	t := &Transport{
		in:  bufio.NewReader(r),
		out: w,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Closed returns true once the input stream has been exhausted.
func (t *Transport) Closed() bool {
	return t.closed
}

// Receive reads the next message. Malformed input is answered with a
// ParseError and reported as an error caused by ErrParse; the next call
// continues with the following frame.
func (t *Transport) Receive() (*Message, error) {
	headers, err := t.readHeaders()
	if err != nil {
		if err == io.EOF {
			t.closed = true
			return nil, ErrClosed
		}
		return nil, t.parseFailure("Could not parse RPC headers.", err)
	}

	value, ok := headers[headerContentLength]
	if !ok {
		return nil, t.parseFailure("No content-length header found.", nil)
	}

	length, err := strconv.ParseUint(value, 10, 31)
	if err != nil {
		return nil, t.parseFailure("Invalid content-length header.", err)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(t.in, body); err != nil {
		t.closed = true
		return nil, t.parseFailure("Could not read RPC payload.", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		if err == nil {
			err = errors.New("payload is not an object")
		}
		return nil, t.parseFailure("Could not parse RPC JSON payload. "+err.Error(), err)
	}

	m := decodeMessage(fields)
	for _, fn := range t.onRecv {
		fn(m)
	}

	return m, nil
}

// readHeaders reads header lines up to the blank line ending the header
// block. io.EOF is returned only if the stream ended before a new frame began.
func (t *Transport) readHeaders() (map[string]string, error) {
	headers := make(map[string]string)
	started := false

	for {
		line, err := t.in.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			if !started && line == "" {
				return nil, io.EOF
			}
			t.closed = true
			return nil, errors.New("unexpected end of headers")
		}
		started = true

		line = strings.TrimSpace(line)
		if line == "" {
			return headers, nil
		}

		i := strings.IndexByte(line, ':')
		if i < 0 {
			return nil, errors.Errorf("malformed header %q", line)
		}

		name := strings.ToLower(strings.TrimSpace(line[:i]))
		headers[name] = strings.TrimSpace(line[i+1:])
	}
}

func (t *Transport) parseFailure(message string, cause error) error {
	if err := t.Error(nil, ParseError, message); err != nil {
		return errors.Wrap(err, "replying to malformed message")
	}

	if cause != nil {
		return errors.Wrapf(ErrParse, "%s: %v", message, cause)
	}
	return errors.Wrap(ErrParse, message)
}

// Notify sends a notification.
func (t *Transport) Notify(method string, params interface{}) error {
	return t.send(&NotificationMessage{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	})
}

// Reply sends a successful response to a request.
func (t *Transport) Reply(id *jsonrpc2.ID, result interface{}) error {
	return t.send(&ResponseMessage{
		ID:     id,
		Result: result,
	})
}

// Error sends an error response. A nil id is sent as null.
func (t *Transport) Error(id *jsonrpc2.ID, code ErrorCode, message string) error {
	return t.send(&ResponseMessage{
		ID: id,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

type flusher interface {
	Flush() error
}

func (t *Transport) send(v interface{}) error {
	for _, fn := range t.onSend {
		fn(v)
	}

	if err := t.codec.WriteObject(t.out, v); err != nil {
		return errors.Wrap(err, "writing message")
	}

	if f, ok := t.out.(flusher); ok {
		return f.Flush()
	}

	return nil
}
