// Package server implements a language server that reports compiler
// diagnostics for the documents an editor has open.
package server

import (
	"context"
	"encoding/json"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/bryanl/solidity-language-server/pkg/compiler"
	"github.com/bryanl/solidity-language-server/pkg/config"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
)

const serverName = "solidity-language-server"

// Version is the server version reported to clients.
var Version = "0.1.0"

// Transport sends and receives messages.
type Transport interface {
	Receive() (*lsp.Message, error)
	Closed() bool
	Notify(method string, params interface{}) error
	Reply(id *jsonrpc2.ID, result interface{}) error
	Error(id *jsonrpc2.ID, code lsp.ErrorCode, message string) error
}

var _ Transport = (*lsp.Transport)(nil)

type handlerFunc func(ctx context.Context, r *request) (interface{}, error)

// Opt configures a Server.
type Opt func(*Server)

// WithTracer sets the tracer used for message spans.
func WithTracer(tracer opentracing.Tracer) Opt {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// Server handles messages from a single client. A Server can only be run once.
type Server struct {
	transport Transport
	engine    compiler.Engine
	config    *config.Config
	logger    logrus.FieldLogger
	tracer    opentracing.Tracer
	handlers  map[string]handlerFunc

	shutdownRequested bool
	exitRequested     bool
}

// New creates an instance of Server.
func New(transport Transport, engine compiler.Engine, logger logrus.FieldLogger, opts ...Opt) *Server {
	s := &Server{
		transport: transport,
		engine:    engine,
		config:    config.New(logger),
		logger:    logger.WithField("component", "server"),
		tracer:    opentracing.GlobalTracer(),
	}

	s.handlers = map[string]handlerFunc{
		lsp.MethodInitialize:                      s.initialize,
		lsp.MethodInitialized:                     noop,
		lsp.MethodShutdown:                        s.shutdown,
		lsp.MethodExit:                            s.exit,
		lsp.MethodCancelRequest:                   noop,
		lsp.MethodLegacyCancelRequest:             noop,
		lsp.MethodWorkspaceDidChangeConfiguration: s.updateClientConfiguration,
		lsp.MethodTextDocumentDidOpen:             s.didOpen,
		lsp.MethodTextDocumentDidChange:           s.didChange,
		lsp.MethodTextDocumentDidClose:            noop,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Config returns the server's document store.
func (s *Server) Config() *config.Config {
	return s.config
}

// Run handles messages until the client exits or the transport is closed.
// It returns true if the client requested a shutdown before exiting.
func (s *Server) Run(ctx context.Context) bool {
	for !s.exitRequested && !s.transport.Closed() {
		m, err := s.transport.Receive()
		if err != nil {
			switch {
			case err == lsp.ErrClosed:
			case errors.Cause(err) == lsp.ErrParse:
				s.logger.WithError(err).Warn("received malformed message")
			default:
				s.logger.WithError(err).Error("receiving message")
			}
			continue
		}

		s.handle(ctx, m)
	}

	s.logger.WithField("shutdownRequested", s.shutdownRequested).Info("stopped handling messages")
	return s.shutdownRequested
}

func (s *Server) handle(ctx context.Context, m *lsp.Message) {
	if m.IsResponse() {
		s.logger.WithField("id", m.ID).Debug("ignoring response from client")
		return
	}

	span := s.tracer.StartSpan(m.Method)
	defer span.Finish()
	span.SetTag("method", m.Method)
	ctx = opentracing.ContextWithSpan(ctx, span)

	logger := s.logger.WithField("method", m.Method)
	if m.ID != nil {
		logger = logger.WithField("id", m.ID.String())
	}

	fn, ok := s.handlers[m.Method]
	if !ok {
		s.replyError(logger, m.ID, lsp.NewError(lsp.MethodNotFound, "Unknown method %s", m.Method))
		return
	}

	r := &request{
		id:     m.ID,
		params: m.Params,
		logger: logger,
	}

	result, err := invoke(ctx, fn, r)
	if err != nil {
		ext.Error.Set(span, true)
		span.LogFields(log.Error(err))
		s.replyError(logger, m.ID, err)
		return
	}

	if m.ID == nil {
		return
	}

	if err := s.transport.Reply(m.ID, result); err != nil {
		logger.WithError(err).Error("reply error")
	}
}

// invoke calls fn. A panic is returned as an error.
func invoke(ctx context.Context, fn handlerFunc, r *request) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("%v", p)
		}
	}()

	return fn(ctx, r)
}

// replyError replies with the code of err if it has one. Any other error is
// an internal error.
func (s *Server) replyError(logger logrus.FieldLogger, id *jsonrpc2.ID, err error) {
	code := lsp.InternalError
	message := "Unhandled exception: " + err.Error()

	if rpcErr, ok := errors.Cause(err).(*lsp.Error); ok {
		code = rpcErr.Code
		message = rpcErr.Message
	}

	logger.WithError(err).WithField("code", code.String()).Warn("handling message")

	if sendErr := s.transport.Error(id, code, message); sendErr != nil {
		logger.WithError(sendErr).Error("reply error")
	}
}

type request struct {
	id     *jsonrpc2.ID
	params json.RawMessage
	logger logrus.FieldLogger
}

// Decode decodes the request's params into v. Missing params leave v
// untouched.
func (r *request) Decode(v interface{}) error {
	if len(r.params) == 0 || string(r.params) == "null" {
		return nil
	}

	if err := json.Unmarshal(r.params, v); err != nil {
		return lsp.NewError(lsp.InvalidParams, "Invalid parameters: %v", err)
	}

	return nil
}

func noop(context.Context, *request) (interface{}, error) {
	return nil, nil
}

func (s *Server) shutdown(ctx context.Context, r *request) (interface{}, error) {
	s.shutdownRequested = true
	return nil, nil
}

func (s *Server) exit(ctx context.Context, r *request) (interface{}, error) {
	s.exitRequested = true
	return nil, nil
}
