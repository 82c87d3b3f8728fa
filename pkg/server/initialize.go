package server

import (
	"context"
	"encoding/json"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/util/uri"
)

func (s *Server) initialize(ctx context.Context, r *request) (interface{}, error) {
	span := opentracing.SpanFromContext(ctx)

	var ip lsp.InitializeParams
	if err := r.Decode(&ip); err != nil {
		return nil, err
	}

	rootPath := "/"
	switch {
	case ip.RootURI != nil:
		path, err := uri.ToPath(*ip.RootURI)
		if err != nil {
			return nil, lsp.NewError(lsp.InvalidParams, "rootUri only supports file URI scheme.")
		}
		rootPath = path
	case ip.RootPath != nil:
		rootPath = *ip.RootPath
	}

	s.config.SetBasePath(rootPath)

	var update map[string]interface{}
	if len(ip.InitializationOptions) > 0 {
		if err := json.Unmarshal(ip.InitializationOptions, &update); err == nil && update != nil {
			s.config.UpdateClientConfiguration(update)
		}
	}

	span.LogFields(
		log.String("workspace", rootPath),
		log.String("config", s.config.String()),
	)
	r.logger.WithField("workspace", rootPath).Info("initializing")

	response := &lsp.InitializeResult{
		ServerInfo: &lsp.ServerInfo{
			Name:    serverName,
			Version: Version,
		},
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    lsp.TDSKIncremental,
			},
		},
	}

	return response, nil
}
