package server

import (
	"context"
	"encoding/json"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
)

func (s *Server) updateClientConfiguration(ctx context.Context, r *request) (interface{}, error) {
	span := opentracing.SpanFromContext(ctx)

	var params lsp.DidChangeConfigurationParams
	if err := r.Decode(&params); err != nil {
		return nil, err
	}

	var settings map[string]interface{}
	if len(params.Settings) == 0 || json.Unmarshal(params.Settings, &settings) != nil || settings == nil {
		r.logger.Debug("ignoring settings that are not an object")
		return nil, nil
	}

	s.config.UpdateClientConfiguration(settings)
	span.LogFields(log.String("config", s.config.String()))

	return nil, nil
}
