package server

import (
	"context"

	"github.com/bryanl/solidity-language-server/pkg/config"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
)

func (s *Server) didOpen(ctx context.Context, r *request) (interface{}, error) {
	var params lsp.DidOpenTextDocumentParams
	if err := r.Decode(&params); err != nil {
		return nil, err
	}

	if params.TextDocument == nil {
		return nil, lsp.NewError(lsp.RequestFailed, "Text document parameter missing.")
	}

	td := config.NewTextDocument(params.TextDocument.URI, params.TextDocument.Text)
	s.config.StoreTextDocumentItem(td)

	return nil, s.compileAndUpdateDiagnostics(ctx)
}

func (s *Server) didChange(ctx context.Context, r *request) (interface{}, error) {
	var params lsp.DidChangeTextDocumentParams
	if err := r.Decode(&params); err != nil {
		return nil, err
	}

	if err := s.config.UpdateTextDocumentItem(params.TextDocument.URI, params.ContentChanges); err != nil {
		return nil, err
	}

	return nil, s.compileAndUpdateDiagnostics(ctx)
}
