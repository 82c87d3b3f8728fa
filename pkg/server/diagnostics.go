package server

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/bryanl/solidity-language-server/pkg/compiler"
	"github.com/bryanl/solidity-language-server/pkg/config"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/tracing"
	"github.com/bryanl/solidity-language-server/pkg/util/position"
)

const diagnosticSource = "solc"

// compileAndUpdateDiagnostics compiles every known document and publishes
// diagnostics for each of them. Documents without errors are published with
// an empty list so stale diagnostics are cleared.
func (s *Server) compileAndUpdateDiagnostics(ctx context.Context) error {
	span, ctx := tracing.ChildSpan(ctx, "compileAndUpdateDiagnostics")
	defer span.Finish()

	input := compiler.Input{
		BasePath: s.config.BasePath(),
		Sources:  s.config.Sources(),
	}

	errs, err := s.engine.Compile(ctx, input)
	if err != nil {
		span.LogFields(log.Error(err))
		return errors.Wrap(err, "compiling sources")
	}

	buckets := make(map[string][]lsp.Diagnostic)
	for _, ce := range errs {
		if ce.Location == nil || ce.Location.Source == "" {
			continue
		}

		td, ok := s.document(ce.Location.Source)
		if !ok {
			continue
		}

		name := td.Name()
		buckets[name] = append(buckets[name], s.toDiagnostic(ce, td))
	}

	names := s.config.Names()
	span.LogFields(
		log.Int("errors", len(errs)),
		log.Int("documents", len(names)),
	)

	for _, name := range names {
		td, _ := s.config.Document(name)

		diagnostics := buckets[name]
		if diagnostics == nil {
			diagnostics = make([]lsp.Diagnostic, 0)
		}

		params := &lsp.PublishDiagnosticsParams{
			URI:         td.URI(),
			Diagnostics: diagnostics,
		}

		if err := s.transport.Notify(lsp.MethodTextDocumentPublishDiagnostics, params); err != nil {
			return errors.Wrapf(err, "publishing diagnostics for %q", name)
		}
	}

	return nil
}

// document returns a known document. Source units the compiler read on its
// own are loaded from disk and become known.
func (s *Server) document(name string) (*config.TextDocument, bool) {
	if td, ok := s.config.Document(name); ok {
		return td, true
	}

	td, err := s.config.Load(name)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Debug("dropping diagnostic for unknown source unit")
		return nil, false
	}

	return td, true
}

func (s *Server) toDiagnostic(ce compiler.Error, td *config.TextDocument) lsp.Diagnostic {
	d := lsp.Diagnostic{
		Range:    toRange(td, *ce.Location),
		Severity: toSeverity(ce.Severity),
		Code:     ce.ID,
		Source:   diagnosticSource,
		Message:  ce.Description(),
	}

	for _, secondary := range ce.Secondary {
		if secondary.Location.Source == "" {
			continue
		}

		std, ok := s.document(secondary.Location.Source)
		if !ok {
			continue
		}

		d.RelatedInformation = append(d.RelatedInformation, lsp.DiagnosticRelatedInformation{
			Location: lsp.Location{
				URI:   std.URI(),
				Range: toRange(std, secondary.Location),
			},
			Message: secondary.Message,
		})
	}

	return d
}

// toRange converts a location to a range. Locations without text map to the
// start of the document.
func toRange(td *config.TextDocument, loc compiler.SourceLocation) lsp.Range {
	if !loc.HasText() {
		return lsp.Range{}
	}

	return position.NewRange(td.String(), loc.Start, loc.End)
}

func toSeverity(severity compiler.Severity) lsp.DiagnosticSeverity {
	switch severity {
	case compiler.SeverityError:
		return lsp.SeverityError
	case compiler.SeverityWarning:
		return lsp.SeverityWarning
	case compiler.SeverityInfo:
		return lsp.SeverityInformation
	default:
		panic(fmt.Sprintf("unknown severity %s", severity))
	}
}
