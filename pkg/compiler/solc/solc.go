// Package solc runs the solc compiler in standard JSON mode.
package solc

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/bryanl/solidity-language-server/pkg/compiler"
	"github.com/bryanl/solidity-language-server/pkg/tracing"
)

// DefaultPath is the solc binary used when no path is configured.
const DefaultPath = "solc"

// Option configures an Engine.
type Option func(*Engine)

// WithArgs appends extra command line arguments to every solc invocation.
func WithArgs(args ...string) Option {
	return func(e *Engine) {
		e.args = append(e.args, args...)
	}
}

// Engine compiles sources with solc.
type Engine struct {
	path        string
	args        []string
	logger      logrus.FieldLogger
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

var _ compiler.Engine = (*Engine)(nil)

// New creates an instance of Engine.
func New(path string, logger logrus.FieldLogger, opts ...Option) *Engine {
	if path == "" {
		path = DefaultPath
	}

	e := &Engine{
		path:        path,
		logger:      logger.WithField("component", "solc"),
		execCommand: exec.CommandContext,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compile runs solc over input and returns the errors it reports.
func (e *Engine) Compile(ctx context.Context, input compiler.Input) ([]compiler.Error, error) {
	span, ctx := tracing.ChildSpan(ctx, "solc")
	defer span.Finish()

	stdin, err := buildInput(input)
	if err != nil {
		return nil, err
	}

	args := []string{"--standard-json"}
	if input.BasePath != "" {
		args = append(args, "--base-path", input.BasePath)
	}
	args = append(args, e.args...)

	var stdout, stderr bytes.Buffer
	cmd := e.execCommand(ctx, e.path, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := e.logger.WithField("sources", len(input.Sources))
	logger.WithField("args", args).Debug("running solc")

	runErr := cmd.Run()
	if !gjson.ValidBytes(stdout.Bytes()) {
		if runErr == nil {
			runErr = errors.New("invalid standard JSON output")
		}

		span.LogFields(log.Error(runErr))
		return nil, errors.Wrapf(runErr, "running %s: %s", e.path, strings.TrimSpace(stderr.String()))
	}

	if runErr != nil {
		logger.WithError(runErr).Warn("solc exited with an error")
	}

	errs, err := parseOutput(stdout.Bytes())
	if err != nil {
		span.LogFields(log.Error(err))
		return nil, err
	}

	span.SetTag("errors", len(errs))
	logger.WithField("errors", len(errs)).Debug("solc finished")

	return errs, nil
}

type standardSource struct {
	Content string `json:"content"`
}

type standardSettings struct {
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

type standardInput struct {
	Language string                    `json:"language"`
	Sources  map[string]standardSource `json:"sources"`
	Settings standardSettings          `json:"settings"`
}

// buildInput creates the standard JSON input for input. The output selection
// is empty so solc only runs analysis.
func buildInput(input compiler.Input) ([]byte, error) {
	si := standardInput{
		Language: "Solidity",
		Sources:  make(map[string]standardSource, len(input.Sources)),
		Settings: standardSettings{
			OutputSelection: map[string]map[string][]string{},
		},
	}

	for name, content := range input.Sources {
		si.Sources[name] = standardSource{Content: content}
	}

	data, err := json.Marshal(&si)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling standard JSON input")
	}

	return data, nil
}

// parseOutput reads the errors from solc's standard JSON output.
func parseOutput(data []byte) ([]compiler.Error, error) {
	var errs []compiler.Error

	for _, item := range gjson.GetBytes(data, "errors").Array() {
		severity, ok := compiler.ParseSeverity(item.Get("severity").String())
		if !ok {
			return nil, errors.Errorf("unknown severity %q", item.Get("severity").String())
		}

		ce := compiler.Error{
			Type:     item.Get("type").String(),
			Severity: severity,
			Comment:  item.Get("message").String(),
		}

		if code := item.Get("errorCode"); code.Exists() {
			id, err := strconv.ParseUint(code.String(), 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing error code %q", code.String())
			}
			ce.ID = id
		}

		if loc := item.Get("sourceLocation"); loc.Exists() {
			l := parseLocation(loc)
			ce.Location = &l
		}

		for _, secondary := range item.Get("secondarySourceLocations").Array() {
			ce.Secondary = append(ce.Secondary, compiler.SecondaryLocation{
				Message:  secondary.Get("message").String(),
				Location: parseLocation(secondary),
			})
		}

		errs = append(errs, ce)
	}

	return errs, nil
}

func parseLocation(r gjson.Result) compiler.SourceLocation {
	offset := func(key string) int {
		v := r.Get(key)
		if !v.Exists() {
			return -1
		}
		return int(v.Int())
	}

	return compiler.SourceLocation{
		Source: r.Get("file").String(),
		Start:  offset("start"),
		End:    offset("end"),
	}
}
