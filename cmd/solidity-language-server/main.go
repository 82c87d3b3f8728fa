package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanl/solidity-language-server/pkg/compiler/solc"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/options"
	"github.com/bryanl/solidity-language-server/pkg/server"
	"github.com/bryanl/solidity-language-server/pkg/tracing"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath   string
		solcPath     string
		tracingAgent string
		debug        bool
	)

	cmd := &cobra.Command{
		Use:          "solidity-language-server",
		Short:        "Language server reporting solc diagnostics over stdio",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := options.Load(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("debug") {
				opts.Log.Debug = debug
			}
			if flags.Changed("solc") {
				opts.Solc.Path = solcPath
			}
			if flags.Changed("tracing-agent") {
				opts.Tracing.Agent = tracingAgent
			}

			if err := opts.Validate(); err != nil {
				return err
			}

			logger := initLogger(opts)

			if err := run(logger, opts); err != nil {
				logger.Error(err.Error())
				return err
			}

			logger.Info("exiting")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to an options file")
	cmd.Flags().StringVar(&solcPath, "solc", solc.DefaultPath, "path to the solc binary")
	cmd.Flags().StringVar(&tracingAgent, "tracing-agent", "", "jaeger agent address, tracing is disabled if empty")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

func run(logger logrus.FieldLogger, opts *options.Options) error {
	if opts.Tracing.Agent != "" {
		zapLogger, err := zap.NewProduction()
		if err != nil {
			return errors.Wrap(err, "creating tracing logger")
		}
		defer zapLogger.Sync()

		tracer, closer, err := tracing.Init(opts.Tracing.Service, opts.Tracing.Agent, zapLogger)
		if err != nil {
			return err
		}
		defer closer.Close()

		opentracing.SetGlobalTracer(tracer)
		logger.WithField("agent", opts.Tracing.Agent).Info("tracing enabled")
	}

	engine := solc.New(opts.Solc.Path, logger, solc.WithArgs(opts.Solc.Args...))

	var transportOpts []lsp.TransportOpt
	if opts.Log.Debug {
		transportOpts = append(transportOpts, server.LogMessages(logger)...)
	}

	logger.Info("scanning stdin")

	transport := lsp.NewTransport(os.Stdin, bufio.NewWriter(os.Stdout), transportOpts...)
	s := server.New(transport, engine, logger, server.WithTracer(opentracing.GlobalTracer()))

	if !s.Run(context.Background()) {
		return errors.New("client exited without requesting shutdown")
	}

	return nil
}

func initLogger(opts *options.Options) logrus.FieldLogger {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Formatter = &logrus.TextFormatter{}
	logger.SetLevel(opts.LogLevel())

	logger.AddHook(&logContextHook{})

	return logger.WithFields(logrus.Fields{
		"app":     "solidity-language-server",
		"session": uuid.New().String(),
	})
}

type logContextHook struct{}

func (hook logContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook logContextHook) Fire(entry *logrus.Entry) error {
	if pc, file, line, ok := runtime.Caller(9); ok {
		funcName := runtime.FuncForPC(pc).Name()

		entry.Data["source"] = fmt.Sprintf("%s:%v:%s",
			filepath.Base(file), line, filepath.Base(funcName))
	}

	return nil
}
