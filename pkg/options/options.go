// Package options loads the server's process options. Values are layered
// as defaults < YAML file < environment; command line flags are applied by
// the caller.
package options

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvSolcPath     = "SOLS_SOLC_PATH"
	EnvLogLevel     = "SOLS_LOG_LEVEL"
	EnvLogDebug     = "SOLS_LOG_DEBUG"
	EnvTracingAgent = "SOLS_TRACING_AGENT"
)

// Options are process options for the server.
type Options struct {
	Solc    Solc    `yaml:"solc"`
	Log     Log     `yaml:"log"`
	Tracing Tracing `yaml:"tracing"`
}

// Solc configures the compiler.
type Solc struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level"`
	// Debug enables debug logging of every message.
	Debug bool `yaml:"debug"`
}

// Tracing configures tracing. Tracing is disabled when Agent is empty.
type Tracing struct {
	Agent   string `yaml:"agent"`
	Service string `yaml:"service"`
}

// Defaults returns the default options.
func Defaults() Options {
	return Options{
		Solc: Solc{
			Path: "solc",
		},
		Log: Log{
			Level: "info",
		},
		Tracing: Tracing{
			Service: "solidity-language-server",
		},
	}
}

// Load returns options read from the YAML file at path and the environment.
// An empty path skips the file.
func Load(path string) (*Options, error) {
	opts := Defaults()

	if path != "" {
		if err := loadYAML(&opts, path); err != nil {
			return nil, err
		}
	}

	loadEnv(&opts)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &opts, nil
}

func loadYAML(opts *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading options file %q", path)
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return errors.Wrapf(err, "parsing options file %q", path)
	}

	return nil
}

func loadEnv(opts *Options) {
	setString(&opts.Solc.Path, EnvSolcPath)
	setString(&opts.Log.Level, EnvLogLevel)
	setBool(&opts.Log.Debug, EnvLogDebug)
	setString(&opts.Tracing.Agent, EnvTracingAgent)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Solc.Path == "" {
		return errors.New("solc path is required")
	}

	if _, err := logrus.ParseLevel(o.Log.Level); err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	if o.Tracing.Agent != "" && o.Tracing.Service == "" {
		return errors.New("tracing service name is required when tracing is enabled")
	}

	return nil
}

// LogLevel returns the configured log level. Debug forces the debug level.
func (o *Options) LogLevel() logrus.Level {
	if o.Log.Debug {
		return logrus.DebugLevel
	}

	level, err := logrus.ParseLevel(o.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}

	return level
}
