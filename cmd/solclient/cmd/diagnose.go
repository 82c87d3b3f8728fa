// Copyright © 2018 NAME HERE <EMAIL ADDRESS>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bryanl/solidity-language-server/pkg/compiler"
	"github.com/bryanl/solidity-language-server/pkg/compiler/solc"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/server"
	"github.com/bryanl/solidity-language-server/pkg/util/uri"
)

// diagnoseCmd represents the diagnose command
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Print the diagnostics the server publishes for a set of files",
	Long: `Diagnose opens files in an in-process language server and dumps the
diagnostics it publishes for every known document. For example:

  solclient diagnose -f contracts/token.sol -b .`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(diagnoseFilenames) == 0 {
			return errors.New("at least one filename is required")
		}

		if diagnoseCPUProfile {
			defer profile.Start().Stop()
		}

		if diagnoseMemProfile {
			defer profile.Start(profile.MemProfile).Stop()
		}

		engine := solc.New(diagnoseSolcPath, logrus.StandardLogger())

		published, err := diagnose(context.Background(), engine, diagnoseBasePath, diagnoseFilenames)
		if err != nil {
			return err
		}

		spew.Dump(published)

		return nil
	},
}

var (
	diagnoseFilenames  []string
	diagnoseBasePath   string
	diagnoseSolcPath   string
	diagnoseCPUProfile bool
	diagnoseMemProfile bool
)

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().StringSliceVarP(&diagnoseFilenames, "filename", "f", []string{}, "filename")
	diagnoseCmd.Flags().StringVarP(&diagnoseBasePath, "base-path", "b", ".", "base path")
	diagnoseCmd.Flags().StringVar(&diagnoseSolcPath, "solc", solc.DefaultPath, "path to the solc binary")
	diagnoseCmd.Flags().BoolVarP(&diagnoseCPUProfile, "cpu-profile", "p", false, "enable CPU profiling")
	diagnoseCmd.Flags().BoolVarP(&diagnoseMemProfile, "mem-profile", "m", false, "enable memory profiling")
}

// diagnose runs a server over the session initialize, didOpen for each file,
// shutdown and exit. It returns the last diagnostics published for each
// document keyed by URI.
func diagnose(ctx context.Context, engine compiler.Engine, basePath string, filenames []string) (map[string][]lsp.Diagnostic, error) {
	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errors.Wrap(err, "resolving base path")
	}

	var in bytes.Buffer
	client := lsp.NewTransport(bytes.NewReader(nil), &in)

	if err := client.Notify(lsp.MethodInitialize, map[string]string{"rootUri": uri.FromPath(base)}); err != nil {
		return nil, err
	}

	for _, filename := range filenames {
		path, err := filepath.Abs(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %q", filename)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %q", filename)
		}

		params := lsp.DidOpenTextDocumentParams{
			TextDocument: &lsp.TextDocumentItem{
				URI:        uri.FromPath(path),
				LanguageID: "solidity",
				Version:    1,
				Text:       string(data),
			},
		}

		if err := client.Notify(lsp.MethodTextDocumentDidOpen, params); err != nil {
			return nil, err
		}
	}

	for _, method := range []string{lsp.MethodShutdown, lsp.MethodExit} {
		if err := client.Notify(method, nil); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	s := server.New(lsp.NewTransport(&in, &out), engine, logrus.StandardLogger())
	if !s.Run(ctx) {
		return nil, errors.New("server did not shut down")
	}

	return readDiagnostics(&out)
}

func readDiagnostics(out *bytes.Buffer) (map[string][]lsp.Diagnostic, error) {
	var discard bytes.Buffer
	t := lsp.NewTransport(out, &discard)

	published := make(map[string][]lsp.Diagnostic)
	for {
		m, err := t.Receive()
		if err == lsp.ErrClosed {
			return published, nil
		}
		if err != nil {
			return nil, err
		}

		if m.Error != nil {
			return nil, m.Error
		}

		if m.Method != lsp.MethodTextDocumentPublishDiagnostics {
			continue
		}

		var params lsp.PublishDiagnosticsParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			return nil, errors.Wrap(err, "decoding published diagnostics")
		}

		published[params.URI] = params.Diagnostics
	}
}
