// Copyright 2026 Benoit Pereira da Silva
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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/strusgo/analyzer/pkg/docanalyzer"
)

// analyzeCommand returns the command for `strusanalyze analyze`.
func analyzeCommand() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Segment, tokenize, and bind a document, printing the resulting documents as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), args[0], encoding)
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "", "declared source character encoding (default: the encoding an XML declaration names, otherwise UTF-8)")
	return cmd
}

func runAnalyze(out io.Writer, path, encoding string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("strusanalyze: %w", err)
	}

	seg, detectedEncoding, contentExpr, err := segmenterFor(data)
	if err != nil {
		return err
	}
	if encoding == "" {
		encoding = detectedEncoding
	}

	instance := builtinInstance(contentExpr)
	actx, err := instance.NewContext(seg, encoding)
	if err != nil {
		return fmt.Errorf("strusanalyze: %w", err)
	}
	if err := actx.PutInput(data, true); err != nil {
		return fmt.Errorf("strusanalyze: %w", err)
	}

	var docs []interface{}
	for {
		doc, err := actx.AnalyzeNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, docanalyzer.ErrNeedMore) {
			return fmt.Errorf("strusanalyze: document was not fully buffered")
		}
		if err != nil {
			return fmt.Errorf("strusanalyze: %w", err)
		}
		docs = append(docs, doc)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
