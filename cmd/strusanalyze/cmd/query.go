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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/strusgo/analyzer/pkg/document"
)

// queryCommand returns the command for `strusanalyze query`.
func queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Tokenize and group a single free-text query field, printing the resulting instruction stream as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func runQuery(out io.Writer, text string) error {
	// The query side shares the document side's feature registry (one
	// "word" feature with the structured-format content expression) so
	// the two tokenize identically; the selector expression itself is
	// irrelevant to query analysis, only the tokenizer/normalizer chain
	// it carries is used.
	instance := builtinInstance("*()")
	qin := builtinQueryInstance(instance.Registry())

	fields := []document.QueryField{{Type: "default", Content: text}}
	instr, err := qin.Analyze(fields)
	if err != nil {
		return fmt.Errorf("strusanalyze: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(instr)
}
