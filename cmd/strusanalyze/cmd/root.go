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

// Package cmd contains code related to the strusanalyze command line
// interface: a thin demonstration binary exercising pkg/docanalyzer and
// pkg/queryanalyzer end to end, not a reimplementation of the reference
// program-file configuration language (see SPEC_FULL.md §6).
package cmd

import "github.com/spf13/cobra"

// Root returns the root command.
func Root() *cobra.Command {
	c := &cobra.Command{
		Use:   "strusanalyze",
		Short: "Segment, tokenize and bind a document or query with a small built-in feature set",
	}
	c.AddCommand(analyzeCommand())
	c.AddCommand(queryCommand())
	return c
}
