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

package queryanalyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strusgo/analyzer/pkg/document"
	"github.com/strusgo/analyzer/pkg/feature"
)

func newWordFeature(t *testing.T, reg *feature.Registry, name string, priority int) int {
	t.Helper()
	id, err := reg.Define(name, feature.ClassSearchIndex, -1, feature.WordTokenizer{},
		[]feature.Normalizer{feature.LowercaseNormalizer{}}, feature.Options{Priority: priority})
	require.NoError(t, err)
	return id
}

func TestAnalyzeGroupEveryEmitsOneTermPerWord(t *testing.T) {
	reg := feature.NewRegistry()
	wordID := newWordFeature(t, reg, "word", 1)
	reg.Freeze()

	in := New(reg)
	in.DefineFieldType("default", FieldTypeConfig{
		FeatureIDs: []int{wordID},
		GroupBy:    GroupEvery,
	})
	in.Freeze()

	fields := []document.QueryField{{Type: "default", Content: "Hello World"}}
	instr, err := in.Analyze(fields)
	require.NoError(t, err)
	require.Len(t, instr, 2)
	require.Equal(t, "hello", instr[0].PushTerm.Value)
	require.Equal(t, "world", instr[1].PushTerm.Value)
	require.Empty(t, instr[0].Operator)
}

func TestAnalyzeGroupAllWrapsInOperator(t *testing.T) {
	reg := feature.NewRegistry()
	wordID := newWordFeature(t, reg, "word", 1)
	reg.Freeze()

	in := New(reg)
	in.DefineFieldType("default", FieldTypeConfig{
		FeatureIDs:   []int{wordID},
		GroupBy:      GroupAll,
		OperatorName: "union",
	})
	in.Freeze()

	fields := []document.QueryField{{Type: "default", Content: "alpha beta gamma"}}
	instr, err := in.Analyze(fields)
	require.NoError(t, err)
	require.Len(t, instr, 4)
	require.Equal(t, "union", instr[3].Operator)
	require.Equal(t, 3, instr[3].Arity)
}

func TestAnalyzeGroupSingleStillWraps(t *testing.T) {
	reg := feature.NewRegistry()
	wordID := newWordFeature(t, reg, "word", 1)
	reg.Freeze()

	in := New(reg)
	in.DefineFieldType("default", FieldTypeConfig{
		FeatureIDs:   []int{wordID},
		GroupBy:      GroupAll,
		GroupSingle:  true,
		OperatorName: "union",
	})
	in.Freeze()

	fields := []document.QueryField{{Type: "default", Content: "solo"}}
	instr, err := in.Analyze(fields)
	require.NoError(t, err)
	require.Len(t, instr, 2)
	require.Equal(t, "union", instr[1].Operator)
	require.Equal(t, 1, instr[1].Arity)
}

func TestAnalyzeGroupUniqueDropsDuplicates(t *testing.T) {
	reg := feature.NewRegistry()
	wordID := newWordFeature(t, reg, "word", 1)
	reg.Freeze()

	in := New(reg)
	in.DefineFieldType("default", FieldTypeConfig{
		FeatureIDs:   []int{wordID},
		GroupBy:      GroupUnique,
		OperatorName: "union",
	})
	in.Freeze()

	fields := []document.QueryField{{Type: "default", Content: "cat dog cat"}}
	instr, err := in.Analyze(fields)
	require.NoError(t, err)
	// two unique terms plus the wrapping operator
	require.Len(t, instr, 3)
}

func TestAnalyzeUnknownFieldTypeIgnored(t *testing.T) {
	reg := feature.NewRegistry()
	reg.Freeze()
	in := New(reg)
	in.Freeze()

	fields := []document.QueryField{{Type: "nope", Content: "whatever"}}
	instr, err := in.Analyze(fields)
	require.NoError(t, err)
	require.Empty(t, instr)
}

func TestEliminateCoveredQueryDropsLowerPriorityOverlap(t *testing.T) {
	elems := []*element{
		{value: "new york", pos: 1, length: 8, priority: 2},
		{value: "new", pos: 1, length: 3, priority: 1},
		{value: "york", pos: 2, length: 4, priority: 1},
	}
	out := eliminateCoveredQuery(elems)
	require.Len(t, out, 1)
	require.Equal(t, "new york", out[0].value)
}
