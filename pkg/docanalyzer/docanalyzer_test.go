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

package docanalyzer_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strusgo/analyzer/pkg/docanalyzer"
	"github.com/strusgo/analyzer/pkg/feature"
	"github.com/strusgo/analyzer/pkg/segment"
)

func TestAnalyzeSimpleXMLDocument(t *testing.T) {
	in := docanalyzer.New()
	_, err := in.DefineFeature("word", feature.ClassSearchIndex, "doc/title()", feature.WordTokenizer{}, []feature.Normalizer{feature.LowercaseNormalizer{}}, feature.Options{PositionBind: feature.BindContent})
	require.NoError(t, err)
	_, err = in.DefineFeature("title", feature.ClassAttribute, "doc/title()", feature.ContentTokenizer{}, nil, feature.Options{})
	require.NoError(t, err)
	in.Freeze()

	ctx, err := in.NewContext(segment.XMLSegmenter{}, "UTF-8")
	require.NoError(t, err)
	require.NoError(t, ctx.PutInput([]byte(`<doc><title>Hello World</title></doc>`), true))

	doc, err := ctx.AnalyzeNext()
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, ".", doc.SubDocumentTypeName)
	require.Len(t, doc.SearchIndexTerms, 2)
	require.Equal(t, "hello", doc.SearchIndexTerms[0].Value)
	require.Equal(t, "world", doc.SearchIndexTerms[1].Value)
	require.Len(t, doc.Attributes, 1)
	require.Equal(t, "Hello World", doc.Attributes[0].Value)

	_, err = ctx.AnalyzeNext()
	require.ErrorIs(t, err, io.EOF)
}

func TestAnalyzeNeedsMoreInputBeforeEOF(t *testing.T) {
	in := docanalyzer.New()
	in.Freeze()
	ctx, err := in.NewContext(segment.XMLSegmenter{}, "")
	require.NoError(t, err)
	require.NoError(t, ctx.PutInput([]byte(`<doc><tit`), false))

	_, err = ctx.AnalyzeNext()
	require.ErrorIs(t, err, docanalyzer.ErrNeedMore)
}

func TestDefineSubContentSplicesNestedDocument(t *testing.T) {
	in := docanalyzer.New()
	_, err := in.DefineFeature("score", feature.ClassMetaData, "score()", feature.ContentTokenizer{}, nil, feature.Options{})
	require.NoError(t, err)
	require.NoError(t, in.DefineSubContent("doc/meta()", "application/json", ""))
	in.RegisterSegmenter(segment.JSONSegmenter{})
	in.Freeze()

	ctx, err := in.NewContext(segment.XMLSegmenter{}, "")
	require.NoError(t, err)
	require.NoError(t, ctx.PutInput([]byte(`<doc><meta>{"score": "7"}</meta></doc>`), true))

	doc, err := ctx.AnalyzeNext()
	require.NoError(t, err)
	require.Len(t, doc.MetaData, 1)
	require.Equal(t, "score", doc.MetaData[0].Name)
	require.Equal(t, 7.0, doc.MetaData[0].Value.AsFloat64())
}

func TestDefineAggregatedMetadataRunsAfterAssembly(t *testing.T) {
	in := docanalyzer.New()
	_, err := in.DefineFeature("a", feature.ClassMetaData, "doc/a()", feature.ContentTokenizer{}, nil, feature.Options{})
	require.NoError(t, err)
	_, err = in.DefineFeature("b", feature.ClassMetaData, "doc/b()", feature.ContentTokenizer{}, nil, feature.Options{})
	require.NoError(t, err)
	require.NoError(t, in.DefineAggregatedMetadata("total", docanalyzer.SumMetadataAggregator("a", "b")))
	in.Freeze()

	ctx, err := in.NewContext(segment.XMLSegmenter{}, "")
	require.NoError(t, err)
	require.NoError(t, ctx.PutInput([]byte(`<doc><a>3</a><b>4</b></doc>`), true))

	doc, err := ctx.AnalyzeNext()
	require.NoError(t, err)

	var total float64
	var found bool
	for _, m := range doc.MetaData {
		if m.Name == "total" {
			total = m.Value.AsFloat64()
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, 7.0, total)
}

func TestAnalyzeSubDocument(t *testing.T) {
	in := docanalyzer.New()
	_, err := in.DefineFeature("word", feature.ClassSearchIndex, "doc/entries/entry/text()", feature.WordTokenizer{}, []feature.Normalizer{feature.LowercaseNormalizer{}}, feature.Options{PositionBind: feature.BindContent})
	require.NoError(t, err)
	require.NoError(t, in.DefineSubDocument("entry", "doc/entries/entry"))
	in.Freeze()

	ctx, err := in.NewContext(segment.XMLSegmenter{}, "")
	require.NoError(t, err)
	require.NoError(t, ctx.PutInput([]byte(`<doc><entries><entry><text>first one</text></entry><entry><text>second one</text></entry></entries></doc>`), true))

	doc1, err := ctx.AnalyzeNext()
	require.NoError(t, err)
	require.Equal(t, "entry", doc1.SubDocumentTypeName)
	require.Len(t, doc1.SearchIndexTerms, 2)

	doc2, err := ctx.AnalyzeNext()
	require.NoError(t, err)
	require.Equal(t, "entry", doc2.SubDocumentTypeName)

	root, err := ctx.AnalyzeNext()
	require.NoError(t, err)
	require.Equal(t, ".", root.SubDocumentTypeName)

	_, err = ctx.AnalyzeNext()
	require.ErrorIs(t, err, io.EOF)
}
