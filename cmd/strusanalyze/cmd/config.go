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
	"fmt"

	"github.com/strusgo/analyzer/pkg/classdetect"
	"github.com/strusgo/analyzer/pkg/docanalyzer"
	"github.com/strusgo/analyzer/pkg/feature"
	"github.com/strusgo/analyzer/pkg/queryanalyzer"
	"github.com/strusgo/analyzer/pkg/segment"
)

// builtinInstance builds the tiny, fixed feature configuration this demo
// binary exercises the pipeline with: one search-index "word" feature and
// one forward-index "phrase" feature, both selecting an element's
// content. contentExpr is "*()" (any element directly under the document
// root — pkg/xpath's waypoints advance once and do not re-arm, so a
// single wildcard step only ever matches one level of nesting; see
// pkg/xpath's package doc) for the structured segmenters, or the
// root-level "()" PlainSegmenter requires (see pkg/segment/plain.go).
// Wiring the full reference program-file DSL is out of scope
// (SPEC_FULL.md §6).
func builtinInstance(contentExpr string) *docanalyzer.Instance {
	in := docanalyzer.New()
	mustDefine(in, "word", feature.ClassSearchIndex, contentExpr,
		feature.WordTokenizer{}, []feature.Normalizer{feature.LowercaseNormalizer{}},
		feature.Options{PositionBind: feature.BindContent, Priority: 1})
	mustDefine(in, "phrase", feature.ClassForwardIndex, contentExpr,
		feature.ContentTokenizer{}, []feature.Normalizer{feature.TrimNormalizer{}},
		feature.Options{PositionBind: feature.BindContent, Priority: 2})
	in.Freeze()
	return in
}

func mustDefine(in *docanalyzer.Instance, name string, class feature.Class, expr string, tok feature.Tokenizer, norms []feature.Normalizer, opts feature.Options) {
	if _, err := in.DefineFeature(name, class, expr, tok, norms, opts); err != nil {
		panic(fmt.Sprintf("strusanalyze: built-in feature %q: %v", name, err))
	}
}

// builtinQueryInstance shares reg (the same registry the document side was
// configured with) so query terms tokenize identically to document terms,
// and groups every field's matches under one "union" operator per
// SPEC_FULL.md §4.8's GroupAll rule.
func builtinQueryInstance(reg *feature.Registry) *queryanalyzer.Instance {
	var wordID int = -1
	for _, f := range reg.ByName("word") {
		wordID = f.ID
	}
	qin := queryanalyzer.New(reg)
	qin.DefineFieldType("default", queryanalyzer.FieldTypeConfig{
		FeatureIDs:   []int{wordID},
		GroupBy:      queryanalyzer.GroupAll,
		OperatorName: "union",
	})
	qin.Freeze()
	return qin
}

// segmenterFor picks the Segmenter variant matching classdetect's guess at
// sample, the leading bytes of the document, along with the content
// selector expression that variant accepts for the built-in feature set.
func segmenterFor(sample []byte) (seg segment.Segmenter, encoding, contentExpr string, err error) {
	class, ok := classdetect.Detect(sample)
	if !ok {
		return nil, "", "", fmt.Errorf("strusanalyze: could not classify document type from its leading bytes")
	}
	switch class.Scheme {
	case classdetect.XML:
		return segment.XMLSegmenter{}, class.Encoding, "*()", nil
	case classdetect.JSON:
		return segment.JSONSegmenter{}, class.Encoding, "*()", nil
	case classdetect.TSV:
		// TSV wraps every row in a synthetic "record" tag one level above
		// its per-column fields (pkg/segment/tsv.go's RecordTag), so the
		// content selector needs that extra step the other two formats
		// don't.
		return segment.TSVSegmenter{}, class.Encoding, segment.RecordTag + "/*()", nil
	default:
		return segment.PlainSegmenter{}, class.Encoding, "()", nil
	}
}
