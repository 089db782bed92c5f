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

// Package docanalyzer is the top-level entry point: it owns a frozen
// feature.Registry and xpath.Automaton, picks a segment.Segmenter for a
// document, and drives TextEncoder → Segmenter → bind.SegmentProcessor
// into one or more document.Document results — one per sub-document
// boundary encountered, the root document last.
//
// Grounded on src/analyzer/documentAnalyzerInstance.{hpp,cpp} and
// src/analyzer/documentAnalyzerContext.{hpp,cpp} in original_source for
// the overall configuration/run split, and on the teacher's
// pkg/textual/slog.go idiom for the structured logging calls on the
// error and recovery paths.
package docanalyzer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/strusgo/analyzer/pkg/analyzererr"
	"github.com/strusgo/analyzer/pkg/bind"
	"github.com/strusgo/analyzer/pkg/document"
	"github.com/strusgo/analyzer/pkg/feature"
	"github.com/strusgo/analyzer/pkg/segment"
	"github.com/strusgo/analyzer/pkg/textencoding"
	"github.com/strusgo/analyzer/pkg/xpath"
)

// ErrNeedMore is returned by Context.AnalyzeNext when the segmenter has
// no event to offer yet and the input has not reached eof.
var ErrNeedMore = segment.ErrNeedMore

// subDocDef pairs the xpath ids installed by DefineSubDocument with the
// sub-document class name they delimit.
type subDocDef struct {
	startID, endID int
	typeName       string
}

// AggregatorFunc computes one numeric metadata value from a fully
// assembled Document (spec.md §4.6, define_aggregated_metadata in
// spec.md §6). Unlike a feature.Tokenizer/Normalizer chain, it runs once
// per document after every term/attribute/metadata binding has
// completed, not per matched segment — its input is already the
// Document the rest of the pipeline produced.
type AggregatorFunc func(doc *document.Document) document.Number

// aggregatorDef pairs a registered AggregatorFunc with the metadata name
// its result is attached under.
type aggregatorDef struct {
	name string
	fn   AggregatorFunc
}

// SumMetadataAggregator builds an AggregatorFunc that adds up the values
// of the named, already-bound metadata fields, widened through
// document.Number.AsFloat64 — a ready-made aggregator for the common
// case of deriving one metadata value (e.g. a combined score) from
// several others already produced by ordinary ClassMetaData features.
func SumMetadataAggregator(fields ...string) AggregatorFunc {
	return func(doc *document.Document) document.Number {
		var total float64
		for _, m := range doc.MetaData {
			for _, want := range fields {
				if m.Name == want {
					total += m.Value.AsFloat64()
				}
			}
		}
		return document.Float(total)
	}
}

// Instance is the frozen, shareable analyzer configuration: every
// registered feature, the compiled selector automaton, the sub-document
// boundaries, the sub-content splice points, and the aggregator pass.
// Safe for concurrent use by any number of Contexts once Freeze has been
// called (see SPEC_FULL.md §5).
type Instance struct {
	registry    *feature.Registry
	automaton   *xpath.Automaton
	subDocs     []subDocDef
	subContent  []segment.SubContentDef
	segmenters  map[string]segment.Segmenter
	aggregators []aggregatorDef
	nextExprID  int
	frozen      bool
	logger      *slog.Logger
}

// New creates an empty, unfrozen Instance.
func New() *Instance {
	return &Instance{
		registry:   feature.NewRegistry(),
		automaton:  xpath.New(),
		segmenters: make(map[string]segment.Segmenter),
		logger:     slog.Default(),
	}
}

// SetLogger overrides the Instance's structured logger (default
// slog.Default()).
func (in *Instance) SetLogger(l *slog.Logger) { in.logger = l }

func (in *Instance) allocExprID() int {
	in.nextExprID++
	return in.nextExprID
}

// DefineFeature registers a selector expression plus its tokenizer,
// normalizer chain, and binding options, and returns the feature's
// dense id.
func (in *Instance) DefineFeature(name string, class feature.Class, selectExpr string, tok feature.Tokenizer, norms []feature.Normalizer, opts feature.Options) (int, error) {
	if in.frozen {
		return 0, analyzererr.ErrOperationOrder
	}
	exprID := in.allocExprID()
	if err := in.automaton.AddExpression(exprID, selectExpr); err != nil {
		return 0, err
	}
	return in.registry.Define(name, class, exprID, tok, norms, opts)
}

// DefineSubDocument installs a subsection start/end pair on selectExpr:
// every element it matches starts a new nested document of the named
// sub-document class, collecting its own search/forward terms separately
// from the parent.
func (in *Instance) DefineSubDocument(typeName, selectExpr string) error {
	if in.frozen {
		return analyzererr.ErrOperationOrder
	}
	startID, endID := in.allocExprID(), in.allocExprID()
	if err := in.automaton.DefineSubSection(startID, endID, selectExpr); err != nil {
		return err
	}
	in.subDocs = append(in.subDocs, subDocDef{startID: startID, endID: endID, typeName: typeName})
	return nil
}

// RegisterSegmenter makes seg available as a sub-content splice target by
// its declared MimeType, for DefineSubContent's nested parses to resolve
// by name later. Registering the same mime type twice overwrites the
// earlier entry.
func (in *Instance) RegisterSegmenter(seg segment.Segmenter) {
	in.segmenters[seg.MimeType()] = seg
}

// DefineSubContent installs a sub-content splice point (spec.md §3/§4.4,
// define_sub_content in spec.md §6): selectExpr must be a content
// selector (a tag-name step suffixed with "()"), and every element it
// matches has its text content re-parsed as a document of mimeType
// (decoded with encoding, empty for UTF-8) by a nested segment.Context,
// whose own events are spliced into the outer stream in its place. The
// nested segmenter for mimeType must already be registered via
// RegisterSegmenter by the time a Context built from this Instance runs.
func (in *Instance) DefineSubContent(selectExpr, mimeType, encoding string) error {
	if in.frozen {
		return analyzererr.ErrOperationOrder
	}
	exprID := in.allocExprID()
	if err := in.automaton.AddExpression(exprID, selectExpr); err != nil {
		return err
	}
	in.subContent = append(in.subContent, segment.SubContentDef{ID: exprID, MimeType: mimeType, Encoding: encoding})
	return nil
}

// segmenterFactory builds the segment.Factory a Context passes down to
// every (possibly nested) segment.Context it creates, resolving a
// sub-content mime type to its registered Segmenter.
func (in *Instance) segmenterFactory() segment.Factory {
	return func(mimeType string) (segment.Segmenter, bool) {
		seg, ok := in.segmenters[mimeType]
		return seg, ok
	}
}

// AddPatternLexem registers a pattern-lexeme feature (spec.md §4.5,
// add_pattern_lexem in spec.md §6): an ordinary selector-matched,
// tokenized and normalized Feature whose output feeds the (out-of-scope)
// pattern-match post-processor instead of the document's term lists.
func (in *Instance) AddPatternLexem(name, selectExpr string, tok feature.Tokenizer, norms []feature.Normalizer, priority int) (int, error) {
	return in.DefineFeature(name, feature.ClassPatternLexeme, selectExpr, tok, norms, feature.Options{Priority: priority})
}

// DefinePatternConfig registers a pattern-feature configuration naming
// which pattern-lexeme types feed pattern type typeName (spec.md §4.5).
func (in *Instance) DefinePatternConfig(typeName string, lexemTypes []string) error {
	if in.frozen {
		return analyzererr.ErrOperationOrder
	}
	return in.registry.DefinePatternConfig(typeName, lexemTypes)
}

// DefineAggregatedMetadata registers an aggregator (spec.md §4.6,
// define_aggregated_metadata in spec.md §6): fn is invoked once per
// assembled Document, after every term/attribute/metadata has been
// bound, and its result is attached as metadata under name.
func (in *Instance) DefineAggregatedMetadata(name string, fn AggregatorFunc) error {
	if in.frozen {
		return analyzererr.ErrOperationOrder
	}
	if name == "" {
		return fmt.Errorf("%w: aggregator name must not be empty", analyzererr.ErrInvalidArgument)
	}
	in.aggregators = append(in.aggregators, aggregatorDef{name: name, fn: fn})
	return nil
}

// Freeze locks the configuration; no further Define* calls are accepted
// afterward, and the Instance becomes safe for concurrent use by many
// Contexts.
func (in *Instance) Freeze() {
	in.automaton.Freeze()
	in.registry.Freeze()
	in.frozen = true
}

// Registry exposes the frozen feature registry, e.g. for a query
// analyzer sharing the same feature set.
func (in *Instance) Registry() *feature.Registry { return in.registry }

type docFrame struct {
	doc       *document.Document
	processor *bind.SegmentProcessor
}

// Context drives one document through the configured Instance. It is not
// safe for concurrent use.
type Context struct {
	instance *Instance
	encoder  *textencoding.TextEncoder
	segCtx   segment.Context
	stack    []*docFrame
	done     bool
}

// NewContext creates a Context for segmenting with seg and decoding
// input declared to be in the named source encoding (empty for UTF-8).
func (in *Instance) NewContext(seg segment.Segmenter, encodingName string) (*Context, error) {
	if !in.frozen {
		return nil, analyzererr.ErrOperationOrder
	}
	enc, err := textencoding.New(encodingName)
	if err != nil {
		return nil, err
	}
	root := &docFrame{doc: document.New(), processor: bind.NewSegmentProcessor(in.registry)}
	return &Context{
		instance: in,
		encoder:  enc,
		segCtx:   seg.CreateContext(in.automaton, in.subContent, in.segmenterFactory()),
		stack:    []*docFrame{root},
	}, nil
}

// PutInput feeds one more chunk of the document's raw bytes (in its
// declared source encoding) into the pipeline. eof marks the final
// chunk.
func (c *Context) PutInput(chunk []byte, eof bool) error {
	utf8, err := c.encoder.Convert(chunk, eof)
	if err != nil {
		return err
	}
	return c.segCtx.PutInput([]byte(utf8), eof)
}

func (c *Context) subDocFor(id int) (subDocDef, bool) {
	for _, sd := range c.instance.subDocs {
		if sd.startID == id || sd.endID == id {
			return sd, true
		}
	}
	return subDocDef{}, false
}

// AnalyzeNext pulls the next completed document (root or sub-document)
// out of the pipeline. It returns ErrNeedMore when the segmenter has
// nothing ready and eof has not been seen yet, and io.EOF once every
// document (including the root) has been delivered.
func (c *Context) AnalyzeNext() (*document.Document, error) {
	if c.done {
		return nil, io.EOF
	}
	for {
		ev, err := c.segCtx.GetNext()
		if errors.Is(err, segment.ErrNeedMore) {
			return nil, ErrNeedMore
		}
		if errors.Is(err, io.EOF) {
			if len(c.stack) != 1 {
				c.instance.logger.Warn("document ended with unclosed sub-document", "depth", len(c.stack))
			}
			doc, ferr := c.finish(c.stack[len(c.stack)-1])
			c.done = true
			if ferr != nil {
				return nil, ferr
			}
			return doc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("segment: %w", err)
		}
		if sd, ok := c.subDocFor(ev.ID); ok {
			if sd.startID == ev.ID {
				c.stack = append(c.stack, &docFrame{
					doc:       &document.Document{SubDocumentTypeName: sd.typeName},
					processor: bind.NewSegmentProcessor(c.instance.registry),
				})
				continue
			}
			// end of sub-document: finish it and hand it back,
			// resuming the parent on the next AnalyzeNext call.
			top := c.stack[len(c.stack)-1]
			c.stack = c.stack[:len(c.stack)-1]
			return c.finish(top)
		}
		for _, f := range c.instance.registry.ByExprID(ev.ID) {
			c.stack[len(c.stack)-1].processor.ProcessSegment(f.ID, ev.Pos, ev.Content)
		}
	}
}

func (c *Context) finish(f *docFrame) (*document.Document, error) {
	search, forward, attrs, meta, err := f.processor.FinishDocument()
	if err != nil {
		return nil, err
	}
	f.doc.SearchIndexTerms = search
	f.doc.ForwardIndexTerms = forward
	for _, a := range attrs {
		f.doc.AddAttribute(a.Name, a.Value)
	}
	for _, m := range meta {
		f.doc.SetMetaData(m.Name, m.Value)
	}
	for _, agg := range c.instance.aggregators {
		f.doc.SetMetaData(agg.name, agg.fn(f.doc))
	}
	return f.doc, nil
}
