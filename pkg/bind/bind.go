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

// Package bind turns matched segment content into position-bound terms:
// it concatenates every segment matched for a given feature before
// tokenizing (so a tokenizer sees a whole field's text even when the
// field was split across several non-contiguous segments), maps token
// offsets back to the byte position of the segment each token came from,
// assigns ordinal positions per feature.Options.PositionBind, and finally
// drops terms another, higher-priority term of the same feature class
// already covers.
//
// Grounded on src/analyzer/segmentProcessor.hpp (Chunk/ConcatenatedMap,
// SegPosDef) and the eliminateCoveredElements algorithm in
// src/analyzer/queryAnalyzerContext.cpp in original_source — this
// package's eliminateCovered applies it to document terms; pkg/queryanalyzer
// has its own copy specialized to query elements.
package bind

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/strusgo/analyzer/pkg/document"
	"github.com/strusgo/analyzer/pkg/feature"
)

// segPos records where one run of concatenated content came from in the
// original document, the Go equivalent of SegPosDef.
type segPos struct {
	startStrPos int // offset into Chunk.Content where this run starts
	endStrPos   int // offset into Chunk.Content where this run ends
	docPos      int // byte position of this run's start in the original document
}

// chunk is the per-feature accumulation buffer: every segment matched
// for a feature is appended here (separated by a single space, so token
// boundaries never straddle two unrelated segments) before the whole
// thing is tokenized once.
type chunk struct {
	content string
	runs    []segPos
}

func (c *chunk) append(pos int, content string) {
	start := len(c.content)
	if start > 0 {
		c.content += " "
		start++
	}
	c.content += content
	c.runs = append(c.runs, segPos{startStrPos: start, endStrPos: start + len(content), docPos: pos})
}

// docPosOf maps a content-relative byte offset back to its original
// document byte position, by locating the run it falls in.
func (c *chunk) docPosOf(contentOffset int) int {
	for _, r := range c.runs {
		if contentOffset >= r.startStrPos && contentOffset <= r.endStrPos {
			return r.docPos + (contentOffset - r.startStrPos)
		}
	}
	if len(c.runs) > 0 {
		last := c.runs[len(c.runs)-1]
		return last.docPos + (contentOffset - last.startStrPos)
	}
	return 0
}

// element is one tokenized-and-normalized occurrence awaiting position
// binding and coverage reduction.
type element struct {
	featureID int
	text      string
	docPos    int // byte position in the original document
	length    int // byte span length, for coverage comparison
	bind      feature.PositionBind
	priority  int
	ordinal   int // assigned position, filled in by bindPositions
}

// SegmentProcessor accumulates segment.SegmentEvent content per feature
// across one document (or one query field) and, at FinishDocument,
// produces the final position-bound, coverage-reduced term list.
type SegmentProcessor struct {
	registry *feature.Registry
	chunks   map[int]*chunk
}

// NewSegmentProcessor creates a processor driven by reg; reg must already
// be frozen.
func NewSegmentProcessor(reg *feature.Registry) *SegmentProcessor {
	return &SegmentProcessor{registry: reg, chunks: make(map[int]*chunk)}
}

// ProcessSegment appends one matched segment's content to the
// accumulation buffer for featureID.
func (p *SegmentProcessor) ProcessSegment(featureID int, pos int, content string) {
	c := p.chunks[featureID]
	if c == nil {
		c = &chunk{}
		p.chunks[featureID] = c
	}
	c.append(pos, content)
}

// Reset clears all accumulated content, for reuse across sub-documents.
func (p *SegmentProcessor) Reset() {
	p.chunks = make(map[int]*chunk)
}

// FinishDocument tokenizes every accumulated chunk, assigns ordinal
// positions, reduces covered elements within each feature class, and
// returns the resulting terms bucketed by feature.Class. A chunk whose
// tokenizer fails, or a token whose normalizer chain fails, is dropped
// with a slog warning.
func (p *SegmentProcessor) FinishDocument() (searchIndex, forwardIndex []document.Term, attributes []document.Attribute, metadata []document.MetaData, err error) {
	var elems []*element
	for featureID, c := range p.chunks {
		f := p.registry.ByID(featureID)
		if f == nil || f.Tokenizer == nil {
			continue
		}
		toks, terr := f.Tokenizer.Tokenize(c.content)
		if terr != nil {
			slog.Warn("tokenizer failed, dropping content", "feature", f.Name, "err", terr)
			continue
		}
		for _, tok := range toks {
			raw := c.content[tok.Start:tok.End]
			norm, nerr := feature.Normalize(f.Normalizers, raw)
			if nerr != nil {
				slog.Warn("normalizer failed, dropping token", "feature", f.Name, "err", nerr)
				continue
			}
			if norm == "" {
				continue
			}
			elems = append(elems, &element{
				featureID: featureID,
				text:      norm,
				docPos:    c.docPosOf(tok.Start),
				length:    tok.End - tok.Start,
				bind:      f.Options.PositionBind,
				priority:  f.Options.Priority,
			})
		}
	}
	sort.SliceStable(elems, func(i, j int) bool {
		if elems[i].docPos != elems[j].docPos {
			return elems[i].docPos < elems[j].docPos
		}
		return elems[i].length > elems[j].length
	})
	bindPositions(elems)
	byClass := make(map[feature.Class][]*element)
	var classes []feature.Class
	for _, e := range elems {
		cl := p.registry.ByID(e.featureID).Class
		if _, ok := byClass[cl]; !ok {
			classes = append(classes, cl)
		}
		byClass[cl] = append(byClass[cl], e)
	}
	elems = nil
	for _, cl := range classes {
		elems = append(elems, eliminateCovered(byClass[cl])...)
	}

	for _, e := range elems {
		f := p.registry.ByID(e.featureID)
		if e.ordinal == 0 && (f.Class == feature.ClassSearchIndex || f.Class == feature.ClassForwardIndex) {
			continue // successor/predecessor term with no content term to bind to
		}
		term := document.Term{Type: f.Name, Value: e.text, Pos: e.ordinal, Len: 1}
		switch f.Class {
		case feature.ClassSearchIndex:
			searchIndex = append(searchIndex, term)
		case feature.ClassForwardIndex:
			forwardIndex = append(forwardIndex, term)
		case feature.ClassAttribute:
			attributes = append(attributes, document.Attribute{Name: f.Name, Value: e.text})
		case feature.ClassMetaData:
			metadata = append(metadata, document.MetaData{Name: f.Name, Value: document.Float(parseFloatLenient(e.text))})
		case feature.ClassPatternLexeme:
			// tokenized and normalized like any other feature, but not
			// emitted into document output: a pattern lexeme only feeds
			// the pattern-match post-processing path (spec.md Â§4.5),
			// which is out of scope here.
		}
	}
	return searchIndex, forwardIndex, attributes, metadata, nil
}

// parseFloatLenient parses e.text as a metadata value, falling back to 0
// for non-numeric content rather than failing the whole document — a
// metadata feature selecting the wrong element is a configuration error
// the caller can see in the output, not grounds to abort analysis.
func parseFloatLenient(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// bindPositions assigns each element's ordinal position according to its
// PositionBind rule. elems must already be sorted by docPos.
//
//   - BindContent increments a running counter.
//   - BindSuccessor copies the ordinal of the next BindContent or
//     BindUnique element; with none after it, it keeps ordinal 0.
//   - BindPredecessor copies the ordinal of the previous BindContent or
//     BindUnique element; with none before it, it keeps ordinal 0.
//     FinishDocument does not emit search/forward terms left at 0.
//   - BindUnique shares one ordinal across every element with the same
//     normalized text value, assigned the first time that text is seen
//     (in document order), the way strus's position_bind="unique"
//     collapses repeated occurrences of the same feature value to a
//     single search position (see SPEC_FULL.md DESIGN NOTES).
func bindPositions(elems []*element) {
	counter := 0
	lastContent := -1
	uniqueOrdinal := make(map[string]int)
	for i, e := range elems {
		switch e.bind {
		case feature.BindContent:
			counter++
			e.ordinal = counter
			lastContent = i
		case feature.BindPredecessor:
			if lastContent >= 0 {
				e.ordinal = elems[lastContent].ordinal
			}
		case feature.BindUnique:
			key := e.text
			if ord, ok := uniqueOrdinal[key]; ok {
				e.ordinal = ord
			} else {
				counter++
				e.ordinal = counter
				uniqueOrdinal[key] = counter
			}
			lastContent = i
		}
	}
	// second pass for successor, which looks forward
	nextContent := -1
	for i := len(elems) - 1; i >= 0; i-- {
		if elems[i].bind == feature.BindSuccessor {
			if nextContent >= 0 {
				elems[i].ordinal = elems[nextContent].ordinal
			}
			continue
		}
		if elems[i].bind == feature.BindContent || elems[i].bind == feature.BindUnique {
			nextContent = i
		}
	}
}

// eliminateCovered drops an element if a strictly-higher-priority element
// before it in sort order (same or lower docPos) has a span [docPos, docPos+length)
// covers its own span. Ported from queryAnalyzerContext.cpp's
// eliminateCoveredElements: scan only predecessors, and skip the whole
// pass when every element shares one priority.
func eliminateCovered(elems []*element) []*element {
	if len(elems) < 2 {
		return elems
	}
	uniform := true
	for i := 1; i < len(elems); i++ {
		if elems[i].priority != elems[0].priority {
			uniform = false
			break
		}
	}
	if uniform {
		return elems
	}
	out := make([]*element, 0, len(elems))
	for i, e := range elems {
		covered := false
		for j := i - 1; j >= 0; j-- {
			p := elems[j]
			if p.docPos+p.length < e.docPos+e.length {
				continue
			}
			if p.priority > e.priority && p.docPos <= e.docPos && p.docPos+p.length >= e.docPos+e.length {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, e)
		}
	}
	return out
}
