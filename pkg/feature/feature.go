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

// Package feature is the frozen configuration registry both the document
// and query analyzers compile against: one Feature per (selector
// expression, tokenizer, normalizer chain, position-binding rule) tuple,
// addressable by a dense integer id or by name.
//
// Grounded on src/analyzer/featureConfig.{hpp,cpp} and
// src/analyzer/featureConfigMap.{hpp,cpp} in original_source; the
// MaxFeatures cap matches strus::MaxNofFeatures (2^24-1), guarding the
// 24-bit id field packed alongside a class tag elsewhere in the original
// binary term encoding — this Go port keeps the cap as a sanity limit on
// registry size even though Term no longer packs the id into a fixed
// bitfield.
package feature

import (
	"fmt"

	"github.com/strusgo/analyzer/pkg/analyzererr"
)

// MaxFeatures bounds how many features a single registry may hold.
const MaxFeatures = 1<<24 - 1

// Class says which output collection a matched, tokenized, normalized
// feature value is appended to.
type Class int

const (
	ClassSearchIndex Class = iota
	ClassForwardIndex
	ClassMetaData
	ClassAttribute
	ClassPatternLexeme
)

// Aggregators (docanalyzer.Instance.DefineAggregatedMetadata) and
// sub-document boundaries (docanalyzer.Instance.DefineSubDocument) are
// configured through their own dedicated entry points rather than
// through Define/Class: neither takes a select_expr in its external
// signature (SPEC_FULL.md §6), so neither belongs in this registry.

// PositionBind says how a feature's term position is assigned relative to
// the document's running ordinal position counter.
type PositionBind int

const (
	// BindContent increments the ordinal counter: this is an ordinary
	// indexed term.
	BindContent PositionBind = iota
	// BindSuccessor inherits the position of the next BindContent or
	// BindUnique term in document order; a search/forward term with no
	// such term after it is not emitted.
	BindSuccessor
	// BindPredecessor inherits the position of the previous BindContent
	// or BindUnique term; a search/forward term with none before it is
	// not emitted.
	BindPredecessor
	// BindUnique gives every occurrence of the same normalized value one
	// shared ordinal, the one assigned where that value first appears.
	BindUnique
)

// Token is one raw (unnormalized) tokenization result: a byte span within
// the content the Tokenizer was given.
type Token struct {
	Start, End int
}

// Tokenizer splits segment (or concatenated chunk) content into raw
// token spans.
type Tokenizer interface {
	Tokenize(content string) ([]Token, error)
}

// Normalizer rewrites one token's text, e.g. lowercasing or stemming.
type Normalizer interface {
	Normalize(text string) (string, error)
}

// Options carries the per-feature behavior that isn't encoded by the
// tokenizer/normalizer chain: its position-binding rule and its
// coverage-reduction priority (see pkg/bind's eliminateCovered).
type Options struct {
	PositionBind PositionBind
	Priority     int
}

// Feature is one registered, fully configured extraction rule.
type Feature struct {
	ID           int
	Name         string
	Class        Class
	SelectExprID int
	Tokenizer    Tokenizer
	Normalizers  []Normalizer
	Options      Options
}

// PatternConfig is a pattern-feature configuration (spec.md §4.5): the
// registry keeps these keyed by pattern-type name, separately from the
// per-id Feature array, for the pattern-match post-processing path. That
// matcher itself is out of scope here, but the interface must be
// preserved, so PatternConfig only records which lexeme types feed the
// named pattern type.
type PatternConfig struct {
	TypeName   string
	LexemTypes []string
}

// Registry is the frozen set of Features a document or query analyzer
// was configured with. Safe for concurrent read-only use once Freeze has
// been called.
type Registry struct {
	byID           []*Feature
	byName         map[string][]*Feature
	bySelectExpr   map[int][]*Feature
	patternConfigs map[string]*PatternConfig
	frozen         bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:         make(map[string][]*Feature),
		bySelectExpr:   make(map[int][]*Feature),
		patternConfigs: make(map[string]*PatternConfig),
	}
}

// Define registers a new Feature and returns its dense id.
func (r *Registry) Define(name string, class Class, selectExprID int, tok Tokenizer, norms []Normalizer, opts Options) (int, error) {
	if r.frozen {
		return 0, analyzererr.ErrOperationOrder
	}
	if name == "" {
		return 0, fmt.Errorf("%w: feature name must not be empty", analyzererr.ErrInvalidArgument)
	}
	if len(r.byID) >= MaxFeatures {
		return 0, fmt.Errorf("%w: feature registry limit (%d) reached", analyzererr.ErrLimitExceeded, MaxFeatures)
	}
	f := &Feature{
		ID:           len(r.byID),
		Name:         name,
		Class:        class,
		SelectExprID: selectExprID,
		Tokenizer:    tok,
		Normalizers:  norms,
		Options:      opts,
	}
	r.byID = append(r.byID, f)
	r.byName[name] = append(r.byName[name], f)
	r.bySelectExpr[selectExprID] = append(r.bySelectExpr[selectExprID], f)
	return f.ID, nil
}

// DefinePatternConfig registers (or, if typeName was already configured,
// overwrites) a pattern-feature configuration.
func (r *Registry) DefinePatternConfig(typeName string, lexemTypes []string) error {
	if r.frozen {
		return analyzererr.ErrOperationOrder
	}
	if typeName == "" {
		return fmt.Errorf("%w: pattern type name must not be empty", analyzererr.ErrInvalidArgument)
	}
	r.patternConfigs[typeName] = &PatternConfig{TypeName: typeName, LexemTypes: lexemTypes}
	return nil
}

// PatternConfig returns the named pattern-feature configuration, or nil
// if none was registered under that type name.
func (r *Registry) PatternConfig(typeName string) *PatternConfig {
	return r.patternConfigs[typeName]
}

// Freeze locks the registry against further Define calls.
func (r *Registry) Freeze() { r.frozen = true }

// ByID returns the Feature with the given dense id, or nil if out of
// range.
func (r *Registry) ByID(id int) *Feature {
	if id < 0 || id >= len(r.byID) {
		return nil
	}
	return r.byID[id]
}

// ByName returns every Feature registered under name, in registration
// order (a name may be shared by several features selecting different
// expressions, e.g. one search-index and one forward-index feature on
// the same path).
func (r *Registry) ByName(name string) []*Feature {
	return r.byName[name]
}

// ByExprID returns every Feature registered on the xpath.Automaton
// selector expression id exprID (the xpath.Automaton and the Registry
// are keyed by independent id spaces; a docanalyzer.Instance allocates
// one expression id per DefineFeature call but the Registry assigns its
// own dense Feature.ID, so callers that only have a segment.SegmentEvent
// ID must resolve it back to a Feature through this index rather than
// treating the two ids as interchangeable).
func (r *Registry) ByExprID(exprID int) []*Feature {
	return r.bySelectExpr[exprID]
}

// All returns every registered Feature in id order.
func (r *Registry) All() []*Feature {
	return r.byID
}

// Len reports how many features are registered.
func (r *Registry) Len() int { return len(r.byID) }

// Normalize runs a token's text through every normalizer in order.
func Normalize(norms []Normalizer, text string) (string, error) {
	for _, n := range norms {
		var err error
		text, err = n.Normalize(text)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}
