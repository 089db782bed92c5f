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

// Package queryanalyzer turns a sequence of typed query fields into a
// grouped instruction stream of query terms: tokenize/normalize each
// field against the features registered for its type, drop
// lower-priority elements another element's span covers, then group the
// surviving elements by the rule their feature type was configured
// with and emit a post-order push_term/push_operator instruction
// sequence a query evaluator can execute directly.
//
// Grounded on src/analyzer/queryAnalyzerContext.cpp in original_source
// (buildQueryTree, GroupMemberRelationMap, ElementNodeMap, the
// GroupBy dispatch, and eliminateCoveredElements, of which
// eliminateCoveredQuery below is a copy of pkg/bind's eliminateCovered
// specialized to query elements). The full small-integer-id bimap
// (ElementNodeMap with its own tostring() debug method) is simplified to
// a plain recursive grouping pass since this port has no cross-process
// serialization boundary requiring that bimap's stability guarantees —
// see DESIGN.md.
package queryanalyzer

import (
	"log/slog"
	"sort"

	"github.com/strusgo/analyzer/pkg/document"
	"github.com/strusgo/analyzer/pkg/feature"
)

// GroupBy selects how a field type's matched elements are combined into
// one query sub-expression.
type GroupBy int

const (
	// GroupByPosition groups elements that share the same ordinal
	// position into one operator node.
	GroupByPosition GroupBy = iota
	// GroupUnique collapses every element down to the first occurrence
	// of each distinct (type, value) pair.
	GroupUnique
	// GroupAll puts every matched element from the field type under one
	// operator node, regardless of position.
	GroupAll
	// GroupEvery emits each matched element as its own, ungrouped term
	// (no operator node).
	GroupEvery
)

// FieldTypeConfig is the grouping configuration registered for one query
// field type name.
type FieldTypeConfig struct {
	FeatureIDs   []int // features (from the shared Registry) this field type feeds
	GroupBy      GroupBy
	GroupSingle  bool // wrap even a single surviving element in an operator node
	OperatorName string
}

// Instance is the frozen query-analyzer configuration.
type Instance struct {
	registry *feature.Registry
	types    map[string]FieldTypeConfig
	frozen   bool
}

// New creates an Instance sharing reg (normally the same Registry a
// docanalyzer.Instance was configured with, so query terms tokenize the
// same way document terms did).
func New(reg *feature.Registry) *Instance {
	return &Instance{registry: reg, types: make(map[string]FieldTypeConfig)}
}

// DefineFieldType registers the grouping rule for fieldType.
func (in *Instance) DefineFieldType(fieldType string, cfg FieldTypeConfig) {
	in.types[fieldType] = cfg
}

// Freeze marks the configuration frozen. DefineFieldType does not check
// the mark: a call after Freeze still replaces that field type's
// configuration.
func (in *Instance) Freeze() { in.frozen = true }

// Instruction is one post-order step in the emitted query expression:
// either push a leaf term, or combine the top n pushed items under
// operator.
type Instruction struct {
	PushTerm *document.QueryElement
	Operator string
	Arity    int
}

// element is an internal, position-bound query element before grouping.
type element struct {
	featureID int
	fieldNo   int
	value     string
	pos       int // ordinal position within its field
	length    int
	priority  int
}

// Analyze tokenizes and normalizes every field against its configured
// feature set, reduces covered elements, groups the survivors per field
// type, and returns the resulting instruction stream. A field whose
// tokenizer fails, or a token whose normalizer chain fails, is dropped
// with a slog warning.
func (in *Instance) Analyze(fields []document.QueryField) ([]Instruction, error) {
	var byType = make(map[string][]*element)
	for fieldNo, qf := range fields {
		cfg, ok := in.types[qf.Type]
		if !ok {
			continue
		}
		var elems []*element
		for _, fid := range cfg.FeatureIDs {
			f := in.registry.ByID(fid)
			if f == nil || f.Tokenizer == nil {
				continue
			}
			toks, err := f.Tokenizer.Tokenize(qf.Content)
			if err != nil {
				slog.Warn("tokenizer failed, dropping field content", "feature", f.Name, "err", err)
				continue
			}
			ord := 0
			for _, tok := range toks {
				raw := qf.Content[tok.Start:tok.End]
				norm, err := feature.Normalize(f.Normalizers, raw)
				if err != nil {
					slog.Warn("normalizer failed, dropping token", "feature", f.Name, "err", err)
					continue
				}
				if norm == "" {
					continue
				}
				ord++
				elems = append(elems, &element{
					featureID: fid,
					fieldNo:   fieldNo,
					value:     norm,
					pos:       ord,
					length:    tok.End - tok.Start,
					priority:  f.Options.Priority,
				})
			}
		}
		sort.SliceStable(elems, func(i, j int) bool { return elems[i].pos < elems[j].pos })
		elems = eliminateCoveredQuery(elems)
		byType[qf.Type] = append(byType[qf.Type], elems...)
	}

	var out []Instruction
	for fieldType, elems := range byType {
		cfg := in.types[fieldType]
		out = append(out, groupElements(in.registry, cfg, elems)...)
	}
	return out, nil
}

func groupElements(reg *feature.Registry, cfg FieldTypeConfig, elems []*element) []Instruction {
	if len(elems) == 0 {
		return nil
	}
	switch cfg.GroupBy {
	case GroupEvery:
		var out []Instruction
		for _, e := range elems {
			out = append(out, Instruction{PushTerm: toQueryElement(reg, e)})
		}
		return out
	case GroupUnique:
		seen := make(map[[2]string]bool)
		var uniq []*element
		for _, e := range elems {
			key := [2]string{toQueryElement(reg, e).Type, e.value}
			if seen[key] {
				continue
			}
			seen[key] = true
			uniq = append(uniq, e)
		}
		return wrapGroup(reg, cfg, uniq)
	case GroupByPosition:
		byPos := make(map[int][]*element)
		var order []int
		for _, e := range elems {
			if _, ok := byPos[e.pos]; !ok {
				order = append(order, e.pos)
			}
			byPos[e.pos] = append(byPos[e.pos], e)
		}
		sort.Ints(order)
		var out []Instruction
		for _, pos := range order {
			out = append(out, wrapGroup(reg, cfg, byPos[pos])...)
		}
		return out
	default: // GroupAll
		return wrapGroup(reg, cfg, elems)
	}
}

func wrapGroup(reg *feature.Registry, cfg FieldTypeConfig, elems []*element) []Instruction {
	if len(elems) == 0 {
		return nil
	}
	var out []Instruction
	for _, e := range elems {
		out = append(out, Instruction{PushTerm: toQueryElement(reg, e)})
	}
	if len(elems) == 1 && !cfg.GroupSingle {
		return out
	}
	out = append(out, Instruction{Operator: cfg.OperatorName, Arity: len(elems)})
	return out
}

func toQueryElement(reg *feature.Registry, e *element) *document.QueryElement {
	f := reg.ByID(e.featureID)
	name := ""
	if f != nil {
		name = f.Name
	}
	return &document.QueryElement{Type: name, Value: e.value, FieldNo: e.fieldNo, Position: e.pos, Priority: e.priority}
}

// eliminateCoveredQuery is pkg/bind's eliminateCovered rule, specialized
// to query elements (whose coverage span is (pos, pos+length) within
// one field rather than a document byte range).
func eliminateCoveredQuery(elems []*element) []*element {
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
			if p.pos+p.length < e.pos+e.length {
				continue
			}
			if p.priority > e.priority && p.pos <= e.pos && p.pos+p.length >= e.pos+e.length {
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
