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

// Package document holds the output data model produced by a
// DocumentAnalyzer and consumed by a QueryAnalyzer: terms, attributes,
// metadata, and the sub-document envelope.
//
// Grounded on include/strus/analyzer/{document.hpp,attribute.hpp,
// metaData.hpp,term.hpp} in original_source.
package document

// Term is one analyzed, position-bound token emitted for a feature.
type Term struct {
	Type     string
	Value    string
	Pos      int // 1-based ordinal position, per the position-binding rules
	Len      int // number of ordinal positions this term spans (pkg/bind always sets 1)
}

// Attribute is a single named string value attached to the document (or,
// for queries, unused — attributes are a document-only concept).
type Attribute struct {
	Name  string
	Value string
}

// Number is a tagged union mirroring strus::NumericVariant: a metadata
// value is either absent, an integer, or a float, never a string.
type Number struct {
	kind  numberKind
	ival  int64
	fval  float64
}

type numberKind int

const (
	NumberNone numberKind = iota
	NumberInt
	NumberFloat
)

// IsZero reports whether the Number carries no value.
func (n Number) IsZero() bool { return n.kind == NumberNone }

// Int builds an integer-valued Number.
func Int(v int64) Number { return Number{kind: NumberInt, ival: v} }

// Float builds a float-valued Number.
func Float(v float64) Number { return Number{kind: NumberFloat, fval: v} }

// AsFloat64 returns the Number widened to float64, for arithmetic
// aggregators (SPEC_FULL.md's domain-stack aggregator components).
func (n Number) AsFloat64() float64 {
	if n.kind == NumberInt {
		return float64(n.ival)
	}
	return n.fval
}

// MetaData is a single named numeric value attached to the document.
type MetaData struct {
	Name  string
	Value Number
}

// SubDocument delimits a nested analyzer result inside a parent document,
// keyed by its class name (default "." for the top-level document, per
// Document.SubDocumentTypeName in original_source).
type SubDocument struct {
	TypeName string
}

// Document is the full structured result of one DocumentAnalyzer run: the
// terms bound to search-index and forward-index features, the document
// attributes, and its metadata.
type Document struct {
	SubDocumentTypeName string
	SearchIndexTerms    []Term
	ForwardIndexTerms   []Term
	Attributes          []Attribute
	MetaData            []MetaData
}

// New creates an empty Document for the default (top-level) sub-document
// class.
func New() *Document {
	return &Document{SubDocumentTypeName: "."}
}

// AddAttribute appends an attribute to the document.
func (d *Document) AddAttribute(name, value string) {
	d.Attributes = append(d.Attributes, Attribute{Name: name, Value: value})
}

// SetMetaData appends (or, if name already present, overwrites) a
// metadata value.
func (d *Document) SetMetaData(name string, value Number) {
	for i := range d.MetaData {
		if d.MetaData[i].Name == name {
			d.MetaData[i].Value = value
			return
		}
	}
	d.MetaData = append(d.MetaData, MetaData{Name: name, Value: value})
}

// QueryField is one parsed query input: a field type plus its raw text
// content, the query-side counterpart of a document segment.
type QueryField struct {
	Type    string
	Content string
}

// QueryElement is one analyzed query term bound to a field position, the
// query-side counterpart of Term.
type QueryElement struct {
	Type     string
	Value    string
	FieldNo  int
	Position int
	Priority int
}
