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

// Package xpath compiles a subset of XPath selector expressions into a
// streaming automaton that matches a SAX-like sequence of open-tag,
// attribute, content, and close-tag events with no backtracking: every
// open tag pushes exactly one stack frame of still-active partial
// matches, and every close tag pops it.
//
// Grounded on original_source/src/segmenter_utils/xpathAutomaton.cpp
// (expression classification by trailing-token inspection) and
// original_source/src/utils/xpath.cpp (path joining rules). The match
// engine itself is a small hand-rolled stack, not a port of textwolf's
// XMLPathSelectAutomatonParser, which works over a wider event model than
// this package needs (see SPEC_FULL.md §4.3 and DESIGN NOTES §9: "a stack
// of active partial matches, not NFA-style position sets").
package xpath

import (
	"errors"
	"strings"

	"github.com/strusgo/analyzer/pkg/analyzererr"
)

// Class classifies what a compiled expression selects.
type Class int

const (
	// ClassTag selects the span of an element: its open tag to its
	// matching close tag.
	ClassTag Class = iota
	// ClassContent selects the text content directly inside an element
	// (not the content of nested elements).
	ClassContent
	// ClassAttribute selects the value of a named attribute on an
	// element's open tag.
	ClassAttribute
)

func (c Class) String() string {
	switch c {
	case ClassTag:
		return "tag"
	case ClassContent:
		return "content"
	case ClassAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// attrPredicate is one `@name="value"` clause of a step's `[...]`
// predicate list; every clause in the list must hold for the step to
// match (conjoined with ',').
type attrPredicate struct {
	name, value string
}

// step is one '/'-separated path component.
type step struct {
	name       string // "*" for wildcard
	descendant bool   // true if this step may match at any depth below its predecessor ("//" prefix)
	predicates []attrPredicate
}

// Expression is one compiled selector, identified by the id it was added
// with.
type Expression struct {
	ID        int
	Raw       string
	Steps     []step
	Class     Class
	AttrName  string // set when Class == ClassAttribute ("*" selects every attribute)
	IsSection bool   // true for a subsection delimiter (defineSubSection)
	IsEnd     bool   // true if this is the trailing-'~' end half of a subsection
}

// Automaton holds a frozen set of compiled expressions ready to drive
// Context instances. It is safe for concurrent read-only use by any
// number of Contexts once Freeze has been called (see SPEC_FULL.md §5).
type Automaton struct {
	exprs  []*Expression
	byID   map[int]*Expression
	frozen bool
}

// New creates an empty, unfrozen Automaton.
func New() *Automaton {
	return &Automaton{}
}

// AddExpression compiles and registers expr under id, classifying it as
// tag, content, or attribute selection the way getExpressionClass does in
// xpathAutomaton.cpp: an expression whose last step starts with '@' is an
// attribute selection; one whose last step is exactly "()" (or "name()")
// is a content selection; anything else is a tag selection.
func (a *Automaton) AddExpression(id int, expr string) error {
	if a.frozen {
		return analyzererr.ErrOperationOrder
	}
	compiled, err := compile(expr)
	if err != nil {
		return err
	}
	compiled.ID = id
	a.exprs = append(a.exprs, compiled)
	return nil
}

// DefineSubSection registers a start/end pair of tag-selection markers for
// the same path expression: startID fires when the path's element opens,
// endID fires when it closes. This is the Go equivalent of
// XPathAutomaton::defineSubSection, which installs the end marker as the
// same expression with a trailing '~'.
func (a *Automaton) DefineSubSection(startID, endID int, expr string) error {
	if a.frozen {
		return analyzererr.ErrOperationOrder
	}
	start, err := compile(expr)
	if err != nil {
		return err
	}
	start.ID = startID
	start.IsSection = true
	end, err := compile(expr)
	if err != nil {
		return err
	}
	end.ID = endID
	end.IsSection = true
	end.IsEnd = true
	a.exprs = append(a.exprs, start, end)
	return nil
}

// Freeze locks the expression set; no further AddExpression/
// DefineSubSection calls are accepted afterward.
func (a *Automaton) Freeze() {
	a.frozen = true
	a.byID = make(map[int]*Expression, len(a.exprs))
	for _, e := range a.exprs {
		a.byID[e.ID] = e
	}
}

// Expressions returns the compiled expressions in registration order.
func (a *Automaton) Expressions() []*Expression { return a.exprs }

// ExpressionByID returns the compiled Expression registered under id, or
// nil if none was. Only valid after Freeze.
func (a *Automaton) ExpressionByID(id int) *Expression { return a.byID[id] }

// compile parses one selector expression into steps plus a trailing
// class, following xpath.cpp's joinXPathExpression path-segment rules:
// segments are separated by '/', a leading "//" segment marks the next
// step as a descendant-anywhere match, '@name' is an attribute step, and
// a bare "()" or "name()" final segment is a content marker. A tag-name
// step may carry a trailing `[@a="v",@b="w"]` predicate list (spec.md
// §4.3): every clause must hold, checked against the attributes reported
// for the tag the step matches, before the step is considered satisfied.
func compile(expr string) (*Expression, error) {
	raw := expr
	isEnd := false
	if strings.HasSuffix(expr, "~") {
		isEnd = true
		expr = expr[:len(expr)-1]
	}
	if expr == "" {
		return &Expression{Raw: raw, Class: ClassTag, IsEnd: isEnd}, nil
	}
	parts := strings.Split(expr, "/")
	result := &Expression{Raw: raw, Class: ClassTag, IsEnd: isEnd}
	pendingDescendant := false
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				continue // a single leading '/' anchors the path at the root
			}
			pendingDescendant = true
			continue
		}
		last := i == len(parts)-1
		switch {
		case strings.HasPrefix(p, "@"):
			if !last {
				return nil, &analyzererr.BadExpressionError{Expression: raw, Pos: sumLen(parts[:i]) + 1}
			}
			result.Class = ClassAttribute
			result.AttrName = p[1:]
		case p == "()" || strings.HasSuffix(p, "()"):
			if !last {
				return nil, &analyzererr.BadExpressionError{Expression: raw, Pos: sumLen(parts[:i]) + 1}
			}
			result.Class = ClassContent
			name := strings.TrimSuffix(p, "()")
			if name != "" {
				result.Steps = append(result.Steps, step{name: name, descendant: pendingDescendant})
				pendingDescendant = false
			}
		default:
			name, preds, perr := splitPredicates(p)
			if perr != nil {
				return nil, &analyzererr.BadExpressionError{Expression: raw, Pos: sumLen(parts[:i]) + 1}
			}
			result.Steps = append(result.Steps, step{name: name, descendant: pendingDescendant, predicates: preds})
			pendingDescendant = false
		}
	}
	return result, nil
}

func sumLen(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	return n
}

// splitPredicates splits a tag-name step carrying a trailing
// `[@a="v",@b="w"]` predicate list (spec.md §4.3) into the bare name and
// its parsed, conjoined attribute-value predicates. A step with no '['
// is returned unchanged with a nil predicate list.
func splitPredicates(p string) (name string, preds []attrPredicate, err error) {
	idx := strings.IndexByte(p, '[')
	if idx < 0 {
		return p, nil, nil
	}
	if !strings.HasSuffix(p, "]") {
		return "", nil, errors.New("unterminated predicate list")
	}
	name = p[:idx]
	body := p[idx+1 : len(p)-1]
	for _, clause := range strings.Split(body, ",") {
		clause = strings.TrimSpace(clause)
		if !strings.HasPrefix(clause, "@") {
			return "", nil, errors.New("predicate clause must start with '@'")
		}
		eq := strings.IndexByte(clause, '=')
		if eq < 0 {
			return "", nil, errors.New("predicate clause missing '='")
		}
		attrName := clause[1:eq]
		if attrName == "" {
			return "", nil, errors.New("predicate clause missing attribute name")
		}
		value := strings.Trim(strings.TrimSpace(clause[eq+1:]), `"'`)
		preds = append(preds, attrPredicate{name: attrName, value: value})
	}
	return name, preds, nil
}
