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

package xpath

// Event names what happened to a matched expression.
type Event int

const (
	// EventTagStart fires the instant a tag-selection expression's last
	// step opens.
	EventTagStart Event = iota
	// EventTagEnd fires when that same tag closes.
	EventTagEnd
	// EventContent fires once per content chunk seen directly inside
	// the tag a content-selection expression resolved to.
	EventContent
	// EventAttribute fires once per matching attribute on the tag an
	// attribute-selection expression resolved to.
	EventAttribute
)

// Match is one automaton firing: expression ID, what kind of event it
// was, and the associated text (attribute/content value; empty for
// EventTagStart/EventTagEnd).
type Match struct {
	ID    int
	Event Event
	Value string
}

type waypoint struct {
	exprIdx int
	stepIdx int
}

// pendingMatch is a waypoint that advanced into this tag by name but
// whose step carries attribute-value predicates not yet confirmed — it
// is promoted into the frame's waypoints/hosted only once every
// predicate clause has matched an attribute reported for this tag
// (spec.md §4.3). A clause never satisfied by the time the tag's
// attributes stop arriving simply stays pending and is dropped when the
// frame is popped: the automaton never backtracks or emits a late
// failure for it.
type pendingMatch struct {
	exprIdx   int
	newIdx    int
	remaining []attrPredicate
}

type frame struct {
	waypoints []waypoint
	// hosted holds, for every expression whose path steps complete at
	// this tag, its index into Automaton.exprs — the tag "hosts" that
	// expression's content/attribute/tag-span selection.
	hosted  []int
	pending []pendingMatch
}

// Context drives one Automaton over a single document's event stream. It
// keeps a stack of frames exactly as deep as the currently open tag
// nesting, pushing on PutOpenTag and popping on PutCloseTag — no
// backtracking, no NFA position-set bookkeeping (see package doc).
//
// A Context is not safe for concurrent use; the Automaton it was created
// from is shared read-only by any number of Contexts (see
// SPEC_FULL.md §5).
type Context struct {
	automaton *Automaton
	stack     []frame
}

// NewContext creates a Context over a (Frozen) Automaton.
func NewContext(a *Automaton) *Context {
	root := frame{}
	for i, expr := range a.exprs {
		if len(expr.Steps) == 0 {
			// A zero-step expression (e.g. a bare "()" content
			// selector) is already "at" the document root: it is
			// hosted there from the start, not upon some open tag.
			root.hosted = append(root.hosted, i)
			continue
		}
		root.waypoints = append(root.waypoints, waypoint{exprIdx: i, stepIdx: 0})
	}
	return &Context{automaton: a, stack: []frame{root}}
}

func (c *Context) top() frame {
	return c.stack[len(c.stack)-1]
}

// PutOpenTag advances every active waypoint by one step for the named
// tag, pushes a new frame, and returns the EventTagStart matches for
// tag-selection expressions whose path is now fully satisfied.
func (c *Context) PutOpenTag(name string) []Match {
	parent := c.top()
	next := frame{}
	var matches []Match
	for _, wp := range parent.waypoints {
		expr := c.automaton.exprs[wp.exprIdx]
		if wp.stepIdx >= len(expr.Steps) {
			continue
		}
		st := expr.Steps[wp.stepIdx]
		if st.name == "*" || st.name == name {
			newIdx := wp.stepIdx + 1
			if len(st.predicates) > 0 {
				remaining := make([]attrPredicate, len(st.predicates))
				copy(remaining, st.predicates)
				next.pending = append(next.pending, pendingMatch{exprIdx: wp.exprIdx, newIdx: newIdx, remaining: remaining})
				continue
			}
			next.waypoints = append(next.waypoints, waypoint{exprIdx: wp.exprIdx, stepIdx: newIdx})
			if newIdx == len(expr.Steps) {
				next.hosted = append(next.hosted, wp.exprIdx)
				if expr.Class == ClassTag {
					matches = append(matches, Match{ID: expr.ID, Event: EventTagStart})
				}
			}
			continue
		}
		if st.descendant {
			next.waypoints = append(next.waypoints, wp)
		}
	}
	c.stack = append(c.stack, next)
	return matches
}

// PutCloseTag pops the frame pushed by the matching PutOpenTag and
// returns EventTagEnd matches for every tag-selection expression hosted
// at this tag.
func (c *Context) PutCloseTag() []Match {
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	var matches []Match
	for _, idx := range top.hosted {
		expr := c.automaton.exprs[idx]
		if expr.Class == ClassTag {
			matches = append(matches, Match{ID: expr.ID, Event: EventTagEnd})
		}
	}
	return matches
}

// PutAttribute reports a (name, value) attribute pair seen on the
// currently open tag, returning EventAttribute matches for every
// attribute-selection expression hosted at that tag whose AttrName is
// name or "*", plus any EventTagStart matches for predicate-gated steps
// (spec.md §4.3) whose last outstanding `[@a="v"]` clause this attribute
// just satisfies.
func (c *Context) PutAttribute(name, value string) []Match {
	f := &c.stack[len(c.stack)-1]
	var matches []Match
	for _, idx := range f.hosted {
		expr := c.automaton.exprs[idx]
		if expr.Class != ClassAttribute {
			continue
		}
		if expr.AttrName == "*" || expr.AttrName == name {
			matches = append(matches, Match{ID: expr.ID, Event: EventAttribute, Value: value})
		}
	}
	if len(f.pending) == 0 {
		return matches
	}
	var stillPending []pendingMatch
	for _, pm := range f.pending {
		var remaining []attrPredicate
		for _, pr := range pm.remaining {
			if pr.name == name && pr.value == value {
				continue
			}
			remaining = append(remaining, pr)
		}
		if len(remaining) > 0 {
			stillPending = append(stillPending, pendingMatch{exprIdx: pm.exprIdx, newIdx: pm.newIdx, remaining: remaining})
			continue
		}
		expr := c.automaton.exprs[pm.exprIdx]
		f.waypoints = append(f.waypoints, waypoint{exprIdx: pm.exprIdx, stepIdx: pm.newIdx})
		if pm.newIdx == len(expr.Steps) {
			f.hosted = append(f.hosted, pm.exprIdx)
			if expr.Class == ClassTag {
				matches = append(matches, Match{ID: expr.ID, Event: EventTagStart})
			}
		}
	}
	f.pending = stillPending
	return matches
}

// PutContent reports a chunk of character content seen directly inside
// the currently open tag, returning EventContent matches for every
// content-selection expression hosted there.
func (c *Context) PutContent(text string) []Match {
	top := c.top()
	var matches []Match
	for _, idx := range top.hosted {
		expr := c.automaton.exprs[idx]
		if expr.Class == ClassContent {
			matches = append(matches, Match{ID: expr.ID, Event: EventContent, Value: text})
		}
	}
	return matches
}

// Depth reports the current tag nesting depth (0 at the document root,
// before any tag has been opened).
func (c *Context) Depth() int { return len(c.stack) - 1 }
