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

package segment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/strusgo/analyzer/pkg/analyzererr"
	"github.com/strusgo/analyzer/pkg/xpath"
)

// JSONSegmenter parses the document with encoding/json into a generic
// tree, then linearizes it into the same open-tag/attribute/content/
// close-tag event stream the XML segmenter drives its automaton with —
// the same rules as cjson2textwolf.cpp in original_source: a key
// prefixed with '-' is an attribute of its enclosing element, a key
// named "#text" is that element's content, any other key names a child
// element (repeated once per array entry for array-valued keys). A
// tag-selection match on a key with a scalar value carries that value's
// text; one on an object-valued key carries no content.
//
// encoding/json is standard library, not a pack dependency: no example
// repo in the retrieval pack parses JSON, and the teacher's own
// pkg/textual/json_carrier.go/scan_json.go only frame raw JSON byte
// tokens rather than decode values, so there is no ecosystem tree parser
// to adopt here (see DESIGN.md).
type JSONSegmenter struct{}

func (JSONSegmenter) MimeType() string { return "application/json" }

func (JSONSegmenter) CreateContext(a *xpath.Automaton, subContent []SubContentDef, factory Factory) Context {
	qc := &queueContext{automaton: a, subContent: subContent, factory: factory}
	qc.parse = func(buf []byte) ([]SegmentEvent, error) {
		return parseJSON(buf, a)
	}
	return qc
}

func parseJSON(buf []byte, a *xpath.Automaton) ([]SegmentEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, analyzererr.NewBadDocument(int(dec.InputOffset()), err.Error())
	}
	ctx := xpath.NewContext(a)
	var events []SegmentEvent
	emit := func(m xpath.Match, pos int) {
		events = append(events, SegmentEvent{ID: m.ID, Pos: pos, Content: m.Value})
	}
	pos := 0 // byte positions are not meaningfully recoverable once decoded into a generic tree; segments reuse the whole-document offset
	var walkValue func(name string, v interface{})
	// walkObject processes one JSON object's fields, returning the
	// EventTagStart matches its "-name" attribute fields resolved for a
	// predicate-gated tag step (spec.md §4.3) on the enclosing element —
	// these arrive too late for the PutOpenTag call that opened this
	// element to have seen them, so the caller folds them into its own
	// openMatches before classifying immediate-vs-deferred.
	walkObject := func(obj map[string]interface{}) []xpath.Match {
		var tagMatches []xpath.Match
		for k, v := range obj {
			switch {
			case k == "#text":
				for _, m := range ctx.PutContent(scalarString(v)) {
					emit(m, pos)
				}
			case len(k) > 0 && k[0] == '-':
				for _, m := range ctx.PutAttribute(k[1:], scalarString(v)) {
					if m.Event == xpath.EventTagStart {
						tagMatches = append(tagMatches, m)
						continue
					}
					emit(m, pos)
				}
			default:
				walkValue(k, v)
			}
		}
		return tagMatches
	}
	walkValue = func(name string, v interface{}) {
		switch val := v.(type) {
		case []interface{}:
			for _, elem := range val {
				walkValue(name, elem)
			}
		case map[string]interface{}:
			openMatches := ctx.PutOpenTag(name)
			openMatches = append(openMatches, walkObject(val)...)
			immediate, deferred := splitSectionMatches(a, openMatches)
			for _, m := range immediate {
				emit(m, pos)
			}
			ctx.PutCloseTag()
			for _, m := range deferred {
				emit(m, pos)
			}
		default:
			openMatches := ctx.PutOpenTag(name)
			text := scalarString(val)
			if text != "" {
				for _, m := range ctx.PutContent(text) {
					emit(m, pos)
				}
			}
			immediate, deferred := splitSectionMatches(a, openMatches)
			for _, m := range immediate {
				emit(m, pos)
			}
			ctx.PutCloseTag()
			for _, m := range deferred {
				if !isSectionEnd(a, m.ID) {
					m.Value = text
				}
				emit(m, pos)
			}
		}
	}
	switch top := root.(type) {
	case map[string]interface{}:
		walkObject(top)
	case []interface{}:
		for _, elem := range top {
			if obj, ok := elem.(map[string]interface{}); ok {
				walkObject(obj)
			}
		}
	default:
		return nil, fmt.Errorf("%w: top-level JSON value must be an object or array", analyzererr.ErrBadDocument)
	}
	return events, nil
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
