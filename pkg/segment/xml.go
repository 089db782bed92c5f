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
	"fmt"
	"sort"

	"github.com/strusgo/analyzer/pkg/analyzererr"
	"github.com/strusgo/analyzer/pkg/xpath"
)

// XMLSegmenter drives pkg/xpath over a hand-scanned tag/attribute/content
// stream, the quote-aware, stack-aware tag scanning style of the
// teacher's pkg/textual/scan_xml.go adapted from a bufio.SplitFunc token
// boundary into a whole-buffer index scan (see package doc).
type XMLSegmenter struct{}

func (XMLSegmenter) MimeType() string { return "application/xml" }

func (XMLSegmenter) CreateContext(a *xpath.Automaton, subContent []SubContentDef, factory Factory) Context {
	qc := &queueContext{automaton: a, subContent: subContent, factory: factory}
	qc.parse = func(buf []byte) ([]SegmentEvent, error) {
		return parseXML(buf, a)
	}
	return qc
}

type xmlOpenFrame struct {
	startPos int
	matches  []xpath.Match
}

func parseXML(buf []byte, a *xpath.Automaton) ([]SegmentEvent, error) {
	ctx := xpath.NewContext(a)
	var events []SegmentEvent
	var stack []xmlOpenFrame
	n := len(buf)
	i := 0
	for i < n {
		if buf[i] != '<' {
			start := i
			for i < n && buf[i] != '<' {
				i++
			}
			text := string(buf[start:i])
			if hasNonSpace(text) {
				for _, m := range ctx.PutContent(text) {
					events = append(events, SegmentEvent{ID: m.ID, Pos: start, Content: m.Value})
				}
			}
			continue
		}
		// buf[i] == '<'
		switch {
		case i+3 < n && buf[i+1] == '!' && buf[i+2] == '-' && buf[i+3] == '-':
			end := indexOf(buf, i+4, "-->")
			if end < 0 {
				return nil, analyzererr.NewBadDocument(i, "unterminated comment")
			}
			i = end + 3
		case i+8 < n && string(buf[i+1:i+9]) == "![CDATA[":
			end := indexOf(buf, i+9, "]]>")
			if end < 0 {
				return nil, analyzererr.NewBadDocument(i, "unterminated CDATA section")
			}
			text := string(buf[i+9 : end])
			if text != "" {
				for _, m := range ctx.PutContent(text) {
					events = append(events, SegmentEvent{ID: m.ID, Pos: i + 9, Content: m.Value})
				}
			}
			i = end + 3
		case i+1 < n && buf[i+1] == '?':
			end := indexOf(buf, i+2, "?>")
			if end < 0 {
				return nil, analyzererr.NewBadDocument(i, "unterminated processing instruction")
			}
			i = end + 2
		case i+1 < n && buf[i+1] == '!':
			end := indexOfByte(buf, i+2, '>')
			if end < 0 {
				return nil, analyzererr.NewBadDocument(i, "unterminated declaration")
			}
			i = end + 1
		case i+1 < n && buf[i+1] == '/':
			end := indexOfByte(buf, i+2, '>')
			if end < 0 {
				return nil, analyzererr.NewBadDocument(i, "unterminated close tag")
			}
			name := trimSpace(string(buf[i+2 : end]))
			if len(stack) == 0 {
				return nil, analyzererr.NewBadDocument(i, fmt.Sprintf("close tag %q with no matching open tag", name))
			}
			ctx.PutCloseTag() // pops the xpath stack frame; the ids it reports were already captured in top.matches at open time
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			endPos := end + 1
			for _, m := range top.matches {
				expr := a.ExpressionByID(m.ID)
				if expr != nil && expr.IsSection && expr.IsEnd {
					events = append(events, SegmentEvent{ID: m.ID, Pos: endPos})
				} else {
					events = append(events, SegmentEvent{ID: m.ID, Pos: top.startPos, Content: string(buf[top.startPos:endPos])})
				}
			}
			i = endPos
		default:
			tagStart := i
			name, attrs, selfClose, next, err := scanOpenTag(buf, i)
			if err != nil {
				return nil, err
			}
			openMatches := ctx.PutOpenTag(name)
			for _, kv := range attrs {
				for _, m := range ctx.PutAttribute(kv[0], kv[1]) {
					if m.Event == xpath.EventTagStart {
						// a predicate-gated tag step (spec.md §4.3) just had
						// its last outstanding clause satisfied by this
						// attribute; fold it into openMatches so it is
						// deferred and emitted with the full tag span at
						// close time exactly like an ordinary tag match.
						openMatches = append(openMatches, m)
						continue
					}
					events = append(events, SegmentEvent{ID: m.ID, Pos: tagStart, Content: m.Value})
				}
			}
			if selfClose {
				ctx.PutCloseTag() // pops the xpath stack frame opened just above
				for _, m := range openMatches {
					expr := a.ExpressionByID(m.ID)
					switch {
					case expr != nil && expr.IsSection && !expr.IsEnd:
						events = append(events, SegmentEvent{ID: m.ID, Pos: tagStart})
					case expr != nil && expr.IsSection && expr.IsEnd:
						events = append(events, SegmentEvent{ID: m.ID, Pos: next})
					default:
						events = append(events, SegmentEvent{ID: m.ID, Pos: tagStart, Content: string(buf[tagStart:next])})
					}
				}
			} else {
				var immediate, deferred []xpath.Match
				for _, m := range openMatches {
					expr := a.ExpressionByID(m.ID)
					if expr != nil && expr.IsSection && !expr.IsEnd {
						immediate = append(immediate, m)
					} else {
						deferred = append(deferred, m)
					}
				}
				for _, m := range immediate {
					events = append(events, SegmentEvent{ID: m.ID, Pos: tagStart})
				}
				stack = append(stack, xmlOpenFrame{startPos: tagStart, matches: deferred})
			}
			i = next
		}
	}
	if len(stack) != 0 {
		return nil, analyzererr.NewBadDocument(n, "unclosed element at end of document")
	}
	// tag-span matches are appended when their element closes, after the
	// events of its nested content; restore byte-position order
	sort.SliceStable(events, func(i, j int) bool { return events[i].Pos < events[j].Pos })
	return events, nil
}

// scanOpenTag parses "<name attr=\"v\" attr2='v2' />" or "<name ...>"
// starting at buf[pos] == '<', returning the tag name, its attributes in
// order, whether it is self-closing, and the index just past the '>'.
func scanOpenTag(buf []byte, pos int) (name string, attrs [][2]string, selfClose bool, next int, err error) {
	n := len(buf)
	i := pos + 1
	start := i
	for i < n && !isNameEnd(buf[i]) {
		i++
	}
	name = string(buf[start:i])
	for {
		for i < n && isSpace(buf[i]) {
			i++
		}
		if i >= n {
			return "", nil, false, 0, analyzererr.NewBadDocument(pos, "unterminated open tag")
		}
		if buf[i] == '/' && i+1 < n && buf[i+1] == '>' {
			return name, attrs, true, i + 2, nil
		}
		if buf[i] == '>' {
			return name, attrs, false, i + 1, nil
		}
		attrStart := i
		for i < n && buf[i] != '=' && !isSpace(buf[i]) && buf[i] != '>' && buf[i] != '/' {
			i++
		}
		attrName := string(buf[attrStart:i])
		for i < n && isSpace(buf[i]) {
			i++
		}
		var val string
		if i < n && buf[i] == '=' {
			i++
			for i < n && isSpace(buf[i]) {
				i++
			}
			if i < n && (buf[i] == '"' || buf[i] == '\'') {
				quote := buf[i]
				i++
				valStart := i
				for i < n && buf[i] != quote {
					i++
				}
				if i >= n {
					return "", nil, false, 0, analyzererr.NewBadDocument(pos, "unterminated attribute value")
				}
				val = string(buf[valStart:i])
				i++
			}
		}
		if attrName != "" {
			attrs = append(attrs, [2]string{attrName, val})
		}
	}
}

func isNameEnd(b byte) bool {
	return isSpace(b) || b == '>' || b == '/'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func hasNonSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return true
		}
	}
	return false
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && isSpace(s[i]) {
		i++
	}
	for j > i && isSpace(s[j-1]) {
		j--
	}
	return s[i:j]
}

func indexOf(buf []byte, from int, sub string) int {
	for i := from; i+len(sub) <= len(buf); i++ {
		if string(buf[i:i+len(sub)]) == sub {
			return i
		}
	}
	return -1
}

func indexOfByte(buf []byte, from int, b byte) int {
	for i := from; i < len(buf); i++ {
		if buf[i] == b {
			return i
		}
	}
	return -1
}
