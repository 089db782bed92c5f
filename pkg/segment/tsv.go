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
	"strconv"

	"github.com/strusgo/analyzer/pkg/analyzererr"
	"github.com/strusgo/analyzer/pkg/xpath"
)

// RecordTag is the synthetic element name every TSV row is wrapped in,
// so selector expressions address fields as "record/<header-name>" the
// same way they address nested XML/JSON elements. Ported from
// tsvSegmenter.cpp's per-line subsection behavior (every TSV_PARSE_STATE
// row opens and closes one subsection).
const RecordTag = "record"

// LineNoField is the reserved field name tsvSegmenter.cpp treats
// specially: every row emits it first, as a synthetic field holding the
// row's 1-based line number. A header column of that name is not
// emitted.
const LineNoField = "lineno"

// TSVSegmenter parses a tab-separated document: the first line is a
// header of field names, every subsequent line is one record/row,
// wrapped in a RecordTag subsection, with a LineNoField child element
// followed by one child element per column. A tag-selection match on a
// field carries the field's text.
type TSVSegmenter struct{}

func (TSVSegmenter) MimeType() string { return "text/tab-separated-values" }

func (TSVSegmenter) CreateContext(a *xpath.Automaton, subContent []SubContentDef, factory Factory) Context {
	qc := &queueContext{automaton: a, subContent: subContent, factory: factory}
	qc.parse = func(buf []byte) ([]SegmentEvent, error) {
		return parseTSV(buf, a)
	}
	return qc
}

func parseTSV(buf []byte, a *xpath.Automaton) ([]SegmentEvent, error) {
	lines := splitTSVLines(buf)
	if len(lines) == 0 {
		return nil, nil
	}
	headerCells := splitTabs(lines[0])
	header := make([]string, len(headerCells))
	for i, c := range headerCells {
		header[i] = c.text
	}
	if len(header) == 0 {
		return nil, analyzererr.NewBadDocument(0, "empty TSV header")
	}
	ctx := xpath.NewContext(a)
	var events []SegmentEvent
	emit := func(m xpath.Match, pos int) {
		events = append(events, SegmentEvent{ID: m.ID, Pos: pos, Content: m.Value})
	}
	for lineno, ln := range lines[1:] {
		row := splitTabs(ln)
		recordImmediate, recordDeferred := splitSectionMatches(a, ctx.PutOpenTag(RecordTag))
		for _, m := range recordImmediate {
			emit(m, ln.pos)
		}
		for col, field := range append([]string{LineNoField}, header...) {
			var value string
			if col == 0 {
				value = strconv.Itoa(lineno + 1)
			} else if field == LineNoField {
				continue
			} else if col-1 < len(row) {
				value = row[col-1].text
			}
			valPos := ln.pos
			if col > 0 && col-1 < len(row) {
				valPos = row[col-1].pos
			}
			if field == "" {
				continue
			}
			fieldImmediate, fieldDeferred := splitSectionMatches(a, ctx.PutOpenTag(field))
			for _, m := range fieldImmediate {
				emit(m, valPos)
			}
			if value != "" {
				for _, m := range ctx.PutContent(value) {
					emit(m, valPos)
				}
			}
			ctx.PutCloseTag()
			for _, m := range fieldDeferred {
				if !isSectionEnd(a, m.ID) {
					m.Value = value
				}
				emit(m, valPos)
			}
		}
		ctx.PutCloseTag()
		endPos := ln.pos + len(ln.text)
		for _, m := range recordDeferred {
			emit(m, endPos)
		}
	}
	return events, nil
}

type tsvCell struct {
	text string
	pos  int
}

func splitTabs(line tsvCell) []tsvCell {
	return splitTabsText(line.text, line.pos)
}

func splitTSVLines(buf []byte) []tsvCell {
	var lines []tsvCell
	start := 0
	for i := 0; i <= len(buf); i++ {
		if i == len(buf) || buf[i] == '\n' {
			end := i
			if end > start && buf[end-1] == '\r' {
				end--
			}
			lines = append(lines, tsvCell{text: string(buf[start:end]), pos: start})
			start = i + 1
		}
	}
	// drop a single trailing empty line caused by a final newline
	if n := len(lines); n > 0 && lines[n-1].text == "" {
		lines = lines[:n-1]
	}
	return lines
}

func splitTabsText(s string, basePos int) []tsvCell {
	var cells []tsvCell
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\t' {
			cells = append(cells, tsvCell{text: s[start:i], pos: basePos + start})
			start = i + 1
		}
	}
	return cells
}
