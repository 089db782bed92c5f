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

	"github.com/strusgo/analyzer/pkg/analyzererr"
	"github.com/strusgo/analyzer/pkg/xpath"
)

// PlainSegmenter treats the whole input as a single content segment per
// registered id, the way src/segmenter_plain/segmenter.cpp does: it does
// not understand structure, so only selector expressions with an empty
// path (bare content/tag selection at the document root) are accepted.
type PlainSegmenter struct{}

func (PlainSegmenter) MimeType() string { return "text/plain" }

func (PlainSegmenter) CreateContext(a *xpath.Automaton, subContent []SubContentDef, factory Factory) Context {
	qc := &queueContext{automaton: a, subContent: subContent, factory: factory}
	qc.parse = func(buf []byte) ([]SegmentEvent, error) {
		return parsePlain(buf, a)
	}
	return qc
}

func parsePlain(buf []byte, a *xpath.Automaton) ([]SegmentEvent, error) {
	for _, expr := range a.Expressions() {
		if len(expr.Steps) != 0 {
			return nil, fmt.Errorf("%w: plain text segmenter only accepts root-level selector expressions, got %q", analyzererr.ErrInvalidArgument, expr.Raw)
		}
	}
	ctx := xpath.NewContext(a)
	var events []SegmentEvent
	text := string(buf)
	for _, m := range ctx.PutContent(text) {
		events = append(events, SegmentEvent{ID: m.ID, Pos: 0, Content: m.Value})
	}
	return events, nil
}
