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

package segment_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strusgo/analyzer/pkg/segment"
	"github.com/strusgo/analyzer/pkg/xpath"
)

func drain(t *testing.T, ctx segment.Context) []segment.SegmentEvent {
	t.Helper()
	var out []segment.SegmentEvent
	for {
		ev, err := ctx.GetNext()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestXMLSegmenterContentAndTag(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(1, "doc/title()"))
	require.NoError(t, a.AddExpression(2, "doc/item"))
	a.Freeze()

	s := segment.XMLSegmenter{}
	ctx := s.CreateContext(a, nil, nil)
	require.NoError(t, ctx.PutInput([]byte(`<doc><title>Report</title><item>one</item></doc>`), true))

	events := drain(t, ctx)
	require.Len(t, events, 2)
	require.Equal(t, 1, events[0].ID)
	require.Equal(t, "Report", events[0].Content)
	require.Equal(t, 2, events[1].ID)
	require.Contains(t, events[1].Content, "<item>one</item>")
}

func TestXMLSegmenterAttribute(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(5, "doc/item/@id"))
	a.Freeze()

	s := segment.XMLSegmenter{}
	ctx := s.CreateContext(a, nil, nil)
	require.NoError(t, ctx.PutInput([]byte(`<doc><item id="42"/></doc>`), true))

	events := drain(t, ctx)
	require.Len(t, events, 1)
	require.Equal(t, "42", events[0].Content)
}

func TestJSONSegmenter(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(1, "title"))
	a.Freeze()

	s := segment.JSONSegmenter{}
	ctx := s.CreateContext(a, nil, nil)
	require.NoError(t, ctx.PutInput([]byte(`{"title": "hello"}`), true))

	events := drain(t, ctx)
	require.Len(t, events, 1)
	require.Equal(t, "hello", events[0].Content)
}

func TestTSVSegmenter(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(1, "record/name"))
	require.NoError(t, a.AddExpression(2, "record/lineno"))
	a.Freeze()

	s := segment.TSVSegmenter{}
	ctx := s.CreateContext(a, nil, nil)
	require.NoError(t, ctx.PutInput([]byte("name\tvalue\nfoo\t1\nbar\t2\n"), true))

	events := drain(t, ctx)
	var names, linenos []string
	for _, ev := range events {
		switch ev.ID {
		case 1:
			names = append(names, ev.Content)
		case 2:
			linenos = append(linenos, ev.Content)
		}
	}
	require.Equal(t, []string{"foo", "bar"}, names)
	require.Equal(t, []string{"1", "2"}, linenos)
}

func TestPlainSegmenter(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(1, "()"))
	a.Freeze()

	s := segment.PlainSegmenter{}
	ctx := s.CreateContext(a, nil, nil)
	require.NoError(t, ctx.PutInput([]byte("hello plain world"), true))

	events := drain(t, ctx)
	require.Len(t, events, 1)
	require.Equal(t, "hello plain world", events[0].Content)
}

func TestSubContentSplicesNestedSegmenter(t *testing.T) {
	a := xpath.New()
	require.NoError(t, a.AddExpression(3, "doc/embed()"))
	require.NoError(t, a.AddExpression(4, "title()"))
	a.Freeze()

	defs := []segment.SubContentDef{{ID: 3, MimeType: "application/json"}}
	factory := func(mime string) (segment.Segmenter, bool) {
		if mime == "application/json" {
			return segment.JSONSegmenter{}, true
		}
		return nil, false
	}

	s := segment.XMLSegmenter{}
	ctx := s.CreateContext(a, defs, factory)
	require.NoError(t, ctx.PutInput([]byte(`<doc><embed>{"title": "nested hi"}</embed></doc>`), true))

	events := drain(t, ctx)
	require.Len(t, events, 1)
	require.Equal(t, 4, events[0].ID)
	require.Equal(t, "nested hi", events[0].Content)
}

func TestNeedMoreBeforeEOF(t *testing.T) {
	a := xpath.New()
	a.Freeze()
	s := segment.PlainSegmenter{}
	ctx := s.CreateContext(a, nil, nil)
	require.NoError(t, ctx.PutInput([]byte("partial"), false))
	_, err := ctx.GetNext()
	require.ErrorIs(t, err, segment.ErrNeedMore)
}
