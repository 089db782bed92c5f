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

package classdetect_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strusgo/analyzer/pkg/classdetect"
)

func TestDetectXML(t *testing.T) {
	c, ok := classdetect.Detect([]byte(`<?xml version="1.0" encoding="UTF-8"?><doc/>`))
	require.True(t, ok)
	require.Equal(t, classdetect.XML, c.Scheme)
	require.Equal(t, "utf-8", c.Encoding)
}

func TestDetectXMLNoDeclaration(t *testing.T) {
	c, ok := classdetect.Detect([]byte(`  <doc><a>1</a></doc>`))
	require.True(t, ok)
	require.Equal(t, classdetect.XML, c.Scheme)
	require.Equal(t, "", c.Encoding)
}

func TestDetectJSON(t *testing.T) {
	c, ok := classdetect.Detect([]byte(`{ "doc": {"a": 1} }`))
	require.True(t, ok)
	require.Equal(t, classdetect.JSON, c.Scheme)
}

func TestDetectTSV(t *testing.T) {
	c, ok := classdetect.Detect([]byte("id\tname\tvalue\n1\tfoo\tbar\n2\tbaz\tqux\n"))
	require.True(t, ok)
	require.Equal(t, classdetect.TSV, c.Scheme)
}

func TestDetectPlain(t *testing.T) {
	c, ok := classdetect.Detect([]byte("just some plain text content\nwith a second line\n"))
	require.True(t, ok)
	require.Equal(t, classdetect.Plain, c.Scheme)
}

func TestDetectNotTSVWhenUnbalanced(t *testing.T) {
	ok := false
	if c, detected := classdetect.Detect([]byte("a\tb\tc\nx\ty\n")); detected && c.Scheme == classdetect.TSV {
		ok = true
	}
	require.False(t, ok)
}
