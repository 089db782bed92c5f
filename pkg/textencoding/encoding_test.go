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

package textencoding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strusgo/analyzer/pkg/textencoding"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		raw  string
		want textencoding.Name
	}{
		{"", textencoding.UTF8},
		{"UTF-8", textencoding.UTF8},
		{"utf-16", textencoding.UTF16BE},
		{"UTF-16LE", textencoding.UTF16LE},
		{"ISO-8859-1", textencoding.IsoLatin(1)},
		{"isolatin1", textencoding.IsoLatin(1)},
		{"iso-8859-9", textencoding.IsoLatin(9)},
		{"UCS-4", textencoding.UTF32BE},
	}
	for _, c := range cases {
		got, err := textencoding.Resolve(c.raw)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestResolveUnsupported(t *testing.T) {
	_, err := textencoding.Resolve("klingon-9000")
	require.Error(t, err)
}

func TestDetectBOM(t *testing.T) {
	cases := []struct {
		name    string
		buf     []byte
		want    textencoding.Name
		wantLen int
		wantOK  bool
	}{
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'x'}, textencoding.UTF8, 3, true},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 'x'}, textencoding.UTF16BE, 2, true},
		{"utf16le", []byte{0xFF, 0xFE, 'x', 0x00}, textencoding.UTF16LE, 2, true},
		{"utf32be", []byte{0x00, 0x00, 0xFE, 0xFF}, textencoding.UTF32BE, 4, true},
		{"utf32le", []byte{0xFF, 0xFE, 0x00, 0x00}, textencoding.UTF32LE, 4, true},
		{"none", []byte("<doc/>"), "", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			name, n, ok := textencoding.DetectBOM(c.buf)
			require.Equal(t, c.wantOK, ok)
			if ok {
				require.Equal(t, c.want, name)
				require.Equal(t, c.wantLen, n)
			}
		})
	}
}

func TestConvertUTF8Passthrough(t *testing.T) {
	enc, err := textencoding.New("")
	require.NoError(t, err)
	out, err := enc.Convert([]byte("héllo"), true)
	require.NoError(t, err)
	require.Equal(t, "héllo", out)
}

func TestConvertUTF8SplitAcrossChunks(t *testing.T) {
	enc, err := textencoding.New("utf-8")
	require.NoError(t, err)
	full := []byte("café")
	// split inside the 2-byte é sequence (0xC3 0xA9)
	split := len(full) - 1
	out1, err := enc.Convert(full[:split], false)
	require.NoError(t, err)
	out2, err := enc.Convert(full[split:], true)
	require.NoError(t, err)
	require.Equal(t, "café", out1+out2)
}

func TestConvertUTF16BE(t *testing.T) {
	enc, err := textencoding.New("UTF-16BE")
	require.NoError(t, err)
	// "hi" in UTF-16BE
	out, err := enc.Convert([]byte{0x00, 'h', 0x00, 'i'}, true)
	require.NoError(t, err)
	require.Equal(t, "hi", out)
}

func TestConvertISO88591(t *testing.T) {
	enc, err := textencoding.New("ISO-8859-1")
	require.NoError(t, err)
	out, err := enc.Convert([]byte{0xE9}, true) // é in Latin-1
	require.NoError(t, err)
	require.Equal(t, "é", out)
}
