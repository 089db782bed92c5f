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

// Package textencoding converts arbitrary input character sets to UTF-8.
//
// It is the leaf component of the analyzer pipeline (see SPEC_FULL.md §4.1):
// every other component only ever sees UTF-8 bytes. Conversion is streaming
// and stateful across chunks, the way the teacher's
// pkg/textual/io_reader_transcoder.go frames the same "decode at the
// boundary" contract, ported field-for-field from
// original_source/src/utils/textEncoder.cpp.
package textencoding

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/strusgo/analyzer/pkg/analyzererr"
)

// Name is a canonical, case/hyphen-normalized encoding name.
type Name string

const (
	UTF8    Name = "utf8"
	UTF16BE Name = "utf16be"
	UTF16LE Name = "utf16le"
	UTF32BE Name = "utf32be"
	UTF32LE Name = "utf32le"
	UCS2BE  Name = "ucs2be"
	UCS2LE  Name = "ucs2le"
	UCS4BE  Name = "ucs4be"
	UCS4LE  Name = "ucs4le"
)

// IsoLatin returns the canonical name for ISO-8859-<page>, page in 1..9.
func IsoLatin(page int) Name {
	return Name(fmt.Sprintf("iso8859%d", page))
}

// Normalize reproduces original_source's parseEncoding: lower-case, strip
// whitespace/control characters and hyphens.
func Normalize(raw string) Name {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c > 32 && c != '-' {
			out = append(out, c|32)
		}
	}
	return Name(out)
}

// Resolve maps a (possibly loosely spelled) encoding name to a canonical
// Name, accepting the aliases original_source/src/utils/textEncoder.cpp
// accepts ("utf16" == "utf16be", "ucs4" == "utf32be", "isolatinN" ==
// "iso8859N", ...).
func Resolve(raw string) (Name, error) {
	if raw == "" {
		return UTF8, nil
	}
	n := Normalize(raw)
	switch n {
	case "", "utf8":
		return UTF8, nil
	case "utf16", "utf16be":
		return UTF16BE, nil
	case "utf16le":
		return UTF16LE, nil
	case "ucs2", "ucs2be":
		return UCS2BE, nil
	case "ucs2le":
		return UCS2LE, nil
	case "utf32", "ucs4", "utf32be", "ucs4be":
		return UTF32BE, nil
	case "utf32le", "ucs4le":
		return UTF32LE, nil
	}
	if page, ok := isoLatinPage(string(n), "isolatin"); ok {
		return IsoLatin(page), nil
	}
	if page, ok := isoLatinPage(string(n), "iso8859"); ok {
		return IsoLatin(page), nil
	}
	return "", fmt.Errorf("%w: %q", analyzererr.ErrUnsupportedEncoding, raw)
}

func isoLatinPage(n, prefix string) (int, bool) {
	if len(n) != len(prefix)+1 || n[:len(prefix)] != prefix {
		return 0, false
	}
	d := n[len(prefix)]
	if d < '0' || d > '9' {
		return 0, false
	}
	page := int(d - '0')
	if page == 0 {
		page = 1
	}
	return page, true
}

// charmapEncodings maps each ISO-8859 page to its golang.org/x/text/encoding/charmap instance.
var charmapEncodings = map[int]encoding.Encoding{
	1: charmap.ISO8859_1,
	2: charmap.ISO8859_2,
	3: charmap.ISO8859_3,
	4: charmap.ISO8859_4,
	5: charmap.ISO8859_5,
	6: charmap.ISO8859_6,
	7: charmap.ISO8859_7,
	8: charmap.ISO8859_8,
	9: charmap.ISO8859_9,
}

// xtextEncoding returns the golang.org/x/text/encoding.Encoding for every
// Name except UTF8, which is handled as a passthrough.
func xtextEncoding(n Name) (encoding.Encoding, error) {
	switch n {
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case UCS2BE:
		// UCS-2 is UTF-16 restricted to the BMP (no surrogate pairs); the
		// Go decoder accepts surrogates transparently, a pragmatic
		// widening of the original's stricter UCS-2 decoder.
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case UCS2LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case UTF32BE, UCS4BE:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), nil
	case UTF32LE, UCS4LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), nil
	}
	if page, ok := isoLatinPage(string(n), "iso8859"); ok {
		if enc, ok := charmapEncodings[page]; ok {
			return enc, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", analyzererr.ErrUnsupportedEncoding, n)
}

// TextEncoder converts chunked bytes in one source encoding into UTF-8,
// buffering any trailing incomplete unit across calls.
//
// A TextEncoder is one-shot: it is created per input and discarded once the
// input has been fully converted (see SPEC_FULL.md §3 "Lifecycle").
type TextEncoder struct {
	name  Name
	dec   transform.Transformer // nil for UTF8 passthrough
	carry []byte                // bytes buffered from a previous Convert call
}

// New creates a TextEncoder for the named source encoding. An empty name
// selects UTF-8 passthrough.
func New(name string) (*TextEncoder, error) {
	n, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	te := &TextEncoder{name: n}
	if n == UTF8 {
		return te, nil
	}
	enc, err := xtextEncoding(n)
	if err != nil {
		return nil, err
	}
	te.dec = enc.NewDecoder()
	return te, nil
}

// Name reports the canonical source encoding name.
func (e *TextEncoder) Name() Name { return e.name }

// Convert returns the UTF-8 conversion of the longest prefix of src (after
// any bytes carried over from a previous call) that can be decoded,
// buffering any trailing incomplete unit for the next call. When eof is
// true, a trailing incomplete unit is a BadDocument error for every
// encoding except UTF-8, whose trailing bytes are returned unchanged.
func (e *TextEncoder) Convert(src []byte, eof bool) (string, error) {
	buf := src
	if len(e.carry) > 0 {
		buf = append(append([]byte(nil), e.carry...), src...)
		e.carry = nil
	}
	if e.name == UTF8 {
		return e.convertUTF8(buf, eof)
	}
	return e.convertForeign(buf, eof)
}

func (e *TextEncoder) convertForeign(buf []byte, eof bool) (string, error) {
	dst := make([]byte, 0, len(buf)*2+16)
	src := buf
	for {
		if cap(dst)-len(dst) < len(src)*4+16 {
			grown := make([]byte, len(dst), cap(dst)*2+64)
			copy(grown, dst)
			dst = grown
		}
		n, nSrc, err := e.dec.Transform(dst[len(dst):cap(dst)], src, eof)
		dst = dst[:len(dst)+n]
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		if err == transform.ErrShortSrc {
			if eof {
				return string(dst), analyzererr.NewBadDocument(len(buf)-len(src), "truncated multi-byte character at end of input")
			}
			e.carry = append([]byte(nil), src...)
			return string(dst), nil
		}
		if err != nil {
			return string(dst), analyzererr.NewBadDocument(len(buf)-len(src), err.Error())
		}
		return string(dst), nil
	}
}

// convertUTF8 passes UTF-8 through without validating it, buffering a trailing
// incomplete rune across calls exactly as the templated TextEncoder<UTF8>
// in original_source/src/utils/textEncoder.cpp does via its jmp_buf
// end-of-message trigger.
func (e *TextEncoder) convertUTF8(buf []byte, eof bool) (string, error) {
	valid := len(buf)
	for valid > 0 {
		b := buf[valid-1]
		if b < 0x80 {
			break
		}
		// Walk back over a partial trailing multi-byte sequence.
		start := valid - 1
		for start > 0 && buf[start]&0xC0 == 0x80 {
			start--
		}
		seqLen := expectedUTF8Len(buf[start])
		if seqLen == 0 {
			// Not a valid lead byte: treat byte-for-byte, nothing to carry.
			break
		}
		if start+seqLen <= valid {
			break // sequence is complete
		}
		valid = start
		break
	}
	if valid < len(buf) {
		if eof {
			return string(buf), nil // tolerate: emit as-is, downstream XML/JSON parse will flag malformed input
		}
		e.carry = append([]byte(nil), buf[valid:]...)
	}
	return string(buf[:valid]), nil
}

func expectedUTF8Len(lead byte) int {
	switch {
	case lead&0x80 == 0x00:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
