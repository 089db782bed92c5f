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

// Package classdetect guesses a document's wire format and declared
// character encoding from a small leading sample of bytes, the way
// original_source/src/detector_std/detectDocumentType.cpp does. It never
// reads past the sample: a Segmenter is picked before the rest of the
// document is available.
package classdetect

import (
	"strings"
)

// Scheme names the wire format a Segmenter variant is built for.
type Scheme string

const (
	XML   Scheme = "xml"
	JSON  Scheme = "json"
	TSV   Scheme = "tsv"
	Plain Scheme = "text"
)

// Class is the outcome of Detect: a wire format plus whatever encoding was
// declared or guessed alongside it.
type Class struct {
	Scheme   Scheme
	Encoding string // empty when not determined (only an XML declaration supplies one)
}

const sampleSize = 1024

// Detect classifies buf, the leading bytes of a document. ok is false when
// none of the recognized shapes match (binary content, or a format the
// registered Segmenters don't cover).
func Detect(buf []byte) (Class, bool) {
	sample := buf
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	if enc, ok := detectXML(sample); ok {
		return Class{Scheme: XML, Encoding: enc}, true
	}
	if detectJSON(sample) {
		return Class{Scheme: JSON}, true
	}
	if detectTSV(sample) {
		return Class{Scheme: TSV}, true
	}
	if detectPlain(sample) {
		return Class{Scheme: Plain}, true
	}
	return Class{}, false
}

// detectXML looks for a leading '<' possibly preceded by whitespace, and
// if an XML declaration ("<?xml ... ?>") is present, extracts its
// encoding= attribute value case-folded to lower case. Ported from
// isDocumentXML's small state machine in detectDocumentType.cpp.
func detectXML(sample []byte) (encoding string, ok bool) {
	i := skipSpace(sample, 0)
	if i >= len(sample) || sample[i] != '<' {
		return "", false
	}
	if !hasPrefixAt(sample, i, "<?xml") {
		return "", true // bare "<tag...", still XML, no declared encoding
	}
	end := indexFrom(sample, i, "?>")
	if end < 0 {
		return "", true
	}
	decl := string(sample[i:end])
	lower := strings.ToLower(decl)
	const key = "encoding"
	k := strings.Index(lower, key)
	if k < 0 {
		return "", true
	}
	j := k + len(key)
	j = skipSpaceStr(lower, j)
	if j >= len(lower) || lower[j] != '=' {
		return "", true
	}
	j++
	j = skipSpaceStr(lower, j)
	if j >= len(lower) {
		return "", true
	}
	quote := lower[j]
	if quote != '\'' && quote != '"' {
		return "", true
	}
	j++
	start := j
	for j < len(lower) && lower[j] != quote {
		j++
	}
	if j >= len(lower) {
		return "", true
	}
	return lower[start:j], true
}

// detectJSON looks for a leading '{' (possibly preceded by whitespace)
// followed eventually by a quoted key, a colon, and the start of a JSON
// value, mirroring isDocumentJson.
func detectJSON(sample []byte) bool {
	i := skipSpace(sample, 0)
	if i >= len(sample) || sample[i] != '{' {
		return false
	}
	i = skipSpace(sample, i+1)
	if i >= len(sample) {
		return false
	}
	if sample[i] == '}' {
		return true // empty object
	}
	if sample[i] != '"' {
		return false
	}
	i++
	for i < len(sample) && sample[i] != '"' {
		if sample[i] == '\\' {
			i++
		}
		i++
	}
	if i >= len(sample) {
		return false
	}
	i++ // closing quote
	i = skipSpace(sample, i)
	if i >= len(sample) || sample[i] != ':' {
		return false
	}
	i = skipSpace(sample, i+1)
	if i >= len(sample) {
		return false
	}
	switch sample[i] {
	case '"', '{', '[', 't', 'f', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

// detectTSV compares the tab count of the first two lines: a real
// tab-separated header/data pair has the same number of tab-delimited
// fields on the header line as on the first data line (and at least one
// tab), per checkDocumentTSV.
func detectTSV(sample []byte) bool {
	lines := splitLines(sample, 2)
	if len(lines) < 2 {
		return false
	}
	t0 := strings.Count(lines[0], "\t")
	t1 := strings.Count(lines[1], "\t")
	return t0 > 0 && t0 == t1
}

// detectPlain accepts the sample if it is mostly printable/whitespace,
// the same 1KiB control-character scan as isDocumentText.
func detectPlain(sample []byte) bool {
	if len(sample) == 0 {
		return true
	}
	control := 0
	for _, b := range sample {
		if b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if b < 0x20 || b == 0x7F {
			control++
		}
	}
	return control*20 < len(sample) // tolerate up to 5% control bytes
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

func skipSpaceStr(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func hasPrefixAt(b []byte, i int, prefix string) bool {
	if i+len(prefix) > len(b) {
		return false
	}
	return strings.EqualFold(string(b[i:i+len(prefix)]), prefix)
}

func indexFrom(b []byte, from int, sub string) int {
	idx := strings.Index(string(b[from:]), sub)
	if idx < 0 {
		return -1
	}
	return from + idx + len(sub)
}

func splitLines(b []byte, max int) []string {
	var out []string
	start := 0
	for i := 0; i < len(b) && len(out) < max; i++ {
		if b[i] == '\n' {
			line := string(b[start:i])
			line = strings.TrimSuffix(line, "\r")
			out = append(out, line)
			start = i + 1
		}
	}
	if len(out) < max && start < len(b) {
		out = append(out, string(b[start:]))
	}
	return out
}
