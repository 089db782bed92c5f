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

package feature

import (
	"strings"
	"unicode"
)

// WordTokenizer splits on runs of non-letter/non-digit characters, the
// plain built-in tokenizer every example configuration in
// tests/prgload/src/testDocumentAnalyzerLoadProgram.cpp reaches for when
// no language-specific tokenizer is named.
type WordTokenizer struct{}

func (WordTokenizer) Tokenize(content string) ([]Token, error) {
	var toks []Token
	inWord := false
	start := 0
	runes := []rune(content)
	byteOff := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOff[i] = off
		off += len(string(r))
	}
	byteOff[len(runes)] = off
	for i, r := range runes {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && !inWord {
			start = i
			inWord = true
		} else if !isWord && inWord {
			toks = append(toks, Token{Start: byteOff[start], End: byteOff[i]})
			inWord = false
		}
	}
	if inWord {
		toks = append(toks, Token{Start: byteOff[start], End: byteOff[len(runes)]})
	}
	return toks, nil
}

// ContentTokenizer returns the entire content as a single token, used
// for features bound with position "content" that want the whole segment
// verbatim (e.g. sub-document identifiers, single-valued attributes).
type ContentTokenizer struct{}

func (ContentTokenizer) Tokenize(content string) ([]Token, error) {
	if content == "" {
		return nil, nil
	}
	return []Token{{Start: 0, End: len(content)}}, nil
}

// WhitespaceTokenizer splits on runs of Unicode whitespace only, leaving
// punctuation attached to neighboring tokens.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Tokenize(content string) ([]Token, error) {
	var toks []Token
	inTok := false
	start := 0
	for i, r := range content {
		isSpace := unicode.IsSpace(r)
		if !isSpace && !inTok {
			start = i
			inTok = true
		} else if isSpace && inTok {
			toks = append(toks, Token{Start: start, End: i})
			inTok = false
		}
	}
	if inTok {
		toks = append(toks, Token{Start: start, End: len(content)})
	}
	return toks, nil
}

// LowercaseNormalizer folds text to lower case.
type LowercaseNormalizer struct{}

func (LowercaseNormalizer) Normalize(text string) (string, error) {
	return strings.ToLower(text), nil
}

// TrimNormalizer trims leading/trailing whitespace.
type TrimNormalizer struct{}

func (TrimNormalizer) Normalize(text string) (string, error) {
	return strings.TrimSpace(text), nil
}

// OrigNormalizer is the identity normalizer (passthrough), the Go
// equivalent of the "orig" normalizer every strus program file lists
// explicitly for features that must not be altered.
type OrigNormalizer struct{}

func (OrigNormalizer) Normalize(text string) (string, error) { return text, nil }
