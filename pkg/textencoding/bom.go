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

package textencoding

// DetectBOM inspects the leading bytes of buf for a byte-order mark and
// returns the implied encoding and the BOM's length in bytes. It is a
// direct port of detectBOM in original_source/src/utils/textEncoder.cpp:
// the longer UTF-32 patterns are checked before the UTF-16 patterns they
// overlap with (0x00 0x00 0xFE 0xFF would otherwise also match a
// zero-prefixed UTF-16BE guess).
func DetectBOM(buf []byte) (name Name, bomLen int, ok bool) {
	switch {
	case len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF:
		return UTF32BE, 4, true
	case len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00:
		return UTF32LE, 4, true
	case len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF:
		return UTF8, 3, true
	case len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF:
		return UTF16BE, 2, true
	case len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE:
		return UTF16LE, 2, true
	}
	return "", 0, false
}

// DetectCharsetEncoding guesses a 16- or 32-bit encoding from the stride of
// zero bytes in a BOM-less buffer, the same heuristic as
// detectCharsetEncoding in original_source/src/utils/textEncoder.cpp: count
// zero bytes at each of the four byte-offsets mod 4 across the first
// 1 KiB and match the pattern ASCII content leaves in a wide encoding
// (zero bytes at three of every four offsets in UTF-32, at one of every
// two in UTF-16; real UTF-8/ASCII has almost none at any offset).
// Returns ok=false when no pattern is clearly dominant, in which case the
// caller should assume UTF-8.
func DetectCharsetEncoding(buf []byte) (name Name, ok bool) {
	n := len(buf)
	if n > 1024 {
		n = 1024
	}
	if n < 4 {
		return "", false
	}
	var mcnt [4]int
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			mcnt[i%4]++
		}
	}
	total := mcnt[0] + mcnt[1] + mcnt[2] + mcnt[3]
	if total == 0 {
		return "", false
	}
	// Four-byte encodings: an ASCII-range code point has zero bytes at
	// three of its four offsets, the non-zero one last (BE) or first (LE).
	quarter := n / 4
	if lim := quarter * 3 / 4; lim > 0 {
		if mcnt[0] >= lim && mcnt[1] >= lim && mcnt[2] >= lim && mcnt[3] < lim {
			return UTF32BE, true
		}
		if mcnt[1] >= lim && mcnt[2] >= lim && mcnt[3] >= lim && mcnt[0] < lim {
			return UTF32LE, true
		}
	}
	// Two-byte encodings: zero bytes concentrated at even or odd offsets.
	even := mcnt[0] + mcnt[2]
	odd := mcnt[1] + mcnt[3]
	half := n / 2
	if half > 0 {
		if even >= half*3/4 && even > odd {
			return UTF16BE, true
		}
		if odd >= half*3/4 && odd > even {
			return UTF16LE, true
		}
	}
	return "", false
}
