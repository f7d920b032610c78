// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression compresses stored values. Encoded values carry a
// one-byte algorithm tag so readers need no configuration.
package compression

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None indicates no compression
	None Algorithm = "none"
	// LZ4 uses the LZ4 frame format (fast, moderate ratio)
	LZ4 Algorithm = "lz4"
	// ZSTD uses Zstandard (balanced speed/ratio)
	ZSTD Algorithm = "zstd"
	// S2 uses klauspost's S2 block format (faster than Snappy)
	S2 Algorithm = "s2"
)

// IsValid returns true if the algorithm is recognized
func (a Algorithm) IsValid() bool {
	switch a {
	case None, LZ4, ZSTD, S2:
		return true
	default:
		return false
	}
}

// String returns the string representation of the algorithm
func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm parses a string into an Algorithm.
// Returns None for empty or unrecognized strings.
func ParseAlgorithm(s string) Algorithm {
	algo := Algorithm(s)
	if algo.IsValid() {
		return algo
	}
	return None
}

// Tags written in front of encoded values. None of them can start a JSON
// document, so plain JSON values decode unchanged.
const (
	tagLZ4  byte = 0x01
	tagZSTD byte = 0x02
	tagS2   byte = 0x03
)

func (a Algorithm) tag() (byte, bool) {
	switch a {
	case LZ4:
		return tagLZ4, true
	case ZSTD:
		return tagZSTD, true
	case S2:
		return tagS2, true
	default:
		return 0, false
	}
}

func algorithmForTag(tag byte) (Algorithm, bool) {
	switch tag {
	case tagLZ4:
		return LZ4, true
	case tagZSTD:
		return ZSTD, true
	case tagS2:
		return S2, true
	default:
		return None, false
	}
}
