// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"time"
)

// Compress compresses data using the specified algorithm.
// Returns the original data unchanged if algo is None or empty.
func Compress(algo Algorithm, data []byte) ([]byte, error) {
	switch algo {
	case LZ4:
		return compressLZ4(data)
	case ZSTD:
		return compressZSTD(data)
	case S2:
		return compressS2(data)
	default:
		return data, nil
	}
}

// Decompress decompresses data using the specified algorithm.
// Returns the original data unchanged if algo is None or empty.
func Decompress(algo Algorithm, data []byte) ([]byte, error) {
	switch algo {
	case LZ4:
		return decompressLZ4(data)
	case ZSTD:
		return decompressZSTD(data)
	case S2:
		return decompressS2(data)
	default:
		return data, nil
	}
}

// Encode compresses data and prepends the algorithm tag. If compression
// does not save space, data is returned untagged.
func Encode(algo Algorithm, data []byte) ([]byte, error) {
	tag, ok := algo.tag()
	if !ok {
		return data, nil
	}

	start := time.Now()
	compressed, err := Compress(algo, data)
	if err != nil {
		return nil, err
	}
	CompressionDuration.WithLabelValues(algo.String(), "compress").Observe(time.Since(start).Seconds())

	if len(compressed)+1 >= len(data) {
		RecordCompression(algo, len(data), len(compressed), true)
		return data, nil
	}
	RecordCompression(algo, len(data), len(compressed), false)

	out := make([]byte, 0, len(compressed)+1)
	out = append(out, tag)
	return append(out, compressed...), nil
}

// Decode reverses Encode. Untagged input is returned as is.
func Decode(data []byte) ([]byte, Algorithm, error) {
	if len(data) == 0 {
		return data, None, nil
	}
	algo, ok := algorithmForTag(data[0])
	if !ok {
		return data, None, nil
	}

	start := time.Now()
	out, err := Decompress(algo, data[1:])
	if err != nil {
		return nil, algo, err
	}
	CompressionDuration.WithLabelValues(algo.String(), "decompress").Observe(time.Since(start).Seconds())
	return out, algo, nil
}

// CompressionRatio calculates the compression ratio (original / compressed).
// Returns 1.0 if compressed size is zero or larger than original.
func CompressionRatio(originalSize, compressedSize int) float64 {
	if compressedSize <= 0 || compressedSize >= originalSize {
		return 1.0
	}
	return float64(originalSize) / float64(compressedSize)
}
