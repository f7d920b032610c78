// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

func compressS2(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func decompressS2(data []byte) ([]byte, error) {
	decompressed, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompress: %w", err)
	}
	return decompressed, nil
}
