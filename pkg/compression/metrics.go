// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CompressionRatioHist tracks compression ratios (original_size / compressed_size)
	CompressionRatioHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lockchime",
			Subsystem: "compression",
			Name:      "ratio",
			Help:      "Compression ratio (original_size / compressed_size)",
			Buckets:   []float64{1.0, 1.25, 1.5, 2.0, 3.0, 4.0, 5.0, 10.0},
		},
		[]string{"algorithm"},
	)

	// CompressionDuration tracks time spent compressing/decompressing
	CompressionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lockchime",
			Subsystem: "compression",
			Name:      "duration_seconds",
			Help:      "Time spent compressing/decompressing data",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"algorithm", "operation"}, // operation: compress, decompress
	)

	// CompressionSkipped counts values stored uncompressed because
	// compression saved nothing.
	CompressionSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lockchime",
			Subsystem: "compression",
			Name:      "skipped_total",
			Help:      "Values where compression was skipped (no space savings)",
		},
		[]string{"algorithm"},
	)
)

func init() {
	debug.Registry().MustRegister(CompressionRatioHist, CompressionDuration, CompressionSkipped)
}

// RecordCompression records metrics for a compression operation
func RecordCompression(algo Algorithm, originalSize, compressedSize int, skipped bool) {
	if skipped {
		CompressionSkipped.WithLabelValues(algo.String()).Inc()
		return
	}
	CompressionRatioHist.WithLabelValues(algo.String()).Observe(CompressionRatio(originalSize, compressedSize))
}
