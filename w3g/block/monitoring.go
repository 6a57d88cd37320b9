// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package block

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	blocksDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "w3replay_blocks_decoded",
		Help: "Count of replay blocks successfully decoded.",
	})

	compressedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "w3replay_block_compressed_bytes",
		Help: "Count of compressed block payload bytes read.",
	})

	decompressedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "w3replay_block_decompressed_bytes",
		Help: "Count of bytes produced by block decompression.",
	})

	checksumMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "w3replay_block_checksum_mismatches",
		Help: "Count of blocks whose stored checksum did not match.",
	})

	blockErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3replay_block_errors",
		Help: "Count of block decoding errors, by kind.",
	}, []string{"kind"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		blocksDecoded,
		compressedBytes,
		decompressedBytes,
		checksumMismatches,
		blockErrors,
	)
}
