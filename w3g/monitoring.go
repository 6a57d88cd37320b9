// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package w3g

import (
	"github.com/danjacques/gow3replay/w3g/block"
	"github.com/danjacques/gow3replay/w3g/record"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	replaysOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "w3replay_replays_opened",
		Help: "Count of replays whose header was successfully decoded.",
	})

	headerChecksumMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "w3replay_header_checksum_mismatches",
		Help: "Count of replay headers whose stored checksum did not match.",
	})

	headerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3replay_header_errors",
		Help: "Count of replay header decoding errors, by kind.",
	}, []string{"kind"})
)

// RegisterMonitoring registers all replay decoding metrics, including those
// of the block and record packages.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		replaysOpened,
		headerChecksumMismatches,
		headerErrors,
	)
	block.RegisterMonitoring(reg)
	record.RegisterMonitoring(reg)
}
