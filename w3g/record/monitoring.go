// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package record

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3replay_records_decoded",
		Help: "Count of replay records decoded, by type.",
	}, []string{"type"})

	recordErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3replay_record_errors",
		Help: "Count of record decoding errors, by kind.",
	}, []string{"kind"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		recordsDecoded,
		recordErrors,
	)
}
