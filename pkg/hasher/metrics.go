// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hasher

import (
	m "github.com/gobao/bao/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	BytesHashed prometheus.Counter
	Forks       prometheus.Counter
	Batches     prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "hasher"

	return metrics{
		BytesHashed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "bytes_hashed",
			Help:      "Content bytes hashed into root fingerprints.",
		}),
		Forks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "forks",
			Help:      "Subtree pairs hashed by concurrent workers.",
		}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "batches",
			Help:      "Batched primitive invocations over sibling chunks.",
		}),
	}
}

// Metrics returns the prometheus collectors of the hasher.
func (h *Hasher) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(h.metrics)
}
