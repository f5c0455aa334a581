// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	m "github.com/gobao/bao/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	ChunksVerified prometheus.Counter
	HashMismatches prometheus.Counter
	BytesEmitted   prometheus.Counter
	Seeks          prometheus.Counter
	Resets         prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "decode"

	return metrics{
		ChunksVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "chunks_verified",
			Help:      "Chunks whose hash validated against the tree.",
		}),
		HashMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_mismatches",
			Help:      "Nodes whose recomputed hash disagreed with the expected hash.",
		}),
		BytesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "bytes_emitted",
			Help:      "Authenticated content bytes handed to callers.",
		}),
		Seeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "seeks",
			Help:      "Seek operations on decoder sessions.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "resets",
			Help:      "Traversals restarted from the root frame on backward seeks.",
		}),
	}
}

// Metrics returns the prometheus collectors of the session.
func (d *Decoder) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(d.metrics)
}
