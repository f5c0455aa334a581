// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics defines the shared namespace of the prometheus
// metrics exposed by the bao packages and the discovery of collectors
// from per-package metrics structs.
package metrics

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is prefixed before every metric. If it is changed, it must
// be done before any metrics collector is registered.
const Namespace = "bao"

// Collector is implemented by components exposing prometheus
// collectors.
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields returns the prometheus collectors held
// in the exported, initialized fields of i.
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for n := 0; n < v.NumField(); n++ {
		if !v.Field(n).CanInterface() {
			continue
		}
		if u, ok := v.Field(n).Interface().(prometheus.Collector); ok && u != nil {
			cs = append(cs, u)
		}
	}
	return cs
}
