// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles Prometheus metrics for one solver. A nil *Collector is
// valid and disables all recording, so metrics stay opt-in.
type Collector struct {
	Steps       prometheus.Counter // completed quality steps
	Warnings    prometheus.Counter // recorded notices
	SubstepCaps prometheus.Counter // sub-stepping iteration cap hits
	Segments    prometheus.Gauge   // total parcel count across all links
	Clock       prometheus.Gauge   // simulation clock [s]
}

// NewCollector registers the solver metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil
func NewCollector(reg prometheus.Registerer) (o *Collector, err error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o = &Collector{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gowq_steps_total",
			Help: "Total number of completed quality steps.",
		}),
		Warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gowq_warnings_total",
			Help: "Total number of recorded numerical warnings.",
		}),
		SubstepCaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gowq_substep_cap_total",
			Help: "Times the reaction sub-stepping hit its iteration cap.",
		}),
		Segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gowq_segments",
			Help: "Current number of water parcels across all links.",
		}),
		Clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gowq_clock_seconds",
			Help: "Simulation clock.",
		}),
	}
	for _, c := range []prometheus.Collector{o.Steps, o.Warnings, o.SubstepCaps, o.Segments, o.Clock} {
		if err = reg.Register(c); err != nil {
			return nil, err
		}
	}
	return
}

func (o *Collector) step(t float64, dom *Domain) {
	if o == nil {
		return
	}
	o.Steps.Inc()
	o.Clock.Set(t)
	n := 0
	for _, l := range dom.Links {
		n += len(l.Segs)
	}
	o.Segments.Set(float64(n))
}

func (o *Collector) warn() {
	if o == nil {
		return
	}
	o.Warnings.Inc()
}

func (o *Collector) capHit() {
	if o == nil {
		return
	}
	o.SubstepCaps.Inc()
}
