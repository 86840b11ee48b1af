// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// HydData holds the precomputed hydraulic time series. Values are
// piecewise constant: interval i spans [Times[i], Times[i+1]), and the
// last interval extends to the simulation horizon. Flows are signed:
// positive means from the link's upstream to its downstream node.
type HydData struct {
	Times    []float64   `json:"times"`    // [nint] start time of each interval [s]
	Flows    [][]float64 `json:"flows"`    // [nint][nlinks] link flow [m³/s]
	Demands  [][]float64 `json:"demands"`  // [nint][nnodes] node demand [m³/s]; negative = external inflow
	TankVols [][]float64 `json:"tankvols"` // [nint][nnodes] tank volume [m³]; zero for non-tanks
}

// Snapshot holds the hydraulic state during one interval
type Snapshot struct {
	Flows    []float64 // link flows
	Demands  []float64 // node demands
	TankVols []float64 // tank volumes per node
	Tnext    float64   // time when the next interval starts; +Inf on the last one
}

// Validate checks dimensions and horizon coverage
func (o *HydData) Validate(nlinks, nnodes int, tf float64) (err error) {
	if len(o.Times) == 0 {
		return chk.Err("hydraulic time series is empty")
	}
	if o.Times[0] > 0 {
		return chk.Err("hydraulic time series starts at t=%v; must cover t=0", o.Times[0])
	}
	for i := 1; i < len(o.Times); i++ {
		if o.Times[i] <= o.Times[i-1] {
			return chk.Err("hydraulic times are not strictly increasing at index %d", i)
		}
	}
	if len(o.Flows) != len(o.Times) || len(o.Demands) != len(o.Times) {
		return chk.Err("hydraulic series: flows/demands length must equal times length")
	}
	for i := range o.Times {
		if len(o.Flows[i]) != nlinks {
			return chk.Err("hydraulic interval %d: got %d flows; need %d", i, len(o.Flows[i]), nlinks)
		}
		if len(o.Demands[i]) != nnodes {
			return chk.Err("hydraulic interval %d: got %d demands; need %d", i, len(o.Demands[i]), nnodes)
		}
		if len(o.TankVols) > 0 && len(o.TankVols[i]) != nnodes {
			return chk.Err("hydraulic interval %d: got %d tank volumes; need %d", i, len(o.TankVols[i]), nnodes)
		}
	}
	return
}

// At returns the snapshot active at time t
func (o *HydData) At(t float64) (snap Snapshot) {
	i := len(o.Times) - 1
	for i > 0 && t < o.Times[i] {
		i--
	}
	snap.Flows = o.Flows[i]
	snap.Demands = o.Demands[i]
	if len(o.TankVols) > 0 {
		snap.TankVols = o.TankVols[i]
	}
	snap.Tnext = math.Inf(1)
	if i+1 < len(o.Times) {
		snap.Tnext = o.Times[i+1]
	}
	return
}
