// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical solutions for water quality transport
package ana

import (
	"math"
)

// PipeDecay computes the downstream concentration of a plug-flow pipe with
// first-order bulk decay and a constant upstream source:
//
//	C(t) = 0                 t < T
//	C(t) = C0・exp(kb・T)    t ≥ T
//
// where T = V/Q is the travel time.
type PipeDecay struct {
	C0 float64 // upstream source concentration
	Kb float64 // bulk coefficient [1/s]; negative = decay
	T  float64 // travel time [s]
}

// Calc computes the downstream concentration at time t, for a source
// switched on at t = 0 into an initially clean pipe
func (o PipeDecay) Calc(t float64) float64 {
	if t < o.T {
		return 0
	}
	return o.C0 * math.Exp(o.Kb*o.T)
}

// PlugFlowFront is the non-reacting special case of PipeDecay: a step
// source arrives after exactly one travel time
type PlugFlowFront struct {
	C0 float64 // source concentration
	T  float64 // travel time [s]
}

// Calc computes the downstream concentration at time t
func (o PlugFlowFront) Calc(t float64) float64 {
	if t < o.T {
		return 0
	}
	return o.C0
}

// TankWashout computes the step response of a completely-mixed tank of
// constant volume V with inflow Q at concentration Cin:
//
//	C(t) = Cin + (C0 - Cin)・exp(-Q・t/V)
type TankWashout struct {
	C0  float64 // initial tank concentration
	Cin float64 // inflow concentration
	Q   float64 // inflow rate [m³/s]
	V   float64 // tank volume [m³]
}

// Calc computes the tank concentration at time t
func (o TankWashout) Calc(t float64) float64 {
	return o.Cin + (o.C0-o.Cin)*math.Exp(-o.Q*t/o.V)
}
