// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rxn

import (
	"math"
)

// MassTransfer computes the mass-transfer coefficient kf [m/s] at the pipe
// wall from a Sherwood-number correlation:
//
//	Re < 2300:  Sh = 3.65 + 0.0668・y / (1 + 0.04・y^(2/3))   with y = (d/L)・Re・Sc
//	otherwise:  Sh = 0.0149・Re^0.88・Sc^(1/3)
//	kf = Sh・D / d
//
// Input:
//
//	q     -- volumetric flow [m³/s] (absolute value is used)
//	diam  -- pipe diameter [m]
//	length -- pipe length [m]
//	visc  -- kinematic viscosity [m²/s]
//	diffus -- molecular diffusivity [m²/s]
//
// Zero diffusivity or a stagnant pipe gives kf = 0 (no transfer).
func MassTransfer(q, diam, length, visc, diffus float64) (kf float64) {
	if diffus <= 0 || diam <= 0 || visc <= 0 {
		return 0
	}
	area := math.Pi * diam * diam / 4.0
	u := math.Abs(q) / area
	re := u * diam / visc
	if re < 1e-12 {
		return 0
	}
	sc := visc / diffus
	var sh float64
	if re < 2300 {
		y := diam / length * re * sc
		sh = 3.65 + 0.0668*y/(1.0+0.04*math.Pow(y, 2.0/3.0))
	} else {
		sh = 0.0149 * math.Pow(re, 0.88) * math.Pow(sc, 1.0/3.0)
	}
	return sh * diffus / diam
}
