// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package rxn implements bulk and wall reaction kinetics: order-n,
// potential-limited rate laws with closed-form or sub-stepped integration
package rxn

import (
	"math"
)

// maxSub caps the sub-stepping refinement; reaching it means the step is
// accepted with the best available estimate and flagged by the caller
const maxSub = 1024

// Params holds bulk (volume) rate-law parameters
//
//	r(c) = k・cⁿ                      Limit = 0
//	r(c) = k・cⁿ⁻¹・(c - CL)          Limit = CL, k < 0 (decay towards CL)
//	r(c) = k・cⁿ⁻¹・(CL - c)          Limit = CL, k > 0 (growth towards CL)
//
// so the rate vanishes as c approaches the limiting potential CL.
type Params struct {
	Order float64 // reaction order n
	Coeff float64 // rate coefficient k; negative = decay, positive = growth
	Limit float64 // limiting potential CL; 0 = unlimited
}

// Rate computes dc/dt for the bulk law
func (o Params) Rate(c float64) float64 {
	if o.Coeff == 0 {
		return 0
	}
	if c < 0 {
		c = 0
	}
	if o.Limit == 0 {
		if o.Order == 0 {
			return o.Coeff
		}
		return o.Coeff * math.Pow(c, o.Order)
	}
	cn := 1.0
	if o.Order != 1 {
		cn = math.Pow(c, o.Order-1)
	}
	if o.Coeff > 0 {
		return o.Coeff * cn * (o.Limit - c)
	}
	return o.Coeff * cn * (c - o.Limit)
}

// affine returns r(c) = k0 + k1・c when the bulk law has that form
func (o Params) affine() (k0, k1 float64, ok bool) {
	if o.Coeff == 0 {
		return 0, 0, true
	}
	switch {
	case o.Order == 0 && o.Limit == 0:
		return o.Coeff, 0, true
	case o.Order == 1 && o.Limit == 0:
		return 0, o.Coeff, true
	case o.Order == 1 && o.Limit > 0:
		if o.Coeff > 0 { // r = k(CL - c)
			return o.Coeff * o.Limit, -o.Coeff, true
		}
		return -o.Coeff * o.Limit, o.Coeff, true // r = k(c - CL)
	}
	return 0, 0, false
}

// Wall holds wall (surface) rate-law parameters. The effective coefficient
// combines the configured wall coefficient with the mass-transfer
// coefficient Kf; Kf ≤ 0 means transfer is unlimited. SV is the
// surface-to-volume ratio (4/diameter for a cylindrical pipe).
type Wall struct {
	Order float64 // 0 or 1
	Coeff float64 // wall coefficient kw; negative = decay
	Kf    float64 // mass-transfer coefficient [m/s]; ≤ 0 = unlimited
	SV    float64 // surface-to-volume ratio [1/m]
}

// Keff returns the effective first-order wall rate constant [1/s]
func (o Wall) Keff() float64 {
	if o.Order != 1 || o.Coeff == 0 {
		return 0
	}
	kw := math.Abs(o.Coeff)
	if o.Kf > 0 {
		kw = kw * o.Kf / (kw + o.Kf)
	}
	return math.Copysign(kw*o.SV, o.Coeff)
}

// Rate computes dc/dt for the wall law
func (o Wall) Rate(c float64) float64 {
	if o.Coeff == 0 || o.SV == 0 {
		return 0
	}
	if c < 0 {
		c = 0
	}
	if o.Order == 0 {
		r := o.Coeff * o.SV
		if o.Kf > 0 { // zero-order release/consumption cannot exceed transfer
			lim := o.Kf * c * o.SV
			if math.Abs(r) > lim {
				r = math.Copysign(lim, r)
			}
		}
		return r
	}
	return o.Keff() * c
}

// affine returns r(c) = k0 + k1・c when the wall law has that form
func (o Wall) affine() (k0, k1 float64, ok bool) {
	if o.Coeff == 0 || o.SV == 0 {
		return 0, 0, true
	}
	if o.Order == 1 {
		return 0, o.Keff(), true
	}
	if o.Kf > 0 { // transfer cap makes the zero-order law piecewise
		return 0, 0, false
	}
	return o.Coeff * o.SV, 0, true
}

// Rater bundles the kinetics resolved for one pipe or tank. Tanks carry a
// zero Wall.
type Rater struct {
	Bulk Params
	Wall Wall
}

// Rate computes the total dc/dt
func (o Rater) Rate(c float64) float64 {
	return o.Bulk.Rate(c) + o.Wall.Rate(c)
}

// Affine returns the combined law as r(c) = k0 + k1・c when both mechanisms
// have that form (orders 0 and 1, no transfer-capped zero-order wall)
func (o Rater) Affine() (k0, k1 float64, ok bool) {
	b0, b1, okb := o.Bulk.affine()
	w0, w1, okw := o.Wall.affine()
	if !okb || !okw {
		return 0, 0, false
	}
	return b0 + w0, b1 + w1, true
}

// Zero reports whether no reaction is configured
func (o Rater) Zero() bool {
	return o.Bulk.Coeff == 0 && o.Wall.Coeff == 0
}

// Step integrates c over dt. Affine laws (orders 0 and 1) use the exact
// closed form; anything else falls back to explicit Euler with automatic
// sub-stepping until the per-sub-step concentration change is within tol.
// capped is true when the refinement cap was reached before converging.
func (o Rater) Step(c0, dt, tol float64) (c float64, nsub int, capped bool) {

	// inert
	if o.Zero() {
		return c0, 0, false
	}

	// closed form: c' = k0 + k1・c
	if k0, k1, ok := o.Affine(); ok {
		if k1 == 0 {
			c = c0 + k0*dt
		} else {
			cinf := -k0 / k1
			c = cinf + (c0-cinf)*math.Exp(k1*dt)
		}
		c = o.clamp(c, c0)
		return c, 1, false
	}

	// explicit Euler with sub-stepping
	if tol <= 0 {
		tol = 1e-4
	}
	nsub = 1
	for {
		h := dt / float64(nsub)
		c = c0
		worst := 0.0
		for i := 0; i < nsub; i++ {
			dc := o.Rate(c) * h
			if math.Abs(dc) > worst {
				worst = math.Abs(dc)
			}
			c += dc
			if c < 0 {
				c = 0
			}
		}
		if worst <= tol {
			return c, nsub, false
		}
		if nsub >= maxSub {
			return c, nsub, true
		}
		nsub *= 2
	}
}

// clamp keeps closed-form results on the physical side of zero and of the
// limiting potential
func (o Rater) clamp(c, c0 float64) float64 {
	if c < 0 {
		return 0
	}
	cl := o.Bulk.Limit
	if cl > 0 {
		if o.Bulk.Coeff > 0 && c > cl && c0 <= cl {
			return cl
		}
		if o.Bulk.Coeff < 0 && c < cl && c0 >= cl {
			return cl
		}
	}
	return c
}
