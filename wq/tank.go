// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// MixModel defines tank mixing models: how inflow blends with the resident
// volume and reacts over one step. Outflow quality equals the returned
// tank quality for models with a single mixed zone.
type MixModel interface {
	// Mix advances the tank over dt with inflow qin at quality cin.
	// ageRate is 1 in AGE mode (quality is age, growing at unit rate)
	// and 0 otherwise. capped reports a sub-stepping cap hit.
	Mix(s *Tank, qin, cin, dt, tol, ageRate float64) (cnew float64, capped bool)
}

// mixAllocators holds all available mixing models
var mixAllocators = make(map[string]func() MixModel)

// NewMixModel returns a mixing model by name
func NewMixModel(name string) (m MixModel, err error) {
	if alloc, ok := mixAllocators[name]; ok {
		return alloc(), nil
	}
	return nil, chk.Err("cannot find tank mixing model named %q", name)
}

// add the completely-mixed model to the factory
func init() {
	mixAllocators["mixed"] = func() MixModel { return new(Mixed) }
}

// Mixed implements the completely-mixed (CSTR) tank model:
//
//	V・dc/dt = qin・(cin - c) + V・r(c)
//
// with V held constant within the step (volume changes come from the
// hydraulic series between steps).
type Mixed struct{}

// Mix advances the tank quality; closed form for affine kinetics, explicit
// sub-stepped Euler otherwise
func (o *Mixed) Mix(s *Tank, qin, cin, dt, tol, ageRate float64) (cnew float64, capped bool) {

	// an empty tank passes inflow straight through
	if s.Vol <= vtiny {
		if qin > qtiny {
			return cin, false
		}
		return s.C, false
	}
	a := qin / s.Vol

	// closed form: c' = (a・cin + k0 + ageRate) - (a - k1)・c
	if k0, k1, ok := s.Kin.Affine(); ok {
		b := a*cin + k0 + ageRate
		lam := a - k1
		if math.Abs(lam) < 1e-30 {
			cnew = s.C + b*dt
		} else {
			cinf := b / lam
			cnew = cinf + (s.C-cinf)*math.Exp(-lam*dt)
		}
		if cnew < 0 {
			cnew = 0
		}
		return cnew, false
	}

	// sub-stepped explicit Euler
	if tol <= 0 {
		tol = 1e-4
	}
	nsub := 1
	for {
		h := dt / float64(nsub)
		c := s.C
		worst := 0.0
		for i := 0; i < nsub; i++ {
			dc := (a*(cin-c) + s.Kin.Rate(c) + ageRate) * h
			if math.Abs(dc) > worst {
				worst = math.Abs(dc)
			}
			c += dc
			if c < 0 {
				c = 0
			}
		}
		if worst <= tol {
			return c, false
		}
		if nsub >= 1024 {
			return c, true
		}
		nsub *= 2
	}
}
