// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"github.com/hydronet/gowq/inp"
)

// SourceType is a closed tagged variant: exactly four injection semantics
type SourceType int

const (
	Concen    SourceType = iota // overrides quality of external boundary inflow
	MassRate                    // adds a fixed mass rate, independent of flow
	FlowPaced                   // adds a fixed concentration increment
	Setpoint                    // forces the outflow quality
)

// Source holds one external quality source attached to a node
type Source struct {
	Name     string       // unique name
	Type     SourceType   // injection semantics
	Strength float64      // baseline strength
	Pat      *inp.PatData // optional pattern; nil = multiplier 1

	massPend float64 // MASS source: accumulated mass awaiting carrying flow
}

// newSource resolves one source definition
func newSource(sd *inp.SourceData, pats inp.PatsData) (o *Source, err error) {
	o = &Source{Name: sd.Name, Strength: sd.Strength}
	switch sd.Type {
	case inp.SrcConcen:
		o.Type = Concen
	case inp.SrcMass:
		o.Type = MassRate
	case inp.SrcFlow:
		o.Type = FlowPaced
	case inp.SrcSetpoint:
		o.Type = Setpoint
	default:
		return nil, confErr("source %q: unknown type %q", sd.Name, sd.Type)
	}
	if sd.Pattern != "" {
		o.Pat, err = pats.Get(sd.Pattern)
		if err != nil {
			return nil, confErr("source %q: %v", sd.Name, err)
		}
	}
	return
}

// strengthAt returns strength × pattern multiplier at time t
func (o *Source) strengthAt(t float64) float64 {
	if o.Pat == nil {
		return o.Strength
	}
	return o.Strength * o.Pat.Mult(t)
}

// Inject applies the source semantics to the blended inflow quality cin.
//
//	qin    -- total inflow rate carrying cin [m³/s]
//	extIn  -- external boundary inflow rate at this node [m³/s]
//	dt     -- step length [s]
//
// The returned warn is true for the degenerate MASS case: mass added with
// no carrying flow accumulates until flow resumes.
func (o *Source) Inject(t, dt, cin, qin, extIn float64) (c float64, warn bool) {
	s := o.strengthAt(t)
	c = cin
	switch o.Type {

	case Concen:
		// only water entering the network from the boundary at this node
		// is overridden; pass-through water is untouched
		if extIn > qtiny {
			vin := qin * dt
			vext := extIn * dt
			c = (vin*cin + vext*s) / (vin + vext)
		}

	case MassRate:
		f := qin + extIn
		add := s*dt + o.massPend
		if f > qtiny {
			c = cin + add/(f*dt)
			o.massPend = 0
		} else {
			o.massPend = add
			warn = true
		}

	case FlowPaced:
		c = cin + s

	case Setpoint:
		c = s
	}
	return
}
