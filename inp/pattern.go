// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// PatData holds one time pattern definition: an ordered sequence of
// multipliers, each holding for Period seconds, looping over the horizon.
type PatData struct {
	Name   string    `json:"name"`   // name of pattern. ex: daily, pulse, etc.
	Period float64   `json:"period"` // duration of each multiplier entry [s]
	Mults  []float64 `json:"mults"`  // ordered multiplier values
}

// PatsData holds patterns
type PatsData []*PatData

// Get returns pattern by name
func (o PatsData) Get(name string) (pat *PatData, err error) {
	for _, p := range o {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, chk.Err("cannot find pattern named %q", name)
}

// Validate checks one pattern definition
func (o *PatData) Validate() (err error) {
	if o.Name == "" {
		return chk.Err("pattern with empty name")
	}
	if o.Period <= 0 {
		return chk.Err("pattern %q: period must be positive; got %v", o.Name, o.Period)
	}
	if len(o.Mults) == 0 {
		return chk.Err("pattern %q: no multipliers", o.Name)
	}
	for i, m := range o.Mults {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return chk.Err("pattern %q: multiplier %d is not a number", o.Name, i)
		}
	}
	return
}

// Mult returns the multiplier active at time t. Patterns loop: the
// sequence restarts after len(Mults)*Period seconds.
func (o *PatData) Mult(t float64) float64 {
	if len(o.Mults) == 0 {
		return 1
	}
	i := int(t/o.Period) % len(o.Mults)
	if i < 0 {
		i += len(o.Mults)
	}
	return o.Mults[i]
}
