// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"math"
)

// initSegs resets the parcel list to one segment spanning the link
func (o *Link) initSegs(c float64) {
	o.Segs = o.Segs[:0]
	if o.Vol > zeroVol {
		o.Segs = append(o.Segs, Seg{V: o.Vol, C: c})
	}
}

// segVolume returns the total parcel volume; invariant: equals Vol
func (o *Link) segVolume() (v float64) {
	for _, s := range o.Segs {
		v += s.V
	}
	return
}

// reverse flips the parcel order after a flow direction reversal: the far
// end becomes the exit end
func (o *Link) reverse() {
	for i, j := 0, len(o.Segs)-1; i < j; i, j = i+1, j-1 {
		o.Segs[i], o.Segs[j] = o.Segs[j], o.Segs[i]
	}
}

// drain removes vol from the exit end and returns the mass carried out, in
// parcel order. If vol exceeds the resident parcels, the remainder leaves
// at quality cfill (the upstream node quality of the previous step).
func (o *Link) drain(vol, cfill float64) (mass float64) {
	rem := vol
	for rem > 0 && len(o.Segs) > 0 {
		s := &o.Segs[0]
		if s.V > rem+vtiny {
			mass += rem * s.C
			s.V -= rem
			rem = 0
			break
		}
		mass += s.V * s.C
		rem -= s.V
		o.Segs = o.Segs[1:]
	}
	if rem > vtiny {
		mass += rem * cfill
	}
	return
}

// push appends a parcel of volume vol and quality c at the upstream end,
// merging with the adjacent parcel when the qualities agree within tol so
// the list cannot grow unbounded under constant conditions
func (o *Link) push(vol, c, tol float64) {
	if vol <= vtiny {
		return
	}
	n := len(o.Segs)
	if n > 0 {
		last := &o.Segs[n-1]
		if math.Abs(last.C-c) <= tol {
			last.C = (last.V*last.C + vol*c) / (last.V + vol)
			last.V += vol
			return
		}
	}
	o.Segs = append(o.Segs, Seg{V: vol, C: c})
}

// firstSegTime returns the time for the exit-end parcel to fully drain at
// the current flow; +Inf when the link is stagnant or empty
func (o *Link) firstSegTime() float64 {
	q := math.Abs(o.Q)
	if q <= qtiny || len(o.Segs) == 0 {
		return math.Inf(1)
	}
	return o.Segs[0].V / q
}

// AvgQuality returns the volume-weighted average parcel quality
func (o *Link) AvgQuality() float64 {
	v := 0.0
	m := 0.0
	for _, s := range o.Segs {
		v += s.V
		m += s.V * s.C
	}
	if v <= vtiny {
		return 0
	}
	return m / v
}
