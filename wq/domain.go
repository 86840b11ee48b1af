// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package wq implements the water-quality transport and reaction engine:
// event-driven Lagrangian segments over the links, flow-weighted mixing at
// the nodes, external source injection and tank reactors, driven by a
// precomputed hydraulic time series
package wq

import (
	"math"

	"github.com/hydronet/gowq/inp"
	"github.com/hydronet/gowq/rxn"
)

// node and link kinds
type NodeKind int
type LinkKind int

const (
	Junction NodeKind = iota
	Reservoir
	TankNode
)

const (
	Pipe LinkKind = iota
	Pump
	Valve
)

// numerical thresholds
const (
	qtiny   = 1e-9  // flow below this [m³/s] is stagnant
	zeroVol = 1e-9  // link volume below this [m³] is a zero-travel-time element
	vtiny   = 1e-12 // volume below this [m³] is dropped from segment lists
)

// Node holds the runtime state of one node in the flat arena
type Node struct {
	Index int      // index in Domain.Nodes
	Name  string   // unique name
	Kind  NodeKind // junction, reservoir or tank
	Elev  float64  // elevation (unused by the quality core)
	C0    float64  // boundary/initial quality
	C     float64  // resolved quality for the current step
	Dem   float64  // current demand [m³/s]; negative = external inflow
	Src   *Source  // external source; nil if none
	Tank  *Tank    // tank state; nil unless Kind == TankNode

	// per-step accumulators
	volIn  float64 // volume arrived on inbound links this step
	massIn float64 // mass arrived on inbound links this step

	// stagnation tracking
	stagSince float64 // time when inbound flow ceased; < 0 while flowing
	stagTold  bool    // a notice for this stagnation episode was emitted
}

// Seg is a parcel of water of uniform quality and known volume occupying a
// contiguous portion of a link. Segs[0] is next to exit at the current
// downstream end.
type Seg struct {
	V float64 // volume [m³] (> 0)
	C float64 // quality
}

// Link holds the runtime state of one link in the flat arena
type Link struct {
	Index  int       // index in Domain.Links
	Name   string    // unique name
	Kind   LinkKind  // pipe, pump or valve
	Up, Dn int       // endpoint node indices (positive flow: Up → Dn)
	Length float64   // length [m]
	Diam   float64   // diameter [m]
	Area   float64   // cross-sectional area [m²]
	Vol    float64   // total volume [m³] == Length・Area
	Kin    rxn.Rater // resolved kinetics (wall Kf refreshed per snapshot)
	Q      float64   // current signed flow [m³/s]
	Segs   []Seg     // parcels, exit end first

	dir     int     // current flow direction: +1, -1 or 0
	outVol  float64 // volume drained this step
	outMass float64 // mass drained this step
}

// Tank holds per-tank state, mutated once per step by the mixing model
type Tank struct {
	Vol   float64   // resident volume [m³], supplied by the hydraulic series
	C     float64   // current mixed quality
	Kin   rxn.Rater // tank kinetics (bulk law only)
	Model MixModel  // mixing model; default completely mixed
}

// Domain holds the flat, index-addressed arenas for one simulation
type Domain struct {
	Sim   *inp.Simulation // input data (read-only)
	Nodes []*Node         // all nodes
	Links []*Link         // all links
	Nidx  map[string]int  // node name → index
	Lidx  map[string]int  // link name → index

	out [][]int // [nnodes] link indices currently flowing out of each node
}

// NewDomain builds the runtime arenas from validated input data
func NewDomain(sim *inp.Simulation) (o *Domain, err error) {
	o = &Domain{
		Sim:  sim,
		Nidx: make(map[string]int),
		Lidx: make(map[string]int),
	}
	q := &sim.Quality
	age := q.Mode == inp.ModeAge
	tracer := q.Mode == inp.ModeTracer

	// nodes
	for i, nd := range sim.Nodes {
		n := &Node{
			Index:     i,
			Name:      nd.Name,
			Elev:      nd.Elev,
			C0:        nd.C0,
			C:         nd.C0,
			stagSince: -1,
		}
		if age || tracer {
			n.C0, n.C = 0, 0
		}
		switch nd.Kind {
		case inp.KindJunct:
			n.Kind = Junction
		case inp.KindResv:
			n.Kind = Reservoir
		case inp.KindTank:
			n.Kind = TankNode
			kin := rxn.Rater{Bulk: rxn.Params{Order: q.OrderTank, Coeff: q.Kbulk, Limit: q.Climit}}
			if nd.HasKr {
				kin.Bulk.Order = nd.Kord
				kin.Bulk.Coeff = nd.Kcof
			}
			if age || tracer {
				kin = rxn.Rater{}
			}
			mix, e := NewMixModel(q.TankMix)
			if e != nil {
				return nil, confErr("tank %q: %v", nd.Name, e)
			}
			n.Tank = &Tank{Vol: nd.Vol0, C: n.C, Kin: kin, Model: mix}
		}
		o.Nidx[nd.Name] = i
		o.Nodes = append(o.Nodes, n)
	}

	// links
	for i, ld := range sim.Links {
		l := &Link{
			Index:  i,
			Name:   ld.Name,
			Up:     o.Nidx[ld.Up],
			Dn:     o.Nidx[ld.Dn],
			Length: ld.Length,
			Diam:   ld.Diam,
		}
		switch ld.Kind {
		case inp.KindPipe:
			l.Kind = Pipe
		case inp.KindPump:
			l.Kind = Pump
		case inp.KindValve:
			l.Kind = Valve
		}
		l.Area = math.Pi * ld.Diam * ld.Diam / 4.0
		l.Vol = l.Length * l.Area
		if q.Mode == inp.ModeChem && l.Kind == Pipe {
			kb := q.Kbulk
			if ld.HasKb {
				kb = ld.Kbulk
			}
			kw := q.Kwall
			if ld.HasKw {
				kw = ld.Kwall
			}
			sv := 0.0
			if ld.Diam > 0 {
				sv = 4.0 / ld.Diam
			}
			l.Kin = rxn.Rater{
				Bulk: rxn.Params{Order: q.OrderBulk, Coeff: kb, Limit: q.Climit},
				Wall: rxn.Wall{Order: q.OrderWall, Coeff: kw, SV: sv},
			}
		}

		// one segment spanning the link at the blended endpoint quality
		c := (o.Nodes[l.Up].C + o.Nodes[l.Dn].C) / 2.0
		l.initSegs(c)
		o.Lidx[ld.Name] = i
		o.Links = append(o.Links, l)
	}

	// sources
	for _, sd := range sim.Sources {
		src, e := newSource(sd, sim.Pats)
		if e != nil {
			return nil, e
		}
		o.Nodes[o.Nidx[sd.Node]].Src = src
	}
	return
}

// ApplyHyd installs one hydraulic snapshot: link flows (with reversal
// detection), node demands and tank volumes, and the mass-transfer
// coefficients that depend on velocity.
func (o *Domain) ApplyHyd(snap inp.Snapshot) {
	q := &o.Sim.Quality
	for _, l := range o.Links {
		l.Q = snap.Flows[l.Index]
		dir := 0
		if l.Q > qtiny {
			dir = 1
		} else if l.Q < -qtiny {
			dir = -1
		}
		if dir != 0 && l.dir != 0 && dir != l.dir {
			l.reverse() // flow direction reversal resets segment ordering
		}
		if dir != 0 {
			l.dir = dir
		}
		if q.Rough && l.Kind == Pipe && l.Kin.Wall.Coeff != 0 {
			l.Kin.Wall.Kf = rxn.MassTransfer(l.Q, l.Diam, l.Length, q.Visc, q.Diffus)
		}
	}
	for _, n := range o.Nodes {
		n.Dem = snap.Demands[n.Index]
		if n.Tank != nil && len(snap.TankVols) > 0 {
			n.Tank.Vol = snap.TankVols[n.Index]
		}
	}

	// incidence by current flow direction
	if o.out == nil {
		o.out = make([][]int, len(o.Nodes))
	}
	for i := range o.out {
		o.out[i] = o.out[i][:0]
	}
	for _, l := range o.Links {
		if math.Abs(l.Q) > qtiny {
			o.out[l.upNode()] = append(o.out[l.upNode()], l.Index)
		}
	}
}

// upNode and dnNode return the endpoint indices in the current flow
// direction (upstream = where water enters the link now)
func (o *Link) upNode() int {
	if o.Q < 0 {
		return o.Dn
	}
	return o.Up
}

func (o *Link) dnNode() int {
	if o.Q < 0 {
		return o.Up
	}
	return o.Dn
}

// TotalMass returns Σ(segment volume × quality) + Σ(tank volume × quality);
// conserved in a closed, non-reacting network
func (o *Domain) TotalMass() (m float64) {
	for _, l := range o.Links {
		for _, s := range l.Segs {
			m += s.V * s.C
		}
	}
	for _, n := range o.Nodes {
		if n.Tank != nil {
			m += n.Tank.Vol * n.Tank.C
		}
	}
	return
}
