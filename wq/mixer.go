// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"math"
	"strings"

	"github.com/hydronet/gowq/inp"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// computeOrder builds the node resolution order for the current flow
// pattern. Nodes joined by a flowing zero-volume element (pump, valve,
// zero-length pipe) must be resolved upstream first; a cycle of such
// elements has no well-defined mixing order and is a fatal TopoError.
func (o *Domain) computeOrder() (order []int, err error) {
	g := simple.NewDirectedGraph()
	for _, n := range o.Nodes {
		g.AddNode(simple.Node(int64(n.Index)))
	}
	for _, l := range o.Links {
		if l.Vol > zeroVol || math.Abs(l.Q) <= qtiny {
			continue
		}
		from, to := l.upNode(), l.dnNode()
		if from == to {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
	}
	sorted, err := topo.Sort(g)
	if err != nil {
		if un, ok := err.(topo.Unorderable); ok {
			var names []string
			for _, cycle := range un {
				for _, gn := range cycle {
					names = append(names, o.Nodes[int(gn.ID())].Name)
				}
			}
			return nil, &TopoError{
				Msg:   "zero-travel-time mixing cycle: " + strings.Join(names, ", "),
				Nodes: names,
			}
		}
		return nil, &TopoError{Msg: err.Error()}
	}
	order = make([]int, len(sorted))
	for i, gn := range sorted {
		order[i] = int(gn.ID())
	}
	return
}

// resolveNodes blends inflows, applies sources and tank mixing, and hands
// the resolved quality to every outbound link, in flow-topological order
func (o *Solver) resolveNodes(t, dt float64) {
	q := &o.Sim.Quality
	age := q.Mode == inp.ModeAge
	tracer := q.Mode == inp.ModeTracer
	chem := q.Mode == inp.ModeChem

	for _, idx := range o.order {
		n := o.Dom.Nodes[idx]
		extIn := 0.0
		if n.Dem < -qtiny {
			extIn = -n.Dem // negative demand = external boundary inflow
		}

		switch n.Kind {

		case Reservoir:
			c := n.C0
			if chem && n.Src != nil {
				if n.Src.Type == Concen {
					// boundary outflow carries the source concentration
					c = n.Src.strengthAt(t)
				} else {
					qout := o.boundaryOutflow(n)
					var warn bool
					c, warn = n.Src.Inject(t, dt, c, qout, 0)
					if warn {
						o.massWarn(t, n)
					}
				}
			}
			n.C = c

		case Junction:
			if n.volIn > vtiny {
				n.C = n.massIn / n.volIn
				if age && extIn > qtiny {
					// boundary inflow enters at age zero and dilutes
					n.C = n.massIn / (n.volIn + extIn*dt)
				}
				n.stagSince = -1
				n.stagTold = false
			} else {
				o.trackStagnation(t, n)
			}
			if chem && n.Src != nil {
				c, warn := n.Src.Inject(t, dt, n.C, n.volIn/dt, extIn)
				n.C = c
				if warn {
					o.massWarn(t, n)
				}
			}

		case TankNode:
			qin := n.volIn / dt
			cin := 0.0
			if n.volIn > vtiny {
				cin = n.massIn / n.volIn
			}
			ageRate := 0.0
			if age {
				ageRate = 1
			}
			cnew, capped := n.Tank.Model.Mix(n.Tank, qin, cin, dt, q.Tol, ageRate)
			if capped {
				o.notef(t, n.Name, "tank mixing sub-stepping reached the iteration cap")
				o.Metrics.capHit()
			}
			n.Tank.C = cnew
			n.C = cnew
			if chem && n.Src != nil && n.Src.Type != Concen {
				c, warn := n.Src.Inject(t, dt, n.C, o.boundaryOutflow(n), 0)
				n.C = c
				if warn {
					o.massWarn(t, n)
				}
			}
		}

		// the trace node is a perpetual 100-strength boundary source
		if tracer && n.Name == q.TraceNode {
			n.C = 100
		}

		// hand the resolved quality to every outbound link
		for _, li := range o.Dom.out[idx] {
			l := o.Dom.Links[li]
			if l.Vol <= zeroVol {
				// zero travel time: deliver straight to the downstream node
				dn := o.Dom.Nodes[l.dnNode()]
				vol := math.Abs(l.Q) * dt
				dn.volIn += vol
				dn.massIn += vol * n.C
				continue
			}
			if math.Abs(l.Q) <= qtiny {
				continue
			}
			l.push(l.Vol-l.segVolume(), n.C, q.Tol)
		}

		// mass removed by demand, for the audit ledger
		if n.Dem > qtiny {
			o.Res.MassExtracted += n.Dem * dt * n.C
		}
	}
}

// boundaryOutflow sums the flow leaving a boundary node into the network
func (o *Solver) boundaryOutflow(n *Node) (qout float64) {
	for _, li := range o.Dom.out[n.Index] {
		qout += math.Abs(o.Dom.Links[li].Q)
	}
	return
}

// trackStagnation flags a node once per episode of extended zero inflow
func (o *Solver) trackStagnation(t float64, n *Node) {
	if n.stagSince < 0 {
		n.stagSince = t
		return
	}
	if !n.stagTold && t-n.stagSince >= o.Sim.Quality.StagSpan {
		o.notef(t, n.Name, "no inbound flow for %g s; quality held at last value", t-n.stagSince)
		n.stagTold = true
	}
}

// massWarn records the degenerate MASS-source case
func (o *Solver) massWarn(t float64, n *Node) {
	o.notef(t, n.Name, "MASS source with no carrying flow; mass accumulates until flow resumes")
}
