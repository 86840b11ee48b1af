// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/hydronet/gowq/inp"
)

// State is the solver lifecycle state
type State int

const (
	Uninitialized State = iota
	Ready
	Stepping
	Finished
	Closed
)

func (o State) String() string {
	switch o {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	case Finished:
		return "finished"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// StepResult holds the resolved state of one completed step
type StepResult struct {
	T     float64   // simulation time at the end of the step [s]
	NodeC []float64 // quality at every node
}

// Solver drives the quality time-stepping loop. It produces a finite,
// non-restartable sequence of per-step results: the caller drains it with
// Run or drives it with Step. Stop truncates the sequence at the next step
// boundary; a partially computed step is never exposed.
type Solver struct {
	Sim     *inp.Simulation // input data
	Dom     *Domain         // runtime arenas
	Res     *Results        // recorded output
	Verbose bool            // print progress
	Metrics *Collector      // optional prometheus metrics; nil = disabled
	Nw      int             // workers for the per-link stages; 0 = NumCPU

	state State
	t     float64
	snap  inp.Snapshot
	order []int // node resolution order for the current flow pattern
	first bool
	stop  atomic.Bool
}

// NewSolver validates the input data and prepares a Ready solver
func NewSolver(sim *inp.Simulation) (o *Solver, err error) {
	if err = sim.Validate(); err != nil {
		return nil, confErr("%v", err)
	}
	dom, err := NewDomain(sim)
	if err != nil {
		return nil, err
	}
	o = &Solver{
		Sim:   sim,
		Dom:   dom,
		Res:   NewResults(dom),
		state: Ready,
		first: true,
	}
	return
}

// T returns the current simulation clock [s]
func (o *Solver) T() float64 { return o.t }

// StateNow returns the current lifecycle state
func (o *Solver) StateNow() State { return o.state }

// Stop requests termination at the next step boundary. Safe to call from
// another goroutine; the last fully completed step remains recorded.
func (o *Solver) Stop() { o.stop.Store(true) }

// Close releases the solver; further Step calls are an error
func (o *Solver) Close() { o.state = Closed }

// Run drains the step sequence and returns the recorded results
func (o *Solver) Run() (res *Results, err error) {
	for {
		_, done, err := o.Step()
		if err != nil {
			return o.Res, err
		}
		if done {
			return o.Res, nil
		}
	}
}

// Step advances the simulation by one quality step and records the result.
// done is true once the horizon is reached (or Stop was requested); res is
// nil in that case.
func (o *Solver) Step() (res *StepResult, done bool, err error) {

	// lifecycle
	switch o.state {
	case Uninitialized:
		return nil, false, chk.Err("solver is not initialized")
	case Closed:
		return nil, false, chk.Err("solver is closed")
	case Finished:
		return nil, true, nil
	case Ready:
		o.state = Stepping
	}

	// quality disabled: nothing to track
	if o.Sim.Quality.Mode == inp.ModeNone {
		o.t = o.Sim.Quality.Tf
		o.state = Finished
		return nil, true, nil
	}

	// stop at the boundary, horizon reached
	tf := o.Sim.Quality.Tf
	if o.stop.Load() || o.t >= tf-1e-9 {
		o.state = Finished
		return nil, true, nil
	}

	// hydraulic snapshot and mixing order
	if o.first || o.t >= o.snap.Tnext-1e-9 {
		o.snap = o.Sim.Hyd.At(o.t)
		o.Dom.ApplyHyd(o.snap)
		o.order, err = o.Dom.computeOrder()
		if err != nil {
			o.state = Finished
			return nil, false, err
		}
		o.first = false
	}

	// step length: configured step, hydraulic boundary, earliest segment
	// drain (so a mixing event is not overshot), horizon
	dt := o.stepSize(tf)

	// stage 1: drain links in parallel (links share no mutable state)
	o.eachLink(func(l *Link) {
		l.outVol, l.outMass = 0, 0
		if l.Vol <= zeroVol || math.Abs(l.Q) <= qtiny {
			return // zero-volume pass-through or stagnant: nothing moves
		}
		cfill := o.Dom.Nodes[l.upNode()].C
		l.outVol = math.Abs(l.Q) * dt
		l.outMass = l.drain(l.outVol, cfill)
	})

	// barrier: deliver drained parcels to the receiving nodes
	for _, n := range o.Dom.Nodes {
		n.volIn, n.massIn = 0, 0
	}
	for _, l := range o.Dom.Links {
		if l.outVol > 0 {
			dn := o.Dom.Nodes[l.dnNode()]
			dn.volIn += l.outVol
			dn.massIn += l.outMass
		}
	}

	// stage 2: resolve nodes in flow-topological order (sources, tanks,
	// new upstream parcels)
	o.resolveNodes(o.t, dt)

	// stage 3: react or age every parcel in place
	switch o.Sim.Quality.Mode {
	case inp.ModeChem:
		tol := o.Sim.Quality.Tol
		var mu sync.Mutex
		o.eachLink(func(l *Link) {
			if l.Kin.Zero() {
				return
			}
			hit := false
			for i := range l.Segs {
				c, _, capped := l.Kin.Step(l.Segs[i].C, dt, tol)
				l.Segs[i].C = c
				hit = hit || capped
			}
			if hit {
				mu.Lock()
				o.notef(o.t, l.Name, "reaction sub-stepping reached the iteration cap")
				o.Metrics.capHit()
				mu.Unlock()
			}
		})
	case inp.ModeAge:
		o.eachLink(func(l *Link) {
			for i := range l.Segs {
				l.Segs[i].C += dt
			}
		})
	}

	// stage 4: record
	o.t += dt
	res = o.Res.record(o.t, o.Dom)
	o.Metrics.step(o.t, o.Dom)
	if o.Verbose {
		io.Pf("t = %10.1f  dt = %8.3f\n", o.t, dt)
	}
	if o.t >= tf-1e-9 {
		o.state = Finished
	}
	return res, false, nil
}

// stepSize computes the largest safe step length
func (o *Solver) stepSize(tf float64) (dt float64) {
	q := &o.Sim.Quality
	dt = q.Qstep
	if o.snap.Tnext-o.t < dt {
		dt = o.snap.Tnext - o.t
	}
	if tf-o.t < dt {
		dt = tf - o.t
	}

	// earliest segment drain; floored so short parcels cannot stall the
	// clock (draining multiple parcels in one step is then accepted)
	floor := q.Qstep * 1e-3
	drain := math.Inf(1)
	for _, l := range o.Dom.Links {
		if l.Vol <= zeroVol {
			continue
		}
		if ts := l.firstSegTime(); ts < drain {
			drain = ts
		}
	}
	if drain < dt {
		dt = math.Max(drain, floor)
	}
	return
}

// eachLink runs fn over all links using a bounded set of workers
func (o *Solver) eachLink(fn func(l *Link)) {
	nw := o.Nw
	if nw <= 0 {
		nw = runtime.NumCPU()
	}
	links := o.Dom.Links
	if nw > len(links) {
		nw = len(links)
	}
	if nw <= 1 {
		for _, l := range links {
			fn(l)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (len(links) + nw - 1) / nw
	for w := 0; w < nw; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(links) {
			hi = len(links)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(part []*Link) {
			defer wg.Done()
			for _, l := range part {
				fn(l)
			}
		}(links[lo:hi])
	}
	wg.Wait()
}

// notef records one warning notice
func (o *Solver) notef(t float64, entity, msg string, prm ...interface{}) {
	o.Res.Notices = append(o.Res.Notices, Notice{T: t, Entity: entity, Msg: io.Sf(msg, prm...)})
	o.Metrics.warn()
}
