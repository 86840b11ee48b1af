// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/hydronet/gowq/ana"
	"github.com/hydronet/gowq/inp"
)

// onePipe builds: reservoir r → 1 m³ pipe → junction j with demand q.
// With q = 0.001 m³/s the travel time is exactly 1000 s.
func onePipe(mode string, kb, q float64) *inp.Simulation {
	diam := math.Sqrt(4 * 0.01 / math.Pi) // area = 0.01 m²
	return &inp.Simulation{
		Quality: inp.QualityData{
			Mode: mode, Tol: 1e-6, OrderBulk: 1, Kbulk: kb,
			Qstep: 50, Tf: 3000,
		},
		Nodes: []*inp.NodeData{
			{Name: "r", Kind: inp.KindResv},
			{Name: "j", Kind: inp.KindJunct},
		},
		Links: []*inp.LinkData{
			{Name: "p", Kind: inp.KindPipe, Up: "r", Dn: "j", Length: 100, Diam: diam},
		},
		Hyd: &inp.HydData{
			Times:   []float64{0},
			Flows:   [][]float64{{q}},
			Demands: [][]float64{{0, q}},
		},
	}
}

func Test_solver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver01. plug-flow delay and first-order decay closed form")

	kb := -0.001
	sim := onePipe(inp.ModeChem, kb, 0.001)
	sim.Sources = []*inp.SourceData{
		{Name: "dose", Node: "r", Type: inp.SrcConcen, Strength: 1.0},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}

	T := 1000.0 // travel time
	pd := ana.PipeDecay{C0: 1.0, Kb: kb, T: T}
	times, c, err := res.NodeSeries("j")
	if err != nil {
		tst.Fatalf("%v", err)
	}
	for k, t := range times {
		if t <= T { // front not yet through: initially clean pipe
			chk.Float64(tst, "before front", 1e-14, c[k], 0)
		}
		if t >= T+sim.Quality.Qstep { // settled within one quality step
			chk.AnaNum(tst, "after front", 1e-12, c[k], pd.Calc(t), chk.Verbose)
		}
	}
	chk.Float64(tst, "steady decay", 1e-12, c[len(c)-1], math.Exp(kb*T))
}

func Test_solver02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver02. MASS source balance: c = cin + S/F")

	q := 0.001
	s := 0.002
	sim := onePipe(inp.ModeChem, 0, q)
	sim.Nodes[0].C0 = 0.5
	sim.Sources = []*inp.SourceData{
		{Name: "booster", Node: "j", Type: inp.SrcMass, Strength: s},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}
	_, c, err := res.NodeSeries("j")
	if err != nil {
		tst.Fatalf("%v", err)
	}
	chk.Float64(tst, "steady quality", 1e-12, c[len(c)-1], 0.5+s/q)

	// constant conditions keep the parcel count bounded by merging
	p := sol.Dom.Links[0]
	if len(p.Segs) > 3 {
		tst.Errorf("parcel count grew unbounded: %d", len(p.Segs))
	}
}

func Test_solver03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver03. mass conservation in a closed loop")

	diam := math.Sqrt(4 * 0.01 / math.Pi)
	sim := &inp.Simulation{
		Quality: inp.QualityData{Mode: inp.ModeChem, Tol: 1e-6, OrderBulk: 1, Qstep: 50, Tf: 5000},
		Nodes: []*inp.NodeData{
			{Name: "n1", Kind: inp.KindJunct, C0: 0},
			{Name: "n2", Kind: inp.KindJunct, C0: 3},
			{Name: "n3", Kind: inp.KindJunct, C0: 6},
		},
		Links: []*inp.LinkData{
			{Name: "p1", Kind: inp.KindPipe, Up: "n1", Dn: "n2", Length: 100, Diam: diam},
			{Name: "p2", Kind: inp.KindPipe, Up: "n2", Dn: "n3", Length: 100, Diam: diam},
			{Name: "p3", Kind: inp.KindPipe, Up: "n3", Dn: "n1", Length: 100, Diam: diam},
		},
		Hyd: &inp.HydData{
			Times:   []float64{0},
			Flows:   [][]float64{{0.001, 0.001, 0.001}},
			Demands: [][]float64{{0, 0, 0}},
		},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	m0 := sol.Dom.TotalMass()
	chk.Float64(tst, "initial mass", 1e-12, m0, 1.5+4.5+3.0)
	for {
		_, done, err := sol.Step()
		if err != nil {
			tst.Fatalf("%v", err)
		}
		if done {
			break
		}
		chk.Float64(tst, "mass conserved", 1e-9, sol.Dom.TotalMass(), m0)
		for _, l := range sol.Dom.Links {
			chk.Float64(tst, "segment volume invariant", 1e-9, l.segVolume(), l.Vol)
		}
	}
}

func Test_solver04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver04. bounded tracer and branch fractions")

	diam := math.Sqrt(4 * 0.01 / math.Pi)
	sim := &inp.Simulation{
		Quality: inp.QualityData{Mode: inp.ModeTracer, TraceNode: "r1", Tol: 1e-6, Qstep: 10, Tf: 1000},
		Nodes: []*inp.NodeData{
			{Name: "r1", Kind: inp.KindResv},
			{Name: "r2", Kind: inp.KindResv},
			{Name: "j", Kind: inp.KindJunct},
			{Name: "j2", Kind: inp.KindJunct},
		},
		Links: []*inp.LinkData{
			{Name: "p1", Kind: inp.KindPipe, Up: "r1", Dn: "j", Length: 100, Diam: diam},
			{Name: "p2", Kind: inp.KindPipe, Up: "r2", Dn: "j", Length: 100, Diam: diam},
			{Name: "p3", Kind: inp.KindPipe, Up: "j", Dn: "j2", Length: 100, Diam: diam},
		},
		Hyd: &inp.HydData{
			Times:   []float64{0},
			Flows:   [][]float64{{0.01, 0.03, 0.04}},
			Demands: [][]float64{{0, 0, 0, 0.04}},
		},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}

	// 0 ≤ quality ≤ 100 everywhere, always
	for k := range res.Times {
		for i, c := range res.NodeC[k] {
			if c < -1e-12 || c > 100+1e-12 {
				tst.Errorf("tracer out of bounds: node %s t=%g c=%g", res.NodeNames[i], res.Times[k], c)
			}
		}
	}

	// after the fronts pass, j carries the flow fraction from r1
	_, cj, err := res.NodeSeries("j")
	if err != nil {
		tst.Fatalf("%v", err)
	}
	chk.Float64(tst, "flow fraction at j", 1e-9, cj[len(cj)-1], 100.0*0.01/0.04)
}

func Test_solver05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver05. age is monotone and reaches the travel time")

	sim := onePipe(inp.ModeAge, 0, 0.001)
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}
	_, c, err := res.NodeSeries("j")
	if err != nil {
		tst.Fatalf("%v", err)
	}
	for k := 1; k < len(c); k++ {
		if c[k] < c[k-1]-1e-12 {
			tst.Errorf("age decreased: %g → %g", c[k-1], c[k])
		}
	}
	chk.Float64(tst, "steady age == travel time", 1e-9, c[len(c)-1], 1000.0)
}

func Test_solver06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver06. completely-mixed tank washout through pumps")

	sim := &inp.Simulation{
		Quality: inp.QualityData{Mode: inp.ModeChem, Tol: 1e-6, OrderBulk: 1, Qstep: 60, Tf: 7200},
		Nodes: []*inp.NodeData{
			{Name: "r", Kind: inp.KindResv, C0: 0},
			{Name: "tk", Kind: inp.KindTank, C0: 1, Vol0: 36},
			{Name: "j", Kind: inp.KindJunct},
		},
		Links: []*inp.LinkData{
			{Name: "pm1", Kind: inp.KindPump, Up: "r", Dn: "tk"},
			{Name: "pm2", Kind: inp.KindPump, Up: "tk", Dn: "j"},
		},
		Hyd: &inp.HydData{
			Times:    []float64{0},
			Flows:    [][]float64{{0.01, 0.01}},
			Demands:  [][]float64{{0, 0, 0.01}},
			TankVols: [][]float64{{0, 36, 0}},
		},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}

	tw := ana.TankWashout{C0: 1, Cin: 0, Q: 0.01, V: 36}
	times, c, err := res.NodeSeries("tk")
	if err != nil {
		tst.Fatalf("%v", err)
	}
	for k, t := range times {
		chk.AnaNum(tst, "tank washout", 1e-12, c[k], tw.Calc(t), chk.Verbose)
	}

	// zero travel time: the junction sees the tank quality within the step
	_, cj, err := res.NodeSeries("j")
	if err != nil {
		tst.Fatalf("%v", err)
	}
	chk.Float64(tst, "pass-through", 1e-12, cj[len(cj)-1], c[len(c)-1])
}

func Test_solver07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver07. zero-travel-time mixing cycle is a fatal error")

	sim := &inp.Simulation{
		Quality: inp.QualityData{Mode: inp.ModeChem, Tol: 1e-6, Qstep: 60, Tf: 600},
		Nodes: []*inp.NodeData{
			{Name: "j1", Kind: inp.KindJunct},
			{Name: "j2", Kind: inp.KindJunct},
		},
		Links: []*inp.LinkData{
			{Name: "v1", Kind: inp.KindValve, Up: "j1", Dn: "j2"},
			{Name: "v2", Kind: inp.KindValve, Up: "j2", Dn: "j1"},
		},
		Hyd: &inp.HydData{
			Times:   []float64{0},
			Flows:   [][]float64{{0.01, 0.01}},
			Demands: [][]float64{{0, 0}},
		},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	_, _, err = sol.Step()
	if err == nil {
		tst.Fatalf("cycle must be detected")
	}
	topoErr, ok := err.(*TopoError)
	if !ok {
		tst.Fatalf("expected TopoError; got %T: %v", err, err)
	}
	chk.IntAssert(len(topoErr.Nodes), 2)
}

func Test_solver08(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver08. lifecycle: ready, stepping, stop at boundary, close")

	sim := onePipe(inp.ModeChem, 0, 0.001)
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	chk.String(tst, sol.StateNow().String(), "ready")

	_, done, err := sol.Step()
	if err != nil || done {
		tst.Fatalf("first step failed: done=%v err=%v", done, err)
	}
	chk.String(tst, sol.StateNow().String(), "stepping")

	// stop truncates at the next boundary; the last step stays recorded
	sol.Stop()
	_, done, err = sol.Step()
	if err != nil {
		tst.Fatalf("%v", err)
	}
	if !done {
		tst.Errorf("stop must end the sequence at the boundary")
	}
	chk.String(tst, sol.StateNow().String(), "finished")
	chk.IntAssert(len(sol.Res.Times), 1)

	sol.Close()
	if _, _, err = sol.Step(); err == nil {
		tst.Errorf("stepping a closed solver must fail")
	}
}

func Test_solver09(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver09. configuration errors are fatal before the run")

	sim := onePipe(inp.ModeChem, 0, 0.001)
	sim.Sources = []*inp.SourceData{
		{Name: "bad", Node: "r", Type: "drip", Strength: 1},
	}
	_, err := NewSolver(sim)
	if err == nil {
		tst.Fatalf("unknown source type must fail")
	}
	if _, ok := err.(*ConfigError); !ok {
		tst.Errorf("expected ConfigError; got %T", err)
	}
}

func Test_solver10(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver10. hydraulic boundary lands a step; reversal flips the exit end")

	// r1(C0=1) → p1 → j → p2 → r2(C0=5); both pipes hold 1 m³, travel
	// time 1000 s at |Q| = 0.001. The flow reverses at t = 2525, which is
	// not a multiple of the quality step.
	diam := math.Sqrt(4 * 0.01 / math.Pi)
	sim := &inp.Simulation{
		Quality: inp.QualityData{Mode: inp.ModeChem, Tol: 1e-6, Qstep: 50, Tf: 5000},
		Nodes: []*inp.NodeData{
			{Name: "r1", Kind: inp.KindResv, C0: 1},
			{Name: "j", Kind: inp.KindJunct},
			{Name: "r2", Kind: inp.KindResv, C0: 5},
		},
		Links: []*inp.LinkData{
			{Name: "p1", Kind: inp.KindPipe, Up: "r1", Dn: "j", Length: 100, Diam: diam},
			{Name: "p2", Kind: inp.KindPipe, Up: "j", Dn: "r2", Length: 100, Diam: diam},
		},
		Hyd: &inp.HydData{
			Times:   []float64{0, 2525},
			Flows:   [][]float64{{0.001, 0.001}, {-0.001, -0.001}},
			Demands: [][]float64{{0, 0, 0}, {0, 0, 0}},
		},
	}
	sol, err := NewSolver(sim)
	if err != nil {
		tst.Fatalf("%v", err)
	}
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}
	times, c, err := res.NodeSeries("j")
	if err != nil {
		tst.Fatalf("%v", err)
	}

	// the step before the hydraulic update is clamped so a recorded
	// instant lands exactly on the boundary
	onBoundary := false
	for _, t := range times {
		if math.Abs(t-2525) < 1e-9 {
			onBoundary = true
		}
	}
	if !onBoundary {
		tst.Errorf("no recorded instant on the hydraulic boundary t=2525")
	}

	for k, t := range times {
		switch {
		case t > 1050 && t <= 2525:
			// forward flow settled: j sees r1 water
			chk.Float64(tst, "before reversal", 1e-12, c[k], 1)
		case t > 2525 && t <= 3500:
			// after reversal p2 feeds j from its former upstream end,
			// which still holds the old r1-quality water
			chk.Float64(tst, "old water after reversal", 1e-12, c[k], 1)
		case t > 3600:
			// one travel time after reversal the r2 water arrives
			chk.Float64(tst, "r2 water arrives", 1e-12, c[k], 5)
		}
	}
}
