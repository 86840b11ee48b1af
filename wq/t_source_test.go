// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/hydronet/gowq/inp"
)

func Test_src01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("src01. the four injection semantics")

	dt := 60.0
	cin := 0.5
	qin := 0.04

	// FLOWPACED: fixed concentration increment
	s := &Source{Type: FlowPaced, Strength: 0.2}
	c, warn := s.Inject(0, dt, cin, qin, 0)
	chk.Float64(tst, "flowpaced", 1e-15, c, 0.7)
	if warn {
		tst.Errorf("flowpaced must not warn")
	}

	// SETPOINT: forces the outflow quality, negative is the user's right
	s = &Source{Type: Setpoint, Strength: -1.5}
	c, _ = s.Inject(0, dt, cin, qin, 0)
	chk.Float64(tst, "setpoint", 1e-15, c, -1.5)

	// MASS: c = cin + S/F
	s = &Source{Type: MassRate, Strength: 0.002}
	c, warn = s.Inject(0, dt, cin, qin, 0)
	chk.Float64(tst, "mass", 1e-15, c, cin+0.002/qin)
	if warn {
		tst.Errorf("mass with carrying flow must not warn")
	}

	// CONCEN: only boundary inflow is overridden
	s = &Source{Type: Concen, Strength: 4.0}
	c, _ = s.Inject(0, dt, cin, qin, 0)
	chk.Float64(tst, "concen no boundary inflow", 1e-15, c, cin)
	c, _ = s.Inject(0, dt, cin, qin, 0.01)
	chk.Float64(tst, "concen blends boundary inflow", 1e-15, c,
		(qin*cin+0.01*4.0)/(qin+0.01))
}

func Test_src02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("src02. MASS with no carrying flow accumulates")

	s := &Source{Type: MassRate, Strength: 0.002}

	// no flow: mass is held back and flagged
	c, warn := s.Inject(0, 60, 0, 0, 0)
	if !warn {
		tst.Errorf("mass with no carrying flow must warn")
	}
	chk.Float64(tst, "quality unchanged", 1e-15, c, 0)
	chk.Float64(tst, "pending mass", 1e-15, s.massPend, 0.12)

	// flow resumes: pending mass is released with this step's injection
	c, warn = s.Inject(60, 60, 0, 0.01, 0)
	if warn {
		tst.Errorf("mass release must not warn")
	}
	chk.Float64(tst, "released", 1e-15, c, (0.002*60+0.12)/(0.01*60))
	chk.Float64(tst, "pending cleared", 1e-15, s.massPend, 0)
}

func Test_src03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("src03. pattern multiplier")

	pat := &inp.PatData{Name: "pulse", Period: 3600, Mults: []float64{1, 0}}
	s := &Source{Type: Setpoint, Strength: 2.0, Pat: pat}
	c, _ := s.Inject(0, 60, 0, 0.01, 0)
	chk.Float64(tst, "on", 1e-15, c, 2.0)
	c, _ = s.Inject(3600, 60, 0.7, 0.01, 0)
	chk.Float64(tst, "off", 1e-15, c, 0.0)
}
