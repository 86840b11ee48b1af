// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/hydronet/gowq/inp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func Test_metrics01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("metrics01. collector counts steps; nil collector is a no-op")

	coll, err := NewCollector(prometheus.NewRegistry())
	if err != nil {
		tst.Fatalf("%v", err)
	}
	sol, err := NewSolver(onePipe(inp.ModeChem, 0, 0.001))
	if err != nil {
		tst.Fatalf("%v", err)
	}
	sol.Metrics = coll
	res, err := sol.Run()
	if err != nil {
		tst.Fatalf("%v", err)
	}
	chk.Float64(tst, "steps", 1e-15, testutil.ToFloat64(coll.Steps), float64(len(res.Times)))
	chk.Float64(tst, "clock", 1e-9, testutil.ToFloat64(coll.Clock), res.Times[len(res.Times)-1])

	// a solver without a collector runs the same path with nil receivers
	sol2, err := NewSolver(onePipe(inp.ModeChem, 0, 0.001))
	if err != nil {
		tst.Fatalf("%v", err)
	}
	if _, err = sol2.Run(); err != nil {
		tst.Fatalf("%v", err)
	}
}
