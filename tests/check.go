// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package tests implements functions to check full network quality simulations
package tests

import (
	"encoding/json"
	"math"
	"os"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/hydronet/gowq/inp"
	"github.com/hydronet/gowq/wq"
)

// Reference holds comparison results: node qualities at selected instants
type Reference struct {
	Times []float64            // [ncheck] instants to compare [s]
	Nodes map[string][]float64 // nodename => [ncheck] expected qualities
}

// CompareResults runs one scenario and compares node qualities against a .cmp file
func CompareResults(tst *testing.T, wqfilepath, cmpfname string, tolQ float64, verbose bool) {

	// scenario
	sim, err := inp.ReadSim(wqfilepath)
	if err != nil {
		chk.Panic("cannot read scenario:\n%v", err)
	}

	// run
	sol, err := wq.NewSolver(sim)
	if err != nil {
		chk.Panic("cannot initialize solver:\n%v", err)
	}
	defer sol.Close()
	res, err := sol.Run()
	if err != nil {
		chk.Panic("simulation failed:\n%v", err)
	}

	// read file with comparison results
	buf, err := os.ReadFile(cmpfname)
	if err != nil {
		tst.Errorf("CompareResults: ReadFile failed:%v\n", err)
		return
	}

	// unmarshal json
	var cmp Reference
	err = json.Unmarshal(buf, &cmp)
	if err != nil {
		tst.Errorf("CompareResults: Unmarshal failed\n")
		return
	}

	// run comparisons
	for name, vals := range cmp.Nodes {
		times, c, err := res.NodeSeries(name)
		if err != nil {
			tst.Errorf("CompareResults: %v\n", err)
			return
		}
		for k, tc := range cmp.Times {
			idx := findTime(times, tc)
			if idx < 0 {
				tst.Errorf("CompareResults: instant %v was not recorded\n", tc)
				return
			}
			if verbose {
				io.Pfyel("t = %v\n", tc)
			}
			chk.AnaNum(tst, io.Sf("%s@%g", name, tc), tolQ, c[idx], vals[k], verbose)
		}
	}
}

// findTime locates a recorded instant; -1 means not found
func findTime(times []float64, t float64) int {
	for i, ti := range times {
		if math.Abs(ti-t) < 1e-6 {
			return i
		}
	}
	return -1
}
