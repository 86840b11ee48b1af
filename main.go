// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/hydronet/gowq/inp"
	"github.com/hydronet/gowq/wq"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v", err)
			io.Pf("See location of error below:\n")
			chk.Verbose = true
			for i := 5; i > 3; i-- {
				chk.CallerInfo(i)
			}
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".wq", true)
	verbose := io.ArgToBool(1, true)
	saveRes := io.ArgToBool(2, true)
	nworkers := io.ArgToInt(3, 0)

	// message
	if verbose {
		io.PfWhite("\nGowq -- Network Water Quality Transport and Reaction\n")
		io.Pf("Copyright 2024 The Gowq Authors. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n")

		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"save results file", "saveRes", saveRes,
			"number of workers: 0=NumCPU", "nworkers", nworkers,
		))
	}

	// read scenario
	sim, err := inp.ReadSim(fnamepath)
	if err != nil {
		chk.Panic("cannot read scenario:\n%v", err)
	}

	// solver
	sol, err := wq.NewSolver(sim)
	if err != nil {
		chk.Panic("cannot initialize solver:\n%v", err)
	}
	defer sol.Close()
	sol.Verbose = verbose
	sol.Nw = nworkers

	// run simulation
	res, err := sol.Run()
	if err != nil {
		chk.Panic("Run failed:\n%v", err)
	}

	// report final state
	if verbose {
		last := len(res.Times) - 1
		if last >= 0 {
			io.Pf("\n%12s%16s\n", "node", "quality")
			for i, name := range res.NodeNames {
				v := res.NodeC[last][i]
				if sim.Quality.Mode == inp.ModeAge {
					v /= 3600.0 // report age in hours
				}
				io.Pf("%12s%16.6f\n", name, v)
			}
		}
		for _, n := range res.Notices {
			io.Pfyel("%v\n", n.String())
		}
	}

	// save results
	if saveRes {
		err = res.Save(sim.Data.DirOut, sim.Key)
		if err != nil {
			chk.Panic("cannot save results:\n%v", err)
		}
		if verbose {
			io.Pf("\nresults saved to %s\n", sim.Data.DirOut)
		}
	}
}
