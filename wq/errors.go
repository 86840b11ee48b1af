// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"github.com/cpmech/gosl/io"
)

// ConfigError is fatal and surfaced before the simulation starts: the
// input data cannot describe a runnable quality problem.
type ConfigError struct {
	Msg string
}

func (o *ConfigError) Error() string { return o.Msg }

// confErr creates a new ConfigError
func confErr(msg string, prm ...interface{}) *ConfigError {
	return &ConfigError{Msg: io.Sf(msg, prm...)}
}

// TopoError is fatal and aborts the run at the offending step: a
// zero-travel-time mixing cycle was detected during topological ordering.
type TopoError struct {
	Msg   string
	Nodes []string // names of the nodes forming the cycle
}

func (o *TopoError) Error() string { return o.Msg }

// Notice is a recovered, non-fatal warning; the simulation continues with
// the best available result and the notice is kept for audit.
type Notice struct {
	T      float64 `json:"t"`      // simulation time [s]
	Entity string  `json:"entity"` // offending node or link name
	Msg    string  `json:"msg"`    // what happened
}

func (o Notice) String() string {
	return io.Sf("t=%g %s: %s", o.T, o.Entity, o.Msg)
}
