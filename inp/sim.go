// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.wq) JSON file
package inp

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
)

// quality modes
const (
	ModeNone    = "none"   // no quality computation
	ModeAge     = "age"    // water age [s]
	ModeTracer  = "tracer" // percent flow from trace node
	ModeChem    = "chem"   // reacting chemical
	KindJunct   = "junction"
	KindResv    = "reservoir"
	KindTank    = "tank"
	KindPipe    = "pipe"
	KindPump    = "pump"
	KindValve   = "valve"
	SrcConcen   = "concen"
	SrcMass     = "mass"
	SrcFlow     = "flowpaced"
	SrcSetpoint = "setpoint"
)

// Data holds global data for simulations
type Data struct {
	Desc     string `json:"desc"`     // description of simulation
	DirOut   string `json:"dirout"`   // directory for output; e.g. /tmp/gowq
	SaveLnks bool   `json:"savelnks"` // record link qualities in addition to node qualities
}

// QualityData holds water quality options
type QualityData struct {
	Mode      string  `json:"mode"`      // one of: none, age, tracer, chem
	TraceNode string  `json:"tracenode"` // name of trace node (tracer mode only)
	Diffus    float64 `json:"diffus"`    // molecular diffusivity [m²/s]
	Visc      float64 `json:"visc"`      // kinematic viscosity [m²/s]
	SpGrav    float64 `json:"spgrav"`    // specific gravity
	Tol       float64 `json:"tol"`       // sub-stepping tolerance on concentration change
	OrderBulk float64 `json:"orderbulk"` // bulk reaction order
	OrderWall float64 `json:"orderwall"` // wall reaction order (0 or 1)
	OrderTank float64 `json:"ordertank"` // tank reaction order
	Kbulk     float64 `json:"kbulk"`     // bulk reaction coefficient [1/s based]; negative = decay
	Kwall     float64 `json:"kwall"`     // wall reaction coefficient; negative = decay
	Climit    float64 `json:"climit"`    // limiting potential; 0 = unlimited
	Rough     bool    `json:"rough"`     // enable mass-transfer limitation from Re/Sc correlation
	Qstep     float64 `json:"qstep"`     // quality time step [s]
	Tf        float64 `json:"tf"`        // final time (horizon) [s]
	StagSpan  float64 `json:"stagspan"`  // span of zero inflow before a stagnation notice [s]; 0 = 3600
	TankMix   string  `json:"tankmix"`   // tank mixing model name; "" = "mixed"
}

// NodeData holds one node definition
type NodeData struct {
	Name  string  `json:"name"`  // unique node name
	Kind  string  `json:"kind"`  // junction, reservoir or tank
	Elev  float64 `json:"elev"`  // elevation (unused by the quality core)
	C0    float64 `json:"c0"`    // initial quality
	Vol0  float64 `json:"vol0"`  // initial tank volume [m³] (tanks only)
	Kord  float64 `json:"kord"`  // tank reaction order override; NaN/0 with kcof=0 = use defaults
	Kcof  float64 `json:"kcof"`  // tank reaction coefficient override
	HasKr bool    `json:"haskr"` // tank reaction override is present
}

// LinkData holds one link definition
type LinkData struct {
	Name   string  `json:"name"`   // unique link name
	Kind   string  `json:"kind"`   // pipe, pump or valve
	Up     string  `json:"up"`     // upstream node name (positive flow direction)
	Dn     string  `json:"dn"`     // downstream node name
	Length float64 `json:"length"` // length [m]; pumps/valves: 0
	Diam   float64 `json:"diam"`   // diameter [m]
	Kbulk  float64 `json:"kbulk"`  // bulk coefficient override
	Kwall  float64 `json:"kwall"`  // wall coefficient override
	HasKb  bool    `json:"haskb"`  // bulk override is present
	HasKw  bool    `json:"haskw"`  // wall override is present
}

// SourceData holds one external quality source definition
type SourceData struct {
	Name     string  `json:"name"`     // unique source name
	Node     string  `json:"node"`     // target node name
	Type     string  `json:"type"`     // concen, mass, flowpaced or setpoint
	Strength float64 `json:"strength"` // baseline strength
	Pattern  string  `json:"pattern"`  // pattern name; "" = constant multiplier 1
}

// Simulation holds all simulation input data
type Simulation struct {
	Data    Data          `json:"data"`     // global data
	Quality QualityData   `json:"quality"`  // quality options
	Nodes   []*NodeData   `json:"nodes"`    // all nodes
	Links   []*LinkData   `json:"links"`    // all links
	Sources []*SourceData `json:"sources"`  // external sources
	Pats    PatsData      `json:"patterns"` // time patterns
	Hyd     *HydData      `json:"hyd"`      // hydraulic time series

	// derived
	Key string // simulation key == filename without extension
}

// ReadSim reads a .wq JSON file
func ReadSim(simfilepath string) (o *Simulation, err error) {
	b, err := os.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", simfilepath, err)
	}
	o = new(Simulation)
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}
	fn := filepath.Base(simfilepath)
	o.Key = fn[:len(fn)-len(filepath.Ext(fn))]
	err = o.Validate()
	if err != nil {
		return nil, err
	}
	return
}

// Validate checks the consistency of all input data. All problems detected
// here are configuration errors: the simulation must not start.
func (o *Simulation) Validate() (err error) {

	// defaults
	if o.Data.DirOut == "" {
		o.Data.DirOut = "/tmp/gowq"
	}
	if o.Quality.Mode == "" {
		o.Quality.Mode = ModeNone
	}
	if o.Quality.StagSpan <= 0 {
		o.Quality.StagSpan = 3600
	}
	if o.Quality.TankMix == "" {
		o.Quality.TankMix = "mixed"
	}

	// quality options
	switch o.Quality.Mode {
	case ModeNone, ModeAge, ModeTracer, ModeChem:
	default:
		return chk.Err("unknown quality mode %q", o.Quality.Mode)
	}
	if o.Quality.Mode != ModeNone {
		if o.Quality.Qstep <= 0 {
			return chk.Err("quality time step must be positive; got %v", o.Quality.Qstep)
		}
		if o.Quality.Tf <= 0 {
			return chk.Err("final time must be positive; got %v", o.Quality.Tf)
		}
	}
	if o.Quality.Tol < 0 || math.IsNaN(o.Quality.Tol) {
		return chk.Err("tolerance must be non-negative; got %v", o.Quality.Tol)
	}

	// nodes
	nidx := make(map[string]*NodeData)
	for _, nd := range o.Nodes {
		if nd.Name == "" {
			return chk.Err("node with empty name")
		}
		if _, ok := nidx[nd.Name]; ok {
			return chk.Err("duplicate node name %q", nd.Name)
		}
		switch nd.Kind {
		case KindJunct, KindResv, KindTank:
		default:
			return chk.Err("node %q: unknown kind %q", nd.Name, nd.Kind)
		}
		if nd.Kind == KindTank && nd.Vol0 < 0 {
			return chk.Err("tank %q: negative initial volume %v", nd.Name, nd.Vol0)
		}
		nidx[nd.Name] = nd
	}

	// trace node
	if o.Quality.Mode == ModeTracer {
		if _, ok := nidx[o.Quality.TraceNode]; !ok {
			return chk.Err("trace node %q is absent from topology", o.Quality.TraceNode)
		}
	}

	// links
	lidx := make(map[string]bool)
	for _, ld := range o.Links {
		if lidx[ld.Name] {
			return chk.Err("duplicate link name %q", ld.Name)
		}
		lidx[ld.Name] = true
		switch ld.Kind {
		case KindPipe, KindPump, KindValve:
		default:
			return chk.Err("link %q: unknown kind %q", ld.Name, ld.Kind)
		}
		if _, ok := nidx[ld.Up]; !ok {
			return chk.Err("link %q: unknown upstream node %q", ld.Name, ld.Up)
		}
		if _, ok := nidx[ld.Dn]; !ok {
			return chk.Err("link %q: unknown downstream node %q", ld.Name, ld.Dn)
		}
		if ld.Kind == KindPipe && (ld.Length < 0 || ld.Diam < 0) {
			return chk.Err("pipe %q: negative length or diameter", ld.Name)
		}
	}

	// sources
	snames := make(map[string]bool)
	pernode := make(map[string]bool)
	for _, sd := range o.Sources {
		if snames[sd.Name] {
			return chk.Err("duplicate source name %q", sd.Name)
		}
		snames[sd.Name] = true
		switch sd.Type {
		case SrcConcen, SrcMass, SrcFlow, SrcSetpoint:
		default:
			return chk.Err("source %q: unknown type %q", sd.Name, sd.Type)
		}
		if _, ok := nidx[sd.Node]; !ok {
			return chk.Err("source %q: unknown node %q", sd.Name, sd.Node)
		}
		if pernode[sd.Node] {
			return chk.Err("node %q has more than one active source", sd.Node)
		}
		pernode[sd.Node] = true
		if math.IsNaN(sd.Strength) || math.IsInf(sd.Strength, 0) {
			return chk.Err("source %q: strength is not a number", sd.Name)
		}
		if sd.Pattern != "" {
			if _, err = o.Pats.Get(sd.Pattern); err != nil {
				return chk.Err("source %q: %v", sd.Name, err)
			}
		}
	}

	// patterns
	for _, p := range o.Pats {
		if err = p.Validate(); err != nil {
			return
		}
	}

	// hydraulics
	if o.Quality.Mode != ModeNone {
		if o.Hyd == nil {
			return chk.Err("hydraulic time series is missing")
		}
		err = o.Hyd.Validate(len(o.Links), len(o.Nodes), o.Quality.Tf)
		if err != nil {
			return
		}
	}
	return
}
