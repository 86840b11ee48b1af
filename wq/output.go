// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"bytes"
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Results holds the dense output time series: one quality value per node
// per recorded instant, optionally per link, plus the warning log
type Results struct {
	NodeNames     []string    `json:"nodenames"`     // [nnodes]
	LinkNames     []string    `json:"linknames"`     // [nlinks]
	Times         []float64   `json:"times"`         // [nsteps] recorded instants [s]
	NodeC         [][]float64 `json:"nodec"`         // [nsteps][nnodes] node quality
	LinkC         [][]float64 `json:"linkc"`         // [nsteps][nlinks] link average quality; empty unless enabled
	Notices       []Notice    `json:"notices"`       // warning log
	MassExtracted float64     `json:"massextracted"` // cumulative mass removed by demands

	saveLinks bool
}

// NewResults prepares an empty recording for one domain
func NewResults(dom *Domain) (o *Results) {
	o = &Results{saveLinks: dom.Sim.Data.SaveLnks}
	for _, n := range dom.Nodes {
		o.NodeNames = append(o.NodeNames, n.Name)
	}
	for _, l := range dom.Links {
		o.LinkNames = append(o.LinkNames, l.Name)
	}
	return
}

// record appends the state at instant t and returns it as a StepResult
func (o *Results) record(t float64, dom *Domain) (res *StepResult) {
	nc := make([]float64, len(dom.Nodes))
	for i, n := range dom.Nodes {
		nc[i] = n.C
	}
	o.Times = append(o.Times, t)
	o.NodeC = append(o.NodeC, nc)
	if o.saveLinks {
		lc := make([]float64, len(dom.Links))
		for i, l := range dom.Links {
			lc[i] = l.AvgQuality()
		}
		o.LinkC = append(o.LinkC, lc)
	}
	return &StepResult{T: t, NodeC: nc}
}

// NodeSeries extracts the recorded series of one node
func (o *Results) NodeSeries(name string) (t, c []float64, err error) {
	idx := -1
	for i, nn := range o.NodeNames {
		if nn == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, chk.Err("cannot find node named %q in results", name)
	}
	c = make([]float64, len(o.Times))
	for k := range o.Times {
		c[k] = o.NodeC[k][idx]
	}
	return o.Times, c, nil
}

// Save writes the results as JSON to dirout/fnkey.res
func (o *Results) Save(dirout, fnkey string) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return chk.Err("cannot marshal results: %v", err)
	}
	var buf bytes.Buffer
	buf.Write(b)
	io.WriteFileD(dirout, fnkey+".res", &buf)
	return
}
