// Copyright 2024 The Gowq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wq

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_tank01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("tank01. mixing model driven through the tank state")

	mix, err := NewMixModel("mixed")
	if err != nil {
		tst.Fatalf("%v", err)
	}

	// inert washout: closed form exp(-q dt/V) per step
	tk := &Tank{Vol: 36, C: 1, Model: mix}
	c, capped := tk.Model.Mix(tk, 0.01, 0, 60, 1e-6, 0)
	if capped {
		tst.Errorf("affine kinetics must not hit the sub-stepping cap")
	}
	chk.Float64(tst, "washout step", 1e-15, c, math.Exp(-0.01*60.0/36.0))

	// empty tank passes inflow straight through
	tk = &Tank{Vol: 0, C: 3, Model: mix}
	c, _ = tk.Model.Mix(tk, 0.01, 7, 60, 1e-6, 0)
	chk.Float64(tst, "empty pass-through", 1e-15, c, 7)

	// aging: a full stagnant tank grows older at unit rate
	tk = &Tank{Vol: 36, C: 100, Model: mix}
	c, _ = tk.Model.Mix(tk, 0, 0, 60, 1e-6, 1)
	chk.Float64(tst, "age growth", 1e-12, c, 160)

	// unknown model names are rejected by the factory
	if _, err = NewMixModel("lifo"); err == nil {
		tst.Errorf("unknown mixing model must fail")
	}
}
