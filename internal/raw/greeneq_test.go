// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package raw

import (
	"math"
	"testing"
)

// S4: favg rescales the first-green plane to match the second-green plane.
func TestGreenEqualizeFavgImbalance(t *testing.T) {
	cfa := testBayerRGGB()
	width, height := 16, 16
	in := NewRaw(width, height)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			switch cfa.ColorAt(j, i) {
			case 1: // green: distinguish first-green (row even) from second-green (row odd)
				if j%2 == 0 {
					in.Set(j, i, 1.0)
				} else {
					in.Set(j, i, 0.5)
				}
			case 0:
				in.Set(j, i, 0.2)
			case 2:
				in.Set(j, i, 0.7)
			}
		}
	}

	out := GreenEqualizeFavg(cfa, in, 0, 0)
	for j := 2; j < height-2; j += 2 {
		for i := 0; i < width; i++ {
			if cfa.ColorAt(j, i) != 1 {
				continue
			}
			got := out.At(j, i)
			if diff := math.Abs(float64(got - 0.5)); diff > 1e-4 {
				t.Fatalf("first-green at (%d,%d) = %v, want ~0.5 after favg", j, i, got)
			}
		}
	}
}

// Invariant 4: green equalization is the identity on a constant raw buffer.
func TestGreenEqIdempotenceOnUniformInput(t *testing.T) {
	cfa := testBayerRGGB()
	in := newConstantRaw(16, 16, 0.4)

	favg := GreenEqualizeFavg(cfa, in, 0, 0)
	for i := range favg.Data {
		if diff := math.Abs(float64(favg.Data[i] - 0.4)); diff > 1e-6 {
			t.Fatalf("favg changed uniform input at index %d: %v", i, favg.Data[i])
		}
	}

	lavg := GreenEqualizeLavg(cfa, in, 0, 0, false, 0.01)
	for i := range lavg.Data {
		if diff := math.Abs(float64(lavg.Data[i] - 0.4)); diff > 1e-6 {
			t.Fatalf("lavg changed uniform input at index %d: %v", i, lavg.Data[i])
		}
	}
}

func TestApplyGreenEqModeNo(t *testing.T) {
	cfa := testBayerRGGB()
	in := newConstantRaw(8, 8, 0.6)
	out := ApplyGreenEq(GreenEqNo, cfa, in, 0, 0, 0.01)
	if out != in {
		t.Fatalf("GreenEqNo must pass the input through unchanged")
	}
}
