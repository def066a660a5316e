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

// Invariant 5: a green sample whose diamond neighborhood is otherwise
// uniform is preserved exactly even when exactly one of its eight tested
// neighbors differs from it by more than the threshold.
func TestPreMedianIsolationRule(t *testing.T) {
	cfa := testBayerRGGB()
	in := newConstantRaw(16, 16, 0.5)
	// (6,7) is a green site for RGGB; perturb one of its diamond neighbors
	// ((6,5), same row two columns left) far beyond the threshold.
	in.Set(6, 5, 0.9)

	out := PreMedian(cfa, in, 1, 0.1)
	got := out.At(6, 7)
	if diff := math.Abs(float64(got - 0.5)); diff > 1e-6 {
		t.Fatalf("center green site changed to %v despite a single outlier neighbor, want 0.5 preserved", got)
	}
}

// Non-green sites pass through PreMedian unchanged.
func TestPreMedianNonGreenPassthrough(t *testing.T) {
	cfa := testBayerRGGB()
	in := NewRaw(16, 16)
	for i := range in.Data {
		in.Data[i] = float32(i%7) / 7.0
	}
	out := PreMedian(cfa, in, 1, 0.01)
	for j := 0; j < 16; j++ {
		for i := 0; i < 16; i++ {
			if c := cfa.ColorAt(j, i); c == 1 {
				continue
			}
			if out.At(j, i) != in.At(j, i) {
				t.Fatalf("non-green site (%d,%d) changed: got %v want %v", j, i, out.At(j, i), in.At(j, i))
			}
		}
	}
}

func TestBubbleSort9Sorts(t *testing.T) {
	med := [9]float32{9, 1, 8, 2, 7, 3, 6, 4, 5}
	bubbleSort9(&med)
	for i := 1; i < 9; i++ {
		if med[i-1] > med[i] {
			t.Fatalf("bubbleSort9 did not sort: %v", med)
		}
	}
	if med[4] != 5 {
		t.Fatalf("median of 1..9 = %v, want 5", med[4])
	}
}
