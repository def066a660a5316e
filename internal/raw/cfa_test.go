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

import "testing"

func TestBayerPatternTopLeftCorner(t *testing.T) {
	cases := []struct {
		pattern string
		color   uint8
	}{
		{"RGGB", ColorRed},
		{"BGGR", ColorBlue},
		{"GRBG", ColorGreen},
		{"GBRG", ColorGreen},
	}
	for _, c := range cases {
		cfa := NewBayerCFA(c.pattern)
		if got := cfa.ColorAt(0, 0); got != c.color {
			t.Errorf("%s (0,0) = %d, want %d", c.pattern, got, c.color)
		}
	}
}

func TestBayerPatternIsPeriodic(t *testing.T) {
	cfa := NewBayerCFA("RGGB")
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			want := cfa.ColorAt(row, col)
			for _, period := range []int{2, 4, -2, -4} {
				if got := cfa.ColorAt(row+period, col); got != want {
					t.Errorf("(%d,%d) row-shifted by %d = %d, want %d", row, col, period, got, want)
				}
				if got := cfa.ColorAt(row, col+period); got != want {
					t.Errorf("(%d,%d) col-shifted by %d = %d, want %d", row, col, period, got, want)
				}
			}
		}
	}
}

func TestCFAPeriod(t *testing.T) {
	if p := NewBayerCFA("RGGB").Period(); p != 2 {
		t.Fatalf("Bayer period = %d, want 2", p)
	}
	if p := testXTransCFA().Period(); p != 6 {
		t.Fatalf("X-Trans period = %d, want 6", p)
	}
}

func TestXTransColorAtMatchesTableAndWraps(t *testing.T) {
	cfa := testXTransCFA()
	for row := 0; row < 6; row++ {
		for col := 0; col < 6; col++ {
			want := testXTransTable[row][col]
			if got := cfa.ColorAt(row, col); got != want {
				t.Fatalf("(%d,%d) = %d, want %d", row, col, got, want)
			}
			if got := cfa.ColorAt(row-6, col+6); got != want {
				t.Fatalf("wrapped (%d,%d) = %d, want %d", row-6, col+6, got, want)
			}
			if got := cfa.ColorAt(row-12, col-6); got != want {
				t.Fatalf("negative-wrapped (%d,%d) = %d, want %d", row-12, col-6, got, want)
			}
		}
	}
}
