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
	"runtime"
	"sync"
)

// xtransLinTriplet is one (offset, weight, color) neighbor contribution.
type xtransLinTriplet struct {
	rowOff, colOff int
	weight         int
	color          int
}

// xtransLinLookup is the per-phase precomputed neighbor list plus the total
// weight accumulated for each non-native color.
type xtransLinLookup struct {
	neighbors  []xtransLinTriplet
	totWeight  [3]int
	nativeColor int
}

// buildXTransLinLookup precomputes, for every (row mod 6, col mod 6) phase,
// the eight-neighbor weighted contributor list: weight 2 for an
// axis-adjacent neighbor, 1 for a diagonal one, skipping neighbors that
// share the center's own color.
func buildXTransLinLookup(cfa CFA) [6][6]xtransLinLookup {
	var lookup [6][6]xtransLinLookup
	for row := 0; row < 6; row++ {
		for col := 0; col < 6; col++ {
			f := int(cfa.ColorAt(row, col))
			var sum [3]int
			var neighbors []xtransLinTriplet
			for y := -1; y <= 1; y++ {
				for x := -1; x <= 1; x++ {
					weight := 1
					if y == 0 {
						weight <<= 1
					}
					if x == 0 {
						weight <<= 1
					}
					color := int(cfa.ColorAt(row+y, col+x))
					if color == f {
						continue
					}
					neighbors = append(neighbors, xtransLinTriplet{y, x, weight, color})
					sum[color] += weight
				}
			}
			lookup[row][col] = xtransLinLookup{neighbors: neighbors, totWeight: sum, nativeColor: f}
		}
	}
	return lookup
}

// XTransLinBorder is the border width X-Trans linear interpolation needs.
const XTransLinBorder = 1

// DemosaicXTransLinear runs the precomputed-neighbor-table linear
// interpolation pass over an X-Trans raw buffer.
func DemosaicXTransLinear(cfa CFA, in *Raw) *Image {
	width, height := in.Width, in.Height
	out := NewImage(width, height)
	borderInterpolate(cfa, in, out, XTransLinBorder)

	lookup := buildXTransLinLookup(cfa)

	nWorkers := runtime.GOMAXPROCS(0)
	rows := height - 2
	if rows <= 0 {
		return out
	}
	stepSize := rows / nWorkers
	if stepSize < 1 {
		stepSize = 1
	}
	var wg sync.WaitGroup
	for start := 1; start < height-1; start += stepSize {
		end := start + stepSize
		if end > height-1 {
			end = height - 1
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for row := start; row < end; row++ {
				xtransLinRow(in, out, lookup, row, width)
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

func xtransLinRow(in *Raw, out *Image, lookup [6][6]xtransLinLookup, row, width int) {
	for col := 1; col < width-1; col++ {
		l := lookup[row%6][col%6]
		var sum [3]float32
		for _, n := range l.neighbors {
			sum[n.color] += in.At(row+n.rowOff, col+n.colOff) * float32(n.weight)
		}
		for c := 0; c < 3; c++ {
			if c == l.nativeColor {
				out.Set(row, col, c, in.At(row, col))
			} else {
				out.Set(row, col, c, sum[c]/float32(l.totWeight[c]))
			}
		}
	}
}
