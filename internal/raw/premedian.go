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

// diamondLim is the per-row half-width of the green pre-median's sampling
// diamond: row offsets -2,-1,0,1,2 contribute 1,2,3,2,1 columns respectively
// (every second column within +-lim), nine samples in all.
var diamondLim = [5]int{0, 1, 2, 1, 0}

// PreMedian runs the edge-aware pre-demosaic median on the green plane of a
// Bayer raw buffer for numPasses iterations. Red and blue sites are
// memcpy-identity; only the green diamond is ever touched.
func PreMedian(cfa CFA, in *Raw, numPasses int, threshold float32) *Raw {
	width, height := in.Width, in.Height
	cur := &Raw{Width: width, Height: height, Data: append([]float32(nil), in.Data...)}

	for pass := 0; pass < numPasses; pass++ {
		next := &Raw{Width: width, Height: height, Data: append([]float32(nil), cur.Data...)}
		for row := 3; row < height-3; row++ {
			col := 3
			if c := cfa.ColorAt(row, col); c != 1 && c != 3 {
				col++
			}
			for ; col < width-3; col += 2 {
				var med [9]float32
				cnt := 0
				k := 0
				center := cur.At(row, col)
				for i := 0; i < 5; i++ {
					lim := diamondLim[i]
					for j := -lim; j <= lim; j += 2 {
						v := cur.At(row+i-2, col+j)
						if absf(v-center) < threshold {
							med[k] = v
							cnt++
						} else {
							med[k] = 64.0 + v
						}
						k++
					}
				}
				bubbleSort9(&med)
				if cnt == 1 {
					next.Set(row, col, med[4]-64.0)
				} else {
					next.Set(row, col, med[(cnt-1)/2])
				}
			}
		}
		cur = next
	}
	return cur
}

// bubbleSort9 sorts a fixed 9-element array in place with a plain double
// loop, so that sentinel-shifted (+64) entries sort to the top regardless
// of how many of the nine are excluded.
func bubbleSort9(med *[9]float32) {
	for i := 0; i < 8; i++ {
		for ii := i + 1; ii < 9; ii++ {
			if med[i] > med[ii] {
				med[i], med[ii] = med[ii], med[i]
			}
		}
	}
}
