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

// ColorSmoothing iterates a chroma-difference median over the red and blue
// channels for numPasses passes, in place on im. For each pass and each
// chroma channel c in {ColorRed, ColorBlue}, the padding channel is filled
// with the channel's current values, then each interior pixel's channel is
// replaced by the 9-element median of (neighbor[c] - neighbor[green]) over
// its 3x3 neighborhood, plus the pixel's own green, floored at zero.
func ColorSmoothing(im *Image, numPasses int) {
	width, height := im.Width, im.Height
	for pass := 0; pass < numPasses; pass++ {
		for _, c := range [2]int{ColorRed, ColorBlue} {
			for j := 0; j < height; j++ {
				for i := 0; i < width; i++ {
					im.Set(j, i, 3, im.At(j, i, c))
				}
			}
			for j := 1; j < height-1; j++ {
				for i := 1; i < width-1; i++ {
					var med [9]float32
					k := 0
					for dj := -1; dj <= 1; dj++ {
						for di := -1; di <= 1; di++ {
							med[k] = im.At(j+dj, i+di, 3) - im.At(j+dj, i+di, ColorGreen)
							k++
						}
					}
					swapMed(&med)
					v := med[4] + im.At(j, i, ColorGreen)
					if v < 0 {
						v = 0
					}
					im.Set(j, i, c, v)
				}
			}
		}
	}
}

// swapMed is the documented 19-comparator optimal 9-element median search
// from demosaic.c's color_smoothing, reproduced swap-for-swap; the pair
// sequence below is load-bearing and must not be reordered or replaced by
// a generic sorting network.
func swapMed(med *[9]float32) {
	swapIf := func(i, j int) {
		if med[i] > med[j] {
			med[i], med[j] = med[j], med[i]
		}
	}
	swapIf(1, 2)
	swapIf(4, 5)
	swapIf(7, 8)
	swapIf(0, 1)
	swapIf(3, 4)
	swapIf(6, 7)
	swapIf(1, 2)
	swapIf(4, 5)
	swapIf(7, 8)
	swapIf(0, 3)
	swapIf(5, 8)
	swapIf(4, 7)
	swapIf(3, 6)
	swapIf(1, 4)
	swapIf(2, 5)
	swapIf(4, 7)
	swapIf(4, 2)
	swapIf(6, 4)
	swapIf(4, 2)
}
