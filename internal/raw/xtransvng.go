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

// XTransVNGBorder is the width of the frame VNG leaves to its linear seed:
// the correction covers rows and columns 2 through size-3. Images smaller
// than 6x6 skip the correction and keep their linear seed entirely.
const XTransVNGBorder = 2

// vngGradTerm is one gradient contributor: the absolute difference between
// the pixels at relative offsets off1 and off2 (each already folded to the
// term's own color channel), weighted, accumulated into every gradient
// direction named in grads.
type vngGradTerm struct {
	off1, off2 int
	weight     float32
	grads      []int
}

// vngNeighbor is one compass-direction averaging contributor: pixOff is the
// relative offset to that neighbor's pixel base, and dblOff, when nonzero,
// is the relative offset to the same-color pixel two steps further in the
// same direction (used to interpolate the pixel's own color channel from
// its same-color neighbors rather than the raw neighbor triple).
type vngNeighbor struct {
	pixOff int
	dblOff int
}

type vngPhase struct {
	terms     []vngGradTerm
	neighbors [8]vngNeighbor
}

// vngTerms is the 64-entry gradient contributor table: (y1,x1,y2,x2,weight,
// gradMask) per row, where bit g of gradMask marks that this term's
// difference contributes to compass direction g. Verbatim from the VNG
// interpolation pass; the values are load-bearing and must not be reflowed.
var vngTerms = [64][6]int{
	{-2, -2, +0, -1, 1, 0x01}, {-2, -2, +0, +0, 2, 0x01}, {-2, -1, -1, +0, 1, 0x01},
	{-2, -1, +0, -1, 1, 0x02}, {-2, -1, +0, +0, 1, 0x03}, {-2, -1, +0, +1, 2, 0x01},
	{-2, +0, +0, -1, 1, 0x06}, {-2, +0, +0, +0, 2, 0x02}, {-2, +0, +0, +1, 1, 0x03},
	{-2, +1, -1, +0, 1, 0x04}, {-2, +1, +0, -1, 2, 0x04}, {-2, +1, +0, +0, 1, 0x06},
	{-2, +1, +0, +1, 1, 0x02}, {-2, +2, +0, +0, 2, 0x04}, {-2, +2, +0, +1, 1, 0x04},
	{-1, -2, -1, +0, 1, 0x80}, {-1, -2, +0, -1, 1, 0x01}, {-1, -2, +1, -1, 1, 0x01},
	{-1, -2, +1, +0, 2, 0x01}, {-1, -1, -1, +1, 1, 0x88}, {-1, -1, +1, -2, 1, 0x40},
	{-1, -1, +1, -1, 1, 0x22}, {-1, -1, +1, +0, 1, 0x33}, {-1, -1, +1, +1, 2, 0x11},
	{-1, +0, -1, +2, 1, 0x08}, {-1, +0, +0, -1, 1, 0x44}, {-1, +0, +0, +1, 1, 0x11},
	{-1, +0, +1, -2, 2, 0x40}, {-1, +0, +1, -1, 1, 0x66}, {-1, +0, +1, +0, 2, 0x22},
	{-1, +0, +1, +1, 1, 0x33}, {-1, +0, +1, +2, 2, 0x10}, {-1, +1, +1, -1, 2, 0x44},
	{-1, +1, +1, +0, 1, 0x66}, {-1, +1, +1, +1, 1, 0x22}, {-1, +1, +1, +2, 1, 0x10},
	{-1, +2, +0, +1, 1, 0x04}, {-1, +2, +1, +0, 2, 0x04}, {-1, +2, +1, +1, 1, 0x04},
	{+0, -2, +0, +0, 2, 0x80}, {+0, -1, +0, +1, 2, 0x88}, {+0, -1, +1, -2, 1, 0x40},
	{+0, -1, +1, +0, 1, 0x11}, {+0, -1, +2, -2, 1, 0x40}, {+0, -1, +2, -1, 1, 0x20},
	{+0, -1, +2, +0, 1, 0x30}, {+0, -1, +2, +1, 2, 0x10}, {+0, +0, +0, +2, 2, 0x08},
	{+0, +0, +2, -2, 2, 0x40}, {+0, +0, +2, -1, 1, 0x60}, {+0, +0, +2, +0, 2, 0x20},
	{+0, +0, +2, +1, 1, 0x30}, {+0, +0, +2, +2, 2, 0x10}, {+0, +1, +1, +0, 1, 0x44},
	{+0, +1, +1, +2, 1, 0x10}, {+0, +1, +2, -1, 2, 0x40}, {+0, +1, +2, +0, 1, 0x60},
	{+0, +1, +2, +1, 1, 0x20}, {+0, +1, +2, +2, 1, 0x10}, {+1, -2, +1, +0, 1, 0x80},
	{+1, -1, +1, +1, 1, 0x88}, {+1, +0, +1, +2, 1, 0x08}, {+1, +0, +2, -1, 1, 0x40},
	{+1, +0, +2, +1, 1, 0x10},
}

// vngChood is the eight compass-direction neighbor offsets VNG averages
// over, northwest first and proceeding clockwise.
var vngChood = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, +1}, {0, +1}, {+1, +1}, {+1, 0}, {+1, -1}, {0, -1},
}

// buildVNGPhases precomputes, for every (row mod 6, col mod 6) phase at a
// given image width, the gradient term list and compass neighbor table the
// per-pixel VNG loop consumes. Offsets bake in width, so the table must be
// rebuilt whenever width changes.
func buildVNGPhases(cfa CFA, width int) [6][6]vngPhase {
	var phases [6][6]vngPhase
	fcol := func(row, col int) int { return int(cfa.ColorAt(row, col)) }

	for row := 0; row < 6; row++ {
		for col := 0; col < 6; col++ {
			var terms []vngGradTerm
			for _, t := range vngTerms {
				y1, x1, y2, x2, weight, mask := t[0], t[1], t[2], t[3], t[4], t[5]
				color := fcol(row+y1, col+x1)
				if fcol(row+y2, col+x2) != color {
					continue
				}
				diag := 1
				if fcol(row, col+1) == color && fcol(row+1, col) == color {
					diag = 2
				}
				if absInt(y1-y2) == diag && absInt(x1-x2) == diag {
					continue
				}
				var grads []int
				for g := 0; g < 8; g++ {
					if mask&(1<<uint(g)) != 0 {
						grads = append(grads, g)
					}
				}
				terms = append(terms, vngGradTerm{
					off1:   (y1*width+x1)*4 + color,
					off2:   (y2*width+x2)*4 + color,
					weight: float32(weight),
					grads:  grads,
				})
			}

			var neighbors [8]vngNeighbor
			color := fcol(row, col)
			for g, d := range vngChood {
				y, x := d[0], d[1]
				n := vngNeighbor{pixOff: (y*width + x) * 4}
				if fcol(row+y, col+x) != color && fcol(row+2*y, col+2*x) == color {
					n.dblOff = (y*width+x)*8 + color
				}
				neighbors[g] = n
			}
			phases[row][col] = vngPhase{terms: terms, neighbors: neighbors}
		}
	}
	return phases
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DemosaicXTransVNG seeds the image with X-Trans linear interpolation, then
// refines it in place with Variable Number of Gradients correction: each
// interior pixel picks the compass directions whose gradient sum is at most
// gmin + gmax/2 (the smallest plus half the largest of the eight) and
// averages only those neighbors.
//
// The correction writes lag two rows behind the read cursor, staged through
// a three-row ring buffer, so that a row's neighbor reads never observe
// that row's own already-corrected values.
func DemosaicXTransVNG(cfa CFA, in *Raw) *Image {
	out := DemosaicXTransLinear(cfa, in)
	width, height := out.Width, out.Height
	if height < 6 || width < 6 {
		return out
	}
	phases := buildVNGPhases(cfa, width)
	nWorkers := runtime.GOMAXPROCS(0)

	bufs := [3][]float32{
		make([]float32, width*4),
		make([]float32, width*4),
		make([]float32, width*4),
	}
	prev2, prev1, cur := 0, 1, 2

	for row := 2; row < height-2; row++ {
		vngRow(cfa, out, phases, row, width, bufs[cur], nWorkers)

		if row > 3 {
			lo := 4 * ((row-2)*width + 2)
			n := (width - 4) * 4
			copy(out.Pix[lo:lo+n], bufs[prev2][8:8+n])
		}
		prev2, prev1, cur = prev1, cur, prev2
	}

	n := (width - 4) * 4
	lo0 := 4 * ((height-4)*width + 2)
	copy(out.Pix[lo0:lo0+n], bufs[prev2][8:8+n])
	lo1 := 4 * ((height-3)*width + 2)
	copy(out.Pix[lo1:lo1+n], bufs[prev1][8:8+n])

	return out
}

func vngRow(cfa CFA, out *Image, phases [6][6]vngPhase, row, width int, buf []float32, nWorkers int) {
	cols := width - 4
	if cols <= 0 {
		return
	}
	stepSize := cols / nWorkers
	if stepSize < 1 {
		stepSize = 1
	}
	var wg sync.WaitGroup
	for start := 2; start < width-2; start += stepSize {
		end := start + stepSize
		if end > width-2 {
			end = width - 2
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for col := start; col < end; col++ {
				vngPixel(cfa, out, phases, row, col, width, buf)
			}
		}(start, end)
	}
	wg.Wait()
}

func vngPixel(cfa CFA, out *Image, phases [6][6]vngPhase, row, col, width int, buf []float32) {
	phase := phases[row%6][col%6]
	base := (row*width + col) * 4
	pix := out.Pix

	var gval [8]float32
	for _, t := range phase.terms {
		diff := absf(pix[base+t.off1]-pix[base+t.off2]) * t.weight
		for _, g := range t.grads {
			gval[g] += diff
		}
	}

	gmin, gmax := gval[0], gval[0]
	for g := 1; g < 8; g++ {
		if gval[g] < gmin {
			gmin = gval[g]
		}
		if gval[g] > gmax {
			gmax = gval[g]
		}
	}
	if gmax == 0 {
		copy(buf[col*4:col*4+4], pix[base:base+4])
		return
	}

	thold := gmin + gmax*0.5
	color := int(cfa.ColorAt(row, col))
	var sum [3]float32
	num := 0
	for g := 0; g < 8; g++ {
		if gval[g] > thold {
			continue
		}
		n := phase.neighbors[g]
		for c := 0; c < 3; c++ {
			if c == color && n.dblOff != 0 {
				sum[c] += (pix[base+c] + pix[base+n.dblOff]) * 0.5
			} else {
				sum[c] += pix[base+n.pixOff+c]
			}
		}
		num++
	}

	for c := 0; c < 3; c++ {
		tot := pix[base+color]
		if c != color {
			tot += (sum[c] - sum[color]) / float32(num)
		}
		buf[col*4+c] = clipf(tot)
	}
}
