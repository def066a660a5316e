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

// PPGBorder is the border width PPG's neighborhood kernels require.
const PPGBorder = 3

// DemosaicPPG runs the two-pass Patterned Pixel Grouping algorithm on a
// Bayer raw buffer. When medianThreshold > 0, a single pre-median pass
// smooths the green plane before the green interpolation pass, matching
// the `median := thrs > 0` gate.
func DemosaicPPG(cfa CFA, in *Raw, medianThreshold float32) *Image {
	width, height := in.Width, in.Height
	out := NewImage(width, height)
	borderInterpolate(cfa, in, out, PPGBorder)

	src := in
	if medianThreshold > 0 {
		src = PreMedian(cfa, in, 1, medianThreshold)
	}

	ppgGreenPass(cfa, src, out)
	ppgRedBluePass(cfa, out)
	return out
}

func ppgGreenPass(cfa CFA, in *Raw, out *Image) {
	width, height := in.Width, in.Height
	nWorkers := runtime.GOMAXPROCS(0)
	rows := height - 2*PPGBorder
	if rows <= 0 {
		return
	}
	stepSize := rows / nWorkers
	if stepSize < 1 {
		stepSize = 1
	}
	var wg sync.WaitGroup
	for start := PPGBorder; start < height-PPGBorder; start += stepSize {
		end := start + stepSize
		if end > height-PPGBorder {
			end = height - PPGBorder
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				ppgGreenRow(cfa, in, out, j, width)
			}
		}(start, end)
	}
	wg.Wait()
}

func ppgGreenRow(cfa CFA, in *Raw, out *Image, j, width int) {
	for i := PPGBorder; i < width-PPGBorder; i++ {
		c := cfa.ColorAt(j, i)
		pc := in.At(j, i)
		if c != 0 && c != 2 {
			out.Set(j, i, ColorGreen, pc)
			out.Set(j, i, int(c), pc)
			continue
		}
		out.Set(j, i, int(c), pc)

		pym, pym2, pym3 := in.At(j-1, i), in.At(j-2, i), in.At(j-3, i)
		pyM, pyM2, pyM3 := in.At(j+1, i), in.At(j+2, i), in.At(j+3, i)
		pxm, pxm2, pxm3 := in.At(j, i-1), in.At(j, i-2), in.At(j, i-3)
		pxM, pxM2, pxM3 := in.At(j, i+1), in.At(j, i+2), in.At(j, i+3)

		guessx := (pxm+pc+pxM)*2.0 - pxM2 - pxm2
		diffx := (absf(pxm2-pc)+absf(pxM2-pc)+absf(pxm-pxM))*3.0 + (absf(pxM3-pxM)+absf(pxm3-pxm))*2.0
		guessy := (pym+pc+pyM)*2.0 - pyM2 - pym2
		diffy := (absf(pym2-pc)+absf(pyM2-pc)+absf(pym-pyM))*3.0 + (absf(pyM3-pyM)+absf(pym3-pym))*2.0

		var g float32
		if diffx > diffy {
			m, M := minf(pym, pyM), maxf(pym, pyM)
			g = clampf(guessy*0.25, m, M)
		} else {
			m, M := minf(pxm, pxM), maxf(pxm, pxM)
			g = clampf(guessx*0.25, m, M)
		}
		out.Set(j, i, ColorGreen, g)
	}
}

func ppgRedBluePass(cfa CFA, out *Image) {
	width, height := out.Width, out.Height
	nWorkers := runtime.GOMAXPROCS(0)
	rows := height - 2
	if rows <= 0 {
		return
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
			for j := start; j < end; j++ {
				ppgRedBlueRow(cfa, out, j, width)
			}
		}(start, end)
	}
	wg.Wait()
}

func ppgRedBlueRow(cfa CFA, out *Image, j, width int) {
	for i := 1; i < width-1; i++ {
		c := cfa.ColorAt(j, i)
		g := out.At(j, i, ColorGreen)
		if c&1 != 0 {
			nt, nb := out.Pixel(j-1, i), out.Pixel(j+1, i)
			nl, nr := out.Pixel(j, i-1), out.Pixel(j, i+1)
			if cfa.ColorAt(j, i+1) == 0 {
				out.Set(j, i, ColorBlue, (nt[ColorBlue]+nb[ColorBlue]+2.0*g-nt[ColorGreen]-nb[ColorGreen])*0.5)
				out.Set(j, i, ColorRed, (nl[ColorRed]+nr[ColorRed]+2.0*g-nl[ColorGreen]-nr[ColorGreen])*0.5)
			} else {
				out.Set(j, i, ColorRed, (nt[ColorRed]+nb[ColorRed]+2.0*g-nt[ColorGreen]-nb[ColorGreen])*0.5)
				out.Set(j, i, ColorBlue, (nl[ColorBlue]+nr[ColorBlue]+2.0*g-nl[ColorGreen]-nr[ColorGreen])*0.5)
			}
			continue
		}

		ntl, ntr := out.Pixel(j-1, i-1), out.Pixel(j-1, i+1)
		nbl, nbr := out.Pixel(j+1, i-1), out.Pixel(j+1, i+1)
		if c == 0 {
			diff1 := absf(ntl[ColorBlue]-nbr[ColorBlue]) + absf(ntl[ColorGreen]-g) + absf(nbr[ColorGreen]-g)
			guess1 := ntl[ColorBlue] + nbr[ColorBlue] + 2.0*g - ntl[ColorGreen] - nbr[ColorGreen]
			diff2 := absf(ntr[ColorBlue]-nbl[ColorBlue]) + absf(ntr[ColorGreen]-g) + absf(nbl[ColorGreen]-g)
			guess2 := ntr[ColorBlue] + nbl[ColorBlue] + 2.0*g - ntr[ColorGreen] - nbl[ColorGreen]
			out.Set(j, i, ColorBlue, pickDiagonal(diff1, diff2, guess1, guess2))
		} else {
			diff1 := absf(ntl[ColorRed]-nbr[ColorRed]) + absf(ntl[ColorGreen]-g) + absf(nbr[ColorGreen]-g)
			guess1 := ntl[ColorRed] + nbr[ColorRed] + 2.0*g - ntl[ColorGreen] - nbr[ColorGreen]
			diff2 := absf(ntr[ColorRed]-nbl[ColorRed]) + absf(ntr[ColorGreen]-g) + absf(nbl[ColorGreen]-g)
			guess2 := ntr[ColorRed] + nbl[ColorRed] + 2.0*g - ntr[ColorGreen] - nbl[ColorGreen]
			out.Set(j, i, ColorRed, pickDiagonal(diff1, diff2, guess1, guess2))
		}
	}
}

func pickDiagonal(diff1, diff2, guess1, guess2 float32) float32 {
	switch {
	case diff1 > diff2:
		return guess2 * 0.5
	case diff1 < diff2:
		return guess1 * 0.5
	default:
		return (guess1 + guess2) * 0.25
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float32) float32 {
	return maxf(minf(v, hi), lo)
}
