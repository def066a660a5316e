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

// borderInterpolate fills the B-pixel frame around the image that the
// interior kernels cannot reach: for every output pixel within B of any
// edge, each channel is the mean of the same-colored samples in the 3x3
// neighborhood that lie inside the raw buffer; the pixel's own CFA color is
// copied from the raw sample verbatim. B is 3 for PPG, 1 for X-Trans
// linear, 6 for Markesteijn's mirrored halo.
//
// Implementations may iterate every pixel and simply overwrite rather than
// skip the interior band; the output is identical either way, so this
// iterates only the border band for efficiency.
func borderInterpolate(cfa CFA, src *Raw, out *Image, border int) {
	w, h := src.Width, src.Height
	for row := 0; row < h; row++ {
		if row >= border && row < h-border {
			borderInterpolateRow(cfa, src, out, row, 0, border)
			borderInterpolateRow(cfa, src, out, row, w-border, w)
			continue
		}
		borderInterpolateRow(cfa, src, out, row, 0, w)
	}
}

func borderInterpolateRow(cfa CFA, src *Raw, out *Image, row, colStart, colEnd int) {
	for col := colStart; col < colEnd; col++ {
		own := cfa.ColorAt(row, col)
		var sum [3]float32
		var cnt [3]int
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				r, c := row+dr, col+dc
				if !src.inBounds(r, c) {
					continue
				}
				color := cfa.ColorAt(r, c)
				sum[color] += src.At(r, c)
				cnt[color]++
			}
		}
		for ch := 0; ch < 3; ch++ {
			if uint8(ch) == own {
				out.Set(row, col, ch, src.At(row, col))
			} else if cnt[ch] > 0 {
				out.Set(row, col, ch, sum[ch]/float32(cnt[ch]))
			} else {
				out.Set(row, col, ch, src.At(row, col))
			}
		}
	}
}
