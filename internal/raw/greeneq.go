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

import "math"

// GreenEqMode selects which green equilibration passes run before
// demosaicing. Values match the persisted ParamRecord.GreenEq field.
type GreenEqMode uint32

const (
	GreenEqNo    GreenEqMode = 0
	GreenEqLocal GreenEqMode = 1
	GreenEqFull  GreenEqMode = 2
	GreenEqBoth  GreenEqMode = 3
)

// GreenEqualizeFavg scales the first-green sites of a Bayer raw buffer by
// the ratio of the second-green sum to the first-green sum, leaving
// non-green sites unchanged. If either sum is non-positive the ratio is
// undefined, and the buffer is passed through unchanged.
func GreenEqualizeFavg(cfa CFA, in *Raw, x, y int) *Raw {
	out := &Raw{Width: in.Width, Height: in.Height, Data: append([]float32(nil), in.Data...)}

	width, height := in.Width, in.Height
	oj, oi := 0, 0
	if cfa.ColorAt(oj+y, oi+x)&1 != 1 {
		oi++
	}
	g2Offset := 1
	if oi != 0 {
		g2Offset = -1
	}

	var sum1, sum2 float64
	for j := oj; j < height-1; j += 2 {
		for i := oi; i < width-1-g2Offset; i += 2 {
			sum1 += float64(in.At(j, i))
			sum2 += float64(in.At(j+1, i+g2Offset))
		}
	}
	if !(sum1 > 0 && sum2 > 0) {
		return out
	}
	grRatio := sum1 / sum2

	for j := oj; j < height-1; j += 2 {
		for i := oi; i < width-1-g2Offset; i += 2 {
			out.Set(j, i, float32(float64(in.At(j, i))/grRatio))
		}
	}
	return out
}

// GreenEqualizeLavg applies the local, edge-gated green equilibration pass.
// thr is the caller's configured edge threshold (typically 0.0001*iso);
// the adaptive threshold actually compared is maximum*thr with
// maximum=1.0. When inPlace is true, out aliases in (used by GreenEqBoth
// after Favg has already produced a fresh buffer).
func GreenEqualizeLavg(cfa CFA, in *Raw, x, y int, inPlace bool, thr float32) *Raw {
	const maximum = float32(1.0)
	width, height := in.Width, in.Height

	oj, oi := 2, 2
	if cfa.ColorAt(oj+y, oi+x) != 1 {
		oj++
	}
	if cfa.ColorAt(oj+y, oi+x) != 1 {
		oi++
	}
	if cfa.ColorAt(oj+y, oi+x) != 1 {
		oj--
	}

	var out *Raw
	if inPlace {
		out = in
	} else {
		out = &Raw{Width: width, Height: height, Data: append([]float32(nil), in.Data...)}
	}

	for j := oj; j < height-2; j += 2 {
		for i := oi; i < width-2; i += 2 {
			o1_1 := in.At(j-1, i-1)
			o1_2 := in.At(j-1, i+1)
			o1_3 := in.At(j+1, i-1)
			o1_4 := in.At(j+1, i+1)
			o2_1 := in.At(j-2, i)
			o2_2 := in.At(j+2, i)
			o2_3 := in.At(j, i-2)
			o2_4 := in.At(j, i+2)

			m1 := (o1_1 + o1_2 + o1_3 + o1_4) / 4.0
			m2 := (o2_1 + o2_2 + o2_3 + o2_4) / 4.0

			if m2 > 0 && m1/m2 < maximum*2.0 {
				c1 := (absf(o1_1-o1_2) + absf(o1_1-o1_3) + absf(o1_1-o1_4) + absf(o1_2-o1_3) + absf(o1_3-o1_4) + absf(o1_2-o1_4)) / 6.0
				c2 := (absf(o2_1-o2_2) + absf(o2_1-o2_3) + absf(o2_1-o2_4) + absf(o2_2-o2_3) + absf(o2_3-o2_4) + absf(o2_2-o2_4)) / 6.0
				if in.At(j, i) < maximum*0.95 && c1 < maximum*thr && c2 < maximum*thr {
					out.Set(j, i, in.At(j, i)*m1/m2)
				}
			}
		}
	}
	return out
}

func absf(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// ApplyGreenEq runs the requested green equilibration mode ahead of
// demosaicing; GreenEqBoth chains Favg then Lavg in place over Favg's
// output, matching the caller sequencing in the dispatcher.
func ApplyGreenEq(mode GreenEqMode, cfa CFA, in *Raw, x, y int, thr float32) *Raw {
	switch mode {
	case GreenEqFull:
		return GreenEqualizeFavg(cfa, in, x, y)
	case GreenEqLocal:
		return GreenEqualizeLavg(cfa, in, x, y, false, thr)
	case GreenEqBoth:
		favg := GreenEqualizeFavg(cfa, in, x, y)
		return GreenEqualizeLavg(cfa, favg, x, y, true, thr)
	default:
		return in
	}
}
