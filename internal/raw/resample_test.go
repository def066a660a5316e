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

func TestDemosaicHalfSizeBayerConstant(t *testing.T) {
	cfa := testBayerRGGB()
	in := newConstantRaw(16, 16, 0.6)
	out := demosaicHalfSizeBayer(cfa, in)
	if out.Width != 8 || out.Height != 8 {
		t.Fatalf("dims = %dx%d, want 8x8", out.Width, out.Height)
	}
	for j := 0; j < out.Height; j++ {
		for i := 0; i < out.Width; i++ {
			for c := 0; c < 3; c++ {
				if diff := math.Abs(float64(out.At(j, i, c) - 0.6)); diff > 1e-6 {
					t.Fatalf("(%d,%d) channel %d = %v, want 0.6", j, i, c, out.At(j, i, c))
				}
			}
		}
	}
}

func TestDemosaicThirdSizeXTransConstant(t *testing.T) {
	cfa := testXTransCFA()
	in := newConstantRaw(18, 18, 0.25)
	out := demosaicThirdSizeXTrans(cfa, in)
	if out.Width != 6 || out.Height != 6 {
		t.Fatalf("dims = %dx%d, want 6x6", out.Width, out.Height)
	}
	for j := 0; j < out.Height; j++ {
		for i := 0; i < out.Width; i++ {
			for c := 0; c < 3; c++ {
				if diff := math.Abs(float64(out.At(j, i, c) - 0.25)); diff > 1e-6 {
					t.Fatalf("(%d,%d) channel %d = %v, want 0.25", j, i, c, out.At(j, i, c))
				}
			}
		}
	}
}

func TestTo8From8RoundTrip(t *testing.T) {
	for _, v := range []float32{0, 0.25, 0.5, 0.75, 1.0} {
		got := from8(to8(v))
		if diff := math.Abs(float64(got - v)); diff > 0.01 {
			t.Fatalf("round trip %v -> %v, diff too large", v, got)
		}
	}
}

func TestClipAndZoomRGBAPreservesConstantColor(t *testing.T) {
	r := NewDefaultResampler()
	in := NewImage(8, 8)
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			in.Set(j, i, ColorRed, 0.4)
			in.Set(j, i, ColorGreen, 0.5)
			in.Set(j, i, ColorBlue, 0.6)
		}
	}
	out := NewImage(4, 4)
	r.ClipAndZoomRGBA(out, in, ROI{Width: 4, Height: 4})
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			if diff := math.Abs(float64(out.At(j, i, ColorGreen) - 0.5)); diff > 0.02 {
				t.Fatalf("resampled constant green at (%d,%d) = %v, want ~0.5", j, i, out.At(j, i, ColorGreen))
			}
		}
	}
}
