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
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Resampler is the set of external collaborators the dispatcher delegates
// scale-changing work to: fused demosaic+downscale fast paths and a
// general RGBA resizer for the post-demosaic resample path. Callers that
// already own a faster SIMD resampler can inject their own implementation;
// NewDefaultResampler's is a plain bilinear fallback.
type Resampler interface {
	// ClipAndZoomRGBA resamples a full RGB working image to roi's
	// dimensions and scale.
	ClipAndZoomRGBA(out *Image, in *Image, roi ROI)
	// ClipAndZoomDemosaicHalfSize fuses Bayer 2x2-block averaging with
	// downscale, skipping full demosaic entirely.
	ClipAndZoomDemosaicHalfSize(cfa CFA, in *Raw, roi ROI) *Image
	// ClipAndZoomDemosaicThirdSizeXTrans fuses X-Trans 3x3-block
	// averaging with downscale.
	ClipAndZoomDemosaicThirdSizeXTrans(cfa CFA, in *Raw, roi ROI) *Image
}

// AmazeDemosaicer is the opaque alternative Bayer demosaic method some
// callers select by name; its internals are out of scope here. The default
// implementation documents the approximation it makes rather than silently
// mimicking AMAZE's actual behavior.
type AmazeDemosaicer interface {
	DemosaicAmaze(cfa CFA, in *Raw, medianThreshold float32) *Image
}

type defaultResampler struct{}

// NewDefaultResampler returns the module's built-in bilinear Resampler,
// grounded on golang.org/x/image/draw.
func NewDefaultResampler() Resampler { return defaultResampler{} }

func (defaultResampler) ClipAndZoomRGBA(out *Image, in *Image, roi ROI) {
	src := imageToRGBA(in)
	dst := image.NewRGBA(image.Rect(0, 0, roi.Width, roi.Height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	rgbaToImage(dst, out)
}

func (defaultResampler) ClipAndZoomDemosaicHalfSize(cfa CFA, in *Raw, roi ROI) *Image {
	return demosaicHalfSizeBayer(cfa, in)
}

func (defaultResampler) ClipAndZoomDemosaicThirdSizeXTrans(cfa CFA, in *Raw, roi ROI) *Image {
	return demosaicThirdSizeXTrans(cfa, in)
}

func imageToRGBA(im *Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	for j := 0; j < im.Height; j++ {
		for i := 0; i < im.Width; i++ {
			p := im.Pixel(j, i)
			dst.SetRGBA(i, j, color.RGBA{
				R: to8(p[ColorRed]),
				G: to8(p[ColorGreen]),
				B: to8(p[ColorBlue]),
				A: 255,
			})
		}
	}
	return dst
}

func rgbaToImage(src *image.RGBA, out *Image) {
	b := src.Bounds()
	for j := 0; j < out.Height && j < b.Dy(); j++ {
		for i := 0; i < out.Width && i < b.Dx(); i++ {
			c := src.RGBAAt(b.Min.X+i, b.Min.Y+j)
			out.Set(j, i, ColorRed, from8(c.R))
			out.Set(j, i, ColorGreen, from8(c.G))
			out.Set(j, i, ColorBlue, from8(c.B))
		}
	}
}

func to8(v float32) uint8 {
	c := clipf(v) * 255.0
	return uint8(c + 0.5)
}

func from8(v uint8) float32 {
	return float32(v) / 255.0
}

// amazeFallback is the default AmazeDemosaicer: it delegates to PPG. This
// is documented as an approximation, not a reimplementation of RawTherapee's
// AMAZE algorithm, which is out of scope.
type amazeFallback struct{}

// NewDefaultAmazeDemosaicer returns the built-in AmazeDemosaicer fallback.
func NewDefaultAmazeDemosaicer() AmazeDemosaicer { return amazeFallback{} }

func (amazeFallback) DemosaicAmaze(cfa CFA, in *Raw, medianThreshold float32) *Image {
	return DemosaicPPG(cfa, in, medianThreshold)
}

// demosaicHalfSizeBayer is the half-size Bayer fast path: each 2x2 CFA
// block is averaged directly into one output RGB pixel, never allocating a
// full-resolution working image.
func demosaicHalfSizeBayer(cfa CFA, in *Raw) *Image {
	width, height := in.Width/2, in.Height/2
	out := NewImage(width, height)
	for j := 0; j < height; j++ {
		row := j * 2
		for i := 0; i < width; i++ {
			col := i * 2
			var sum [3]float32
			var count [3]int
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					c := int(cfa.ColorAt(row+y, col+x))
					sum[c] += in.At(row+y, col+x)
					count[c]++
				}
			}
			for c := 0; c < 3; c++ {
				if count[c] > 0 {
					out.Set(j, i, c, sum[c]/float32(count[c]))
				}
			}
		}
	}
	return out
}

// demosaicThirdSizeXTrans is the third-size X-Trans fast path: each 3x3
// block of the 6x6 X-Trans tile is averaged directly into one output pixel.
func demosaicThirdSizeXTrans(cfa CFA, in *Raw) *Image {
	width, height := in.Width/3, in.Height/3
	out := NewImage(width, height)
	for j := 0; j < height; j++ {
		row := j * 3
		for i := 0; i < width; i++ {
			col := i * 3
			var sum [3]float32
			var count [3]int
			for y := 0; y < 3; y++ {
				for x := 0; x < 3; x++ {
					c := int(cfa.ColorAt(row+y, col+x))
					sum[c] += in.At(row+y, col+x)
					count[c]++
				}
			}
			for c := 0; c < 3; c++ {
				if count[c] > 0 {
					out.Set(j, i, c, sum[c]/float32(count[c]))
				}
			}
		}
	}
	return out
}
