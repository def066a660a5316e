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

// Package diag provides perceptual and numeric diagnostics for demosaiced
// output: never on the demosaic hot path, used by the regression tests and
// the REST job endpoint's diagnostics response.
package diag

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/aferrero2707/rawdemosaic/internal/median"
	"github.com/aferrero2707/rawdemosaic/internal/raw"
)

// PSNR computes the peak signal-to-noise ratio in dB between two
// equal-sized RGB images, using gonum's Mean over the per-pixel squared
// error to get the MSE. Returns +Inf if the images are pixel-identical.
func PSNR(a, b *raw.Image) (float64, error) {
	sq, err := squaredErrors(a, b)
	if err != nil {
		return 0, err
	}
	mse := stat.Mean(sq, nil)
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(1.0/mse), nil
}

// MeanDeltaE76 computes the mean CIE76 perceptual color difference (Lab
// Euclidean distance) between two equal-sized RGB images, converting each
// pixel via go-colorful.
func MeanDeltaE76(a, b *raw.Image) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("diag: size mismatch %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	deltas := make([]float64, 0, a.Width*a.Height)
	for j := 0; j < a.Height; j++ {
		for i := 0; i < a.Width; i++ {
			pa, pb := a.Pixel(j, i), b.Pixel(j, i)
			ca := colorful.Color{R: float64(pa[raw.ColorRed]), G: float64(pa[raw.ColorGreen]), B: float64(pa[raw.ColorBlue])}
			cb := colorful.Color{R: float64(pb[raw.ColorRed]), G: float64(pb[raw.ColorGreen]), B: float64(pb[raw.ColorBlue])}
			deltas = append(deltas, ca.DistanceCIE76(cb))
		}
	}
	return stat.Mean(deltas, nil), nil
}

// MedianAbsoluteError complements PSNR's mean-squared-error view with a
// robust, outlier-insensitive error measure: the median of the per-channel
// absolute differences between a and b, found via internal/median's
// fixed-size comparator network (falling back to internal/qsort's
// quickselect for the tail run whose length isn't nine).
func MedianAbsoluteError(a, b *raw.Image) (float64, error) {
	sq, err := squaredErrors(a, b)
	if err != nil {
		return 0, err
	}
	abs := make([]float32, len(sq))
	for i, d := range sq {
		abs[i] = float32(math.Sqrt(d))
	}
	return float64(medianInChunksOfNine(abs)), nil
}

// medianInChunksOfNine reduces a to its median via internal/median: it
// folds the slice down in blocks of nine (median.MedianFloat32Slice9's
// fixed comparator network) until one block remains, then settles
// the final, possibly-shorter run with median.MedianFloat32's quickselect
// fallback. This is a diagnostic reduction, never an image correction.
func medianInChunksOfNine(a []float32) float32 {
	for len(a) > 9 {
		next := make([]float32, 0, (len(a)+8)/9)
		for i := 0; i < len(a); i += 9 {
			end := i + 9
			if end > len(a) {
				next = append(next, median.MedianFloat32(append([]float32(nil), a[i:]...)))
				break
			}
			chunk := append([]float32(nil), a[i:end]...)
			next = append(next, median.MedianFloat32Slice9(chunk))
		}
		a = next
	}
	return median.MedianFloat32(append([]float32(nil), a...))
}

func squaredErrors(a, b *raw.Image) ([]float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return nil, fmt.Errorf("diag: size mismatch %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	sq := make([]float64, 0, a.Width*a.Height*3)
	for j := 0; j < a.Height; j++ {
		for i := 0; i < a.Width; i++ {
			pa, pb := a.Pixel(j, i), b.Pixel(j, i)
			for c := 0; c < 3; c++ {
				d := float64(pa[c] - pb[c])
				sq = append(sq, d*d)
			}
		}
	}
	return sq, nil
}
