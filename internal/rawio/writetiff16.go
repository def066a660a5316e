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

// Package rawio exports the dispatcher's RGB working images to ordinary
// image files: 16-bit TIFF for lossless archival, JPEG for quick preview.
package rawio

import (
	"bufio"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"

	"github.com/aferrero2707/rawdemosaic/internal/raw"
)

// WriteTIFF16ToFile demosaic-exports im to a 16-bit TIFF file, applying the
// given black/white levels and gamma as a display stretch.
func WriteTIFF16ToFile(im *raw.Image, fileName string, black, white, gamma float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return WriteTIFF16(im, writer, black, white, gamma)
}

// WriteTIFF16 writes im as a 16-bit TIFF, deflate-compressed with a
// horizontal predictor.
func WriteTIFF16(im *raw.Image, writer io.Writer, black, white, gamma float32) error {
	img := image.NewRGBA64(image.Rect(0, 0, im.Width, im.Height))
	scale := 1.0 / (white - black)
	gammaInv := float64(1.0 / gamma)

	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			p := im.Pixel(y, x)
			r := stretch(p[raw.ColorRed], black, scale, gammaInv)
			g := stretch(p[raw.ColorGreen], black, scale, gammaInv)
			b := stretch(p[raw.ColorBlue], black, scale, gammaInv)
			img.SetRGBA64(x, y, color.RGBA64{
				R: uint16(r * 65535),
				G: uint16(g * 65535),
				B: uint16(b * 65535),
				A: 65535,
			})
		}
	}

	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// stretch maps a linear sample through the black/white/gamma display curve,
// clamping NaN and out-of-range values so TIFF/JPEG encoding never breaks.
func stretch(v, black, scale float32, gammaInv float64) float32 {
	v = (v - black) * scale
	if math.IsNaN(float64(v)) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if gammaInv != 1.0 {
		v = float32(math.Pow(float64(v), gammaInv))
	}
	return v
}
