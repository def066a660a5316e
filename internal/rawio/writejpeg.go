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

package rawio

import (
	"bufio"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"

	"github.com/aferrero2707/rawdemosaic/internal/raw"
)

// WriteJPEGToFile demosaic-exports im to a JPEG file at the given black/
// white/gamma display stretch and quality.
func WriteJPEGToFile(im *raw.Image, fileName string, black, white, gamma float32, quality int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return WriteJPEG(im, writer, black, white, gamma, quality)
}

// WriteJPEG writes im as an 8-bit JPEG.
func WriteJPEG(im *raw.Image, writer io.Writer, black, white, gamma float32, quality int) error {
	img := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	scale := 1.0 / (white - black)
	gammaInv := float64(1.0 / gamma)

	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			p := im.Pixel(y, x)
			r := stretch(p[raw.ColorRed], black, scale, gammaInv)
			g := stretch(p[raw.ColorGreen], black, scale, gammaInv)
			b := stretch(p[raw.ColorBlue], black, scale, gammaInv)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(r * 255),
				G: uint8(g * 255),
				B: uint8(b * 255),
				A: 255,
			})
		}
	}

	return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
}
