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

import "github.com/aferrero2707/rawdemosaic/internal/rawpool"

// Raw is a dense single-channel mosaicked buffer: one CFA sample per pixel,
// row-major, width x height.
type Raw struct {
	Width, Height int
	Data          []float32
}

func NewRaw(width, height int) *Raw {
	return &Raw{Width: width, Height: height, Data: make([]float32, width*height)}
}

func (r *Raw) At(row, col int) float32 {
	return r.Data[row*r.Width+col]
}

func (r *Raw) Set(row, col int, v float32) {
	r.Data[row*r.Width+col] = v
}

// inBounds reports whether (row, col) lies inside the raw buffer.
func (r *Raw) inBounds(row, col int) bool {
	return row >= 0 && row < r.Height && col >= 0 && col < r.Width
}

// Image is the dense working image: width x height of 4-float (R,G,B,pad)
// tuples, row-major. The padding channel is zero but may be used as
// scratch by color smoothing.
type Image struct {
	Width, Height int
	Pix           []float32 // len == Width*Height*4
}

func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

// NewImageFromPool allocates Pix from the shared float32 pool; callers must
// Release it back when done.
func NewImageFromPool(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: rawpool.GetFloat32(width * height * 4)}
}

// Release returns the image's backing array to the shared pool. The image
// must not be used afterward.
func (im *Image) Release() {
	rawpool.PutFloat32(im.Pix)
	im.Pix = nil
}

func (im *Image) idx(row, col int) int {
	return (row*im.Width + col) * 4
}

func (im *Image) At(row, col, channel int) float32 {
	return im.Pix[im.idx(row, col)+channel]
}

func (im *Image) Set(row, col, channel int, v float32) {
	im.Pix[im.idx(row, col)+channel] = v
}

func (im *Image) Pixel(row, col int) []float32 {
	o := im.idx(row, col)
	return im.Pix[o : o+4]
}

func (im *Image) inBounds(row, col int) bool {
	return row >= 0 && row < im.Height && col >= 0 && col < im.Width
}

func clipf(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
