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
	"runtime"
	"sync"

	"github.com/aferrero2707/rawdemosaic/internal/rawpool"
)

// markTileSize is the square tile edge Markesteijn processes at a time; a
// 16-pixel overlap between tiles hides the homogeneity vote's 8-pixel
// support radius at tile seams.
const markTileSize = 256

// markOrth and markPatt drive the hexagon-neighbor table construction: orth
// is four compass unit-vector pairs, patt the two (solitary-green /
// solitary-nongreen) eight-point hex patterns relative to that vector.
var markOrth = [12]int{1, 0, 0, 1, -1, 0, 0, -1, 1, 0, 0, 1}
var markPatt = [2][16]int{
	{0, 1, 0, -1, 2, 0, -1, 0, 1, 1, 1, -1, 0, 0, 0, 0},
	{0, 1, 0, -2, 1, 0, -2, 0, 1, 1, -2, -2, 1, -1, -1, 1},
}

// markDir gives the four offsets (east, south, southeast, southwest) the
// directional derivative pass differentiates along, in tile row-stride units.
var markDir = [4]int{1, markTileSize, markTileSize + 1, markTileSize - 1}

// markTranslate mirrors a padded coordinate back into the unpadded raw
// range, used to fill Markesteijn's 6-pixel working-image border.
func markTranslate(n, size int) int {
	switch {
	case n < 6:
		return 6 - n
	case n >= size-6:
		return 2*size - n - 20
	default:
		return n - 6
	}
}

// markesteijnTile holds the scratch buffers for one TS x TS processing
// tile: ndir RGB candidate planes, one YPbPr plane, ndir derivative planes
// and ndir homogeneity-count planes.
type markesteijnTile struct {
	ndir int
	rgb  []float32 // [ndir][TS][TS][3]
	yuv  []float32 // [TS][TS][3]
	drv  []float32 // [ndir][TS][TS]
	homo []uint8   // [ndir][TS][TS]
}

// newMarkesteijnTile draws its scratch planes from the shared rawpool
// registry. DemosaicXTransMarkesteijn takes one tile per worker and keeps it
// for that worker's whole share of the tile grid; pooling lets later calls
// reuse the markTileSize^2-sized slices instead of allocating them again
// (rawpool still zeroes them on every Get).
func newMarkesteijnTile(ndir int) *markesteijnTile {
	return &markesteijnTile{
		ndir: ndir,
		rgb:  rawpool.GetFloat32(ndir * markTileSize * markTileSize * 3),
		yuv:  rawpool.GetFloat32(markTileSize * markTileSize * 3),
		drv:  rawpool.GetFloat32(ndir * markTileSize * markTileSize),
		homo: rawpool.GetByte(ndir * markTileSize * markTileSize),
	}
}

// release returns the tile's scratch planes to the shared pool.
func (t *markesteijnTile) release() {
	rawpool.PutFloat32(t.rgb)
	rawpool.PutFloat32(t.yuv)
	rawpool.PutFloat32(t.drv)
	rawpool.PutByte(t.homo)
}

func (t *markesteijnTile) rgbAt(plane, pos, c int) float32 {
	return t.rgb[(plane*markTileSize*markTileSize+pos)*3+c]
}
func (t *markesteijnTile) rgbSet(plane, pos, c int, v float32) {
	t.rgb[(plane*markTileSize*markTileSize+pos)*3+c] = v
}
func (t *markesteijnTile) yuvAt(pos, c int) float32 { return t.yuv[pos*3+c] }
func (t *markesteijnTile) yuvSet(pos, c int, v float32) {
	t.yuv[pos*3+c] = v
}
func (t *markesteijnTile) drvAt(plane, pos int) float32 { return t.drv[plane*markTileSize*markTileSize+pos] }
func (t *markesteijnTile) drvSet(plane, pos int, v float32) {
	t.drv[plane*markTileSize*markTileSize+pos] = v
}
func (t *markesteijnTile) homoAt(plane, pos int) uint8 { return t.homo[plane*markTileSize*markTileSize+pos] }
func (t *markesteijnTile) homoAdd(plane, pos int) {
	t.homo[plane*markTileSize*markTileSize+pos]++
}

// DemosaicXTransMarkesteijn runs the tiled Markesteijn X-Trans demosaic.
// passes=1 uses 4-direction homogeneity voting; any larger value uses 8
// directions and runs that many passes, each pass after the first
// recalculating green before the red/blue interpolation.
func DemosaicXTransMarkesteijn(cfa CFA, in *Raw, passes int) *Image {
	if passes < 1 {
		passes = 1
	}
	origWidth, origHeight := in.Width, in.Height
	padWidth := origWidth + 12
	padHeight := origHeight + 12
	ndir := 4
	if passes > 1 {
		ndir = 8
	}
	fcol := func(row, col int) int { return int(cfa.ColorAt(row, col)) }

	// Build the padded 4-channel working image, its interior a single-color
	// fill of the raw mosaic and its 6-pixel border a mirrored, averaged fill.
	image := make([]float32, padWidth*padHeight*4)
	imgIdx := func(row, col, c int) int { return (row*padWidth+col)*4 + c }

	for row := 0; row < padHeight; row++ {
		for col := 0; col < padWidth; col++ {
			if col >= 6 && row >= 6 && col < padWidth-6 && row < padHeight-6 {
				f := fcol(row-6, col-6)
				for c := 0; c < 3; c++ {
					if c == f {
						image[imgIdx(row, col, c)] = in.At(row-6, col-6)
					}
				}
				continue
			}
			var sum [3]float32
			var count [3]int
			for y := row - 1; y <= row+1; y++ {
				for x := col - 1; x <= col+1; x++ {
					xx, yy := markTranslate(x, padWidth), markTranslate(y, padHeight)
					f := fcol(yy, xx)
					sum[f] += in.At(yy, xx)
					count[f]++
				}
			}
			cx, cy := markTranslate(col, padWidth), markTranslate(row, padHeight)
			f := fcol(cy, cx)
			for c := 0; c < 3; c++ {
				if c != f && count[c] != 0 {
					image[imgIdx(row, col, c)] = sum[c] / float32(count[c])
				} else {
					image[imgIdx(row, col, c)] = in.At(cy, cx)
				}
			}
		}
	}

	// Map a green hexagon around each non-green pixel and vice versa, over
	// the 3x3-periodic tile that repeats across the whole image.
	var allhex [3][3][2][8]int
	sgrow, sgcol := 0, 0
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			ng := 0
			for d := 0; d < 10; d += 2 {
				g := 0
				if fcol(row, col) == 1 {
					g = 1
				}
				if fcol(row+markOrth[d], col+markOrth[d+2]) == 1 {
					ng = 0
				} else {
					ng++
				}
				if ng == 4 {
					sgrow, sgcol = row, col
				}
				if ng == g+1 {
					for c := 0; c < 8; c++ {
						v := markOrth[d]*markPatt[g][c*2] + markOrth[d+1]*markPatt[g][c*2+1]
						h := markOrth[d+2]*markPatt[g][c*2] + markOrth[d+3]*markPatt[g][c*2+1]
						idx := c ^ ((g * 2) & d)
						allhex[row][col][0][idx] = h + v*padWidth
						allhex[row][col][1][idx] = h + v*markTileSize
					}
				}
			}
		}
	}

	// Set the green min/max bracket (stashed in channels 1 and 3) that later
	// green reconstructions are clamped to.
	for row := 2; row < padHeight-2; row++ {
		min, max := float32(math.MaxFloat32), float32(0)
		for col := 2; col < padWidth-2; col++ {
			if fcol(row, col) == 1 {
				min, max = math.MaxFloat32, 0
				continue
			}
			hex := allhex[row%3][col%3][0]
			if max == 0 {
				min, max = math.MaxFloat32, 0
				for c := 0; c < 6; c++ {
					val := image[imgIdx(row, col, 1)+hex[c]*4]
					if val < min {
						min = val
					}
					if val > max {
						max = val
					}
				}
			}
			image[imgIdx(row, col, 1)] = min
			image[imgIdx(row, col, 3)] = max
			switch (row - sgrow) % 3 {
			case 1:
				if row < padHeight-3 {
					row++
					col--
				}
			case 2:
				min, max = math.MaxFloat32, 0
				col += 2
				if col < padWidth-3 && row > 2 {
					row--
				}
			}
		}
	}

	var tileTops []int
	for top := 3; top < padHeight-19; top += markTileSize - 16 {
		tileTops = append(tileTops, top)
	}

	nWorkers := runtime.GOMAXPROCS(0)
	if nWorkers > len(tileTops) {
		nWorkers = len(tileTops)
	}
	if nWorkers < 1 {
		nWorkers = 1
	}
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			tile := newMarkesteijnTile(ndir)
			defer tile.release()
			for ti := w; ti < len(tileTops); ti += nWorkers {
				top := tileTops[ti]
				for left := 3; left < padWidth-19; left += markTileSize - 16 {
					markesteijnProcessTile(cfa, image, padWidth, padHeight, allhex, sgrow, sgcol, passes, ndir, top, left, tile)
				}
			}
		}(w)
	}
	wg.Wait()

	out := NewImage(origWidth, origHeight)
	for row := 0; row < origHeight; row++ {
		for col := 0; col < origWidth; col++ {
			for c := 0; c < 3; c++ {
				out.Set(row, col, c, image[imgIdx(row+6, col+6, c)])
			}
		}
	}
	return out
}

func markesteijnProcessTile(cfa CFA, image []float32, padWidth, padHeight int, allhex [3][3][2][8]int,
	sgrow, sgcol, passes, ndir, top, left int, t *markesteijnTile) {

	fcol := func(row, col int) int { return int(cfa.ColorAt(row, col)) }
	imgIdx := func(row, col, c int) int { return (row*padWidth+col)*4 + c }

	mrow := top + markTileSize
	if padHeight-3 < mrow {
		mrow = padHeight - 3
	}
	mcol := left + markTileSize
	if padWidth-3 < mcol {
		mcol = padWidth - 3
	}

	for row := top; row < mrow; row++ {
		for col := left; col < mcol; col++ {
			pos := (row-top)*markTileSize + (col - left)
			for c := 0; c < 3; c++ {
				t.rgbSet(0, pos, c, image[imgIdx(row, col, c)])
			}
		}
	}
	for p := 1; p < 4; p++ {
		copy(t.rgb[p*markTileSize*markTileSize*3:(p+1)*markTileSize*markTileSize*3], t.rgb[0:markTileSize*markTileSize*3])
	}

	// Interpolate green horizontally, vertically, and along both diagonals.
	for row := top; row < mrow; row++ {
		for col := left; col < mcol; col++ {
			f := fcol(row, col)
			if f == 1 {
				continue
			}
			pos := (row-top)*markTileSize + (col - left)
			hex := allhex[row%3][col%3][0]
			g1 := image[imgIdx(row, col, 1)+hex[1]*4]
			g0 := image[imgIdx(row, col, 1)+hex[0]*4]
			g1b := image[imgIdx(row, col, 1)+2*hex[1]*4]
			g0b := image[imgIdx(row, col, 1)+2*hex[0]*4]
			var color [4]float32
			color[0] = 0.68*(g1+g0) - 0.18*(g1b+g0b)
			color[1] = 0.87*image[imgIdx(row, col, 1)+hex[3]*4] + image[imgIdx(row, col, 1)+hex[2]*4]*0.13 +
				0.36*(image[imgIdx(row, col, f)] - image[imgIdx(row, col, f)+(-hex[2])*4])
			for c := 0; c < 2; c++ {
				color[2+c] = 0.64*image[imgIdx(row, col, 1)+hex[4+c]*4] + 0.36*image[imgIdx(row, col, 1)+(-2*hex[4+c])*4] +
					0.13*(2*image[imgIdx(row, col, f)] - image[imgIdx(row, col, f)+3*hex[4+c]*4] - image[imgIdx(row, col, f)+(-3*hex[4+c])*4])
			}
			par := 0
			if (row-sgrow)%3 == 0 {
				par = 1
			}
			minV, maxV := image[imgIdx(row, col, 1)], image[imgIdx(row, col, 3)]
			for c := 0; c < 4; c++ {
				t.rgbSet(c^par, pos, 1, clampf(color[c], minV, maxV))
			}
		}
	}

	for pass := 0; pass < passes; pass++ {
		planeOff := 0
		if pass == 1 {
			planeOff = 4
			copy(t.rgb[4*markTileSize*markTileSize*3:8*markTileSize*markTileSize*3], t.rgb[0:4*markTileSize*markTileSize*3])
		}

		if pass != 0 {
			// Recalculate green from interpolated values of closer pixels.
			for row := top + 2; row < mrow-2; row++ {
				for col := left + 2; col < mcol-2; col++ {
					f := fcol(row, col)
					if f == 1 {
						continue
					}
					pos := (row-top)*markTileSize + (col - left)
					hex := allhex[row%3][col%3][1]
					par := 0
					if (row-sgrow)%3 == 0 {
						par = 1
					}
					minV, maxV := image[imgIdx(row, col, 1)], image[imgIdx(row, col, 3)]
					for d := 3; d < 6; d++ {
						plane := planeOff + ((d - 2) ^ par)
						val := t.rgbAt(plane, pos-2*hex[d], 1) + 2*t.rgbAt(plane, pos+hex[d], 1) -
							t.rgbAt(plane, pos-2*hex[d], f) - 2*t.rgbAt(plane, pos+hex[d], f) + 3*t.rgbAt(plane, pos, f)
						t.rgbSet(plane, pos, 1, clampf(val/3, minV, maxV))
					}
				}
			}
		}

		// Interpolate red and blue for solitary green pixels.
		rowStart := (top-sgrow+4)/3*3 + sgrow
		colStart := (left-sgcol+4)/3*3 + sgcol
		for row := rowStart; row < mrow-2; row += 3 {
			for col := colStart; col < mcol-2; col += 3 {
				pos := (row-top)*markTileSize + (col - left)
				h := fcol(row, col+1)
				var diff [6]float32
				var color [3][8]float32
				plane := planeOff
				i := 1
				for d := 0; d < 6; d++ {
					for c := 0; c < 2; c++ {
						shift := uint(c)
						g := 2*t.rgbAt(plane, pos, 1) - t.rgbAt(plane, pos+(i<<shift), 1) - t.rgbAt(plane, pos-(i<<shift), 1)
						color[h][d] = g + t.rgbAt(plane, pos+(i<<shift), h) + t.rgbAt(plane, pos-(i<<shift), h)
						if d > 1 {
							diff[d] += sqr(t.rgbAt(plane, pos+(i<<shift), 1)-t.rgbAt(plane, pos-(i<<shift), 1)-
								t.rgbAt(plane, pos+(i<<shift), h)+t.rgbAt(plane, pos-(i<<shift), h)) + sqr(g)
						}
						h ^= 2
					}
					if d > 1 && d&1 != 0 {
						if diff[d-1] < diff[d] {
							for c := 0; c < 2; c++ {
								color[c*2][d] = color[c*2][d-1]
							}
						}
					}
					if d < 2 || d&1 != 0 {
						for c := 0; c < 2; c++ {
							t.rgbSet(plane, pos, c*2, clipf(color[c*2][d]/2))
						}
						plane++
					}
					i ^= markTileSize ^ 1
					h ^= 2
				}
			}
		}

		// Interpolate red for blue pixels and vice versa.
		for row := top + 1; row < mrow-1; row++ {
			for col := left + 1; col < mcol-1; col++ {
				f := 2 - fcol(row, col)
				if f == 1 {
					continue
				}
				pos := (row-top)*markTileSize + (col - left)
				i := 1
				if (row-sgrow)%3 != 0 {
					i = markTileSize
				}
				plane := planeOff
				for d := 0; d < 4; d++ {
					val := (t.rgbAt(plane, pos+i, f) + t.rgbAt(plane, pos-i, f) +
						2*t.rgbAt(plane, pos, 1) - t.rgbAt(plane, pos+i, 1) - t.rgbAt(plane, pos-i, 1)) / 2
					t.rgbSet(plane, pos, f, clipf(val))
					plane++
				}
			}
		}

		// Fill in red and blue for 2x2 blocks of green.
		for row := top + 2; row < mrow-2; row++ {
			if (row-sgrow)%3 == 0 {
				continue
			}
			for col := left + 2; col < mcol-2; col++ {
				if (col-sgcol)%3 == 0 {
					continue
				}
				pos := (row-top)*markTileSize + (col - left)
				hex := allhex[row%3][col%3][1]
				plane := planeOff
				for d := 0; d < ndir; d += 2 {
					if hex[d]+hex[d+1] != 0 {
						g := 3*t.rgbAt(plane, pos, 1) - 2*t.rgbAt(plane, pos+hex[d], 1) - t.rgbAt(plane, pos+hex[d+1], 1)
						for c := 0; c < 4; c += 2 {
							v := (g + 2*t.rgbAt(plane, pos+hex[d], c) + t.rgbAt(plane, pos+hex[d+1], c)) / 3
							t.rgbSet(plane, pos, c, clipf(v))
						}
					} else {
						g := 2*t.rgbAt(plane, pos, 1) - t.rgbAt(plane, pos+hex[d], 1) - t.rgbAt(plane, pos+hex[d+1], 1)
						for c := 0; c < 4; c += 2 {
							v := (g + t.rgbAt(plane, pos+hex[d], c) + t.rgbAt(plane, pos+hex[d+1], c)) / 2
							t.rgbSet(plane, pos, c, clipf(v))
						}
					}
					plane++
				}
			}
		}
	}

	localMrow := mrow - top
	localMcol := mcol - left

	// Convert to perceptual colorspace and differentiate in all directions.
	for d := 0; d < ndir; d++ {
		for row := 2; row < localMrow-2; row++ {
			for col := 2; col < localMcol-2; col++ {
				pos := row*markTileSize + col
				r, g, b := t.rgbAt(d, pos, 0), t.rgbAt(d, pos, 1), t.rgbAt(d, pos, 2)
				y := 0.2627*r + 0.6780*g + 0.0593*b
				t.yuvSet(pos, 0, y)
				t.yuvSet(pos, 1, (b-y)*0.56433)
				t.yuvSet(pos, 2, (r-y)*0.67815)
			}
		}
		f := markDir[d&3]
		for row := 3; row < localMrow-3; row++ {
			for col := 3; col < localMcol-3; col++ {
				pos := row*markTileSize + col
				g := 2*t.yuvAt(pos, 0) - t.yuvAt(pos+f, 0) - t.yuvAt(pos-f, 0)
				pb := 2*t.yuvAt(pos, 1) - t.yuvAt(pos+f, 1) - t.yuvAt(pos-f, 1)
				pr := 2*t.yuvAt(pos, 2) - t.yuvAt(pos+f, 2) - t.yuvAt(pos-f, 2)
				t.drvSet(d, pos, sqr(g)+sqr(pb)+sqr(pr))
			}
		}
	}

	// Build homogeneity maps from the derivatives.
	for i := range t.homo {
		t.homo[i] = 0
	}
	for row := 4; row < localMrow-4; row++ {
		for col := 4; col < localMcol-4; col++ {
			pos := row*markTileSize + col
			tr := float32(math.MaxFloat32)
			for d := 0; d < ndir; d++ {
				if tr > t.drvAt(d, pos) {
					tr = t.drvAt(d, pos)
				}
			}
			tr *= 8
			for d := 0; d < ndir; d++ {
				for v := -1; v <= 1; v++ {
					for h := -1; h <= 1; h++ {
						if t.drvAt(d, pos+v*markTileSize+h) <= tr {
							t.homoAdd(d, pos)
						}
					}
				}
			}
		}
	}

	// Average the most homogeneous pixels for the final result.
	if padHeight-top < markTileSize+4 {
		localMrow = padHeight - top + 2
	}
	if padWidth-left < markTileSize+4 {
		localMcol = padWidth - left + 2
	}
	rowLo := top
	if rowLo > 8 {
		rowLo = 8
	}
	colLo := left
	if colLo > 8 {
		colLo = 8
	}
	for row := rowLo; row < localMrow-8; row++ {
		for col := colLo; col < localMcol-8; col++ {
			pos := row*markTileSize + col
			var hm [8]int
			for d := 0; d < ndir; d++ {
				for v := -2; v <= 2; v++ {
					for h := -2; h <= 2; h++ {
						hm[d] += int(t.homoAt(d, pos+v*markTileSize+h))
					}
				}
			}
			for d := 0; d < ndir-4; d++ {
				switch {
				case hm[d] < hm[d+4]:
					hm[d] = 0
				case hm[d] > hm[d+4]:
					hm[d+4] = 0
				}
			}
			max := hm[0]
			for d := 1; d < ndir; d++ {
				if max < hm[d] {
					max = hm[d]
				}
			}
			max -= max >> 3
			var avg [4]float32
			for d := 0; d < ndir; d++ {
				if hm[d] >= max {
					for c := 0; c < 3; c++ {
						avg[c] += t.rgbAt(d, pos, c)
					}
					avg[3]++
				}
			}
			for c := 0; c < 3; c++ {
				image[imgIdx(row+top, col+left, c)] = avg[c] / avg[3]
			}
		}
	}
}

func sqr(v float32) float32 { return v * v }
