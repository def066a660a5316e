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

// testXTransTable is a balanced 6x6 X-Trans color code table (8 red, 8
// blue, 20 green per tile), used throughout the package's tests in place
// of a specific sensor's published layout.
var testXTransTable = [6][6]uint8{
	{1, 1, 0, 1, 1, 2},
	{1, 1, 2, 1, 1, 0},
	{0, 2, 1, 2, 0, 1},
	{1, 1, 2, 1, 1, 0},
	{1, 1, 0, 1, 1, 2},
	{2, 0, 1, 0, 2, 1},
}

func testXTransCFA() CFA {
	return NewXTransCFA(testXTransTable)
}

func testBayerRGGB() CFA {
	return NewBayerCFA("RGGB")
}

func newConstantRaw(width, height int, v float32) *Raw {
	r := NewRaw(width, height)
	for i := range r.Data {
		r.Data[i] = v
	}
	return r
}
