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
	"encoding/json"
	"testing"

	"github.com/aferrero2707/rawdemosaic/internal/raw"
)

func TestRawSpecBayerRoundTrip(t *testing.T) {
	spec := RawSpec{
		Width: 4, Height: 2,
		Data: []float32{0, 1, 2, 3, 4, 5, 6, 7},
		CFA:  CFASpec{Kind: "bayer", BayerPattern: "RGGB"},
		ISO:  400,
	}
	r, cfa, err := spec.ToRaw()
	if err != nil {
		t.Fatalf("ToRaw: %v", err)
	}
	if r.Width != 4 || r.Height != 2 {
		t.Fatalf("dimensions = %dx%d, want 4x2", r.Width, r.Height)
	}
	if r.At(1, 2) != 6 {
		t.Fatalf("Data not preserved: At(1,2) = %v, want 6", r.At(1, 2))
	}
	if cfa.Kind != raw.KindBayer {
		t.Fatalf("CFA kind = %v, want Bayer", cfa.Kind)
	}
	if cfa.ColorAt(0, 0) != raw.ColorRed {
		t.Fatalf("RGGB (0,0) = %d, want red", cfa.ColorAt(0, 0))
	}
}

func TestRawSpecXTransRoundTrip(t *testing.T) {
	table := [6][6]uint8{
		{1, 1, 0, 1, 1, 2},
		{1, 1, 2, 1, 1, 0},
		{0, 2, 1, 2, 0, 1},
		{1, 1, 2, 1, 1, 0},
		{1, 1, 0, 1, 1, 2},
		{2, 0, 1, 0, 2, 1},
	}
	spec := RawSpec{
		Width: 6, Height: 6,
		Data: make([]float32, 36),
		CFA:  CFASpec{Kind: "xtrans", XTrans: table},
	}
	_, cfa, err := spec.ToRaw()
	if err != nil {
		t.Fatalf("ToRaw: %v", err)
	}
	if cfa.Kind != raw.KindXTrans {
		t.Fatalf("CFA kind = %v, want X-Trans", cfa.Kind)
	}
	if cfa.ColorAt(2, 3) != table[2][3] {
		t.Fatalf("X-Trans (2,3) = %d, want %d", cfa.ColorAt(2, 3), table[2][3])
	}
}

func TestRawSpecDataLengthMismatchErrors(t *testing.T) {
	spec := RawSpec{Width: 4, Height: 4, Data: []float32{1, 2, 3}}
	if _, _, err := spec.ToRaw(); err == nil {
		t.Fatal("expected a data length mismatch error")
	}
}

func TestRawSpecJSONShape(t *testing.T) {
	spec := RawSpec{
		Width: 2, Height: 1,
		Data: []float32{0.1, 0.2},
		CFA:  CFASpec{Kind: "bayer", BayerPattern: "GRBG"},
		ISO:  100,
	}
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded RawSpec
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Width != 2 || decoded.CFA.BayerPattern != "GRBG" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}
