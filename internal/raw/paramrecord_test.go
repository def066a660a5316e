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
	"encoding/json"
	"testing"
)

// A version-2 record, carrying only the two original fields, upgrades in
// place with the newer fields at their zero defaults.
func TestParamRecordUnmarshalUpgradesOldVersion(t *testing.T) {
	data := []byte(`{"green_eq": 2, "median_thrs": 0.05}`)
	var p ParamRecord
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.GreenEq != 2 {
		t.Fatalf("GreenEq = %d, want 2", p.GreenEq)
	}
	if p.MedianThreshold != 0.05 {
		t.Fatalf("MedianThreshold = %v, want 0.05", p.MedianThreshold)
	}
	if p.ColorSmoothing != 0 || p.DemosaicingMethod != 0 || p.Reserved != 0 {
		t.Fatalf("added fields not zero-defaulted: %+v", p)
	}
}

func TestParamRecordUnmarshalEmptyUsesDefaults(t *testing.T) {
	var p ParamRecord
	if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.GreenEq != uint32(GreenEqNo) {
		t.Fatalf("GreenEq = %d, want GreenEqNo", p.GreenEq)
	}
	if p.DemosaicingMethod != uint32(MethodPPG) {
		t.Fatalf("DemosaicingMethod = %d, want MethodPPG", p.DemosaicingMethod)
	}
}
