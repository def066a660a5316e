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

import "encoding/json"

// ParamRecord is the persisted, versioned set of demosaic parameters
// attached to a processing history entry. Version 2 only ever
// wrote GreenEq and MedianThreshold; ColorSmoothing, DemosaicingMethod and
// Reserved were added afterward.
type ParamRecord struct {
	GreenEq           uint32  `json:"green_eq"`
	MedianThreshold   float32 `json:"median_thrs"`
	ColorSmoothing    uint32  `json:"color_smoothing"`
	DemosaicingMethod uint32  `json:"demosaicing_method"`
	Reserved          uint32  `json:"reserved"`
}

// UnmarshalJSON fills fields absent from an older record with their zero
// defaults, so a version 2 record upgrades in place instead of failing to
// decode.
func (p *ParamRecord) UnmarshalJSON(data []byte) error {
	type defaults ParamRecord
	def := defaults{
		GreenEq:           uint32(GreenEqNo),
		MedianThreshold:   0,
		ColorSmoothing:    0,
		DemosaicingMethod: uint32(MethodPPG),
		Reserved:          0,
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*p = ParamRecord(def)
	return nil
}
