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
	"fmt"
	"io/ioutil"

	"github.com/aferrero2707/rawdemosaic/internal/raw"
)

// CFASpec is the wire shape of a raw.CFA: either a named Bayer pattern or
// an explicit 6x6 X-Trans table. Decoding vendor raw sensor file formats is
// not attempted here; this is the module's own interchange format for
// test fixtures and the job surfaces.
type CFASpec struct {
	Kind         string      `json:"kind"`
	BayerPattern string      `json:"bayerPattern,omitempty"`
	XTrans       [6][6]uint8 `json:"xtrans,omitempty"`
}

// ToCFA builds the raw.CFA this descriptor names.
func (s CFASpec) ToCFA() raw.CFA {
	if s.Kind == "xtrans" {
		return raw.NewXTransCFA(s.XTrans)
	}
	return raw.NewBayerCFA(s.BayerPattern)
}

// RawSpec is the module's JSON interchange format for a mosaicked buffer:
// used by the CLI's "run" command and the REST job endpoint alike.
type RawSpec struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Data   []float32 `json:"data"`
	CFA    CFASpec   `json:"cfa"`
	ISO    float64   `json:"iso"`
}

// ToRaw validates dimensions and builds the *raw.Raw buffer this record
// describes, alongside its CFA and ISO.
func (s RawSpec) ToRaw() (*raw.Raw, raw.CFA, error) {
	if s.Width <= 0 || s.Height <= 0 || len(s.Data) != s.Width*s.Height {
		return nil, raw.CFA{}, fmt.Errorf("rawio: data length %d does not match %dx%d", len(s.Data), s.Width, s.Height)
	}
	return &raw.Raw{Width: s.Width, Height: s.Height, Data: s.Data}, s.CFA.ToCFA(), nil
}

// ReadRawSpecFile reads and parses a RawSpec JSON file from disk.
func ReadRawSpecFile(fileName string) (RawSpec, error) {
	var spec RawSpec
	content, err := ioutil.ReadFile(fileName)
	if err != nil {
		return spec, err
	}
	if err := json.Unmarshal(content, &spec); err != nil {
		return spec, err
	}
	return spec, nil
}
