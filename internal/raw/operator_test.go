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
	"bytes"
	"encoding/json"
	"testing"
)

func TestOpDemosaicApplyProducesImageAndClearsRaw(t *testing.T) {
	cfa := testBayerRGGB()
	in := newConstantRaw(16, 16, 0.5)
	f := &Frame{ID: 7, Raw: in, CFA: cfa, ROI: ROI{Width: 16, Height: 16, Scale: 1.0}}

	op := NewOpDemosaic(Params{Method: MethodPPG, Quality: QualityDefault, Pipeline: PipelineFull})
	var log bytes.Buffer
	out, err := op.Apply(f, &log)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Image == nil {
		t.Fatal("Apply left Image nil")
	}
	if out.Raw != nil {
		t.Fatal("Apply did not clear the consumed Raw")
	}
	if log.Len() == 0 {
		t.Fatal("Apply logged nothing")
	}
}

func TestOpDemosaicApplyInactiveIsNoop(t *testing.T) {
	cfa := testBayerRGGB()
	in := newConstantRaw(8, 8, 0.5)
	f := &Frame{Raw: in, CFA: cfa}
	op := &OpDemosaic{Active: false}
	out, err := op.Apply(f, bytes.NewBuffer(nil))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Raw != in || out.Image != nil {
		t.Fatal("inactive stage must leave the frame untouched")
	}
}

func TestOpDemosaicUnmarshalRebuildsDispatcher(t *testing.T) {
	var op OpDemosaic
	if err := json.Unmarshal([]byte(`{}`), &op); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !op.Active {
		t.Fatal("default Active should be true")
	}
	if op.Params.Method != MethodPPG {
		t.Fatalf("default Method = %#x, want PPG", uint32(op.Params.Method))
	}
	if op.dispatcher == nil {
		t.Fatal("UnmarshalJSON must rebuild the dispatcher")
	}
}
