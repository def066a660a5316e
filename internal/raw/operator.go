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
	"fmt"
	"io"
)

// Frame is the unit of work flowing through a processing pipeline: a
// mosaicked raw buffer before demosaicing, an RGB working image after.
type Frame struct {
	ID    int
	Raw   *Raw
	Image *Image
	CFA   CFA
	ROI   ROI
	ISO   float64
}

// OperatorUnary transforms a single frame in place, returning the (possibly
// replaced) frame.
type OperatorUnary interface {
	Apply(f *Frame, logWriter io.Writer) (fOut *Frame, err error)
}

// OpDemosaic is the pipeline stage that runs the dispatcher over a frame's
// raw mosaic and replaces it with the resulting RGB image.
type OpDemosaic struct {
	Active     bool   `json:"active"`
	Params     Params `json:"params"`
	dispatcher *Dispatcher
}

var _ OperatorUnary = (*OpDemosaic)(nil)

// NewOpDemosaic builds an active demosaic stage using the package's default
// Resampler and AmazeDemosaicer.
func NewOpDemosaic(params Params) *OpDemosaic {
	return &OpDemosaic{
		Active:     true,
		Params:     params,
		dispatcher: NewDispatcher(),
	}
}

// UnmarshalJSON fills missing fields with the always-on, PPG-method
// defaults, and rebuilds the dispatcher the JSON form can't carry.
func (op *OpDemosaic) UnmarshalJSON(data []byte) error {
	type defaults OpDemosaic
	def := defaults{
		Active: true,
		Params: Params{
			Method:          MethodPPG,
			GreenEq:         GreenEqNo,
			MedianThreshold: 0,
			SmoothingPasses: 0,
			Quality:         QualityDefault,
			Pipeline:        PipelineFull,
		},
	}
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpDemosaic(def)
	op.dispatcher = NewDispatcher()
	return nil
}

// Apply demosaics f.Raw into f.Image if the stage is active and the frame
// still carries an undemosaiced mosaic.
func (op *OpDemosaic) Apply(f *Frame, logWriter io.Writer) (fOut *Frame, err error) {
	if !op.Active || f.Raw == nil {
		return f, nil
	}
	if op.dispatcher == nil {
		op.dispatcher = NewDispatcher()
	}

	roi := f.ROI
	if roi.Width == 0 && roi.Height == 0 {
		roi = ROI{X: 0, Y: 0, Width: f.Raw.Width, Height: f.Raw.Height, Scale: 1.0}
	}
	meta := Meta{CFA: f.CFA, ISO: f.ISO}

	out, err := op.dispatcher.Process(f.Raw, roi, op.Params, meta)
	if err != nil {
		return nil, err
	}
	if out == nil {
		fmt.Fprintf(logWriter, "%d: demosaic aborted or produced no output\n", f.ID)
		return f, nil
	}

	fmt.Fprintf(logWriter, "%d: Demosaiced %s CFA to %dx%d RGB using method %#x\n",
		f.ID, f.CFA.Kind, out.Width, out.Height, uint32(op.Params.Method))

	f.Image = out
	f.Raw = nil
	return f, nil
}
