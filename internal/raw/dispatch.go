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
	"errors"

	"github.com/aferrero2707/rawdemosaic/internal/rawlog"
)

// ROI is the region of interest a call operates over: an offset and size
// into the raw buffer plus the output/input pixel ratio.
type ROI struct {
	X, Y, Width, Height int
	Scale               float64
}

// Method is the demosaicing algorithm selector. Bayer methods and X-Trans
// methods are disjoint ranges; bit 10 (0x400) marks an X-Trans method.
type Method uint32

const (
	MethodPPG          Method = 0
	MethodAmaze        Method = 1
	xtransBit          Method = 0x400
	MethodLinear       Method = xtransBit | 0
	MethodVNG          Method = xtransBit | 1
	MethodMarkesteijn1 Method = xtransBit | 2
	MethodMarkesteijn3 Method = xtransBit | 3
)

// IsXTrans reports whether m is one of the X-Trans methods.
func (m Method) IsXTrans() bool { return m&xtransBit != 0 }

// Quality is the requested quality tier.
type Quality int

const (
	QualityFast Quality = iota
	QualityFull
	QualityDefault
)

// Pipeline is the calling context, which affects the quality downgrade rule.
type Pipeline int

const (
	PipelinePreview Pipeline = iota
	PipelineFull
	PipelineExport
)

// Params collects the dispatcher's per-call knobs.
type Params struct {
	Method          Method
	GreenEq         GreenEqMode
	MedianThreshold float32
	SmoothingPasses int
	Quality         Quality
	Pipeline        Pipeline
}

// Meta is the image metadata accompanying a dispatch call.
type Meta struct {
	CFA CFA
	ISO float64
}

var errAllocation = errors.New("rawdemosaic: could not allocate scratch buffers")

// Dispatcher selects and runs the appropriate demosaic path for a
// (CFA kind, method, ROI, quality, pipeline) combination.
type Dispatcher struct {
	Resampler       Resampler
	Amaze           AmazeDemosaicer
	ShouldAbort     func() bool
}

// NewDispatcher returns a Dispatcher wired to the package's default
// Resampler and AmazeDemosaicer.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Resampler: NewDefaultResampler(),
		Amaze:     NewDefaultAmazeDemosaicer(),
	}
}

// Process is the package-level library entry point: it runs a
// default-wired Dispatcher over in, and copies its result into out at
// roiOut's origin. roiIn's offset/scale select the dispatcher's working
// region; roiOut's width/height size the copy destination. Most callers
// that don't need to inject a custom Resampler or AmazeDemosaicer should
// use this instead of constructing a Dispatcher directly.
func Process(in *Raw, roiIn ROI, out *Image, roiOut ROI, params Params, meta Meta) error {
	result, err := NewDispatcher().Process(in, roiIn, params, meta)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	copyImageInto(out, result, roiOut)
	return nil
}

// copyImageInto blits src into dst starting at roiOut's origin, clipping
// to whichever of the two buffers is smaller.
func copyImageInto(dst *Image, src *Image, roiOut ROI) {
	w := src.Width
	if roiOut.Width > 0 && roiOut.Width < w {
		w = roiOut.Width
	}
	h := src.Height
	if roiOut.Height > 0 && roiOut.Height < h {
		h = roiOut.Height
	}
	for j := 0; j < h; j++ {
		dj := roiOut.Y + j
		if dj < 0 || dj >= dst.Height {
			continue
		}
		for i := 0; i < w; i++ {
			di := roiOut.X + i
			if di < 0 || di >= dst.Width {
				continue
			}
			copy(dst.Pixel(dj, di), src.Pixel(j, i))
		}
	}
}

// Process runs the dispatcher's selected pipeline and returns a new Image:
// at scale 1 it covers the whole input buffer, on the resample path it is
// sized to roi, and on the fast sub-sampling path its size is the
// Resampler's choice. It returns (nil, nil) when ShouldAbort reports an
// abort. When a demosaic kernel yields no image, a warning is logged and
// (nil, errAllocation) is returned.
func (d *Dispatcher) Process(in *Raw, roi ROI, params Params, meta Meta) (*Image, error) {
	if d.aborted() {
		return nil, nil
	}
	roi = snapROIPhase(roi, meta.CFA)

	method := params.Method
	if params.Pipeline == PipelineFull && params.Quality == QualityFast && roi.Scale <= 0.99999 {
		method = downgradeMethod(method, meta.CFA)
	}

	switch {
	case roi.Scale >= 0.99999 && roi.Scale <= 1.00001:
		return d.process1to1(in, roi, method, params, meta)

	case d.needsFullResResample(roi, method, params, meta):
		full, err := d.process1to1(in, ROI{X: 0, Y: 0, Width: in.Width, Height: in.Height, Scale: 1.0}, method, params, meta)
		if err != nil || full == nil {
			return full, err
		}
		out := NewImage(roi.Width, roi.Height)
		d.Resampler.ClipAndZoomRGBA(out, full, roi)
		return out, nil

	default:
		return d.fastSubSample(in, roi, meta, params)
	}
}

func (d *Dispatcher) aborted() bool {
	return d.ShouldAbort != nil && d.ShouldAbort()
}

// needsFullResResample reports the cases that must demosaic at full
// resolution and resample rather than fast-subsampling: a requested scale
// above the fast-path ceiling (half for Bayer, third for X-Trans), a
// full-pipeline call at better-than-fast quality, or an export pipeline.
func (d *Dispatcher) needsFullResResample(roi ROI, method Method, params Params, meta Meta) bool {
	ceiling := 0.5
	if meta.CFA.Kind == KindXTrans {
		ceiling = 1.0 / 3.0
	}
	if roi.Scale > ceiling {
		return true
	}
	if params.Pipeline == PipelineFull && params.Quality != QualityFast {
		return true
	}
	if params.Pipeline == PipelineExport {
		return true
	}
	return false
}

func (d *Dispatcher) process1to1(in *Raw, roi ROI, method Method, params Params, meta Meta) (*Image, error) {
	src := ApplyGreenEq(params.GreenEq, meta.CFA, in, roi.X, roi.Y, float32(0.0001*meta.ISO))

	var out *Image
	switch {
	case !method.IsXTrans() && method == MethodAmaze:
		out = d.Amaze.DemosaicAmaze(meta.CFA, src, params.MedianThreshold)
	case !method.IsXTrans():
		out = DemosaicPPG(meta.CFA, src, params.MedianThreshold)
	case method == MethodLinear:
		out = DemosaicXTransLinear(meta.CFA, src)
	case method == MethodVNG:
		out = DemosaicXTransVNG(meta.CFA, src)
	case method == MethodMarkesteijn1:
		out = DemosaicXTransMarkesteijn(meta.CFA, src, 1)
	case method == MethodMarkesteijn3:
		out = DemosaicXTransMarkesteijn(meta.CFA, src, 3)
	default:
		rawlog.Printf("rawdemosaic: unknown method %#x, falling back to linear\n", uint32(method))
		out = DemosaicXTransLinear(meta.CFA, src)
	}
	if out == nil {
		rawlog.Print("rawdemosaic: demosaic allocation failed\n")
		return nil, errAllocation
	}
	if params.SmoothingPasses > 0 {
		ColorSmoothing(out, params.SmoothingPasses)
	}
	return out, nil
}

func (d *Dispatcher) fastSubSample(in *Raw, roi ROI, meta Meta, params Params) (*Image, error) {
	src := in
	if params.Pipeline == PipelineExport && params.MedianThreshold > 0 {
		src = PreMedian(meta.CFA, in, 1, params.MedianThreshold)
	}
	if meta.CFA.Kind == KindXTrans {
		return d.Resampler.ClipAndZoomDemosaicThirdSizeXTrans(meta.CFA, src, roi), nil
	}
	return d.Resampler.ClipAndZoomDemosaicHalfSize(meta.CFA, src, roi), nil
}

// downgradeMethod implements the fast-preview strength cap: Bayer always
// drops to PPG, X-Trans always drops to linear (the caller only reaches
// this path at quality=fast, where the X-Trans floor and ceiling coincide).
func downgradeMethod(m Method, cfa CFA) Method {
	if cfa.Kind == KindBayer {
		return MethodPPG
	}
	return MethodLinear
}

// snapROIPhase rounds a requested ROI's offset down to the CFA period (2
// for Bayer, 3 for X-Trans) and clamps negative offsets to zero. Width and
// height are returned unchanged; they are not grown toward the full buffer.
func snapROIPhase(roi ROI, cfa CFA) ROI {
	period := 2
	if cfa.Kind == KindXTrans {
		period = 3
	}
	roi.X -= roi.X % period
	roi.Y -= roi.Y % period
	if roi.X < 0 {
		roi.X = 0
	}
	if roi.Y < 0 {
		roi.Y = 0
	}
	return roi
}
