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

// Package rest exposes the demosaic dispatcher as a small HTTP job surface:
// an ambient/CLI-adjacent convenience, not part of the demosaic core.
package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/cpuid"

	"github.com/aferrero2707/rawdemosaic/internal/diag"
	"github.com/aferrero2707/rawdemosaic/internal/raw"
	"github.com/aferrero2707/rawdemosaic/internal/rawio"
)

// Serve runs the API on the default gin engine, listening on all interfaces
// at the port named by the PORT environment variable (8080 when unset).
func Serve() {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/job", postJob)
		}
	}
	r.Run()
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
		"avx2":    cpuid.CPU.AVX2(),
		"avx512":  cpuid.CPU.AVX512F(),
	})
}

// jobRequest is the JSON body accepted by POST /api/v1/job: a mosaicked
// buffer plus its CFA descriptor and the demosaic stage to run on it. Ref,
// when present, is compared against the result for PSNR/ΔE diagnostics;
// it is never required for the job to run.
type jobRequest struct {
	rawio.RawSpec
	Op  raw.OpDemosaic `json:"op"`
	Ref []float32      `json:"ref,omitempty"`
}

type jobResponse struct {
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	RGB          []float32 `json:"rgb"`
	PSNRdB       *float64  `json:"psnrDb,omitempty"`
	MeanDeltaE   *float64  `json:"meanDeltaE,omitempty"`
	MedianAbsErr *float64  `json:"medianAbsErr,omitempty"`
}

func postJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, cfa, err := req.RawSpec.ToRaw()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	frame := &raw.Frame{Raw: in, CFA: cfa, ISO: req.ISO}

	out, err := req.Op.Apply(frame, c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if out.Image == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "demosaic produced no image"})
		return
	}

	resp := jobResponse{Width: out.Image.Width, Height: out.Image.Height, RGB: out.Image.Pix}

	if len(req.Ref) == out.Image.Width*out.Image.Height*4 {
		ref := &raw.Image{Width: out.Image.Width, Height: out.Image.Height, Pix: req.Ref}
		if psnr, err := diag.PSNR(out.Image, ref); err == nil {
			resp.PSNRdB = &psnr
		}
		if de, err := diag.MeanDeltaE76(out.Image, ref); err == nil {
			resp.MeanDeltaE = &de
		}
		if mae, err := diag.MedianAbsoluteError(out.Image, ref); err == nil {
			resp.MedianAbsErr = &mae
		}
	}

	c.JSON(http.StatusOK, resp)
}
