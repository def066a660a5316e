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

package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aferrero2707/rawdemosaic/internal/raw"
	"github.com/aferrero2707/rawdemosaic/internal/rawio"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/job", postJob)
		}
	}
	return r
}

func TestGetPing(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "pong" {
		t.Fatalf("message = %v, want pong", body["message"])
	}
}

func TestPostJobDemosaicsAndReturnsRGB(t *testing.T) {
	r := newTestRouter()
	data := make([]float32, 16*16)
	for i := range data {
		data[i] = 0.5
	}
	req := jobRequest{
		RawSpec: rawio.RawSpec{
			Width: 16, Height: 16, Data: data,
			CFA: rawio.CFASpec{Kind: "bayer", BayerPattern: "RGGB"},
		},
		Op: *raw.NewOpDemosaic(raw.Params{Method: raw.MethodPPG, Pipeline: raw.PipelineFull, Quality: raw.QualityDefault}),
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/job", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp jobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Width != 16 || resp.Height != 16 {
		t.Fatalf("response dims = %dx%d, want 16x16", resp.Width, resp.Height)
	}
	if len(resp.RGB) != 16*16*4 {
		t.Fatalf("RGB length = %d, want %d", len(resp.RGB), 16*16*4)
	}
}

func TestPostJobWithRefPopulatesDiagnostics(t *testing.T) {
	r := newTestRouter()
	data := make([]float32, 8*8)
	for i := range data {
		data[i] = 0.5
	}
	ref := make([]float32, 8*8*4)
	for i := range ref {
		ref[i] = 0.5
	}
	req := jobRequest{
		RawSpec: rawio.RawSpec{
			Width: 8, Height: 8, Data: data,
			CFA: rawio.CFASpec{Kind: "bayer", BayerPattern: "RGGB"},
		},
		Op:  *raw.NewOpDemosaic(raw.Params{Method: raw.MethodPPG, Pipeline: raw.PipelineFull, Quality: raw.QualityDefault}),
		Ref: ref,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/job", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp jobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PSNRdB == nil || resp.MeanDeltaE == nil || resp.MedianAbsErr == nil {
		t.Fatalf("expected diagnostics fields populated, got %+v", resp)
	}
}

func TestPostJobBadRequestOnMalformedBody(t *testing.T) {
	r := newTestRouter()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/job", bytes.NewReader([]byte("not json")))
	httpReq.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
