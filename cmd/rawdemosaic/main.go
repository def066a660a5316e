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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/aferrero2707/rawdemosaic/internal/raw"
	"github.com/aferrero2707/rawdemosaic/internal/rawio"
	"github.com/aferrero2707/rawdemosaic/internal/rawlog"
	"github.com/aferrero2707/rawdemosaic/internal/rest"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var in = flag.String("in", "", "JSON raw mosaic specification to demosaic, see rawio.RawSpec")
var out = flag.String("out", "out.tiff", "save demosaiced output to 16-bit TIFF `file`")
var jpg = flag.String("jpg", "%auto", "save 8bit preview as JPEG to `file`. `%auto` replaces suffix of output file with .jpg")
var log = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")

var method = flag.Int64("method", 0, "demosaic method: 0=PPG 1=AMAZE 0x400=X-Trans linear 0x401=VNG 0x402=Markesteijn-1 0x403=Markesteijn-3")
var greenEq = flag.Int64("greenEq", 0, "green equilibration: 0=none 1=local 2=full 3=both")
var medianThr = flag.Float64("medianThr", 0, "pre-median threshold, 0=off")
var smoothPasses = flag.Int64("smoothPasses", 0, "color smoothing passes, 0=off")
var quality = flag.Int64("quality", 2, "quality tier: 0=fast 1=full 2=default")
var pipeline = flag.Int64("pipeline", 1, "pipeline kind: 0=preview 1=full 2=export")
var scale = flag.Float64("scale", 1.0, "requested output scale, 1.0=full resolution")

var black = flag.Float64("black", 0, "display stretch black point")
var white = flag.Float64("white", 1, "display stretch white point")
var gamma = flag.Float64("gamma", 1, "display stretch gamma, 1=linear")
var jpegQuality = flag.Int64("jpegQuality", 95, "JPEG output quality")

var port = flag.Int64("port", 8080, "port for serving HTTP API")

func main() {
	var logWriter io.Writer = os.Stdout
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `rawdemosaic Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (run|serve|ping|legal|version)

Commands:
  run      Demosaic the -in JSON raw spec and write -out / -jpg
  serve    Serve the HTTP API
  ping     Print CPU feature diagnostics and exit
  legal    Show license and attribution information
  version  Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log == "%auto" {
		if *out != "" {
			*log = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".log"
		} else {
			*log = ""
		}
	}
	if *log != "" {
		if err := rawlog.AlsoToFile(*log); err != nil {
			rawlog.Fatalf("Unable to open log file %s: %s\n", *log, err.Error())
		}
	}
	if *jpg == "%auto" {
		if *out != "" {
			*jpg = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".jpg"
		} else {
			*jpg = ""
		}
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	var err error
	switch args[0] {
	case "run":
		err = runDemosaic()
	case "serve":
		rawlog.Printf("Serving on port %d, %d MiB physical memory, AVX2=%v AVX512=%v\n",
			*port, totalMiBs, cpuid.CPU.AVX2(), cpuid.CPU.AVX512F())
		os.Setenv("PORT", fmt.Sprint(*port))
		rest.Serve()
	case "ping":
		fmt.Fprintf(logWriter, "%d MiB physical memory, AVX2=%v AVX512=%v\n", totalMiBs, cpuid.CPU.AVX2(), cpuid.CPU.AVX512F())
	case "legal":
		fmt.Fprint(logWriter, legal)
	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)
	case "help", "?":
		flag.Usage()
	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		rawlog.Sync()
		os.Exit(1)
	}

	elapsed := time.Now().Sub(start).Round(time.Millisecond * 10)
	fmt.Fprintf(logWriter, "\nDone after %s\n", elapsed)
	rawlog.Sync()
}

func runDemosaic() error {
	if *in == "" {
		return fmt.Errorf("missing -in JSON raw spec")
	}
	spec, err := rawio.ReadRawSpecFile(*in)
	if err != nil {
		return err
	}
	inRaw, cfa, err := spec.ToRaw()
	if err != nil {
		return err
	}

	op := raw.NewOpDemosaic(raw.Params{
		Method:          raw.Method(*method),
		GreenEq:         raw.GreenEqMode(*greenEq),
		MedianThreshold: float32(*medianThr),
		SmoothingPasses: int(*smoothPasses),
		Quality:         raw.Quality(*quality),
		Pipeline:        raw.Pipeline(*pipeline),
	})
	frame := &raw.Frame{
		Raw: inRaw,
		CFA: cfa,
		ISO: spec.ISO,
		ROI: raw.ROI{X: 0, Y: 0, Width: inRaw.Width, Height: inRaw.Height, Scale: *scale},
	}

	result, err := op.Apply(frame, os.Stdout)
	if err != nil {
		return err
	}
	if result.Image == nil {
		return fmt.Errorf("demosaic produced no output")
	}

	if *out != "" {
		if err := rawio.WriteTIFF16ToFile(result.Image, *out, float32(*black), float32(*white), float32(*gamma)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %dx%d TIFF to %s\n", result.Image.Width, result.Image.Height, *out)
	}
	if *jpg != "" {
		if err := rawio.WriteJPEGToFile(result.Image, *jpg, float32(*black), float32(*white), float32(*gamma), int(*jpegQuality)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %dx%d JPEG to %s\n", result.Image.Width, result.Image.Height, *jpg)
	}
	return nil
}
