package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/frameio"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/pipeline"
	"github.com/astrogo/fitsio"
)

// job is one batch run: every file of src through pl, written to dir
type job struct {
	pl     *pipeline.Pipeline
	prm    *params.Prms
	cfa    frame.CFA
	dir    string
	format string
	width  int
}

// outName maps an input path to its output path in dir
func (j job) outName(in string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	ext := j.format
	if ext == "jpeg" {
		ext = "jpg"
	}
	return filepath.Join(j.dir, base+"."+ext)
}

// next captures the next frame of src, processes it and writes it to out
func (j job) next(src *frameio.FileSource, out string) error {
	f, err := frame.Capture(src, j.cfa)
	if err != nil {
		return err
	}
	cfa, err := src.Current().CFA(j.cfa)
	if err != nil {
		return err
	}
	f.Info.CFA = cfa
	if err = j.pl.Run(f, j.prm); err != nil {
		return err
	}

	fh, err := os.Create(out)
	if err != nil {
		return err
	}
	defer fh.Close()
	if j.format == "fits" {
		card := fitsio.Card{Name: "STAGES", Value: strings.Join(j.pl.Names(), ","), Comment: "ISP stages applied"}
		return frameio.WriteFrame(fh, f, j.pl.Out(), card)
	}
	img, err := frameio.Preview(f, j.pl.Out(), j.width)
	if err != nil {
		return err
	}
	return frameio.Encode(fh, img, j.format)
}

// run processes every path in order, calling progress before each one.
// A failed file does not stop the batch; the failures are returned.
func (j job) run(src *frameio.FileSource, progress func(i int, path string)) []error {
	var errs []error
	for i, in := range src.Paths {
		progress(i, in)
		if err := j.next(src, j.outName(in)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", in, err))
		}
	}
	return errs
}
