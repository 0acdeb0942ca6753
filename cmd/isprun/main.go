package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adas-eyes/ispcore/frame"
	"github.com/adas-eyes/ispcore/frameio"
	"github.com/adas-eyes/ispcore/params"
	"github.com/adas-eyes/ispcore/pipeline"
	"github.com/adas-eyes/ispcore/util"

	"github.com/theckman/yacspin"
)

func main() {
	stages := flag.String("stages", strings.Join(pipeline.Full, ","), "comma separated stage list")
	prmPath := flag.String("params", "", "parameter bundle (yaml); empty uses the defaults")
	dir := flag.String("out", ".", "output folder")
	format := flag.String("fmt", "fits", "output format: fits, png or jpg")
	width := flag.Int("width", 0, "preview width for png and jpg")
	wait := flag.Duration("wait", 0, "how long to wait for an input file to appear")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `isprun batch processes raw FITS frames through the ISP stages

Usage:
	isprun [flags] frame.fits ...

Flags:`)
		flag.PrintDefaults()
	}
	flag.Parse()
	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	prm := params.Default()
	var err error
	if *prmPath != "" {
		prm, err = params.Load(*prmPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	cfa, err := frame.ParseCFA(prm.Info.CFA)
	if err != nil {
		log.Fatal(err)
	}
	pl, err := pipeline.New(util.SplitCSV(*stages)...)
	if err != nil {
		log.Fatal(err)
	}
	if pl.In() != frameio.RawU16 {
		log.Fatalf("the first stage must read raw/u16, %s reads %s", pl.Names()[0], pl.In())
	}
	if err = os.MkdirAll(*dir, 0777); err != nil {
		log.Fatal(err)
	}

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[11],
		Suffix:            " ",
		SuffixAutoColon:   true,
		StopCharacter:     "done",
		StopFailCharacter: "failed",
	})
	if err != nil {
		log.Fatal(err)
	}
	spinner.Start()

	j := job{pl: pl, prm: &prm, cfa: cfa, dir: *dir, format: *format, width: *width}
	src := frameio.NewFileSource(*wait, paths...)
	errs := j.run(src, func(i int, path string) {
		spinner.Message(fmt.Sprintf("%d/%d %s", i+1, len(paths), filepath.Base(path)))
	})
	if len(errs) > 0 {
		spinner.StopFailMessage(fmt.Sprintf("%d of %d frames", len(errs), len(paths)))
		spinner.StopFail()
		for _, err := range errs {
			log.Println(err)
		}
		os.Exit(1)
	}
	spinner.StopMessage(fmt.Sprintf("%d frames", len(paths)))
	spinner.Stop()
}
