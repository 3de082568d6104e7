//  Copyright 2019 Marius Ackerman
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/goccmack/godsp"
	"github.com/goccmack/taptempo/internal/click"
	"github.com/goccmack/taptempo/internal/config"
	"github.com/goccmack/taptempo/internal/log"
	"github.com/goccmack/taptempo/internal/session"
)

const (
	// Directory for plot output
	outDir = "out"
)

var (
	inFileName    string
	outFileName   string
	cfgFileName   string
	clickFileName string
	outPlotData   = false

	cfg *config.Config
)

func main() {
	start := time.Now()
	getParams()

	var err error
	if cfg, err = config.Load(cfgFileName); err != nil {
		fail(err.Error())
	}
	log.Init(cfg.LogLevel)

	sess, err := session.ReadFile(inFileName)
	if err != nil {
		fail(err.Error())
	}
	logger := log.With("session", sess.ID, "file", inFileName)
	logger.Info("replaying session", "events", len(sess.Events), "frame_rate", sess.FrameRate)

	steps, est, err := session.Replay(sess)
	if err != nil {
		fail(err.Error())
	}
	recs := newTapRecords(steps)
	for _, rec := range recs {
		logger.Debug("step", "no", rec.stepNo, "kind", rec.kind, "outcome", rec.outcome,
			"bpm", rec.bpm, "offset", rec.offset, "paused", rec.paused)
	}

	writeOutput(sess, est, recs)
	logger.Info("wrote tempo", "out", outFileName, "bpm", est.Bpm())

	if outPlotData {
		if err := writePlotData(recs); err != nil {
			fail(err.Error())
		}
	}

	if clickFileName != "" {
		if err := writeClick(est.Bpm()); err != nil {
			fail(err.Error())
		}
		logger.Info("wrote click track", "out", clickFileName, "bpm", est.Bpm())
	}

	fmt.Println(time.Now().Sub(start))
}

// bpm and interval series of the counted taps
func series(recs []*tapRecord) (bpms, intervals []float64) {
	for _, rec := range recs {
		if rec.counted() {
			bpms = append(bpms, float64(rec.bpm))
			intervals = append(intervals, float64(rec.intervalMs))
		}
	}
	return
}

/*
writePlotData writes the bpm after every counted tap and the interval
leading to it for plotting.
*/
func writePlotData(recs []*tapRecord) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	bpms, intervals := series(recs)
	godsp.WriteDataFile(bpms, path.Join(outDir, "bpm"))
	godsp.WriteDataFile(intervals, path.Join(outDir, "interval"))
	return nil
}

func writeClick(bpm int) error {
	f, err := os.Create(clickFileName)
	if err != nil {
		return err
	}
	opts := click.Options{
		SampleRate:  cfg.Click.SampleRate,
		ClickMs:     cfg.Click.ClickMs,
		FrequencyHz: cfg.Click.FrequencyHz,
		Beats:       cfg.Click.Beats,
	}
	if err := click.Write(f, bpm, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

/*** command line parameters ***/

func fail(msg string) {
	fmt.Printf("Error: %s\n", msg)
	usage()
	os.Exit(1)
}

func getParams() {
	help := flag.Bool("h", false, "")
	plot := flag.Bool("plot", false, "")
	outFile := flag.String("o", "", "")
	cfgFile := flag.String("c", "", "")
	clickFile := flag.String("click", "", "")
	flag.Parse()
	if *help {
		usage()
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		fail("session file name required")
	}
	outPlotData = *plot
	cfgFileName = *cfgFile
	clickFileName = *clickFile
	inFileName = flag.Arg(0)
	if *outFile == "" {
		outFileName = fromInFileName()
	} else {
		outFileName = *outFile
	}
}

func fromInFileName() string {
	dir, fname := path.Split(inFileName)
	fnames := strings.Split(fname, ".")
	if len(fnames) > 1 {
		fnames = fnames[:len(fnames)-1]
	}
	fnames = append(fnames, "tempo", "json")
	return path.Join(dir, strings.Join(fnames, "."))
}

func usage() {
	fmt.Println(usageString)
}

const usageString = `use: taptempo [-c config] [-plot] [-click <WAV file>] [-o <out file>] <session file> or
     taptempo -h
where 
    -h displays this help

    <session file> is a recorded tap session. Files ending in .json are read
               as JSON, all others as protobuf.

    -c config: Optional. YAML configuration file. Default: built-in settings.

    -plot: Optional. Default false. Write bpm and tap interval data to out/.

    -click <WAV file>: Optional. Render a click track at the final tempo.

    -o <out file>: Optional. Default <session file>.tempo.json`
