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

// Taptempo-live estimates a tempo from taps on the keyboard or mouse and
// animates a bar in time with it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccmack/taptempo/internal/config"
	"github.com/goccmack/taptempo/internal/log"
	"github.com/goccmack/taptempo/internal/session"
)

func main() {
	cfgFile := flag.String("c", "", "YAML configuration file")
	recordFile := flag.String("record", "", "write the session log to this file on exit")
	logFile := flag.String("log", "taptempo-live.log", "log file")
	flag.Parse()

	if err := run(*cfgFile, *recordFile, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred closes happen before main exits.
func run(cfgFile, recordFile, logFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	lf, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()
	log.InitTo(lf, cfg.LogLevel)

	rec, err := session.NewRecorder(session.NewLog(cfg.FrameRate, cfg.InitialBpm))
	if err != nil {
		return err
	}
	logger := log.With("session", rec.Log().ID)
	logger.Info("starting", "frame_rate", cfg.FrameRate, "initial_bpm", cfg.InitialBpm)

	p := tea.NewProgram(newApp(rec, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("program failed", "err", err)
		return err
	}

	if recordFile != "" {
		if filepath.Ext(recordFile) == "" {
			recordFile += "." + cfg.SessionFormat
		}
		if err := session.WriteFile(recordFile, rec.Log()); err != nil {
			logger.Error("failed to write session", "file", recordFile, "err", err)
			return err
		}
		logger.Info("wrote session", "file", recordFile, "events", len(rec.Log().Events))
	}
	fmt.Printf("final bpm: %d\n", rec.Estimator().Bpm())
	return nil
}
