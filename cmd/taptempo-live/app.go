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
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccmack/taptempo/internal/session"
	"github.com/goccmack/taptempo/tempo"
)

const barWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// frameMsg advances the frame clock by one.
type frameMsg time.Time

// app is the bubbletea model. It is the input source and frame clock for
// the estimator: every tick advances frame, every tap is stamped with the
// wall clock in milliseconds.
type app struct {
	rec      *session.Recorder
	keys     keyMap
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	frame   int
	lastOut tempo.TapOutcome
}

func newApp(rec *session.Recorder, logger *slog.Logger) app {
	return app{
		rec:      rec,
		keys:     defaultKeyMap(),
		interval: time.Second / time.Duration(rec.Estimator().FrameRate()),
		now:      time.Now,
		logger:   logger,
	}
}

func (a app) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (a app) Init() tea.Cmd {
	return a.tick()
}

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		a.frame++
		return a, a.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Tap):
			a = a.tap()
		case key.Matches(msg, a.keys.Toggle):
			a = a.toggle()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			a = a.tap()
		}
	}
	return a, nil
}

func (a app) tap() app {
	est := a.rec.Estimator()
	a.lastOut = a.rec.Tap(a.now().UnixMilli(), a.frame)
	a.logger.Debug("tap", "frame", a.frame, "outcome", a.lastOut, "bpm", est.Bpm(), "count", est.TapCount())
	return a
}

func (a app) toggle() app {
	paused := a.rec.Toggle(a.now().UnixMilli(), a.frame)
	a.logger.Info("toggle", "frame", a.frame, "paused", paused, "bpm", a.rec.Estimator().Bpm())
	return a
}

// level is the animation value for the current frame, in [0, 1]. It rises
// and falls once per beat.
func (a app) level() float64 {
	est := a.rec.Estimator()
	speed, ok := est.TransitionSpeed()
	if !ok {
		return 0
	}
	phase, _ := est.Phase(a.frame)
	return math.Abs(math.Sin(float64(phase) * speed))
}

func (a app) View() string {
	est := a.rec.Estimator()
	var b strings.Builder

	b.WriteString(titleStyle.Render("taptempo"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("bpm", fmt.Sprintf("%d", est.Bpm()))
	if fpb, ok := est.FramesPerBeat(); ok {
		row("frames/beat", fmt.Sprintf("%d", fpb))
	} else {
		row("frames/beat", "-")
	}
	row("offset", fmt.Sprintf("%d", est.Offset()))
	row("frame", fmt.Sprintf("%d", a.frame))
	row("run taps", fmt.Sprintf("%d", est.TapCount()))
	row("last tap", a.lastOut.String())
	b.WriteString("\n")

	if est.Paused() {
		b.WriteString(pausedStyle.Render("paused"))
	} else {
		n := int(math.Round(a.level() * barWidth))
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(strings.Repeat(" ", barWidth-n))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(a.keys.help()))
	b.WriteString("\n")
	return b.String()
}
