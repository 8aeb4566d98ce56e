package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"hero-engine/perf"
)

var (
	styleLabel = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleValue = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleGood  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBad   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleWarn  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func drawRow(s tcell.Screen, y int, label string, style tcell.Style, format string, args ...interface{}) {
	drawText(s, 2, y, styleLabel, label)
	drawText(s, 18, y, style, fmt.Sprintf(format, args...))
}

// drawBar draws a filled bar of width cells for frac in [0,1].
func drawBar(s tcell.Screen, x, y, width int, frac float64, style tcell.Style) {
	fill := int(frac * float64(width))
	for i := 0; i < width; i++ {
		r := '·'
		if i < fill {
			r = '█'
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}

func drawDashboard(s tcell.Screen, h *harness, paused bool) {
	s.Clear()
	st := h.eng.Stats()

	title := "hero soak"
	if paused {
		title += " (paused)"
	}
	drawText(s, 2, 0, styleValue, title)

	verdictStyle := styleGood
	switch st.Verdict {
	case perf.Incline:
		verdictStyle = styleBad
	case perf.Decline:
		verdictStyle = styleWarn
	}

	y := 2
	drawRow(s, y, "frame", styleValue, "%d", st.Frames)
	y++
	drawRow(s, y, "scene", styleValue, "%s (%s)", st.Scene, st.Phase)
	y++
	if st.Incoming != "" {
		drawRow(s, y, "incoming", styleWarn, "%s %.0f%%", st.Incoming, st.Progress*100)
	}
	y++
	drawRow(s, y, "tier", styleValue, "%s", st.Tier)
	y++
	drawRow(s, y, "frame cost", verdictStyle, "%.2f ms (budget %.2f ms)",
		st.MeanFrameMs, float64(h.eng.Config().TargetFrameBudget.Microseconds())/1000)
	y++
	drawRow(s, y, "monitor", verdictStyle, "%s / %s", st.Verdict, st.MonitorState)
	y++
	drawRow(s, y, "particles", styleValue, "%d / %d", st.LiveParticles, st.Profile.ParticleCount)
	y++
	if st.Profile.ParticleCount > 0 {
		drawBar(s, 18, y, 40, float64(st.LiveParticles)/float64(st.Profile.ParticleCount), styleGood)
	}
	y++
	drawRow(s, y, "shadow", styleValue, "%d", st.Profile.ShadowResolution)
	y++
	drawRow(s, y, "bloom", styleValue, "%t", st.Profile.BloomEnabled)
	y++
	drawRow(s, y, "reflections", styleValue, "%t", st.Profile.ReflectionsEnabled)
	y++
	drawRow(s, y, "max LOD", styleValue, "%d", st.Profile.MaxLODLevel)
	y++
	drawRow(s, y, "load", styleValue, "x%.2f", h.model.Scale)
	y++
	drawRow(s, y, "dropped", styleValue, "queue %d, spawn %d", st.QueueDropped, st.SpawnDropped)
	y++
	errStyle := styleValue
	if st.SubmitErrors > 0 {
		errStyle = styleBad
	}
	drawRow(s, y, "submit errors", errStyle, "%d", st.SubmitErrors)
	y += 2
	drawText(s, 2, y, styleLabel, "1-9 select  n/Right next  b pulse  +/- load  space pause  q quit")

	s.Show()
}
