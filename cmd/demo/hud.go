package main

import (
	"fmt"
	"strings"
	"time"

	"hero-engine/engine"
)

// statusLine collects debug fields and renders them into the window title.
type statusLine struct {
	parts    []string
	interval time.Duration
	elapsed  time.Duration
}

func newStatusLine(interval time.Duration) *statusLine {
	return &statusLine{interval: interval}
}

func (sl *statusLine) add(format string, args ...interface{}) {
	sl.parts = append(sl.parts, fmt.Sprintf(format, args...))
}

func (sl *statusLine) text() string {
	return strings.Join(sl.parts, " | ")
}

// update returns a new title once per interval, and "" otherwise.
func (sl *statusLine) update(dt time.Duration, st engine.Stats) string {
	sl.elapsed += dt
	if sl.elapsed < sl.interval {
		return ""
	}
	sl.elapsed = 0
	sl.parts = sl.parts[:0]

	sl.add("Hero")
	if !st.TierKnown {
		sl.add("probing")
		return sl.text()
	}
	sl.add("%s", st.Scene)
	if st.Incoming != "" {
		sl.add("-> %s %.0f%%", st.Incoming, st.Progress*100)
	}
	sl.add("tier %s", st.Tier)
	sl.add("%d/%d particles", st.LiveParticles, st.Profile.ParticleCount)
	sl.add("%.1f ms", st.MeanFrameMs)
	if st.SubmitErrors > 0 {
		sl.add("%d submit errors", st.SubmitErrors)
	}
	return sl.text()
}
