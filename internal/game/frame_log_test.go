package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameLog_FilterAndQuery(t *testing.T) {
	fl := NewFrameLog(false)
	fl.Add(1, 1, "script", "teleport", "(5.00, 3.00)", 0)
	fl.Add(2, 2, "ai", "state_change", "tank 2 sentry: idle → firing", 0)
	fl.Add(4, 4, "script", "god", "true", 0)
	fl.AddVerbose(4, 4, "sim", "hash", "deadbeef", 1)

	assert.Len(t, fl.Entries(), 3, "verbose entries dropped when not verbose")
	assert.Equal(t, 2, fl.Count("script", ""))
	assert.Equal(t, 3, fl.Count("", ""))
	assert.Len(t, fl.FilterFrameRange(2, 4), 2)

	last, ok := fl.LastOf("script", "")
	require.True(t, ok)
	assert.Equal(t, "god", last.Key)
	_, ok = fl.LastOf("world", "destroyed")
	assert.False(t, ok)

	assert.True(t, fl.HasEntry("ai", "", "firing"))
	assert.False(t, fl.HasEntry("ai", "", "evading"))
}

func TestFrameLog_Format(t *testing.T) {
	fl := NewFrameLog(true)
	fl.Add(42, 40, "script", "teleport", "(5.00, 3.00)", 0)
	fl.AddVerbose(43, 41, "sim", "hash", "0000abcd", 1)

	assert.Equal(t, "[F=0042 T=0040] script   teleport       (5.00, 3.00)", fl.Entries()[0].String())
	lines := strings.Split(strings.TrimSpace(fl.Format()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, 1, strings.Count(fl.FormatRange(43, 43), "\n"))
}

func TestFrameLog_Summary(t *testing.T) {
	h := newHarness(t, WithScript("teleport 2 2\nframes 3\nquit"))
	h.RunUntilDone(10)

	sum := h.Log.Summary(h.Session)
	t.Log("\n" + sum)
	assert.Contains(t, sum, "Map: default (20x15)")
	assert.Contains(t, sum, "Player: pos=(2.00, 2.00)")
	assert.Contains(t, sum, "Enemies alive: 2/2")
	assert.Contains(t, sum, "script=")

	empty := newHarness(t)
	assert.Contains(t, empty.Log.Summary(empty.Session), "Events: none")
}
