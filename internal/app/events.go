package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/goofansu/tankgame/internal/game"
)

const (
	eventPanelWidth = 320
	eventMax        = 40
	eventLineHeight = 14
)

// EventPanel is a ring buffer of recent session events drawn on the right
// edge of the window.
type EventPanel struct {
	entries []game.FrameLogEntry
	head    int
	count   int
	seen    int // frame log entries already copied in
}

// NewEventPanel returns an empty panel.
func NewEventPanel() *EventPanel {
	return &EventPanel{entries: make([]game.FrameLogEntry, eventMax)}
}

// Add appends one entry, evicting the oldest when full.
func (p *EventPanel) Add(e game.FrameLogEntry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % eventMax
	if p.count < eventMax {
		p.count++
	}
}

// Sync copies entries recorded in fl since the previous call.
func (p *EventPanel) Sync(fl *game.FrameLog) {
	if fl == nil {
		return
	}
	all := fl.Entries()
	for _, e := range all[min(p.seen, len(all)):] {
		p.Add(e)
	}
	p.seen = len(all)
}

// Recent returns entries oldest first.
func (p *EventPanel) Recent() []game.FrameLogEntry {
	out := make([]game.FrameLogEntry, p.count)
	for i := range out {
		out[i] = p.entries[(p.head-p.count+i+eventMax)%eventMax]
	}
	return out
}

// Draw renders the panel with its left edge at panelX.
func (p *EventPanel) Draw(screen *ebiten.Image, panelX, panelH int) {
	if p.count == 0 {
		return
	}
	x := float32(panelX)
	vector.FillRect(screen, x, 0, eventPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 200}, false)
	vector.StrokeLine(screen, x, 0, x, float32(panelH), 1, colPanelRim, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 2)

	entries := p.Recent()
	if maxVisible := (panelH - 24) / eventLineHeight; len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	y := 20
	for _, e := range entries {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%05d %s %s", e.Frame, e.Key, e.Value), panelX+8, y)
		y += eventLineHeight
	}
}
