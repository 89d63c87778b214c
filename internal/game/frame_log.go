package game

import (
	"fmt"
	"strings"
)

// FrameLogEntry is one recorded event of a session.
type FrameLogEntry struct {
	Frame    int
	Tick     uint64
	Category string  // script, cmd, map, world, sim, capture
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[F=0042 T=0040] script   teleport       (5.00, 3.00)
func (e FrameLogEntry) String() string {
	return fmt.Sprintf("[F=%04d T=%04d] %-8s %-14s %s",
		e.Frame, e.Tick, e.Category, e.Key, e.Value)
}

// FrameLog collects structured events of a session. It is unbounded and
// meant for tests and headless reports, not for the live overlay.
type FrameLog struct {
	entries []FrameLogEntry
	verbose bool
}

// NewFrameLog creates a FrameLog. Verbose mode also records the per-frame
// state hash.
func NewFrameLog(verbose bool) *FrameLog {
	return &FrameLog{verbose: verbose}
}

// Add records a new entry.
func (fl *FrameLog) Add(frame int, tick uint64, category, key, value string, numVal float64) {
	fl.entries = append(fl.entries, FrameLogEntry{
		Frame:    frame,
		Tick:     tick,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (fl *FrameLog) AddVerbose(frame int, tick uint64, category, key, value string, numVal float64) {
	if !fl.verbose {
		return
	}
	fl.Add(frame, tick, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (fl *FrameLog) Entries() []FrameLogEntry {
	return fl.entries
}

// Filter returns entries matching category and key. Empty matches anything.
func (fl *FrameLog) Filter(category, key string) []FrameLogEntry {
	var out []FrameLogEntry
	for _, e := range fl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterFrameRange returns entries within [from, to] inclusive.
func (fl *FrameLog) FilterFrameRange(from, to int) []FrameLogEntry {
	var out []FrameLogEntry
	for _, e := range fl.entries {
		if e.Frame >= from && e.Frame <= to {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match category and key.
func (fl *FrameLog) Count(category, key string) int {
	return len(fl.Filter(category, key))
}

// LastOf returns the most recent entry matching category and key.
func (fl *FrameLog) LastOf(category, key string) (FrameLogEntry, bool) {
	entries := fl.Filter(category, key)
	if len(entries) == 0 {
		return FrameLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and value
// substring.
func (fl *FrameLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range fl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log, one entry per line.
func (fl *FrameLog) Format() string {
	return formatEntries(fl.entries)
}

// FormatRange returns the log restricted to a frame range.
func (fl *FrameLog) FormatRange(from, to int) string {
	return formatEntries(fl.FilterFrameRange(from, to))
}

func formatEntries(entries []FrameLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable report of a session.
func (fl *FrameLog) Summary(s *Session) string {
	var sb strings.Builder
	w := s.World()
	fmt.Fprintf(&sb, "--- Summary at F=%04d T=%04d ---\n", s.FrameNumber(), s.Sim().Tick())
	fmt.Fprintf(&sb, "Map: %s (%.0fx%.0f)  seed=%d\n", w.Name, w.Width, w.Height, s.Sim().Seed())

	if p := w.Player; p != nil {
		status := "alive"
		if !p.Alive() {
			status = "dead"
		}
		fmt.Fprintf(&sb, "Player: pos=(%.2f, %.2f) health=%d weapon=%s %s\n",
			p.Pos.X, p.Pos.Y, p.Health, p.Weapon(), status)
	}
	fmt.Fprintf(&sb, "Enemies alive: %d/%d\n", w.EnemiesAlive(), len(w.AI))

	counts := map[string]int{}
	var cats []string
	for _, e := range fl.entries {
		if counts[e.Category] == 0 {
			cats = append(cats, e.Category)
		}
		counts[e.Category]++
	}
	if len(cats) == 0 {
		sb.WriteString("Events: none\n")
	} else {
		sb.WriteString("Events: ")
		for _, c := range cats {
			fmt.Fprintf(&sb, "%s=%d  ", c, counts[c])
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "State hash: %08x\n", s.Sim().LastHash())
	return sb.String()
}
