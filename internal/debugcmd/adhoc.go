package debugcmd

import (
	"strings"
)

// AdhocKind identifies a command of the simple command-file protocol.
type AdhocKind int

const (
	AdhocScreenshot AdhocKind = iota + 1
	AdhocQuit
)

// Adhoc is one command of the simple protocol, which bypasses the script
// interpreter entirely: "screenshot <path>", "quit" or "exit".
type Adhoc struct {
	Kind AdhocKind
	Path string
}

// ParseAdhoc parses every line of text as a simple command. Unknown lines
// and screenshot commands without a path are skipped.
func ParseAdhoc(text string) []Adhoc {
	var out []Adhoc
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "screenshot":
			if len(fields) > 1 {
				out = append(out, Adhoc{Kind: AdhocScreenshot, Path: fields[1]})
			}
		case "quit", "exit":
			out = append(out, Adhoc{Kind: AdhocQuit})
		}
	}
	return out
}
