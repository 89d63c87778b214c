package debugscript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseWarning describes a line that was dropped or parsed with a default.
// It is never fatal: parsing always carries on with the next line.
type ParseWarning struct {
	Line    string
	Message string
}

func (w *ParseWarning) Error() string {
	return fmt.Sprintf("debug script: %s (line %q)", w.Message, w.Line)
}

var directions = map[string]Vec2{
	"up":    {0, -1},
	"down":  {0, 1},
	"left":  {-1, 0},
	"right": {1, 0},
}

// ParseLine parses a single command line.
//
// It returns a nil Command for blank lines, comments and unknown keywords.
// A non-nil warning may accompany a command when an argument was replaced by
// its default (e.g. an invalid frame count).
func ParseLine(line string) (Command, *ParseWarning) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil, nil
	}

	fields := strings.Fields(line)
	arg := func(i int) string {
		if i < len(fields) && i <= 2 {
			return fields[i]
		}
		return ""
	}
	keyword := strings.ToLower(fields[0])
	arg1, arg2 := arg(1), arg(2)

	var warn *ParseWarning
	warnf := func(format string, args ...any) {
		warn = &ParseWarning{Line: line, Message: fmt.Sprintf(format, args...)}
	}
	num := func(s string) float64 {
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			warnf("invalid number %q, using 0", s)
			return 0
		}
		return f
	}
	var at Vec2
	switch keyword {
	case "aim", "teleport", "cursor", "mouse_screen", "spawn_barrier", "spawn_powerup":
		at = Vec2{X: num(arg1), Y: num(arg2)}
	}

	switch keyword {
	case "turbo":
		return Turbo{On: isOn(arg1)}, nil
	case "render":
		return Render{On: isOn(arg1)}, nil
	case "frames":
		n, err := strconv.Atoi(arg1)
		if err != nil || n <= 0 {
			warnf("invalid frame count %q, using 1", arg1)
			n = 1
		}
		return Frames{N: n}, warn
	case "map":
		return LoadMap{Path: arg1}, nil
	case "seed":
		seed, err := strconv.ParseUint(arg1, 10, 32)
		if err != nil {
			warnf("invalid seed %q, using 0", arg1)
			seed = 0
		}
		return SetSeed{Seed: uint32(seed)}, warn
	case "input":
		m := parseMove(arg1, warnf)
		return m, warn
	case "aim":
		return Aim{At: at}, warn
	case "fire":
		return Fire{}, nil
	case "hold_fire":
		return HoldFire{On: isOn(arg1)}, nil
	case "screenshot":
		return Screenshot{Path: arg1}, nil
	case "dump":
		return Dump{Path: arg1}, nil
	case "quit":
		return Quit{}, nil
	case "god":
		return GodMode{On: isOn(arg1)}, nil
	case "weapon":
		if arg1 == "prev" {
			return Weapon{Delta: -1}, nil
		}
		return Weapon{Delta: 1}, nil
	case "teleport":
		return Teleport{To: at}, warn
	case "give":
		return Give{Item: arg1}, nil
	case "cursor":
		return Cursor{At: at}, warn
	case "mouse_screen":
		return MouseScreen{At: at}, warn
	case "spawn_barrier":
		return SpawnBarrier{At: at}, warn
	case "spawn_powerup":
		typ := ""
		if len(fields) > 3 {
			typ = fields[3]
		}
		return SpawnPowerup{At: at, Type: typ}, warn
	case "mouse_click":
		switch arg1 {
		case "right":
			return MouseClick{Button: MouseRight}, nil
		case "middle":
			return MouseClick{Button: MouseMiddle}, nil
		}
		return MouseClick{Button: MouseLeft}, nil
	}

	warnf("unknown command %q", keyword)
	return nil, warn
}

func parseMove(arg string, warnf func(string, ...any)) Move {
	m := Move{Mode: MoveAdd}
	dir := arg
	if strings.HasPrefix(dir, "+") {
		dir = dir[1:]
	} else if strings.HasPrefix(dir, "-") {
		m.Mode = MoveSub
		dir = dir[1:]
	}
	dir = strings.ToLower(dir)
	if dir == "stop" {
		m.Mode = MoveStop
		return m
	}
	v, ok := directions[dir]
	if !ok {
		warnf("unknown input direction %q", arg)
	}
	m.Dir = v
	return m
}

func isOn(s string) bool {
	return s == "on" || s == "1"
}

// isSeparator reports whether r ends a command. Newlines and semicolons may
// be mixed freely.
func isSeparator(r rune) bool {
	return r == '\n' || r == ';'
}

// countCommands returns an upper bound on the number of commands in text.
func countCommands(text string) int {
	n := 1
	for _, r := range text {
		if isSeparator(r) {
			n++
		}
	}
	return n
}

// ParseText splits text on newlines and semicolons and parses each piece.
// Warnings are logged to log (which may be nil) and the offending pieces
// skipped or defaulted; the rest of the text is still parsed.
func ParseText(text string, log logrus.FieldLogger) []Command {
	cmds := make([]Command, 0, countCommands(text))
	for _, piece := range strings.FieldsFunc(text, isSeparator) {
		cmd, warn := ParseLine(piece)
		if warn != nil && log != nil {
			log.Warn(warn.Error())
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}
