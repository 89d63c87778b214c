// Package debugscript runs the small command language used for automated
// testing and bug reproduction: visual regression screenshots, state dumps
// and scripted input sequences. It is not a gameplay scripting language.
//
// A Script is stepped once per simulated frame with Update. State commands
// (turbo, input, aim, fire, ...) are applied immediately; commands that need
// the host are returned as an Action; "frames N" suspends the script for N
// frames.
package debugscript

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/logging"
)

// ErrEmptyScript is returned when creating a script from empty text.
var ErrEmptyScript = errors.New("debug script: empty script text")

// Script is a parsed command sequence plus its play state.
type Script struct {
	cmds       []Command
	cursor     int
	framesLeft int
	done       bool

	turbo  bool
	render bool

	input Input
	log   logrus.FieldLogger
}

// Option configures a Script at creation.
type Option func(*Script)

// WithLogger sends the script's log output to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Script) {
		if l != nil {
			s.log = l
		}
	}
}

func newScript(opts ...Option) *Script {
	s := &Script{
		turbo:  true,
		render: true,
		log:    logging.Cat(logging.CatCore),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads and parses a script file.
func Load(path string, opts ...Option) (*Script, error) {
	s := newScript(opts...)
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.WithError(err).Errorf("Debug script: failed to load '%s'", path)
		return nil, fmt.Errorf("debug script: load %s: %w", path, err)
	}
	s.cmds = ParseText(string(data), s.log)
	s.log.Infof("Debug script: loaded '%s' with %d commands", path, len(s.cmds))
	return s, nil
}

// FromString parses inline script text. Commands may be separated by
// newlines or semicolons.
func FromString(text string, opts ...Option) (*Script, error) {
	if text == "" {
		return nil, ErrEmptyScript
	}
	s := newScript(opts...)
	s.cmds = ParseText(text, s.log)
	s.log.Infof("Debug script: created from string with %d commands", len(s.cmds))
	return s, nil
}

// Inject replaces the commands of s with those parsed from text and restarts
// it. The turbo and render modes survive; cursor, countdown and input do not.
// A nil s yields a new script; empty text leaves s untouched.
func Inject(s *Script, text string, opts ...Option) *Script {
	if text == "" {
		return s
	}
	if s == nil {
		ns, err := FromString(text, opts...)
		if err != nil {
			return nil
		}
		return ns
	}
	s.cmds = ParseText(text, s.log)
	s.cursor = 0
	s.framesLeft = 0
	s.done = false
	s.input = Input{}
	s.log.Infof("Debug script: injected %d commands", len(s.cmds))
	return s
}

// Update advances the script by one frame and returns at most one action.
//
// Pulses in the input projection are cleared first. While a frame countdown
// is pending Update only decrements it. Otherwise commands run in order
// until one yields; the cursor is already past that command when it is
// returned, so the next call resumes after it. Running out of commands marks
// the script done and returns Quit{Completed: true}.
func (s *Script) Update() Action {
	if s == nil || s.done {
		return Continue{}
	}

	s.input.clearPulses()

	if s.framesLeft > 0 {
		s.framesLeft--
		return Continue{}
	}

	for s.cursor < len(s.cmds) {
		cmd := s.cmds[s.cursor]
		s.cursor++

		switch c := cmd.(type) {
		case Turbo:
			s.turbo = c.On
			s.log.Debugf("Debug script: turbo %s", onOff(c.On))
		case Render:
			s.render = c.On
			s.log.Debugf("Debug script: render %s", onOff(c.On))
		case Frames:
			// The calling frame is the first of the N.
			s.framesLeft = c.N - 1
			s.log.Debugf("Debug script: advancing %d frames", c.N)
			return Continue{}
		case Move:
			s.input.apply(c)
			s.log.Debugf("Debug script: input now %s", s.input.Move)
		case Aim:
			s.input.Aim = c.At
			s.input.HasAim = true
			s.log.Debugf("Debug script: aim at %s", c.At)
		case Fire:
			s.input.Fire = true
			s.log.Debug("Debug script: fire")
		case HoldFire:
			s.input.HoldFire = c.On
			s.log.Debugf("Debug script: hold_fire %s", onOff(c.On))
		case Weapon:
			s.input.WeaponCycle = c.Delta
			s.log.Debugf("Debug script: weapon %+d", c.Delta)
		case MouseClick:
			switch c.Button {
			case MouseLeft:
				s.input.ClickLeft = true
			case MouseRight:
				s.input.ClickRight = true
			}
			s.log.Debugf("Debug script: mouse_click %s", c.Button)
		case Quit:
			s.done = true
			s.log.Info("Debug script: quit")
			return c
		case Action:
			s.log.Infof("Debug script: %s %+v", cmd.Keyword(), c)
			return c
		default:
			s.log.Warnf("Debug script: unhandled command %T", cmd)
		}
	}

	s.log.Info("Debug script: completed")
	s.done = true
	return Quit{Completed: true}
}

// Done reports whether the script has finished. A nil script is done.
func (s *Script) Done() bool {
	return s == nil || s.done
}

// Turbo reports whether the host should run one fixed tick per frame
// without waiting for wall-clock time.
func (s *Script) Turbo() bool {
	return s != nil && s.turbo
}

// Render reports whether the host should draw this frame. Without a script
// the host always renders.
func (s *Script) Render() bool {
	return s == nil || s.render
}

// Input returns the current input projection.
func (s *Script) Input() Input {
	if s == nil {
		return Input{}
	}
	return s.input
}

// BlocksInput reports whether physical input should be ignored because the
// script is still driving the game.
func (s *Script) BlocksInput() bool {
	return s != nil && !s.done
}

// Len returns the number of parsed commands.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cmds)
}

// Cursor returns the index of the next command to run.
func (s *Script) Cursor() int {
	if s == nil {
		return 0
	}
	return s.cursor
}

// FramesLeft returns the pending frame countdown.
func (s *Script) FramesLeft() int {
	if s == nil {
		return 0
	}
	return s.framesLeft
}

// Commands returns a copy of the parsed commands.
func (s *Script) Commands() []Command {
	if s == nil {
		return nil
	}
	return append([]Command(nil), s.cmds...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
