// Package cli holds the command-line configuration shared by the windowed
// and headless binaries and wires it into a game session.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/debugcmd"
	"github.com/goofansu/tankgame/internal/debugserver"
	"github.com/goofansu/tankgame/internal/game"
	"github.com/goofansu/tankgame/internal/logging"
)

// Config is the parsed command line.
type Config struct {
	MapPath    string
	Script     string
	ScriptFile string
	CmdFile    string
	NoCmdFile  bool
	Adhoc      bool
	HTTPAddr   string
	Seed       uint
	OutDir     string
	Width      int
	Height     int
	MaxFrames  int
	Verbose    bool
}

// HasScript reports whether a startup script was given.
func (c *Config) HasScript() bool {
	return c.Script != "" || c.ScriptFile != ""
}

// Parse reads args (without the program name). Headless adds -max-frames
// and -verbose. flag.ErrHelp is returned for -h.
func Parse(name string, args []string, headless bool, out io.Writer) (*Config, error) {
	c := &Config{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&c.MapPath, "map", "", "map file to load (default: built-in map)")
	fs.StringVar(&c.Script, "debug-script", "", "inline debug script, commands separated by ';' or newlines")
	fs.StringVar(&c.ScriptFile, "debug-script-file", "", "debug script file to run from the first frame")
	fs.StringVar(&c.CmdFile, "cmd-file", debugcmd.DefaultPath, "command file polled every frame")
	fs.BoolVar(&c.NoCmdFile, "no-cmd-file", false, "disable the command file")
	fs.BoolVar(&c.Adhoc, "adhoc", false, "treat command input as screenshot/quit only instead of script text")
	fs.StringVar(&c.HTTPAddr, "debug-http", "", "listen address for the debug HTTP bridge (empty: off)")
	fs.UintVar(&c.Seed, "seed", 0, "simulation RNG seed")
	fs.StringVar(&c.OutDir, "out-dir", "", "directory for relative screenshot and dump paths")
	fs.IntVar(&c.Width, "width", game.DefaultWidth, "screen width in pixels")
	fs.IntVar(&c.Height, "height", game.DefaultHeight, "screen height in pixels")
	if headless {
		fs.IntVar(&c.MaxFrames, "max-frames", 3600, "stop after this many frames")
		fs.BoolVar(&c.Verbose, "verbose", false, "print every frame log entry")
	}

	// Retired flags, kept so old invocations get a pointer to the new one.
	var shot, shotFrames, oldScript string
	fs.StringVar(&shot, "screenshot", "", "removed, use -debug-script")
	fs.StringVar(&shotFrames, "screenshot-frames", "", "removed, use -debug-script")
	fs.StringVar(&oldScript, "script", "", "renamed to -debug-script")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if shot != "" || shotFrames != "" {
		if shot == "" {
			shot = "output.png"
		}
		if shotFrames == "" {
			shotFrames = "3"
		}
		return nil, fmt.Errorf("-screenshot and -screenshot-frames are not supported; use: -debug-script \"frames %s; screenshot %s; quit\"", shotFrames, shot)
	}
	if oldScript != "" {
		return nil, errors.New("-script has been renamed to -debug-script")
	}
	if c.Script != "" && c.ScriptFile != "" {
		return nil, errors.New("-debug-script and -debug-script-file are mutually exclusive")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, errors.New("-width and -height must be > 0")
	}
	if headless && c.MaxFrames <= 0 {
		return nil, errors.New("-max-frames must be > 0")
	}
	return c, nil
}

// Setup is a session plus the command transports feeding it.
type Setup struct {
	Session *game.Session
	Queue   *debugcmd.Queue
	Channel *debugcmd.Channel
	Server  *debugserver.Server
	Events  *game.FrameLog
}

// NewSetup opens the command file, builds the HTTP bridge when configured
// and creates the session. extra options are applied last.
func NewSetup(c *Config, log logrus.FieldLogger, extra ...game.SessionOption) (*Setup, error) {
	log = logging.Or(log, logging.CatCore)
	s := &Setup{Queue: debugcmd.NewQueue(), Events: game.NewFrameLog(c.Verbose)}

	opts := []game.SessionOption{
		game.WithLogger(log),
		game.WithSessionSeed(uint32(c.Seed)),
		game.WithRenderSize(c.Width, c.Height),
		game.WithOutputDir(c.OutDir),
		game.WithAdhocCommands(c.Adhoc),
		game.WithQuitOnScriptEnd(c.HasScript()),
		game.WithFrameLog(s.Events),
		game.WithSource(s.Queue),
	}
	if c.MapPath != "" {
		opts = append(opts, game.WithMapFile(c.MapPath))
	}
	switch {
	case c.ScriptFile != "":
		opts = append(opts, game.WithScriptFile(c.ScriptFile))
	case c.Script != "":
		opts = append(opts, game.WithScriptText(c.Script))
	}
	if !c.NoCmdFile {
		ch, err := debugcmd.Open(c.CmdFile, logging.Or(nil, logging.CatNet))
		if err != nil {
			// The game still runs; only the file transport is lost.
			log.WithError(err).Warn("Command file disabled")
		} else {
			s.Channel = ch
			opts = append(opts, game.WithSource(ch))
		}
	}
	if c.HTTPAddr != "" {
		opts = append(opts, game.WithStatePublishing(true))
	}

	sess, err := game.NewSession(append(opts, extra...)...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Session = sess
	if c.HTTPAddr != "" {
		s.Server = debugserver.New(s.Queue, debugserver.WithState(sess))
	}
	return s, nil
}

// Serve runs the HTTP bridge, if any, until ctx is done. Errors are logged.
func (s *Setup) Serve(ctx context.Context, addr string) {
	if s.Server == nil {
		return
	}
	go func() {
		if err := s.Server.ListenAndServe(ctx, addr); err != nil {
			logging.Cat(logging.CatNet).WithError(err).Error("Debug server stopped")
		}
	}()
}

// Close removes the command file.
func (s *Setup) Close() error {
	if s.Channel == nil {
		return nil
	}
	return s.Channel.Close()
}
