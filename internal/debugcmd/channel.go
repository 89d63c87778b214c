// Package debugcmd lets other processes send debug commands to a running
// game.
//
// The primary transport is a plain file: the game truncates it at start,
// polls it once per frame and truncates it again after each read. An
// external writer simply writes script text into it:
//
//	echo "screenshot /tmp/shot.png" > /tmp/tankgame_cmd
//
// There is no locking. A write racing with a poll may be picked up on the
// next poll or, if the truncate lands mid-write, partly lost. Writers should
// issue a single write call.
package debugcmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/logging"
)

// DefaultPath is the command file used when none is configured.
const DefaultPath = "/tmp/tankgame_cmd"

// Source is anything the frame loop can poll for pending command text.
type Source interface {
	// Poll returns pending text and true, or "" and false when nothing is
	// waiting. Text is returned at most once.
	Poll() (string, bool)
}

// Channel is a file-backed command mailbox.
type Channel struct {
	path string
	log  logrus.FieldLogger
}

// Open creates (or truncates) the command file at path and returns a
// channel polling it. An empty path selects DefaultPath.
func Open(path string, log logrus.FieldLogger) (*Channel, error) {
	if path == "" {
		path = DefaultPath
	}
	c := &Channel{path: path, log: logging.Or(log, logging.CatCore)}
	if err := c.truncate(); err != nil {
		c.log.WithError(err).Errorf("Debug command interface: cannot create %s", path)
		return nil, fmt.Errorf("debugcmd: open %s: %w", path, err)
	}
	c.log.Infof("Debug command interface initialized: %s", path)
	return c, nil
}

// Path returns the command file path.
func (c *Channel) Path() string {
	return c.path
}

// Poll reads the command file. When it holds anything the content is
// returned and the file is truncated so the same text is never delivered
// twice. Any I/O failure counts as "nothing pending".
func (c *Channel) Poll() (string, bool) {
	if c == nil {
		return "", false
	}
	fi, err := os.Stat(c.path)
	if err != nil || fi.Size() <= 0 {
		return "", false
	}
	data, err := os.ReadFile(c.path)
	if err != nil || len(data) == 0 {
		return "", false
	}
	if err := c.truncate(); err != nil {
		c.log.WithError(err).Warnf("Debug command: failed to clear %s", c.path)
	}
	c.log.Debug("Debug command: received from pipe")
	return string(data), true
}

// Close removes the command file. The channel must not be polled afterwards.
func (c *Channel) Close() error {
	if c == nil {
		return nil
	}
	err := os.Remove(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Channel) truncate() error {
	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Sources polls several sources in order and joins whatever they return
// with newlines into a single payload.
type Sources []Source

// Poll implements Source.
func (ss Sources) Poll() (string, bool) {
	var parts []string
	for _, s := range ss {
		if s == nil {
			continue
		}
		if text, ok := s.Poll(); ok {
			parts = append(parts, strings.TrimRight(text, "\n"))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}
