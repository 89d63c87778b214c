// Command headless runs the game without a window, typically to execute a
// debug script in CI, and prints a report of what happened.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/goofansu/tankgame/internal/cli"
	"github.com/goofansu/tankgame/internal/game"
	"github.com/goofansu/tankgame/internal/logging"
	"github.com/goofansu/tankgame/internal/sim"
)

func main() {
	logging.Init()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, logging.Cat(logging.CatCore)))
}

// run returns the process exit status: 0 on a normal stop, 1 when the map or
// script cannot be loaded, 2 on bad arguments.
func run(args []string, stdout, stderr io.Writer, log logrus.FieldLogger) int {
	cfg, err := cli.Parse("headless", args, true, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	setup, err := cli.NewSetup(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer setup.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	if setup.Server != nil {
		eg.Go(func() error { return setup.Server.ListenAndServe(ctx, cfg.HTTPAddr) })
	}

	s := setup.Session
	frames := 0
	eg.Go(func() error {
		defer cancel()
		in := game.FrameInput{Dt: sim.Dt}
		for frames < cfg.MaxFrames && !s.Quit() && ctx.Err() == nil {
			s.Frame(in)
			frames++
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "=== Headless Run ===\n")
	fmt.Fprintf(stdout, "map=%s seed=%d max_frames=%d\n\n", mapLabel(s), cfg.Seed, cfg.MaxFrames)
	if cfg.Verbose {
		fmt.Fprint(stdout, setup.Events.Format())
		fmt.Fprintln(stdout)
	}
	fmt.Fprint(stdout, setup.Events.Summary(s))
	if s.Quit() {
		fmt.Fprintf(stdout, "Stopped: quit after %d frames (completed=%t)\n", frames, s.Completed())
	} else {
		fmt.Fprintf(stdout, "Stopped: frame limit %d reached\n", cfg.MaxFrames)
	}
	return 0
}

func mapLabel(s *game.Session) string {
	if p := s.MapPath(); p != "" {
		return p
	}
	return "built-in"
}
