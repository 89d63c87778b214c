package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/goofansu/tankgame/internal/app"
	"github.com/goofansu/tankgame/internal/cli"
	"github.com/goofansu/tankgame/internal/logging"
)

func main() {
	logging.Init()
	log := logging.Cat(logging.CatCore)

	cfg, err := cli.Parse("tankgame", os.Args[1:], false, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.WithError(err).Error("Invalid arguments (run with -h for usage)")
		os.Exit(1)
	}

	setup, err := cli.NewSetup(cfg, log)
	if err != nil {
		log.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	defer setup.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	setup.Serve(ctx, cfg.HTTPAddr)

	g := app.New(setup.Session, app.WithSize(cfg.Width, cfg.Height))
	ebiten.SetWindowTitle("Tank Game")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if err := ebiten.RunGame(g); err != nil {
		log.WithError(err).Error("Game exited with error")
		setup.Close()
		os.Exit(1)
	}
	log.WithField("completed", setup.Session.Completed()).Info("Tank Game - Shutdown")
}
