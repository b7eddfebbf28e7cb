// Package main provides the desktop player entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/filter"
	"github.com/osa030/arena/internal/app/library"
	"github.com/osa030/arena/internal/app/notification"
	"github.com/osa030/arena/internal/app/playback"
	"github.com/osa030/arena/internal/infra/audio"
	"github.com/osa030/arena/internal/infra/config"
	"github.com/osa030/arena/internal/infra/logger"
	"github.com/osa030/arena/internal/ui"
)

// AppID identifies the application to fyne preferences and storage.
const AppID = "com.osa030.arena"

var (
	cli        = kingpin.New("arena-gui", "Audio Arena desktop music player")
	configPath = cli.Flag("config", "Path to config file (defaults only when empty)").Envar("ARENA_CONFIG").String()
	verbose    = cli.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = cli.Flag("logfile", "Path to log file (default: stderr)").String()
	dirArg     = cli.Arg("dir", "Music folder to open at startup").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(cli.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Msgf("Failed to load config: %v", err)
		closer.Close()
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("arena-gui: %v", err)
		closer.Close()
		os.Exit(1)
	}
}

// run builds the player and blocks until the window is closed.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chain, err := filter.NewChainFromConfig(cfg.Library.Filters)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}
	scanner := library.NewScanner(chain, audio.NewProber(), library.Options{
		ProbeDurations: cfg.Library.ProbeDurations,
	})

	player, err := playback.Start(ctx, audio.Opener(cfg.Audio.DeviceConfig()), cfg.Playback.ActorConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := player.Close(); err != nil {
			zlog.Warn().Msgf("Failed to stop player: %v", err)
		}
	}()

	hub := notification.NewHub(0)
	defer hub.Close()
	hub.Subscribe(notification.LogStream())
	stream := notification.NewChanStream(cfg.Playback.EventBuffer)
	hub.Subscribe(stream)
	go hub.Run(ctx, player.Events())

	fyneApp := app.NewWithID(AppID)
	ctrl := ui.NewController(player, nil, ui.ControllerOptions{
		Shuffle:     cfg.Library.Shuffle,
		AutoAdvance: cfg.GUI.AutoAdvance,
		HideNames:   cfg.GUI.HideNames,
	})
	window := ui.NewWindow(fyneApp, ctrl, scanner, fyne.NewSize(cfg.GUI.Width, cfg.GUI.Height))
	window.Follow(stream.C())

	dir := *dirArg
	if dir == "" {
		dir = cfg.Library.Dir
	}
	if dir != "" {
		window.Load(dir)
	}

	window.ShowAndRun()
	zlog.Debug().Msg("Window closed")
	return nil
}
