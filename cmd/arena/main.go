// Package main provides the terminal player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/osa030/arena/internal/app/console"
	"github.com/osa030/arena/internal/app/filter"
	"github.com/osa030/arena/internal/app/library"
	"github.com/osa030/arena/internal/app/notification"
	"github.com/osa030/arena/internal/app/playback"
	"github.com/osa030/arena/internal/domain/track"
	"github.com/osa030/arena/internal/infra/audio"
	"github.com/osa030/arena/internal/infra/config"
	"github.com/osa030/arena/internal/infra/logger"
)

// defaultMusicDir is used when neither the command line, the config nor ARENA_MUSIC_DIR name a folder.
const defaultMusicDir = "musics"

var (
	app        = kingpin.New("arena", "Audio Arena terminal music player")
	configPath = app.Flag("config", "Path to config file (defaults only when empty)").Envar("ARENA_CONFIG").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// play command (default)
	playCmd   = app.Command("play", "Play a music folder (default)").Default()
	playDir   = playCmd.Arg("dir", "Music folder").String()
	noShuffle = playCmd.Flag("no-shuffle", "Play files in scan order").Bool()
	maxPlay   = playCmd.Flag("max-play", "Skip each track after this long (e.g. 30s)").Duration()

	// scan command
	scanCmd = app.Command("scan", "List the playable files of a folder and exit")
	scanDir = scanCmd.Arg("dir", "Music folder").Required().String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	// The player puts the terminal in raw mode while it runs.
	loggerConfig.CRLF = term.IsTerminal(int(os.Stdin.Fd()))
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	// Load config
	if *configPath != "" {
		zlog.Info().Msgf("Loading config from %s", *configPath)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Msgf("Failed to load config: %v", err)
		closer.Close()
		os.Exit(1)
	}

	switch command {
	case scanCmd.FullCommand():
		err = runScan(cfg, *scanDir)
	default:
		err = runPlay(cfg)
	}
	if err != nil {
		zlog.Error().Msgf("arena: %v", err)
		closer.Close()
		os.Exit(1)
	}
}

// runPlay plays the folder. Using a separate function ensures
// defer statements are executed even when returning with an error.
func runPlay(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := musicDir(cfg, *playDir)
	files, err := scan(ctx, cfg, dir)
	if err != nil {
		return err
	}
	if cfg.Library.Shuffle && !*noShuffle {
		files = library.Shuffle(files, nil)
	}

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

	// Raw mode delivers single keys without waiting for Enter.
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return errors.Wrap(err, "failed to enter raw terminal mode")
		}
		defer func() {
			_ = term.Restore(fd, state)
		}()
	}

	opts := console.Options{
		AutoAdvance: cfg.Console.AutoAdvance,
		MaxPlay:     cfg.Console.MaxPlay(),
	}
	if *maxPlay > 0 {
		opts.MaxPlay = *maxPlay
	}

	session := console.NewSession(player, files, os.Stdout, opts)
	outcome, err := session.Run(ctx, console.ReadKeys(os.Stdin), stream.C())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	zlog.Debug().Msgf("Session %s after %d of %d files", outcome, session.Index(), len(files))
	return nil
}

// runScan prints the playable files of dir.
func runScan(cfg *config.Config, dir string) error {
	files, err := scan(context.Background(), cfg, dir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDURATION\tNAME\tPATH")
	for i, f := range files {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, f.DurationLabel, f.DisplayName(), f.Path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to write scan result")
	}

	var total int
	for _, f := range files {
		if f.HasDuration() {
			total++
		}
	}
	fmt.Printf("\n%d files (%d with known duration)\n", len(files), total)
	return nil
}

func scan(ctx context.Context, cfg *config.Config, dir string) ([]track.AudioFile, error) {
	chain, err := filter.NewChainFromConfig(cfg.Library.Filters)
	if err != nil {
		return nil, errors.Wrap(err, "invalid filter config")
	}

	scanner := library.NewScanner(chain, audio.NewProber(), library.Options{
		ProbeDurations: cfg.Library.ProbeDurations,
	})
	return scanner.Scan(ctx, dir)
}

// musicDir picks the folder to play: command line, then config (or ARENA_MUSIC_DIR), then the default.
func musicDir(cfg *config.Config, arg string) string {
	switch {
	case arg != "":
		return arg
	case cfg.Library.Dir != "":
		return cfg.Library.Dir
	default:
		return defaultMusicDir
	}
}

// printFilters prints available filters.
func printFilters() {
	registered := filter.GetRegistered()
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available Filters:")
	for _, name := range names {
		f := registered[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-24s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}
