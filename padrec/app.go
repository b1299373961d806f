// Package padrec wires the recorder, player, library, and storage into the
// command-line application.
package padrec

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/padrec/padrec/backend"
	"github.com/padrec/padrec/devices"
	"github.com/padrec/padrec/library"
	"github.com/padrec/padrec/logging"
	"github.com/padrec/padrec/macro"
	"github.com/padrec/padrec/padrec/config"
	"github.com/padrec/padrec/player"
	"github.com/padrec/padrec/recorder"
	"github.com/padrec/padrec/store"
)

var slog = logging.NewLogger("padrec")

type Args struct {
	Mode  string
	File  string
	Name  string
	Loops int
	Speed float64
}

func ParseArgs() (Args, error) {
	if len(os.Args) < 2 {
		return Args{}, errors.New("usage: padrec <record|play|list|stats> [flags]")
	}

	a := Args{Mode: os.Args[1]}
	fs := flag.NewFlagSet(a.Mode, flag.ContinueOnError)
	fs.StringVar(&a.File, "file", "", "macro file path (defaults to the configured library path)")
	fs.StringVar(&a.Name, "name", "", "macro name")
	fs.IntVar(&a.Loops, "loops", 1, "playback loop count")
	fs.Float64Var(&a.Speed, "speed", 1.0, "playback speed multiplier")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return Args{}, err
	}
	return a, nil
}

func Run(ctx context.Context, args Args) error {
	cfg, err := config.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	logging.SetLogLevel(cfg.LogLevel)

	if args.File == "" {
		args.File = cfg.Library.Path
	}

	switch args.Mode {
	case "record":
		return runRecord(ctx, cfg, args)
	case "play":
		return runPlay(ctx, cfg, args)
	case "list":
		return runList(args)
	case "stats":
		return runStats(cfg)
	}
	return fmt.Errorf("unknown mode %q", args.Mode)
}

// runRecord captures until the context is cancelled, then stores the log
// under the given name.
func runRecord(ctx context.Context, cfg config.Config, args Args) error {
	if args.Name == "" {
		return errors.New("record requires -name")
	}

	th, err := cfg.Recorder.Thresholds()
	if err != nil {
		return err
	}

	provider := devices.NewSystemProvider()
	rec := recorder.New(provider, nil, recorder.Options{
		Thresholds: th,
		MaxEvents:  cfg.Recorder.MaxEvents,
	})
	defer rec.Close()

	if _, err := rec.Start(); err != nil {
		return err
	}
	slog.Info("recording, interrupt to stop", "macro", args.Name)

	watcher := config.Watch(ctx)
	cfgs := watcher.Configs()
	status := time.Tick(5 * time.Second)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case cfg, ok := <-cfgs:
			if !ok {
				slog.Warn("config watcher stopped", "error", watcher.Err())
				cfgs = nil
				continue
			}
			slog.Info("configuration changed", "log_level", cfg.LogLevel)
			logging.SetLogLevel(cfg.LogLevel)

		case <-status:
			st := rec.Status()
			slog.Info("recording", "events", st.EventCount, "elapsed_s", fmt.Sprintf("%.1f", st.Elapsed))
		}
	}

	events := rec.Stop()
	if len(events) == 0 {
		slog.Warn("nothing recorded, file not written")
		return nil
	}

	macros := map[string][]macro.Event{}
	if _, err := os.Stat(args.File); err == nil {
		loaded, skipped, err := store.LoadMacros(args.File)
		if err != nil {
			return err
		}
		if skipped > 0 {
			slog.Warn("existing file had malformed events", "skipped", skipped)
		}
		macros = loaded
	}
	macros[args.Name] = events

	if err := store.SaveMacros(args.File, macros); err != nil {
		return err
	}
	slog.Info("macro saved", "macro", args.Name, "file", args.File, "events", len(events))

	if cfg.Library.SnapshotPath != "" {
		if err := updateSnapshot(cfg.Library.SnapshotPath, args.Name, events); err != nil {
			slog.Warn("failed to update library snapshot", "error", err)
		}
	}
	return nil
}

func updateSnapshot(path, name string, events []macro.Event) error {
	lib, err := store.ReadSnapshot(path)
	if errors.Is(err, os.ErrNotExist) {
		lib = library.New()
	} else if err != nil {
		return err
	}
	if err := lib.Add(name, events, ""); err != nil {
		return err
	}
	return store.WriteSnapshot(path, lib)
}

func runPlay(ctx context.Context, cfg config.Config, args Args) error {
	macros, skipped, err := store.LoadMacros(args.File)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.Warn("macro file had malformed events", "skipped", skipped)
	}

	name := args.Name
	if name == "" && len(macros) == 1 {
		for n := range macros {
			name = n
		}
	}
	events, ok := macros[name]
	if !ok {
		return fmt.Errorf("macro %q not found in %s", name, args.File)
	}

	settings, err := macro.NewPlaybackSettings(args.Loops, args.Speed)
	if err != nil {
		return err
	}

	primary, fallback := backend.Select(backend.Options{
		PreferVirtual:    cfg.Player.PreferVirtual,
		Keys:             cfg.Player.Keys,
		MouseStick:       cfg.Player.MouseStick,
		MouseSensitivity: cfg.Player.MouseSensitivity,
	})
	defer primary.Close()
	if fallback != nil {
		defer fallback.Close()
	}

	pl := player.New(primary, fallback, nil)
	if err := pl.Play(events, settings); err != nil {
		return err
	}
	slog.Info("playing", "macro", name, "backend", primary.Name(), "loops", settings.Loops, "speed", settings.Speed)

	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			pl.Stop()
		case <-time.After(100 * time.Millisecond):
		}
	}

	if st := pl.Status(); !st.BackendAlive {
		slog.Warn("preferred backend failed during playback, fallback was used")
	}
	return nil
}

func runList(args Args) error {
	macros, skipped, err := store.LoadMacros(args.File)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.Warn("macro file had malformed events", "skipped", skipped)
	}

	lib := library.New()
	for name, events := range macros {
		if err := lib.Add(name, events, ""); err != nil {
			slog.Warn("skipping macro", "macro", name, "error", err)
		}
	}
	for _, name := range lib.List("") {
		meta, _ := lib.Metadata(name)
		fmt.Printf("%s\t%d events\t%.2fs\n", name, meta.InputCount, meta.Duration)
	}
	return nil
}

func runStats(cfg config.Config) error {
	if cfg.Library.SnapshotPath == "" {
		return errors.New("no library snapshot_path configured")
	}
	lib, err := store.ReadSnapshot(cfg.Library.SnapshotPath)
	if err != nil {
		return err
	}

	s := lib.Stats()
	fmt.Printf("macros: %d\n", s.TotalMacros)
	fmt.Printf("total plays: %d\n", s.TotalUsage)
	fmt.Printf("average duration: %.2fs\n", s.AvgDuration)
	fmt.Printf("favorites: %d\n", s.Favorites)
	for kind, n := range s.KindCounts {
		fmt.Printf("%s: %d\n", kind, n)
	}
	return nil
}
