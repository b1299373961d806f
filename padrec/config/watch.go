package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/padrec/padrec/logging"
)

var slog = logging.NewLogger("padrec/config")

type Watcher struct {
	cfgs chan Config
	err  error
}

func (w *Watcher) Configs() <-chan Config {
	return w.cfgs
}

func (w *Watcher) Err() error {
	return w.err
}

// Watch emits a Config whenever padrec.toml is rewritten, debounced so an
// editor's save burst produces one reload.
func Watch(ctx context.Context) *Watcher {
	w := &Watcher{cfgs: make(chan Config)}

	go func() {
		defer close(w.cfgs)

		watcher, err := createWatcher()
		if err != nil {
			w.err = fmt.Errorf("failed to create file watcher: %w", err)
			return
		}
		defer watcher.Close()

		var debounce <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				w.err = ctx.Err()
				return

			case event, ok := <-watcher.Events:
				if !ok {
					slog.Debug("watcher events closed")
					select {
					case err := <-watcher.Errors:
						w.err = err
					default:
					}
					return
				}
				slog.Debug("watcher event", "event", event)
				if !event.Has(fsnotify.Write) || event.Name != "padrec.toml" {
					continue
				}
				debounce = time.After(3 * time.Second)

			case <-debounce:
				slog.Debug("reading config")
				cfg, err := ReadConfig()
				if err != nil {
					slog.Warn("failed to read config", "error", err)
					continue
				}
				w.cfgs <- cfg
				debounce = nil
			}
		}
	}()

	return w
}

func createWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add("."); err != nil {
		return nil, fmt.Errorf("failed to add path: %w", err)
	}
	return watcher, nil
}
