package scripts

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event reports a script file change. Remove means the script should be
// unloaded instead of reloaded.
type Event struct {
	Path   string
	Remove bool
}

// Watch observes dir for .lua changes until ctx is done. The returned
// channel closes when the watcher stops.
func Watch(ctx context.Context, dir string) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scripts: watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("scripts: watch %s: %w", dir, err)
	}

	out := make(chan Event, 8)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("scripts: watch error: %v", err)
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".lua") {
					continue
				}
				switch {
				case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
					out <- Event{Path: ev.Name, Remove: true}
				case ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create):
					out <- Event{Path: ev.Name}
				}
			}
		}
	}()
	return out, nil
}
