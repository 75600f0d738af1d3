package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
	"github.com/rs/zerolog"
)

const WatchDebounceDuration = 200 * time.Millisecond

// watchSources calls rebuild with the changed units of set until ctx is done.
// Changes arriving within delay of each other are batched into one call.
func watchSources(ctx context.Context, set SourceSet, delay time.Duration, logger zerolog.Logger, rebuild func(files []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := set.Dirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("could not watch %q: %w", dir, err)
		}
	}
	logger.Info().Strs("dirs", dirs).Msg("watching for changes")

	var (
		lock    sync.Mutex
		pending = map[string]bool{}
	)
	debounced := debounce.New(delay)
	flush := func() {
		lock.Lock()
		files := make([]string, 0, len(pending))
		for file := range pending {
			files = append(files, file)
		}
		pending = map[string]bool{}
		lock.Unlock()

		if len(files) == 0 {
			return
		}
		sort.Slice(files, func(i, j int) bool {
			return natural.Less(files[i], files[j])
		})
		rebuild(files)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)

			if event.Has(fsnotify.Create) && !set.single {
				// New subdirectories must be watched too
				if dirs, err := (SourceSet{Root: path}).Dirs(); err == nil {
					for _, dir := range dirs {
						watcher.Add(dir)
					}
				}
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !set.Matches(path) {
				continue
			}
			logger.Debug().Str("unit", path).Stringer("op", event.Op).Msg("source changed")

			lock.Lock()
			pending[path] = true
			lock.Unlock()
			debounced(flush)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Err(err).Msg("watcher error")
		}
	}
}
