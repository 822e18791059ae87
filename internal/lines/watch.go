package lines

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange whenever the backing file is written, created, removed
// or renamed by anyone, including this engine. The cache is dropped before
// onChange runs. Watch blocks until ctx is done.
//
// Only files on the local filesystem can be watched.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	if _, ok := f.backend.(OSBackend); !ok {
		return fmt.Errorf("watching %s: backend %T does not support watching", f.path, f.backend)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory (more reliable for editors that do atomic saves,
	// and for our own temp file + rename writes)
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	f.logger.Info().Msg("watching file for changes")

	filename := filepath.Base(abs)
	const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename || event.Op&changeOps == 0 {
				continue
			}
			f.logger.Debug().
				Str("event", event.Op.String()).
				Msg("file changed")
			if f.cache != nil {
				f.cache.invalidate()
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}
