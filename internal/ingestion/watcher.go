package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/storage"
)

// rebuildDebounce batches rapid catalog edits into one rebuild.
const rebuildDebounce = 2 * time.Second

// WatchCatalog monitors the catalog directory and rebuilds the graph when
// its JSON files change. Blocks until the context is cancelled.
//
// The graph is rebuilt whole each time: catalog files are small relative
// to the derived edge set, and a full rebuild keeps the no-partial-graph
// guarantee.
func WatchCatalog(ctx context.Context, catalogDir string, store storage.Backend, cfg config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(catalogDir); err != nil {
		return fmt.Errorf("watching %s: %w", catalogDir, err)
	}

	debounce := time.NewTimer(rebuildDebounce)
	debounce.Stop() // Don't start yet

	fmt.Printf("Watching %s for catalog changes (Ctrl+C to stop)\n", catalogDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCatalogFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(rebuildDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-debounce.C:
			fmt.Println("Catalog changed, rebuilding graph...")
			if _, result, err := RunPipeline(ctx, catalogDir, store, cfg, nil, true); err != nil {
				fmt.Fprintf(os.Stderr, "Rebuild error: %v\n", err)
			} else {
				fmt.Printf("Rebuilt: %d components, %d compatibility edges\n",
					result.Components, result.CompatEdges)
			}
		}
	}
}

func isCatalogFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
