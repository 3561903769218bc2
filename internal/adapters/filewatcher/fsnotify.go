// Package filewatcher auto-ingests documents dropped into a watched
// directory. Each new or rewritten file becomes a pre-extracted session for
// the configured owner, queryable later by its session id.
package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
	"github.com/NITESH777RAJPUT/Documind/internal/observability"
)

// Ingester is the slice of the query service the watcher needs.
type Ingester interface {
	Ingest(ctx context.Context, ownerID string, req entities.DocumentRequest) (*entities.Session, error)
}

// Watcher monitors a directory and ingests dropped documents.
type Watcher struct {
	watcher    *fsnotify.Watcher
	ingester   Ingester
	ownerID    string
	extensions []string
}

// NewWatcher creates a watcher that ingests on behalf of ownerID.
func NewWatcher(ingester Ingester, ownerID string, extensions []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = []string{".pdf", ".txt", ".md"}
	}

	return &Watcher{
		watcher:    w,
		ingester:   ingester,
		ownerID:    ownerID,
		extensions: extensions,
	}, nil
}

// Watch monitors dir until the context is cancelled, ingesting each created
// or rewritten document.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	log := observability.Logger().With("watch_dir", dir)
	log.Info("watching for documents")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				w.ingestFile(ctx, event.Name)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Error("watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	log := observability.Logger().With("path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("reading dropped file failed", "error", err)
		return
	}

	req := entities.DocumentRequest{
		Upload: &entities.Upload{
			Name:      filepath.Base(path),
			MediaType: mediaTypeForExt(filepath.Ext(path)),
			Data:      data,
		},
	}

	session, err := w.ingester.Ingest(ctx, w.ownerID, req)
	if err != nil {
		log.Error("auto-ingest failed", "error", err)
		return
	}
	log.Info("document ingested", "session_id", session.ID)
}

func (w *Watcher) isWatchedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func mediaTypeForExt(ext string) string {
	if strings.EqualFold(ext, ".pdf") {
		return "application/pdf"
	}
	return "text/plain"
}
