package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NITESH777RAJPUT/Documind/internal/domain/entities"
)

type recordingIngester struct {
	requests chan entities.DocumentRequest
}

func newRecordingIngester() *recordingIngester {
	return &recordingIngester{requests: make(chan entities.DocumentRequest, 8)}
}

func (r *recordingIngester) Ingest(ctx context.Context, ownerID string, req entities.DocumentRequest) (*entities.Session, error) {
	r.requests <- req
	return &entities.Session{ID: "sess-1", OwnerID: ownerID}, nil
}

func (r *recordingIngester) wait(t *testing.T) entities.DocumentRequest {
	t.Helper()
	select {
	case req := <-r.requests:
		return req
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for ingest")
		return entities.DocumentRequest{}
	}
}

func startWatcher(t *testing.T, ingester Ingester, extensions []string) (string, context.CancelFunc) {
	t.Helper()

	dir := t.TempDir()
	w, err := NewWatcher(ingester, "local", extensions)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Watch(ctx, dir); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	return dir, cancel
}

func TestWatcher_IngestsDroppedTextFile(t *testing.T) {
	ingester := newRecordingIngester()
	dir, _ := startWatcher(t, ingester, nil)

	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("dropped document"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	req := ingester.wait(t)
	if req.Upload == nil {
		t.Fatal("expected an upload request")
	}
	if req.Upload.Name != "notes.txt" {
		t.Errorf("upload name: got %q", req.Upload.Name)
	}
	if req.Upload.MediaType != "text/plain" {
		t.Errorf("media type: got %q", req.Upload.MediaType)
	}
	if string(req.Upload.Data) != "dropped document" {
		t.Errorf("upload data: got %q", req.Upload.Data)
	}
}

func TestWatcher_PDFGetsPDFMediaType(t *testing.T) {
	ingester := newRecordingIngester()
	dir, _ := startWatcher(t, ingester, nil)

	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	req := ingester.wait(t)
	if req.Upload.MediaType != "application/pdf" {
		t.Errorf("media type: got %q", req.Upload.MediaType)
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	ingester := newRecordingIngester()
	dir, _ := startWatcher(t, ingester, []string{".txt"})

	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	select {
	case req := <-ingester.requests:
		t.Fatalf("unexpected ingest of %q", req.Upload.Name)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestMediaTypeForExt(t *testing.T) {
	if got := mediaTypeForExt(".PDF"); got != "application/pdf" {
		t.Errorf(".PDF: got %q", got)
	}
	if got := mediaTypeForExt(".md"); got != "text/plain" {
		t.Errorf(".md: got %q", got)
	}
}
