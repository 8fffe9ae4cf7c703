package s3blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type recordingWriter struct {
	key         string
	contentType string
	body        []byte
}

func (w *recordingWriter) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	w.key = key
	w.contentType = contentType
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	w.body = b
	return nil
}

func TestArchiveLedger(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "daily.csv")
	content := []byte("date,soja,maiz,trigo\n2026-09-01,488.89,,\n")
	if err := os.WriteFile(csvPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	w := &recordingWriter{}
	a := NewArchiver(w, csvPath)
	if err := a.ArchiveLedger(context.Background(), time.Date(2026, 9, 1, 21, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("ArchiveLedger: %v", err)
	}

	if w.key != "archive/daily-2026-09-01.csv" {
		t.Errorf("key = %q", w.key)
	}
	if w.contentType != "text/csv" {
		t.Errorf("content type = %q", w.contentType)
	}
	if string(w.body) != string(content) {
		t.Errorf("body = %q", w.body)
	}
}

func TestArchiveLedgerMissingFile(t *testing.T) {
	a := NewArchiver(&recordingWriter{}, filepath.Join(t.TempDir(), "absent.csv"))
	if err := a.ArchiveLedger(context.Background(), time.Now()); err == nil {
		t.Fatal("ArchiveLedger should fail when the ledger file is missing")
	}
}
