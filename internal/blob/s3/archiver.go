package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

// ObjectWriter is the single upload method the archiver needs.
type ObjectWriter interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
}

// Archiver uploads a copy of the daily ledger CSV after each successful run,
// keyed by run date. The primary file on disk stays authoritative; the
// archive exists so the history survives the host.
type Archiver struct {
	writer  ObjectWriter
	csvPath string
}

// NewArchiver creates an Archiver for the ledger file at csvPath.
func NewArchiver(writer ObjectWriter, csvPath string) *Archiver {
	return &Archiver{writer: writer, csvPath: csvPath}
}

// ArchiveLedger uploads the current ledger CSV to archive/daily-YYYY-MM-DD.csv.
func (a *Archiver) ArchiveLedger(ctx context.Context, date time.Time) error {
	data, err := os.ReadFile(a.csvPath)
	if err != nil {
		return fmt.Errorf("s3blob: read ledger %s: %w", a.csvPath, err)
	}

	key := fmt.Sprintf("archive/daily-%s.csv", domain.Day(date))
	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "text/csv"); err != nil {
		return fmt.Errorf("s3blob: archive ledger: %w", err)
	}
	return nil
}
