package publisher

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/storage"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// CSVWriter buffers the two-column corpus table and writes it on Close,
// either to a local path or to an s3:// URI
type CSVWriter struct {
	dest   string
	s3     storage.ObjectPutter
	logger *zap.Logger

	mu     sync.Mutex
	buf    bytes.Buffer
	writer *csv.Writer
	count  int
	closed bool
}

// NewCSVWriter creates a corpus writer and emits the header row
func NewCSVWriter(dest string, s3Client storage.ObjectPutter, logger *zap.Logger) (*CSVWriter, error) {
	if storage.IsS3URI(dest) {
		if s3Client == nil {
			return nil, fmt.Errorf("s3 client not initialized for %s", dest)
		}
		if _, _, err := storage.ParseS3URI(dest); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &CSVWriter{
		dest:   dest,
		s3:     s3Client,
		logger: logger,
	}
	w.writer = csv.NewWriter(&w.buf)

	if err := w.writer.Write(models.CorpusColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return w, nil
}

// Publish appends one row. Text is NFC-normalized.
func (w *CSVWriter) Publish(ctx context.Context, record *models.CommentaryRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("csv writer for %s is closed", w.dest)
	}

	row := []string{
		norm.NFC.String(record.StructuredEvent),
		norm.NFC.String(record.NaturalDescription),
	}
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of data rows written
func (w *CSVWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes the table to its destination
func (w *CSVWriter) Close() error {
	return w.CloseContext(context.Background())
}

// CloseContext flushes the table, using ctx for the S3 upload
func (w *CSVWriter) CloseContext(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	if storage.IsS3URI(w.dest) {
		return w.upload(ctx)
	}

	if dir := filepath.Dir(w.dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(w.dest, w.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.dest, err)
	}

	w.logger.Info("corpus written", zap.String("path", w.dest), zap.Int("rows", w.count))
	return nil
}

func (w *CSVWriter) upload(ctx context.Context) error {
	bucket, key, err := storage.ParseS3URI(w.dest)
	if err != nil {
		return err
	}

	_, err = w.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(w.buf.Bytes()),
		ContentType: aws.String("text/csv"),
		Metadata: map[string]string{
			"rows": fmt.Sprintf("%d", w.count),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", w.dest, err)
	}

	w.logger.Info("corpus uploaded", zap.String("uri", w.dest), zap.Int("rows", w.count))
	return nil
}
