package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

// Fetcher downloads assessment export objects referenced as gs://bucket/object
// URIs. The importer only ever reads; uploads stay with the upstream portal.
type Fetcher struct {
	client *storage.Client
	log    *logger.Logger
}

func NewFetcher(ctx context.Context, log *logger.Logger) (*Fetcher, error) {
	fetcherLog := log.With("platform", "gcs")

	saPath := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	var client *storage.Client
	var err error
	if saPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadOnly))
	} else {
		client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadOnly))
	}
	if err != nil {
		return nil, fmt.Errorf("gcs: create storage client: %w", err)
	}
	return &Fetcher{client: client, log: fetcherLog}, nil
}

func (f *Fetcher) Close() {
	if f == nil || f.client == nil {
		return
	}
	_ = f.client.Close()
}

// Open returns a reader for a gs://bucket/object URI.
func (f *Fetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("gcs: open %s: %w", uri, err)
	}
	return &cancelReadCloser{ReadCloser: r, cancel: cancel}, nil
}

func IsURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

func splitURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	if trimmed == uri {
		return "", "", fmt.Errorf("gcs: not a gs:// uri: %q", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("gcs: malformed uri: %q", uri)
	}
	return parts[0], parts[1], nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
