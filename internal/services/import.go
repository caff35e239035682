package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/modules/importer"
	"github.com/rowiverse/assessment-backend/internal/platform/envutil"
	"github.com/rowiverse/assessment-backend/internal/platform/gcs"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

// ImportRequest names the community the rows belong to and the rows
// themselves, either inline or as a source URI (gs://bucket/object or a local
// path) to fetch and parse.
type ImportRequest struct {
	CommunityName string     `json:"communityName"`
	CommunitySlug string     `json:"communitySlug"`
	TenantID      *uuid.UUID `json:"tenantId,omitempty"`
	HubID         *uuid.UUID `json:"hubId,omitempty"`
	VerseID       *uuid.UUID `json:"verseId,omitempty"`

	SourceURI string            `json:"sourceUri,omitempty"`
	Rows      []importer.RawRow `json:"rows,omitempty"`
}

type ImportService interface {
	RunImport(ctx context.Context, req ImportRequest) (importer.ImportSummary, error)
}

type importService struct {
	log      *logger.Logger
	usecases importer.Usecases
	fetcher  *gcs.Fetcher

	batchSize  int
	batchDelay time.Duration
}

func NewImportService(log *logger.Logger, usecases importer.Usecases, fetcher *gcs.Fetcher) ImportService {
	serviceLog := log.With("service", "ImportService")
	return &importService{
		log:        serviceLog,
		usecases:   usecases,
		fetcher:    fetcher,
		batchSize:  envutil.Int("IMPORT_BATCH_SIZE", 0),
		batchDelay: time.Duration(envutil.Int("IMPORT_BATCH_DELAY_MS", -1)) * time.Millisecond,
	}
}

func (is *importService) RunImport(ctx context.Context, req ImportRequest) (importer.ImportSummary, error) {
	rows := req.Rows
	if len(rows) == 0 && req.SourceURI != "" {
		fetched, err := is.fetchRows(ctx, req.SourceURI)
		if err != nil {
			return importer.ImportSummary{}, fmt.Errorf("import: fetch source: %w", err)
		}
		rows = fetched
	}
	if len(rows) == 0 {
		return importer.ImportSummary{}, fmt.Errorf("import: no rows provided")
	}

	is.log.Info("starting import",
		"community_slug", req.CommunitySlug, "rows", len(rows))

	return is.usecases.RunImport(ctx, importer.RunImportInput{
		CommunityName: req.CommunityName,
		CommunitySlug: req.CommunitySlug,
		TenantID:      req.TenantID,
		HubID:         req.HubID,
		VerseID:       req.VerseID,
		Rows:          rows,
		BatchSize:     is.batchSize,
		BatchDelay:    is.batchDelay,
	})
}

func (is *importService) fetchRows(ctx context.Context, uri string) ([]importer.RawRow, error) {
	var reader io.ReadCloser
	var err error
	if gcs.IsURI(uri) {
		if is.fetcher == nil {
			return nil, fmt.Errorf("gcs fetcher not configured for %s", uri)
		}
		reader, err = is.fetcher.Open(ctx, uri)
	} else {
		reader, err = os.Open(uri)
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return ParseDelimited(reader)
}

// ParseDelimited reads a UTF-8 (optionally BOM-prefixed) comma-separated
// export into raw rows keyed by header name. Short records are padded so a
// trailing empty cell never shifts columns.
func ParseDelimited(r io.Reader) ([]importer.RawRow, error) {
	buffered, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	buffered = bytes.TrimPrefix(buffered, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(buffered))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty export file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []importer.RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(rows)+2, err)
		}
		row := make(importer.RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
